package cdn

import (
	"path"
	"strings"
)

// IsHTMLFile returns true when the path/content-type/magic bytes indicate
// HTML. Any of the three signals may be empty.
func IsHTMLFile(filePath, contentType string, firstBytes []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	ext := strings.ToLower(path.Ext(filePath))
	if ext == ".html" || ext == ".htm" {
		return true
	}
	// magic: look for a leading BOM or <
	if len(firstBytes) > 0 {
		b := firstBytes
		if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
			b = b[3:]
		}
		trimmed := strings.TrimSpace(string(b))
		if strings.HasPrefix(trimmed, "<") {
			return true
		}
	}
	return false
}

// IsCSSFile returns true when the path/content-type indicates CSS.
func IsCSSFile(filePath, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "text/css") {
		return true
	}
	return strings.ToLower(path.Ext(filePath)) == ".css"
}
