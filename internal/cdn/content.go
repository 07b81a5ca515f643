package cdn

import (
	"regexp"
	"strings"
)

// The scanner is a best-effort textual scan over the tag/attribute
// vocabulary below, not a conformant HTML parse. Substitution always
// happens on the minimal matched unit (the URL token, or one style-block
// body); the surrounding markup is never re-serialized. A tag the patterns
// cannot make sense of is simply not rewritten.
var (
	reImgSrc    = regexp.MustCompile(`(?i)<img\s[^>]*?src\s*=\s*["']([^"']+)["']`)
	reLinkHref  = regexp.MustCompile(`(?i)<link\s[^>]*?href\s*=\s*["']([^"']+)["']`)
	reScriptSrc = regexp.MustCompile(`(?i)<script\s[^>]*?src\s*=\s*["']([^"']+)["']`)

	reStyleAttrDouble = regexp.MustCompile(`(?i)\sstyle\s*=\s*"([^"]*)"`)
	reStyleAttrSingle = regexp.MustCompile(`(?i)\sstyle\s*=\s*'([^']*)'`)

	reStyleBlock = regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>`)

	// url() in CSS text: double-quoted, single-quoted, unquoted.
	reURLDouble = regexp.MustCompile(`(?i)url\(\s*"([^"]+)"\s*\)`)
	reURLSingle = regexp.MustCompile(`(?i)url\(\s*'([^']+)'\s*\)`)
	reURLBare   = regexp.MustCompile(`(?i)url\(\s*([^)'"]+?)\s*\)`)

	reImportDouble = regexp.MustCompile(`(?i)@import\s+"([^"]+)"`)
	reImportSingle = regexp.MustCompile(`(?i)@import\s+'([^']+)'`)
)

var cssRefPatterns = []*regexp.Regexp{
	reURLDouble, reURLSingle, reURLBare, reImportDouble, reImportSingle,
}

// RewriteContent scans an HTML fragment for rewritable asset references —
// img src, link href, script src, url() inside inline style attributes and
// <style> blocks — and substitutes the CDN form of each. The input is
// returned unchanged when rewriting is disabled or the fragment is empty.
func (r *Rewriter) RewriteContent(html string) string {
	if html == "" || !r.cfg.Active() {
		return html
	}
	if r.inAdmin != nil && r.inAdmin() {
		return html
	}

	for _, re := range []*regexp.Regexp{reImgSrc, reLinkHref, reScriptSrc} {
		html = r.rewriteAttrs(html, re)
	}
	html = r.rewriteInlineStyles(html)
	html = r.rewriteStyleBlocks(html)
	return html
}

// rewriteAttrs rewrites every URL captured by re. Attribute values are
// substituted document-wide: the same asset referenced twice gets the same
// replacement either way, and the cache makes the second lookup free.
func (r *Rewriter) rewriteAttrs(doc string, re *regexp.Regexp) string {
	for _, m := range re.FindAllStringSubmatch(doc, -1) {
		orig := m[1]
		if rewritten := r.Rewrite(orig); rewritten != orig {
			doc = strings.ReplaceAll(doc, orig, rewritten)
		}
	}
	return doc
}

// rewriteInlineStyles handles url() references inside style="..."
// attributes (background, background-image and friends).
func (r *Rewriter) rewriteInlineStyles(doc string) string {
	for _, re := range []*regexp.Regexp{reStyleAttrDouble, reStyleAttrSingle} {
		for _, m := range re.FindAllStringSubmatch(doc, -1) {
			for _, ref := range cssRefs(m[1]) {
				if rewritten := r.Rewrite(ref); rewritten != ref {
					doc = strings.ReplaceAll(doc, ref, rewritten)
				}
			}
		}
	}
	return doc
}

// rewriteStyleBlocks rewrites url() references per <style> block.
// Substitution is scoped to the individual block body so identical URL
// strings in other blocks are not touched by this block's pass.
func (r *Rewriter) rewriteStyleBlocks(doc string) string {
	return reStyleBlock.ReplaceAllStringFunc(doc, func(block string) string {
		sub := reStyleBlock.FindStringSubmatch(block)
		if len(sub) < 2 || sub[1] == "" {
			return block
		}
		body := sub[1]
		rewritten := r.RewriteCSS(body)
		if rewritten == body {
			return block
		}
		return strings.Replace(block, body, rewritten, 1)
	})
}

// RewriteCSS rewrites every url() and @import reference in a CSS text.
// Each distinct reference is substituted everywhere it occurs in the text.
func (r *Rewriter) RewriteCSS(css string) string {
	if css == "" || !r.cfg.Active() {
		return css
	}
	if r.inAdmin != nil && r.inAdmin() {
		return css
	}
	for _, ref := range cssRefs(css) {
		if rewritten := r.Rewrite(ref); rewritten != ref {
			css = strings.ReplaceAll(css, ref, rewritten)
		}
	}
	return css
}

// cssRefs extracts the distinct URL references of a CSS text in scan order.
func cssRefs(css string) []string {
	seen := map[string]struct{}{}
	var refs []string
	for _, re := range cssRefPatterns {
		for _, m := range re.FindAllStringSubmatch(css, -1) {
			ref := strings.TrimSpace(m[1])
			if ref == "" {
				continue
			}
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}
