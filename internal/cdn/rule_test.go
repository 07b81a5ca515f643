package cdn

import "testing"

func TestParsePathRule(t *testing.T) {
	cases := []struct {
		in       string
		prefix   string
		wildcard bool
	}{
		{"/wp-admin*", "/wp-admin", true},
		{"/wp-login.php", "/wp-login.php", false},
		{"  /uploads/private*  ", "/uploads/private", true},
		{"*", "", true},
	}

	for _, tc := range cases {
		got := ParsePathRule(tc.in)
		if got.Prefix != tc.prefix || got.Wildcard != tc.wildcard {
			t.Errorf("ParsePathRule(%q) = %+v, want prefix %q wildcard %v",
				tc.in, got, tc.prefix, tc.wildcard)
		}
	}
}

func TestPathRuleMatches(t *testing.T) {
	cases := []struct {
		rule string
		path string
		want bool
	}{
		// Exact rule matches verbatim only
		{"/wp-login.php", "/wp-login.php", true},
		{"/wp-login.php", "/wp-login.php.bak", false},
		{"/wp-login.php", "/other.php", false},
		// Wildcard rule matches everything under the prefix
		{"/wp-admin*", "/wp-admin/css/forms.css", true},
		{"/wp-admin*", "/wp-admin", true},
		{"/wp-admin*", "/wp-content/x.js", false},
	}

	for _, tc := range cases {
		if got := ParsePathRule(tc.rule).Matches(tc.path); got != tc.want {
			t.Errorf("rule %q match %q = %v, want %v", tc.rule, tc.path, got, tc.want)
		}
	}
}

func TestIsExcludedPath(t *testing.T) {
	rules := ParsePathRules([]string{"/wp-admin*", "/wp-login.php", ""})
	if len(rules) != 2 {
		t.Fatalf("empty rule should be dropped, got %d rules", len(rules))
	}

	if !IsExcludedPath("/wp-admin/load.js", rules) {
		t.Error("path under wildcard rule should be excluded")
	}
	if !IsExcludedPath("/wp-login.php", rules) {
		t.Error("exact rule path should be excluded")
	}
	if IsExcludedPath("/wp-content/app.js", rules) {
		t.Error("unrelated path should not be excluded")
	}
	if IsExcludedPath("/anything", nil) {
		t.Error("no rules should exclude nothing")
	}
}
