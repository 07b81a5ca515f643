package cdn

import (
	"encoding/json"
	"sort"
	"strings"
)

// loaderConfig is the data block the reinforcement script exposes to the
// page. Field names are part of the client contract.
type loaderConfig struct {
	BaseURL       string   `json:"baseUrl"`
	CDNBaseURL    string   `json:"cdnBaseUrl"`
	FileTypes     []string `json:"fileTypes"`
	ExcludedPaths []string `json:"excludedPaths"`
}

// LoaderScript emits the client-side reinforcement script: a config data
// block plus a small runtime that re-applies the eligibility and mapping
// rules to assets added after the initial render (createElement/setAttribute
// interception and a MutationObserver on inserted script/link/img nodes).
// Returns "" when rewriting is disabled, so the host can emit it
// unconditionally during head rendering.
func LoaderScript(cfg *Config) string {
	if !cfg.Active() {
		return ""
	}

	lc := loaderConfig{
		BaseURL:    cfg.SiteOrigin,
		CDNBaseURL: cfg.CDNBaseURL,
	}
	for t := range cfg.FileTypes {
		lc.FileTypes = append(lc.FileTypes, t)
	}
	sort.Strings(lc.FileTypes)
	for _, r := range cfg.ExcludedPaths {
		s := r.Prefix
		if r.Wildcard {
			s += "*"
		}
		lc.ExcludedPaths = append(lc.ExcludedPaths, s)
	}
	if lc.FileTypes == nil {
		lc.FileTypes = []string{}
	}
	if lc.ExcludedPaths == nil {
		lc.ExcludedPaths = []string{}
	}

	data, err := json.Marshal(lc)
	if err != nil {
		return ""
	}
	return "<script id=\"cdnpress-loader\">" +
		strings.Replace(loaderJS, "__CDNPRESS_CONFIG__", string(data), 1) +
		"</script>"
}

// loaderJS mirrors ShouldRewrite and CDNURL for the browser runtime. Keep
// the two in sync when the eligibility or mapping rules change.
const loaderJS = `(function () {
  var cfg = __CDNPRESS_CONFIG__;
  if (!cfg.cdnBaseUrl) { return; }
  var siteBase = cfg.baseUrl || window.location.origin;
  function sameOrigin(url) {
    try {
      var u = new URL(url, siteBase);
      var s = new URL(siteBase);
      var uh = u.host.replace(/^www\./, "");
      var sh = s.host.replace(/^www\./, "");
      return uh === sh;
    } catch (e) { return false; }
  }
  function excluded(path) {
    for (var i = 0; i < cfg.excludedPaths.length; i++) {
      var rule = cfg.excludedPaths[i];
      if (rule.charAt(rule.length - 1) === "*") {
        if (path.indexOf(rule.slice(0, -1)) === 0) { return true; }
      } else if (path === rule) { return true; }
    }
    return false;
  }
  function eligible(url) {
    if (!url || url.indexOf("data:") === 0) { return false; }
    if (url.indexOf(cfg.cdnBaseUrl) === 0) { return false; }
    if (!sameOrigin(url)) { return false; }
    var path;
    try { path = new URL(url, siteBase).pathname; } catch (e) { return false; }
    if (!path || excluded(path)) { return false; }
    var seg = path.split("/").pop();
    var dot = seg.lastIndexOf(".");
    if (dot < 0 || dot === seg.length - 1) { return false; }
    return cfg.fileTypes.indexOf(seg.slice(dot + 1).toLowerCase()) !== -1;
  }
  function mapUrl(url) {
    var u = new URL(url, siteBase);
    return cfg.cdnBaseUrl.replace(/\/+$/, "") + u.pathname + u.search;
  }
  function rewrite(url) { return eligible(url) ? mapUrl(url) : url; }
  function hookSetAttribute(el, attr) {
    var set = el.setAttribute;
    el.setAttribute = function (name, value) {
      if (name === attr) { value = rewrite(value); }
      return set.call(this, name, value);
    };
  }
  var create = document.createElement;
  document.createElement = function (tag) {
    var el = create.apply(document, arguments);
    var t = String(tag).toLowerCase();
    if (t === "script") { hookSetAttribute(el, "src"); }
    if (t === "link") { hookSetAttribute(el, "href"); }
    return el;
  };
  function fixNode(n) {
    if (!n.tagName) { return; }
    var attr;
    switch (n.tagName) {
      case "SCRIPT": case "IMG": attr = "src"; break;
      case "LINK": attr = "href"; break;
      default: return;
    }
    var v = n.getAttribute(attr);
    if (!v) { return; }
    var w = rewrite(v);
    if (w !== v) { n.setAttribute(attr, w); }
  }
  new MutationObserver(function (muts) {
    for (var i = 0; i < muts.length; i++) {
      for (var j = 0; j < muts[i].addedNodes.length; j++) {
        fixNode(muts[i].addedNodes[j]);
      }
    }
  }).observe(document.documentElement, { childList: true, subtree: true });
})();`
