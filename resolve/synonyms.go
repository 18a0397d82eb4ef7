// ABOUTME: Visual synonym table mapping descriptive nouns to probable selectors.
// ABOUTME: Candidates are ordered by likelihood; the first one present in the document wins.

package resolve

// visualSynonyms maps the nouns users reach for ("navbar", "hero", "card") to
// ordered selector candidates. Only selector forms the matcher supports appear
// here: #id, .class, tag, tag.class.
var visualSynonyms = map[string][]string{
	"navbar":  {"nav", ".navbar", ".nav", "#navbar", ".menu", "header"},
	"nav":     {"nav", ".navbar", ".nav", "#nav"},
	"menu":    {".menu", "nav", ".navbar", "ul.menu"},
	"header":  {"header", ".header", "#header", ".site-header"},
	"hero":    {".hero", ".hero-section", "#hero", ".jumbotron", ".banner", "header"},
	"banner":  {".banner", ".hero", "#banner", "header"},
	"footer":  {"footer", ".footer", "#footer"},
	"sidebar": {".sidebar", "#sidebar", "aside", ".side-nav"},
	"card":    {".card", ".cards", ".card-container", ".box"},
	"button":  {"button", ".btn", ".button", ".cta"},
	"cta":     {".cta", ".call-to-action", "button", ".btn"},
	"title":   {"h1", ".title", "h2", ".heading", "header"},
	"heading": {"h1", "h2", ".heading", ".title"},
	"logo":    {".logo", "#logo", "img.logo"},
	"gallery": {".gallery", ".grid", ".images", "#gallery"},
	"form":    {"form", ".form", "#form", ".contact-form"},
	"image":   {"img", ".image", "figure"},
	"list":    {"ul", "ol", ".list"},
	"table":   {"table", ".table"},
	"section": {"section", ".section", "main"},
}

// synonymOrder fixes lookup priority: longer, more specific nouns first so a
// hint like "navbar" never resolves through the shorter "nav" entry.
var synonymOrder = []string{
	"navbar", "banner", "sidebar", "heading", "gallery", "section",
	"header", "footer", "button", "hero", "menu", "card", "cta",
	"title", "logo", "form", "image", "list", "table", "nav",
}

// actionDefaults maps known action verbs to a list of probable target
// selectors tried in order when nothing else resolved the hint.
var actionDefaults = map[string][]string{
	"recolor": {"p", "h1", "h2", "button", "a"},
	"restyle": {"body", "main", ".container"},
	"resize":  {"img", ".container", "section", "div"},
	"add":     {"main", ".container", "body"},
	"remove":  {"div", "section", "p"},
	"move":    {"main", ".container", "body"},
}
