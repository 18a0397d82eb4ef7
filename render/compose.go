// ABOUTME: Composes a sandboxed preview document out of a page's HTML, CSS, and JavaScript.
// ABOUTME: Injected JS runs behind an error guard so a broken edit cannot take down the host page.

package render

import (
	"fmt"
	"strings"

	"github.com/2389-research/pagesmith/page"
)

// errorGuard catches anything thrown by injected user JavaScript and reports
// it to the parent frame instead of letting the preview go blank.
const errorGuard = `window.onerror = function(msg, src, line, col) {
  try { parent.postMessage({ type: "preview-error", message: String(msg), line: line, col: col }, "*"); } catch (e) {}
  return true;
};`

// Compose assembles a complete standalone HTML document suitable for an
// iframe srcdoc. A document whose HTML already carries an <html> root is
// used as-is with the CSS and guarded JS injected; a bare fragment is
// wrapped in a minimal page shell.
func Compose(doc page.Document) string {
	style := ""
	if strings.TrimSpace(doc.CSS) != "" {
		style = "<style>\n" + doc.CSS + "\n</style>"
	}

	script := "<script>\n" + errorGuard + "\n</script>"
	if strings.TrimSpace(doc.JavaScript) != "" {
		script += "\n<script>\ntry {\n" + doc.JavaScript + "\n} catch (e) { window.onerror(String(e), \"\", 0, 0); }\n</script>"
	}

	if strings.Contains(strings.ToLower(doc.HTML), "<html") {
		return injectIntoDocument(doc.HTML, style, script)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
%s
</head>
<body>
%s
%s
</body>
</html>`, style, doc.HTML, script)
}

// injectIntoDocument places the style block before </head> and the scripts
// before </body>, falling back to appending when either close tag is missing.
func injectIntoDocument(html, style, script string) string {
	out := html
	if style != "" {
		if idx := strings.Index(strings.ToLower(out), "</head>"); idx >= 0 {
			out = out[:idx] + style + "\n" + out[idx:]
		} else {
			out = style + "\n" + out
		}
	}
	if idx := strings.Index(strings.ToLower(out), "</body>"); idx >= 0 {
		return out[:idx] + script + "\n" + out[idx:]
	}
	return out + "\n" + script
}
