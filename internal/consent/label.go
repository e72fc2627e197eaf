package consent

import (
	"strings"

	"nocookies/internal/dom"
)

var blockTags = map[string]bool{
	"div": true, "section": true, "article": true, "aside": true,
	"li": true, "ul": true, "ol": true, "dl": true, "dd": true, "dt": true,
	"p": true, "fieldset": true, "form": true, "table": true, "tr": true, "td": true,
	"header": true, "footer": true, "main": true, "nav": true, "dialog": true,
}

// ResolveLabel returns the text describing a toggle. In order: the
// aria-labelledby targets, an enclosing <label> within LabelDepth steps, the
// nearest block-level element starting at the toggle, the aria-label
// attribute. The first non-empty candidate wins; "" when none is found.
func ResolveLabel(doc dom.Document, toggle dom.Element) string {
	if ref := toggle.Attr("aria-labelledby"); ref != "" {
		var parts []string
		for _, id := range strings.Fields(ref) {
			if target := doc.ElementByID(id); target != nil {
				if text := strings.TrimSpace(target.Text()); text != "" {
					parts = append(parts, text)
				}
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}

	parent := toggle.Parent()
	for i := 0; i < LabelDepth && parent != nil; i++ {
		if parent.Tag() == "label" {
			if text := strings.TrimSpace(parent.Text()); text != "" {
				return text
			}
			break
		}
		parent = parent.Parent()
	}

	// A block-level toggle (a div switch) is its own container.
	for el := toggle; el != nil; el = el.Parent() {
		if !blockTags[el.Tag()] {
			continue
		}
		if text := strings.TrimSpace(el.Text()); text != "" {
			return text
		}
		break
	}

	return strings.TrimSpace(toggle.Attr("aria-label"))
}
