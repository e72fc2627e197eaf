package consent

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nocookies/internal/dom"
	"nocookies/internal/patterns"
)

// FindAndClickReject activates the first visible in-dialog button whose
// text or aria-label matches the reject category.
func (s *Scanner) FindAndClickReject(doc dom.Document) (bool, error) {
	return s.clickFirst(doc, "reject", s.patterns.Matcher(patterns.Reject))
}

func (s *Scanner) FindAndClickExpand(doc dom.Document) (bool, error) {
	return s.clickFirst(doc, "expand", s.patterns.Matcher(patterns.Expand))
}

// FindAndClickConfirm tries buttons literally saying "confirm" before the
// broader confirm category, so "Confirm choices" beats an earlier "Accept".
func (s *Scanner) FindAndClickConfirm(doc dom.Document) (bool, error) {
	clicked, err := s.clickFirst(doc, "confirm", patterns.LiteralConfirm)
	if err != nil || clicked {
		return clicked, err
	}
	return s.clickFirst(doc, "confirm", s.patterns.Matcher(patterns.Confirm))
}

func (s *Scanner) clickFirst(doc dom.Document, kind string, m patterns.Matcher) (bool, error) {
	if m == nil {
		return false, nil
	}

	buttons, err := doc.Buttons()
	if err != nil {
		return false, fmt.Errorf("list buttons: %w", err)
	}

	for _, button := range buttons {
		text, aria := buttonText(button)
		if !m.Match(text) && !m.Match(aria) {
			continue
		}
		if !button.Visible() || !s.InDialogContext(button) {
			continue
		}

		if err := button.Click(); err != nil {
			s.log.Warn("button went stale before click",
				zap.String("kind", kind), zap.String("text", text), zap.Error(err))
			continue
		}
		s.log.Info("clicked "+kind, zap.String("text", text), zap.String("url", doc.URL()))
		return true, nil
	}

	return false, nil
}

// TurnOffNonEssential switches off every visible in-dialog toggle whose
// label is non-essential and which is currently on. It scans all toggles
// and returns how many were turned off.
func (s *Scanner) TurnOffNonEssential(doc dom.Document) (int, error) {
	toggles, err := doc.Toggles()
	if err != nil {
		return 0, fmt.Errorf("list toggles: %w", err)
	}

	off := 0
	for _, toggle := range toggles {
		if !toggle.Visible() || !s.InDialogContext(toggle) {
			continue
		}

		label := strings.ToLower(ResolveLabel(doc, toggle))
		if !s.patterns.IsNonEssential(label) || !isOn(toggle) {
			continue
		}

		if err := toggle.Click(); err != nil {
			s.log.Warn("toggle went stale before click", zap.String("label", label), zap.Error(err))
			continue
		}
		s.log.Info("disabled toggle", zap.String("label", label), zap.String("url", doc.URL()))
		off++
	}

	return off, nil
}

// isOn: a checked checkbox, or a switch with aria-checked="true". Radios are
// enumerated but never "on": clicking a checked radio cannot clear it.
func isOn(toggle dom.Element) bool {
	if toggle.Tag() == "input" && strings.EqualFold(toggle.Attr("type"), "checkbox") {
		return toggle.Checked()
	}
	return toggle.Attr("role") == "switch" && toggle.Attr("aria-checked") == "true"
}
