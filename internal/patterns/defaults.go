package patterns

const (
	rejectExpr       = `reject|decline|refuse|dissent|only\s*necessary|deny|disagree|do\s*not\s*accept|opt\s*out|close|necessary\s*cookies\s*only`
	confirmExpr      = `confirm|save|apply|accept|submit|continue`
	expandExpr       = `more|details|options|settings|preferences|show\s*more|manage|customi[sz]e|advanced`
	dialogExpr       = `cookie|consent|privacy|gdpr|ccpa|tracking`
	nonEssentialExpr = `marketing|analytics|advertising|tracking|social|performance|targeting|measurement|personali[sz]ation`
	// "preferences" is shared with expandExpr on purpose.
	essentialExpr = `session|auth|security|csrf|xsrf|user_id|preferences|functional|necessary`
)

// LiteralConfirm is tried before the generic confirm category.
var LiteralConfirm = MustRegex(`confirm`)

var storageKeyWords = []string{"auth", "session", "user", "login", "preference"}

// Default returns the built-in pattern set.
func Default() *Set {
	essential := MustRegex(essentialExpr)
	s, err := NewSet(map[Category]Matcher{
		Reject:       MustRegex(rejectExpr),
		Confirm:      MustRegex(confirmExpr),
		Expand:       MustRegex(expandExpr),
		Dialog:       MustRegex(dialogExpr),
		NonEssential: MustRegex(nonEssentialExpr),
		Essential:    essential,
		EssentialKey: Any(essential, Keywords(storageKeyWords...)),
	})
	if err != nil {
		panic(err)
	}
	return s
}
