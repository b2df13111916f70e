package strategy

import (
	"github.com/seitarof/fillguard/internal/field"
	"github.com/seitarof/fillguard/internal/matcher"
)

// DefaultRules returns the built-in policy in priority order.
func DefaultRules() []*Rule {
	return []*Rule{
		MustRule("new-password-pair", false,
			Entry{Type: NewPassword, Matcher: matcher.PairOf(
				func(p matcher.Pair, _ []*field.Descriptor) bool {
					return p.All(func(f *field.Descriptor) bool {
						return likelyPassword(f) && f.HasAutocompleteHintNewPassword()
					})
				},
				func(p matcher.Pair) bool { return p.All(certainPassword) },
			)},
			usernameBeforePasswords(),
		),
		MustRule("current-password", false,
			Entry{Type: CurrentPassword, Matcher: matcher.Single(
				func(f *field.Descriptor, _ []*field.Descriptor) bool {
					return likelyPassword(f) && f.HasAutocompleteHintCurrentPassword()
				},
				certainPassword,
			)},
			usernameBeforePasswords(),
		),
		MustRule("focused-new-password", true,
			Entry{Type: NewPassword, Matcher: matcher.Single(
				func(f *field.Descriptor, _ []*field.Descriptor) bool {
					return likelyPassword(f) && f.HasAutocompleteHintNewPassword() && f.Focused()
				},
			)},
			usernameBeforePasswords(),
		),
		MustRule("focused-current-password", true,
			Entry{Type: CurrentPassword, Matcher: matcher.Single(
				func(f *field.Descriptor, _ []*field.Descriptor) bool {
					return likelyPassword(f) && f.HasAutocompleteHintCurrentPassword() && f.Focused()
				},
			)},
			usernameBeforePasswords(),
		),
		MustRule("focused-generic-password", true,
			Entry{Type: GenericPassword, Matcher: matcher.Single(
				func(f *field.Descriptor, _ []*field.Descriptor) bool {
					return likelyPassword(f) && f.Focused()
				},
			)},
			usernameBeforePasswords(),
		),
		MustRule("generic-password", false,
			Entry{Type: GenericPassword, Matcher: matcher.Single(
				func(f *field.Descriptor, _ []*field.Descriptor) bool {
					return f.PasswordCertainty() >= field.Possible
				},
				likelyPassword,
				focused,
			)},
			usernameBeforePasswords(),
		),
		MustRule("generic-password-pair", false,
			Entry{Type: GenericPassword, Matcher: matcher.PairOf(
				func(p matcher.Pair, _ []*field.Descriptor) bool {
					return p.All(func(f *field.Descriptor) bool { return f.PasswordCertainty() >= field.Possible })
				},
				func(p matcher.Pair) bool { return p.All(likelyPassword) },
			)},
			usernameBeforePasswords(),
		),
		// First step of a login split across two screens.
		MustRule("focused-username", true,
			Entry{Type: Username, Matcher: matcher.Single(
				func(f *field.Descriptor, _ []*field.Descriptor) bool {
					return f.UsernameCertainty() >= field.Likely && f.Focused()
				},
			)},
		),
	}
}

// Default returns a strategy over DefaultRules.
func Default(opts ...Option) *Strategy {
	return New(DefaultRules(), opts...)
}

func usernameBeforePasswords() Entry {
	return Entry{
		Type:     Username,
		Optional: true,
		Matcher: matcher.Single(func(f *field.Descriptor, matched []*field.Descriptor) bool {
			return f.UsernameCertainty() >= field.Likely && f.DirectlyPrecedesAll(matched)
		}),
	}
}

func likelyPassword(f *field.Descriptor) bool  { return f.PasswordCertainty() >= field.Likely }
func certainPassword(f *field.Descriptor) bool { return f.PasswordCertainty() >= field.Certain }
func focused(f *field.Descriptor) bool         { return f.Focused() }
