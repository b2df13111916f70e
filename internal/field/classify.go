package field

import (
	"slices"
	"strings"
)

// Platform autofill hints.
const (
	HintUsername     = "username"
	HintPassword     = "password"
	HintEmailAddress = "emailAddress"
	HintName         = "name"
	HintPhone        = "phone"
)

var (
	fillableHints = []string{HintUsername, HintPassword, HintEmailAddress, HintName, HintPhone}

	textFieldClassNames = []string{
		"android.widget.EditText",
		"android.widget.AutoCompleteTextView",
		"androidx.appcompat.widget.AppCompatEditText",
		"android.support.v7.widget.AppCompatEditText",
		"com.google.android.material.textfield.TextInputEditText",
	}

	htmlUsernameTypes = []string{"email", "tel", "text"}
	htmlPasswordTypes = []string{"password"}

	// url_bar is the address bar id used by Chromium based browsers.
	excludedTerms     = []string{"url_bar", "search", "find"}
	passwordKeywords  = []string{"password", "pwd", "pswd", "passwort"}
	usernameKeywords  = []string{"user", "name", "email"}
	passwordHintTypes = []string{HintPassword}
	usernameHintTypes = []string{HintUsername}
)

func supportedHints(raw []string) []string {
	var out []string
	for _, h := range raw {
		if containsFold(passwordHintTypes, h) || containsFold(usernameHintTypes, h) {
			out = append(out, h)
		}
	}
	return out
}

func hintsCompatible(raw []string) bool {
	if len(raw) == 0 {
		return true
	}
	for _, h := range raw {
		if containsFold(fillableHints, h) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(v string) bool { return strings.EqualFold(v, s) })
}

func (d *Descriptor) mentionsAny(terms []string) bool {
	for _, t := range terms {
		if strings.Contains(d.idEntry, t) || strings.Contains(d.hint, t) {
			return true
		}
	}
	return false
}

func (d *Descriptor) hasHint(types []string) bool {
	for _, h := range d.hints {
		if containsFold(types, h) {
			return true
		}
	}
	return false
}

func (d *Descriptor) classify(rawHints []string) {
	nativeText := slices.Contains(textFieldClassNames, d.className)
	htmlPassword := d.IsHTMLField() && slices.Contains(htmlPasswordTypes, d.htmlType)
	htmlText := d.IsHTMLField() &&
		(htmlPassword || slices.Contains(htmlUsernameTypes, d.htmlType))

	d.fillable = d.visible && (nativeText || htmlText) && d.textType && hintsCompatible(rawHints)
	d.excluded = d.mentionsAny(excludedTerms)
	candidate := d.fillable && !d.excluded

	possiblePassword := candidate && (d.inputType.IsPassword() || htmlPassword)
	certainPassword := possiblePassword && (htmlPassword ||
		d.hasHint(passwordHintTypes) ||
		d.HasAutocompleteHintCurrentPassword() ||
		d.HasAutocompleteHintNewPassword())
	likelyPassword := certainPassword || (possiblePassword && d.mentionsAny(passwordKeywords))
	d.passwordCertainty = level(possiblePassword, likelyPassword, certainPassword)

	possibleUsername := candidate && !possiblePassword
	certainUsername := possibleUsername && (d.hasHint(usernameHintTypes) || d.HasAutocompleteHintUsername())
	likelyUsername := certainUsername || (possibleUsername && d.mentionsAny(usernameKeywords))
	d.usernameCertainty = level(possibleUsername, likelyUsername, certainUsername)
}

func level(possible, likely, certain bool) Certainty {
	switch {
	case certain:
		return Certain
	case likely:
		return Likely
	case possible:
		return Possible
	default:
		return Impossible
	}
}
