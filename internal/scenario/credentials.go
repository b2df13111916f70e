package scenario

import (
	"strings"
)

// Credentials is a username/password pair. An empty Username means the
// entry has none.
type Credentials struct {
	Username string
	Password string
}

// Assignment sets one field to a value.
type Assignment struct {
	Handle string
	Value  string
}

// FillPlan lists the values to put into the fields of sc for action. The
// username field gets the username, every other field the password.
func FillPlan(sc Scenario, action Action, creds Credentials) []Assignment {
	username := sc.Username()
	var plan []Assignment
	for _, f := range FieldsToFill(sc, action) {
		value := creds.Password
		if f == username {
			if creds.Username == "" {
				continue
			}
			value = creds.Username
		}
		plan = append(plan, Assignment{Handle: f.Handle(), Value: value})
	}
	return plan
}

// SaveCredentials extracts the credentials a user entered into sc. It
// fails when the password fields disagree, are empty, or only show a
// masked placeholder.
func SaveCredentials(sc Scenario) (Credentials, bool) {
	var creds Credentials
	if u := sc.Username(); u != nil {
		creds.Username = u.Value()
	}

	distinct := map[string]struct{}{}
	for _, f := range PasswordFieldsToSave(sc) {
		distinct[f.Value()] = struct{}{}
	}
	if len(distinct) != 1 {
		return Credentials{}, false
	}
	for v := range distinct {
		creds.Password = v
	}
	if creds.Password == "" || isMasked(creds.Password) {
		return Credentials{}, false
	}
	return creds, true
}

// Some browsers report the rendered value of a password input.
func isMasked(v string) bool {
	return strings.Trim(v, "*•") == ""
}
