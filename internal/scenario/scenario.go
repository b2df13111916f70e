// Package scenario models the resolved mapping of screen fields to
// username and password roles.
package scenario

import (
	"errors"
	"fmt"
	"slices"

	"github.com/seitarof/fillguard/internal/field"
)

// ErrMixedScenario is returned when a builder holds both classified and
// generic password fields.
var ErrMixedScenario = errors.New("scenario: classified and generic password fields are mutually exclusive")

// Scenario is either a *Classified or a *Generic value.
type Scenario interface {
	// Username is the username field, or nil.
	Username() *field.Descriptor
	// FillUsername reports whether the username field should receive a value
	// when filling.
	FillUsername() bool
	// AllFields lists every field in the scenario, username first.
	AllFields() []*field.Descriptor

	sealed()
}

// Classified knows which password fields hold the current and which the
// new password.
type Classified struct {
	username        *field.Descriptor
	fillUsername    bool
	currentPassword []*field.Descriptor
	newPassword     []*field.Descriptor
}

// Generic holds password fields without knowing their purpose.
type Generic struct {
	username        *field.Descriptor
	fillUsername    bool
	genericPassword []*field.Descriptor
}

func (*Classified) sealed() {}
func (*Generic) sealed()    {}

func (c *Classified) Username() *field.Descriptor          { return c.username }
func (c *Classified) FillUsername() bool                   { return c.fillUsername }
func (c *Classified) CurrentPassword() []*field.Descriptor { return slices.Clone(c.currentPassword) }
func (c *Classified) NewPassword() []*field.Descriptor     { return slices.Clone(c.newPassword) }
func (g *Generic) Username() *field.Descriptor             { return g.username }
func (g *Generic) FillUsername() bool                      { return g.fillUsername }
func (g *Generic) GenericPassword() []*field.Descriptor    { return slices.Clone(g.genericPassword) }

func (c *Classified) AllFields() []*field.Descriptor {
	return withUsername(c.username, c.currentPassword, c.newPassword)
}

func (g *Generic) AllFields() []*field.Descriptor {
	return withUsername(g.username, g.genericPassword)
}

func withUsername(username *field.Descriptor, lists ...[]*field.Descriptor) []*field.Descriptor {
	var out []*field.Descriptor
	if username != nil {
		out = append(out, username)
	}
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Builder collects fields while a rule is evaluated.
type Builder struct {
	Username        *field.Descriptor
	FillUsername    bool
	CurrentPassword []*field.Descriptor
	NewPassword     []*field.Descriptor
	GenericPassword []*field.Descriptor
}

// Build returns a Classified scenario when current or new password fields
// were collected, a Generic one otherwise.
func (b *Builder) Build() (Scenario, error) {
	classified := len(b.CurrentPassword) > 0 || len(b.NewPassword) > 0
	if classified && len(b.GenericPassword) > 0 {
		return nil, ErrMixedScenario
	}
	if classified {
		return &Classified{
			username:        b.Username,
			fillUsername:    b.FillUsername,
			currentPassword: slices.Clone(b.CurrentPassword),
			newPassword:     slices.Clone(b.NewPassword),
		}, nil
	}
	return &Generic{
		username:        b.Username,
		fillUsername:    b.FillUsername,
		genericPassword: slices.Clone(b.GenericPassword),
	}, nil
}

func unknownVariant(sc Scenario) string {
	return fmt.Sprintf("scenario: unknown variant %T", sc)
}
