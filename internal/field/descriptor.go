package field

import (
	"fmt"
	"slices"
	"strings"
)

// Visibility of a view node.
type Visibility int

const (
	Visible Visibility = iota
	Invisible
	Gone
)

// AutofillType is the kind of value a node accepts.
type AutofillType int

const (
	AutofillTypeNone AutofillType = iota
	AutofillTypeText
	AutofillTypeToggle
	AutofillTypeList
	AutofillTypeDate
)

// HTMLInfo carries markup signals for fields rendered from a web page.
type HTMLInfo struct {
	Tag        string
	Attributes map[string]string
}

// Attributes is the raw, harvested description of one input element.
type Attributes struct {
	// Handle identifies the element for the lifetime of one evaluation.
	Handle        string
	IDEntry       string
	Hint          string
	ClassName     string
	Visibility    Visibility
	Focused       bool
	AutofillType  AutofillType
	AutofillHints []string
	InputType     InputType
	HTML          *HTMLInfo
	// Origin is the owning web origin ("scheme://domain"), empty when unknown.
	Origin string
	Value  string
}

// Descriptor is the normalized, immutable view of one input element.
// Every derived property is computed once in New.
type Descriptor struct {
	handle       string
	index        int
	idEntry      string
	hint         string
	className    string
	visible      bool
	focused      bool
	textType     bool
	hints        []string
	inputType    InputType
	htmlTag      string
	htmlType     string
	autocomplete []string
	origin       string
	value        string

	fillable          bool
	excluded          bool
	passwordCertainty Certainty
	usernameCertainty Certainty
}

// New classifies a single element at the given traversal index.
func New(a Attributes, index int) *Descriptor {
	d := &Descriptor{
		handle:    a.Handle,
		index:     index,
		idEntry:   strings.ToLower(a.IDEntry),
		hint:      strings.ToLower(a.Hint),
		className: a.ClassName,
		visible:   a.Visibility == Visible,
		focused:   a.Focused,
		textType:  a.AutofillType == AutofillTypeText,
		inputType: a.InputType,
		origin:    a.Origin,
		value:     a.Value,
	}
	if a.HTML != nil {
		d.htmlTag = strings.ToLower(a.HTML.Tag)
		d.htmlType = htmlInputType(a.HTML)
		d.autocomplete = strings.Fields(strings.ToLower(a.HTML.Attributes["autocomplete"]))
	}
	d.hints = supportedHints(a.AutofillHints)
	d.classify(a.AutofillHints)
	return d
}

// NewList classifies elements in traversal order; the slice position
// becomes the descriptor index.
func NewList(attrs []Attributes) []*Descriptor {
	out := make([]*Descriptor, 0, len(attrs))
	for i, a := range attrs {
		out = append(out, New(a, i))
	}
	return out
}

func htmlInputType(info *HTMLInfo) string {
	t, ok := info.Attributes["type"]
	if !ok || strings.TrimSpace(t) == "" {
		// Browsers render an input without a type as a text input.
		return "text"
	}
	return strings.ToLower(strings.TrimSpace(t))
}

func (d *Descriptor) Handle() string         { return d.handle }
func (d *Descriptor) Index() int             { return d.index }
func (d *Descriptor) IDEntry() string        { return d.idEntry }
func (d *Descriptor) Hint() string           { return d.hint }
func (d *Descriptor) ClassName() string      { return d.className }
func (d *Descriptor) Visible() bool          { return d.visible }
func (d *Descriptor) Focused() bool          { return d.focused }
func (d *Descriptor) InputType() InputType   { return d.inputType }
func (d *Descriptor) HTMLTag() string        { return d.htmlTag }
func (d *Descriptor) HTMLInputType() string  { return d.htmlType }
func (d *Descriptor) Origin() string         { return d.origin }
func (d *Descriptor) Value() string          { return d.value }
func (d *Descriptor) Fillable() bool         { return d.fillable }
func (d *Descriptor) Excluded() bool         { return d.excluded }
func (d *Descriptor) ShouldBeFilled() bool   { return d.fillable && !d.excluded }
func (d *Descriptor) IsHTMLField() bool      { return d.htmlTag == "input" }
func (d *Descriptor) Hints() []string        { return slices.Clone(d.hints) }
func (d *Descriptor) Autocomplete() []string { return slices.Clone(d.autocomplete) }

// PasswordCertainty is the confidence that the field takes a password.
func (d *Descriptor) PasswordCertainty() Certainty { return d.passwordCertainty }

// UsernameCertainty is the confidence that the field takes a username.
func (d *Descriptor) UsernameCertainty() Certainty { return d.usernameCertainty }

// HasAutocompleteHint reports whether the autocomplete attribute carries token.
func (d *Descriptor) HasAutocompleteHint(token string) bool {
	return slices.Contains(d.autocomplete, strings.ToLower(token))
}

func (d *Descriptor) HasAutocompleteHintCurrentPassword() bool {
	return d.HasAutocompleteHint("current-password")
}

func (d *Descriptor) HasAutocompleteHintNewPassword() bool {
	return d.HasAutocompleteHint("new-password")
}

func (d *Descriptor) HasAutocompleteHintUsername() bool {
	return d.HasAutocompleteHint("username")
}

// DirectlyPrecedes reports whether d sits immediately before other in
// traversal order.
func (d *Descriptor) DirectlyPrecedes(other *Descriptor) bool {
	if other == nil {
		return false
	}
	return d.index == other.index-1
}

// DirectlyPrecedesAll reports whether d sits immediately before the
// earliest of fields.
func (d *Descriptor) DirectlyPrecedesAll(fields []*Descriptor) bool {
	if len(fields) == 0 {
		return false
	}
	first := fields[0].index
	for _, f := range fields[1:] {
		first = min(first, f.index)
	}
	return d.index == first-1
}

// DirectlyFollows reports whether d sits immediately after other.
func (d *Descriptor) DirectlyFollows(other *Descriptor) bool {
	if other == nil {
		return false
	}
	return d.index == other.index+1
}

func (d *Descriptor) String() string {
	kind := d.className
	if d.IsHTMLField() {
		kind = d.htmlTag + "[type=" + d.htmlType + "]"
	}
	return fmt.Sprintf("%s (%q, %s, focused=%t): password=%s, username=%s",
		kind, d.hint, d.idEntry, d.focused, d.passwordCertainty, d.usernameCertainty)
}
