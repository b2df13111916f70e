package harvest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seitarof/fillguard/internal/field"
	"github.com/seitarof/fillguard/internal/origin"
)

// Document is a recorded view tree. JSON documents use the same keys.
type Document struct {
	Package     string `yaml:"package"`
	MultiOrigin *bool  `yaml:"multi_origin"`
	Manual      bool   `yaml:"manual"`
	// Windows holds one root node per window.
	Windows []Node `yaml:"windows"`
}

// Node is one view in the tree.
type Node struct {
	ID            string    `yaml:"id"`
	IDEntry       string    `yaml:"id_entry"`
	Hint          string    `yaml:"hint"`
	ClassName     string    `yaml:"class_name"`
	Visibility    string    `yaml:"visibility"`
	Focused       bool      `yaml:"focused"`
	AutofillType  string    `yaml:"autofill_type"`
	AutofillHints []string  `yaml:"autofill_hints"`
	InputType     string    `yaml:"input_type"`
	HTML          *HTMLNode `yaml:"html"`
	WebDomain     string    `yaml:"web_domain"`
	WebScheme     string    `yaml:"web_scheme"`
	Value         string    `yaml:"value"`
	Children      []Node    `yaml:"children"`
}

// HTMLNode carries the markup of a node rendered from a web page.
type HTMLNode struct {
	Tag        string            `yaml:"tag"`
	Attributes map[string]string `yaml:"attributes"`
}

var visibilities = map[string]field.Visibility{
	"":          field.Visible,
	"visible":   field.Visible,
	"invisible": field.Invisible,
	"gone":      field.Gone,
}

// An omitted autofill_type means text.
var autofillTypes = map[string]field.AutofillType{
	"":       field.AutofillTypeText,
	"text":   field.AutofillTypeText,
	"none":   field.AutofillTypeNone,
	"toggle": field.AutofillTypeToggle,
	"list":   field.AutofillTypeList,
	"date":   field.AutofillTypeDate,
}

// Decode reads a YAML or JSON document and harvests it.
func Decode(r io.Reader) (*Screen, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("decode screen: empty document")
		}
		return nil, fmt.Errorf("decode screen: %w", err)
	}
	return FromDocument(&doc)
}

// Load harvests the document at path.
func Load(path string) (*Screen, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// FromDocument walks every window depth-first in pre-order.
func FromDocument(doc *Document) (*Screen, error) {
	c := newCollector(true)
	c.screen.Package = doc.Package
	c.screen.MultiOrigin = doc.MultiOrigin
	c.screen.Manual = doc.Manual
	for i := range doc.Windows {
		c.reserve(&doc.Windows[i])
	}
	for i := range doc.Windows {
		if err := c.walk(&doc.Windows[i]); err != nil {
			return nil, err
		}
	}
	return c.screen, nil
}

func (c *collector) reserve(n *Node) {
	if n.ID != "" {
		c.reserved[n.ID] = true
	}
	for i := range n.Children {
		c.reserve(&n.Children[i])
	}
}

func (c *collector) walk(n *Node) error {
	a, warnings := n.attributes()
	c.screen.Warnings = append(c.screen.Warnings, warnings...)
	c.trackOrigin(a.Origin)
	if err := c.add(a); err != nil {
		return err
	}
	for i := range n.Children {
		if err := c.walk(&n.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

// attributes converts n. Unknown metadata degrades to the value that makes
// the node least fillable and is reported as a warning.
func (n *Node) attributes() (field.Attributes, []string) {
	var warnings []string
	vis, ok := visibilities[strings.ToLower(n.Visibility)]
	if !ok {
		vis = field.Invisible
		warnings = append(warnings, fmt.Sprintf("node %q: unknown visibility %q, treated as invisible", n.ID, n.Visibility))
	}
	at, ok := autofillTypes[strings.ToLower(n.AutofillType)]
	if !ok {
		at = field.AutofillTypeNone
		warnings = append(warnings, fmt.Sprintf("node %q: unknown autofill type %q, treated as none", n.ID, n.AutofillType))
	}
	it, err := field.ParseInputType(n.InputType)
	if err != nil {
		it = 0
		warnings = append(warnings, fmt.Sprintf("node %q: %v, treated as no input type", n.ID, err))
	}

	a := field.Attributes{
		Handle:        n.ID,
		IDEntry:       n.IDEntry,
		Hint:          n.Hint,
		ClassName:     n.ClassName,
		Visibility:    vis,
		Focused:       n.Focused,
		AutofillType:  at,
		AutofillHints: n.AutofillHints,
		InputType:     it,
		Origin:        origin.WebOrigin(n.WebScheme, n.WebDomain),
		Value:         n.Value,
	}
	if n.HTML != nil {
		a.HTML = &field.HTMLInfo{Tag: n.HTML.Tag, Attributes: lowerKeys(n.HTML.Attributes)}
	}
	return a, warnings
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}
