// Package harvest flattens a screen description into classified fields in
// traversal order.
package harvest

import (
	"fmt"

	"github.com/seitarof/fillguard/internal/field"
)

// Screen is everything known about one fill request.
type Screen struct {
	Name    string
	Package string
	// MultiOrigin forces the origin mode when set. Otherwise it is derived
	// from the package.
	MultiOrigin *bool
	Manual      bool
	// Fields holds fillable fields only; Index is the position in Fields.
	Fields []*field.Descriptor
	// Ignored lists the handles of nodes that cannot be filled.
	Ignored []string
	// WebOrigins lists every distinct web origin in encounter order.
	WebOrigins []string
	// Warnings describes metadata that could not be read and was degraded.
	Warnings []string
}

type collector struct {
	screen  *Screen
	handles map[string]bool
	// reserved holds ids declared anywhere in a document, so generated
	// handles never take one that appears later.
	reserved map[string]bool
	origins  map[string]bool
	nodes    int
	// strict rejects duplicate handles instead of renaming them.
	strict bool
}

func newCollector(strict bool) *collector {
	return &collector{
		screen:   &Screen{},
		handles:  map[string]bool{},
		reserved: map[string]bool{},
		origins:  map[string]bool{},
		strict:   strict,
	}
}

func (c *collector) trackOrigin(o string) {
	if o == "" || c.origins[o] {
		return
	}
	c.origins[o] = true
	c.screen.WebOrigins = append(c.screen.WebOrigins, o)
}

func (c *collector) add(a field.Attributes) error {
	n := c.nodes
	c.nodes++
	switch {
	case a.Handle == "":
		a.Handle = c.unused(fmt.Sprintf("node-%d", n))
	case c.handles[a.Handle]:
		if c.strict {
			return fmt.Errorf("duplicate node id %q", a.Handle)
		}
		a.Handle = c.unused(a.Handle)
	}
	c.handles[a.Handle] = true

	d := field.New(a, len(c.screen.Fields))
	if !d.Fillable() {
		c.screen.Ignored = append(c.screen.Ignored, a.Handle)
		return nil
	}
	c.screen.Fields = append(c.screen.Fields, d)
	return nil
}

// unused returns base, or base-2, base-3... whichever is free first.
func (c *collector) unused(base string) string {
	taken := func(h string) bool { return c.handles[h] || c.reserved[h] }
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		if h := fmt.Sprintf("%s-%d", base, i); !taken(h) {
			return h
		}
	}
}
