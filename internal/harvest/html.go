package harvest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/seitarof/fillguard/internal/field"
)

// Android reports web inputs with these input types.
var htmlInputTypes = map[string]field.InputType{
	"text":     field.InputTypeClassText | field.TextVariationWebEditText,
	"email":    field.InputTypeClassText | field.TextVariationWebEmailAddress,
	"password": field.InputTypeClassText | field.TextVariationWebPassword,
	"tel":      field.InputTypeClassPhone,
	"number":   field.InputTypeClassNumber,
}

// FromHTML harvests the inputs of a static page. Every field is owned by
// pageOrigin; frames are not followed.
func FromHTML(r io.Reader, pageOrigin string) (*Screen, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	c := newCollector(false)
	c.trackOrigin(pageOrigin)
	labels := collectLabels(doc)
	reserveHTMLHandles(doc, c.reserved)

	var walk func(n *html.Node, hidden bool) error
	walk = func(n *html.Node, hidden bool) error {
		if n.Type == html.ElementNode {
			hidden = hidden || isHiddenElement(n)
			if n.DataAtom == atom.Input || n.DataAtom == atom.Textarea {
				if err := c.add(inputAttributes(n, hidden, labels, pageOrigin)); err != nil {
					return err
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if err := walk(child, hidden); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc, false); err != nil {
		return nil, err
	}
	return c.screen, nil
}

// LoadHTML harvests the page at path.
func LoadHTML(path, pageOrigin string) (*Screen, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := FromHTML(f, pageOrigin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Name = path
	return s, nil
}

func inputAttributes(n *html.Node, hidden bool, labels map[string]string, pageOrigin string) field.Attributes {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[strings.ToLower(a.Key)] = a.Val
	}
	id, name := attrs["id"], attrs["name"]

	typ := strings.ToLower(strings.TrimSpace(attrs["type"]))
	if typ == "" {
		typ = "text"
	}
	if n.DataAtom == atom.Textarea {
		typ = ""
	}

	handle := elementHandle(id, name)
	hint := attrs["placeholder"]
	if hint == "" {
		hint = attrs["aria-label"]
	}
	if hint == "" && id != "" {
		hint = labels[id]
	}
	_, autofocus := attrs["autofocus"]

	vis := field.Visible
	if hidden || typ == "hidden" {
		vis = field.Invisible
	}
	return field.Attributes{
		Handle:       handle,
		IDEntry:      strings.TrimSpace(id + " " + name),
		Hint:         hint,
		Visibility:   vis,
		Focused:      autofocus,
		AutofillType: field.AutofillTypeText,
		InputType:    htmlInputTypes[typ],
		HTML:         &field.HTMLInfo{Tag: n.Data, Attributes: attrs},
		Origin:       pageOrigin,
		Value:        attrs["value"],
	}
}

func elementHandle(id, name string) string {
	if id != "" {
		return id
	}
	return name
}

// reserveHTMLHandles records the id or name of every input on the page.
func reserveHTMLHandles(n *html.Node, reserved map[string]bool) {
	if n.Type == html.ElementNode && (n.DataAtom == atom.Input || n.DataAtom == atom.Textarea) {
		var id, name string
		for _, a := range n.Attr {
			switch strings.ToLower(a.Key) {
			case "id":
				id = a.Val
			case "name":
				name = a.Val
			}
		}
		if h := elementHandle(id, name); h != "" {
			reserved[h] = true
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		reserveHTMLHandles(child, reserved)
	}
}

func isHiddenElement(n *html.Node) bool {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "hidden":
			return true
		case "aria-hidden":
			if strings.EqualFold(a.Val, "true") {
				return true
			}
		case "style":
			style := strings.ToLower(strings.ReplaceAll(a.Val, " ", ""))
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

// collectLabels maps input ids to the text of their <label for=...>.
func collectLabels(doc *html.Node) map[string]string {
	labels := map[string]string{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Label {
			for _, a := range n.Attr {
				if a.Key == "for" && a.Val != "" {
					labels[a.Val] = strings.Join(strings.Fields(textContent(n)), " ")
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return labels
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
		sb.WriteByte(' ')
	}
	return sb.String()
}
