package harvest

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"

	"golang.org/x/tools/txtar"
)

// SourceKind is the format a screen was harvested from.
type SourceKind int

const (
	KindDocument SourceKind = iota
	KindHTML
	// KindPage is a live page; bundles never contain one.
	KindPage
)

func (k SourceKind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindHTML:
		return "html"
	case KindPage:
		return "page"
	default:
		return "unknown"
	}
}

// Source is one screen stored in a bundle.
type Source struct {
	Name string
	Kind SourceKind
	Data []byte
	// Origin is the page origin of an HTML source.
	Origin string
}

var originComment = regexp.MustCompile(`^\s*<!--\s*origin:\s*(\S+)\s*-->`)

// ParseBundle splits a txtar archive into sources, keeping archive order.
// Files of unknown type are returned in skipped.
func ParseBundle(data []byte) (sources []Source, skipped []string) {
	return fromArchive(txtar.Parse(data))
}

// LoadBundle reads a txtar archive from disk.
func LoadBundle(file string) ([]Source, []string, error) {
	ar, err := txtar.ParseFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("load bundle: %w", err)
	}
	sources, skipped := fromArchive(ar)
	return sources, skipped, nil
}

func fromArchive(ar *txtar.Archive) ([]Source, []string) {
	var sources []Source
	var skipped []string
	for _, f := range ar.Files {
		switch strings.ToLower(path.Ext(f.Name)) {
		case ".yaml", ".yml", ".json":
			sources = append(sources, Source{Name: f.Name, Kind: KindDocument, Data: f.Data})
		case ".html", ".htm":
			src := Source{Name: f.Name, Kind: KindHTML, Data: f.Data}
			if m := originComment.FindSubmatch(f.Data); m != nil {
				src.Origin = string(m[1])
			}
			sources = append(sources, src)
		default:
			skipped = append(skipped, f.Name)
		}
	}
	return sources, skipped
}

// Harvest decodes the source into a screen named after the file.
func (s Source) Harvest() (*Screen, error) {
	var (
		screen *Screen
		err    error
	)
	switch s.Kind {
	case KindDocument:
		screen, err = Decode(bytes.NewReader(s.Data))
	case KindHTML:
		screen, err = FromHTML(bytes.NewReader(s.Data), s.Origin)
	default:
		err = fmt.Errorf("cannot harvest a %s source from a bundle", s.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	screen.Name = s.Name
	return screen, nil
}
