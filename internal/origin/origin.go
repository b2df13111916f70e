// Package origin turns the web origins reported for a screen into the
// identity credentials are stored under.
package origin

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/seitarof/fillguard/internal/scenario"
)

var (
	ErrUnsupportedScheme = errors.New("origin: unsupported scheme")
	ErrNoHost            = errors.New("origin: missing host")
)

var supportedSchemes = []string{"http", "https"}

// Kind distinguishes apps from web sites.
type Kind int

const (
	KindApp Kind = iota
	KindWeb
)

func (k Kind) String() string {
	if k == KindWeb {
		return "web"
	}
	return "app"
}

// FormOrigin identifies the owner of a form: an app package or a
// canonical web domain.
type FormOrigin struct {
	Kind       Kind
	Identifier string
}

// App returns the origin of a native app.
func App(pkg string) FormOrigin { return FormOrigin{Kind: KindApp, Identifier: pkg} }

// Web returns the origin of a web site.
func Web(domain string) FormOrigin { return FormOrigin{Kind: KindWeb, Identifier: domain} }

// Pretty formats the origin for display. Untrusted app identifiers are
// quoted since apps choose their package names.
func (o FormOrigin) Pretty(untrusted bool) string {
	if o.Kind == KindApp && untrusted {
		return "“" + o.Identifier + "”"
	}
	return o.Identifier
}

func (o FormOrigin) String() string {
	return o.Kind.String() + ":" + o.Identifier
}

// WebOrigin joins a scheme and a domain. The scheme defaults to http.
// An empty domain yields an empty origin.
func WebOrigin(scheme, domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return ""
	}
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + domain
}

// CanonicalDomain returns the registrable domain of host
// (accounts.example.co.uk -> example.co.uk). IP addresses are returned
// unchanged.
func CanonicalDomain(host string) (string, error) {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return "", ErrNoHost
	}
	if net.ParseIP(host) != nil {
		return host, nil
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", fmt.Errorf("origin: canonical domain of %q: %w", host, err)
	}
	return domain, nil
}

// FromWebOrigin parses "scheme://host[:port]" into a web FormOrigin.
func FromWebOrigin(raw string) (FormOrigin, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return FormOrigin{}, fmt.Errorf("origin: parse %q: %w", raw, err)
	}
	if !slices.Contains(supportedSchemes, strings.ToLower(u.Scheme)) {
		return FormOrigin{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Hostname() == "" {
		return FormOrigin{}, fmt.Errorf("%w: %q", ErrNoHost, raw)
	}
	domain, err := CanonicalDomain(u.Hostname())
	if err != nil {
		return FormOrigin{}, err
	}
	return Web(domain), nil
}

// Determine picks the form origin for a resolved scenario.
//
// Apps, and browsers that reported no web origin, are identified by
// package. A browser page with a single web origin is identified by it.
// When several origins appear, the fields to save must all carry the same
// one, otherwise there is no safe origin and ok is false.
func Determine(appPackage string, isBrowser bool, webOrigins []string, sc scenario.Scenario) (FormOrigin, bool) {
	if !isBrowser || len(webOrigins) == 0 {
		return App(appPackage), true
	}
	candidate := webOrigins[0]
	if len(webOrigins) > 1 {
		if sc == nil {
			return FormOrigin{}, false
		}
		seen := map[string]bool{}
		for _, f := range scenario.FieldsToSave(sc) {
			seen[f.Origin()] = true
		}
		if len(seen) != 1 {
			return FormOrigin{}, false
		}
		for o := range seen {
			candidate = o
		}
		if candidate == "" {
			return FormOrigin{}, false
		}
	}
	fo, err := FromWebOrigin(candidate)
	if err != nil {
		return FormOrigin{}, false
	}
	return fo, true
}
