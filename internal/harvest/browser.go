package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/seitarof/fillguard/internal/field"
)

const maxFrameDepth = 5

// BrowserConfig selects the browser pages are harvested from.
type BrowserConfig struct {
	// ControlURL of a running browser. Empty launches a local one.
	ControlURL string
	Headless   bool
	Timeout    time.Duration
}

// Browser harvests live pages, following iframes so every field is owned
// by the origin of the frame it lives in.
type Browser struct {
	cfg      BrowserConfig
	browser  *rod.Browser
	launcher *launcher.Launcher
	logger   *zap.Logger
}

// NewBrowser connects to cfg.ControlURL or launches a local browser.
func NewBrowser(cfg BrowserConfig, logger *zap.Logger) (*Browser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Browser{cfg: cfg, logger: logger.With(zap.String("component", "browser"))}

	u := cfg.ControlURL
	if u == "" {
		b.launcher = launcher.New().Headless(cfg.Headless)
		var err error
		if u, err = b.launcher.Launch(); err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		b.logger.Info("launched local browser", zap.String("url", u))
	}
	b.browser = rod.New().ControlURL(u)
	if err := b.browser.Connect(); err != nil {
		b.kill()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	return b, nil
}

// Harvest opens rawURL in a new page and harvests it.
func (b *Browser) Harvest(ctx context.Context, rawURL string) (*Screen, error) {
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: rawURL})
	if err != nil {
		return nil, fmt.Errorf("browser: open %s: %w", rawURL, err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			b.logger.Debug("close page", zap.Error(err))
		}
	}()
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("browser: load %s: %w", rawURL, err)
	}
	s, err := FromPage(ctx, page, b.logger)
	if err != nil {
		return nil, err
	}
	s.Name = rawURL
	return s, nil
}

// Close disconnects and stops a launched browser.
func (b *Browser) Close() error {
	err := b.browser.Close()
	b.kill()
	return err
}

func (b *Browser) kill() {
	if b.launcher != nil {
		b.launcher.Kill()
	}
}

// FromPage harvests a loaded page and its iframes in document order.
func FromPage(ctx context.Context, page *rod.Page, logger *zap.Logger) (*Screen, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := newCollector(false)
	if err := walkFrame(page.Context(ctx), c, "", 0, logger); err != nil {
		return nil, err
	}
	return c.screen, nil
}

func walkFrame(frame *rod.Page, c *collector, parentOrigin string, depth int, logger *zap.Logger) error {
	res, err := frame.Eval(`() => location.origin`)
	if err != nil {
		return fmt.Errorf("browser: frame origin: %w", err)
	}
	frameOrigin := res.Value.Str()
	// about:blank and srcdoc frames report an opaque origin.
	if frameOrigin == "null" || frameOrigin == "" {
		frameOrigin = parentOrigin
	}
	c.trackOrigin(frameOrigin)

	elements, err := frame.Elements("input, textarea, iframe")
	if err != nil {
		return fmt.Errorf("browser: list elements: %w", err)
	}
	for _, el := range elements {
		a, isFrame, err := elementAttributes(el, frameOrigin)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logger.Warn("skipping element", zap.Error(err))
			continue
		}
		if !isFrame {
			if err := c.add(a); err != nil {
				return err
			}
			continue
		}
		if depth >= maxFrameDepth {
			logger.Warn("frame nesting too deep", zap.String("origin", frameOrigin))
			continue
		}
		child, err := el.Frame()
		if err != nil {
			logger.Warn("cannot enter frame", zap.String("origin", frameOrigin), zap.Error(err))
			continue
		}
		if err := walkFrame(child, c, frameOrigin, depth+1, logger); err != nil {
			return err
		}
	}
	return nil
}

const describeElement = `() => {
	const attrs = {};
	for (const attr of this.attributes) {
		attrs[attr.name.toLowerCase()] = attr.value;
	}
	const style = window.getComputedStyle(this);
	const rect = this.getBoundingClientRect();
	let label = "";
	if (this.labels && this.labels.length > 0) {
		label = this.labels[0].innerText;
	}
	return {
		tag: this.tagName.toLowerCase(),
		attrs: attrs,
		visible: style.display !== "none" && style.visibility !== "hidden" && rect.width > 0 && rect.height > 0,
		focused: document.activeElement === this,
		value: this.value === undefined ? "" : String(this.value),
		label: label,
	};
}`

func elementAttributes(el *rod.Element, frameOrigin string) (field.Attributes, bool, error) {
	res, err := el.Eval(describeElement)
	if err != nil {
		return field.Attributes{}, false, err
	}
	v := res.Value
	tag := v.Get("tag").Str()
	if tag == "iframe" {
		return field.Attributes{}, true, nil
	}

	attrs := map[string]string{}
	for k, val := range v.Get("attrs").Map() {
		attrs[k] = val.Str()
	}
	typ := attrs["type"]
	if typ == "" {
		typ = "text"
	}
	hint := attrs["placeholder"]
	if hint == "" {
		hint = attrs["aria-label"]
	}
	if hint == "" {
		hint = v.Get("label").Str()
	}
	vis := field.Visible
	if !v.Get("visible").Bool() {
		vis = field.Invisible
	}

	return field.Attributes{
		Handle:       elementHandle(attrs["id"], attrs["name"]),
		IDEntry:      strings.TrimSpace(attrs["id"] + " " + attrs["name"]),
		Hint:         hint,
		Visibility:   vis,
		Focused:      v.Get("focused").Bool(),
		AutofillType: field.AutofillTypeText,
		InputType:    htmlInputTypes[typ],
		HTML:         &field.HTMLInfo{Tag: tag, Attributes: attrs},
		Origin:       frameOrigin,
		Value:        v.Get("value").Str(),
	}, false, nil
}
