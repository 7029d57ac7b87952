package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultActionTimeout = 30 * time.Second

// BrowserOptions configures the Chrome instance.
type BrowserOptions struct {
	Headless      bool
	WindowWidth   int
	WindowHeight  int
	ScreenshotDir string
	// ExecPath overrides the Chrome binary found on PATH.
	ExecPath string
	// ActionTimeout bounds every Run call.
	ActionTimeout time.Duration
}

// Browser is one Chrome tab pointed at a Satellite server.
type Browser struct {
	baseURL string
	opts    BrowserOptions

	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewBrowser(ctx context.Context, baseURL string, opts BrowserOptions) (*Browser, error) {
	if opts.WindowWidth == 0 || opts.WindowHeight == 0 {
		opts.WindowWidth, opts.WindowHeight = 1920, 1080
	}
	if opts.ActionTimeout == 0 {
		opts.ActionTimeout = defaultActionTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	// The browser lives until Close; ctx only bounds the start-up.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	logger := zap.S().Named("ui")
	tabCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Debugf), chromedp.WithErrorf(logger.Errorf))

	// the first Run starts Chrome
	stop := context.AfterFunc(ctx, cancel)
	err := chromedp.Run(tabCtx)
	if !stop() && err == nil {
		err = ctx.Err()
	}
	if err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	logger.Infow("browser started", "url", baseURL, "headless", opts.Headless)

	return &Browser{
		baseURL:     strings.TrimRight(baseURL, "/"),
		opts:        opts,
		allocCancel: allocCancel,
		ctx:         tabCtx,
		cancel:      cancel,
	}, nil
}

// Run executes actions in the tab. ctx only bounds the call; the tab outlives it.
func (b *Browser) Run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(b.ctx, b.opts.ActionTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Open navigates to path and waits for the page body.
func (b *Browser) Open(ctx context.Context, path string) error {
	if err := b.Run(ctx, chromedp.Navigate(b.baseURL+path), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	return nil
}

// Location returns the path and query of the current page.
func (b *Browser) Location(ctx context.Context) (string, error) {
	var loc string
	if err := b.Run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return strings.TrimPrefix(loc, b.baseURL), nil
}

// Exists reports whether selector matches without waiting for it.
func (b *Browser) Exists(ctx context.Context, selector string) (bool, error) {
	var count int
	script := fmt.Sprintf(`document.querySelectorAll(%q).length`, selector)
	if err := b.Run(ctx, chromedp.Evaluate(script, &count)); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Texts returns the trimmed text of every element matching selector.
func (b *Browser) Texts(ctx context.Context, selector string) ([]string, error) {
	var texts []string
	script := fmt.Sprintf(`Array.from(document.querySelectorAll(%q)).map(e => e.textContent.trim())`, selector)
	if err := b.Run(ctx, chromedp.Evaluate(script, &texts)); err != nil {
		return nil, err
	}
	return texts, nil
}

// Fetch runs a same-origin GET from the page and decodes the JSON answer into out.
func (b *Browser) Fetch(ctx context.Context, path string, out any) error {
	script := fmt.Sprintf(`fetch(%q, {credentials: "same-origin", headers: {"Accept": "application/json"}}).then(r => r.json())`, path)
	awaitPromise := func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}
	return b.Run(ctx, chromedp.Evaluate(script, out, awaitPromise))
}

// Screenshot captures the full page. With a screenshot directory configured the image is
// also written there as <name>.png.
func (b *Browser) Screenshot(ctx context.Context, name string) ([]byte, error) {
	var buf []byte
	if err := b.Run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("taking screenshot: %w", err)
	}
	if b.opts.ScreenshotDir == "" {
		return buf, nil
	}
	if err := os.MkdirAll(b.opts.ScreenshotDir, 0o755); err != nil {
		return buf, err
	}
	file := filepath.Join(b.opts.ScreenshotDir, sanitize(name)+".png")
	if err := os.WriteFile(file, buf, 0o644); err != nil {
		return buf, err
	}
	zap.S().Named("ui").Infow("screenshot saved", "file", file)
	return buf, nil
}

func (b *Browser) Close() {
	b.cancel()
	b.allocCancel()
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
