package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"whosaid/internal/logger"
	"whosaid/internal/pipeline"

	"github.com/chromedp/chromedp"
)

const (
	// SnapshotFile is the PNG written next to the page.
	SnapshotFile = "dashboard.png"
	// SnapshotArtifact is the artifact key the snapshot sink records.
	SnapshotArtifact = "snapshot"

	defaultSnapshotTimeout = 20 * time.Second
	settleDelay            = 1500 * time.Millisecond
)

// CaptureFunc turns an HTML document into PNG bytes.
type CaptureFunc func(ctx context.Context, html []byte, width, height int, timeout time.Duration) ([]byte, error)

// SnapshotOptions size the screenshot.
type SnapshotOptions struct {
	Dir     string
	Width   int
	Height  int
	Timeout time.Duration
	Capture CaptureFunc
}

// Snapshot screenshots the page written by Page and stores it as
// <Dir>/dashboard.png. It runs after the page sink.
type Snapshot struct {
	opts SnapshotOptions
}

func NewSnapshot(o SnapshotOptions) *Snapshot {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Height <= 0 {
		o.Height = defaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultSnapshotTimeout
	}
	if o.Capture == nil {
		o.Capture = renderHTMLToPNG
	}
	return &Snapshot{opts: o}
}

func (s *Snapshot) Name() string { return SnapshotArtifact }

func (s *Snapshot) Render(ctx context.Context, d *pipeline.Dashboard) error {
	pagePath, ok := d.Artifact(PageArtifact)
	if !ok {
		return fmt.Errorf("no page to snapshot")
	}
	html, err := os.ReadFile(pagePath)
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}
	// The page stacks five charts vertically in a narrow window.
	png, err := s.opts.Capture(ctx, html, s.opts.Width, s.opts.Height*5, s.opts.Timeout)
	if err != nil {
		return fmt.Errorf("snapshot page: %w", err)
	}
	dir := s.opts.Dir
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Dir(pagePath)
	}
	path := filepath.Join(dir, SnapshotFile)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	d.AddArtifact(SnapshotArtifact, path)
	logger.Infof("Dashboard snapshot written to %s", path)
	return nil
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable starts a browser once to check that chromedp can
// find one. The result is cached for the process lifetime.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		defer cancel()
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int, timeout time.Duration) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, fmt.Errorf("headless browser unavailable: %w", err)
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, timeout)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.FullScreenshot(&screenshot, 100),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
