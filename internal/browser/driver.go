package browser

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

// FailureKind classifies why a navigation did not complete.
type FailureKind int

const (
	FailureNetwork FailureKind = iota
	FailureTimeout
)

func (k FailureKind) String() string {
	if k == FailureTimeout {
		return "timeout"
	}
	return "network"
}

// NavError reports a failed navigation along with its classification.
type NavError struct {
	URL  string
	Kind FailureKind
	Err  error
}

func (e *NavError) Error() string {
	return fmt.Sprintf("navigate %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *NavError) Unwrap() error { return e.Err }

type Config struct {
	Headless   bool
	UserAgent  string
	NavTimeout time.Duration
}

// Driver owns a single Chrome process. It is not safe for concurrent use;
// each scraper run gets its own Driver.
type Driver struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	navTimeout  time.Duration

	// status of the last document response, recorded off the CDP event feed
	lastStatus atomic.Int64
}

// New launches Chrome and returns a ready Driver. The caller must Close it,
// including when a run fails partway through.
func New(cfg Config) (*Driver, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	d := &Driver{
		ctx:         browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		navTimeout:  cfg.NavTimeout,
	}
	if d.navTimeout <= 0 {
		d.navTimeout = 15 * time.Second
	}

	chromedp.ListenTarget(browserCtx, d.onEvent)

	// Starting the browser and enabling the network domain up front means a
	// broken Chrome install fails here instead of on the first Navigate.
	if err := chromedp.Run(browserCtx, network.Enable()); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	log.WithField("headless", cfg.Headless).Info("Browser launched")
	return d, nil
}

func (d *Driver) onEvent(ev interface{}) {
	if e, ok := ev.(*network.EventResponseReceived); ok {
		if e.Type == network.ResourceTypeDocument {
			d.lastStatus.Store(e.Response.Status)
		}
	}
}

// LastStatus returns the HTTP status of the most recent document response,
// or 0 before the first navigation.
func (d *Driver) LastStatus() int64 {
	return d.lastStatus.Load()
}

// Navigate loads url and blocks until waitSelector is ready or the timeout
// expires. Failures are classified into NavError kinds.
func (d *Driver) Navigate(ctx context.Context, url, waitSelector string) error {
	navCtx, cancel := d.bounded(ctx, d.navTimeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(waitSelector, chromedp.ByQuery),
	)
	if err != nil {
		return classify(url, err)
	}
	log.WithFields(log.Fields{"url": url, "status": d.LastStatus()}).Debug("Navigation complete")
	return nil
}

// WaitVisible polls for selector within timeout. This is the explicit
// condition wait used instead of fixed sleeps; callers decide whether an
// expiry means failure or simply a page without the element.
func (d *Driver) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := d.bounded(ctx, timeout)
	defer cancel()

	err := chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err != nil {
		return classify(selector, err)
	}
	return nil
}

// OuterHTML captures the rendered document.
func (d *Driver) OuterHTML(ctx context.Context) (string, error) {
	runCtx, cancel := d.bounded(ctx, d.navTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("capture page html: %w", err)
	}
	return html, nil
}

// Click activates the first visible node matching selector and waits for the
// document body to settle again.
func (d *Driver) Click(ctx context.Context, selector string) error {
	clickCtx, cancel := d.bounded(ctx, d.navTimeout)
	defer cancel()

	err := chromedp.Run(clickCtx,
		chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return classify(selector, err)
	}
	return nil
}

// Close terminates the browser process. Safe to call after a failed run.
func (d *Driver) Close() error {
	err := chromedp.Cancel(d.ctx)
	d.cancelCtx()
	d.cancelAlloc()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

func (d *Driver) bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	merged, cancelMerge := mergeContexts(d.ctx, ctx)
	boundedCtx, cancelTimeout := context.WithTimeout(merged, timeout)
	return boundedCtx, func() {
		cancelTimeout()
		cancelMerge()
	}
}

// mergeContexts derives from the browser context but also stops when the
// caller's context is done. chromedp actions must run on the browser context
// chain, so the caller's ctx cannot be used directly.
func mergeContexts(base, caller context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(base)
	if caller == context.Background() {
		return merged, cancel
	}
	stop := make(chan struct{})
	go func() {
		select {
		case <-caller.Done():
			cancel()
		case <-stop:
		}
	}()
	return merged, func() {
		close(stop)
		cancel()
	}
}

func classify(target string, err error) *NavError {
	kind := FailureNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		kind = FailureTimeout
	}
	return &NavError{URL: target, Kind: kind, Err: err}
}
