package autohome

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"autohome-scraper/config"
	"autohome-scraper/utils"
)

const (
	navigateTimeout = 60 * time.Second
	actionTimeout   = 20 * time.Second
	probeTimeout    = 3 * time.Second
)

// Session is the single browser tab a workflow drives. It is owned by
// exactly one workflow and must be closed on every exit path.
type Session struct {
	logger *utils.Logger

	ctx           context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

type startStrategy struct {
	name string
	opts []chromedp.ExecAllocatorOption
}

// NewSession starts Chrome. The configured (or discovered) binary with the
// full flag set is tried first; chromedp's own binary lookup with default
// flags is the single fallback. The session outlives ctx: cancelling ctx
// aborts startup but only Close shuts the browser down.
func NewSession(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*Session, error) {
	primary := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if bin := findChromeBinary(cfg.ChromeBin); bin != "" {
		logger.Info("[session] Using browser binary: %s", bin)
		primary = append(primary, chromedp.ExecPath(bin))
	}

	strategies := []startStrategy{
		{name: "configured", opts: primary},
		{name: "default lookup", opts: append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("no-sandbox", true),
			chromedp.UserAgent(cfg.UserAgent),
		)},
	}

	var lastErr error
	for _, st := range strategies {
		s, err := startSession(ctx, st.opts, logger)
		if err == nil {
			logger.Info("[session] Browser started (%s)", st.name)
			return s, nil
		}
		lastErr = err
		logger.Error("[session] Browser start failed (%s): %v", st.name, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrSessionStart, lastErr)
}

func startSession(ctx context.Context, opts []chromedp.ExecAllocatorOption, logger *utils.Logger) (*Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	s := &Session{
		logger:        logger,
		ctx:           browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
	}

	// The first Run allocates the browser and must not carry a timeout, or the
	// whole browser dies with it.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, err
	}

	err := s.run(ctx, navigateTimeout,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriverScript).Do(ctx)
			return err
		}),
		chromedp.Navigate("about:blank"),
	)
	if err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, err
	}
	return s, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() error {
	if s == nil || s.cancelAlloc == nil {
		return nil
	}
	err := chromedp.Cancel(s.ctx)
	s.cancelBrowser()
	s.cancelAlloc()
	s.cancelAlloc = nil
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("session: close browser: %w", err)
	}
	s.logger.Info("[session] Browser closed")
	return nil
}

// run executes actions in the tab, bounded by timeout and aborted when the
// caller's ctx is done.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, navigateTimeout, chromedp.Navigate(url)); err != nil {
		return &PageError{Op: "navigate", Target: url, Err: err}
	}
	return nil
}

func (s *Session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	err := s.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %v", ErrWaitTimeout, selector, timeout)
	}
	return fmt.Errorf("wait for %s: %w", selector, err)
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	var out string
	if err := s.run(ctx, actionTimeout, chromedp.OuterHTML("html", &out, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("snapshot page: %w", err)
	}
	return out, nil
}

func (s *Session) Click(ctx context.Context, selector string, skipDisabled bool) (bool, error) {
	var nodes []*cdp.Node
	if err := s.run(ctx, probeTimeout, chromedp.Nodes(selector, &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, nil
	}
	if len(nodes) == 0 {
		return false, nil
	}
	node := nodes[0]
	if hasAttribute(node, "disabled") {
		return false, nil
	}
	if skipDisabled && strings.Contains(node.AttributeValue("class"), "disabled") {
		return false, nil
	}

	err := s.run(ctx, probeTimeout, chromedp.Click([]cdp.NodeID{node.NodeID}, chromedp.ByNodeID, chromedp.NodeVisible))
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		s.logger.Debug("[session] %s present but not clickable: %v", selector, err)
		return false, nil
	}
	return true, nil
}

func (s *Session) ScrollToBottom(ctx context.Context) error {
	return s.Run(ctx, scrollToBottomScript)
}

func (s *Session) Run(ctx context.Context, script string) error {
	if err := s.run(ctx, actionTimeout, chromedp.Evaluate(script, nil)); err != nil {
		return fmt.Errorf("evaluate script: %w", err)
	}
	return nil
}

func (s *Session) URL(ctx context.Context) (string, error) {
	var u string
	if err := s.run(ctx, actionTimeout, chromedp.Location(&u)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return u, nil
}

func hasAttribute(n *cdp.Node, name string) bool {
	for i := 0; i+1 < len(n.Attributes); i += 2 {
		if n.Attributes[i] == name {
			return true
		}
	}
	return false
}

// findChromeBinary locates a Chrome/Chromium binary, preferring the
// configured one.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
