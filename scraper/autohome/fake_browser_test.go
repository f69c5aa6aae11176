package autohome

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"autohome-scraper/config"
)

const blankPage = `<html><head></head><body></body></html>`

// fakeBrowser serves canned pages by URL. Clicks and scrolls run optional
// hooks that may swap the current page, imitating client-side rendering.
type fakeBrowser struct {
	pages   map[string]string
	navErrs map[string]error
	clicks  map[string]func(f *fakeBrowser) bool

	onScroll func(f *fakeBrowser)

	url  string
	html string

	navigated []string
	clicked   []string
	scripts   []string
	scrolls   int
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		pages:   map[string]string{},
		navErrs: map[string]error{},
		clicks:  map[string]func(f *fakeBrowser) bool{},
		html:    blankPage,
	}
}

func (f *fakeBrowser) show(url string) {
	f.url = url
	if page, ok := f.pages[url]; ok {
		f.html = page
	} else {
		f.html = blankPage
	}
}

func (f *fakeBrowser) Navigate(ctx context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	if err := f.navErrs[url]; err != nil {
		return err
	}
	f.show(url)
	return ctx.Err()
}

func (f *fakeBrowser) WaitFor(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.html))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
	}
	return nil
}

func (f *fakeBrowser) HTML(context.Context) (string, error) { return f.html, nil }

func (f *fakeBrowser) Click(_ context.Context, selector string, _ bool) (bool, error) {
	hook, ok := f.clicks[selector]
	if !ok {
		return false, nil
	}
	if hook(f) {
		f.clicked = append(f.clicked, selector)
		return true, nil
	}
	return false, nil
}

func (f *fakeBrowser) ScrollToBottom(context.Context) error {
	f.scrolls++
	if f.onScroll != nil {
		f.onScroll(f)
	}
	return nil
}

func (f *fakeBrowser) Run(_ context.Context, script string) error {
	f.scripts = append(f.scripts, script)
	return nil
}

func (f *fakeBrowser) URL(context.Context) (string, error) { return f.url, nil }

var _ Browser = (*fakeBrowser)(nil)

// testConfig has every wait and settle at zero so workflows run instantly.
func testConfig() *config.Config {
	return &config.Config{
		RankURL:       "https://www.autohome.test/rank/",
		ReviewBaseURL: "https://k.autohome.test",
		TargetCount:   500,
		MaxPages:      25,
		MaxRetries:    1,
	}
}
