package extract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"autohome-scraper/models"
	"autohome-scraper/utils"
)

const (
	fullReviewLinks  = "//a[contains(text(), '查看完整口碑')]"
	purposeGroup     = "div.list_buy_target__rsfaE"
	purposeItem      = "li.list_target__76fWs"
	carInfoItems     = "ul.car-info li.item-info"
	starContainer    = ".athm-star"
	starFill         = ".kb-star"
	reviewTimeline   = "//span[contains(text(), '首次发表')]"
	interactionViews = "span.option-views"
	interactionLikes = "span.option-goods"
	interactionCmts  = "span.option-comments"
)

var (
	reviewCarName = Field{Locators: []Locator{CSS(".main-series")}}
	reviewCarSpec = Field{Locators: []Locator{CSS(".main-spec")}}

	reviewPublishDate = Field{
		Locators: []Locator{
			CSS("div.timeline-con span"),
			CSS("div.timeline-con .timeline + span"),
			XPath(reviewTimeline),
			CSS(".timeline-con span"),
		},
		Accept: func(s string) bool {
			_, ok := NormalizePublishDate(s)
			return ok
		},
	}

	reviewMostSatisfied  = Field{Locators: satisfactionLocators("最满意")}
	reviewLeastSatisfied = Field{Locators: satisfactionLocators("最不满意")}

	categoryComment = Field{Locators: []Locator{
		XPath("./following-sibling::p[@class='kb-item-msg']"),
		XPath("../p[@class='kb-item-msg']"),
		XPath("./parent::div/p[@class='kb-item-msg']"),
	}, Accept: func(string) bool { return true }}

	reviewViews    = Field{Locators: []Locator{CSSAll(interactionViews)}, Accept: AcceptCount(1), Default: "0"}
	reviewLikes    = Field{Locators: []Locator{CSSAll(interactionLikes)}, Accept: AcceptCount(1), Default: "0"}
	reviewComments = Field{Locators: []Locator{CSSAll(interactionCmts)}, Accept: AcceptCount(1), Default: "0"}
)

func satisfactionLocators(title string) []Locator {
	return []Locator{
		XPath(fmt.Sprintf("//h1[contains(text(), '%s')]/following-sibling::p[@class='kb-item-msg']", title)),
		XPath(fmt.Sprintf("//h1[text()='%s']/following-sibling::p[@class='kb-item-msg']", title)),
		XPath(fmt.Sprintf("//div[@class='space kb-item']//h1[contains(text(), '%s')]/following-sibling::p", title)),
		XPath(fmt.Sprintf("//div[contains(@class, 'kb-item')]//h1[contains(text(), '%s')]/../p[@class='kb-item-msg']", title)),
	}
}

func categoryHeading(category string) []string {
	return []string{
		fmt.Sprintf("//h1[contains(text(), '%s')]", category),
		fmt.Sprintf("//div[@class='space kb-item']//h1[contains(text(), '%s')]", category),
	}
}

// ListingResult is what one review listing page yields.
type ListingResult struct {
	Links []models.ReviewLink
	// Inspected counts link elements, including those without an href.
	Inspected int
}

// ReviewExtractor reads review listings and review detail pages.
type ReviewExtractor struct {
	logger *utils.Logger
	now    func() time.Time
}

// NewReviewExtractor creates a ReviewExtractor. A nil now uses time.Now.
func NewReviewExtractor(logger *utils.Logger, now func() time.Time) *ReviewExtractor {
	if now == nil {
		now = time.Now
	}
	return &ReviewExtractor{logger: logger, now: now}
}

// AlignPurposes pairs purchase purposes with links by position: the i-th
// purpose group on the page is assumed to belong to the i-th link. Missing
// entries are padded with "" and surplus ones dropped so the result has
// exactly n entries.
func AlignPurposes(purposes []string, n int) []string {
	out := make([]string, n)
	copy(out, purposes)
	return out
}

// ExtractListing harvests the full-review links of a listing page together
// with their purchase purposes. Relative links are resolved against pageURL.
func (e *ReviewExtractor) ExtractListing(root *goquery.Selection, pageURL string) ListingResult {
	linkNodes := FindXPath(root, fullReviewLinks)

	var purposes []string
	root.Find(purposeGroup).Each(func(_ int, group *goquery.Selection) {
		var items []string
		group.Find(purposeItem).Each(func(_ int, li *goquery.Selection) {
			if t := strings.TrimSpace(li.Text()); t != "" {
				items = append(items, t)
			}
		})
		purposes = append(purposes, strings.Join(items, ", "))
	})
	if len(purposes) != linkNodes.Length() {
		e.logger.Debug("[extract] %d purpose groups for %d links, aligning by position",
			len(purposes), linkNodes.Length())
	}
	purposes = AlignPurposes(purposes, linkNodes.Length())

	res := ListingResult{Inspected: linkNodes.Length()}
	linkNodes.Each(func(i int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}
		res.Links = append(res.Links, models.ReviewLink{
			URL:             resolveURL(pageURL, href),
			PurchasePurpose: purposes[i],
		})
	})
	return res
}

// ExtractDetail reads one review detail page. Every field is extracted
// independently; whatever cannot be found keeps its default.
func (e *ReviewExtractor) ExtractDetail(root *goquery.Selection, link string) *models.ReviewRecord {
	r := models.NewReviewRecord(link)

	r.CarName = reviewCarName.Extract(root)
	r.CarSpec = reviewCarSpec.Extract(root)
	r.PublishDate = e.publishDate(root)

	root.Find(carInfoItems).Each(func(_ int, item *goquery.Selection) {
		name := strings.TrimSpace(item.Find(".name").First().Text())
		if _, known := r.Attributes[name]; !known {
			return
		}
		key := item.Find(".key").First()
		if key.Length() == 0 {
			return
		}
		r.Attributes[name] = strings.TrimSpace(key.Text())
	})

	r.MostSatisfied = reviewMostSatisfied.Extract(root)
	r.LeastSatisfied = reviewLeastSatisfied.Extract(root)
	if r.MostSatisfied == "" && r.LeastSatisfied == "" {
		e.logger.Debug("[extract] No satisfaction text on %s", link)
	}

	for _, category := range models.ReviewCategories {
		r.Scores[category] = e.categoryScore(root, category)
	}

	r.Views, _ = ParseCount(reviewViews.Extract(root), 1)
	r.Likes, _ = ParseCount(reviewLikes.Extract(root), 1)
	r.Comments, _ = ParseCount(reviewComments.Extract(root), 1)

	r.CapturedAt = e.now().Format(models.TimeLayout)
	return r
}

func (e *ReviewExtractor) publishDate(root *goquery.Selection) string {
	if raw, ok := TryLocators(root, reviewPublishDate.Accept, reviewPublishDate.Locators...); ok {
		d, _ := NormalizePublishDate(raw)
		return d
	}

	var date string
	root.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if d, ok := looseDate(strings.TrimSpace(s.Text())); ok {
			date = d
			return false
		}
		return true
	})
	if date == "" {
		e.logger.Debug("[extract] Publish date not found")
	}
	return date
}

func (e *ReviewExtractor) categoryScore(root *goquery.Selection, category string) models.CategoryScore {
	var heading *goquery.Selection
	for _, expr := range categoryHeading(category) {
		if found := FindXPath(root, expr); found.Length() > 0 {
			heading = found.First()
			break
		}
	}
	if heading == nil {
		return models.CategoryScore{}
	}

	var score models.CategoryScore
	if star := heading.Find(starContainer).First(); star.Length() > 0 {
		style, _ := star.Find(starFill).First().Attr("style")
		score.Rating = StarRating(style)
	}
	score.Comment = categoryComment.Extract(heading)
	return score
}

func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
