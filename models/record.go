package models

// TimeLayout is the capture timestamp format written to every output file.
const TimeLayout = "2006-01-02 15:04:05"

// SalesRecord is one row of the monthly sales ranking. Rank is the natural key.
type SalesRecord struct {
	Rank         int
	Name         string
	MonthlySales int
	SeriesID     string
	PriceRange   string
	Rating       float64
	CapturedAt   string
}

// CarInfo is one input row of the review workflow.
type CarInfo struct {
	SeriesID string
	Rank     int
	Name     string
}

// ReviewLink is a "view full review" link harvested from a listing page,
// paired by position with the purchase purposes shown next to it.
type ReviewLink struct {
	URL             string
	PurchasePurpose string
}

// Attribute names shown in the car info block of a review detail page.
var CarAttributes = []string{
	"行驶里程", "夏季电耗", "春秋电耗", "冬季电耗",
	"夏季续航", "春秋续航", "冬季续航", "百公里油耗",
	"裸车购买价", "购买时间", "购买地点",
}

// Review categories in output order.
var ReviewCategories = []string{
	"空间", "驾驶感受", "续航", "外观", "内饰", "性价比", "智能化", "油耗", "配置",
}

// CategoryScore is the star rating and comment a reviewer gave one category.
type CategoryScore struct {
	Rating  float64
	Comment string
}

// ReviewRecord is one owner review scraped from a detail page.
type ReviewRecord struct {
	CarName     string
	CarSpec     string
	PublishDate string

	// Attributes is keyed by the entries of CarAttributes; missing keys read as "".
	Attributes map[string]string

	MostSatisfied  string
	LeastSatisfied string

	// Scores is keyed by the entries of ReviewCategories.
	Scores map[string]CategoryScore

	Views    int
	Likes    int
	Comments int

	PurchasePurpose string
	Link            string
	CapturedAt      string
}

// NewReviewRecord returns a record with every attribute and category present
// at its default value.
func NewReviewRecord(link string) *ReviewRecord {
	r := &ReviewRecord{
		Link:       link,
		Attributes: make(map[string]string, len(CarAttributes)),
		Scores:     make(map[string]CategoryScore, len(ReviewCategories)),
	}
	for _, a := range CarAttributes {
		r.Attributes[a] = ""
	}
	for _, c := range ReviewCategories {
		r.Scores[c] = CategoryScore{}
	}
	return r
}
