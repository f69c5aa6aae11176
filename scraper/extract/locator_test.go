package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, page string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc.Selection
}

const locatorPage = `<html><body>
<div id="item" data-id="42">
  <span class="a"> first </span>
  <span class="a">second</span>
  <b class="num">7</b>
  <b class="num">1234</b>
  <a class="link" href="/x">go</a>
</div>
</body></html>`

func TestCSSLocators(t *testing.T) {
	root := mustDoc(t, locatorPage)

	assert.Equal(t, []string{"first"}, CSS("span.a").Candidates(root))
	assert.Equal(t, []string{"first", "second"}, CSSAll("span.a").Candidates(root))
	assert.Empty(t, CSS("span.missing").Candidates(root))
}

func TestAttrLocator(t *testing.T) {
	root := mustDoc(t, locatorPage)

	assert.Equal(t, []string{"/x"}, Attr("a.link", "href").Candidates(root))
	assert.Nil(t, Attr("a.link", "title").Candidates(root))

	item := root.Find("#item")
	assert.Equal(t, []string{"42"}, Attr("", "data-id").Candidates(item))
}

func TestXPathLocators(t *testing.T) {
	root := mustDoc(t, locatorPage)

	assert.Equal(t, []string{"first"}, XPath("//span[@class='a']").Candidates(root))
	assert.Equal(t, []string{"first", "second"}, XPathAll("//span[@class='a']").Candidates(root))
	assert.Equal(t, []string{"/x"}, XPathAttr("//a[contains(text(), 'go')]", "href").Candidates(root))
	assert.Nil(t, XPath("//*[").Candidates(root), "invalid expressions fail quietly")
}

func TestFindXPathRelative(t *testing.T) {
	root := mustDoc(t, locatorPage)

	first := FindXPath(root, "//span[@class='a']").First()
	require.Equal(t, 1, first.Length())
	assert.Equal(t, []string{"second"}, XPath("./following-sibling::span").Candidates(first))
}

func TestFindXPathLeavesScopeIntact(t *testing.T) {
	root := mustDoc(t, locatorPage)
	before := root.Nodes[0]

	found := FindXPath(root, "//a")
	require.Equal(t, 1, found.Length())

	assert.Same(t, before, root.Nodes[0])
	assert.Equal(t, 1, root.Length())
	assert.Equal(t, 2, root.Find("span.a").Length(), "later lookups still search the whole page")
	assert.Equal(t, "7", root.Find("b.num").First().Text())
}

func TestTryLocatorsOrder(t *testing.T) {
	root := mustDoc(t, locatorPage)

	tests := []struct {
		name     string
		accept   Accept
		locators []Locator
		want     string
		ok       bool
	}{
		{"first locator wins", nil, []Locator{CSS("span.a"), CSS("a.link")}, "first", true},
		{"falls through failing locator", nil, []Locator{CSS("span.none"), CSS("a.link")}, "go", true},
		{"accept filters candidates", AcceptCount(2), []Locator{CSSAll("b.num")}, "1234", true},
		{"nothing accepted", AcceptCount(5), []Locator{CSSAll("b.num")}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TryLocators(root, tt.accept, tt.locators...)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldDefault(t *testing.T) {
	root := mustDoc(t, locatorPage)

	f := Field{Locators: []Locator{CSS("span.none")}, Default: "0"}
	assert.Equal(t, "0", f.Extract(root))

	f = Field{Locators: []Locator{CSS("a.link")}, Accept: Contains("万")}
	assert.Equal(t, "", f.Extract(root))
}
