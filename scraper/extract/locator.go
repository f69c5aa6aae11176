// Package extract turns DOM snapshots of the ranking and review pages into
// records. Every field is read through an ordered list of locators; the first
// locator yielding an accepted value wins and the field falls back to a
// declared default when none does.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Locator finds candidate values inside a scope. Candidates are returned in
// document order; an empty result means the locator failed.
type Locator interface {
	Candidates(scope *goquery.Selection) []string
}

// Accept reports whether a candidate value is usable for a field.
type Accept func(string) bool

// NonEmpty accepts any non-blank value.
func NonEmpty(s string) bool { return strings.TrimSpace(s) != "" }

// Contains accepts values containing substr.
func Contains(substr string) Accept {
	return func(s string) bool { return strings.Contains(s, substr) }
}

type cssText struct {
	selector string
	all      bool
}

// CSS reads the text of the first element matching selector.
func CSS(selector string) Locator { return cssText{selector: selector} }

// CSSAll reads the text of every element matching selector.
func CSSAll(selector string) Locator { return cssText{selector: selector, all: true} }

func (l cssText) Candidates(scope *goquery.Selection) []string {
	sel := scope.Find(l.selector)
	if !l.all {
		sel = sel.First()
	}
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

type cssAttr struct {
	selector string
	attr     string
}

// Attr reads attribute attr of the first element matching selector. An empty
// selector reads the attribute of the scope itself.
func Attr(selector, attr string) Locator { return cssAttr{selector: selector, attr: attr} }

func (l cssAttr) Candidates(scope *goquery.Selection) []string {
	sel := scope
	if l.selector != "" {
		sel = scope.Find(l.selector)
	}
	v, ok := sel.First().Attr(l.attr)
	if !ok {
		return nil
	}
	return []string{strings.TrimSpace(v)}
}

type xpathLoc struct {
	expr string
	attr string
	all  bool
}

// XPath reads the text of the first node matching expr, evaluated relative to
// each node of the scope.
func XPath(expr string) Locator { return xpathLoc{expr: expr} }

// XPathAll reads the text of every node matching expr.
func XPathAll(expr string) Locator { return xpathLoc{expr: expr, all: true} }

// XPathAttr reads attribute attr of the first node matching expr.
func XPathAttr(expr, attr string) Locator { return xpathLoc{expr: expr, attr: attr} }

func (l xpathLoc) Candidates(scope *goquery.Selection) []string {
	var out []string
	for _, n := range l.nodes(scope) {
		if l.attr != "" {
			out = append(out, strings.TrimSpace(htmlquery.SelectAttr(n, l.attr)))
		} else {
			out = append(out, strings.TrimSpace(htmlquery.InnerText(n)))
		}
		if !l.all {
			break
		}
	}
	return out
}

func (l xpathLoc) nodes(scope *goquery.Selection) []*html.Node {
	var found []*html.Node
	for _, root := range scope.Nodes {
		nodes, err := htmlquery.QueryAll(root, l.expr)
		if err != nil {
			return nil
		}
		found = append(found, nodes...)
	}
	return found
}

// FindXPath returns the nodes matching expr as a selection, for locators that
// continue from an element found by XPath. The result owns its node slice, so
// scope is left untouched.
func FindXPath(scope *goquery.Selection, expr string) *goquery.Selection {
	return &goquery.Selection{Nodes: xpathLoc{expr: expr}.nodes(scope)}
}

// TryLocators returns the first accepted candidate of the first locator that
// produces one. A nil accept means NonEmpty.
func TryLocators(scope *goquery.Selection, accept Accept, locators ...Locator) (string, bool) {
	if accept == nil {
		accept = NonEmpty
	}
	for _, loc := range locators {
		for _, c := range loc.Candidates(scope) {
			if accept(c) {
				return c, true
			}
		}
	}
	return "", false
}

// Field is a declared field: its ordered locators, acceptance rule and the
// value used when every locator fails.
type Field struct {
	Locators []Locator
	Accept   Accept
	Default  string
}

// Extract reads the field from scope, falling back to the default.
func (f Field) Extract(scope *goquery.Selection) string {
	if v, ok := TryLocators(scope, f.Accept, f.Locators...); ok {
		return v
	}
	return f.Default
}
