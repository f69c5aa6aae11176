package paging

import (
	"context"

	"autohome-scraper/utils"
)

// WalkStatus says why a Walk ended.
type WalkStatus int

const (
	// WalkLastPage means no next-page locator worked.
	WalkLastPage WalkStatus = iota
	// WalkMaxPages means the page budget was used up.
	WalkMaxPages
	// WalkListingMissing means the listing container never appeared; the
	// items gathered before that page are kept.
	WalkListingMissing
	WalkCancelled
)

func (s WalkStatus) String() string {
	switch s {
	case WalkLastPage:
		return "last page"
	case WalkMaxPages:
		return "max pages"
	case WalkListingMissing:
		return "listing missing"
	default:
		return "cancelled"
	}
}

// PageSource is a paged listing: wait for it, harvest it, move to the next page.
type PageSource[T any] interface {
	WaitListing(ctx context.Context) error
	Harvest(ctx context.Context) ([]T, error)
	// Next advances to the following page and reports whether it could.
	Next(ctx context.Context) (bool, error)
}

// WalkResult is everything harvested by a Walk.
type WalkResult[T any] struct {
	Items  []T
	Pages  int
	Status WalkStatus
	// Err is the last page-level error met, if any. Items are valid regardless.
	Err error
}

// Walk harvests up to maxPages pages of src in order.
func Walk[T any](ctx context.Context, src PageSource[T], maxPages int, logger *utils.Logger) WalkResult[T] {
	var res WalkResult[T]

	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			res.Status, res.Err = WalkCancelled, err
			return res
		}

		if err := src.WaitListing(ctx); err != nil {
			logger.Warn("[walker] Page %d listing did not load: %v", page, err)
			res.Status, res.Err = WalkListingMissing, err
			if ctx.Err() != nil {
				res.Status = WalkCancelled
			}
			return res
		}
		res.Pages = page

		items, err := src.Harvest(ctx)
		if err != nil {
			logger.Warn("[walker] Page %d harvest failed: %v", page, err)
			res.Err = err
		}
		res.Items = append(res.Items, items...)
		logger.Debug("[walker] Page %d: %d items, %d total", page, len(items), len(res.Items))

		if page == maxPages {
			break
		}

		moved, err := src.Next(ctx)
		if err != nil {
			logger.Warn("[walker] Page %d next-page failed: %v", page, err)
			res.Err = err
		}
		if !moved {
			res.Status = WalkLastPage
			return res
		}
	}

	res.Status = WalkMaxPages
	return res
}
