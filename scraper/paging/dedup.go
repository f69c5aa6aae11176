// Package paging holds the control loops shared by the scraping workflows:
// natural-key deduplication, the patience-bounded incremental loader and the
// page-by-page walker.
package paging

// Dedup returns the records of batch whose natural key does not occur in
// accumulated, in batch order. Neither input is modified. Repeated keys
// within batch are all kept; only keys already accumulated are filtered.
func Dedup[R any, K comparable](accumulated, batch []R, key func(R) K) []R {
	seen := make(map[K]struct{}, len(accumulated))
	for _, r := range accumulated {
		seen[key(r)] = struct{}{}
	}

	var fresh []R
	for _, r := range batch {
		if _, ok := seen[key(r)]; ok {
			continue
		}
		fresh = append(fresh, r)
	}
	return fresh
}
