package simplevault

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// normalizeListRequest validates pagination, order and sort key, applying
// defaults for the absent ones.
func normalizeListRequest(req ListResourcesRequest) (ListResourcesRequest, error) {
	if (req.Page == nil) != (req.PerPage == nil) {
		return req, NewValidationError("pagination", "page and per_page must be supplied together")
	}
	if req.Page != nil {
		if *req.Page < 1 {
			return req, NewValidationError("page", "must be a positive integer")
		}
		if *req.PerPage < 1 {
			return req, NewValidationError("per_page", "must be a positive integer")
		}
	}

	switch req.Order {
	case "":
		req.Order = OrderDesc
	case OrderAsc, OrderDesc:
	default:
		return req, NewValidationError("order", fmt.Sprintf("unknown order %q", req.Order))
	}

	switch req.Sort {
	case "":
		req.Sort = SortByID
	case SortByID, SortByCreatedAt, SortByUpdatedAt, SortByFilename,
		SortBySize, SortBySortingString, SortBySortingDate:
	default:
		return req, NewValidationError("sort", fmt.Sprintf("unknown sort key %q", req.Sort))
	}

	return req, nil
}

// sortResources orders items in place by the given key and order.
func sortResources(items []ResourceListItem, sortKey, order string) {
	less := lessFunc(sortKey)
	sort.SliceStable(items, func(i, j int) bool {
		if order == OrderDesc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func lessFunc(sortKey string) func(a, b ResourceListItem) bool {
	switch sortKey {
	case SortByCreatedAt:
		return func(a, b ResourceListItem) bool {
			return basicTime(a, false).Before(basicTime(b, false))
		}
	case SortByUpdatedAt:
		return func(a, b ResourceListItem) bool {
			return basicTime(a, true).Before(basicTime(b, true))
		}
	case SortByFilename:
		return func(a, b ResourceListItem) bool {
			return strings.ToLower(firstFilename(a)) < strings.ToLower(firstFilename(b))
		}
	case SortBySize:
		return func(a, b ResourceListItem) bool {
			return totalSize(a) < totalSize(b)
		}
	case SortBySortingString:
		return func(a, b ResourceListItem) bool {
			return detailString(a, "sorting_string") < detailString(b, "sorting_string")
		}
	case SortBySortingDate:
		return func(a, b ResourceListItem) bool {
			return detailDate(a).Before(detailDate(b))
		}
	default: // SortByID; ULIDs sort lexicographically by creation time
		return func(a, b ResourceListItem) bool {
			return a.ResourceID < b.ResourceID
		}
	}
}

// paginate slices items per the normalized request. An out-of-range page is a
// validation error; page 1 of an empty list is not.
func paginate(items []ResourceListItem, req ListResourcesRequest) ([]ResourceListItem, error) {
	if req.Page == nil {
		return items, nil
	}
	page, perPage := *req.Page, *req.PerPage
	start := (page - 1) * perPage
	if start >= len(items) && !(start == 0 && len(items) == 0) {
		return nil, NewValidationError("page", fmt.Sprintf("page %d is out of range", page))
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], nil
}

func basicTime(item ResourceListItem, updated bool) time.Time {
	if item.BasicMeta == nil {
		return time.Time{}
	}
	if updated {
		return item.BasicMeta.UpdatedAt
	}
	return item.BasicMeta.CreatedAt
}

func firstFilename(item ResourceListItem) string {
	if item.BasicMeta == nil || len(item.BasicMeta.Contents) == 0 {
		return ""
	}
	return item.BasicMeta.Contents[0].Filename
}

func totalSize(item ResourceListItem) int64 {
	if item.BasicMeta == nil {
		return 0
	}
	var total int64
	for _, c := range item.BasicMeta.Contents {
		total += c.Size
	}
	return total
}

func detailString(item ResourceListItem, key string) string {
	if item.DetailMeta == nil {
		return ""
	}
	if s, ok := item.DetailMeta[key].(string); ok {
		return strings.ToLower(s)
	}
	return ""
}

func detailDate(item ResourceListItem) time.Time {
	raw := ""
	if item.DetailMeta != nil {
		raw, _ = item.DetailMeta["sorting_date"].(string)
	}
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
