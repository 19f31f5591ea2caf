package simplevault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestNormalizeListRequest(t *testing.T) {
	// Defaults
	req, err := normalizeListRequest(ListResourcesRequest{})
	require.NoError(t, err)
	assert.Equal(t, OrderDesc, req.Order)
	assert.Equal(t, SortByID, req.Sort)

	// Valid pagination passes through
	req, err = normalizeListRequest(ListResourcesRequest{Page: intp(2), PerPage: intp(10), Order: OrderAsc, Sort: SortBySize})
	require.NoError(t, err)
	assert.Equal(t, 2, *req.Page)

	// Pagination halves must travel together
	_, err = normalizeListRequest(ListResourcesRequest{Page: intp(1)})
	assert.Error(t, err)
	_, err = normalizeListRequest(ListResourcesRequest{PerPage: intp(10)})
	assert.Error(t, err)

	_, err = normalizeListRequest(ListResourcesRequest{Page: intp(0), PerPage: intp(10)})
	assert.Error(t, err)
	_, err = normalizeListRequest(ListResourcesRequest{Page: intp(1), PerPage: intp(0)})
	assert.Error(t, err)

	_, err = normalizeListRequest(ListResourcesRequest{Order: "sideways"})
	assert.Error(t, err)
	_, err = normalizeListRequest(ListResourcesRequest{Sort: "color"})
	assert.Error(t, err)
}

func listItems(ids ...string) []ResourceListItem {
	items := make([]ResourceListItem, len(ids))
	for i, id := range ids {
		items[i] = ResourceListItem{ResourceID: id, BasicMeta: &BasicMeta{}}
	}
	return items
}

func TestSortResources_ByID(t *testing.T) {
	items := listItems("b", "c", "a")

	sortResources(items, SortByID, OrderAsc)
	assert.Equal(t, "a", items[0].ResourceID)
	assert.Equal(t, "c", items[2].ResourceID)

	sortResources(items, SortByID, OrderDesc)
	assert.Equal(t, "c", items[0].ResourceID)
	assert.Equal(t, "a", items[2].ResourceID)
}

func TestSortResources_BySize(t *testing.T) {
	items := []ResourceListItem{
		{ResourceID: "big", BasicMeta: &BasicMeta{Contents: []ContentMeta{{Size: 100}, {Size: 50}}}},
		{ResourceID: "small", BasicMeta: &BasicMeta{Contents: []ContentMeta{{Size: 10}}}},
		{ResourceID: "empty", BasicMeta: &BasicMeta{}},
	}

	sortResources(items, SortBySize, OrderAsc)
	assert.Equal(t, []string{"empty", "small", "big"},
		[]string{items[0].ResourceID, items[1].ResourceID, items[2].ResourceID})
}

func TestSortResources_ByFilename(t *testing.T) {
	items := []ResourceListItem{
		{ResourceID: "1", BasicMeta: &BasicMeta{Contents: []ContentMeta{{Filename: "Zebra.txt"}}}},
		{ResourceID: "2", BasicMeta: &BasicMeta{Contents: []ContentMeta{{Filename: "apple.txt"}}}},
	}

	// Case-insensitive comparison
	sortResources(items, SortByFilename, OrderAsc)
	assert.Equal(t, "2", items[0].ResourceID)
}

func TestSortResources_BySortingDate(t *testing.T) {
	items := []ResourceListItem{
		{ResourceID: "new", DetailMeta: DetailMeta{"sorting_date": "2024-06-01"}},
		{ResourceID: "old", DetailMeta: DetailMeta{"sorting_date": "2020-01-15T10:00:00Z"}},
		{ResourceID: "none"},
	}

	sortResources(items, SortBySortingDate, OrderAsc)
	assert.Equal(t, []string{"none", "old", "new"},
		[]string{items[0].ResourceID, items[1].ResourceID, items[2].ResourceID})
}

func TestPaginate(t *testing.T) {
	items := listItems("a", "b", "c", "d", "e")

	// No pagination returns everything
	out, err := paginate(items, ListResourcesRequest{})
	require.NoError(t, err)
	assert.Len(t, out, 5)

	// Page 2 of size 2 holds items at offsets 2..3
	out, err = paginate(items, ListResourcesRequest{Page: intp(2), PerPage: intp(2)})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "c", out[0].ResourceID)
	assert.Equal(t, "d", out[1].ResourceID)

	// Last page may be short
	out, err = paginate(items, ListResourcesRequest{Page: intp(3), PerPage: intp(2)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "e", out[0].ResourceID)

	// Out of range
	_, err = paginate(items, ListResourcesRequest{Page: intp(4), PerPage: intp(2)})
	assert.Error(t, err)

	// Page 1 of an empty list is fine
	out, err = paginate(nil, ListResourcesRequest{Page: intp(1), PerPage: intp(2)})
	require.NoError(t, err)
	assert.Empty(t, out)
}
