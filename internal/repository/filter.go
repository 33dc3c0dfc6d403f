package repository

// Listing sort orders accepted by List.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
)

// Page size bounds for listing searches.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// PropertyFilter narrows a listing search. Zero values mean "no constraint".
// Only available listings are ever returned.
type PropertyFilter struct {
	Search    string
	Category  string
	PriceMin  *float64
	PriceMax  *float64
	MinBeds   int
	RoomType  string
	MinGuests int
	Sort      string
	Page      int
	Limit     int
}

// Offset is the number of rows skipped before the requested page.
func (f PropertyFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// IsValidSort reports whether s names a supported ordering.
func IsValidSort(s string) bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortRating:
		return true
	}
	return false
}
