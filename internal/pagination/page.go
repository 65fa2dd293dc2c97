// Package pagination slices result lists into numbered pages and pages
// through stored telemetry events by cursor.
package pagination

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 10

// MaxWindow is the most page numbers offered for navigation at once.
const MaxWindow = 6

// Page is one numbered page of a result list.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Current    int   `json:"current"`
	TotalPages int   `json:"total_pages"`
	TotalItems int   `json:"total_items"`
	PageSize   int   `json:"page_size"`
	Window     []int `json:"window"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// Paginate returns page currentPage (1-based) of items. Out of range pages
// are clamped to the first or last page.
func Paginate[T any](items []T, pageSize, currentPage int) Page[T] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := (len(items) + pageSize - 1) / pageSize
	current := clamp(currentPage, 1, max(total, 1))

	page := Page[T]{
		Items:      []T{},
		Current:    current,
		TotalPages: total,
		TotalItems: len(items),
		PageSize:   pageSize,
		Window:     Window(current, total),
		HasPrev:    current > 1,
		HasNext:    current < total,
	}
	if total == 0 {
		return page
	}

	start := (current - 1) * pageSize
	end := min(start+pageSize, len(items))
	page.Items = items[start:end]
	return page
}

// Window returns the page numbers offered around current: up to five pages
// before it, then as many after it as fit in MaxWindow.
func Window(current, total int) []int {
	if total < 1 {
		return []int{}
	}
	current = clamp(current, 1, total)

	start := max(1, current-(MaxWindow-1))
	end := min(total, start+MaxWindow-1)

	window := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		window = append(window, p)
	}
	return window
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
