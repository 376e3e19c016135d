package data

// Page wraps one slice of a paginated result. It is constructed per query
// and never persisted.
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int64 `json:"current_page"`
	NumPages    int64 `json:"num_pages"`
	PageSize    int64 `json:"page_size"`
}

func NewPage[T any](data []T, currentPage, numPages, pageSize int64) Page[T] {
	if data == nil {
		data = []T{}
	}

	return Page[T]{
		Data:        data,
		CurrentPage: currentPage,
		NumPages:    numPages,
		PageSize:    pageSize,
	}
}
