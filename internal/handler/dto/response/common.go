package response

// ListEnvelope wraps paginated admin listings.
type ListEnvelope[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

func NewListEnvelope[T any](items []T, total int64, page, perPage int) ListEnvelope[T] {
	return ListEnvelope[T]{Items: items, Total: total, Page: page, PerPage: perPage}
}

type LoginResponse struct {
	Token string `json:"token"`
}
