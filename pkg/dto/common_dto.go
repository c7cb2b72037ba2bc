package dto

// PageQuery is the limit/offset pair accepted by every list endpoint.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Normalize applies the server default when no limit was sent and caps it at max.
func (q PageQuery) Normalize(defaultLimit, maxLimit int) PageQuery {
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

type PaginationMeta struct {
	Count  int64 `json:"count"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type Page[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

func NewPage[T any](data []T, count int64, q PageQuery) *Page[T] {
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		Data: data,
		Meta: PaginationMeta{Count: count, Limit: q.Limit, Offset: q.Offset},
	}
}
