package middleware

import (
	"github.com/danielgtaylor/huma/v2"
)

// Func мидлварь huma
type Func = func(ctx huma.Context, next func(huma.Context))

// Set общие мидлвари API. Каждый обработчик получает свою копию списка,
// поэтому дополнительные мидлвари одной группы не попадают в другие.
type Set struct {
	common huma.Middlewares
}

func NewSet(common ...Func) *Set {
	s := &Set{common: make(huma.Middlewares, 0, len(common))}
	for _, mw := range common {
		s.common = append(s.common, mw)
	}
	return s
}

// With общие мидлвари, затем extra, в порядке вызова
func (s *Set) With(extra ...Func) huma.Middlewares {
	out := make(huma.Middlewares, 0, len(s.common)+len(extra))
	out = append(out, s.common...)
	for _, mw := range extra {
		out = append(out, mw)
	}
	return out
}
