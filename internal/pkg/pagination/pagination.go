package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultSize = 20
	maxSize     = 200
)

// Query is the page/size pair read from a request's query string.
type Query struct {
	Page int
	Size int
}

// Offset returns the row offset for this page.
func (q Query) Offset() int { return (q.Page - 1) * q.Size }

// FromContext reads page/size query parameters, clamping them to sane bounds.
// Anything unparseable falls back to page 1 / the default size.
func FromContext(c *gin.Context) Query {
	q := Query{Page: 1, Size: defaultSize}

	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		q.Page = v
	}
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 {
		q.Size = v
		if q.Size > maxSize {
			q.Size = maxSize
		}
	}
	return q
}
