package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func queryContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		expected Query
	}{
		{"defaults", "", Query{Page: 1, Size: 20}},
		{"explicit", "page=3&size=50", Query{Page: 3, Size: 50}},
		{"size clamped", "size=9999", Query{Page: 1, Size: 200}},
		{"garbage ignored", "page=abc&size=-5", Query{Page: 1, Size: 20}},
		{"zero page ignored", "page=0", Query{Page: 1, Size: 20}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FromContext(queryContext(t, tc.query)))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Zero(t, Query{Page: 1, Size: 20}.Offset())
	assert.Equal(t, 40, Query{Page: 3, Size: 20}.Offset())
}
