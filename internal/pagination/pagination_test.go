package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClamps(t *testing.T) {
	testCases := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", query: "", wantPage: 1, wantLimit: 20},
		{name: "explicit values", query: "page=3&limit=50", wantPage: 3, wantLimit: 50},
		{name: "page zero clamps to one", query: "page=0", wantPage: 1, wantLimit: 20},
		{name: "negative page clamps to one", query: "page=-5", wantPage: 1, wantLimit: 20},
		{name: "limit above max clamps", query: "limit=500", wantPage: 1, wantLimit: 100},
		{name: "limit zero clamps to one", query: "limit=0", wantPage: 1, wantLimit: 1},
		{name: "garbage falls back to defaults", query: "page=abc&limit=xyz", wantPage: 1, wantLimit: 20},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			assert.NoError(t, err)
			p := Parse(q)
			assert.Equal(t, tc.wantPage, p.Page)
			assert.Equal(t, tc.wantLimit, p.Limit)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, Params{Page: 3, Limit: 20}.Offset())
}

func TestNewResult(t *testing.T) {
	out := NewResult([]int{1, 2, 3}, 45, Params{Page: 2, Limit: 20})
	assert.Equal(t, 3, out.TotalPages)
	assert.Equal(t, int64(45), out.Total)
	assert.Equal(t, 2, out.Page)

	empty := NewResult[int](nil, 0, Params{Page: 1, Limit: 20})
	assert.Equal(t, 1, empty.TotalPages, "an empty listing still reports one page")
	assert.NotNil(t, empty.Data, "data must serialize as [] rather than null")
}
