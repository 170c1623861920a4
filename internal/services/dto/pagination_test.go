package dto

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaginated_Links(t *testing.T) {
	base, err := url.Parse("http://api.test/api/v1/designs?search=rose&page=2&page_size=2")
	require.NoError(t, err)

	page := NewPaginated(&PageResult[string]{
		Items: []string{"c", "d"}, Total: 5, Page: 2, PageSize: 2,
	}, base)

	assert.Equal(t, int64(5), page.Count)
	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://api.test/api/v1/designs?page=3&page_size=2&search=rose", *page.Next)
	assert.Equal(t, "http://api.test/api/v1/designs?page_size=2&search=rose", *page.Previous)
}

func TestNewPaginated_SinglePage(t *testing.T) {
	base, _ := url.Parse("http://api.test/api/v1/designs")
	page := NewPaginated(&PageResult[int]{Total: 0, Page: 1, PageSize: 20}, base)

	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
}
