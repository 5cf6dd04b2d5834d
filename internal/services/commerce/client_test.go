package commerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserErrors(t *testing.T) {
	body := []byte(`{"errors":{"handle":["has already been taken"],"title":["can't be blank","is too short"]}}`)

	userErrors := parseUserErrors(body)
	assert.Equal(t, []UserError{
		{Field: "handle", Message: "has already been taken"},
		{Field: "title", Message: "can't be blank"},
		{Field: "title", Message: "is too short"},
	}, userErrors)
}

func TestParseUserErrorsFlatMessage(t *testing.T) {
	body := []byte(`{"errors":{"base":"something went wrong"}}`)

	userErrors := parseUserErrors(body)
	assert.Equal(t, []UserError{{Field: "base", Message: "something went wrong"}}, userErrors)
}

func TestParseUserErrorsUnparseableBody(t *testing.T) {
	userErrors := parseUserErrors([]byte("<html>gateway timeout</html>"))
	assert.Len(t, userErrors, 1)
	assert.Equal(t, "base", userErrors[0].Field)
}

func TestCreateResultBranching(t *testing.T) {
	ok := &CreateResult{Product: &Product{ID: 1}}
	assert.False(t, ok.Failed())
	assert.Equal(t, "", ok.FirstError())

	failed := &CreateResult{UserErrors: []UserError{{Field: "handle", Message: "taken"}}}
	assert.True(t, failed.Failed())
	assert.Equal(t, "taken", failed.FirstError())
}

func TestNextPageInfo(t *testing.T) {
	link := `<https://example.myshopify.com/admin/api/2023-10/products.json?limit=250&page_info=abc123>; rel="next"`
	assert.Equal(t, "abc123", nextPageInfo(link))

	prevOnly := `<https://example.myshopify.com/admin/api/2023-10/products.json?page_info=zzz>; rel="previous"`
	assert.Equal(t, "", nextPageInfo(prevOnly))

	assert.Equal(t, "", nextPageInfo(""))
}
