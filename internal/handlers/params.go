package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/easyorder/internal/problem"
	"github.com/imrishuroy/easyorder/internal/store"
	"github.com/imrishuroy/easyorder/internal/validation"
)

// pathID parses a positive :name path parameter, writing a 422 when invalid.
func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		problem.ValidationFailed(c, "invalid path parameter", map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// pageOf binds ?offset=&limit= into a normalised page, writing a 422 when invalid.
func pageOf(c *gin.Context, paging store.Paging, v *validatorv10.Validate) (store.Page, bool) {
	var q validation.PageQuery
	if err := validation.BindQueryAndValidate(c, &q, v); err != nil {
		return store.Page{}, false
	}
	page, err := paging.Page(q.Offset, q.Limit)
	if err != nil {
		problem.Error(c, err)
		return store.Page{}, false
	}
	return page, true
}
