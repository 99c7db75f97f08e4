package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/easyorder/internal/customers"
	"github.com/imrishuroy/easyorder/internal/problem"
	"github.com/imrishuroy/easyorder/internal/validation"
)

// RegisterCustomersRoutes registers /customers.
func RegisterCustomersRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	s := customers.NewStore(cfg.DB)

	g := r.Group("/customers")

	g.POST("", func(c *gin.Context) {
		var req validation.CustomerRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		out, err := s.Create(c.Request.Context(), customers.Customer{Name: req.Name, Email: req.Email})
		if err != nil {
			problem.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	})

	g.GET("", func(c *gin.Context) {
		page, ok := pageOf(c, cfg.Paging, v)
		if !ok {
			return
		}
		out, err := s.List(c.Request.Context(), page)
		if err != nil {
			problem.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	g.GET("/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		out, err := s.Get(c.Request.Context(), id)
		if err != nil {
			problem.Error(c, err)
			return
		}
		if out == nil {
			problem.NotFoundFor(c, "customer", id)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	g.PUT("/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req validation.CustomerRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		out, err := s.Update(c.Request.Context(), id, customers.Customer{Name: req.Name, Email: req.Email})
		if err != nil {
			problem.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := s.Delete(c.Request.Context(), id); err != nil {
			problem.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}
