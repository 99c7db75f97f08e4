package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/easyorder/internal/deliveries"
	"github.com/imrishuroy/easyorder/internal/problem"
	"github.com/imrishuroy/easyorder/internal/validation"
)

// RegisterDeliveriesRoutes registers /deliveries.
func RegisterDeliveriesRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	s := deliveries.NewStore(cfg.DB)

	toDelivery := func(req validation.DeliveryRequest) deliveries.Delivery {
		d := deliveries.Delivery{Address: req.Address, Status: req.Status, OrderID: req.OrderID}
		if req.DeliveryDate != nil {
			d.DeliveryDate = *req.DeliveryDate
		}
		return d
	}

	g := r.Group("/deliveries")

	g.POST("", func(c *gin.Context) {
		var req validation.DeliveryRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		out, err := s.Create(c.Request.Context(), toDelivery(req))
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
			problem.NotFoundFor(c, "delivery", id)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	g.PUT("/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req validation.DeliveryRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		out, err := s.Update(c.Request.Context(), id, toDelivery(req))
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
