package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/easyorder/internal/payments"
	"github.com/imrishuroy/easyorder/internal/problem"
	"github.com/imrishuroy/easyorder/internal/validation"
)

// RegisterPaymentsRoutes registers /payments, including the status transition endpoint.
func RegisterPaymentsRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	s := payments.NewStore(cfg.DB)

	toPayment := func(req validation.PaymentRequest) payments.Payment {
		return payments.Payment{
			OrderID:       req.OrderID,
			Amount:        req.Amount,
			Status:        req.Status,
			PaymentMethod: req.PaymentMethod,
		}
	}

	g := r.Group("/payments")

	g.POST("", func(c *gin.Context) {
		var req validation.PaymentRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		out, err := s.Create(c.Request.Context(), toPayment(req))
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
			problem.NotFoundFor(c, "payment", id)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	// PUT replaces the payment; status is required here since it is a full update.
	g.PUT("/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req validation.PaymentRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		if req.Status == "" {
			problem.ValidationFailed(c, "request validation failed", map[string]string{"status": "is required"})
			return
		}
		out, err := s.Update(c.Request.Context(), id, toPayment(req))
		if err != nil {
			problem.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	g.PATCH("/:id/status", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req validation.PaymentStatusRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		out, err := s.UpdateStatus(c.Request.Context(), id, req.Status)
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
