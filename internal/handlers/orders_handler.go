package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/easyorder/internal/apperr"
	"github.com/imrishuroy/easyorder/internal/idempotency"
	"github.com/imrishuroy/easyorder/internal/logging"
	"github.com/imrishuroy/easyorder/internal/orders"
	"github.com/imrishuroy/easyorder/internal/problem"
	"github.com/imrishuroy/easyorder/internal/validation"
)

// IdempotencyKeyHeader lets clients retry order creation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// RegisterOrdersRoutes registers /orders and POST /customers/:id/orders.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	ordersStore := orders.NewStore(cfg.DB)
	workflow := orders.NewWorkflow(ordersStore, cfg.Dispatcher, cfg.Logger)

	create := func(c *gin.Context, customerID int64) {
		ctx := c.Request.Context()

		raw, err := c.GetRawData()
		if err != nil {
			problem.ValidationFailed(c, "unreadable request body", nil)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))

		var req validation.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		if customerID == 0 {
			customerID = req.CustomerID
		}
		if customerID == 0 {
			problem.ValidationFailed(c, "customer is required", map[string]string{"customer_id": "is required"})
			return
		}
		in := orders.CreateInput{CustomerID: customerID, Description: req.Description}
		if req.TotalValue != nil {
			in.TotalValue = *req.TotalValue
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg.Idempotency == nil {
			order, err := workflow.Create(ctx, in)
			if err != nil {
				problem.Error(c, err)
				return
			}
			c.Header("Location", fmt.Sprintf("/orders/%d", order.ID))
			c.JSON(http.StatusCreated, order)
			return
		}

		// the customer may come from the URL, so it is part of the fingerprint
		hash := idempotency.Hash(append([]byte(strconv.FormatInt(customerID, 10)+"|"), raw...))
		rec, claimed, err := cfg.Idempotency.Claim(ctx, key, hash)
		switch {
		case errors.Is(err, idempotency.ErrKeyReused):
			problem.Error(c, apperr.Validation("%s %q was already used with a different request", IdempotencyKeyHeader, key))
			return
		case err != nil:
			problem.Error(c, fmt.Errorf("idempotency claim: %w", err))
			return
		case !claimed:
			replay(c, rec)
			return
		}

		order, err := workflow.Create(ctx, in)
		if err != nil {
			if rerr := cfg.Idempotency.Release(ctx, key); rerr != nil {
				log := logging.FromContext(ctx, cfg.Logger)
				log.Error().Err(rerr).Str("idempotency_key", key).Msg("failed to release idempotency key")
			}
			problem.Error(c, err)
			return
		}

		body, _ := json.Marshal(order)
		if err := cfg.Idempotency.Complete(ctx, key, order.ID, http.StatusCreated, body); err != nil {
			// the order exists; a retry with this key will see IN_PROGRESS until the key expires
			log := logging.FromContext(ctx, cfg.Logger)
			log.Error().Err(err).Str("idempotency_key", key).Int64("order_id", order.ID).Msg("failed to complete idempotency key")
		}
		c.Header("Location", fmt.Sprintf("/orders/%d", order.ID))
		c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
	}

	r.POST("/orders", func(c *gin.Context) {
		var customerID int64
		if raw := c.Query("customer_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				problem.ValidationFailed(c, "invalid query parameter", map[string]string{"customer_id": "must be a positive integer"})
				return
			}
			customerID = id
		}
		create(c, customerID)
	})

	r.POST("/customers/:id/orders", func(c *gin.Context) {
		customerID, ok := pathID(c, "id")
		if !ok {
			return
		}
		create(c, customerID)
	})

	r.GET("/orders", func(c *gin.Context) {
		page, ok := pageOf(c, cfg.Paging, v)
		if !ok {
			return
		}
		out, err := ordersStore.List(c.Request.Context(), page)
		if err != nil {
			problem.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	r.GET("/orders/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		out, err := ordersStore.Get(c.Request.Context(), id)
		if err != nil {
			problem.Error(c, err)
			return
		}
		if out == nil {
			problem.NotFoundFor(c, "order", id)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	r.PUT("/orders/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req validation.UpdateOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		out, err := ordersStore.Update(c.Request.Context(), id, orders.Order{Description: req.Description, CustomerID: req.CustomerID})
		if err != nil {
			problem.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	r.DELETE("/orders/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := ordersStore.Delete(c.Request.Context(), id); err != nil {
			problem.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

// replay answers a repeated request from its idempotency record.
func replay(c *gin.Context, rec *idempotency.Record) {
	c.Header("Idempotent-Replayed", "true")
	if rec.Status == idempotency.StatusDone && rec.ResponseBody != "" {
		if rec.OrderID > 0 {
			c.Header("Location", fmt.Sprintf("/orders/%d", rec.OrderID))
		}
		c.Data(rec.ResponseStatus, "application/json; charset=utf-8", []byte(rec.ResponseBody))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress"})
}
