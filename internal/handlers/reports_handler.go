package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/easyorder/internal/problem"
	"github.com/imrishuroy/easyorder/internal/reports"
)

// RegisterReportsRoutes registers the read-only /reports endpoints.
func RegisterReportsRoutes(r *gin.Engine, cfg HandlerConfig) {
	svc := reports.NewService(cfg.DB)
	g := r.Group("/reports")

	g.GET("/orders-per-customer", func(c *gin.Context) {
		out, err := svc.OrdersPerCustomer(c.Request.Context())
		if err != nil {
			problem.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	g.GET("/revenue", func(c *gin.Context) {
		out, err := svc.Revenue(c.Request.Context(), c.Query("start"), c.Query("end"))
		if err != nil {
			problem.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	g.GET("/low-stock", func(c *gin.Context) {
		threshold := reports.DefaultLowStockThreshold
		if raw := c.Query("threshold"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				problem.ValidationFailed(c, "invalid query parameter", map[string]string{"threshold": "must be an integer"})
				return
			}
			threshold = n
		}
		out, err := svc.LowStock(c.Request.Context(), threshold)
		if err != nil {
			problem.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})
}
