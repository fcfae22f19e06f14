package pricing

import (
	"github.com/SwiftSoko/SwiftSoko/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Handler 报价 HTTP 接口。
type Handler struct {
	estimator *Estimator
}

func NewHandler(estimator *Estimator) *Handler {
	return &Handler{estimator: estimator}
}

// RegisterRoutes 挂载报价路由。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/pricing/estimate", h.EstimateCost)
}

type estimateRequest struct {
	Pickup     Coordinate `json:"pickup" binding:"required"`
	Dropoff    Coordinate `json:"dropoff" binding:"required"`
	DistanceKM float64    `json:"distance_km"`
}

// EstimateCost 计算两点间车费报价。
func (h *Handler) EstimateCost(c *gin.Context) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(400, gin.H{"error": "pickup and dropoff coordinates required"})
		return
	}

	est := h.estimator.Estimate(c.Request.Context(), req.Pickup, req.Dropoff, req.DistanceKM)
	server.OK(c, est)
}
