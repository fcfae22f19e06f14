package driver

import (
	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/auth"
	"github.com/SwiftSoko/SwiftSoko/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Handler 司机可用性/评分 HTTP 接口。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 挂载司机路由。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/drivers/availability", server.RequireRoles(auth.RoleDriver), h.MyAvailability)
	rg.PUT("/drivers/availability", server.RequireRoles(auth.RoleDriver), h.SetAvailability)
	rg.GET("/drivers/available", h.AvailableDrivers)
	rg.POST("/drivers/:id/ratings", h.RateDriver)
	rg.GET("/drivers/:id/ratings", h.DriverRatings)
}

// MyAvailability 当前司机的可用性状态。
func (h *Handler) MyAvailability(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}
	a, err := h.svc.GetAvailability(c.Request.Context(), actor.UserID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, a)
}

type setAvailabilityRequest struct {
	Status Status `json:"status" binding:"required"`
}

// SetAvailability 司机自行上报可用性。
func (h *Handler) SetAvailability(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("status required"))
		return
	}

	a, err := h.svc.SetAvailability(c.Request.Context(), actor.UserID, req.Status)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, a)
}

// AvailableDrivers 可接单司机列表。
func (h *Handler) AvailableDrivers(c *gin.Context) {
	list, err := h.svc.AvailableDrivers(c.Request.Context(), 100)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, list)
}

type rateDriverRequest struct {
	Score   int    `json:"score" binding:"required"`
	RideID  string `json:"ride_id"`
	Comment string `json:"comment"`
}

// RateDriver 给司机评分。
func (h *Handler) RateDriver(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var req rateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("score required"))
		return
	}

	rating, err := h.svc.RateDriver(c.Request.Context(), actor.UserID, c.Param("id"), req.RideID, req.Score, req.Comment)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.Created(c, rating)
}

// DriverRatings 司机评分汇总。
func (h *Handler) DriverRatings(c *gin.Context) {
	summary, err := h.svc.DriverRatings(c.Request.Context(), c.Param("id"), 50)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, summary)
}
