package ride

import (
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/auth"
	"github.com/SwiftSoko/SwiftSoko/internal/common/server"
	"github.com/SwiftSoko/SwiftSoko/internal/pricing"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Handler 行程 HTTP 接口。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 挂载行程路由。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/rides", h.CreateRide)
	rg.GET("/rides", h.MyRides)
	rg.GET("/rides/available", server.RequireRoles(auth.RoleDriver), h.AvailableRides)
	rg.GET("/rides/active", server.RequireRoles(auth.RoleDriver), h.ActiveRide)
	rg.GET("/rides/:id", h.GetRide)
	rg.POST("/rides/:id/accept", server.RequireRoles(auth.RoleDriver), h.Accept)
	rg.POST("/rides/:id/arrived", server.RequireRoles(auth.RoleDriver), h.DriverArrived)
	rg.POST("/rides/:id/start", server.RequireRoles(auth.RoleDriver), h.Start)
	rg.POST("/rides/:id/complete", server.RequireRoles(auth.RoleDriver), h.Complete)
	rg.POST("/rides/:id/cancel", h.Cancel)
	rg.POST("/rides/:id/rate", h.Rate)
}

type createRideRequest struct {
	PickupAddress  string             `json:"pickup_address" binding:"required"`
	DropoffAddress string             `json:"dropoff_address" binding:"required"`
	Pickup         pricing.Coordinate `json:"pickup" binding:"required"`
	Dropoff        pricing.Coordinate `json:"dropoff" binding:"required"`
}

// CreateRide 乘客下单。
func (h *Handler) CreateRide(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var req createRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("pickup and dropoff are required"))
		return
	}

	r, err := h.svc.CreateRide(c.Request.Context(), actor.UserID, CreateRideInput{
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		Pickup:         req.Pickup,
		Dropoff:        req.Dropoff,
	})
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.Created(c, r)
}

// GetRide 查询单个行程。
func (h *Handler) GetRide(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	r, err := h.svc.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	if !actor.IsAdmin() && actor.UserID != r.CustomerID && actor.UserID != r.DriverID {
		server.Fail(c, apperr.Permission("not a party to this ride"))
		return
	}
	server.OK(c, r)
}

// Accept 司机接单。
func (h *Handler) Accept(c *gin.Context) {
	h.transition(c, func(actorID string) (*Ride, error) {
		return h.svc.Accept(c.Request.Context(), c.Param("id"), actorID, time.Now().UTC())
	})
}

// DriverArrived 司机到达上车点。
func (h *Handler) DriverArrived(c *gin.Context) {
	h.transition(c, func(actorID string) (*Ride, error) {
		return h.svc.DriverArrived(c.Request.Context(), c.Param("id"), actorID, time.Now().UTC())
	})
}

// Start 开始行程。
func (h *Handler) Start(c *gin.Context) {
	h.transition(c, func(actorID string) (*Ride, error) {
		return h.svc.Start(c.Request.Context(), c.Param("id"), actorID, time.Now().UTC())
	})
}

type completeRequest struct {
	Fare       *decimal.Decimal `json:"fare"`
	DistanceKM float64          `json:"distance_km"`
}

// Complete 完成行程，可带实际车费覆盖预估价。
func (h *Handler) Complete(c *gin.Context) {
	var req completeRequest
	// body 可省略
	_ = c.ShouldBindJSON(&req)

	h.transition(c, func(actorID string) (*Ride, error) {
		return h.svc.Complete(c.Request.Context(), c.Param("id"), actorID, req.Fare, req.DistanceKM, time.Now().UTC())
	})
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Cancel 取消行程。
func (h *Handler) Cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("cancel reason required"))
		return
	}

	h.transition(c, func(actorID string) (*Ride, error) {
		return h.svc.Cancel(c.Request.Context(), c.Param("id"), actorID, req.Reason, time.Now().UTC())
	})
}

type rateRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Review string `json:"review"`
	Tags   string `json:"tags"`
}

// Rate 行程结束后评价。
func (h *Handler) Rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("rating required"))
		return
	}

	h.transition(c, func(actorID string) (*Ride, error) {
		return h.svc.Rate(c.Request.Context(), c.Param("id"), actorID, req.Rating, req.Review, req.Tags)
	})
}

func (h *Handler) transition(c *gin.Context, fn func(actorID string) (*Ride, error)) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}
	r, err := fn(actor.UserID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, r)
}

// AvailableRides 待接单行程。
func (h *Handler) AvailableRides(c *gin.Context) {
	list, err := h.svc.AvailableRides(c.Request.Context(), 50)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, list)
}

// MyRides 当前用户的行程。
func (h *Handler) MyRides(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}
	list, err := h.svc.MyRides(c.Request.Context(), actor.UserID, actor.IsDriver(), 50)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, list)
}

// ActiveRide 司机当前进行中的行程。
func (h *Handler) ActiveRide(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}
	r, err := h.svc.ActiveRide(c.Request.Context(), actor.UserID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, r)
}
