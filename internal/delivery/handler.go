package delivery

import (
	"strconv"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/auth"
	"github.com/SwiftSoko/SwiftSoko/internal/common/server"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Handler 货运单/竞价 HTTP 接口。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 挂载货运路由。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/businesses", h.CreateBusiness)
	rg.GET("/businesses", h.ListBusinesses)
	rg.GET("/businesses/:id", h.GetBusiness)
	rg.PUT("/businesses/:id/publish", h.SetPublished)
	rg.PUT("/businesses/:id/status", h.UpdateStatus)
	rg.GET("/businesses/:id/bids", h.BusinessBids)
	rg.POST("/businesses/:id/bids", server.RequireRoles(auth.RoleDriver), h.PlaceBid)
	rg.GET("/bids", server.RequireRoles(auth.RoleDriver), h.MyBids)
	rg.POST("/bids/:id/award", h.AwardBid)
	rg.POST("/bids/:id/cancel", server.RequireRoles(auth.RoleDriver), h.CancelBid)
}

// CreateBusiness 创建货运单。
func (h *Handler) CreateBusiness(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var in CreateBusinessInput
	if err := c.ShouldBindJSON(&in); err != nil {
		server.Fail(c, apperr.Validation("pickup_point and delivery_fee are required"))
		return
	}

	b, err := h.svc.CreateBusiness(c.Request.Context(), actor.UserID, in)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.Created(c, b)
}

// ListBusinesses 按角色过滤的货运单列表。
func (h *Handler) ListBusinesses(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	maxWait, _ := strconv.Atoi(c.Query("max_waiting_time"))
	f := BusinessFilter{
		Priority:       c.Query("priority"),
		MaxWaitingTime: maxWait,
		MinFee:         c.Query("min_fee"),
		MaxFee:         c.Query("max_fee"),
	}
	list, err := h.svc.ListBusinesses(c.Request.Context(), actor.UserID, actor.IsDriver(), f)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, list)
}

// GetBusiness 货运单详情。
func (h *Handler) GetBusiness(c *gin.Context) {
	if _, ok := server.MustActor(c); !ok {
		return
	}
	b, err := h.svc.GetBusiness(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, b)
}

type publishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// SetPublished 发布/下架货运单。
func (h *Handler) SetPublished(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("published flag required"))
		return
	}

	b, err := h.svc.SetPublished(c.Request.Context(), actor.UserID, actor.IsAdmin(), c.Param("id"), *req.Published)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, b)
}

type statusRequest struct {
	Status BusinessStatus `json:"status" binding:"required"`
}

// UpdateStatus 推进货运单状态。
func (h *Handler) UpdateStatus(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("status required"))
		return
	}

	b, err := h.svc.UpdateBusinessStatus(c.Request.Context(), actor.UserID, actor.IsAdmin(), c.Param("id"), req.Status)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, b)
}

type placeBidRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// PlaceBid 司机出价。
func (h *Handler) PlaceBid(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("amount required"))
		return
	}

	bid, err := h.svc.PlaceBid(c.Request.Context(), actor.UserID, c.Param("id"), req.Amount)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.Created(c, bid)
}

// AwardBid 货主定标。
func (h *Handler) AwardBid(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	bid, err := h.svc.AwardBid(c.Request.Context(), actor.UserID, c.Param("id"), time.Now().UTC())
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, bid)
}

type cancelBidRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelBid 司机撤回竞价。
func (h *Handler) CancelBid(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var req cancelBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("reason required"))
		return
	}

	bid, err := h.svc.CancelBid(c.Request.Context(), actor.UserID, c.Param("id"), req.Reason, time.Now().UTC())
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, bid)
}

// MyBids 司机自己的竞价。
func (h *Handler) MyBids(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}
	list, err := h.svc.MyBids(c.Request.Context(), actor.UserID, 50)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, list)
}

// BusinessBids 货运单下所有竞价。
func (h *Handler) BusinessBids(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}
	list, err := h.svc.BusinessBids(c.Request.Context(), actor.UserID, actor.IsAdmin(), c.Param("id"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, list)
}
