package wallet

import (
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Handler 钱包 HTTP 接口。所有路由都要求已认证。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 挂载钱包路由。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/wallet", h.GetMyWallet)
	rg.POST("/wallet/pay", h.Pay)
	rg.GET("/wallet/transfers", h.ListTransfers)
	rg.POST("/wallet/transfers/:id/release", h.ReleaseTransfer)
}

// GetMyWallet 查询（必要时创建）当前用户钱包。
func (h *Handler) GetMyWallet(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}
	w, err := h.svc.GetOrCreateWallet(c.Request.Context(), actor.UserID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, w)
}

type payRequest struct {
	ToUserID             string     `json:"to_user_id" binding:"required"`
	Amount               int64      `json:"amount" binding:"required"`
	ScheduledReleaseDate *time.Time `json:"scheduled_release_date"`
}

// Pay 向另一个用户发起托管支付。
func (h *Handler) Pay(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("to_user_id and amount are required"))
		return
	}

	transfer, err := h.svc.CreateEscrowTransfer(c.Request.Context(), actor.UserID, req.ToUserID, req.Amount, req.ScheduledReleaseDate)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.Created(c, transfer)
}

// ListTransfers 当前用户参与的托管转账。
func (h *Handler) ListTransfers(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}
	transfers, err := h.svc.ListTransfers(c.Request.Context(), actor.UserID, 50)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, transfers)
}

// ReleaseTransfer 释放一笔待释放的托管转账。
func (h *Handler) ReleaseTransfer(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}
	transfer, err := h.svc.ReleaseEscrow(c.Request.Context(), actor.UserID, actor.IsAdmin(), c.Param("id"), time.Now().UTC())
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, transfer)
}
