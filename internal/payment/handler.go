package payment

import (
	"io"
	"net/http"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/server"
	"github.com/gin-gonic/gin"
)

// paystackSignatureHeader 回调签名头。
const paystackSignatureHeader = "X-Paystack-Signature"

// Handler 支付 HTTP 接口。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 挂载需认证的支付路由。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/topup", h.TopUp)
	rg.GET("/payments/verify/:reference", h.Verify)
	rg.POST("/payments/withdraw", h.Withdraw)
	rg.GET("/payments/transactions", h.Transactions)
}

// RegisterWebhook 回调路由不走认证中间件，靠签名校验。
func (h *Handler) RegisterWebhook(rg *gin.RouterGroup) {
	rg.POST("/payments/webhook", h.Webhook)
}

type topUpRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Amount int64  `json:"amount" binding:"required"`
}

// TopUp 发起充值，返回网关支付链接。
func (h *Handler) TopUp(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var req topUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("email and amount are required"))
		return
	}

	result, tx, err := h.svc.TopUp(c.Request.Context(), actor.UserID, req.Email, req.Amount)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.Created(c, gin.H{"authorization": result, "transaction": tx})
}

// Verify 同步核验一笔充值。
func (h *Handler) Verify(c *gin.Context) {
	if _, ok := server.MustActor(c); !ok {
		return
	}
	tx, err := h.svc.VerifyPayment(c.Request.Context(), c.Param("reference"))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, tx)
}

type withdrawRequest struct {
	Amount        int64  `json:"amount" binding:"required"`
	AccountName   string `json:"account_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	BankCode      string `json:"bank_code"`
}

// Withdraw 提现到外部账户。
func (h *Handler) Withdraw(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("amount, account_name and account_number are required"))
		return
	}

	tx, err := h.svc.Withdraw(c.Request.Context(), WithdrawInput{
		UserID:        actor.UserID,
		Amount:        req.Amount,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
	})
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, tx)
}

// Transactions 当前用户支付流水。
func (h *Handler) Transactions(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}
	filter := HistoryFilter{
		Type:   TxType(c.Query("type")),
		Status: TxStatus(c.Query("status")),
	}
	list, err := h.svc.TransactionHistory(c.Request.Context(), actor.UserID, filter)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, list)
}

// Webhook 网关回调入口。签名失败统一返回 401，不泄露细节。
func (h *Handler) Webhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	err = h.svc.HandleWebhook(c.Request.Context(), raw, c.GetHeader(paystackSignatureHeader))
	if err != nil {
		if apperr.IsKind(err, apperr.KindPermission) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "webhook rejected"})
			return
		}
		server.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
