package user

import (
	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/auth"
	"github.com/SwiftSoko/SwiftSoko/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Handler 用户 HTTP 接口。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes 注册/登录等无须认证的路由。
// OTP 签发路由由 main 挂限流中间件。
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, otpLimit gin.HandlerFunc) {
	otpGroup := rg.Group("")
	if otpLimit != nil {
		otpGroup.Use(otpLimit)
	}
	otpGroup.POST("/auth/otp", h.RequestOTP)

	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
}

// RegisterRoutes 需认证的用户路由。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me", h.Me)
	rg.PUT("/users/me/profile", h.CompleteProfile)
	rg.PUT("/users/:id/role", server.RequireRoles(auth.RoleAdmin), h.UpdateRole)
}

type otpRequest struct {
	Contact string `json:"contact" binding:"required"`
}

// RequestOTP 给联系方式发注册验证码。
func (h *Handler) RequestOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("contact required"))
		return
	}
	if err := h.svc.RequestOTP(c.Request.Context(), req.Contact); err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, gin.H{"sent": true})
}

type registerRequest struct {
	Contact  string `json:"contact" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Register 验证码注册。
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("contact, code and password are required"))
		return
	}

	result, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Contact:  req.Contact,
		Code:     req.Code,
		Password: req.Password,
		Role:     auth.Role(req.Role),
	})
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.Created(c, result)
}

type loginRequest struct {
	Contact  string `json:"contact" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("contact and password are required"))
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Contact, req.Password)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, result)
}

// meResponse 用户 + 资料完整度。
type meResponse struct {
	*User
	ProfileComplete bool `json:"profile_complete"`
}

// Me 当前用户。
func (h *Handler) Me(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}
	u, err := h.svc.Me(c.Request.Context(), actor.UserID)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, meResponse{User: u, ProfileComplete: IsProfileComplete(u)})
}

// CompleteProfile 补全资料。
func (h *Handler) CompleteProfile(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var in ProfileUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		server.Fail(c, apperr.Validation("malformed profile payload"))
		return
	}

	u, err := h.svc.CompleteProfile(c.Request.Context(), actor.UserID, in)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, meResponse{User: u, ProfileComplete: IsProfileComplete(u)})
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole 管理员调整角色。
func (h *Handler) UpdateRole(c *gin.Context) {
	actor, ok := server.MustActor(c)
	if !ok {
		return
	}

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("role required"))
		return
	}

	u, err := h.svc.UpdateRole(c.Request.Context(), actor.UserID, c.Param("id"), auth.Role(req.Role))
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, u)
}
