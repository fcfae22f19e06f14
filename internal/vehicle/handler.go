package vehicle

import (
	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/SwiftSoko/SwiftSoko/internal/common/auth"
	"github.com/SwiftSoko/SwiftSoko/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Handler 车辆字典 HTTP 接口。查询对所有登录用户开放，写入仅管理员。
type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes 挂载字典路由。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/vehicles/catalog/:kind", h.List)
	rg.POST("/vehicles/catalog/:kind", server.RequireRoles(auth.RoleAdmin), h.Add)
}

// List 列出字典条目。
func (h *Handler) List(c *gin.Context) {
	kind := Kind(c.Param("kind"))
	if !kind.Valid() {
		server.Fail(c, apperr.Newf(apperr.KindValidation, "unknown catalog kind %q", kind))
		return
	}

	entries, err := h.repo.List(c.Request.Context(), kind)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.OK(c, entries)
}

type addRequest struct {
	Name     string `json:"name" binding:"required"`
	MakeName string `json:"make_name"`
}

// Add 新增字典条目。
func (h *Handler) Add(c *gin.Context) {
	kind := Kind(c.Param("kind"))
	if !kind.Valid() {
		server.Fail(c, apperr.Newf(apperr.KindValidation, "unknown catalog kind %q", kind))
		return
	}

	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, apperr.Validation("name required"))
		return
	}

	entry, err := h.repo.Add(c.Request.Context(), kind, req.Name, req.MakeName)
	if err != nil {
		server.Fail(c, err)
		return
	}
	server.Created(c, entry)
}
