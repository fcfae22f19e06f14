package server

import (
	"net/http"

	"github.com/SwiftSoko/SwiftSoko/internal/common/apperr"
	"github.com/gin-gonic/gin"
)

// OK 统一成功响应包装。
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created 资源创建成功。
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Fail 按 apperr.Kind 映射 HTTP 状态码，未识别错误一律 500。
func Fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status, msg = http.StatusBadRequest, err.Error()
	case apperr.KindPermission:
		status, msg = http.StatusForbidden, err.Error()
	case apperr.KindNotFound:
		status, msg = http.StatusNotFound, err.Error()
	case apperr.KindStateConflict, apperr.KindDuplicateBid:
		status, msg = http.StatusConflict, err.Error()
	case apperr.KindInsufficientFunds:
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case apperr.KindGateway:
		status, msg = http.StatusBadGateway, err.Error()
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
