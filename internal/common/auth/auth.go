package auth

import "strings"

// Role 系统角色（闭合枚举，持久化为字符串）。
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleUser   Role = "USER" // 普通用户 / 货主
	RoleDriver Role = "DRIVER"
)

// ParseRole 解析角色字符串；非法输入返回 RoleUser。
func ParseRole(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleDriver:
		return RoleDriver
	default:
		return RoleUser
	}
}

// Actor 经过鉴权的请求主体。核心引擎只信任这份身份，不再校验凭证。
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool  { return a.Role == RoleAdmin }
func (a Actor) IsDriver() bool { return a.Role == RoleDriver }
