package delivery

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// codeLength 货运单编码长度。
const codeLength = 12

// GenerateCode 生成货运单编码：对 所有者ID+随机数 做 sha256，
// 取前 12 个十六进制字符转大写。唯一性最终由数据库唯一索引保证，
// 撞码时由调用方重试。
func GenerateCode(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID + ":" + uuid.NewString()))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:codeLength])
}
