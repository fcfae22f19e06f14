package otp

import (
	"context"

	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
)

// LogNotifier 默认投递实现：只写日志，不外发。
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendOTP(ctx context.Context, contact, code string) error {
	if n.log != nil {
		n.log.Infof("otp for %s: %s", contact, code)
	}
	return nil
}
