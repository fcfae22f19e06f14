package ride

import (
	"fmt"
	"time"
)

// AllowTransition 定义行程状态机的允许流转关系。
// 采用“有向图”方式进行配置，取消可从任意非终态到达。
var AllowTransition = map[Status][]Status{
	StatusPending:       {StatusAccepted, StatusCancelled},
	StatusAccepted:      {StatusDriverArrived, StatusInProgress, StatusCancelled},
	StatusDriverArrived: {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress:    {StatusCompleted, StatusCancelled},
	// 终态：不允许从 completed / cancelled 再流转
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 对行程应用状态变更，并维护关键时间字段。
func ApplyTransition(r *Ride, to Status, now time.Time) error {
	if r == nil {
		return fmt.Errorf("ride is nil")
	}
	from := r.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid ride status transition: %s -> %s", from, to)
	}

	r.Status = to

	switch to {
	case StatusAccepted:
		if r.AcceptedAt == nil {
			t := now
			r.AcceptedAt = &t
		}
	case StatusDriverArrived:
		if r.ArrivedAt == nil {
			t := now
			r.ArrivedAt = &t
		}
	case StatusInProgress:
		if r.StartedAt == nil {
			t := now
			r.StartedAt = &t
		}
	case StatusCompleted:
		if r.CompletedAt == nil {
			t := now
			r.CompletedAt = &t
		}
	case StatusCancelled:
		if r.CancelledAt == nil {
			t := now
			r.CancelledAt = &t
		}
	}
	return nil
}
