package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 条件写入未命中：记录已被其他操作修改或不满足前置状态
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ── 业务错误分类 ──
//
// 各 Service 通过 fmt.Errorf("%w: ...") 包装以下哨兵错误，
// Handler 层仅使用 errors.Is / errors.As 判断类别，不比较字符串。

var (
	ErrValidation         = errors.New("参数校验失败")
	ErrAuthentication     = errors.New("未认证")
	ErrAuthorization      = errors.New("无权限执行该操作")
	ErrGeofenceViolation  = errors.New("当前位置不在允许范围内")
	ErrConflict           = errors.New("操作冲突")
	ErrNotFound           = errors.New("资源不存在")
	ErrPhotoLimitExceeded = errors.New("照片数量不满足要求")
)

// Validation 构造参数校验错误
func Validation(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

// Authorization 构造权限错误
func Authorization(format string, args ...any) error {
	return wrap(ErrAuthorization, format, args...)
}

// Conflict 构造并发冲突错误
func Conflict(format string, args ...any) error {
	return wrap(ErrConflict, format, args...)
}

// NotFound 构造资源不存在错误
func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

// PhotoLimit 构造照片数量错误
func PhotoLimit(format string, args ...any) error {
	return wrap(ErrPhotoLimitExceeded, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// FenceSource 围栏来源
type FenceSource string

const (
	FenceSourceTask    FenceSource = "task"
	FenceSourceSession FenceSource = "checkin_session"
	FenceSourceSite    FenceSource = "site"
)

// GeofenceViolation 围栏校验失败，携带实测距离与允许半径用于诊断
type GeofenceViolation struct {
	DistanceMeters float64
	RadiusMeters   float64
	Source         FenceSource
}

func (e *GeofenceViolation) Error() string {
	return fmt.Sprintf("%s: 距离 %.1f 米，允许半径 %.1f 米（来源 %s）",
		ErrGeofenceViolation.Error(), e.DistanceMeters, e.RadiusMeters, e.Source)
}

// Is 使 errors.Is(err, ErrGeofenceViolation) 成立
func (e *GeofenceViolation) Is(target error) bool {
	return target == ErrGeofenceViolation
}
