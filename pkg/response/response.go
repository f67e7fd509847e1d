package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "storeops/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// 业务错误码
const (
	CodeOK              = 0
	CodeInvalidParams   = 10001
	CodeUnauthenticated = 10002
	CodeForbidden       = 10003
	CodeValidation      = 40001
	CodePhotoLimit      = 40002
	CodeGeofence        = 40301
	CodeNotFound        = 40401
	CodeConflict        = 40901
	CodeRequestTooLarge = 41301
	CodeTooManyRequests = 42901
	CodeInternal        = 50000
)

// GeofenceDetail 围栏校验失败的诊断数据
type GeofenceDetail struct {
	DistanceMeters float64 `json:"distance_meters"`
	RadiusMeters   float64 `json:"radius_meters"`
	Source         string  `json:"source"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, CodeTooManyRequests, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "服务器内部错误")
}

// Fail 按业务错误类别写出响应；未识别的错误一律 500，不向客户端泄露内部细节
func Fail(c *gin.Context, err error) {
	var gv *pkgerrors.GeofenceViolation
	switch {
	case errors.As(err, &gv):
		c.JSON(http.StatusForbidden, Response{
			Code:    CodeGeofence,
			Message: pkgerrors.ErrGeofenceViolation.Error(),
			Data: GeofenceDetail{
				DistanceMeters: gv.DistanceMeters,
				RadiusMeters:   gv.RadiusMeters,
				Source:         string(gv.Source),
			},
			Details: gv.Error(),
		})
	case errors.Is(err, pkgerrors.ErrValidation):
		ErrorWithDetails(c, http.StatusBadRequest, CodeValidation, pkgerrors.ErrValidation.Error(), err.Error())
	case errors.Is(err, pkgerrors.ErrPhotoLimitExceeded):
		ErrorWithDetails(c, http.StatusBadRequest, CodePhotoLimit, pkgerrors.ErrPhotoLimitExceeded.Error(), err.Error())
	case errors.Is(err, pkgerrors.ErrAuthentication):
		Unauthorized(c, CodeUnauthenticated, err.Error())
	case errors.Is(err, pkgerrors.ErrAuthorization):
		ErrorWithDetails(c, http.StatusForbidden, CodeForbidden, pkgerrors.ErrAuthorization.Error(), err.Error())
	case errors.Is(err, pkgerrors.ErrNotFound):
		ErrorWithDetails(c, http.StatusNotFound, CodeNotFound, pkgerrors.ErrNotFound.Error(), err.Error())
	case errors.Is(err, pkgerrors.ErrConflict), errors.Is(err, pkgerrors.ErrOptimisticLock):
		ErrorWithDetails(c, http.StatusConflict, CodeConflict, pkgerrors.ErrConflict.Error(), err.Error())
	default:
		InternalError(c)
	}
}
