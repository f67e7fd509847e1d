package handler

import (
	"github.com/gin-gonic/gin"

	"storeops/internal/dto"
	"storeops/internal/service"
	"storeops/pkg/response"
)

// CheckinHandler 签到模块 HTTP 处理器
type CheckinHandler struct {
	checkinSvc service.CheckinService
}

// NewCheckinHandler 创建 CheckinHandler
func NewCheckinHandler(checkinSvc service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinSvc: checkinSvc}
}

// CheckIn 在门店签到；重复签到覆盖旧会话
// POST /api/v1/checkins
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	session, err := h.checkinSvc.CheckIn(c.Request.Context(), caller, req.SiteID, req.Point())
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, session)
}

// Current 当前签到会话
// GET /api/v1/checkins/me
func (h *CheckinHandler) Current(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.checkinSvc.Current(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if session == nil {
		response.NotFound(c, response.CodeNotFound, "当前未签到")
		return
	}

	response.OK(c, session)
}

// CheckOut 签退
// DELETE /api/v1/checkins/me
func (h *CheckinHandler) CheckOut(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.checkinSvc.CheckOut(c.Request.Context(), userID); err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, nil)
}
