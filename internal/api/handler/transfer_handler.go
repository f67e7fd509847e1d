package handler

import (
	"github.com/gin-gonic/gin"

	"storeops/internal/dto"
	"storeops/internal/service"
	"storeops/pkg/response"
)

// TransferHandler 任务转派 HTTP 处理器
type TransferHandler struct {
	transferSvc service.TransferService
}

// NewTransferHandler 创建 TransferHandler
func NewTransferHandler(transferSvc service.TransferService) *TransferHandler {
	return &TransferHandler{transferSvc: transferSvc}
}

// Transfer 将已认领任务转给同店另一名员工
// POST /api/v1/tasks/:id/transfer
func (h *TransferHandler) Transfer(c *gin.Context) {
	var req dto.TransferTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	record, err := h.transferSvc.Transfer(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, record)
}
