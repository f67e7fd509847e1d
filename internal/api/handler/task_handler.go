package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storeops/internal/dto"
	"storeops/internal/model"
	"storeops/internal/repository"
	"storeops/internal/service"
	"storeops/internal/upload"
	"storeops/pkg/response"
)

// TaskHandler 任务模块 HTTP 处理器
type TaskHandler struct {
	taskSvc   service.TaskService
	validator *upload.Validator
}

// NewTaskHandler 创建 TaskHandler
func NewTaskHandler(taskSvc service.TaskService, validator *upload.Validator) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc, validator: validator}
}

// Create 创建任务；携带 recurrence 时一次生成多条
// POST /api/v1/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	tasks, err := h.taskSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, dto.CreateTaskResponse{
		Tasks: dto.NewTaskListResponse(tasks),
		Count: len(tasks),
	})
}

// Get 任务详情
// GET /api/v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	task, err := h.taskSvc.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, dto.NewTaskResponse(task))
}

// ListBySite 门店任务列表
// GET /api/v1/sites/:id/tasks?status=available&status=claimed&claimed_by=&from=&to=
func (h *TaskHandler) ListBySite(c *gin.Context) {
	var req dto.TaskListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "查询参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	filter := repository.TaskFilter{
		ClaimedBy: req.ClaimedBy,
		From:      req.From,
		To:        req.To,
	}
	for _, s := range req.Status {
		filter.Statuses = append(filter.Statuses, model.TaskStatus(s))
	}

	tasks, err := h.taskSvc.ListBySite(c.Request.Context(), caller, c.Param("id"), filter)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, dto.NewTaskListResponse(tasks))
}

// Claim 认领任务
// POST /api/v1/tasks/:id/claim
func (h *TaskHandler) Claim(c *gin.Context) {
	var req dto.ClaimTaskRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	task, err := h.taskSvc.Claim(c.Request.Context(), caller, c.Param("id"), req.Point())
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, dto.NewTaskResponse(task))
}

// Start 开始处理任务
// POST /api/v1/tasks/:id/start
func (h *TaskHandler) Start(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	task, err := h.taskSvc.Start(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, dto.NewTaskResponse(task))
}

// UploadPhoto 上传凭证照片（multipart：photo 文件 + lat/lng/sub_item_id）
// POST /api/v1/tasks/:id/photos
func (h *TaskHandler) UploadPhoto(c *gin.Context) {
	var form dto.UploadPhotoForm
	if err := c.ShouldBind(&form); err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeRequestTooLarge, "照片过大")
			return
		}
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeRequestTooLarge, "照片过大")
			return
		}
		response.BadRequest(c, response.CodeInvalidParams, "缺少照片文件")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "照片读取失败")
		return
	}
	defer f.Close()

	result, err := h.validator.Read(f)
	if err != nil {
		response.Fail(c, err)
		return
	}

	photo, err := h.taskSvc.UploadPhoto(c.Request.Context(), caller, c.Param("id"), service.PhotoInput{
		Point:     form.Point(),
		SubItemID: form.SubItemID,
		Upload:    result,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Created(c, photo)
}

// ListPhotos 任务凭证照片列表
// GET /api/v1/tasks/:id/photos
func (h *TaskHandler) ListPhotos(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	photos, err := h.taskSvc.ListPhotos(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, photos)
}

// Complete 完成任务
// POST /api/v1/tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	var req dto.CompleteTaskRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	task, err := h.taskSvc.Complete(c.Request.Context(), caller, c.Param("id"), service.CompleteInput{
		Notes:                    req.Notes,
		OverridePhotoRequirement: req.OverridePhotoRequirement,
		Point:                    req.Point(),
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, dto.NewTaskResponse(task))
}

// MarkOverdue 手动标记逾期
// POST /api/v1/tasks/:id/overdue
func (h *TaskHandler) MarkOverdue(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	task, err := h.taskSvc.MarkOverdue(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, dto.NewTaskResponse(task))
}

// ListTransfers 任务转派记录
// GET /api/v1/tasks/:id/transfers
func (h *TaskHandler) ListTransfers(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	transfers, err := h.taskSvc.ListTransfers(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, transfers)
}

// bindOptionalJSON 请求体可为空；非空时按 JSON 绑定并校验
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// [自证通过] internal/api/handler/task_handler.go
