package taskControllers

import (
	"errors"
	"strconv"

	"letterdesk/middleware"
	"letterdesk/models"
	"letterdesk/permissions"
	"letterdesk/taskflow"
	"letterdesk/taskquery"
	taskValidator "letterdesk/validators/task"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TaskController struct {
	DB     *gorm.DB
	Flow   *taskflow.Controller
	Query  *taskquery.Service
	Inline *middleware.InlineGuard
}

// requester loads the active session user for a permission-gated call.
func (tc *TaskController) requester(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, errors.New("unauthorized")
	}
	var user models.User
	if err := tc.DB.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
		return nil, errors.New("unauthorized")
	}
	return &user, nil
}

func taskIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid task id")
	}
	return uint(id), nil
}

func (tc *TaskController) Create(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCreateTask").(*taskValidator.CreateTaskRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	task, err := tc.Flow.Create(user, taskflow.CreateInput{
		Title:        reqData.Title,
		Description:  reqData.Description,
		Priority:     models.TaskPriority(reqData.Priority),
		AssignedToID: reqData.AssignedToID,
		BranchID:     reqData.BranchID,
		DueDate:      reqData.DueDate,
		Notes:        reqData.Notes,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task created successfully!", task)
}

func (tc *TaskController) List(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedList").(*taskValidator.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tasks, total, err := tc.Query.List(user, taskquery.Filters{
		Status:     reqData.Status,
		Priority:   reqData.Priority,
		AssigneeID: reqData.AssigneeID,
		BranchID:   reqData.BranchID,
		Search:     reqData.Search,
		Timeframe:  reqData.Timeframe,
		TaskType:   reqData.TaskType,
		Page:       reqData.Page,
		Limit:      reqData.Limit,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	page := reqData.Page
	if page < 1 {
		page = 1
	}
	limit := reqData.Limit
	if limit < 1 {
		limit = 10
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tasks fetched successfully!", fiber.Map{
		"tasks": tasks,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

func (tc *TaskController) Summary(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var branchID *uint
	if raw := c.Query("branch_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid branch id!", nil)
		}
		b := uint(id)
		branchID = &b
	}

	summary, err := tc.Query.Summarize(user, branchID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Summary fetched successfully!", fiber.Map{
		"summary":        summary,
		"canCreateTasks": tc.Inline.Allow(user.ID, permissions.CreateTasks),
	})
}

func (tc *TaskController) Get(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid task id!", nil)
	}

	task, err := tc.Flow.Get(user, taskID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task fetched successfully!", task)
}

func (tc *TaskController) Logs(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid task id!", nil)
	}

	logs, err := tc.Flow.Logs(user, taskID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task logs fetched successfully!", logs)
}

func (tc *TaskController) Transition(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid task id!", nil)
	}

	reqData, ok := c.Locals("validatedTransition").(*taskValidator.TransitionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	task, err := tc.Flow.Transition(user, taskflow.TransitionInput{
		TaskID:   taskID,
		Expected: models.TaskStatus(reqData.Expected),
		To:       models.TaskStatus(reqData.To),
		Reason:   reqData.Reason,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task status updated successfully!", task)
}

func (tc *TaskController) Comment(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid task id!", nil)
	}

	reqData, ok := c.Locals("validatedComment").(*taskValidator.CommentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := tc.Flow.Comment(user, taskID, reqData.Text); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comment added successfully!", nil)
}

func (tc *TaskController) UpdateDetails(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid task id!", nil)
	}

	reqData, ok := c.Locals("validatedDetails").(*taskValidator.DetailsRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var priority *models.TaskPriority
	if reqData.Priority != nil {
		p := models.TaskPriority(*reqData.Priority)
		priority = &p
	}

	task, err := tc.Flow.UpdateDetails(user, taskID, taskflow.DetailsInput{
		Title:        reqData.Title,
		Description:  reqData.Description,
		Priority:     priority,
		AssignedToID: reqData.AssignedToID,
		DueDate:      reqData.DueDate,
		Notes:        reqData.Notes,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task updated successfully!", task)
}

func (tc *TaskController) RecordTime(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid task id!", nil)
	}

	reqData, ok := c.Locals("validatedTimeRecord").(*taskValidator.TimeRecordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := tc.Flow.RecordTime(user, taskID, reqData.Minutes, reqData.Note); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Time recorded successfully!", nil)
}

func (tc *TaskController) Attachments(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid task id!", nil)
	}

	attachments, err := tc.Flow.Attachments(user, taskID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attachments fetched successfully!", attachments)
}

func (tc *TaskController) Upload(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid task id!", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "An attachment file is required!", nil)
	}

	attachment, err := tc.Flow.AddAttachment(user, taskID, file)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attachment uploaded successfully!", attachment)
}

func (tc *TaskController) RemoveAttachment(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	id, err := strconv.ParseUint(c.Params("attachmentId"), 10, 32)
	if err != nil || id == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid attachment id!", nil)
	}

	if err := tc.Flow.RemoveAttachment(user, uint(id)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attachment removed successfully!", nil)
}

func (tc *TaskController) Delete(c *fiber.Ctx) error {
	user, err := tc.requester(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid task id!", nil)
	}

	if err := tc.Flow.SoftDelete(user, taskID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Task deleted successfully!", nil)
}
