package taskValidator

import (
	"time"

	"letterdesk/middleware"
	"letterdesk/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type CreateTaskRequest struct {
	Title        string     `json:"title" validate:"required,min=3"`
	Description  string     `json:"description"`
	Priority     string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedToID *uint      `json:"assigned_to_id"`
	BranchID     *uint      `json:"branch_id"`
	DueDate      *time.Time `json:"due_date"`
	Notes        string     `json:"notes"`
}

// CreateTask validator middleware
func CreateTask() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateTaskRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "Title":
					errors["title"] = "Title must be at least 3 characters long!"
				case "Priority":
					errors["priority"] = "Priority must be low, medium or high!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateTask", reqData)
		return c.Next()
	}
}

type TransitionRequest struct {
	Expected string `json:"expected_status" validate:"required"`
	To       string `json:"status" validate:"required"`
	Reason   string `json:"reason"`
}

// Transition validates the shape of a status-change request. Whether the
// transition itself is legal is the lifecycle controller's job.
func Transition() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(TransitionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.Expected == "" {
			errors["expected_status"] = "The last observed status is required!"
		}
		if reqData.To == "" {
			errors["status"] = "The target status is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTransition", reqData)
		return c.Next()
	}
}

type CommentRequest struct {
	Text string `json:"text"`
}

// Comment validator middleware
func Comment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CommentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.Text == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"text": "Comment text is required!"})
		}
		c.Locals("validatedComment", reqData)
		return c.Next()
	}
}

type DetailsRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Priority     *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedToID *uint      `json:"assigned_to_id"`
	DueDate      *time.Time `json:"due_date"`
	Notes        *string    `json:"notes"`
}

// UpdateDetails validator middleware
func UpdateDetails() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DetailsRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"priority": "Priority must be low, medium or high!"})
		}
		c.Locals("validatedDetails", reqData)
		return c.Next()
	}
}

type TimeRecordRequest struct {
	Minutes int    `json:"minutes"`
	Note    string `json:"note"`
}

// RecordTime validator middleware
func RecordTime() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(TimeRecordRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.Minutes <= 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"minutes": "Minutes must be a positive number!"})
		}
		c.Locals("validatedTimeRecord", reqData)
		return c.Next()
	}
}

type ListRequest struct {
	Status     string `query:"status"`
	Priority   string `query:"priority"`
	AssigneeID *uint  `query:"assignee_id"`
	BranchID   *uint  `query:"branch_id"`
	Search     string `query:"search"`
	Timeframe  string `query:"timeframe"`
	TaskType   string `query:"task_type"`
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
}

var validTimeframes = map[string]bool{
	"": true, "all": true, "today": true, "week": true, "month": true, "overdue": true,
}

var validTaskTypes = map[string]bool{
	"": true, "all": true, "assigned_to_me": true, "created_by_me": true,
}

var validStatuses = map[string]bool{
	"": true, "all": true,
	string(models.TaskStatusNew):        true,
	string(models.TaskStatusInProgress): true,
	string(models.TaskStatusCompleted):  true,
	string(models.TaskStatusRejected):   true,
	string(models.TaskStatusPostponed):  true,
}

// List validator middleware for task list queries
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)
		if !validStatuses[reqData.Status] {
			errors["status"] = "Unknown status filter!"
		}
		if !validTimeframes[reqData.Timeframe] {
			errors["timeframe"] = "Unknown timeframe filter!"
		}
		if !validTaskTypes[reqData.TaskType] {
			errors["task_type"] = "Unknown task type filter!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}
