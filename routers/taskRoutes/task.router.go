package taskRoutes

import (
	"letterdesk/controllers/taskControllers"
	"letterdesk/middleware"
	"letterdesk/permissions"
	taskValidator "letterdesk/validators/task"

	"github.com/gofiber/fiber/v2"
)

func SetupTaskRoutes(app *fiber.App, controller *taskControllers.TaskController, resolver *permissions.Resolver) {
	tasks := app.Group("/tasks", middleware.JWTMiddleware)

	guard := func(codes ...permissions.Code) fiber.Handler {
		return middleware.RequirePermissions(resolver, middleware.GuardConfig{}, codes...)
	}

	tasks.Post("/",
		guard(permissions.CreateTasks),
		taskValidator.CreateTask(), controller.Create)
	tasks.Get("/",
		guard(permissions.ViewTasksAll, permissions.ViewTasksOwn, permissions.ViewTasksAssigned),
		taskValidator.List(), controller.List)
	tasks.Get("/summary",
		guard(permissions.ViewTasksAll, permissions.ViewTasksOwn, permissions.ViewTasksAssigned),
		controller.Summary)
	tasks.Get("/:id", controller.Get)
	tasks.Get("/:id/logs", controller.Logs)
	tasks.Put("/:id/status", taskValidator.Transition(), controller.Transition)
	tasks.Post("/:id/comments", taskValidator.Comment(), controller.Comment)
	tasks.Put("/:id/details", taskValidator.UpdateDetails(), controller.UpdateDetails)
	tasks.Post("/:id/time", taskValidator.RecordTime(), controller.RecordTime)
	tasks.Get("/:id/attachments", controller.Attachments)
	tasks.Post("/:id/attachments", controller.Upload)
	tasks.Delete("/attachments/:attachmentId", controller.RemoveAttachment)
	tasks.Delete("/:id", controller.Delete)
}
