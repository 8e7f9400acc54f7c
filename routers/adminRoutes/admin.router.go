package adminRoutes

import (
	"letterdesk/controllers/adminControllers"
	"letterdesk/middleware"
	"letterdesk/permissions"
	adminValidator "letterdesk/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, controller *adminControllers.AdminController, resolver *permissions.Resolver) {
	// User and grant management is admin territory: the guard requires
	// codes outside every default bundle, so only the universal admin
	// set passes.
	admin := app.Group("/admin",
		middleware.JWTMiddleware,
		middleware.RequirePermissions(resolver, middleware.GuardConfig{},
			permissions.EditUsers),
	)

	admin.Get("/users", adminValidator.UserList(), controller.UserList)
	admin.Put("/users/role", adminValidator.UpdateRole(), controller.UpdateRole)
	admin.Put("/users/:id/active", controller.SetActive)
	admin.Get("/users/:id/permissions", controller.UserPermissions)
	admin.Post("/permissions", adminValidator.GrantPermission(), controller.GrantPermission)
	admin.Delete("/permissions/:id", controller.RevokePermission)
	admin.Put("/tasks/:id/restore", controller.RestoreTask)
}
