package letterRoutes

import (
	"letterdesk/controllers/letterControllers"
	"letterdesk/middleware"
	"letterdesk/permissions"

	"github.com/gofiber/fiber/v2"
)

func SetupLetterRoutes(app *fiber.App, controller *letterControllers.LetterController, resolver *permissions.Resolver) {
	letters := app.Group("/letters", middleware.JWTMiddleware)

	guard := func(codes ...permissions.Code) fiber.Handler {
		return middleware.RequirePermissions(resolver, middleware.GuardConfig{}, codes...)
	}

	letters.Post("/", guard(permissions.CreateLetters), controller.Create)
	letters.Get("/", guard(permissions.ViewLetters), controller.List)
	letters.Get("/templates", guard(permissions.ViewTemplates), controller.Templates)
	letters.Put("/:id", guard(permissions.EditLettersOwn), controller.Update)
	letters.Delete("/:id", guard(permissions.DeleteLettersOwn), controller.Delete)
}
