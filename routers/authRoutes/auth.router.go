package authRoutes

import (
	authController "letterdesk/controllers/auth"
	"letterdesk/middleware"
	authValidator "letterdesk/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, controller *authController.AuthController) {
	auth := app.Group("/auth")

	auth.Post("/signup", authValidator.Signup(), controller.Signup)
	auth.Post("/login", authValidator.Login(), controller.Login)
	auth.Get("/profile", middleware.JWTMiddleware, controller.Profile)
}
