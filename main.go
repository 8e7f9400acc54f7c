package main

import (
	"log"

	"letterdesk/config"
	adminController "letterdesk/controllers/adminControllers"
	authController "letterdesk/controllers/auth"
	letterController "letterdesk/controllers/letterControllers"
	taskController "letterdesk/controllers/taskControllers"
	"letterdesk/database"
	"letterdesk/middleware"
	"letterdesk/permissions"
	"letterdesk/routers/adminRoutes"
	"letterdesk/routers/authRoutes"
	"letterdesk/routers/letterRoutes"
	"letterdesk/routers/taskRoutes"
	"letterdesk/taskflow"
	"letterdesk/taskquery"
	"letterdesk/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()

	db, err := database.Connect(config.AppConfig)
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}

	resolver := permissions.NewResolver(db)
	blobs := utils.NewLocalBlobStore(config.AppConfig.UploadDir, config.AppConfig.UploadURL)
	flow := taskflow.NewController(db, resolver, blobs)
	query := taskquery.NewService(db, resolver)
	inline := middleware.NewInlineGuard(resolver)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve uploaded attachments
	app.Static(config.AppConfig.UploadURL, config.AppConfig.UploadDir)

	authRoutes.SetupAuthRoutes(app, &authController.AuthController{DB: db, Resolver: resolver})
	taskRoutes.SetupTaskRoutes(app, &taskController.TaskController{DB: db, Flow: flow, Query: query, Inline: inline}, resolver)
	adminRoutes.SetupAdminRoutes(app, &adminController.AdminController{DB: db, Resolver: resolver, Flow: flow, Inline: inline}, resolver)
	letterRoutes.SetupLetterRoutes(app, &letterController.LetterController{DB: db, Resolver: resolver}, resolver)

	utils.InitializeReminderScheduler(db)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
