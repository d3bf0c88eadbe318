package routes

import (
	api_handlers "anket.link/handlers/api"
	"anket.link/middlewares"

	"github.com/gofiber/fiber/v2"
)

// registerAPIRoutes /api altındaki JSON uçlarını tanımlar.
func registerAPIRoutes(app *fiber.App, deps Deps) {
	authHandler := api_handlers.NewAuthHandler(deps.AuthService)
	formHandler := api_handlers.NewFormHandler(deps.FormService)
	userHandler := api_handlers.NewUserHandler(deps.UserService)

	apiGroup := app.Group("/api")

	// --- Auth (public) ---
	authGroup := apiGroup.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/verify-otp", authHandler.VerifyOtp)
	authGroup.Post("/resend-otp", authHandler.ResendOtp)
	authGroup.Post("/refresh-token", authHandler.Refresh)
	authGroup.Post("/logout", middlewares.AuthMiddleware(deps.TokenService), authHandler.Logout)

	// --- Formlar (oturum gerekli) ---
	formGroup := apiGroup.Group("/forms", middlewares.AuthMiddleware(deps.TokenService))
	formGroup.Post("/", formHandler.CreateForm)               // POST   /api/forms
	formGroup.Get("/users/:userId", formHandler.GetUserForms) // GET    /api/forms/users/{userId}
	formGroup.Get("/:formId", formHandler.GetForm)            // GET    /api/forms/{formId}
	formGroup.Put("/:formId", formHandler.UpdateForm)         // PUT    /api/forms/{formId}
	formGroup.Delete("/:formId", formHandler.DeleteForm)      // DELETE /api/forms/{formId}

	// --- Kullanıcılar (oturum gerekli) ---
	userGroup := apiGroup.Group("/users", middlewares.AuthMiddleware(deps.TokenService))
	userGroup.Get("/", userHandler.GetAllUsers)      // GET    /api/users
	userGroup.Get("/:id", userHandler.GetUser)       // GET    /api/users/{id}
	userGroup.Delete("/:id", userHandler.DeleteUser) // DELETE /api/users/{id}
}
