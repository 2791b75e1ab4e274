package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/medcamp/camp-system/handlers"
	"github.com/medcamp/camp-system/middleware"
	"github.com/medcamp/camp-system/models"
)

// SetupRoutes вешает все маршруты приложения на переданный роутер.
func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	campHandler *handlers.CampHandler,
	registrationHandler *handlers.RegistrationHandler,
	paymentHandler *handlers.PaymentHandler,
	feedbackHandler *handlers.FeedbackHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Публичные маршруты
	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)
	router.Post("/users", authHandler.EnsureUser)

	router.Get("/camps", campHandler.ListCamps)
	router.Get("/available-camps", campHandler.ListAvailable)
	router.Get("/available-camps/{campID}", campHandler.GetCamp)
	router.Get("/feedbacks", feedbackHandler.ListRecent)

	// Живая лента заявок лагеря
	router.Get("/ws/camps/{campID}", webSocketHandler.ServeCampFeed)

	// Маршруты для любого аутентифицированного пользователя
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		// Роль по email раздаётся только со своим токеном: анонимный
		// перебор выдал бы, какие адреса принадлежат организаторам.
		r.Get("/users/role/{email}", authHandler.GetRole)

		r.Get("/profile", userHandler.GetProfile)
		r.Patch("/profile", userHandler.UpdateProfile)
		r.Post("/profile/photo", userHandler.UploadPhoto)

		r.Post("/camps-join", registrationHandler.Join)
		r.Get("/check-join-status", registrationHandler.CheckJoinStatus)
		r.Patch("/update-payment-status/{registrationID}", registrationHandler.CompletePayment)
		r.Delete("/cancel-registration/{registrationID}", registrationHandler.Cancel)
		r.Get("/user-registered-camps", registrationHandler.ListByParticipant)

		r.Post("/create-payment-intent", paymentHandler.CreateIntent)
		r.Get("/payment-history", paymentHandler.History)

		r.Post("/submit-feedback", feedbackHandler.Submit)
		r.Get("/participant-feedbacks", feedbackHandler.ListByParticipant)

		r.Get("/participant-analytics", dashboardHandler.ParticipantAnalytics)
	})

	// Маршруты только для организаторов
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.RequireRole(models.RoleOrganizer))

		r.Post("/camps", campHandler.Create)
		r.Post("/upload-image", campHandler.UploadImage)
		r.Patch("/update-camp/{campID}", campHandler.Update)
		r.Delete("/delete-camp/{campID}", campHandler.Delete)
		r.Get("/organizer-camps", campHandler.ListOrganizerCamps)

		r.Get("/registered-camps", registrationHandler.ListByOrganizer)
		r.Patch("/update-confirmation/{registrationID}", registrationHandler.ConfirmManually)
		// Ручная правка счётчика дрейфует от живых заявок, поэтому
		// доступна только организатору.
		r.Patch("/camps-update-count/{campID}", registrationHandler.AdjustCount)

		r.Get("/organizer-stats", dashboardHandler.OrganizerStats)
	})
}
