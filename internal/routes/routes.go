package routes

import (
	"github.com/Migueljuen/ItineraBack/internal/config"
	"github.com/Migueljuen/ItineraBack/internal/handlers"
	"github.com/Migueljuen/ItineraBack/internal/middleware"
	"github.com/Migueljuen/ItineraBack/internal/repository"
	"github.com/Migueljuen/ItineraBack/internal/services"
	chatws "github.com/Migueljuen/ItineraBack/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	partnerProfileRepo := repository.NewPartnerProfileRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)
	itineraryRepo := repository.NewItineraryRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	experienceRepo := repository.NewExperienceRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	var proofStorage services.ProofStorage
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		proofStorage = services.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	authHandler := handlers.NewAuthHandler(db, userRepo, partnerProfileRepo, cfg.JWTSecret)
	onboardingHandler := handlers.NewOnboardingHandler(partnerProfileRepo)
	profileService := services.NewProfileService(partnerProfileRepo)
	profileHandler := handlers.NewProfileHandler(profileService, partnerProfileRepo)
	availabilityService := services.NewAvailabilityService(partnerProfileRepo, overrideRepo, itineraryRepo)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	itineraryService := services.NewItineraryService(db, itineraryRepo, paymentRepo, userRepo, partnerProfileRepo, availabilityService)
	itineraryHandler := handlers.NewItineraryHandler(itineraryService)
	paymentService := services.NewPaymentService(db, itineraryRepo, paymentRepo, proofStorage)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	experienceService := services.NewExperienceService(experienceRepo, partnerProfileRepo)
	experienceHandler := handlers.NewExperienceHandler(experienceService)
	chatHub := chatws.NewHub()
	go chatHub.Run()
	chatService := services.NewChatService(db, conversationRepo, messageRepo, userRepo)
	chatHandler := handlers.NewChatHandler(chatService, chatHub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	partners := authProtected.Group("/partners")
	partners.Post("/onboarding", onboardingHandler.PartnerOnboarding)
	partners.Get("/profile", profileHandler.GetPartnerProfile)
	partners.Put("/profile", profileHandler.UpdatePartnerProfile)
	partners.Get("/:id/calendar", availabilityHandler.Calendar)
	partners.Get("/:id/experiences", experienceHandler.ListPartnerExperiences)

	availabilityRoutes := authProtected.Group("/availability")
	availabilityRoutes.Get("/overrides", availabilityHandler.ListOverrides)
	availabilityRoutes.Post("/overrides", availabilityHandler.AddOverride)
	availabilityRoutes.Delete("/overrides/:id", availabilityHandler.RemoveOverride)
	availabilityRoutes.Patch("/weekly", availabilityHandler.ToggleWeeklyDay)
	availabilityRoutes.Put("/weekly", availabilityHandler.SetWeeklyAvailability)

	itineraries := authProtected.Group("/itineraries")
	itineraries.Post("", itineraryHandler.CreateItinerary)
	itineraries.Get("", itineraryHandler.ListItineraries)
	itineraries.Get("/:id", itineraryHandler.GetItinerary)
	itineraries.Put("/:id/status", itineraryHandler.UpdateStatus)
	itineraries.Get("/:id/payment", paymentHandler.GetPayment)
	itineraries.Post("/:id/payment/proof", paymentHandler.SubmitProof)
	itineraries.Put("/:id/payment/review", paymentHandler.ReviewProof)

	experiences := authProtected.Group("/experiences")
	experiences.Get("", experienceHandler.ListExperiences)
	experiences.Post("", experienceHandler.CreateExperience)
	experiences.Get("/:id", experienceHandler.GetExperience)

	conversations := authProtected.Group("/conversations")
	conversations.Get("", chatHandler.ListConversations)
	conversations.Post("", chatHandler.CreateConversation)
	conversations.Get("/:id/messages", chatHandler.GetMessages)
	conversations.Put("/:id/read", chatHandler.MarkRead)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))
}
