package main

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"smartpark/internal/api"
	"smartpark/internal/auth"
	"smartpark/internal/config"
	"smartpark/internal/logger"
	"smartpark/internal/recommend"
	"smartpark/internal/repository"
	"smartpark/internal/service"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("invalid configuration")
	}

	log := logger.GetLogger()
	log.Configure(cfg.LogOutput, cfg.LogMaxAgeDays)

	database, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	if err := database.Ping(); err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	reservationRepo := repository.NewReservationRepository(database)
	catalogRepo := repository.NewCatalogRepository(database)
	reviewRepo := repository.NewReviewRepository(database)
	adminAuthRepo := repository.NewAdminAuthRepository(database)

	scorer := recommend.NewScorer()
	trainCfg := recommend.DefaultConfig()
	trainCfg.Factors = cfg.RecommendFactors
	trainCfg.Iterations = cfg.RecommendIterations

	notifier := service.NewNotifyService(cfg)
	reservationSvc := service.NewReservationService(reservationRepo, catalogRepo, notifier)
	recommendSvc := service.NewRecommendService(catalogRepo, reservationRepo, scorer)
	reviewSvc := service.NewReviewService(reviewRepo)
	spotSvc := service.NewSpotService(catalogRepo)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret)
	jobSvc := service.NewJobService(reservationRepo, catalogRepo, scorer, trainCfg)

	// Train once at startup so recommendations use history immediately
	// instead of waiting for the first scheduled run.
	if err := jobSvc.RetrainRecommender(); err != nil {
		log.WithError(err).Warn("initial recommender training failed, starting heuristic only")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.FinishSweepSpec, func() {
		if err := jobSvc.UpdateFinishedReservations(); err != nil {
			log.WithError(err).Error("finished-reservation sweep failed")
		}
	}); err != nil {
		log.WithError(err).Fatal("invalid finish sweep cron spec")
	}
	if _, err := scheduler.AddFunc(cfg.RetrainSpec, func() {
		if err := jobSvc.RetrainRecommender(); err != nil {
			log.WithError(err).Error("recommender retraining failed")
		}
	}); err != nil {
		log.WithError(err).Fatal("invalid retrain cron spec")
	}
	scheduler.Start()
	defer scheduler.Stop()

	reservationHandler := api.NewReservationHandler(reservationSvc)
	recommendationHandler := api.NewRecommendationHandler(recommendSvc)
	reviewHandler := api.NewReviewHandler(reviewSvc)
	adminHandler := api.NewAdminHandler(reservationSvc, spotSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	r := mux.NewRouter()
	r.Use(api.RequestIDMiddleware)

	// Public endpoints
	r.HandleFunc("/api/reservations", reservationHandler.CreateReservation).Methods("POST")
	r.HandleFunc("/api/reservations/{id}", reservationHandler.GetReservation).Methods("GET")
	r.HandleFunc("/api/reservations/{id}", reservationHandler.UpdateReservation).Methods("PUT")
	r.HandleFunc("/api/reservations/{id}", reservationHandler.CancelReservation).Methods("DELETE")
	r.HandleFunc("/api/zones/{zoneID}/recommendation", recommendationHandler.GetRecommendation).Methods("GET")
	r.HandleFunc("/api/reviews", reviewHandler.CreateReview).Methods("POST")
	r.HandleFunc("/api/reviews", reviewHandler.ListReviews).Methods("GET")
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(cfg.JWTSecret))
	admin.HandleFunc("/reservations", adminHandler.ListReservations).Methods("GET")
	admin.HandleFunc("/spots/{id}/active", adminHandler.SetSpotActive).Methods("PUT")
	admin.HandleFunc("/admins", adminAuthHandler.CreateAdmin).Methods("POST")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	server := handlers.LoggingHandler(os.Stdout, cors(r))

	log.WithFields(logger.Fields{"port": cfg.Port}).Info("server running")
	log.Fatal(http.ListenAndServe(":"+cfg.Port, server))
}
