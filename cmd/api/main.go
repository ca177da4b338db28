package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medihub/medihub-api/internal/config"
	"github.com/medihub/medihub-api/internal/handlers"
	"github.com/medihub/medihub-api/internal/middleware"
	"github.com/medihub/medihub-api/internal/models"
	"github.com/medihub/medihub-api/internal/services"
	"github.com/medihub/medihub-api/internal/utils"
)

func main() {
	// No .env file is fine in production: config comes from the real
	// environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		errLogger := zerolog.New(os.Stderr)
		errLogger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// --- Database Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDatabase)

	if err := ensureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to create indexes")
	}
	logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")

	// --- Services ---
	identity := services.NewIdentity(&services.MongoIdentityStore{DB: db})
	tokens := utils.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	notifications := services.NewNotificationService(cfg.SMSGatewayURL, cfg.SMSGatewayKey, logger)

	h := handlers.NewHandler(db, identity, tokens, notifications, cfg, logger)

	// --- Gin Router ---
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// --- Middleware ---
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("panic recovered")
		utils.AbortError(c, http.StatusInternalServerError, "Internal server error")
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, http.StatusNotFound, "Route not found")
	})

	auth := middleware.Authenticate(tokens)
	loginLimiter := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})

	// --- Routes ---
	user := r.Group("/user")
	{
		user.POST("/patient/register", h.Register)
		user.POST("/login", loginLimiter, h.Login)
		user.POST("/simple-login", loginLimiter, h.SimpleLogin)
		user.GET("/me", auth, h.GetCurrentUser)
		user.GET("/alldoctors", auth, middleware.RequireRoles(models.RoleAdmin), h.GetAllDoctors)
		user.GET("/allpatients", auth, middleware.RequireRoles(models.RoleAdmin), h.GetAllPatients)
		user.PUT("/patient/update", auth, middleware.RequireRoles(models.RolePatient), h.UpdatePatientProfile)
		user.PUT("/doctor/update", auth, middleware.RequireRoles(models.RoleDoctor), h.UpdateDoctorProfile)
	}

	appointment := r.Group("/appointment")
	appointment.Use(auth)
	{
		appointment.POST("", middleware.RequireRoles(models.RolePatient, models.RoleAdmin), h.CreateAppointment)
		appointment.GET("", h.GetAppointments)
		appointment.GET("/admin", middleware.RequireRoles(models.RoleAdmin), h.GetAllAppointments)
		appointment.PUT("/:id", middleware.RequireRoles(models.RolePatient), h.UpdateAppointment)
		appointment.DELETE("/:id", middleware.RequireRoles(models.RolePatient), h.DeleteAppointment)
	}

	billing := r.Group("/billing")
	billing.Use(auth)
	{
		billing.POST("", middleware.RequireRoles(models.RoleDoctor, models.RoleAdmin), h.CreateBilling)
		billing.GET("", h.GetBillings)
		billing.GET("/admin", middleware.RequireRoles(models.RoleAdmin), h.GetAllBillings)
		billing.GET("/:id", h.GetBilling)
		billing.PUT("/:id", middleware.RequireRoles(models.RoleDoctor, models.RoleAdmin), h.UpdateBillingPayment)
		billing.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.DeleteBilling)
	}

	doctor := r.Group("/doctor")
	doctor.Use(auth, middleware.RequireRoles(models.RoleDoctor))
	{
		doctor.POST("/billing", h.CreateBilling)
		doctor.GET("/billing", h.GetBillings)
	}

	medicine := r.Group("/medicine")
	medicine.Use(auth)
	{
		medicine.GET("", h.ListMedicines)
		medicine.POST("", middleware.RequireRoles(models.RoleAdmin), h.AddMedicine)
	}

	logger.Info().Str("port", cfg.Port).Msg("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

// ensureIndexes enforces per-collection email uniqueness for the two
// identity collections. Uniqueness is deliberately not global: the same
// email may exist once in users and once in doctors.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	for _, name := range []string{services.CollectionUsers, services.CollectionDoctors} {
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, model); err != nil {
			return err
		}
	}
	return nil
}
