package handlers

import (
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/medihub/medihub-api/internal/config"
	"github.com/medihub/medihub-api/internal/services"
	"github.com/medihub/medihub-api/internal/utils"
)

// Handler carries the shared dependencies every route handler needs.
type Handler struct {
	DB            *mongo.Database
	Identity      *services.Identity
	Tokens        *utils.TokenManager
	Notifications *services.NotificationService
	Config        *config.Config
	Logger        zerolog.Logger
}

func NewHandler(db *mongo.Database, identity *services.Identity, tokens *utils.TokenManager,
	notifications *services.NotificationService, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		DB:            db,
		Identity:      identity,
		Tokens:        tokens,
		Notifications: notifications,
		Config:        cfg,
		Logger:        logger,
	}
}
