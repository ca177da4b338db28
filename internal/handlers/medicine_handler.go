package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medihub/medihub-api/internal/models"
	"github.com/medihub/medihub-api/internal/services"
	"github.com/medihub/medihub-api/internal/utils"
)

// ListMedicines returns the medicine catalog.
func (h *Handler) ListMedicines(c *gin.Context) {
	ctx := c.Request.Context()

	cursor, err := h.DB.Collection(services.CollectionMedicines).Find(ctx, bson.M{})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to retrieve medicines")
		return
	}
	defer cursor.Close(ctx)

	medicines := make([]models.Medicine, 0)
	if err := cursor.All(ctx, &medicines); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to decode medicines")
		return
	}

	utils.Respond(c, http.StatusOK, "Medicines fetched", medicines)
}

type addMedicineRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

// AddMedicine adds a catalog entry. Admin only.
func (h *Handler) AddMedicine(c *gin.Context) {
	var req addMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	med := models.Medicine{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CreatedAt:   time.Now(),
	}

	if _, err := h.DB.Collection(services.CollectionMedicines).InsertOne(c.Request.Context(), med); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to add medicine")
		return
	}

	utils.Respond(c, http.StatusCreated, "Medicine added successfully", med)
}
