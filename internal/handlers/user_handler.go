package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medihub/medihub-api/internal/models"
	"github.com/medihub/medihub-api/internal/services"
	"github.com/medihub/medihub-api/internal/utils"
)

// GetCurrentUser returns the profile of the authenticated caller, read from
// whichever collection their role lives in.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user ID in token")
		return
	}
	ctx := c.Request.Context()

	if c.GetString("userRole") == models.RoleDoctor {
		var doctor models.Doctor
		err := h.DB.Collection(services.CollectionDoctors).FindOne(ctx, bson.M{"_id": userID}).Decode(&doctor)
		if err == nil {
			utils.Respond(c, http.StatusOK, "Profile fetched", doctor)
			return
		}
		// Legacy doctor records live in the users collection.
	}

	var user models.User
	if err := h.DB.Collection(services.CollectionUsers).FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}
	utils.Respond(c, http.StatusOK, "Profile fetched", user)
}

// GetAllDoctors lists every doctor, merging the doctors collection with
// legacy doctor records stored in users. Admin only.
func (h *Handler) GetAllDoctors(c *gin.Context) {
	ctx := c.Request.Context()

	cursor, err := h.DB.Collection(services.CollectionDoctors).Find(ctx, bson.M{})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to retrieve doctors")
		return
	}
	defer cursor.Close(ctx)

	doctors := make([]models.Doctor, 0)
	if err := cursor.All(ctx, &doctors); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to decode doctors")
		return
	}

	legacyCursor, err := h.DB.Collection(services.CollectionUsers).Find(ctx, bson.M{"role": models.RoleDoctor})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to retrieve doctors")
		return
	}
	defer legacyCursor.Close(ctx)

	legacy := make([]models.User, 0)
	if err := legacyCursor.All(ctx, &legacy); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to decode doctors")
		return
	}

	utils.Respond(c, http.StatusOK, "Doctors fetched", gin.H{
		"doctors":       doctors,
		"legacyDoctors": legacy,
	})
}

// GetAllPatients lists every patient. Admin only.
func (h *Handler) GetAllPatients(c *gin.Context) {
	ctx := c.Request.Context()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection(services.CollectionUsers).Find(ctx, bson.M{"role": models.RolePatient}, findOptions)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to retrieve patients")
		return
	}
	defer cursor.Close(ctx)

	patients := make([]models.User, 0)
	if err := cursor.All(ctx, &patients); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to decode patients")
		return
	}

	utils.Respond(c, http.StatusOK, "Patients fetched", patients)
}

type updatePatientRequest struct {
	FirstName        *string                  `json:"firstName"`
	LastName         *string                  `json:"lastName"`
	Age              *int                     `json:"age"`
	Phone            *string                  `json:"phone"`
	Address          *models.Address          `json:"address"`
	MedicalHistory   *[]string                `json:"medicalHistory"`
	EmergencyContact *models.EmergencyContact `json:"emergencyContact"`
	Password         *string                  `json:"password"`
}

// UpdatePatientProfile mutates the caller's own user record. The password
// is hashed only when the payload actually carries one; updates that do not
// touch the password never re-hash the stored value.
func (h *Handler) UpdatePatientProfile(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user ID in token")
		return
	}

	var req updatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{}
	if req.FirstName != nil {
		set["firstName"] = *req.FirstName
	}
	if req.LastName != nil {
		set["lastName"] = *req.LastName
	}
	if req.Age != nil {
		set["age"] = *req.Age
	}
	if req.Phone != nil {
		if len(*req.Phone) != 10 {
			utils.RespondError(c, http.StatusBadRequest, "Phone must be 10 digits")
			return
		}
		set["phone"] = *req.Phone
	}
	if req.Address != nil {
		set["address"] = *req.Address
	}
	if req.MedicalHistory != nil {
		set["medicalHistory"] = *req.MedicalHistory
	}
	if req.EmergencyContact != nil {
		set["emergencyContact"] = *req.EmergencyContact
	}
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < 8 {
			utils.RespondError(c, http.StatusBadRequest, "Password must be at least 8 characters")
			return
		}
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		set["password"] = hashed
	}

	if len(set) == 0 {
		utils.RespondError(c, http.StatusBadRequest, "No update fields provided")
		return
	}
	set["updatedAt"] = time.Now()

	result, err := h.DB.Collection(services.CollectionUsers).UpdateOne(
		c.Request.Context(), bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	utils.Respond(c, http.StatusOK, "Profile updated successfully", nil)
}

type updateDoctorRequest struct {
	FirstName       *string        `json:"firstName"`
	LastName        *string        `json:"lastName"`
	Phone           *string        `json:"phone"`
	Department      *string        `json:"department"`
	Specializations *[]string      `json:"specializations"`
	Experience      *int           `json:"experience"`
	Avatar          *models.Avatar `json:"avatar"`
	Password        *string        `json:"password"`
}

// UpdateDoctorProfile mutates the caller's own doctor record. Doctors may
// live in either collection, so the doctors collection is tried first and
// legacy users records second.
func (h *Handler) UpdateDoctorProfile(c *gin.Context) {
	doctorID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user ID in token")
		return
	}

	var req updateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{}
	if req.FirstName != nil {
		set["firstName"] = *req.FirstName
	}
	if req.LastName != nil {
		set["lastName"] = *req.LastName
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Department != nil {
		set["department"] = *req.Department
	}
	if req.Specializations != nil {
		set["specializations"] = *req.Specializations
	}
	if req.Experience != nil {
		set["experience"] = *req.Experience
	}
	if req.Avatar != nil {
		set["avatar"] = *req.Avatar
	}
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < 8 {
			utils.RespondError(c, http.StatusBadRequest, "Password must be at least 8 characters")
			return
		}
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		set["password"] = hashed
	}

	if len(set) == 0 {
		utils.RespondError(c, http.StatusBadRequest, "No update fields provided")
		return
	}
	set["updatedAt"] = time.Now()

	ctx := c.Request.Context()
	update := bson.M{"$set": set}

	result, err := h.DB.Collection(services.CollectionDoctors).UpdateOne(ctx, bson.M{"_id": doctorID}, update)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	if result.MatchedCount == 0 {
		result, err = h.DB.Collection(services.CollectionUsers).UpdateOne(ctx,
			bson.M{"_id": doctorID, "role": models.RoleDoctor}, update)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		if result.MatchedCount == 0 {
			utils.RespondError(c, http.StatusNotFound, "Doctor not found")
			return
		}
	}

	utils.Respond(c, http.StatusOK, "Profile updated successfully", nil)
}
