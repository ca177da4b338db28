package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medihub/medihub-api/internal/models"
	"github.com/medihub/medihub-api/internal/services"
	"github.com/medihub/medihub-api/internal/utils"
)

type createAppointmentRequest struct {
	Doctor          string `json:"doctor" binding:"required"`
	AppointmentDate string `json:"appointmentDate" binding:"required"`
	Department      string `json:"department" binding:"required"`
	City            string `json:"city"`
	Pincode         string `json:"pincode"`
	Notes           string `json:"notes"`
	Patient         string `json:"patient"` // required when an admin books on a patient's behalf
}

// CreateAppointment books an appointment. Patients book for themselves;
// admins must name the patient. The doctor reference is resolved against
// the doctors collection first and legacy users records second.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	date, err := time.Parse(time.RFC3339, req.AppointmentDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid appointmentDate, use RFC3339")
		return
	}

	ctx := c.Request.Context()

	doctorID, err := h.Identity.ResolveDoctor(ctx, req.Doctor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidID):
			utils.RespondError(c, http.StatusBadRequest, "Invalid doctor ID")
		case errors.Is(err, services.ErrDoctorNotFound):
			utils.RespondError(c, http.StatusNotFound, "Doctor not found")
		default:
			utils.RespondError(c, http.StatusInternalServerError, "Failed to resolve doctor")
		}
		return
	}

	var patientID primitive.ObjectID
	if c.GetString("userRole") == models.RoleAdmin {
		if req.Patient == "" {
			utils.RespondError(c, http.StatusBadRequest, "Patient is required")
			return
		}
		patientID, err = primitive.ObjectIDFromHex(req.Patient)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid patient ID")
			return
		}
	} else {
		patientID, err = primitive.ObjectIDFromHex(c.GetString("userID"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid user ID in token")
			return
		}
	}

	var patient models.User
	if err := h.DB.Collection(services.CollectionUsers).FindOne(ctx, bson.M{"_id": patientID}).Decode(&patient); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Patient not found")
		return
	}

	now := time.Now()
	apt := models.Appointment{
		ID:              primitive.NewObjectID(),
		Patient:         patientID,
		Doctor:          doctorID,
		AppointmentDate: date,
		Status:          models.AppointmentPending,
		Department:      req.Department,
		City:            req.City,
		Pincode:         req.Pincode,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := h.DB.Collection(services.CollectionAppointments).InsertOne(ctx, apt); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	h.Notifications.SendAppointmentSMS(&patient, &apt)

	utils.Respond(c, http.StatusCreated, "Appointment booked successfully", apt)
}

// notifyPatient looks up the appointment's patient and sends the status
// SMS. Lookup failures only log; the request that triggered the
// notification already succeeded.
func (h *Handler) notifyPatient(ctx context.Context, apt *models.Appointment) {
	var patient models.User
	if err := h.DB.Collection(services.CollectionUsers).FindOne(ctx, bson.M{"_id": apt.Patient}).Decode(&patient); err != nil {
		h.Logger.Warn().Err(err).Str("appointment", apt.ID.Hex()).Msg("appointment sms skipped: patient lookup failed")
		return
	}
	h.Notifications.SendAppointmentSMS(&patient, apt)
}

// GetAppointments lists appointments scoped to the caller: patients see
// their own, doctors see ones referencing them, admins see everything.
func (h *Handler) GetAppointments(c *gin.Context) {
	filter := bson.M{}

	role := c.GetString("userRole")
	if role != models.RoleAdmin {
		callerID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid user ID in token")
			return
		}
		if role == models.RoleDoctor {
			filter["doctor"] = callerID
		} else {
			filter["patient"] = callerID
		}
	}

	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	h.listAppointments(c, filter)
}

// GetAllAppointments is the admin listing.
func (h *Handler) GetAllAppointments(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	h.listAppointments(c, filter)
}

func (h *Handler) listAppointments(c *gin.Context, filter bson.M) {
	ctx := c.Request.Context()
	findOptions := options.Find().SetSort(bson.D{{Key: "appointmentDate", Value: -1}})

	cursor, err := h.DB.Collection(services.CollectionAppointments).Find(ctx, filter, findOptions)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to decode appointments")
		return
	}

	utils.Respond(c, http.StatusOK, "Appointments fetched", appointments)
}

type updateAppointmentRequest struct {
	Doctor          *string `json:"doctor"`
	AppointmentDate *string `json:"appointmentDate"`
	Status          *string `json:"status"`
	Department      *string `json:"department"`
	City            *string `json:"city"`
	Pincode         *string `json:"pincode"`
	Notes           *string `json:"notes"`
}

// UpdateAppointment mutates an appointment the calling patient owns. The
// ownership check lives in the filter, so a foreign appointment and a
// missing one produce the same 404.
func (h *Handler) UpdateAppointment(c *gin.Context) {
	aptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid appointment ID")
		return
	}
	callerID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user ID in token")
		return
	}

	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	set := bson.M{}
	if req.Doctor != nil {
		doctorID, err := h.Identity.ResolveDoctor(ctx, *req.Doctor)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidID):
				utils.RespondError(c, http.StatusBadRequest, "Invalid doctor ID")
			case errors.Is(err, services.ErrDoctorNotFound):
				utils.RespondError(c, http.StatusNotFound, "Doctor not found")
			default:
				utils.RespondError(c, http.StatusInternalServerError, "Failed to resolve doctor")
			}
			return
		}
		set["doctor"] = doctorID
	}
	if req.AppointmentDate != nil {
		date, err := time.Parse(time.RFC3339, *req.AppointmentDate)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid appointmentDate, use RFC3339")
			return
		}
		set["appointmentDate"] = date
	}
	if req.Status != nil {
		switch *req.Status {
		case models.AppointmentPending, models.AppointmentConfirmed,
			models.AppointmentCancelled, models.AppointmentCompleted:
			set["status"] = *req.Status
		default:
			utils.RespondError(c, http.StatusBadRequest, "Invalid appointment status")
			return
		}
	}
	if req.Department != nil {
		set["department"] = *req.Department
	}
	if req.City != nil {
		set["city"] = *req.City
	}
	if req.Pincode != nil {
		set["pincode"] = *req.Pincode
	}
	if req.Notes != nil {
		set["notes"] = *req.Notes
	}

	if len(set) == 0 {
		utils.RespondError(c, http.StatusBadRequest, "No update fields provided")
		return
	}
	set["updatedAt"] = time.Now()

	result, err := h.DB.Collection(services.CollectionAppointments).UpdateOne(ctx,
		bson.M{"_id": aptID, "patient": callerID}, bson.M{"$set": set})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(c, http.StatusNotFound, "Appointment not found")
		return
	}

	if set["status"] == models.AppointmentCancelled {
		var apt models.Appointment
		if err := h.DB.Collection(services.CollectionAppointments).FindOne(ctx, bson.M{"_id": aptID}).Decode(&apt); err == nil {
			h.notifyPatient(ctx, &apt)
		}
	}

	utils.Respond(c, http.StatusOK, "Appointment updated successfully", nil)
}

// DeleteAppointment removes an appointment the calling patient owns, with
// the same 404 shape for absent and foreign records.
func (h *Handler) DeleteAppointment(c *gin.Context) {
	aptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid appointment ID")
		return
	}
	callerID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user ID in token")
		return
	}

	ctx := c.Request.Context()
	var apt models.Appointment
	err = h.DB.Collection(services.CollectionAppointments).FindOneAndDelete(
		ctx, bson.M{"_id": aptID, "patient": callerID}).Decode(&apt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondError(c, http.StatusInternalServerError, "Failed to delete appointment")
		}
		return
	}

	apt.Status = models.AppointmentCancelled
	h.notifyPatient(ctx, &apt)

	utils.Respond(c, http.StatusOK, "Appointment deleted successfully", nil)
}
