package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medihub/medihub-api/internal/models"
	"github.com/medihub/medihub-api/internal/services"
	"github.com/medihub/medihub-api/internal/utils"
)

type createBillingRequest struct {
	Patient     string               `json:"patient" binding:"required"`
	Doctor      string               `json:"doctor"`
	Appointment string               `json:"appointment"`
	Diagnosis   string               `json:"diagnosis"`
	Items       []models.BillingItem `json:"items" binding:"required"`
	Tax         float64              `json:"tax"`
	Discount    float64              `json:"discount"`
	DueDate     *time.Time           `json:"dueDate"`
	Notes       string               `json:"notes"`
}

func newBillNumber() string {
	return "BILL-" + strings.ToUpper(uuid.New().String()[:8])
}

// CreateBilling creates a bill from line items. When the creator is a
// doctor, the bill's doctor field is forced to the creator's own id no
// matter what the payload supplied.
func (h *Handler) CreateBilling(c *gin.Context) {
	var req createBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	items, subtotal, total, err := services.ComputeBillingTotals(req.Items, req.Tax, req.Discount)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()

	patientID, err := primitive.ObjectIDFromHex(req.Patient)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid patient ID")
		return
	}
	var patient models.User
	if err := h.DB.Collection(services.CollectionUsers).FindOne(ctx, bson.M{"_id": patientID}).Decode(&patient); err != nil {
		utils.RespondError(c, http.StatusNotFound, "Patient not found")
		return
	}

	callerRole := c.GetString("userRole")
	callerID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user ID in token")
		return
	}

	// A doctor creator's own id wins regardless of the payload, so the
	// payload reference is only resolved for admins.
	var requestedDoctor *primitive.ObjectID
	if callerRole != models.RoleDoctor && req.Doctor != "" {
		id, err := primitive.ObjectIDFromHex(req.Doctor)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid doctor ID")
			return
		}
		var doctor models.Doctor
		if err := h.DB.Collection(services.CollectionDoctors).FindOne(ctx, bson.M{"_id": id}).Decode(&doctor); err != nil {
			utils.RespondError(c, http.StatusNotFound, "Doctor not found")
			return
		}
		requestedDoctor = &doctor.ID
	}
	doctorID := services.BillingDoctorFor(callerRole, callerID, requestedDoctor)

	var appointmentID *primitive.ObjectID
	if req.Appointment != "" {
		id, err := primitive.ObjectIDFromHex(req.Appointment)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid appointment ID")
			return
		}
		appointmentID = &id
	}

	now := time.Now()
	bill := models.Billing{
		ID:          primitive.NewObjectID(),
		BillNumber:  newBillNumber(),
		Patient:     patientID,
		Doctor:      doctorID,
		Appointment: appointmentID,
		Diagnosis:   req.Diagnosis,
		Items:       items,
		Subtotal:    subtotal,
		Tax:         req.Tax,
		Discount:    req.Discount,
		TotalAmount: total,
		Status:      models.BillingPending,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := h.DB.Collection(services.CollectionBillings).InsertOne(ctx, bill); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create bill")
		return
	}

	utils.Respond(c, http.StatusCreated, "Bill created successfully", bill)
}

// GetBillings lists bills scoped to the caller. Patients only ever get the
// redacted summary view.
func (h *Handler) GetBillings(c *gin.Context) {
	role := c.GetString("userRole")

	filter := bson.M{}
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

	bills, ok := h.findBillings(c, filter)
	if !ok {
		return
	}

	if role == models.RolePatient {
		summaries := make([]models.BillingSummary, len(bills))
		for i, b := range bills {
			summaries[i] = services.RedactBillingForPatient(b)
		}
		utils.Respond(c, http.StatusOK, "Bills fetched", summaries)
		return
	}

	utils.Respond(c, http.StatusOK, "Bills fetched", bills)
}

// GetAllBillings is the admin listing of every bill.
func (h *Handler) GetAllBillings(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	bills, ok := h.findBillings(c, filter)
	if !ok {
		return
	}
	utils.Respond(c, http.StatusOK, "Bills fetched", bills)
}

func (h *Handler) findBillings(c *gin.Context, filter bson.M) ([]models.Billing, bool) {
	ctx := c.Request.Context()
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := h.DB.Collection(services.CollectionBillings).Find(ctx, filter, findOptions)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to retrieve bills")
		return nil, false
	}
	defer cursor.Close(ctx)

	bills := make([]models.Billing, 0)
	if err := cursor.All(ctx, &bills); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to decode bills")
		return nil, false
	}
	return bills, true
}

// loadBillForCaller fetches one bill and applies the role-based visibility
// rules: admins see any bill, doctors only bills they created, patients
// only their own. Foreign bills 404 so existence is not leaked.
func (h *Handler) loadBillForCaller(c *gin.Context) (*models.Billing, bool) {
	billID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid bill ID")
		return nil, false
	}

	var bill models.Billing
	if err := h.DB.Collection(services.CollectionBillings).FindOne(
		c.Request.Context(), bson.M{"_id": billID}).Decode(&bill); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondError(c, http.StatusNotFound, "Bill not found")
		} else {
			utils.RespondError(c, http.StatusInternalServerError, "Failed to retrieve bill")
		}
		return nil, false
	}

	role := c.GetString("userRole")
	if role == models.RoleAdmin {
		return &bill, true
	}

	callerID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid user ID in token")
		return nil, false
	}

	if role == models.RoleDoctor {
		if bill.Doctor == nil || *bill.Doctor != callerID {
			utils.RespondError(c, http.StatusNotFound, "Bill not found")
			return nil, false
		}
		return &bill, true
	}

	if bill.Patient != callerID {
		utils.RespondError(c, http.StatusNotFound, "Bill not found")
		return nil, false
	}
	return &bill, true
}

// GetBilling returns one bill under the caller's visibility rules.
func (h *Handler) GetBilling(c *gin.Context) {
	bill, ok := h.loadBillForCaller(c)
	if !ok {
		return
	}

	if c.GetString("userRole") == models.RolePatient {
		utils.Respond(c, http.StatusOK, "Bill fetched", services.RedactBillingForPatient(*bill))
		return
	}
	utils.Respond(c, http.StatusOK, "Bill fetched", bill)
}

// UpdateBillingPayment sets the payment fields of a bill. The first
// transition to paid stamps the payment date.
func (h *Handler) UpdateBillingPayment(c *gin.Context) {
	bill, ok := h.loadBillForCaller(c)
	if !ok {
		return
	}

	var upd services.PaymentUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := services.ApplyPaymentUpdate(bill, upd, time.Now()); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	set := bson.M{
		"status":    bill.Status,
		"updatedAt": bill.UpdatedAt,
	}
	if bill.PaymentMethod != "" {
		set["paymentMethod"] = bill.PaymentMethod
	}
	if bill.PaymentDetails != nil {
		set["paymentDetails"] = bill.PaymentDetails
	}

	if _, err := h.DB.Collection(services.CollectionBillings).UpdateOne(
		c.Request.Context(), bson.M{"_id": bill.ID}, bson.M{"$set": set}); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update bill")
		return
	}

	utils.Respond(c, http.StatusOK, "Bill updated successfully", bill)
}

// DeleteBilling removes a bill. Admin only.
func (h *Handler) DeleteBilling(c *gin.Context) {
	billID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid bill ID")
		return
	}

	result, err := h.DB.Collection(services.CollectionBillings).DeleteOne(
		c.Request.Context(), bson.M{"_id": billID})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to delete bill")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondError(c, http.StatusNotFound, "Bill not found")
		return
	}

	utils.Respond(c, http.StatusOK, "Bill deleted successfully", nil)
}
