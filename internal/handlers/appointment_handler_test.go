package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medihub/medihub-api/internal/models"
)

// asRole simulates the auth middleware for handler-level tests.
func asRole(id, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Set("userRole", role)
		c.Next()
	}
}

func TestCreateAppointment_InvalidDate(t *testing.T) {
	h, _ := newTestHandler()
	r := gin.New()
	r.POST("/appointment", asRole(primitive.NewObjectID().Hex(), models.RolePatient), h.CreateAppointment)

	rec := postJSON(r, "/appointment", `{
		"doctor":"`+primitive.NewObjectID().Hex()+`",
		"appointmentDate":"tomorrow at noon",
		"department":"Cardiology"
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateAppointment_InvalidDoctorID(t *testing.T) {
	h, _ := newTestHandler()
	r := gin.New()
	r.POST("/appointment", asRole(primitive.NewObjectID().Hex(), models.RolePatient), h.CreateAppointment)

	rec := postJSON(r, "/appointment", `{
		"doctor":"not-a-hex-id",
		"appointmentDate":"2026-09-10T10:00:00Z",
		"department":"Cardiology"
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateAppointment_DoctorAbsentFromBothCollections(t *testing.T) {
	h, _ := newTestHandler()
	r := gin.New()
	r.POST("/appointment", asRole(primitive.NewObjectID().Hex(), models.RolePatient), h.CreateAppointment)

	rec := postJSON(r, "/appointment", `{
		"doctor":"`+primitive.NewObjectID().Hex()+`",
		"appointmentDate":"2026-09-10T10:00:00Z",
		"department":"Cardiology"
	}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateAppointment_UserRecordWithoutDoctorRoleRejected(t *testing.T) {
	h, lookup := newTestHandler()
	imposter := primitive.NewObjectID()
	lookup.users[imposter.Hex()] = &models.User{ID: imposter, Role: models.RolePatient}

	r := gin.New()
	r.POST("/appointment", asRole(primitive.NewObjectID().Hex(), models.RolePatient), h.CreateAppointment)

	rec := postJSON(r, "/appointment", `{
		"doctor":"`+imposter.Hex()+`",
		"appointmentDate":"2026-09-10T10:00:00Z",
		"department":"Cardiology"
	}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a non-doctor users record, got %d", rec.Code)
	}
}

func TestCreateAppointment_AdminMustNamePatient(t *testing.T) {
	h, lookup := newTestHandler()
	doctorID := primitive.NewObjectID()
	lookup.doctors[doctorID.Hex()] = &models.Doctor{ID: doctorID, Role: models.RoleDoctor}

	r := gin.New()
	r.POST("/appointment", asRole(primitive.NewObjectID().Hex(), models.RoleAdmin), h.CreateAppointment)

	rec := postJSON(r, "/appointment", `{
		"doctor":"`+doctorID.Hex()+`",
		"appointmentDate":"2026-09-10T10:00:00Z",
		"department":"Cardiology"
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when an admin omits the patient, got %d", rec.Code)
	}
}
