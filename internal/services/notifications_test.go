package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medihub/medihub-api/internal/models"
)

func TestNotificationService_SendPayload(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("invalid gateway payload: %v", err)
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	svc := NewNotificationService(server.URL, "gw-key", zerolog.Nop())
	svc.send("9876543210", "Medi-Hub: your Cardiology appointment on Sep 10 at 10:00 AM is Pending.")

	if got["phone"] != "9876543210" {
		t.Fatalf("expected the patient phone, got %q", got["phone"])
	}
	if got["key"] != "gw-key" {
		t.Fatalf("expected the gateway key, got %q", got["key"])
	}
	if got["message"] == "" {
		t.Fatal("expected a message body")
	}
}

func TestSendAppointmentSMS_CarriesStatus(t *testing.T) {
	// Cancellations reuse the same notification path as bookings; the
	// message must carry the appointment's current status.
	payloads := make(chan map[string]string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]string
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("invalid gateway payload: %v", err)
		}
		payloads <- got
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	svc := NewNotificationService(server.URL, "gw-key", zerolog.Nop())
	patient := &models.User{ID: primitive.NewObjectID(), Phone: "9876543210"}
	apt := &models.Appointment{
		ID:              primitive.NewObjectID(),
		Patient:         patient.ID,
		Department:      "Cardiology",
		AppointmentDate: time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC),
		Status:          models.AppointmentCancelled,
	}

	svc.SendAppointmentSMS(patient, apt)

	select {
	case got := <-payloads:
		if !strings.Contains(got["message"], models.AppointmentCancelled) {
			t.Fatalf("expected the cancelled status in the message, got %q", got["message"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("gateway was never called")
	}
}

func TestSendAppointmentSMS_SkipsWithoutPhone(t *testing.T) {
	called := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called <- struct{}{}
	}))
	defer server.Close()

	svc := NewNotificationService(server.URL, "gw-key", zerolog.Nop())
	svc.SendAppointmentSMS(&models.User{ID: primitive.NewObjectID()}, &models.Appointment{Status: models.AppointmentPending})

	select {
	case <-called:
		t.Fatal("gateway must not be called for a patient without a phone number")
	case <-time.After(100 * time.Millisecond):
	}
}
