package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/medihub/medihub-api/internal/models"
)

// NotificationService sends SMS confirmations through a Textbelt-style
// gateway. Sends run in their own goroutine and never fail the request
// that triggered them.
type NotificationService struct {
	gatewayURL string
	apiKey     string
	logger     zerolog.Logger
}

func NewNotificationService(gatewayURL, apiKey string, logger zerolog.Logger) *NotificationService {
	return &NotificationService{gatewayURL: gatewayURL, apiKey: apiKey, logger: logger}
}

// SendAppointmentSMS notifies a patient that an appointment was booked or
// cancelled.
func (s *NotificationService) SendAppointmentSMS(patient *models.User, apt *models.Appointment) {
	if patient.Phone == "" {
		s.logger.Debug().Str("patient", patient.ID.Hex()).Msg("sms skipped: patient has no phone number")
		return
	}
	if s.gatewayURL == "" {
		s.logger.Debug().Msg("sms skipped: no gateway configured")
		return
	}

	message := fmt.Sprintf(
		"Medi-Hub: your %s appointment on %s is %s.",
		apt.Department,
		apt.AppointmentDate.Format("Jan 2 at 3:04 PM"),
		apt.Status,
	)

	go s.send(patient.Phone, message)
}

func (s *NotificationService) send(phone, message string) {
	postBody, _ := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})

	resp, err := http.Post(s.gatewayURL, "application/json", bytes.NewBuffer(postBody))
	if err != nil {
		s.logger.Error().Err(err).Str("phone", phone).Msg("sms gateway request failed")
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)

	success, _ := result["success"].(bool)
	if !success {
		errorMsg, _ := result["error"].(string)
		s.logger.Warn().Str("phone", phone).Str("reason", errorMsg).Msg("sms gateway rejected message")
		return
	}
	s.logger.Info().Str("phone", phone).Msg("sms sent")
}
