package services

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medihub/medihub-api/internal/models"
)

// PaymentMethods is the static list of supported payment method identifiers.
var PaymentMethods = []string{"upi", "bank_transfer", "card", "cash", "razorpay"}

var (
	ErrInvalidItems  = errors.New("each item needs a name, a quantity of at least 1 and a non-negative unit price")
	ErrNegativeTotal = errors.New("discount exceeds the billable amount")
	ErrBadPayMethod  = errors.New("unsupported payment method")
	ErrBadBillStatus = errors.New("unsupported billing status")
)

// ComputeBillingTotals fills in each item's totalPrice and returns subtotal
// and totalAmount. Summation runs in item order:
//
//	totalPrice  = quantity * unitPrice
//	subtotal    = sum of totalPrice
//	totalAmount = subtotal + tax - discount
//
// A totalAmount below zero is rejected rather than stored.
func ComputeBillingTotals(items []models.BillingItem, tax, discount float64) ([]models.BillingItem, float64, float64, error) {
	if len(items) == 0 {
		return nil, 0, 0, ErrInvalidItems
	}
	out := make([]models.BillingItem, len(items))
	subtotal := 0.0
	for i, item := range items {
		if item.Name == "" || item.Quantity < 1 || item.UnitPrice < 0 {
			return nil, 0, 0, ErrInvalidItems
		}
		item.TotalPrice = float64(item.Quantity) * item.UnitPrice
		subtotal += item.TotalPrice
		out[i] = item
	}
	total := subtotal + tax - discount
	if total < 0 {
		return nil, 0, 0, ErrNegativeTotal
	}
	return out, subtotal, total, nil
}

// RedactBillingForPatient strips a bill down to the summary a patient may
// see. Items, diagnosis and payment details never survive this transform.
func RedactBillingForPatient(b models.Billing) models.BillingSummary {
	return models.BillingSummary{
		ID:             b.ID,
		BillNumber:     b.BillNumber,
		TotalAmount:    b.TotalAmount,
		Status:         b.Status,
		DueDate:        b.DueDate,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
		PaymentMethods: PaymentMethods,
	}
}

// BillingDoctorFor decides the doctor reference a new bill carries. A
// doctor creator always bills as themselves: whatever doctor id the payload
// supplied is discarded. Admins may name any (already validated) doctor.
func BillingDoctorFor(callerRole string, callerID primitive.ObjectID, requested *primitive.ObjectID) *primitive.ObjectID {
	if callerRole == models.RoleDoctor {
		id := callerID
		return &id
	}
	return requested
}

// PaymentUpdate carries the mutable payment fields of a bill.
type PaymentUpdate struct {
	Status         string                 `json:"status"`
	PaymentMethod  string                 `json:"paymentMethod"`
	PaymentDetails *models.PaymentDetails `json:"paymentDetails"`
}

func validBillingStatus(s string) bool {
	switch s {
	case models.BillingPending, models.BillingPaid, models.BillingOverdue, models.BillingCancelled:
		return true
	}
	return false
}

func validPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// ApplyPaymentUpdate mutates a bill in place from a payment update. Any
// status may follow any other status; the only special case is stamping
// paymentDate on the first transition to paid.
func ApplyPaymentUpdate(b *models.Billing, upd PaymentUpdate, now time.Time) error {
	if upd.Status != "" {
		if !validBillingStatus(upd.Status) {
			return ErrBadBillStatus
		}
		b.Status = upd.Status
	}
	if upd.PaymentMethod != "" {
		if !validPaymentMethod(upd.PaymentMethod) {
			return ErrBadPayMethod
		}
		b.PaymentMethod = upd.PaymentMethod
	}
	if upd.PaymentDetails != nil {
		details := *upd.PaymentDetails
		if b.PaymentDetails != nil && details.PaymentDate == nil {
			details.PaymentDate = b.PaymentDetails.PaymentDate
		}
		b.PaymentDetails = &details
	}
	if b.Status == models.BillingPaid {
		if b.PaymentDetails == nil {
			b.PaymentDetails = &models.PaymentDetails{}
		}
		if b.PaymentDetails.PaymentDate == nil {
			b.PaymentDetails.PaymentDate = &now
		}
	}
	b.UpdatedAt = now
	return nil
}
