package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BillingPending   = "pending"
	BillingPaid      = "paid"
	BillingOverdue   = "overdue"
	BillingCancelled = "cancelled"
)

type BillingItem struct {
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unitPrice" json:"unitPrice"`
	TotalPrice  float64 `bson:"totalPrice" json:"totalPrice"`
}

type PaymentDetails struct {
	TransactionID string     `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	UPIID         string     `bson:"upiId,omitempty" json:"upiId,omitempty"`
	BankAccount   string     `bson:"bankAccount,omitempty" json:"bankAccount,omitempty"`
	PaymentDate   *time.Time `bson:"paymentDate,omitempty" json:"paymentDate,omitempty"`
}

type Billing struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	BillNumber     string              `bson:"billNumber" json:"billNumber"`
	Patient        primitive.ObjectID  `bson:"patient" json:"patient"`
	Doctor         *primitive.ObjectID `bson:"doctor,omitempty" json:"doctor,omitempty"`
	Appointment    *primitive.ObjectID `bson:"appointment,omitempty" json:"appointment,omitempty"`
	Diagnosis      string              `bson:"diagnosis,omitempty" json:"diagnosis,omitempty"`
	Items          []BillingItem       `bson:"items" json:"items"`
	Subtotal       float64             `bson:"subtotal" json:"subtotal"`
	Tax            float64             `bson:"tax" json:"tax"`
	Discount       float64             `bson:"discount" json:"discount"`
	TotalAmount    float64             `bson:"totalAmount" json:"totalAmount"`
	Status         string              `bson:"status" json:"status"`
	PaymentMethod  string              `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	PaymentDetails *PaymentDetails     `bson:"paymentDetails,omitempty" json:"paymentDetails,omitempty"`
	DueDate        *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Notes          string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// BillingSummary is the view a patient gets. Item, diagnosis and payment
// detail fields are deliberately absent.
type BillingSummary struct {
	ID             primitive.ObjectID `json:"id"`
	BillNumber     string             `json:"billNumber"`
	TotalAmount    float64            `json:"totalAmount"`
	Status         string             `json:"status"`
	DueDate        *time.Time         `json:"dueDate,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
	PaymentMethods []string           `json:"paymentMethods"`
}
