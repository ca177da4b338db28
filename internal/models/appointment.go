package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AppointmentPending   = "Pending"
	AppointmentConfirmed = "Confirmed"
	AppointmentCancelled = "Cancelled"
	AppointmentCompleted = "Completed"
)

type Appointment struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	// Patient always references the users collection. Doctor may reference
	// either the doctors collection or a legacy doctor record in users.
	Patient         primitive.ObjectID `bson:"patient" json:"patient"`
	Doctor          primitive.ObjectID `bson:"doctor" json:"doctor"`
	AppointmentDate time.Time          `bson:"appointmentDate" json:"appointmentDate"`
	Status          string             `bson:"status" json:"status"`
	Department      string             `bson:"department" json:"department"`
	City            string             `bson:"city" json:"city"`
	Pincode         string             `bson:"pincode" json:"pincode"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
