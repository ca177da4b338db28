package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles recognised by the API. Patients and admins live in the "users"
// collection; doctors normally live in "doctors", but legacy records may
// exist in "users" with RoleDoctor set.
const (
	RolePatient = "Patient"
	RoleDoctor  = "Doctor"
	RoleAdmin   = "Admin"
)

type Address struct {
	City    string `bson:"city" json:"city"`
	Country string `bson:"country" json:"country"`
}

type EmergencyContact struct {
	Name         string `bson:"name" json:"name"`
	Phone        string `bson:"phone" json:"phone"`
	Relationship string `bson:"relationship" json:"relationship"`
}

type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName        string             `bson:"firstName" json:"firstName"`
	LastName         string             `bson:"lastName" json:"lastName"`
	Age              int                `bson:"age" json:"age"`
	Email            string             `bson:"email" json:"email"`
	Phone            string             `bson:"phone" json:"phone"`
	Address          Address            `bson:"address" json:"address"`
	Password         string             `bson:"password" json:"-"` // Hide from JSON responses
	Role             string             `bson:"role" json:"role"`
	MedicalHistory   []string           `bson:"medicalHistory,omitempty" json:"medicalHistory,omitempty"`
	EmergencyContact *EmergencyContact  `bson:"emergencyContact,omitempty" json:"emergencyContact,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
