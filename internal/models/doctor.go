package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Avatar struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

type Doctor struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName       string             `bson:"firstName" json:"firstName"`
	LastName        string             `bson:"lastName" json:"lastName"`
	Email           string             `bson:"email" json:"email"`
	Phone           string             `bson:"phone" json:"phone"`
	DOB             string             `bson:"dob" json:"dob"`
	Gender          string             `bson:"gender" json:"gender"` // "Male" or "Female"
	Password        string             `bson:"password" json:"-"`
	Role            string             `bson:"role" json:"role"` // always "Doctor"
	Department      string             `bson:"department" json:"department"`
	Specializations []string           `bson:"specializations" json:"specializations"`
	LicenseNumber   string             `bson:"licenseNumber" json:"licenseNumber"`
	Experience      int                `bson:"experience" json:"experience"`
	Avatar          *Avatar            `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
