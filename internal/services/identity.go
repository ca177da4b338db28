package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/medihub/medihub-api/internal/models"
)

const (
	CollectionUsers        = "users"
	CollectionDoctors      = "doctors"
	CollectionAppointments = "appointments"
	CollectionBillings     = "billings"
	CollectionMedicines    = "medicines"
)

var (
	ErrInvalidRole    = errors.New("invalid role")
	ErrInvalidID      = errors.New("invalid id format")
	ErrNotFound       = errors.New("record not found")
	ErrDoctorNotFound = errors.New("doctor not found")
)

// CollectionFor maps a role to the collection its identities live in.
// Patients and admins share the users collection; doctors have their own.
func CollectionFor(role string) (string, error) {
	switch role {
	case models.RolePatient, models.RoleAdmin:
		return CollectionUsers, nil
	case models.RoleDoctor:
		return CollectionDoctors, nil
	default:
		return "", ErrInvalidRole
	}
}

// IdentityLookup abstracts the two identity collections so the role-routing
// and doctor-resolution logic can be tested against fakes. Implementations
// return ErrNotFound when no record matches.
type IdentityLookup interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	DoctorByEmail(ctx context.Context, email string) (*models.Doctor, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	DoctorByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
}

// Credential is the slice of an identity record that login needs.
type Credential struct {
	ID           primitive.ObjectID
	Role         string
	PasswordHash string
}

// Identity is the single role router every handler goes through instead of
// re-implementing the collection switch per route.
type Identity struct {
	lookup IdentityLookup
}

func NewIdentity(lookup IdentityLookup) *Identity {
	return &Identity{lookup: lookup}
}

// CredentialByEmail routes the login lookup to the collection the role flag
// selects. An unknown role fails with ErrInvalidRole before any query runs.
func (s *Identity) CredentialByEmail(ctx context.Context, role, email string) (*Credential, error) {
	collection, err := CollectionFor(role)
	if err != nil {
		return nil, err
	}
	if collection == CollectionDoctors {
		doc, err := s.lookup.DoctorByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &Credential{ID: doc.ID, Role: models.RoleDoctor, PasswordHash: doc.Password}, nil
	}
	user, err := s.lookup.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &Credential{ID: user.ID, Role: user.Role, PasswordHash: user.Password}, nil
}

// ResolveDoctor accepts a doctor reference supplied on an appointment or
// bill. Historical data stores doctors in either collection, so the doctors
// collection is tried first and a users record only counts when its role
// field is Doctor.
func (s *Identity) ResolveDoctor(ctx context.Context, idHex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}

	doc, err := s.lookup.DoctorByID(ctx, id)
	if err == nil {
		return doc.ID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return primitive.NilObjectID, err
	}

	user, err := s.lookup.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return primitive.NilObjectID, ErrDoctorNotFound
		}
		return primitive.NilObjectID, err
	}
	if user.Role != models.RoleDoctor {
		return primitive.NilObjectID, ErrDoctorNotFound
	}
	return user.ID, nil
}

// MongoIdentityStore is the production IdentityLookup backed by the two
// Mongo collections.
type MongoIdentityStore struct {
	DB *mongo.Database
}

func (s *MongoIdentityStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.Collection(CollectionUsers).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &user, nil
}

func (s *MongoIdentityStore) DoctorByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	var doc models.Doctor
	err := s.DB.Collection(CollectionDoctors).FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &doc, nil
}

func (s *MongoIdentityStore) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.DB.Collection(CollectionUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &user, nil
}

func (s *MongoIdentityStore) DoctorByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	var doc models.Doctor
	err := s.DB.Collection(CollectionDoctors).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &doc, nil
}

func mapMongoErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
