package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medihub/medihub-api/internal/config"
	"github.com/medihub/medihub-api/internal/models"
	"github.com/medihub/medihub-api/internal/services"
	"github.com/medihub/medihub-api/internal/utils"
)

// fakeLookup stands in for the users and doctors collections.
type fakeLookup struct {
	users   map[string]*models.User
	doctors map[string]*models.Doctor
}

func (f *fakeLookup) UserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, services.ErrNotFound
}

func (f *fakeLookup) DoctorByEmail(_ context.Context, email string) (*models.Doctor, error) {
	for _, d := range f.doctors {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, services.ErrNotFound
}

func (f *fakeLookup) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f.users[id.Hex()]; ok {
		return u, nil
	}
	return nil, services.ErrNotFound
}

func (f *fakeLookup) DoctorByID(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	if d, ok := f.doctors[id.Hex()]; ok {
		return d, nil
	}
	return nil, services.ErrNotFound
}

func newTestHandler() (*Handler, *fakeLookup) {
	gin.SetMode(gin.TestMode)
	lookup := &fakeLookup{
		users:   make(map[string]*models.User),
		doctors: make(map[string]*models.Doctor),
	}
	cfg := &config.Config{Env: "development", JWTSecret: "test-secret", JWTTTLHours: 1}
	h := NewHandler(
		nil,
		services.NewIdentity(lookup),
		utils.NewTokenManager(cfg.JWTSecret, time.Hour),
		services.NewNotificationService("", "", zerolog.Nop()),
		cfg,
		zerolog.Nop(),
	)
	return h, lookup
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return resp
}

func TestRegister_MissingFields(t *testing.T) {
	h, _ := newTestHandler()
	r := gin.New()
	r.POST("/user/patient/register", h.Register)

	rec := postJSON(r, "/user/patient/register", `{"email":"a@b.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegister_DoctorMissingDoctorFields(t *testing.T) {
	h, _ := newTestHandler()
	r := gin.New()
	r.POST("/user/patient/register", h.Register)

	rec := postJSON(r, "/user/patient/register", `{
		"firstName":"Asha","lastName":"Rao","age":35,
		"email":"asha@example.com","phone":"9876543210",
		"password":"longenough","role":"Doctor"
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegister_DoctorBadGender(t *testing.T) {
	h, _ := newTestHandler()
	r := gin.New()
	r.POST("/user/patient/register", h.Register)

	rec := postJSON(r, "/user/patient/register", `{
		"firstName":"Asha","lastName":"Rao","age":35,
		"email":"asha@example.com","phone":"9876543210",
		"password":"longenough","role":"Doctor",
		"specialty":"Cardiology","licenseNumber":"LIC-1","department":"Cardiology",
		"experience":8,"dob":"1990-01-01","gender":"Other"
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogin_RoleRequired(t *testing.T) {
	h, _ := newTestHandler()
	r := gin.New()
	r.POST("/user/login", h.Login)

	rec := postJSON(r, "/user/login", `{"email":"a@b.com","password":"whatever1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSimpleLogin_InvalidRole(t *testing.T) {
	h, _ := newTestHandler()
	r := gin.New()
	r.POST("/user/simple-login", h.SimpleLogin)

	rec := postJSON(r, "/user/simple-login", `{"email":"a@b.com","password":"whatever1","role":"Nurse"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Message != "Invalid role" {
		t.Fatalf("expected Invalid role, got %q", resp.Message)
	}
}

func TestSimpleLogin_Success(t *testing.T) {
	h, lookup := newTestHandler()
	hash, err := utils.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := primitive.NewObjectID()
	lookup.users[id.Hex()] = &models.User{
		ID: id, Email: "pat@example.com", Role: models.RolePatient, Password: hash,
	}

	r := gin.New()
	r.POST("/user/simple-login", h.SimpleLogin)

	rec := postJSON(r, "/user/simple-login", `{"email":"pat@example.com","password":"correct-horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeEnvelope(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected a data object, got %T", resp.Data)
	}
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("expected a token in the response body")
	}
	claims, err := h.Tokens.Validate(token)
	if err != nil {
		t.Fatalf("body token did not validate: %v", err)
	}
	if claims.UserID != id.Hex() || claims.Role != models.RolePatient {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "patientToken" {
			cookie = ck
		}
	}
	if cookie == nil {
		t.Fatal("expected a patientToken cookie")
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HTTP-only")
	}
}

func TestSimpleLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	h, lookup := newTestHandler()
	hash, err := utils.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := primitive.NewObjectID()
	lookup.users[id.Hex()] = &models.User{
		ID: id, Email: "pat@example.com", Role: models.RolePatient, Password: hash,
	}

	r := gin.New()
	r.POST("/user/simple-login", h.SimpleLogin)

	wrongPass := postJSON(r, "/user/simple-login", `{"email":"pat@example.com","password":"wrong-pass"}`)
	unknown := postJSON(r, "/user/simple-login", `{"email":"ghost@example.com","password":"wrong-pass"}`)

	if wrongPass.Code != http.StatusBadRequest || unknown.Code != http.StatusBadRequest {
		t.Fatalf("expected 400/400, got %d/%d", wrongPass.Code, unknown.Code)
	}
	a := decodeEnvelope(t, wrongPass)
	b := decodeEnvelope(t, unknown)
	if a.Message != b.Message {
		t.Fatalf("credential failures must be indistinguishable: %q vs %q", a.Message, b.Message)
	}
}

func TestSimpleLogin_DoctorRoleUsesDoctorsCollection(t *testing.T) {
	h, lookup := newTestHandler()
	hash, err := utils.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := primitive.NewObjectID()
	lookup.doctors[id.Hex()] = &models.Doctor{
		ID: id, Email: "doc@example.com", Role: models.RoleDoctor, Password: hash,
	}

	r := gin.New()
	r.POST("/user/simple-login", h.SimpleLogin)

	// Patient-role lookup must not see the doctor record.
	rec := postJSON(r, "/user/simple-login", `{"email":"doc@example.com","password":"correct-horse"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a doctor email under the Patient role, got %d", rec.Code)
	}

	rec = postJSON(r, "/user/simple-login", `{"email":"doc@example.com","password":"correct-horse","role":"Doctor"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var cookieNames []string
	for _, ck := range rec.Result().Cookies() {
		cookieNames = append(cookieNames, ck.Name)
	}
	found := false
	for _, name := range cookieNames {
		if name == "doctorToken" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a doctorToken cookie, got %v", cookieNames)
	}
}
