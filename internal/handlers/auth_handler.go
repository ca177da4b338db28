package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/medihub/medihub-api/internal/models"
	"github.com/medihub/medihub-api/internal/services"
	"github.com/medihub/medihub-api/internal/utils"
)

// The same message covers unknown emails and wrong passwords so that a
// login probe cannot tell whether an account exists.
const invalidCredentialsMsg = "Invalid email or password"

type RegisterRequest struct {
	FirstName string         `json:"firstName" binding:"required"`
	LastName  string         `json:"lastName" binding:"required"`
	Age       int            `json:"age" binding:"required,min=1"`
	Email     string         `json:"email" binding:"required,email"`
	Phone     string         `json:"phone" binding:"required,len=10,numeric"`
	Password  string         `json:"password" binding:"required,min=8"`
	Role      string         `json:"role" binding:"required,oneof=Patient Doctor Admin"`
	Address   models.Address `json:"address"`

	// Doctor-only fields, checked when role is Doctor.
	Specialty     string `json:"specialty"`
	LicenseNumber string `json:"licenseNumber"`
	Department    string `json:"department"`
	Experience    int    `json:"experience"`
	DOB           string `json:"dob"`
	Gender        string `json:"gender"`

	// Patient-only fields.
	MedicalHistory   []string                 `json:"medicalHistory"`
	EmergencyContact *models.EmergencyContact `json:"emergencyContact"`
}

// Register dispatches a registration payload to the collection its role
// selects and immediately issues a session, as if the caller had logged in.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	ctx := c.Request.Context()
	now := time.Now()

	if req.Role == models.RoleDoctor {
		if req.Specialty == "" || req.LicenseNumber == "" || req.Department == "" ||
			req.Experience <= 0 || req.DOB == "" {
			utils.RespondError(c, http.StatusBadRequest, "Doctor registration requires specialty, licenseNumber, department, experience and dob")
			return
		}
		if req.Gender != "Male" && req.Gender != "Female" {
			utils.RespondError(c, http.StatusBadRequest, "Gender must be Male or Female")
			return
		}

		doctor := models.Doctor{
			ID:              primitive.NewObjectID(),
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			Email:           req.Email,
			Phone:           req.Phone,
			DOB:             req.DOB,
			Gender:          req.Gender,
			Password:        hashedPassword,
			Role:            models.RoleDoctor,
			Department:      req.Department,
			Specializations: []string{req.Specialty},
			LicenseNumber:   req.LicenseNumber,
			Experience:      req.Experience,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if _, err := h.DB.Collection(services.CollectionDoctors).InsertOne(ctx, doctor); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				utils.RespondError(c, http.StatusConflict, "An account with this email already exists")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, "Failed to create doctor")
			return
		}

		h.issueSession(c, http.StatusCreated, "Doctor registered successfully", doctor.ID.Hex(), models.RoleDoctor, doctor)
		return
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Password:  hashedPassword,
		Role:      req.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Role == models.RolePatient {
		user.MedicalHistory = req.MedicalHistory
		user.EmergencyContact = req.EmergencyContact
	}

	if _, err := h.DB.Collection(services.CollectionUsers).InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondError(c, http.StatusConflict, "An account with this email already exists")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	h.issueSession(c, http.StatusCreated, "User registered successfully", user.ID.Hex(), user.Role, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Token    string `json:"token"` // captcha token, strict login only
}

// Login is the strict entry point: role is required and, when configured, a
// captcha token must verify.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Role == "" {
		utils.RespondError(c, http.StatusBadRequest, "Role is required")
		return
	}

	ok, err := services.VerifyRecaptcha(c.Request.Context(), h.Config.RecaptchaSecret, req.Token)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Captcha verification failed")
		return
	}
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "Captcha verification failed")
		return
	}

	h.login(c, req)
}

// SimpleLogin is the relaxed entry point: no captcha, role defaults to
// Patient.
func (h *Handler) SimpleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Role == "" {
		req.Role = models.RolePatient
	}
	h.login(c, req)
}

func (h *Handler) login(c *gin.Context, req loginRequest) {
	cred, err := h.Identity.CredentialByEmail(c.Request.Context(), req.Role, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			utils.RespondError(c, http.StatusBadRequest, "Invalid role")
		case errors.Is(err, services.ErrNotFound):
			utils.RespondError(c, http.StatusBadRequest, invalidCredentialsMsg)
		default:
			h.Logger.Error().Err(err).Msg("login lookup failed")
			utils.RespondError(c, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	if !utils.CheckPasswordHash(req.Password, cred.PasswordHash) {
		utils.RespondError(c, http.StatusBadRequest, invalidCredentialsMsg)
		return
	}

	h.issueSession(c, http.StatusOK, "Logged in successfully", cred.ID.Hex(), cred.Role, nil)
}

// issueSession generates the signed token and delivers it both as the
// role-scoped HTTP-only cookie and in the response body for non-browser
// clients.
func (h *Handler) issueSession(c *gin.Context, status int, message, userID, role string, identity interface{}) {
	token, err := h.Tokens.Generate(userID, role)
	if err != nil {
		h.Logger.Error().Err(err).Msg("token generation failed")
		utils.RespondError(c, http.StatusInternalServerError, "Could not generate token")
		return
	}

	maxAge := int((time.Duration(h.Config.JWTTTLHours) * time.Hour).Seconds())
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(utils.CookieNameForRole(role), token, maxAge, "/", "", !h.Config.IsDev(), true)

	utils.Respond(c, status, message, gin.H{
		"token": token,
		"role":  role,
		"user":  identity,
	})
}
