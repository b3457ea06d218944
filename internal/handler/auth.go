// Package handler contains the HTTP layer: request decoding, delegation to
// services, and response/error encoding. No business rules live here.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/friendcircle/internal/apperror"
	"github.com/sakif/friendcircle/internal/model"
	"github.com/sakif/friendcircle/internal/service"
)

// AuthHandler owns the signup and login endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// signupRequest carries the signup form. DateOfBirth arrives as an ISO date
// string ("1993-04-12") rather than a full timestamp.
type signupRequest struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	DateOfBirth string   `json:"dateOfBirth"`
	Gender      string   `json:"gender"`
	Location    string   `json:"location"`
	Bio         string   `json:"bio"`
	Hobbies     []string `json:"hobbies"`
	Profession  string   `json:"profession"`
	AvatarURL   string   `json:"avatarUrl"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// HandleSignup registers a new identity.
//
// HTTP: POST /api/auth/signup → 201 with the created profile (hash never
// serialized), 400 on validation failure, 409 when username/email is taken.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), input)
	if err != nil {
		h.logger.Warn("signup rejected",
			slog.String("username", req.Username),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin authenticates credentials and returns a signed token.
//
// HTTP: POST /api/auth/login → 200 {token, userId}, 401 on invalid
// credentials (unknown user and wrong password are indistinguishable).
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, apperror.ValidationFailed("body", "username and password are required"))
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: result.Token, UserID: result.UserID})
}

// HandleMe returns the acting identity's own profile.
//
// HTTP: GET /api/me (authenticated)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID := actingUserID(w, r)
	if userID == "" {
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (r signupRequest) toInput() (service.RegisterInput, error) {
	var in service.RegisterInput

	dob, err := time.Parse("2006-01-02", r.DateOfBirth)
	if err != nil {
		return in, apperror.ValidationFailed("dateOfBirth", "dateOfBirth must be a YYYY-MM-DD date")
	}
	gender, err := model.ParseGender(r.Gender)
	if err != nil {
		return in, apperror.ValidationFailed("gender", "gender must be one of male, female, other")
	}

	return service.RegisterInput{
		Username:    r.Username,
		Email:       r.Email,
		Password:    r.Password,
		DateOfBirth: dob,
		Gender:      gender,
		Location:    r.Location,
		Bio:         r.Bio,
		Hobbies:     r.Hobbies,
		Profession:  r.Profession,
		AvatarURL:   r.AvatarURL,
	}, nil
}
