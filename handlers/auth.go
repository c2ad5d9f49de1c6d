package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"

	"eventx/db"
	"eventx/models"
	"eventx/rules"
)

// Same text for unknown email and wrong password so that responses do not
// reveal which accounts exist.
const invalidCredentials = "Invalid email or password."

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(r *http.Request) (Result, error) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		return Result{}, fail(http.StatusBadRequest, "Invalid JSON data: "+err.Error())
	}

	if blank(req.Name, req.Email, req.Password, req.Phone) {
		return Result{}, fail(http.StatusBadRequest, "All fields are required.")
	}

	name := rules.Sanitize(req.Name)
	email := rules.Sanitize(req.Email)
	phone := rules.NormalizePhone(rules.Sanitize(req.Phone))

	if err := validation.Validate(email, is.EmailFormat); err != nil {
		return Result{}, fail(http.StatusBadRequest, "Invalid email format.")
	}
	if err := validation.Validate(phone, rules.EgyptianPhone); err != nil {
		return Result{}, fail(http.StatusBadRequest, "Invalid Egyptian phone number format.")
	}

	ctx := r.Context()

	taken, err := h.Store.EmailExists(ctx, email)
	if err != nil {
		return Result{}, failWith(http.StatusInternalServerError, "Registration failed. Please try again.", err)
	}
	if taken {
		return Result{}, fail(http.StatusConflict, "Email already registered.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.hashCost())
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return Result{}, fail(http.StatusBadRequest, "Password must be at most 72 bytes.")
	}
	if err != nil {
		return Result{}, failWith(http.StatusInternalServerError, "Registration failed. Please try again.", err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: string(hash), Phone: phone}
	if err := h.Store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			return Result{}, fail(http.StatusConflict, "Email already registered.")
		}
		return Result{}, failWith(http.StatusInternalServerError, "Registration failed. Please try again.", err)
	}

	h.Metrics.UserCreated()
	slog.Info("user registered", "user_id", user.ID)

	return Result{Status: http.StatusCreated, Message: "Registration successful!", Data: user.Public()}, nil
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(r *http.Request) (Result, error) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		return Result{}, fail(http.StatusBadRequest, "Invalid JSON data: "+err.Error())
	}

	if blank(req.Email) || req.Password == "" {
		return Result{}, fail(http.StatusBadRequest, "Email and password are required.")
	}

	email := rules.Sanitize(req.Email)
	if err := validation.Validate(email, is.EmailFormat); err != nil {
		return Result{}, fail(http.StatusBadRequest, "Invalid email format.")
	}

	user, err := h.Store.FindUserByEmail(r.Context(), email)
	if errors.Is(err, db.ErrNotFound) {
		h.Metrics.LoginAttempt(false)
		return Result{}, fail(http.StatusUnauthorized, invalidCredentials)
	}
	if err != nil {
		return Result{}, failWith(http.StatusInternalServerError, "Login failed. Please try again.", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.Metrics.LoginAttempt(false)
		return Result{}, fail(http.StatusUnauthorized, invalidCredentials)
	}

	h.Metrics.LoginAttempt(true)
	return Result{Message: "Login successful!", Data: user.Public()}, nil
}

func (h *Handlers) hashCost() int {
	if h.HashCost == 0 {
		return bcrypt.DefaultCost
	}
	return h.HashCost
}
