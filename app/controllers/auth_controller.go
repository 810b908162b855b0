package controllers

import (
	"errors"
	"net/http"

	"github.com/dukaanlabs/dukaan/app/requests"
	"github.com/dukaanlabs/dukaan/app/services"
	"github.com/dukaanlabs/dukaan/pkg/bind"
	"github.com/dukaanlabs/dukaan/pkg/logger"
	"github.com/dukaanlabs/dukaan/pkg/middleware"
	"github.com/dukaanlabs/dukaan/pkg/response"
	"github.com/dukaanlabs/dukaan/pkg/validate"
)

// AuthController handles signup, login and logout.
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Signup registers an account and returns it with a bearer token.
func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var in requests.SignupInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}
	if validate.HasErrors(errs) {
		response.ValidationErrors(w, errs)
		return
	}

	user, token, errs, err := c.auth.Signup(&in)
	if err != nil {
		logger.WithCtx(r.Context()).Error("signup", "error", err)
		response.ServerError(w)
		return
	}
	if validate.HasErrors(errs) {
		response.ValidationErrors(w, errs)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User created successfully",
		"data":    user,
		"token":   token,
	})
}

// Login verifies credentials and returns a bearer token.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in requests.LoginInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}
	if validate.HasErrors(errs) {
		response.ValidationErrors(w, errs)
		return
	}

	token, err := c.auth.Login(&in)
	if errors.Is(err, services.ErrInvalidCredentials) {
		response.JSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "Invalid email or password",
		})
		return
	}
	if err != nil {
		logger.WithCtx(r.Context()).Error("login", "error", err)
		response.ServerError(w)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"token":   token,
	})
}

// Logout revokes the presented bearer token.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if err := c.auth.Logout(claims); err != nil {
		logger.WithCtx(r.Context()).Error("logout", "error", err)
		response.ServerError(w)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Successfully logged out",
	})
}
