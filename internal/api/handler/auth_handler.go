package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nomadhire/marketplace/internal/api/metrics"
	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

type AuthHandler struct {
	users ports.UserService
	// passwords is nil when the identity provider issues its own tokens
	// outside this API.
	passwords ports.PasswordAuthenticator
}

func NewAuthHandler(users ports.UserService, passwords ports.PasswordAuthenticator) *AuthHandler {
	return &AuthHandler{users: users, passwords: passwords}
}

// Signup creates a new user account.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  userMessageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.SignupsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	user, err := h.users.Signup(c.Request().Context(), ports.SignupInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrSignupRejected) || errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrValidation) {
			result = "rejected"
		}
		metrics.SignupsTotal.WithLabelValues(result).Inc()
		return err
	}

	metrics.SignupsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, userMessageResponse{Message: "User created successfully", User: user})
}

// Login exchanges credentials for a bearer token. Only mounted for the local
// identity provider.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	if h.passwords == nil {
		return echo.NewHTTPError(http.StatusNotFound, "login is handled by the identity provider")
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, id, err := h.passwords.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	user, err := h.users.Me(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token, User: user})
}

// Me returns the caller's stored profile.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /user [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Me(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// MakeAdmin grants the admin role by email. Mounted only when a bootstrap
// token is configured.
//
// @Summary      Promote a user to admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Bootstrap-Token  header    string            true  "Operator bootstrap token"
// @Param        body               body      makeAdminRequest  true  "User email"
// @Success      200                {object}  userMessageResponse
// @Failure      400                {object}  errorResponse
// @Failure      403                {object}  errorResponse
// @Failure      404                {object}  errorResponse
// @Router       /admin/make-admin [post]
func (h *AuthHandler) MakeAdmin(c echo.Context) error {
	var req makeAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.users.PromoteToAdmin(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userMessageResponse{Message: "User role updated to admin", User: user})
}
