package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohammadpnp/customer-import/internal/infrastructure/auth"
)

type credentialChecker interface {
	Authenticate(username, password string) (string, error)
}

type tokenIssuer interface {
	Issue(username, role string) (string, error)
}

type AuthHandler struct {
	accounts credentialChecker
	tokens   tokenIssuer
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

func NewAuthHandler(accounts credentialChecker, tokens tokenIssuer) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	role, err := h.accounts.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return respondError(c, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
		}
		return respondError(c, http.StatusInternalServerError, "internal_error", "failed to log in")
	}

	token, err := h.tokens.Issue(req.Username, role)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "internal_error", "failed to issue token")
	}

	return c.JSON(http.StatusOK, apiResponse{Data: loginResponse{Token: token, Role: role}})
}
