package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/timetracker/internal/config"
	"github.com/iliyamo/timetracker/internal/repository"
	"github.com/iliyamo/timetracker/internal/utils"
)

// AuthHandler bundles dependencies for the /users endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	if u == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userPart struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
type authResp struct {
	User      userPart  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Signup creates the account and returns a token right away.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Validation failed", validationMessages(err)...)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusBadRequest, "User already exists")
		}
		return serverError(c, h.Cfg, "Internal server error", err)
	}
	return h.issue(c, u.ID, u.Email)
}

// Login verifies the credentials.  Unknown emails and wrong passwords get
// the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusBadRequest, "Invalid credentials")
		}
		return serverError(c, h.Cfg, "Internal server error", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusBadRequest, "Invalid credentials")
	}
	return h.issue(c, u.ID, u.Email)
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "User not found")
		}
		return serverError(c, h.Cfg, "Internal server error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (h *AuthHandler) issue(c echo.Context, id, email string) error {
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, time.Duration(h.Cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		return serverError(c, h.Cfg, "Internal server error", err)
	}
	return c.JSON(http.StatusOK, authResp{
		User:      userPart{ID: id, Email: email},
		Token:     tok.Token,
		ExpiresAt: tok.Exp,
	})
}
