package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/siddu-catalog/internal/config"
	"github.com/iliyamo/siddu-catalog/internal/middleware"
	"github.com/iliyamo/siddu-catalog/internal/model"
	"github.com/iliyamo/siddu-catalog/internal/repository"
	"github.com/iliyamo/siddu-catalog/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  repository.UserStore
	Tokens repository.TokenStore
}

func NewAuthHandler(cfg config.Config, u repository.UserStore, t repository.TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func (req *credentialsReq) normalize() bool {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	return req.Email != "" && req.Password != ""
}

// issue creates an access/refresh pair and stores the refresh hash.
func (h *AuthHandler) issue(ctx context.Context, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

// Register creates an EDITOR account and returns tokens immediately.
// ADMIN accounts are provisioned out of band.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	if !req.normalize() {
		return apiError(c, http.StatusBadRequest, "validation", "email/password required")
	}
	if err := utils.CheckPassword(req.Password); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, model.RoleEditor, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apiError(c, http.StatusConflict, "conflict", "email already exists")
		}
		log.Error().Err(err).Msg("create user failed")
		return apiError(c, http.StatusInternalServerError, "internal", "create user failed")
	}
	resp, err := h.issue(ctx, model.User{ID: uid, Email: req.Email, Role: model.RoleEditor})
	if err != nil {
		log.Error().Err(err).Msg("issue tokens failed")
		return apiError(c, http.StatusInternalServerError, "internal", "issue tokens failed")
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "validation", "invalid body")
	}
	if !req.normalize() {
		return apiError(c, http.StatusBadRequest, "validation", "email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apiError(c, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		}
		log.Error().Err(err).Msg("load user failed")
		return apiError(c, http.StatusInternalServerError, "internal", "query failed")
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apiError(c, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		log.Error().Err(err).Msg("issue tokens failed")
		return apiError(c, http.StatusInternalServerError, "internal", "issue tokens failed")
	}
	return c.JSON(http.StatusOK, resp)
}

var errRefreshRequired = errors.New("refresh_token required")

// refreshUser resolves the refresh token in the body to its live user.
func (h *AuthHandler) refreshUser(ctx context.Context, c echo.Context) (model.User, string, error) {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return model.User{}, "", errRefreshRequired
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return model.User{}, "", repository.ErrInvalidRefresh
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil || !u.IsActive {
		return model.User{}, "", repository.ErrInvalidRefresh
	}
	return u, hash, nil
}

func refreshError(c echo.Context, err error) error {
	if errors.Is(err, errRefreshRequired) {
		return apiError(c, http.StatusBadRequest, "validation", err.Error())
	}
	return apiError(c, http.StatusUnauthorized, "unauthorized", "invalid refresh")
}

// Refresh rotates the refresh token: the presented one is revoked and a
// new pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, hash, err := h.refreshUser(ctx, c)
	if err != nil {
		return refreshError(c, err)
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		log.Error().Err(err).Msg("revoke refresh failed")
		return apiError(c, http.StatusInternalServerError, "internal", "refresh failed")
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		log.Error().Err(err).Msg("issue tokens failed")
		return apiError(c, http.StatusInternalServerError, "internal", "issue tokens failed")
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAccess returns a new access token without rotating the refresh
// token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, _, err := h.refreshUser(ctx, c)
	if err != nil {
		return refreshError(c, err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, "internal", "issue access failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes the refresh token in the body, or every refresh token of
// the bearer when the body carries none.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid uint64
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
			uid, _ = strconv.ParseUint(claims.Subject, 10, 64)
		}
	}
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch {
	case refreshToken != "":
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return apiError(c, http.StatusUnauthorized, "unauthorized", "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return apiError(c, http.StatusInternalServerError, "internal", "logout failed")
		}
	case uid != 0:
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return apiError(c, http.StatusInternalServerError, "internal", "logout failed")
		}
	default:
		return apiError(c, http.StatusBadRequest, "validation", "provide Authorization header or refresh_token")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := strconv.ParseUint(middleware.UserID(c), 10, 64)
	if err != nil {
		return apiError(c, http.StatusUnauthorized, "unauthorized", "invalid subject")
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apiError(c, http.StatusUnauthorized, "unauthorized", "unknown user")
		}
		return apiError(c, http.StatusInternalServerError, "internal", "load user failed")
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
}

// EnsureAdmin creates the bootstrap ADMIN account when it does not exist.
func EnsureAdmin(ctx context.Context, users repository.UserStore, email, password string, cost int) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	_, err := users.Create(ctx, email, password, model.RoleAdmin, cost)
	if errors.Is(err, repository.ErrEmailExists) {
		return nil
	}
	return err
}
