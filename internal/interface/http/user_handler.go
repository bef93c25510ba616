package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mosamir/blogging-api/internal/application"
	"github.com/mosamir/blogging-api/internal/domain/entity"
	"github.com/mosamir/blogging-api/pkg/helpers"
	"github.com/mosamir/blogging-api/pkg/response"
	"github.com/mosamir/blogging-api/pkg/validation"
)

type UserHandler struct {
	Svc     *application.UserService
	JWT     *helpers.JWTManager
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *application.UserService, jwt *helpers.JWTManager, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, JWT: jwt, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,uname"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
}

type updateUsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

type updateEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":              u.ID,
		"username":        u.Username,
		"email":           u.Email,
		"email_verified":  u.EmailVerified,
		"display_name":    u.BasicInfo.DisplayName,
		"bio":             u.BasicInfo.Bio,
		"location":        u.BasicInfo.Location,
		"profile_image":   u.ProfileImage,
		"followers_count": u.FollowersCount,
		"following_count": u.FollowingCount,
		"created_at":      u.CreatedAt,
		"updated_at":      u.UpdatedAt,
	}
}

// Register creates the account and kicks off email verification. Field
// validation failures come back as the aggregated message list.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var verr *entity.ValidationError
		switch {
		case errors.As(err, &verr):
			response.Error[any](c, http.StatusBadRequest, "user creation failed", verr.Messages)
		case errors.Is(err, application.ErrUsernameTaken), errors.Is(err, application.ErrEmailTaken):
			response.Error[any](c, http.StatusConflict, err.Error(), nil)
		default:
			response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		}
		return
	}
	response.Success(c, http.StatusCreated, userJSON(u), "user created; verification email sent", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, pair, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, res, "login successful", map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetString("userID"))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString("userID")
	u, roles, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	data := userJSON(u)
	data["roles"] = roles
	response.Success(c, http.StatusOK, data, "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString("userID")
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateBasicInfo(c.Request.Context(), uid, entity.BasicInfo{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
	})
	if err != nil {
		h.writeUpdateError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "profile updated", nil)
}

func (h *UserHandler) UpdateUsername(c *gin.Context) {
	uid := c.GetString("userID")
	var req updateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateUsername(c.Request.Context(), uid, req.Username)
	if err != nil {
		h.writeUpdateError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "username updated", nil)
}

// UpdateEmail changes the address and re-triggers verification for it.
func (h *UserHandler) UpdateEmail(c *gin.Context) {
	uid := c.GetString("userID")
	var req updateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateEmail(c.Request.Context(), uid, req.Email)
	if err != nil {
		h.writeUpdateError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "email updated; verification email sent", nil)
}

// UploadAvatar accepts a multipart file and stores it in GCS.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid := c.GetString("userID")
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), uid, file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("user_id", uid).Warn("avatar upload failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "avatar upload failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile_image": url}, "avatar uploaded", nil)
}

// DeleteAccount removes the authenticated user's account and all follow
// edges referencing it.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	uid := c.GetString("userID")
	deleted, err := h.Svc.Delete(c.Request.Context(), uid)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "delete failed", nil)
		return
	}
	if !deleted {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "account deleted", nil)
}

func (h *UserHandler) writeUpdateError(c *gin.Context, err error) {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, "validation failed", verr.Messages)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, application.ErrUsernameTaken), errors.Is(err, application.ErrEmailTaken):
		response.Error[any](c, http.StatusConflict, err.Error(), nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "update failed", nil)
	}
}
