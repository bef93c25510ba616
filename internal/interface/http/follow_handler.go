package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mosamir/blogging-api/internal/application"
	"github.com/mosamir/blogging-api/internal/domain/entity"
	"github.com/mosamir/blogging-api/pkg/response"
)

type FollowHandler struct {
	Svc    *application.FollowService
	Logger *logrus.Logger
}

func NewFollowHandler(svc *application.FollowService, logger *logrus.Logger) *FollowHandler {
	return &FollowHandler{Svc: svc, Logger: logger}
}

func followSummary(u *entity.User) gin.H {
	return gin.H{
		"id":              u.ID,
		"username":        u.Username,
		"display_name":    u.BasicInfo.DisplayName,
		"profile_image":   u.ProfileImage,
		"followers_count": u.FollowersCount,
		"following_count": u.FollowingCount,
	}
}

func followList(users []*entity.User) []gin.H {
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, followSummary(u))
	}
	return out
}

// GetUser serves another user's public profile, including whether the
// requester already follows them.
func (h *FollowHandler) GetUser(c *gin.Context) {
	u, following, err := h.Svc.Profile(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	data := followSummary(u)
	data["is_following"] = following
	response.Success(c, http.StatusOK, data, "user", nil)
}

func (h *FollowHandler) Follow(c *gin.Context) {
	followed, err := h.Svc.Follow(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, followSummary(followed), "now following", nil)
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	if err := h.Svc.Unfollow(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"unfollowed": true}, "unfollowed", nil)
}

func (h *FollowHandler) Followers(c *gin.Context) {
	users, err := h.Svc.Followers(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, followList(users), "followers", map[string]any{"count": len(users)})
}

func (h *FollowHandler) Following(c *gin.Context) {
	users, err := h.Svc.Following(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, followList(users), "following", map[string]any{"count": len(users)})
}

func (h *FollowHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrSelfFollow):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, application.ErrAlreadyFollowing),
		errors.Is(err, application.ErrNotFollowing):
		response.Error[any](c, http.StatusConflict, err.Error(), nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "request failed", nil)
	}
}
