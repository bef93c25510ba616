package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mosamir/blogging-api/internal/application"
	"github.com/mosamir/blogging-api/internal/domain/entity"
	"github.com/mosamir/blogging-api/pkg/response"
	"github.com/mosamir/blogging-api/pkg/validation"
)

type PostHandler struct {
	Svc    *application.PostService
	Logger *logrus.Logger
}

func NewPostHandler(svc *application.PostService, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Svc: svc, Logger: logger}
}

type createPostRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	ImageURL string `json:"image_url"`
}

type updatePostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

type likeRequest struct {
	InteractionType string `json:"interaction_type"`
}

type createTagRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.CreatePost(c.Request.Context(), c.GetString("userID"), req.Title, req.Content, req.ImageURL)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "post created", nil)
}

func (h *PostHandler) Get(c *gin.Context) {
	detail, err := h.Svc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail, "post", nil)
}

func (h *PostHandler) ListByUser(c *gin.Context) {
	posts, err := h.Svc.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "posts", map[string]any{"count": len(posts)})
}

func (h *PostHandler) Update(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.UpdatePost(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.Title, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "post updated", nil)
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeletePost(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "post deleted", nil)
}

func (h *PostHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	comment, err := h.Svc.AddComment(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, comment, "comment added", nil)
}

func (h *PostHandler) UpdateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	comment, err := h.Svc.UpdateComment(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("commentId"), req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, comment, "comment updated", nil)
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	if err := h.Svc.DeleteComment(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("commentId")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "comment deleted", nil)
}

func (h *PostHandler) ListComments(c *gin.Context) {
	comments, err := h.Svc.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, comments, "comments", map[string]any{"count": len(comments)})
}

func (h *PostHandler) AddLike(c *gin.Context) {
	var req likeRequest
	// body is optional, the interaction type defaults to "like"
	_ = c.ShouldBindJSON(&req)
	like, err := h.Svc.AddLike(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.InteractionType)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, like, "like added", nil)
}

func (h *PostHandler) RemoveLike(c *gin.Context) {
	if err := h.Svc.RemoveLike(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "like removed", nil)
}

func (h *PostHandler) ListLikes(c *gin.Context) {
	likes, err := h.Svc.ListLikes(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, likes, "likes", map[string]any{"count": len(likes)})
}

func (h *PostHandler) CreateTag(c *gin.Context) {
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	tag, err := h.Svc.CreateTag(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, tag, "tag created", nil)
}

func (h *PostHandler) GetTag(c *gin.Context) {
	tag, err := h.Svc.GetTagByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tag, "tag", nil)
}

func (h *PostHandler) AttachTag(c *gin.Context) {
	if err := h.Svc.AttachTag(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("tagId")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"attached": true}, "tag attached", nil)
}

func (h *PostHandler) DetachTag(c *gin.Context) {
	if err := h.Svc.DetachTag(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("tagId")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"detached": true}, "tag detached", nil)
}

// Search queries the Elasticsearch posts index.
func (h *PostHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "query parameter q required", nil)
		return
	}
	size := 20
	if s := c.Query("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			size = n
		}
	}
	hits, err := h.Svc.SearchPosts(c.Request.Context(), q, size)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("post search failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

func (h *PostHandler) writeError(c *gin.Context, err error) {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, "validation failed", verr.Messages)
	case errors.Is(err, application.ErrPostNotFound),
		errors.Is(err, application.ErrCommentNotFound),
		errors.Is(err, application.ErrTagNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, application.ErrNotAuthor):
		response.Error[any](c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, application.ErrAlreadyLiked),
		errors.Is(err, application.ErrNotLiked),
		errors.Is(err, application.ErrTagTaken):
		response.Error[any](c, http.StatusConflict, err.Error(), nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "request failed", nil)
	}
}
