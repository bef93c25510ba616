package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mosamir/blogging-api/pkg/helpers"
	"github.com/mosamir/blogging-api/pkg/mailer"
	"github.com/mosamir/blogging-api/pkg/response"
	"github.com/mosamir/blogging-api/pkg/validation"
)

// EmailHandler exposes a raw send endpoint for operators. It is mounted
// behind auth and enqueues straight onto the mail queue.
type EmailHandler struct {
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
}

func NewEmailHandler(pub *helpers.RabbitPublisher, logger *logrus.Logger) *EmailHandler {
	return &EmailHandler{Pub: pub, Logger: logger}
}

type sendEmailRequest struct {
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

func (h *EmailHandler) Send(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if req.Text == "" && req.HTML == "" {
		response.Error[any](c, http.StatusBadRequest, "text or html body required", nil)
		return
	}
	if h.Pub == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "mail queue unavailable", nil)
		return
	}
	job := mailer.EmailJob{To: req.To, Subject: req.Subject, Text: req.Text, HTML: req.HTML}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("to", req.To).Error("email enqueue failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "enqueue failed", nil)
		return
	}
	response.Success[any](c, http.StatusAccepted, map[string]any{"queued": true}, "email queued", nil)
}
