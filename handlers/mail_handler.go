package handlers

import (
	"net/http"
	"strconv"

	"fridge-backend/service"

	"github.com/gin-gonic/gin"
)

// MailHandler handles HTTP requests for circle mail
type MailHandler struct {
	mailService *service.MailService
	files       *FileHandler
}

// NewMailHandler creates a new mail handler
func NewMailHandler(mailService *service.MailService, files *FileHandler) *MailHandler {
	return &MailHandler{mailService: mailService, files: files}
}

// ListMail handles GET /api/mail
func (h *MailHandler) ListMail(c *gin.Context) {
	items, err := h.mailService.ListMail(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.files.withMediaURL(items...)
	c.JSON(http.StatusOK, items)
}

// SendMail handles POST /api/mail (multipart: circleId, subject, content,
// optional file)
func (h *MailHandler) SendMail(c *gin.Context) {
	stored, ok := h.files.receive(c, "file")
	if !ok {
		return
	}

	var circleID int64
	if raw := c.PostForm("circleId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.files.discard(c, stored)
			errorJSON(c, http.StatusBadRequest, "INVALID_ID", "Invalid circleId")
			return
		}
		circleID = id
	}

	req := service.SendMailRequest{
		UserID:   currentUser(c),
		CircleID: circleID,
		Subject:  optionalForm(c, "subject"),
		Content:  optionalForm(c, "content"),
	}
	if stored != nil {
		req.MediaPath = &stored.Ref
		req.MediaType = &stored.FileType
	}

	item, err := h.mailService.SendMail(c.Request.Context(), req)
	if err != nil {
		h.files.discard(c, stored)
		respondError(c, err)
		return
	}
	h.files.withMediaURL(item)
	c.JSON(http.StatusOK, item)
}

func optionalForm(c *gin.Context, name string) *string {
	v, ok := c.GetPostForm(name)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// ConvertMail handles POST /api/mail/:id/convert
func (h *MailHandler) ConvertMail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	result, err := h.mailService.ConvertMailToMagnet(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	result.URL = h.files.urlFor(result.FilePath)
	c.JSON(http.StatusOK, result)
}
