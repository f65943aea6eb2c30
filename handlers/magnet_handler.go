package handlers

import (
	"net/http"
	"strconv"

	"fridge-backend/service"

	"github.com/gin-gonic/gin"
)

// MagnetHandler handles HTTP requests for magnets
type MagnetHandler struct {
	magnetService *service.MagnetService
	files         *FileHandler
}

// NewMagnetHandler creates a new magnet handler
func NewMagnetHandler(magnetService *service.MagnetService, files *FileHandler) *MagnetHandler {
	return &MagnetHandler{magnetService: magnetService, files: files}
}

// ListMagnets handles GET /api/magnets
func (h *MagnetHandler) ListMagnets(c *gin.Context) {
	magnets, err := h.magnetService.ListMagnets(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	for _, m := range magnets {
		m.URL = h.files.urlFor(m.FilePath)
	}
	c.JSON(http.StatusOK, magnets)
}

// magnetResponse is the create response: the stored magnet plus the total.
type magnetResponse struct {
	ID           int64   `json:"id"`
	FilePath     string  `json:"filePath"`
	FileType     string  `json:"fileType"`
	Caption      *string `json:"caption"`
	PositionX    float64 `json:"positionX"`
	PositionY    float64 `json:"positionY"`
	Rotation     float64 `json:"rotation"`
	URL          string  `json:"url"`
	TotalMagnets int     `json:"totalMagnets"`
}

// CreateMagnet handles POST /api/magnets (multipart: file, caption,
// positionX, positionY, rotation)
func (h *MagnetHandler) CreateMagnet(c *gin.Context) {
	stored, ok := h.files.receive(c, "file")
	if !ok {
		return
	}
	if stored == nil {
		errorJSON(c, http.StatusBadRequest, service.CodeMissingFile, "No file uploaded")
		return
	}

	req := service.CreateMagnetRequest{
		UserID:       currentUser(c),
		FilePath:     stored.Ref,
		FileType:     stored.FileType,
		OriginalName: stored.OriginalName,
	}
	if caption := c.PostForm("caption"); caption != "" {
		req.Caption = &caption
	}

	var err error
	if req.PositionX, err = formFloat(c, "positionX"); err == nil {
		if req.PositionY, err = formFloat(c, "positionY"); err == nil {
			req.Rotation, err = formFloat(c, "rotation")
		}
	}
	if err != nil {
		h.files.discard(c, stored)
		errorJSON(c, http.StatusBadRequest, service.CodeInvalidPosition, "positionX, positionY and rotation must be numbers")
		return
	}

	result, err := h.magnetService.CreateMagnet(c.Request.Context(), req)
	if err != nil {
		h.files.discard(c, stored)
		respondError(c, err)
		return
	}

	m := result.Magnet
	c.JSON(http.StatusOK, magnetResponse{
		ID:           m.ID,
		FilePath:     m.FilePath,
		FileType:     string(m.FileType),
		Caption:      m.Caption,
		PositionX:    m.PositionX,
		PositionY:    m.PositionY,
		Rotation:     m.Rotation,
		URL:          h.files.urlFor(m.FilePath),
		TotalMagnets: result.TotalMagnets,
	})
}

// formFloat reads an optional numeric form field.
func formFloat(c *gin.Context, name string) (*float64, error) {
	raw := c.PostForm(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateMagnetRequest represents the request body for moving a magnet
type UpdateMagnetRequest struct {
	PositionX *float64 `json:"positionX" binding:"required"`
	PositionY *float64 `json:"positionY" binding:"required"`
	Rotation  *float64 `json:"rotation" binding:"required"`
	Caption   *string  `json:"caption"`
}

// UpdateMagnet handles PUT /api/magnets/:id
func (h *MagnetHandler) UpdateMagnet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var body UpdateMagnetRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindFailed(c, err, "positionX, positionY and rotation are required")
		return
	}

	result, err := h.magnetService.UpdateMagnetPosition(c.Request.Context(), service.UpdateMagnetRequest{
		UserID:    currentUser(c),
		MagnetID:  id,
		PositionX: *body.PositionX,
		PositionY: *body.PositionY,
		Rotation:  *body.Rotation,
		Caption:   body.Caption,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteMagnet handles DELETE /api/magnets/:id
func (h *MagnetHandler) DeleteMagnet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	result, err := h.magnetService.DeleteMagnet(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
