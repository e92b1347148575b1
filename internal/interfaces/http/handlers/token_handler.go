package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/interfaces/http/response"
)

// TokenHandler handles token collection endpoints
type TokenHandler struct {
	gallery GalleryService
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(gallery GalleryService) *TokenHandler {
	return &TokenHandler{gallery: gallery}
}

// LatestTokens lists the most recently minted tokens across all projects
// GET /api/v1/tokens
func (h *TokenHandler) LatestTokens(c *gin.Context) {
	views, err := h.gallery.LatestTokens(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tokens": views})
}

// GetToken gets one token with its metadata and project
// GET /api/v1/tokens/:id
func (h *TokenHandler) GetToken(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid token ID"))
		return
	}

	view, err := h.gallery.GetToken(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": view})
}
