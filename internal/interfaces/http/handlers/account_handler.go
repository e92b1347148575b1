package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/interfaces/http/response"
)

// AccountHandler handles per-address holdings endpoints
type AccountHandler struct {
	gallery GalleryService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(gallery GalleryService) *AccountHandler {
	return &AccountHandler{gallery: gallery}
}

// AccountTokens lists the tokens held by an address, newest first
// GET /api/v1/accounts/:address/tokens
func (h *AccountHandler) AccountTokens(c *gin.Context) {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		response.Error(c, domainerrors.BadRequest("Invalid account address"))
		return
	}

	views, err := h.gallery.AccountTokens(c.Request.Context(), address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tokens": views})
}
