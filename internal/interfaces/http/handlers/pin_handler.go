package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codemint.backend/internal/domain/entities"
	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/domain/repositories"
	"codemint.backend/internal/interfaces/http/response"
)

// PinHandler proxies pinning operations for clients that cannot hold the
// pinning credentials themselves. Successful pins are recorded in the local
// ledger.
type PinHandler struct {
	content repositories.ContentStore
	pins    repositories.PinRecordRepository
}

// NewPinHandler creates a new pin handler
func NewPinHandler(content repositories.ContentStore, pins repositories.PinRecordRepository) *PinHandler {
	return &PinHandler{content: content, pins: pins}
}

// PinFile pins a single uploaded file
// POST /api/v1/ipfs/pin-file
func (h *PinHandler) PinFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Missing file upload"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Unreadable upload"))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Unreadable upload"))
		return
	}

	label := c.PostForm("name")
	if label == "" {
		label = header.Filename
	}
	cid, err := h.content.PinFile(c.Request.Context(), label, repositories.UploadFile{
		Path: header.Filename,
		Data: data,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	h.record(c, cid, label, entities.PinPurposeMetadata)
	response.Success(c, http.StatusOK, gin.H{"cid": cid})
}

// PinDirectory pins the uploaded files as one directory, preserving each
// file's relative path
// POST /api/v1/ipfs/pin-dir
func (h *PinHandler) PinDirectory(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid multipart form"))
		return
	}

	var files []repositories.UploadFile
	for _, header := range form.File["files"] {
		f, err := header.Open()
		if err != nil {
			response.Error(c, domainerrors.BadRequest("Unreadable upload: "+header.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			response.Error(c, domainerrors.BadRequest("Unreadable upload: "+header.Filename))
			return
		}
		files = append(files, repositories.UploadFile{Path: header.Filename, Data: data})
	}

	label := c.PostForm("name")
	if label == "" {
		label = "upload"
	}
	cid, err := h.content.PinDirectory(c.Request.Context(), label, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.record(c, cid, label, entities.PinPurposeCode)
	response.Success(c, http.StatusOK, gin.H{"cid": cid})
}

// Unpin releases a pinned CID
// DELETE /api/v1/ipfs/unpin/:cid
func (h *PinHandler) Unpin(c *gin.Context) {
	cid := c.Param("cid")
	if cid == "" {
		response.Error(c, domainerrors.BadRequest("Missing CID"))
		return
	}

	if err := h.content.Unpin(c.Request.Context(), cid); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.pins.MarkUnpinned(c.Request.Context(), cid); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cid": cid})
}

// ListPins lists pins still held remotely
// GET /api/v1/pins
func (h *PinHandler) ListPins(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	records, total, err := h.pins.ListActive(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"pins": records, "total": total})
}

// record writes the ledger entry for a proxied pin. Identical content pins
// to the same CID; the existing entry is kept then.
func (h *PinHandler) record(c *gin.Context, cid, label string, purpose entities.PinPurpose) {
	if _, err := h.pins.GetByCID(c.Request.Context(), cid); err == nil {
		return
	}
	_ = h.pins.Create(c.Request.Context(), &entities.PinRecord{
		CID:     cid,
		Label:   label,
		Purpose: purpose,
	})
}
