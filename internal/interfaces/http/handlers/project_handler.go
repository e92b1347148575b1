package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"codemint.backend/internal/domain/entities"
	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/domain/repositories"
	"codemint.backend/internal/interfaces/http/response"
	"codemint.backend/internal/usecases"
)

type GalleryService interface {
	ListProjects(ctx context.Context) ([]entities.ProjectView, error)
	CuratedProjects(ctx context.Context) ([]entities.ProjectView, error)
	GetProject(ctx context.Context, id uint64) (*entities.ProjectView, error)
	ProjectTokens(ctx context.Context, projectID uint64) ([]entities.TokenView, error)
	LatestTokens(ctx context.Context) ([]entities.TokenView, error)
	GetToken(ctx context.Context, tokenID uint64) (*entities.TokenView, error)
	AccountTokens(ctx context.Context, address string) ([]entities.TokenView, error)
}

type AuthoringService interface {
	CreateProject(ctx context.Context, req *usecases.CreateProjectRequest) (*usecases.Flow, error)
}

type MintService interface {
	Mint(ctx context.Context, req *usecases.MintRequest) (*usecases.Flow, error)
}

// ProjectHandler handles project endpoints
type ProjectHandler struct {
	gallery   GalleryService
	authoring AuthoringService
	minting   MintService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(gallery GalleryService, authoring AuthoringService, minting MintService) *ProjectHandler {
	return &ProjectHandler{gallery: gallery, authoring: authoring, minting: minting}
}

// ListProjects lists all published projects, newest first
// GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	views, err := h.gallery.ListProjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"projects": views})
}

// CuratedProjects lists the curated subset
// GET /api/v1/projects/curated
func (h *ProjectHandler) CuratedProjects(c *gin.Context) {
	views, err := h.gallery.CuratedProjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"projects": views})
}

// GetProject gets one project with its parameter schema
// GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid project ID"))
		return
	}

	view, err := h.gallery.GetProject(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"project": view})
}

// ProjectTokens lists a project's tokens, newest first
// GET /api/v1/projects/:id/tokens
func (h *ProjectHandler) ProjectTokens(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid project ID"))
		return
	}

	views, err := h.gallery.ProjectTokens(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tokens": views})
}

// CreateProject starts a publish flow from a multipart form: project fields
// plus the code bundle files
// POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid multipart form"))
		return
	}

	req := &usecases.CreateProjectRequest{
		Author:      formValue(form.Value, "author"),
		Name:        formValue(form.Value, "name"),
		Description: formValue(form.Value, "description"),
		License:     formValue(form.Value, "license"),
		PriceWei:    formValue(form.Value, "pricePerTokenInWei"),
		MaxEditions: formValue(form.Value, "maxNumEditions"),
	}
	if raw := formValue(form.Value, "parameters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Parameters); err != nil {
			response.Error(c, domainerrors.BadRequest("Invalid parameters document"))
			return
		}
	}
	if raw := formValue(form.Value, "supersedes"); raw != "" {
		for _, cid := range strings.Split(raw, ",") {
			if cid = strings.TrimSpace(cid); cid != "" {
				req.Supersedes = append(req.Supersedes, cid)
			}
		}
	}

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
		req.CodeFiles = append(req.CodeFiles, repositories.UploadFile{
			Path: header.Filename,
			Data: data,
		})
	}

	flow, err := h.authoring.CreateProject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"flow": flowView(flow)})
}

// Mint starts a mint flow for a project
// POST /api/v1/projects/:id/mint
func (h *ProjectHandler) Mint(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid project ID"))
		return
	}

	var req usecases.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	req.ProjectID = id

	flow, err := h.minting.Mint(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"flow": flowView(flow)})
}

func parseID(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}

func formValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
