package usecases

import (
	"context"

	"golang.org/x/sync/errgroup"

	"codemint.backend/internal/config"
	"codemint.backend/internal/domain/entities"
	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/domain/repositories"
	"codemint.backend/pkg/utils"
)

// GalleryUsecase serves the read side: project listings, token collection
// views and per-account holdings. Every view is assembled fresh from the
// registry; a view either renders complete or not at all, so one failed
// item fetch fails the whole page.
type GalleryUsecase struct {
	registry    repositories.ProjectRegistry
	metadata    repositories.MetadataStore
	registryCfg config.RegistryConfig
	viewCfg     config.ViewConfig
}

// NewGalleryUsecase creates a new gallery usecase
func NewGalleryUsecase(
	registry repositories.ProjectRegistry,
	metadata repositories.MetadataStore,
	registryCfg config.RegistryConfig,
	viewCfg config.ViewConfig,
) *GalleryUsecase {
	return &GalleryUsecase{
		registry:    registry,
		metadata:    metadata,
		registryCfg: registryCfg,
		viewCfg:     viewCfg,
	}
}

// ListProjects returns published projects, newest first, bounded by the
// view page cap.
func (u *GalleryUsecase) ListProjects(ctx context.Context) ([]entities.ProjectView, error) {
	count, err := u.registry.ProjectCount(ctx)
	if err != nil {
		return nil, err
	}
	window := utils.ComputeWindow(count, u.viewCfg.PageCap)

	views := make([]entities.ProjectView, window.Size)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency())
	for i, id := range window.IDs() {
		i, id := i, id
		g.Go(func() error {
			view, err := u.projectView(gctx, id, false)
			if err != nil {
				return err
			}
			views[i] = *view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	utils.Reverse(views)
	return views, nil
}

// CuratedProjects returns the configured curated subset, in the configured
// order. Curated ids pointing past the registry are skipped rather than
// failing the page, since curation is static config over a growing chain.
func (u *GalleryUsecase) CuratedProjects(ctx context.Context) ([]entities.ProjectView, error) {
	count, err := u.registry.ProjectCount(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]entities.ProjectView, 0, len(u.viewCfg.CuratedProjectIDs))
	for _, id := range u.viewCfg.CuratedProjectIDs {
		if id >= count {
			continue
		}
		view, err := u.projectView(ctx, id, false)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// GetProject returns one project with its parameter schema and mint
// affordances (next serial, sold-out state via the view's counts).
func (u *GalleryUsecase) GetProject(ctx context.Context, id uint64) (*entities.ProjectView, error) {
	return u.projectView(ctx, id, true)
}

// LatestTokens returns the most recently minted tokens across all projects,
// newest first, bounded by the view page cap.
func (u *GalleryUsecase) LatestTokens(ctx context.Context) ([]entities.TokenView, error) {
	total, err := u.registry.TokenCount(ctx)
	if err != nil {
		return nil, err
	}
	window := utils.ComputeWindow(total, u.viewCfg.PageCap)
	return u.tokenViews(ctx, window.IDs())
}

// ProjectTokens returns a project's tokens, newest first, bounded by the
// view page cap.
func (u *GalleryUsecase) ProjectTokens(ctx context.Context, projectID uint64) ([]entities.TokenView, error) {
	if _, err := u.registry.Project(ctx, projectID); err != nil {
		return nil, err
	}
	ids, err := u.registry.TokenIDsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	window := utils.ComputeWindow(uint64(len(ids)), u.viewCfg.PageCap)
	return u.tokenViews(ctx, ids[window.Offset:uint64(window.Size)+window.Offset])
}

// GetToken returns one token joined with its metadata document, its serial
// within its project and an explorer link.
func (u *GalleryUsecase) GetToken(ctx context.Context, tokenID uint64) (*entities.TokenView, error) {
	total, err := u.registry.TokenCount(ctx)
	if err != nil {
		return nil, err
	}
	if tokenID >= total {
		return nil, domainerrors.NotFound("token not found")
	}

	view, err := u.tokenView(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	projectView, err := u.projectView(ctx, view.ProjectID, false)
	if err != nil {
		return nil, err
	}
	view.Project = projectView
	view.ExplorerURL = u.registryCfg.ExplorerTokenURL(tokenID)
	return view, nil
}

// AccountTokens returns the tokens held by an address, newest first,
// bounded by the view page cap.
func (u *GalleryUsecase) AccountTokens(ctx context.Context, address string) ([]entities.TokenView, error) {
	balance, err := u.registry.BalanceOf(ctx, address)
	if err != nil {
		return nil, err
	}
	window := utils.ComputeWindow(balance, u.viewCfg.PageCap)

	ids := make([]uint64, window.Size)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency())
	for i := 0; i < window.Size; i++ {
		i := i
		g.Go(func() error {
			id, err := u.registry.TokenOfOwnerByIndex(gctx, address, window.Offset+uint64(i))
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return u.tokenViews(ctx, ids)
}

// tokenViews assembles the views for ids concurrently and reverses index
// order into recency order. Any failed item fails the whole set.
func (u *GalleryUsecase) tokenViews(ctx context.Context, ids []uint64) ([]entities.TokenView, error) {
	views := make([]entities.TokenView, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency())
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			view, err := u.tokenView(gctx, id)
			if err != nil {
				return err
			}
			views[i] = *view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	utils.Reverse(views)
	return views, nil
}

// tokenView joins one token's on-chain fields with its metadata document.
func (u *GalleryUsecase) tokenView(ctx context.Context, tokenID uint64) (*entities.TokenView, error) {
	owner, err := u.registry.OwnerOf(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	cid, err := u.registry.TokenMetadataCID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	projectID, err := u.registry.ProjectIDOfToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	serial, err := u.tokenSerial(ctx, projectID, tokenID)
	if err != nil {
		return nil, err
	}
	doc, err := u.metadata.TokenMetadata(ctx, cid)
	if err != nil {
		return nil, err
	}

	return &entities.TokenView{
		Token: entities.Token{
			ID:          tokenID,
			Owner:       owner,
			MetadataCID: cid,
			ProjectID:   projectID,
			Serial:      serial,
		},
		Name:         doc.Name,
		Description:  doc.Description,
		AnimationURL: doc.AnimationURL,
		Attributes:   doc.Attributes,
	}, nil
}

// tokenSerial is the 1-based rank of tokenID in its project's token list.
func (u *GalleryUsecase) tokenSerial(ctx context.Context, projectID, tokenID uint64) (int, error) {
	ids, err := u.registry.TokenIDsByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if id == tokenID {
			return i + 1, nil
		}
	}
	return 0, domainerrors.NotFound("token not listed in its project")
}

// projectView assembles one project view. The preview URL comes from the
// project's latest token; the parameter schema document is fetched only for
// detail views.
func (u *GalleryUsecase) projectView(ctx context.Context, id uint64, withSchema bool) (*entities.ProjectView, error) {
	project, err := u.registry.Project(ctx, id)
	if err != nil {
		return nil, err
	}
	tokenIDs, err := u.registry.TokenIDsByProject(ctx, id)
	if err != nil {
		return nil, err
	}

	view := entities.NewProjectView(project, len(tokenIDs))

	if len(tokenIDs) > 0 {
		cid, err := u.registry.TokenMetadataCID(ctx, tokenIDs[len(tokenIDs)-1])
		if err != nil {
			return nil, err
		}
		doc, err := u.metadata.TokenMetadata(ctx, cid)
		if err != nil {
			return nil, err
		}
		view.PreviewURL = doc.AnimationURL
	}

	if withSchema {
		params, err := u.metadata.Parameters(ctx, project.ParametersCID)
		if err != nil {
			return nil, err
		}
		view.Parameters = params
	}
	return &view, nil
}

func (u *GalleryUsecase) concurrency() int {
	if u.viewCfg.FetchConcurrency > 0 {
		return u.viewCfg.FetchConcurrency
	}
	return 8
}
