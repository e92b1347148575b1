package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/zap"

	"codemint.backend/internal/domain/entities"
	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/domain/repositories"
	"codemint.backend/pkg/logger"
)

// CreateProjectRequest carries everything needed to publish a project. The
// price is in the chain's smallest unit; an empty or zero MaxEditions means
// an unlimited edition run.
type CreateProjectRequest struct {
	Author      string               `json:"author"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	License     string               `json:"license"`
	PriceWei    string               `json:"pricePerTokenInWei"`
	MaxEditions string               `json:"maxNumEditions"`
	Parameters  []entities.Parameter `json:"parameters"`

	// Supersedes lists CIDs of a previous draft to release once this
	// publish confirms.
	Supersedes []string `json:"supersedes,omitempty"`

	CodeFiles []repositories.UploadFile `json:"-"`
}

// AuthoringUsecase drives the project publishing workflow: pin the code
// bundle, pin the parameter schema, derive and pin token #1's metadata,
// then submit createProject and wait for confirmation. All of it runs
// inside one transaction flow.
type AuthoringUsecase struct {
	registry   repositories.ProjectRegistry
	content    repositories.ContentStore
	pins       repositories.PinRecordRepository
	derivation *DerivationUsecase
	flows      *FlowManager
	compensate bool
}

// NewAuthoringUsecase creates a new authoring usecase. compensate controls
// whether pins created by a failed flow are released again.
func NewAuthoringUsecase(
	registry repositories.ProjectRegistry,
	content repositories.ContentStore,
	pins repositories.PinRecordRepository,
	derivation *DerivationUsecase,
	flows *FlowManager,
	compensate bool,
) *AuthoringUsecase {
	return &AuthoringUsecase{
		registry:   registry,
		content:    content,
		pins:       pins,
		derivation: derivation,
		flows:      flows,
		compensate: compensate,
	}
}

// CreateProject validates the request synchronously and, if it passes,
// starts the publish flow. Validation rejects before any byte is uploaded
// or any transaction is signed.
func (u *AuthoringUsecase) CreateProject(ctx context.Context, req *CreateProjectRequest) (*Flow, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domainerrors.Validation("project name is required")
	}
	if req.Author == "" {
		return nil, domainerrors.Validation("author address is required")
	}
	if len(req.CodeFiles) == 0 {
		return nil, domainerrors.EmptyUpload("code bundle is required")
	}

	price, ok := new(big.Int).SetString(defaultString(req.PriceWei, "0"), 10)
	if !ok || price.Sign() < 0 {
		return nil, domainerrors.Validation("invalid price: " + req.PriceWei)
	}
	maxEditions, err := parseMaxEditions(req.MaxEditions)
	if err != nil {
		return nil, err
	}

	// Token #1 is derived from the schema defaults, so the schema must be
	// self-consistent before anything is pinned.
	defaults := entities.DefaultArguments(req.Parameters)
	if err := u.derivation.ValidateArgs(req.Parameters, defaults); err != nil {
		return nil, err
	}

	flow := u.flows.Start("create_project")
	go u.run(flow, req, price, maxEditions, defaults)
	return flow, nil
}

// run executes the publish flow. It deliberately detaches from the request
// context: an author closing the page abandons the flow but does not cancel
// the work already paid for.
func (u *AuthoringUsecase) run(flow *Flow, req *CreateProjectRequest, price, maxEditions *big.Int, defaults entities.ArgumentSet) {
	ctx := context.Background()

	flow.advance(FlowUploading)
	flow.notifyPending("Uploading " + req.Name + " to the content store")

	codeCID, err := u.pinDirectory(ctx, flow, entities.PinPurposeCode, req.Name, req.CodeFiles)
	if err != nil {
		u.failAndCompensate(ctx, flow, err)
		return
	}

	schemaJSON, err := json.Marshal(req.Parameters)
	if err != nil {
		u.failAndCompensate(ctx, flow, err)
		return
	}
	schemaCID, err := u.pinFile(ctx, flow, entities.PinPurposeSchema, req.Name+" parameters", repositories.UploadFile{
		Path: "parameters.json",
		Data: schemaJSON,
	})
	if err != nil {
		u.failAndCompensate(ctx, flow, err)
		return
	}

	// The author mints token #1 as part of publishing, so its metadata is
	// derived here from the schema defaults.
	project := &entities.Project{
		Name:        req.Name,
		Description: req.Description,
		CodeCID:     codeCID,
	}
	doc, err := u.derivation.BuildMetadata(project, req.Author, req.Parameters, defaults)
	if err != nil {
		u.failAndCompensate(ctx, flow, err)
		return
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		u.failAndCompensate(ctx, flow, err)
		return
	}
	tokenCID, err := u.pinFile(ctx, flow, entities.PinPurposeMetadata, fmt.Sprintf("%s #1", req.Name), repositories.UploadFile{
		Path: "metadata.json",
		Data: docJSON,
	})
	if err != nil {
		u.failAndCompensate(ctx, flow, err)
		return
	}

	flow.advance(FlowSubmitting)
	flow.notifyPending("Publishing " + req.Name + " on chain")

	txHash, err := u.registry.CreateProject(ctx, &repositories.CreateProjectCall{
		Author:                req.Author,
		CodeCID:               codeCID,
		ParametersCID:         schemaCID,
		Name:                  req.Name,
		Description:           req.Description,
		License:               req.License,
		Price:                 price,
		MaxEditions:           maxEditions,
		FirstTokenMetadataCID: tokenCID,
		ValueSent:             price,
	})
	if err != nil {
		u.failAndCompensate(ctx, flow, err)
		return
	}
	flow.setTxHash(txHash)

	flow.advance(FlowPendingConfirmation)
	flow.notifyPending("Waiting for confirmation of " + txHash)

	if err := u.registry.WaitConfirmed(ctx, txHash); err != nil {
		u.failAndCompensate(ctx, flow, err)
		return
	}

	flow.confirm(req.Name+" published", func() {
		u.releaseSuperseded(ctx, req.Supersedes)
	})
}

// releaseSuperseded unpins a replaced draft's content after the new publish
// confirmed. Failures here are logged, never surfaced: the publish itself
// succeeded.
func (u *AuthoringUsecase) releaseSuperseded(ctx context.Context, cids []string) {
	for _, cid := range cids {
		if err := u.content.Unpin(ctx, cid); err != nil {
			logger.Warn(ctx, "failed to release superseded pin", zap.String("cid", cid), zap.Error(err))
			continue
		}
		if err := u.pins.MarkUnpinned(ctx, cid); err != nil {
			logger.Warn(ctx, "failed to record superseded unpin", zap.String("cid", cid), zap.Error(err))
		}
	}
}

// failAndCompensate settles the flow as failed and, when configured,
// releases the pins it created. Without compensation the pins stay: a
// dangling pin costs storage, a premature unpin breaks a token.
func (u *AuthoringUsecase) failAndCompensate(ctx context.Context, flow *Flow, err error) {
	flow.fail(err)
	if !u.compensate {
		return
	}
	records, lerr := u.pins.GetByFlowID(ctx, flow.ID)
	if lerr != nil {
		logger.Warn(ctx, "failed to load flow pins for compensation", zap.Error(lerr))
		return
	}
	for _, record := range records {
		if !record.Active() {
			continue
		}
		if uerr := u.content.Unpin(ctx, record.CID); uerr != nil {
			logger.Warn(ctx, "compensation unpin failed", zap.String("cid", record.CID), zap.Error(uerr))
			continue
		}
		if merr := u.pins.MarkUnpinned(ctx, record.CID); merr != nil {
			logger.Warn(ctx, "failed to record compensation unpin", zap.String("cid", record.CID), zap.Error(merr))
		}
	}
}

func (u *AuthoringUsecase) pinDirectory(ctx context.Context, flow *Flow, purpose entities.PinPurpose, label string, files []repositories.UploadFile) (string, error) {
	cid, err := u.content.PinDirectory(ctx, label, files)
	if err != nil {
		return "", err
	}
	u.recordPin(ctx, flow, purpose, label, cid)
	return cid, nil
}

func (u *AuthoringUsecase) pinFile(ctx context.Context, flow *Flow, purpose entities.PinPurpose, label string, file repositories.UploadFile) (string, error) {
	cid, err := u.content.PinFile(ctx, label, file)
	if err != nil {
		return "", err
	}
	u.recordPin(ctx, flow, purpose, label, cid)
	return cid, nil
}

// recordPin writes the ledger entry for a fresh pin. Re-pinning identical
// content yields the same CID; the existing entry is reused then.
func (u *AuthoringUsecase) recordPin(ctx context.Context, flow *Flow, purpose entities.PinPurpose, label, cid string) {
	if _, err := u.pins.GetByCID(ctx, cid); err == nil {
		return
	}
	record := &entities.PinRecord{
		CID:     cid,
		Label:   label,
		Purpose: purpose,
		FlowID:  flow.ID,
	}
	if err := u.pins.Create(ctx, record); err != nil {
		logger.Warn(ctx, "failed to record pin", zap.String("cid", cid), zap.Error(err))
		return
	}
	pinsCreated.WithLabelValues(string(purpose)).Inc()
}

// parseMaxEditions maps the user-facing edition cap to the registry's
// representation: empty or zero means the unlimited sentinel.
func parseMaxEditions(raw string) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return new(big.Int).Set(entities.UnlimitedEditions), nil
	}
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok || n.Sign() < 0 {
		return nil, domainerrors.Validation("invalid max editions: " + raw)
	}
	return n, nil
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
