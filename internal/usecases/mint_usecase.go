package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"codemint.backend/internal/domain/entities"
	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/domain/repositories"
)

// MintRequest carries a mint order: who receives the token and which
// argument values customize it. Arguments keep the order they were
// supplied in.
type MintRequest struct {
	ProjectID uint64               `json:"projectId"`
	Recipient string               `json:"recipient"`
	Arguments entities.ArgumentSet `json:"arguments"`
}

// MintUsecase drives the mint workflow: validate the order against the
// live project state, derive and pin the token's metadata, then submit
// mint and wait for confirmation, all inside one transaction flow.
type MintUsecase struct {
	registry   repositories.ProjectRegistry
	content    repositories.ContentStore
	metadata   repositories.MetadataStore
	pins       repositories.PinRecordRepository
	derivation *DerivationUsecase
	flows      *FlowManager
}

// NewMintUsecase creates a new mint usecase
func NewMintUsecase(
	registry repositories.ProjectRegistry,
	content repositories.ContentStore,
	metadata repositories.MetadataStore,
	pins repositories.PinRecordRepository,
	derivation *DerivationUsecase,
	flows *FlowManager,
) *MintUsecase {
	return &MintUsecase{
		registry:   registry,
		content:    content,
		metadata:   metadata,
		pins:       pins,
		derivation: derivation,
		flows:      flows,
	}
}

// Mint validates the order synchronously and, if it passes, starts the
// mint flow. Sold-out, paused and argument checks all happen here, before
// any content is pinned or any transaction is signed.
func (u *MintUsecase) Mint(ctx context.Context, req *MintRequest) (*Flow, error) {
	if req.Recipient == "" {
		return nil, domainerrors.Validation("recipient address is required")
	}

	project, err := u.registry.Project(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.Paused {
		return nil, domainerrors.Validation(project.Name + " is paused")
	}

	tokenIDs, err := u.registry.TokenIDsByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.SoldOut(len(tokenIDs)) {
		return nil, domainerrors.Validation(project.Name + " is sold out")
	}

	params, err := u.metadata.Parameters(ctx, project.ParametersCID)
	if err != nil {
		return nil, err
	}
	if err := u.derivation.ValidateArgs(params, req.Arguments); err != nil {
		return nil, err
	}

	serial := len(tokenIDs) + 1
	flow := u.flows.Start("mint")
	go u.run(flow, req, project, params, serial)
	return flow, nil
}

// run executes the mint flow, detached from the request context so a
// closed page abandons the flow without cancelling the submitted work.
func (u *MintUsecase) run(flow *Flow, req *MintRequest, project *entities.Project, params []entities.Parameter, serial int) {
	ctx := context.Background()

	flow.advance(FlowUploading)
	flow.notifyPending(fmt.Sprintf("Preparing %s #%d", project.Name, serial))

	doc, err := u.derivation.BuildMetadata(project, req.Recipient, params, req.Arguments)
	if err != nil {
		flow.fail(err)
		return
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		flow.fail(err)
		return
	}

	// The metadata document is pinned exactly once per flow; a retry is a
	// new flow with fresh state.
	cid, err := u.content.PinFile(ctx, flow.Kind, repositories.UploadFile{
		Path: "metadata.json",
		Data: docJSON,
	})
	if err != nil {
		flow.fail(err)
		return
	}
	u.recordPin(ctx, flow, cid, doc.Name)

	flow.advance(FlowSubmitting)
	flow.notifyPending(fmt.Sprintf("Minting %s #%d", project.Name, serial))

	price := project.PricePerToken
	if price == nil {
		price = big.NewInt(0)
	}
	txHash, err := u.registry.Mint(ctx, &repositories.MintCall{
		Recipient:   req.Recipient,
		ProjectID:   req.ProjectID,
		MetadataCID: cid,
		ValueSent:   price,
	})
	if err != nil {
		flow.fail(err)
		return
	}
	flow.setTxHash(txHash)

	flow.advance(FlowPendingConfirmation)
	flow.notifyPending("Waiting for confirmation of " + txHash)

	if err := u.registry.WaitConfirmed(ctx, txHash); err != nil {
		flow.fail(err)
		return
	}

	flow.confirm(fmt.Sprintf("%s #%d minted", project.Name, serial), nil)
}

func (u *MintUsecase) recordPin(ctx context.Context, flow *Flow, cid, label string) {
	if _, err := u.pins.GetByCID(ctx, cid); err == nil {
		return
	}
	record := &entities.PinRecord{
		CID:     cid,
		Label:   label,
		Purpose: entities.PinPurposeMetadata,
		FlowID:  flow.ID,
	}
	if err := u.pins.Create(ctx, record); err == nil {
		pinsCreated.WithLabelValues(string(entities.PinPurposeMetadata)).Inc()
	}
}
