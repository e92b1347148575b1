package repositories

import (
	"context"
	"math/big"

	"codemint.backend/internal/domain/entities"
)

// CreateProjectCall carries the full argument list of the registry's
// createProject method. ValueSent must equal Price (the author pays for
// token #1), mirrored client-side before submission.
type CreateProjectCall struct {
	Author                string
	CodeCID               string
	ParametersCID         string
	Name                  string
	Description           string
	License               string
	Price                 *big.Int
	MaxEditions           *big.Int
	FirstTokenMetadataCID string
	ValueSent             *big.Int
}

// MintCall carries the argument list of the registry's mint method.
type MintCall struct {
	Recipient   string
	ProjectID   uint64
	MetadataCID string
	ValueSent   *big.Int
}

// ProjectRegistry is the typed read/write facade over the on-chain
// project/token registry. Reads reject with ErrNotFound past the current
// counts; writes return a transaction hash handle immediately and are
// confirmed separately through WaitConfirmed.
type ProjectRegistry interface {
	ProjectCount(ctx context.Context) (uint64, error)
	Project(ctx context.Context, id uint64) (*entities.Project, error)
	TokenCount(ctx context.Context) (uint64, error)
	TokenIDsByProject(ctx context.Context, projectID uint64) ([]uint64, error)
	OwnerOf(ctx context.Context, tokenID uint64) (string, error)
	TokenMetadataCID(ctx context.Context, tokenID uint64) (string, error)
	ProjectIDOfToken(ctx context.Context, tokenID uint64) (uint64, error)
	BalanceOf(ctx context.Context, owner string) (uint64, error)
	TokenOfOwnerByIndex(ctx context.Context, owner string, index uint64) (uint64, error)

	CreateProject(ctx context.Context, call *CreateProjectCall) (txHash string, err error)
	Mint(ctx context.Context, call *MintCall) (txHash string, err error)
	WaitConfirmed(ctx context.Context, txHash string) error
}
