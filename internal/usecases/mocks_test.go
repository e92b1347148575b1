package usecases_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"codemint.backend/internal/domain/entities"
	"codemint.backend/internal/domain/repositories"
)

// Mock ProjectRegistry
type MockProjectRegistry struct {
	mock.Mock
}

func (m *MockProjectRegistry) ProjectCount(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockProjectRegistry) Project(ctx context.Context, id uint64) (*entities.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Project), args.Error(1)
}

func (m *MockProjectRegistry) TokenCount(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockProjectRegistry) TokenIDsByProject(ctx context.Context, projectID uint64) ([]uint64, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

func (m *MockProjectRegistry) OwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	args := m.Called(ctx, tokenID)
	return args.String(0), args.Error(1)
}

func (m *MockProjectRegistry) TokenMetadataCID(ctx context.Context, tokenID uint64) (string, error) {
	args := m.Called(ctx, tokenID)
	return args.String(0), args.Error(1)
}

func (m *MockProjectRegistry) ProjectIDOfToken(ctx context.Context, tokenID uint64) (uint64, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockProjectRegistry) BalanceOf(ctx context.Context, owner string) (uint64, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockProjectRegistry) TokenOfOwnerByIndex(ctx context.Context, owner string, index uint64) (uint64, error) {
	args := m.Called(ctx, owner, index)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockProjectRegistry) CreateProject(ctx context.Context, call *repositories.CreateProjectCall) (string, error) {
	args := m.Called(ctx, call)
	return args.String(0), args.Error(1)
}

func (m *MockProjectRegistry) Mint(ctx context.Context, call *repositories.MintCall) (string, error) {
	args := m.Called(ctx, call)
	return args.String(0), args.Error(1)
}

func (m *MockProjectRegistry) WaitConfirmed(ctx context.Context, txHash string) error {
	args := m.Called(ctx, txHash)
	return args.Error(0)
}

// Mock ContentStore
type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) PinFile(ctx context.Context, label string, file repositories.UploadFile) (string, error) {
	args := m.Called(ctx, label, file)
	return args.String(0), args.Error(1)
}

func (m *MockContentStore) PinDirectory(ctx context.Context, label string, files []repositories.UploadFile) (string, error) {
	args := m.Called(ctx, label, files)
	return args.String(0), args.Error(1)
}

func (m *MockContentStore) Unpin(ctx context.Context, cid string) error {
	args := m.Called(ctx, cid)
	return args.Error(0)
}

// Mock MetadataStore
type MockMetadataStore struct {
	mock.Mock
}

func (m *MockMetadataStore) TokenMetadata(ctx context.Context, cid string) (*entities.TokenMetadata, error) {
	args := m.Called(ctx, cid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TokenMetadata), args.Error(1)
}

func (m *MockMetadataStore) Parameters(ctx context.Context, cid string) ([]entities.Parameter, error) {
	args := m.Called(ctx, cid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Parameter), args.Error(1)
}

// Mock PinRecordRepository
type MockPinRecordRepository struct {
	mock.Mock
}

func (m *MockPinRecordRepository) Create(ctx context.Context, record *entities.PinRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPinRecordRepository) GetByCID(ctx context.Context, cid string) (*entities.PinRecord, error) {
	args := m.Called(ctx, cid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PinRecord), args.Error(1)
}

func (m *MockPinRecordRepository) GetByFlowID(ctx context.Context, flowID uuid.UUID) ([]*entities.PinRecord, error) {
	args := m.Called(ctx, flowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PinRecord), args.Error(1)
}

func (m *MockPinRecordRepository) MarkUnpinned(ctx context.Context, cid string) error {
	args := m.Called(ctx, cid)
	return args.Error(0)
}

func (m *MockPinRecordRepository) ListActive(ctx context.Context, limit, offset int) ([]*entities.PinRecord, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.PinRecord), args.Int(1), args.Error(2)
}
