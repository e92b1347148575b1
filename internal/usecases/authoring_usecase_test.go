package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codemint.backend/internal/domain/entities"
	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/domain/repositories"
	"codemint.backend/internal/usecases"
)

type authoringFixture struct {
	registry *MockProjectRegistry
	content  *MockContentStore
	pins     *MockPinRecordRepository
	center   *usecases.NotificationCenter
	flows    *usecases.FlowManager
	usecase  *usecases.AuthoringUsecase
}

func newAuthoringFixture(compensate bool) *authoringFixture {
	f := &authoringFixture{
		registry: new(MockProjectRegistry),
		content:  new(MockContentStore),
		pins:     new(MockPinRecordRepository),
		center:   usecases.NewNotificationCenter(),
	}
	f.flows = usecases.NewFlowManager(f.center)
	f.usecase = usecases.NewAuthoringUsecase(
		f.registry, f.content, f.pins,
		usecases.NewDerivationUsecase("dweb.link", 16),
		f.flows, compensate)
	return f
}

func validCreateRequest() *usecases.CreateProjectRequest {
	return &usecases.CreateProjectRequest{
		Author:      "0x1111111111111111111111111111111111111111",
		Name:        "Orbits",
		Description: "Generative orbits",
		License:     "MIT",
		PriceWei:    "1000",
		MaxEditions: "64",
		Parameters: []entities.Parameter{
			{Key: "palette", Kind: entities.ParameterKindString, Name: "Palette", Default: "warm"},
		},
		CodeFiles: []repositories.UploadFile{
			{Path: "index.html", Data: []byte("<html></html>")},
		},
	}
}

func waitSettled(t *testing.T, flow *usecases.Flow) {
	t.Helper()
	select {
	case <-flow.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("flow did not settle")
	}
}

func TestCreateProjectHappyPath(t *testing.T) {
	f := newAuthoringFixture(false)
	req := validCreateRequest()

	f.content.On("PinDirectory", mock.Anything, "Orbits", req.CodeFiles).Return("bafycode", nil)
	f.content.On("PinFile", mock.Anything, mock.Anything, mock.Anything).Return("bafypinned", nil).Twice()
	f.pins.On("GetByCID", mock.Anything, mock.Anything).Return(nil, domainerrors.ErrNotFound)
	f.pins.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.registry.On("CreateProject", mock.Anything, mock.MatchedBy(func(call *repositories.CreateProjectCall) bool {
		return call.CodeCID == "bafycode" &&
			call.Price.String() == "1000" &&
			call.ValueSent.Cmp(call.Price) == 0 &&
			call.MaxEditions.String() == "64"
	})).Return("0xhash", nil)
	f.registry.On("WaitConfirmed", mock.Anything, "0xhash").Return(nil)

	flow, err := f.usecase.CreateProject(context.Background(), req)
	require.NoError(t, err)
	waitSettled(t, flow)

	assert.Equal(t, usecases.FlowConfirmed, flow.State())
	notes := f.center.List()
	require.Len(t, notes, 1)
	assert.Equal(t, entities.NotificationKindInfo, notes[0].Kind)
	assert.Equal(t, "Orbits published", notes[0].Message)

	// Code bundle, schema and token #1 metadata were all recorded.
	f.pins.AssertNumberOfCalls(t, "Create", 3)
	f.content.AssertNotCalled(t, "Unpin", mock.Anything, mock.Anything)
}

func TestCreateProjectValidatesBeforeAnyUpload(t *testing.T) {
	f := newAuthoringFixture(false)

	req := validCreateRequest()
	req.Name = "  "
	_, err := f.usecase.CreateProject(context.Background(), req)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	req = validCreateRequest()
	req.CodeFiles = nil
	_, err = f.usecase.CreateProject(context.Background(), req)
	assert.True(t, errors.Is(err, domainerrors.ErrEmptyUpload))

	req = validCreateRequest()
	req.PriceWei = "abc"
	_, err = f.usecase.CreateProject(context.Background(), req)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	req = validCreateRequest()
	req.Parameters = append(req.Parameters, entities.Parameter{Key: "palette", Kind: entities.ParameterKindString})
	_, err = f.usecase.CreateProject(context.Background(), req)
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateParameterKey))

	f.content.AssertNotCalled(t, "PinDirectory", mock.Anything, mock.Anything, mock.Anything)
	f.registry.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
}

func TestCreateProjectUnlimitedEditions(t *testing.T) {
	f := newAuthoringFixture(false)
	req := validCreateRequest()
	req.MaxEditions = ""

	f.content.On("PinDirectory", mock.Anything, mock.Anything, mock.Anything).Return("bafycode", nil)
	f.content.On("PinFile", mock.Anything, mock.Anything, mock.Anything).Return("bafypinned", nil)
	f.pins.On("GetByCID", mock.Anything, mock.Anything).Return(nil, domainerrors.ErrNotFound)
	f.pins.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.registry.On("CreateProject", mock.Anything, mock.MatchedBy(func(call *repositories.CreateProjectCall) bool {
		return call.MaxEditions.Cmp(entities.UnlimitedEditions) == 0
	})).Return("0xhash", nil)
	f.registry.On("WaitConfirmed", mock.Anything, "0xhash").Return(nil)

	flow, err := f.usecase.CreateProject(context.Background(), req)
	require.NoError(t, err)
	waitSettled(t, flow)
	assert.Equal(t, usecases.FlowConfirmed, flow.State())
}

func TestCreateProjectUploadFailureNotifiesOnce(t *testing.T) {
	f := newAuthoringFixture(false)
	req := validCreateRequest()

	f.content.On("PinDirectory", mock.Anything, mock.Anything, mock.Anything).
		Return("", domainerrors.Upload("pin failed with status 500", nil))

	flow, err := f.usecase.CreateProject(context.Background(), req)
	require.NoError(t, err)
	waitSettled(t, flow)

	assert.Equal(t, usecases.FlowFailed, flow.State())
	assert.True(t, errors.Is(flow.Err(), domainerrors.ErrUpload))

	notes := f.center.List()
	require.Len(t, notes, 1)
	assert.Equal(t, entities.NotificationKindError, notes[0].Kind)
	f.registry.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
}

func TestCreateProjectCompensatesPinsOnFailure(t *testing.T) {
	f := newAuthoringFixture(true)
	req := validCreateRequest()

	f.content.On("PinDirectory", mock.Anything, mock.Anything, mock.Anything).Return("bafycode", nil)
	f.content.On("PinFile", mock.Anything, mock.Anything, mock.Anything).Return("bafypinned", nil)
	f.pins.On("GetByCID", mock.Anything, mock.Anything).Return(nil, domainerrors.ErrNotFound)
	f.pins.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.registry.On("CreateProject", mock.Anything, mock.Anything).
		Return("", domainerrors.Submission("rejected", nil))
	f.pins.On("GetByFlowID", mock.Anything, mock.Anything).Return([]*entities.PinRecord{
		{CID: "bafycode"},
		{CID: "bafypinned"},
	}, nil)
	f.content.On("Unpin", mock.Anything, "bafycode").Return(nil)
	f.content.On("Unpin", mock.Anything, "bafypinned").Return(nil)
	f.pins.On("MarkUnpinned", mock.Anything, "bafycode").Return(nil)
	compensated := make(chan struct{})
	f.pins.On("MarkUnpinned", mock.Anything, "bafypinned").
		Run(func(args mock.Arguments) { close(compensated) }).Return(nil)

	flow, err := f.usecase.CreateProject(context.Background(), req)
	require.NoError(t, err)

	waitSettled(t, flow)
	assert.Equal(t, usecases.FlowFailed, flow.State())

	select {
	case <-compensated:
	case <-time.After(2 * time.Second):
		t.Fatal("compensation did not run")
	}
	f.content.AssertCalled(t, "Unpin", mock.Anything, "bafycode")
	f.content.AssertCalled(t, "Unpin", mock.Anything, "bafypinned")
}

func TestCreateProjectConfirmationTimeout(t *testing.T) {
	f := newAuthoringFixture(false)
	req := validCreateRequest()

	f.content.On("PinDirectory", mock.Anything, mock.Anything, mock.Anything).Return("bafycode", nil)
	f.content.On("PinFile", mock.Anything, mock.Anything, mock.Anything).Return("bafypinned", nil)
	f.pins.On("GetByCID", mock.Anything, mock.Anything).Return(nil, domainerrors.ErrNotFound)
	f.pins.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.registry.On("CreateProject", mock.Anything, mock.Anything).Return("0xhash", nil)
	f.registry.On("WaitConfirmed", mock.Anything, "0xhash").
		Return(domainerrors.ConfirmationTimeout("not confirmed in time"))

	flow, err := f.usecase.CreateProject(context.Background(), req)
	require.NoError(t, err)
	waitSettled(t, flow)

	assert.Equal(t, usecases.FlowFailed, flow.State())
	assert.True(t, errors.Is(flow.Err(), domainerrors.ErrConfirmationTimeout))
	assert.Equal(t, "0xhash", flow.TxHash())
}

func TestCreateProjectAbandonSuppressesSuccessNotice(t *testing.T) {
	f := newAuthoringFixture(false)
	req := validCreateRequest()

	release := make(chan struct{})
	f.content.On("PinDirectory", mock.Anything, mock.Anything, mock.Anything).Return("bafycode", nil)
	f.content.On("PinFile", mock.Anything, mock.Anything, mock.Anything).Return("bafypinned", nil)
	f.pins.On("GetByCID", mock.Anything, mock.Anything).Return(nil, domainerrors.ErrNotFound)
	f.pins.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.registry.On("CreateProject", mock.Anything, mock.Anything).Return("0xhash", nil)
	f.registry.On("WaitConfirmed", mock.Anything, "0xhash").
		Run(func(args mock.Arguments) { <-release }).Return(nil)

	flow, err := f.usecase.CreateProject(context.Background(), req)
	require.NoError(t, err)

	require.True(t, f.flows.Abandon(flow.ID))
	close(release)
	waitSettled(t, flow)

	assert.Equal(t, usecases.FlowConfirmed, flow.State())
	assert.Empty(t, f.center.List())
	// The superseded draft is not released when nobody is watching; the
	// publish itself still confirmed on chain.
	f.content.AssertNotCalled(t, "Unpin", mock.Anything, mock.Anything)
}

func TestCreateProjectReleasesSupersededDraft(t *testing.T) {
	f := newAuthoringFixture(false)
	req := validCreateRequest()
	req.Supersedes = []string{"bafyold"}

	f.content.On("PinDirectory", mock.Anything, mock.Anything, mock.Anything).Return("bafycode", nil)
	f.content.On("PinFile", mock.Anything, mock.Anything, mock.Anything).Return("bafypinned", nil)
	f.pins.On("GetByCID", mock.Anything, mock.Anything).Return(nil, domainerrors.ErrNotFound)
	f.pins.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.registry.On("CreateProject", mock.Anything, mock.Anything).Return("0xhash", nil)
	f.registry.On("WaitConfirmed", mock.Anything, "0xhash").Return(nil)
	f.content.On("Unpin", mock.Anything, "bafyold").Return(nil)
	released := make(chan struct{})
	f.pins.On("MarkUnpinned", mock.Anything, "bafyold").
		Run(func(args mock.Arguments) { close(released) }).Return(nil)

	flow, err := f.usecase.CreateProject(context.Background(), req)
	require.NoError(t, err)
	waitSettled(t, flow)

	assert.Equal(t, usecases.FlowConfirmed, flow.State())
	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("superseded draft was not released")
	}
	f.content.AssertCalled(t, "Unpin", mock.Anything, "bafyold")
}
