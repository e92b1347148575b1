package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codemint.backend/internal/domain/entities"
	"codemint.backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("development")
	m.Run()
}

type galleryReaderStub struct {
	projectCalls atomic.Int32
	tokenCalls   atomic.Int32
	projectErr   error
}

func (s *galleryReaderStub) ListProjects(_ context.Context) ([]entities.ProjectView, error) {
	s.projectCalls.Add(1)
	if s.projectErr != nil {
		return nil, s.projectErr
	}
	return []entities.ProjectView{}, nil
}

func (s *galleryReaderStub) LatestTokens(_ context.Context) ([]entities.TokenView, error) {
	s.tokenCalls.Add(1)
	return []entities.TokenView{}, nil
}

func TestViewRefreshRunsImmediatelyAndOnTick(t *testing.T) {
	stub := &galleryReaderStub{}
	job := NewViewRefreshJob(stub, 10*time.Millisecond)

	go job.Start(context.Background())
	defer job.Stop()

	require.Eventually(t, func() bool {
		return stub.projectCalls.Load() >= 2 && stub.tokenCalls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestViewRefreshStopsOnContextCancel(t *testing.T) {
	stub := &galleryReaderStub{}
	job := NewViewRefreshJob(stub, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not stop on context cancel")
	}
}

func TestViewRefreshSkipsTokenWalkOnProjectError(t *testing.T) {
	stub := &galleryReaderStub{projectErr: errors.New("rpc down")}
	job := NewViewRefreshJob(stub, time.Hour)

	job.refresh(context.Background())
	require.Equal(t, int32(1), stub.projectCalls.Load())
	require.Equal(t, int32(0), stub.tokenCalls.Load())
}
