package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"codemint.backend/internal/domain/entities"
	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/domain/repositories"
	"codemint.backend/pkg/logger"
)

const fetchTimeout = 30 * time.Second

// MetadataStore fetches pinned JSON documents through an IPFS path gateway.
// Content is addressed by CID and immutable, so cache entries never need
// invalidation, only expiry.
type MetadataStore struct {
	gatewayHost string
	cache       *redis.Client
	cacheTTL    time.Duration
	httpClient  *http.Client
}

var _ repositories.MetadataStore = (*MetadataStore)(nil)

// NewMetadataStore creates a store reading from the given gateway host.
// cache may be nil, which disables caching.
func NewMetadataStore(gatewayHost string, cache *redis.Client, cacheTTL time.Duration) *MetadataStore {
	return &MetadataStore{
		gatewayHost: gatewayHost,
		cache:       cache,
		cacheTTL:    cacheTTL,
		httpClient:  &http.Client{Timeout: fetchTimeout},
	}
}

// TokenMetadata fetches and decodes a token metadata document by CID.
func (s *MetadataStore) TokenMetadata(ctx context.Context, cid string) (*entities.TokenMetadata, error) {
	raw, err := s.fetch(ctx, cid)
	if err != nil {
		return nil, err
	}
	var doc entities.TokenMetadata
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid token metadata at %s: %w", cid, err)
	}
	return &doc, nil
}

// Parameters fetches and decodes a parameter schema document by CID.
func (s *MetadataStore) Parameters(ctx context.Context, cid string) ([]entities.Parameter, error) {
	raw, err := s.fetch(ctx, cid)
	if err != nil {
		return nil, err
	}
	var params []entities.Parameter
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("invalid parameter schema at %s: %w", cid, err)
	}
	return params, nil
}

func (s *MetadataStore) fetch(ctx context.Context, cid string) ([]byte, error) {
	cacheKey := "ipfs:doc:" + cid
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			return cached, nil
		}
	}

	base := s.gatewayHost
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	url := fmt.Sprintf("%s/ipfs/%s", base, cid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway fetch of %s failed: %w", cid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domainerrors.NotFound("content " + cid + " not found on gateway")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway fetch of %s failed with status %d", cid, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, raw, s.cacheTTL).Err(); err != nil {
			logger.Warn(ctx, "failed to cache gateway document", zap.String("cid", cid), zap.Error(err))
		}
	}
	return raw, nil
}
