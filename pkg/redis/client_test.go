package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConnects(t *testing.T) {
	srv := miniredis.RunT(t)
	t.Cleanup(func() { SetClient(nil) })

	require.NoError(t, Init("redis://"+srv.Addr(), ""))
	assert.NotNil(t, GetClient())
}

func TestInitRejectsMalformedURL(t *testing.T) {
	SetClient(nil)
	assert.Error(t, Init("not-a-url", ""))
	assert.Nil(t, GetClient())
}

func TestInitLeavesClientNilOnPingFailure(t *testing.T) {
	SetClient(nil)
	assert.Error(t, Init("redis://127.0.0.1:1", ""))
	assert.Nil(t, GetClient())
}
