package infomaniak

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"infomaniak-workers/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type countingTokenSource struct {
	calls  atomic.Int32
	expiry time.Duration
}

func (s *countingTokenSource) Token() (*oauth2.Token, error) {
	n := s.calls.Add(1)
	return &oauth2.Token{
		AccessToken:  fmt.Sprintf("access-%d", n),
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(s.expiry),
	}, nil
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisTokenSource_CachesAcrossInstances(t *testing.T) {
	mr, rdb := setupRedis(t)
	base := &countingTokenSource{expiry: time.Hour}

	first := NewRedisTokenSource(rdb, "infomaniak:oauth2:test", base, logger.NewNoOpLogger())
	tok, err := first.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)

	// a second replica sharing Redis reuses the token
	second := NewRedisTokenSource(rdb, "infomaniak:oauth2:test", base, logger.NewNoOpLogger())
	tok, err = second.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
	assert.Equal(t, int32(1), base.calls.Load())

	raw, err := mr.Get("infomaniak:oauth2:test")
	require.NoError(t, err)
	var cached oauth2.Token
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Empty(t, cached.RefreshToken)

	ttl := mr.TTL("infomaniak:oauth2:test")
	assert.True(t, ttl > 0 && ttl <= time.Hour)
}

func TestRedisTokenSource_RefreshesAfterExpiry(t *testing.T) {
	mr, rdb := setupRedis(t)
	base := &countingTokenSource{expiry: 2 * time.Minute}
	src := NewRedisTokenSource(rdb, "k", base, logger.NewNoOpLogger())

	_, err := src.Token()
	require.NoError(t, err)

	mr.FastForward(3 * time.Minute)

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-2", tok.AccessToken)
	assert.Equal(t, int32(2), base.calls.Load())
}

func TestRedisTokenSource_SkipsNearlyExpiredTokens(t *testing.T) {
	_, rdb := setupRedis(t)
	base := &countingTokenSource{expiry: 10 * time.Second}
	src := NewRedisTokenSource(rdb, "k", base, logger.NewNoOpLogger())

	_, err := src.Token()
	require.NoError(t, err)
	_, err = src.Token()
	require.NoError(t, err)

	// inside the expiry margin nothing is cached
	assert.Equal(t, int32(2), base.calls.Load())
}

func TestRedisTokenSource_RedisDown(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("k").SetErr(assert.AnError)

	base := &countingTokenSource{expiry: time.Hour}
	src := NewRedisTokenSource(rdb, "k", base, logger.NewNoOpLogger())

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
}
