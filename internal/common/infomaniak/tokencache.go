package infomaniak

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"infomaniak-workers/internal/common/logger"
	"infomaniak-workers/internal/common/metrics"
)

// expiryMargin keeps a cached token from being handed out right before it expires.
const expiryMargin = 30 * time.Second

// OAuth2Settings are the refresh-token credentials for oauth2 authentication.
type OAuth2Settings struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	RefreshToken string
	Scopes       []string
}

// NewOAuth2TokenSource returns a source that refreshes access tokens with the
// configured refresh token. Token requests go through httpClient when non-nil.
func NewOAuth2TokenSource(settings OAuth2Settings, httpClient *http.Client) oauth2.TokenSource {
	conf := &oauth2.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		Scopes:       settings.Scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL:  settings.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx := context.Background()
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: settings.RefreshToken})
}

// RedisTokenSource shares access tokens between worker replicas through Redis so
// that only one of them refreshes per token lifetime.
type RedisTokenSource struct {
	rdb     redis.Cmdable
	key     string
	base    oauth2.TokenSource
	timeout time.Duration
	logger  logger.Logger

	mu sync.Mutex
}

func NewRedisTokenSource(rdb redis.Cmdable, key string, base oauth2.TokenSource, log logger.Logger) *RedisTokenSource {
	return &RedisTokenSource{
		rdb:     rdb,
		key:     key,
		base:    base,
		timeout: 2 * time.Second,
		logger:  log,
	}
}

// Token serves a cached token while it is valid and refreshes otherwise. Redis
// failures degrade to refreshing directly.
func (s *RedisTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if tok, err := s.load(ctx); err == nil {
		metrics.TokenCacheLookups.WithLabelValues("hit").Inc()
		return tok, nil
	} else if !errors.Is(err, redis.Nil) {
		metrics.TokenCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("OAuth2 token cache read failed", map[string]interface{}{
			"key":   s.key,
			"error": err.Error(),
		})
	} else {
		metrics.TokenCacheLookups.WithLabelValues("miss").Inc()
	}

	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	if err := s.store(ctx, tok); err != nil {
		s.logger.Warn("OAuth2 token cache write failed", map[string]interface{}{
			"key":   s.key,
			"error": err.Error(),
		})
	}
	return tok, nil
}

func (s *RedisTokenSource) load(ctx context.Context) (*oauth2.Token, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" || (!tok.Expiry.IsZero() && time.Until(tok.Expiry) < expiryMargin) {
		return nil, redis.Nil
	}
	return &tok, nil
}

func (s *RedisTokenSource) store(ctx context.Context, tok *oauth2.Token) error {
	ttl := time.Duration(0)
	if !tok.Expiry.IsZero() {
		ttl = time.Until(tok.Expiry) - expiryMargin
		if ttl <= 0 {
			return nil
		}
	}

	// the refresh token stays with the base source
	cached := oauth2.Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Expiry:      tok.Expiry,
	}
	raw, err := json.Marshal(&cached)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key, raw, ttl).Err()
}
