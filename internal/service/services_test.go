package service

import (
	"testing"

	"github.com/deppfellow/go-insurance/internal/config"
	"github.com/deppfellow/go-insurance/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestCacheFor(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{Redis: config.RedisConfig{CacheTTL: config.DefaultCacheTTL}}

	assert.Nil(t, cacheFor(&server.Server{Config: cfg}))
	assert.Nil(t, cacheFor(&server.Server{Config: cfg, Redis: client, RedisReady: false}))
	assert.NotNil(t, cacheFor(&server.Server{Config: cfg, Redis: client, RedisReady: true}))
}
