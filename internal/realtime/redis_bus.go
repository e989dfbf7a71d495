package realtime

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"clinic_intake_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBus relays realtime events between the API and the scheduler worker.
type RedisBus struct {
	rdb     *redis.Client
	channel string
	log     *logger.Logger
}

// NewRedisClient parses redisURL and verifies the server answers.
func NewRedisClient(ctx context.Context, redisURL string, tlsInsecure bool) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if tlsInsecure {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	opt.DialTimeout = 5 * time.Second

	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewRedisBus creates a bus on channel using an existing client.
func NewRedisBus(rdb *redis.Client, channel string, log *logger.Logger) *RedisBus {
	if channel == "" {
		channel = "staff-realtime"
	}
	return &RedisBus{
		rdb:     rdb,
		channel: channel,
		log:     log.WithComponent("realtime.redis"),
	}
}

// Publish sends event to every forwarder subscribed to the channel.
func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis bus not initialized")
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes to the channel and hands every decoded event to
// onEvent until ctx is cancelled. It returns once the subscription is live.
func (b *RedisBus) StartForwarder(ctx context.Context, onEvent func(Event)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					b.log.Warn("bad realtime payload", "error", err)
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}

// Close releases the underlying client.
func (b *RedisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
