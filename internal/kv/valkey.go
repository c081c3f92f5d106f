// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written to Valkey.
const DefaultPrefix = "pantry:"

// ConnectValkey creates a Valkey client and verifies the connection with a ping.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", fmt.Sprintf("%s:%s", host, port))
	return client, nil
}

// Valkey stores keys in a Valkey/Redis database under a prefix.
type Valkey struct {
	client *redis.Client
	prefix string
}

// NewValkey wraps an existing client. An empty prefix uses DefaultPrefix.
func NewValkey(client *redis.Client, prefix string) *Valkey {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Valkey{client: client, prefix: prefix}
}

// Get returns the value for key or ErrNotFound.
func (v *Valkey) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := v.client.Get(ctx, v.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value under key without expiry.
func (v *Valkey) Set(ctx context.Context, key string, value []byte) error {
	if err := v.client.Set(ctx, v.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (v *Valkey) Delete(ctx context.Context, key string) error {
	if err := v.client.Del(ctx, v.prefix+key).Err(); err != nil {
		return fmt.Errorf("valkey delete %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (v *Valkey) Close() error {
	return v.client.Close()
}
