package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis stores entries under a key prefix and announces every write on the
// <prefix>:events channel so other handles (other processes) can follow.
type Redis struct {
	client redis.UniversalClient
	prefix string
	source string
}

var (
	_ Storage = (*Redis)(nil)
	_ Watcher = (*Redis)(nil)
)

// NewRedis returns a handle with its own source identity.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "backoffice"
	}
	return &Redis{client: client, prefix: prefix, source: uuid.NewString()}
}

// DialRedis creates a Redis client from a URL and performs a health check.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return client, nil
}

func (r *Redis) key(k string) string {
	return r.prefix + ":" + k
}

func (r *Redis) channel() string {
	return r.prefix + ":events"
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.SetMany(ctx, map[string]string{key: value})
}

// SetMany writes all entries inside MULTI/EXEC.
func (r *Redis) SetMany(ctx context.Context, entries map[string]string) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Set(ctx, r.key(k), entries[k], 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	events := make([]Event, 0, len(keys))
	for _, k := range keys {
		events = append(events, Event{Key: k, Value: entries[k], Source: r.source})
	}
	r.publish(ctx, events)
	return nil
}

func (r *Redis) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	cmds := make([]*redis.IntCmd, len(keys))
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = pipe.Del(ctx, r.key(k))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	events := make([]Event, 0, len(keys))
	for i, k := range keys {
		if cmds[i].Val() > 0 {
			events = append(events, Event{Key: k, Removed: true, Source: r.source})
		}
	}
	r.publish(ctx, events)
	return nil
}

// Watch subscribes to the event channel. The subscription is confirmed
// before Watch returns, so writes made afterwards are never missed. An event
// already being delivered when stop is called may still reach fn.
func (r *Redis) Watch(ctx context.Context, fn func(Event)) (func(), error) {
	ps := r.client.Subscribe(ctx, r.channel())
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	go func() {
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn().Err(err).Str("channel", msg.Channel).Msg("Dropping malformed storage event")
				continue
			}
			if ev.Source == r.source {
				continue
			}
			fn(ev)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := ps.Close(); err != nil {
				log.Debug().Err(err).Msg("Closing storage subscription")
			}
		})
	}, nil
}

// publish failures do not fail the write; other handles just miss the event
func (r *Redis) publish(ctx context.Context, events []Event) {
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if err := r.client.Publish(ctx, r.channel(), payload).Err(); err != nil {
			log.Warn().Err(err).Str("key", ev.Key).Msg("Failed to publish storage event")
		}
	}
}
