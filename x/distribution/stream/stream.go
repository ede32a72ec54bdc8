/*
Package stream publishes distribution events to a Redis stream.

Each event becomes a single stream entry with the following fields:

	type    event type, for example "IndexUpdated"
	height  block height the event was created at
	event   JSON encoded distribution.Event

Consumers can use XREAD or consumer groups to follow the ledger.
*/
package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/x/distribution"
	"github.com/redis/go-redis/v9"
)

// DefaultMaxLen caps the number of entries kept in the stream.
const DefaultMaxLen = 10000

// Adder is the part of the Redis client used by the sink. It is
// implemented by *redis.Client.
type Adder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Sink is a distribution.EventSink writing to a Redis stream.
type Sink struct {
	client Adder
	stream string
	maxLen int64
}

var _ distribution.EventSink = (*Sink)(nil)

// NewSink returns a sink appending to given stream. The stream is trimmed
// to roughly maxLen entries. Zero maxLen disables trimming.
func NewSink(client Adder, stream string, maxLen int64) *Sink {
	return &Sink{client: client, stream: stream, maxLen: maxLen}
}

// Publish appends all events in order. It stops at the first failure.
func (s *Sink) Publish(ctx ida.Context, events ...distribution.Event) error {
	for i, ev := range events {
		raw, err := json.Marshal(ev)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "cannot encode event %d: %s", i, err)
		}
		args := &redis.XAddArgs{
			Stream: s.stream,
			Values: map[string]interface{}{
				"type":   string(ev.Type),
				"height": ev.Height,
				"event":  string(raw),
			},
		}
		if s.maxLen > 0 {
			args.MaxLen = s.maxLen
			args.Approx = true
		}
		if err := s.client.XAdd(ctx, args).Err(); err != nil {
			return errors.Wrapf(errors.ErrNetwork, "xadd %s: %s", s.stream, err)
		}
	}
	return nil
}

// Config describes the Redis connection.
type Config struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Stream   string `yaml:"stream"`
	MaxLen   int64  `yaml:"max_len"`
}

// Dial connects to Redis and checks the connection.
func Dial(ctx context.Context, conf Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         conf.Addr,
		Password:     conf.Password,
		DB:           conf.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrapf(errors.ErrNetwork, "redis at %s: %s", conf.Addr, err)
	}
	return rdb, nil
}
