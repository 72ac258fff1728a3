package sink

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"perfoverlay/breaker"
	"perfoverlay/overlay"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrQueueFull = errors.New("sink: publish queue full")

const (
	defaultQueueSize = 64
	publishTimeout   = time.Second
)

type visibilityEvent struct {
	Event    string `json:"event"`
	Duration int64  `json:"duration_ms"`
}

type message struct {
	channel string
	payload interface{}
}

// Redis publishes snapshots to a pub/sub channel and visibility changes to
// "<channel>:visibility". Publishing is queued so the tick loop never waits on
// the network; Run drains the queue.
type Redis struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
	queue   chan message
	breaker breaker.Breaker
}

func NewRedis(client *redis.Client, channel string, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{
		client:  client,
		channel: channel,
		log:     log,
		queue:   make(chan message, defaultQueueSize),
		breaker: breaker.New(breaker.Config{}),
	}
}

func (r *Redis) VisibilityChannel() string {
	return r.channel + ":visibility"
}

func (r *Redis) Publish(_ context.Context, s overlay.Snapshot) error {
	return r.enqueue(message{channel: r.channel, payload: s})
}

func (r *Redis) Reveal(d time.Duration) {
	r.visibility("reveal", d)
}

func (r *Redis) Conceal(d time.Duration) {
	r.visibility("conceal", d)
}

func (r *Redis) visibility(event string, d time.Duration) {
	err := r.enqueue(message{
		channel: r.VisibilityChannel(),
		payload: visibilityEvent{Event: event, Duration: d.Milliseconds()},
	})
	if err != nil {
		r.log.Warn("visibility event dropped", zap.String("event", event), zap.Error(err))
	}
}

func (r *Redis) enqueue(m message) error {
	select {
	case r.queue <- m:
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Redis) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-r.queue:
			err := r.send(ctx, m)
			switch {
			case err == nil:
			case errors.Is(err, breaker.ErrNotAllowed):
				r.log.Debug("redis publish shed", zap.String("channel", m.channel))
			default:
				r.log.Warn("redis publish failed", zap.String("channel", m.channel), zap.Error(err))
			}
		}
	}
}

func (r *Redis) send(ctx context.Context, m message) error {
	data, err := json.Marshal(m.payload)
	if err != nil {
		return errors.Wrap(err, "encode")
	}
	if err := r.breaker.Allow(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := r.client.Publish(ctx, m.channel, data).Err(); err != nil {
		r.breaker.MarkFailed()
		return errors.Wrap(err, "publish")
	}
	r.breaker.MarkSuccess()
	return nil
}
