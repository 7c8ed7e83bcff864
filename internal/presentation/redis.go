package presentation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rxtech-lab/argo-pnl/internal/types"
	"github.com/rxtech-lab/argo-pnl/pkg/errors"
)

const (
	DefaultRedisKey     = "argo-pnl:stats"
	DefaultRedisChannel = "argo-pnl:stats:updates"
)

// RedisOptions configures a RedisPresenter.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Key holds the JSON display form of the latest snapshot.
	Key string
	// Channel receives the same payload on every update. Empty disables
	// publishing.
	Channel  string
	Currency string
}

// RedisPresenter stores the display form of each snapshot under a key and
// announces it on a pub/sub channel.
type RedisPresenter struct {
	client   redis.UniversalClient
	key      string
	channel  string
	currency string
}

// NewRedisPresenter connects to Redis and verifies the connection.
func NewRedisPresenter(opts RedisOptions) (*RedisPresenter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()

		return nil, errors.Wrapf(errors.ErrCodePublishFailed, err, "redis ping %s", opts.Addr)
	}

	return newRedisPresenterWithClient(client, opts), nil
}

func newRedisPresenterWithClient(client redis.UniversalClient, opts RedisOptions) *RedisPresenter {
	key := opts.Key
	if key == "" {
		key = DefaultRedisKey
	}

	return &RedisPresenter{
		client:   client,
		key:      key,
		channel:  opts.Channel,
		currency: opts.Currency,
	}
}

func (p *RedisPresenter) Present(ctx context.Context, snapshot types.MetricsSnapshot) error {
	payload, err := json.Marshal(snapshot.Display(p.currency))
	if err != nil {
		return errors.Wrap(errors.ErrCodePresentFailed, "failed to marshal metrics", err)
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, p.key, payload, 0)

		if p.channel != "" {
			pipe.Publish(ctx, p.channel, payload)
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodePublishFailed, "failed to publish metrics to redis", err)
	}

	return nil
}

// Latest reads back the stored display form.
func (p *RedisPresenter) Latest(ctx context.Context) (types.MetricsDisplay, error) {
	var display types.MetricsDisplay

	data, err := p.client.Get(ctx, p.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return display, errors.Newf(errors.ErrCodeDataNotFound, "no metrics stored under %s", p.key)
		}

		return display, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read metrics from redis", err)
	}

	if err := json.Unmarshal(data, &display); err != nil {
		return display, errors.Wrap(errors.ErrCodeQueryFailed, "failed to unmarshal metrics", err)
	}

	return display, nil
}

// Close closes the Redis connection.
func (p *RedisPresenter) Close() error {
	return p.client.Close()
}
