package locker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired-and-retaken slot is never released by its previous owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// extendScript pushes the expiry forward only while the key still holds our
// token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// Redis is a Locker shared by every process talking to the same server.
// A held slot is renewed every ttl/3 until released, so it only expires
// when its holder stops renewing, e.g. because the process died.
type Redis struct {
	client      *redis.Client
	serviceName string
	ttl         time.Duration
}

// NewRedis connects lazily to addr. A non-positive ttl defaults to 30s.
func NewRedis(addr, serviceName string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
		ttl:         ttl,
	}
}

func (r *Redis) TryLock(ctx context.Context, key string) (func(), bool, error) {
	fullKey := r.GenerateKey("mutex", key)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, fullKey, token, r.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("locker: acquire %q: %w", fullKey, err)
	}
	if !ok {
		return nil, false, nil
	}

	stop := make(chan struct{})
	renewed := make(chan struct{})
	go func() {
		defer close(renewed)
		r.renew(context.WithoutCancel(ctx), fullKey, token, stop)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-renewed

			// Release even when the caller's context is already cancelled.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, r.client, []string{fullKey}, token).Err(); err != nil {
				slog.WarnContext(releaseCtx, "locker: release failed", "key", fullKey, "error", err)
			}
		})
	}, true, nil
}

// renew extends the slot every ttl/3 until stop is closed. A failed renewal
// is retried on the next tick; a slot taken over by another token is
// reported and no longer renewed.
func (r *Redis) renew(ctx context.Context, key, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(r.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		renewCtx, cancel := context.WithTimeout(ctx, r.ttl/3)
		n, err := extendScript.Run(renewCtx, r.client, []string{key}, token, r.ttl.Milliseconds()).Int()
		cancel()
		switch {
		case err != nil:
			slog.WarnContext(ctx, "locker: renew failed", "key", key, "error", err)
		case n == 0:
			slog.ErrorContext(ctx, "locker: slot lost before release", "key", key)
			return
		}
	}
}

// GenerateKey namespaces key by service and operation.
func (r *Redis) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.serviceName, operation, key)
}

// Close releases the client's connections.
func (r *Redis) Close() error {
	return r.client.Close()
}
