package worker

// retry_cron.go
// Failed jobs wait in a sorted set (score = unix time of the next attempt).
// A ticker moves the due ones back onto their queue, unless the mail relay's
// circuit breaker is open.

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"crmventas/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	RetryPrefix       = "retry:"
	retryTickInterval = 15 * time.Second
	retryBatchSize    = 20
)

// computeRetryBackoff returns 30s, 60s, 120s... capped at 10 minutes.
func computeRetryBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := 30 * time.Second << (attempts - 1)
	if d > 10*time.Minute || d <= 0 {
		d = 10 * time.Minute
	}
	return d
}

func scheduleRetry(ctx context.Context, rdb *redis.Client, queue string, job Job, cause error) {
	encoded, err := json.Marshal(job)
	if err != nil {
		log.Error().Err(err).Msg("retry: failed to marshal job")
		return
	}
	next := time.Now().Add(computeRetryBackoff(job.Attempts))
	if err := rdb.ZAdd(ctx, RetryPrefix+queue, redis.Z{Score: float64(next.Unix()), Member: encoded}).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("retry: failed to schedule, sending to DLQ")
		sendToDLQ(ctx, rdb, queue, job, cause.Error())
		return
	}
	log.Warn().
		Err(cause).
		Str("queue", queue).
		Str("job_type", job.Type).
		Int("attempts", job.Attempts).
		Time("next_attempt", next).
		Msg("retry: job scheduled")
}

// RetryCronConfig holds the dependencies of the retry goroutine.
type RetryCronConfig struct {
	RDB *redis.Client
	// CB is the breaker of the downstream the retried jobs talk to; nil means always try.
	CB     *infra.CircuitBreaker
	Queues []string
}

// StartRetryCron launches the retry goroutine. It stops with ctx.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if len(cfg.Queues) == 0 {
		cfg.Queues = []string{QueueNotificaciones}
	}
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				for _, q := range cfg.Queues {
					requeueDue(ctx, cfg, q, time.Now())
				}
			}
		}
	}()
}

func requeueDue(ctx context.Context, cfg RetryCronConfig, queue string, now time.Time) {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	key := RetryPrefix + queue
	due, err := cfg.RDB.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   formatScore(now),
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("retry_cron: failed to query due retries")
		return
	}

	moved := 0
	for _, member := range due {
		// ZREM decides ownership when several instances run the cron
		removed, err := cfg.RDB.ZRem(ctx, key, member).Result()
		if err != nil || removed == 0 {
			continue
		}
		if err := cfg.RDB.LPush(ctx, queue, member).Err(); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("retry_cron: failed to requeue job")
			_ = cfg.RDB.ZAdd(ctx, key, redis.Z{Score: float64(now.Unix()), Member: member}).Err()
			continue
		}
		moved++
	}
	if moved > 0 {
		log.Info().Int("count", moved).Str("queue", queue).Msg("retry_cron: jobs requeued")
	}
}

func formatScore(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
