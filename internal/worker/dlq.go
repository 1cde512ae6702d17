package worker

// dlq.go: notifications that will not be retried.
// A job lands in dlq:{queue} when it exhausts MaxAttempts, has no handler or
// cannot be decoded. Admins read the list through /api/notificaciones/fallidas.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"

	// maxDeadLetters caps each list; older entries are trimmed.
	maxDeadLetters = 1000
)

// DeadLetter is a failed job. Lead notifications carry the lead and recipient
// so an admin can find the sale without decoding the payload.
type DeadLetter struct {
	Queue    string          `json:"queue"`
	JobType  string          `json:"job_type"`
	LeadID   string          `json:"lead_id,omitempty"`
	ToEmail  string          `json:"to_email,omitempty"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
	Payload  json.RawMessage `json:"payload"`
}

func newDeadLetter(queue string, job Job, reason string, at time.Time) DeadLetter {
	dl := DeadLetter{
		Queue:    queue,
		JobType:  job.Type,
		Reason:   reason,
		Attempts: job.Attempts,
		FailedAt: at.UTC(),
		Payload:  job.Payload,
	}
	if !json.Valid(job.Payload) {
		// Undecodable bodies are kept verbatim as a JSON string.
		dl.Payload, _ = json.Marshal(string(job.Payload))
		return dl
	}
	if job.Type == JobLeadNotificacion {
		var p LeadNotificacionPayload
		if json.Unmarshal(job.Payload, &p) == nil {
			dl.LeadID, dl.ToEmail = p.LeadID, p.ToEmail
		}
	}
	return dl
}

// sendToDLQ records job as failed on queue's dead letter list.
func sendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	dl := newDeadLetter(queue, job, reason, time.Now())
	data, err := json.Marshal(dl)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	key := DLQPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: failed to push entry")
		return
	}
	if err := rdb.LTrim(ctx, key, 0, maxDeadLetters-1).Err(); err != nil {
		log.Warn().Err(err).Str("dlq_key", key).Msg("dlq: failed to trim")
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", dl.JobType).
		Str("lead_id", dl.LeadID).
		Str("to", dl.ToEmail).
		Str("reason", reason).
		Int("attempts", dl.Attempts).
		Msg("dlq: notification abandoned")
}

// DLQLength returns the number of entries in a DLQ; served by /health.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// DeadLetterStore reads the failed notifications of one queue, newest first.
type DeadLetterStore struct {
	rdb   *redis.Client
	queue string
}

func NewDeadLetterStore(rdb *redis.Client, queue string) *DeadLetterStore {
	return &DeadLetterStore{rdb: rdb, queue: queue}
}

// List returns up to limit entries. Entries that no longer decode are skipped.
func (s *DeadLetterStore) List(ctx context.Context, limit int64) ([]DeadLetter, error) {
	raw, err := s.rdb.LRange(ctx, DLQPrefix+s.queue, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	return decodeDeadLetters(raw), nil
}

func decodeDeadLetters(raw []string) []DeadLetter {
	out := make([]DeadLetter, 0, len(raw))
	for _, r := range raw {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(r), &dl); err != nil {
			log.Warn().Err(err).Msg("dlq: skipping undecodable entry")
			continue
		}
		out = append(out, dl)
	}
	return out
}
