package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueNotificaciones = "jobs:notificaciones"

	JobLeadNotificacion = "lead_notificacion"

	// MaxAttempts is how many times a job runs before it goes to the DLQ.
	MaxAttempts = 4
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// JobHandler processes the payload of one job type. A returned error schedules
// a retry.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers maps job types to their handlers. Wired in the composition root.
type WorkerHandlers struct {
	LeadNotificacion JobHandler
}

func (h *WorkerHandlers) forType(jobType string) JobHandler {
	if h == nil {
		return nil
	}
	switch jobType {
	case JobLeadNotificacion:
		return h.LeadNotificacion
	}
	return nil
}

// Dispatcher enqueues async jobs into Redis lists. The worker pool dequeues
// them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueLeadNotificacion pushes a supervisor notification for a new lead.
func (d *Dispatcher) EnqueueLeadNotificacion(ctx context.Context, payload LeadNotificacionPayload) error {
	return d.enqueue(ctx, QueueNotificaciones, JobLeadNotificacion, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return pushJob(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func pushJob(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the queues. Each
// goroutine blocks on BRPOP and exits when ctx is cancelled.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueNotificaciones}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		sendToDLQ(ctx, rdb, queue, Job{Type: "unknown", Payload: json.RawMessage(raw)}, "payload ilegible: "+err.Error())
		return
	}

	h := handlers.forType(job.Type)
	if h == nil {
		sendToDLQ(ctx, rdb, queue, job, "tipo de job sin handler")
		return
	}

	job.Attempts++
	if err := h.Process(ctx, job.Payload); err != nil {
		if job.Attempts >= MaxAttempts {
			sendToDLQ(ctx, rdb, queue, job, err.Error())
			return
		}
		scheduleRetry(ctx, rdb, queue, job, err)
		return
	}
	log.Info().Str("type", job.Type).Str("queue", queue).Int("attempts", job.Attempts).Msg("job processed")
}
