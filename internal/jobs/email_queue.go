package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/email"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EmailQueue is a Redis list of pending email jobs drained by a pool of
// workers. Producers LPUSH and workers BRPOP, so jobs are FIFO and survive
// restarts.
type EmailQueue struct {
	client      *redis.Client
	sender      email.Sender
	key         string
	workers     int
	maxRetries  int
	pollTimeout time.Duration
	wg          sync.WaitGroup
}

func NewEmailQueue(client *redis.Client, sender email.Sender, key string, workers, maxRetries int) *EmailQueue {
	if workers <= 0 {
		workers = 1
	}
	return &EmailQueue{
		client:      client,
		sender:      sender,
		key:         key,
		workers:     workers,
		maxRetries:  maxRetries,
		pollTimeout: 5 * time.Second,
	}
}

// Enqueue adds an email to the queue
func (q *EmailQueue) Enqueue(ctx context.Context, to, subject, body string) error {
	return q.push(ctx, domain.EmailJob{
		ID:        uuid.NewString(),
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	})
}

func (q *EmailQueue) push(ctx context.Context, job domain.EmailJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal email job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue email job: %w", err)
	}
	logger.Debug("Email job enqueued", "job_id", job.ID, "to", job.To, "retries", job.Retries)
	return nil
}

// Len returns the number of jobs waiting.
func (q *EmailQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Start begins processing emails asynchronously until ctx is cancelled.
func (q *EmailQueue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

// Wait blocks until all workers have stopped.
func (q *EmailQueue) Wait() {
	q.wg.Wait()
}

func (q *EmailQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	logger.Info("Email worker started", "worker", id)

	for ctx.Err() == nil {
		if _, err := q.ProcessNext(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Email worker failed to read queue", "worker", id, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
	logger.Info("Email worker stopping", "worker", id)
}

// ProcessNext waits up to the poll timeout for one job and handles it.
// It reports whether a job was taken off the queue.
func (q *EmailQueue) ProcessNext(ctx context.Context) (bool, error) {
	res, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var job domain.EmailJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		logger.Error("Dropping malformed email job", "error", err)
		return true, nil
	}
	q.process(ctx, job)
	return true, nil
}

func (q *EmailQueue) process(ctx context.Context, job domain.EmailJob) {
	err := q.sender.Send(ctx, email.Message{To: job.To, Subject: job.Subject, Body: job.Body, IsHTML: job.IsHTML})
	if err == nil {
		logger.Info("Email sent", "job_id", job.ID, "to", job.To)
		metrics.IncEmailJob("sent")
		return
	}

	if job.Retries >= q.maxRetries {
		logger.Error("Email failed after retries, dropping", "job_id", job.ID, "to", job.To, "retries", job.Retries, "error", err)
		metrics.IncEmailJob("dropped")
		return
	}
	job.Retries++
	metrics.IncEmailJob("retried")
	logger.Warn("Email send failed, re-queueing", "job_id", job.ID, "attempt", job.Retries, "max", q.maxRetries, "error", err)
	if pushErr := q.push(ctx, job); pushErr != nil {
		logger.Error("Failed to re-queue email job", "job_id", job.ID, "error", pushErr)
	}
}
