package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/email"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func newTestQueue(t *testing.T, sender email.Sender, maxRetries int) (*EmailQueue, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	q := NewEmailQueue(client, sender, "email-queue", 1, maxRetries)
	q.pollTimeout = 200 * time.Millisecond
	return q, s
}

func TestEmailQueue_EnqueueAndProcess(t *testing.T) {
	sender := &recordingSender{}
	q, _ := newTestQueue(t, sender, 3)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "jane@example.com", "Rental accepted", "Your rental was accepted"))
	require.NoError(t, q.Enqueue(ctx, "bob@example.com", "Rental rejected", "Your rental was rejected"))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ok, err := q.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = q.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "jane@example.com", sender.sent[0].To)
	assert.Equal(t, "bob@example.com", sender.sent[1].To)
}

func TestEmailQueue_RetryThenDrop(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	q, s := newTestQueue(t, sender, 1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "jane@example.com", "Subject", "Body"))

	// first failure re-queues with retries=1
	_, err := q.ProcessNext(ctx)
	require.NoError(t, err)
	items, err := s.List("email-queue")
	require.NoError(t, err)
	require.Len(t, items, 1)

	var job domain.EmailJob
	require.NoError(t, json.Unmarshal([]byte(items[0]), &job))
	assert.Equal(t, 1, job.Retries)

	// second failure exceeds max retries and the job is dropped
	_, err = q.ProcessNext(ctx)
	require.NoError(t, err)
	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestEmailQueue_MalformedJobDropped(t *testing.T) {
	sender := &recordingSender{}
	q, s := newTestQueue(t, sender, 3)

	_, err := s.Lpush("email-queue", "{not json")
	require.NoError(t, err)

	ok, err := q.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, sender.count())
}

func TestEmailQueue_StartStops(t *testing.T) {
	sender := &recordingSender{}
	q, _ := newTestQueue(t, sender, 3)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, q.Enqueue(ctx, "jane@example.com", "Subject", "Body"))
	q.Start(ctx)

	assert.Eventually(t, func() bool { return sender.count() == 1 }, 2*time.Second, 20*time.Millisecond)
	cancel()
	q.Wait()
}
