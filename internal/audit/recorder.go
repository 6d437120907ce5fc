package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"kumbam-backend/internal/client"
	"kumbam-backend/internal/models"
	"kumbam-backend/internal/util"
)

const (
	bufferSize    = 1024
	batchSize     = 100
	flushInterval = 5 * time.Second
)

const createTableStmt = `
	CREATE TABLE IF NOT EXISTS auth_events (
		event_time DateTime,
		event_type String,
		email String,
		success UInt8,
		detail String
	) ENGINE = MergeTree()
	ORDER BY (event_time, event_type)`

const insertStmt = `INSERT INTO auth_events (event_time, event_type, email, success, detail)`

// Recorder writes the auth audit trail to ClickHouse. Events are buffered
// and flushed in batches from a background goroutine; when the buffer is
// full the event is dropped rather than blocking the request path. A nil
// Recorder is safe to call.
type Recorder struct {
	clickhouse *client.ClickHouseClient
	events     chan models.AuthEvent
	done       chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

func NewRecorder(clickhouse *client.ClickHouseClient) (*Recorder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := clickhouse.Exec(ctx, createTableStmt); err != nil {
		return nil, err
	}

	r := &Recorder{
		clickhouse: clickhouse,
		events:     make(chan models.AuthEvent, bufferSize),
		done:       make(chan struct{}),
	}

	r.wg.Add(1)
	go r.flushLoop()

	return r, nil
}

// Record enqueues an audit event. Never blocks; drops with a warning when
// the buffer is full.
func (r *Recorder) Record(eventType, email string, success bool, detail string) {
	if r == nil {
		return
	}

	ev := models.AuthEvent{
		EventTime: time.Now().UTC(),
		EventType: eventType,
		Email:     email,
		Success:   success,
		Detail:    detail,
	}

	select {
	case r.events <- ev:
	default:
		util.Warn("Audit buffer full, dropping event",
			zap.String("event_type", eventType),
			zap.String("email", email))
	}
}

func (r *Recorder) flushLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	pending := make([]models.AuthEvent, 0, batchSize)

	for {
		select {
		case ev := <-r.events:
			pending = append(pending, ev)
			if len(pending) >= batchSize {
				r.flush(pending)
				pending = pending[:0]
			}
		case <-ticker.C:
			if len(pending) > 0 {
				r.flush(pending)
				pending = pending[:0]
			}
		case <-r.done:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case ev := <-r.events:
					pending = append(pending, ev)
				default:
					if len(pending) > 0 {
						r.flush(pending)
					}
					return
				}
			}
		}
	}
}

func (r *Recorder) flush(events []models.AuthEvent) {
	rows := make([][]interface{}, 0, len(events))
	for _, ev := range events {
		success := uint8(0)
		if ev.Success {
			success = 1
		}
		rows = append(rows, []interface{}{ev.EventTime, ev.EventType, ev.Email, success, ev.Detail})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := r.clickhouse.BatchInsert(ctx, insertStmt, rows); err != nil {
		util.Error("Failed to flush audit events",
			zap.Int("count", len(rows)),
			zap.Error(err))
		return
	}

	util.Debug("Flushed audit events", zap.Int("count", len(rows)))
}

// Close flushes any buffered events and stops the background flusher.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}
