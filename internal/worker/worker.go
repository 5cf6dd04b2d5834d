package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"shadowsync/internal/config"
	"shadowsync/internal/events"
	"shadowsync/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Worker consumes the engine's outcome events and keeps rolling analytics
// counters. It is a pure observer; the shadow store is never written here.
type Worker struct {
	config *config.Config
	logger *logger.Logger
	reader *kafka.Reader

	mu     sync.Mutex
	counts map[events.Type]int64
}

func New(cfg *config.Config, logger *logger.Logger) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "shadowsync-analytics",
		Topic:          events.Topic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config: cfg,
		logger: logger,
		reader: reader,
		counts: make(map[events.Type]int64),
	}
}

func (w *Worker) Start() {
	w.logger.Info("Analytics worker started, listening for events...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		var event events.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse event: %v", err)
			continue
		}

		w.record(event)
	}
}

func (w *Worker) record(event events.Event) {
	w.mu.Lock()
	w.counts[event.Type]++
	total := w.counts[event.Type]
	w.mu.Unlock()

	switch event.Type {
	case events.TypeSyncCompleted:
		w.logger.Info("Batch %s completed: %v (pass #%d)", event.BatchID, event.Data, total)
	case events.TypeOrderRecorded:
		w.logger.Info("Order recorded: %v (total orders seen: %d)", event.Data, total)
	default:
		w.logger.Debug("Event %s for product %s (seen %d)", event.Type, event.ExternalProductID, total)
	}
}

// Counts returns a snapshot of the per-type event counters.
func (w *Worker) Counts() map[events.Type]int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot := make(map[events.Type]int64, len(w.counts))
	for t, n := range w.counts {
		snapshot[t] = n
	}
	return snapshot
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
