package worker

import (
	"context"
	"time"

	"salesroute/internal/config"
	"salesroute/internal/model"
	"salesroute/internal/service/storage"

	"go.uber.org/zap"
)

const conversationBatchSize = 200

// ConversationSaver writes conversations to durable storage
type ConversationSaver interface {
	SaveAll(ctx context.Context, conversations []*model.Conversation) error
}

// ConversationWorker flushes dirty conversations from memory to PostgreSQL
type ConversationWorker struct {
	storage  storage.Storage[string, *model.Conversation]
	saver    ConversationSaver
	interval time.Duration
	logger   *zap.Logger
}

func NewConversationWorker(
	store storage.Storage[string, *model.Conversation],
	saver ConversationSaver,
	interval time.Duration,
	logger *zap.Logger,
) *ConversationWorker {
	if interval <= 0 {
		interval = config.ConversationFlushInterval
	}
	return &ConversationWorker{storage: store, saver: saver, interval: interval, logger: logger}
}

// Run flushes on every tick until ctx is done, then flushes once more
func (w *ConversationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("conversation worker started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ticker.C:
			if err := w.Flush(ctx); err != nil {
				w.logger.Error("error saving conversations to PostgreSQL", zap.Error(err))
			}
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
			if err := w.Flush(flushCtx); err != nil {
				w.logger.Error("final conversation flush failed", zap.Error(err))
			}
			cancel()
			w.logger.Info("conversation worker stopped")
			return
		}
	}
}

// Flush saves dirty conversations in batches. Dirty flags are cleared only after a
// successful save, and only for conversations not modified in the meantime.
func (w *ConversationWorker) Flush(ctx context.Context) error {
	snap := w.storage.GetDirty()
	if len(snap.Values) == 0 {
		return nil
	}

	conversations := make([]*model.Conversation, 0, len(snap.Values))
	for _, c := range snap.Values {
		conversations = append(conversations, c)
	}

	for i := 0; i < len(conversations); i += conversationBatchSize {
		end := min(i+conversationBatchSize, len(conversations))
		if err := w.saver.SaveAll(ctx, conversations[i:end]); err != nil {
			return err
		}
	}

	w.storage.ClearDirty(snap)
	w.logger.Debug("saved conversations to PostgreSQL", zap.Int("count", len(conversations)))
	return nil
}
