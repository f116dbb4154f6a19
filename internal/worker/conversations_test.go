package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"salesroute/internal/model"
	"salesroute/internal/service/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSaver struct {
	mu    sync.Mutex
	saved map[string]int
	err   error
}

func (s *recordingSaver) SaveAll(_ context.Context, conversations []*model.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.saved == nil {
		s.saved = map[string]int{}
	}
	for _, c := range conversations {
		s.saved[c.ID] = len(c.Messages)
	}
	return nil
}

func (s *recordingSaver) count(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.saved[id]
	return n, ok
}

func conversation(id string, messages int) *model.Conversation {
	c := &model.Conversation{ID: id}
	for i := 0; i < messages; i++ {
		c.Append(model.RoleUser, "hello")
	}
	return c
}

func TestFlushSavesAndClearsDirty(t *testing.T) {
	store := storage.NewMemoryStorage[string, *model.Conversation]()
	store.Set("a", conversation("a", 1))
	store.Set("b", conversation("b", 2))

	saver := &recordingSaver{}
	w := NewConversationWorker(store, saver, time.Minute, zap.NewNop())

	require.NoError(t, w.Flush(context.Background()))
	n, ok := saver.count("b")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Empty(t, store.GetDirty().Values)
}

func TestFlushKeepsDirtyOnError(t *testing.T) {
	store := storage.NewMemoryStorage[string, *model.Conversation]()
	store.Set("a", conversation("a", 1))

	w := NewConversationWorker(store, &recordingSaver{err: errors.New("db down")}, time.Minute, zap.NewNop())

	assert.Error(t, w.Flush(context.Background()))
	assert.Len(t, store.GetDirty().Values, 1)
}

func TestFlushNothingDirty(t *testing.T) {
	store := storage.NewMemoryStorage[string, *model.Conversation]()
	saver := &recordingSaver{err: errors.New("should not be called")}
	w := NewConversationWorker(store, saver, time.Minute, zap.NewNop())

	assert.NoError(t, w.Flush(context.Background()))
}

func TestRunFlushesOnShutdown(t *testing.T) {
	store := storage.NewMemoryStorage[string, *model.Conversation]()
	saver := &recordingSaver{}
	w := NewConversationWorker(store, saver, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	wg := StartAllWorkers(ctx, zap.NewNop(), w)

	store.Set("late", conversation("late", 3))
	cancel()
	wg.Wait()

	n, ok := saver.count("late")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}
