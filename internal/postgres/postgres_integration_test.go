//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"salesroute/internal/model"
	"salesroute/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupDatabase starts a PostgreSQL container, migrates it and seeds the sales tables
func setupDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "salesroute_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=salesroute_test sslmode=disable", host, port.Port())

	var db *gorm.DB
	require.Eventually(t, func() bool {
		db, err = Init(dsn, zap.NewNop())
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, db.Exec(`CREATE TABLE sales_conversations (
		conversation_id TEXT PRIMARY KEY,
		region          TEXT NOT NULL,
		amount          INTEGER NOT NULL,
		transcript_text TEXT
	)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO sales_conversations VALUES
		('CONV001', 'east', 100, 'Hello, this is Sarah from Acme'),
		('CONV002', 'east', 250, NULL),
		('CONV003', 'west', 75, 'Following up on the demo')`).Error)

	return db
}

func TestConversationRepository(t *testing.T) {
	db := setupDatabase(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	t.Run("find missing", func(t *testing.T) {
		_, err := repo.Find(ctx, util.ShortUUID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save and append", func(t *testing.T) {
		conv := &model.Conversation{ID: util.ShortUUID(), CreatedAt: time.Now()}
		conv.Append(model.RoleUser, "How did the Acme deal go?")
		require.NoError(t, repo.SaveAll(ctx, []*model.Conversation{conv}))

		next := conv.Clone()
		next.Append(model.RoleAssistant, "It closed last week.")
		next.Append(model.RoleUser, "Map 1 Main St")
		require.NoError(t, repo.SaveAll(ctx, []*model.Conversation{next}))

		// saving the same state again is a no-op
		require.NoError(t, repo.SaveAll(ctx, []*model.Conversation{next}))

		loaded, err := repo.Find(ctx, conv.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Messages, 3)
		assert.Equal(t, model.RoleUser, loaded.Messages[0].Role)
		assert.Equal(t, "How did the Acme deal go?", loaded.Messages[0].Content)
		assert.Equal(t, model.RoleAssistant, loaded.Messages[1].Role)
		assert.Equal(t, "Map 1 Main St", loaded.Messages[2].Content)
	})

	t.Run("save empty batch", func(t *testing.T) {
		assert.NoError(t, repo.SaveAll(ctx, nil))
	})
}

func TestSalesStoreTranscript(t *testing.T) {
	store := NewSalesStore(setupDatabase(t))
	ctx := context.Background()

	text, found, err := store.Transcript(ctx, "CONV001")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Hello, this is Sarah from Acme", text)

	_, found, err = store.Transcript(ctx, "CONV002")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = store.Transcript(ctx, "CONV404")
	require.NoError(t, err)
	assert.False(t, found)

	// the id is a bind parameter, not SQL
	_, found, err = store.Transcript(ctx, "x' OR '1'='1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSalesStoreRunReport(t *testing.T) {
	db := setupDatabase(t)
	store := NewSalesStore(db)
	ctx := context.Background()

	rows, err := store.RunReport(ctx, "SELECT region, SUM(amount) AS total FROM sales_conversations GROUP BY region ORDER BY region;")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "east", rows[0]["region"])
	assert.EqualValues(t, 350, rows[0]["total"])
	assert.Equal(t, "west", rows[1]["region"])

	_, err = store.RunReport(ctx, "DELETE FROM sales_conversations")
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM sales_conversations").Scan(&count).Error)
	assert.EqualValues(t, 3, count)

	_, err = store.RunReport(ctx, " ; ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}
