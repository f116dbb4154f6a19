package postgres

import (
	"context"
	"errors"

	"salesroute/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a conversation is not stored
var ErrNotFound = errors.New("conversation not found")

const messageBatchSize = 500

// ConversationRepository persists conversations and their messages
type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// SaveAll upserts conversations in one transaction. Messages are append-only and keyed by
// (conversation_id, seq), so already stored ones are left as they are.
func (r *ConversationRepository) SaveAll(ctx context.Context, conversations []*model.Conversation) error {
	if len(conversations) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range conversations {
			pg := c.ToPG()
			messages := pg.Messages
			pg.Messages = nil

			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
			}).Create(pg).Error
			if err != nil {
				return err
			}

			if len(messages) == 0 {
				continue
			}
			err = tx.Clauses(clause.OnConflict{DoNothing: true}).
				CreateInBatches(messages, messageBatchSize).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Find loads a conversation with its messages in order
func (r *ConversationRepository) Find(ctx context.Context, id string) (*model.Conversation, error) {
	var pg model.ConversationPG
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		First(&pg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ConversationFromPG(&pg), nil
}
