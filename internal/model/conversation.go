package model

import (
	"time"

	"gorm.io/gorm"
)

// Role of a chat message author
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation is the in-memory chat session
type Conversation struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Append adds a message and bumps UpdatedAt
func (c *Conversation) Append(role Role, content string) {
	now := time.Now()
	c.Messages = append(c.Messages, Message{Role: role, Content: content, CreatedAt: now})
	c.UpdatedAt = now
}

// Clone returns a copy that does not share the message slice
func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.Messages = append([]Message(nil), c.Messages...)
	return &cp
}

// ConversationPG is the GORM model for a conversation
type ConversationPG struct {
	ID       string      `gorm:"primaryKey;size:32"`
	Messages []MessagePG `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the table name
func (ConversationPG) TableName() string {
	return "conversations"
}

// MessagePG is the GORM model for a chat message. Seq keeps the original order.
type MessagePG struct {
	ConversationID string `gorm:"primaryKey;size:32"`
	Seq            int    `gorm:"primaryKey"`
	Role           string `gorm:"size:16;not null"`
	Content        string `gorm:"type:text;not null"`
	CreatedAt      time.Time
}

// TableName overrides the table name
func (MessagePG) TableName() string {
	return "conversation_messages"
}

// ToPG converts the in-memory conversation to its GORM model
func (c *Conversation) ToPG() *ConversationPG {
	pg := &ConversationPG{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Messages:  make([]MessagePG, len(c.Messages)),
	}
	for i, m := range c.Messages {
		pg.Messages[i] = MessagePG{
			ConversationID: c.ID,
			Seq:            i,
			Role:           string(m.Role),
			Content:        m.Content,
			CreatedAt:      m.CreatedAt,
		}
	}
	return pg
}

// ConversationFromPG creates a Conversation from ConversationPG
func ConversationFromPG(pg *ConversationPG) *Conversation {
	c := &Conversation{
		ID:        pg.ID,
		CreatedAt: pg.CreatedAt,
		UpdatedAt: pg.UpdatedAt,
		Messages:  make([]Message, len(pg.Messages)),
	}
	for i, m := range pg.Messages {
		c.Messages[i] = Message{Role: Role(m.Role), Content: m.Content, CreatedAt: m.CreatedAt}
	}
	return c
}

// Citation is a search result referenced by the agent reply
type Citation struct {
	SourceID   string `json:"source_id"`
	DocID      string `json:"doc_id"`
	Transcript string `json:"transcript,omitempty"`
}
