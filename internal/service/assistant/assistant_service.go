package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salesroute/internal/cortex"
	"salesroute/internal/model"
	"salesroute/internal/postgres"
	"salesroute/internal/service/route"
	"salesroute/internal/service/storage"
	"salesroute/internal/util"

	"go.uber.org/zap"
)

// NoTranscriptMessage replaces a citation transcript that could not be found
const NoTranscriptMessage = "No transcript available"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyQuery           = errors.New("query is empty")
)

// Agent answers a question with search and analyst tools
type Agent interface {
	Ask(ctx context.Context, query string, limit int) ([]cortex.Event, error)
}

// Mapper turns the addresses in a chat turn into a map view
type Mapper interface {
	MapFor(ctx context.Context, text string) (*route.MapResult, error)
}

// SalesStore reads transcripts and runs generated reports
type SalesStore interface {
	Transcript(ctx context.Context, conversationID string) (string, bool, error)
	RunReport(ctx context.Context, query string) ([]map[string]any, error)
}

// ConversationLoader loads a conversation that is no longer in memory
type ConversationLoader interface {
	Find(ctx context.Context, id string) (*model.Conversation, error)
}

// ChatResult is everything produced for one user turn. Collaborator failures are
// collected in Errors and do not abort the turn.
type ChatResult struct {
	ConversationID string           `json:"conversation_id"`
	Answer         string           `json:"answer"`
	SQL            string           `json:"sql,omitempty"`
	Citations      []model.Citation `json:"citations,omitempty"`
	Map            *route.MapResult `json:"map,omitempty"`
	Report         []map[string]any `json:"report,omitempty"`
	Errors         []string         `json:"errors,omitempty"`
}

func (r *ChatResult) addError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

// AssistantService runs chat turns against the sales agent
type AssistantService struct {
	conversations storage.Storage[string, *model.Conversation]
	loader        ConversationLoader
	agent         Agent
	mapper        Mapper
	sales         SalesStore
	searchLimit   int
	logger        *zap.Logger
}

// NewAssistantService creates the service. loader and sales may be nil.
func NewAssistantService(
	conversations storage.Storage[string, *model.Conversation],
	loader ConversationLoader,
	agent Agent,
	mapper Mapper,
	sales SalesStore,
	searchLimit int,
	logger *zap.Logger,
) *AssistantService {
	if searchLimit <= 0 {
		searchLimit = 1
	}
	return &AssistantService{
		conversations: conversations,
		loader:        loader,
		agent:         agent,
		mapper:        mapper,
		sales:         sales,
		searchLimit:   searchLimit,
		logger:        logger,
	}
}

// NewConversation starts an empty conversation
func (s *AssistantService) NewConversation() *model.Conversation {
	now := time.Now()
	conv := &model.Conversation{
		ID:        util.ShortUUID(),
		Messages:  []model.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations.Set(conv.ID, conv)
	s.logger.Info("conversation started", zap.String("conversation_id", conv.ID))
	return conv.Clone()
}

// Conversation returns a copy of the conversation, loading it from the database if needed
func (s *AssistantService) Conversation(ctx context.Context, id string) (*model.Conversation, error) {
	if conv, ok := s.conversations.Get(id); ok {
		return conv.Clone(), nil
	}
	if s.loader == nil || !util.IsShortUUID(id) {
		return nil, ErrConversationNotFound
	}

	conv, err := s.loader.Find(ctx, id)
	if errors.Is(err, postgres.ErrNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", id, err)
	}
	stored, err := s.conversations.Update(id, func(existing *model.Conversation, exists bool) (*model.Conversation, error) {
		if exists {
			return existing, nil
		}
		return conv, nil
	})
	if err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

// Chat runs one turn: ask the agent, resolve citations, map the addresses in the
// query and run the generated report
func (s *AssistantService) Chat(ctx context.Context, id, query string) (*ChatResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if _, err := s.Conversation(ctx, id); err != nil {
		return nil, err
	}
	if err := s.appendMessage(id, model.RoleUser, query); err != nil {
		return nil, err
	}

	result := &ChatResult{ConversationID: id}

	events, err := s.agent.Ask(ctx, query, s.searchLimit)
	if err != nil {
		s.logger.Error("agent request failed", zap.String("conversation_id", id), zap.Error(err))
		result.addError(err)
	} else {
		reply := cortex.ParseEvents(events)
		result.Answer = FormatAnswer(cortex.CleanCitationMarkers(reply.Text))
		result.SQL = reply.SQL
		result.Citations = s.resolveCitations(ctx, reply.Citations, result)

		if result.Answer != "" {
			if err := s.appendMessage(id, model.RoleAssistant, result.Answer); err != nil {
				return nil, err
			}
		}
	}

	mapResult, err := s.mapper.MapFor(ctx, query)
	if err != nil {
		s.logger.Warn("map planning failed", zap.String("conversation_id", id), zap.Error(err))
		result.addError(err)
	}
	result.Map = mapResult

	if result.SQL != "" && s.sales != nil {
		rows, err := s.sales.RunReport(ctx, result.SQL)
		if err != nil {
			s.logger.Warn("report query failed", zap.String("sql", result.SQL), zap.Error(err))
			result.addError(err)
		} else {
			result.Report = rows
		}
	}

	return result, nil
}

func (s *AssistantService) appendMessage(id string, role model.Role, content string) error {
	_, err := s.conversations.Update(id, func(conv *model.Conversation, exists bool) (*model.Conversation, error) {
		if !exists {
			return nil, ErrConversationNotFound
		}
		next := conv.Clone()
		next.Append(role, content)
		return next, nil
	})
	return err
}

func (s *AssistantService) resolveCitations(ctx context.Context, citations []model.Citation, result *ChatResult) []model.Citation {
	for i := range citations {
		citations[i].Transcript = NoTranscriptMessage
		if s.sales == nil || citations[i].DocID == "" {
			continue
		}

		text, found, err := s.sales.Transcript(ctx, citations[i].DocID)
		if err != nil {
			s.logger.Warn("transcript lookup failed", zap.String("doc_id", citations[i].DocID), zap.Error(err))
			result.addError(err)
			continue
		}
		if found {
			citations[i].Transcript = text
		}
	}
	return citations
}

// FormatAnswer puts each agent bullet on its own paragraph
func FormatAnswer(text string) string {
	return strings.ReplaceAll(text, "•", "\n\n")
}
