package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tildaslashalef/streamsect/internal/config"
	"github.com/tildaslashalef/streamsect/internal/extract"
	"github.com/tildaslashalef/streamsect/internal/loggy"
	"github.com/tildaslashalef/streamsect/internal/utils"
)

// ErrInvalidRole is returned when a message role is not user or assistant
var ErrInvalidRole = errors.New("invalid message role")

// Service provides transcript store operations
type Service struct {
	repo      Repository
	config    *config.Config
	logger    *loggy.Logger
	extractor *extract.Extractor
}

// NewService creates a new chat service
func NewService(db *sql.DB, cfg *config.Config, logger *loggy.Logger, extractor *extract.Extractor) *Service {
	repo := NewSQLRepository(db, logger)

	return &Service{
		repo:      repo,
		config:    cfg,
		logger:    logger,
		extractor: extractor,
	}
}

// NewServiceWithRepository creates a service with a custom repository implementation (for testing)
func NewServiceWithRepository(repo Repository, cfg *config.Config, logger *loggy.Logger, extractor *extract.Extractor) *Service {
	return &Service{
		repo:      repo,
		config:    cfg,
		logger:    logger,
		extractor: extractor,
	}
}

// GetRepository returns the repository implementation
func (s *Service) GetRepository() Repository {
	return s.repo
}

// CreateSession creates a new session. A blank title is auto-generated when
// auto-titling is enabled.
func (s *Service) CreateSession(ctx context.Context, title string) (*Session, error) {
	title = strings.TrimSpace(title)
	if title == "" && s.config.Chat.AutoTitle {
		title = utils.GenerateSessionTitle()
	}

	session := NewSession(title)

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Created new session", "id", session.ID, "title", session.Title)
	return session, nil
}

// GetSession retrieves a session by ID
func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	session, err := s.repo.GetSessionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListSessions returns sessions ordered by most recent activity
func (s *Service) ListSessions(ctx context.Context, params PaginationParams) ([]*Session, error) {
	sessions, err := s.repo.ListSessions(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// RenameSession changes a session's title
func (s *Service) RenameSession(ctx context.Context, id, title string) (*Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("session title cannot be empty")
	}

	session, err := s.repo.GetSessionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.SetTitle(title)

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

// DeleteSession deletes a session and all its messages
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if err := s.repo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Info("Deleted session", "id", id)
	return nil
}

// AppendMessage adds a message to a session and bumps the session's activity
func (s *Service) AppendMessage(ctx context.Context, sessionID string, role Role, content, model string) (*Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	// Resolve the session first so a bad ID surfaces as a clean not-found
	// error rather than a foreign key violation
	if _, err := s.repo.GetSessionByID(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	message := NewMessage(sessionID, role, content, model)

	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	if err := s.repo.TouchSession(ctx, sessionID, message.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}

	return message, nil
}

// GetMessages returns all messages for a session in chronological order
func (s *Service) GetMessages(ctx context.Context, sessionID string) ([]*Message, error) {
	if _, err := s.repo.GetSessionByID(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	messages, err := s.repo.GetMessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

// GetParsedMessage loads a single message and decomposes assistant content
// into sections
func (s *Service) GetParsedMessage(ctx context.Context, id string) (*ParsedMessage, error) {
	message, err := s.repo.GetMessageByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return s.parseMessage(message), nil
}

// GetParsedMessages loads a session's messages and decomposes assistant
// content into sections. Raw transcripts are the stored form; decomposition
// happens on every load.
func (s *Service) GetParsedMessages(ctx context.Context, sessionID string) ([]*ParsedMessage, error) {
	messages, err := s.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	parsed := make([]*ParsedMessage, 0, len(messages))
	for _, message := range messages {
		parsed = append(parsed, s.parseMessage(message))
	}

	s.logger.Debug("Parsed session messages", "session_id", sessionID, "count", len(parsed))
	return parsed, nil
}

// SearchMessages searches message content for the given term
func (s *Service) SearchMessages(ctx context.Context, term string, params PaginationParams) ([]*Message, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("search term cannot be empty")
	}

	messages, err := s.repo.SearchMessages(ctx, term, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	return messages, nil
}

// ImportTranscript stores a transcript file as an assistant turn. When
// sessionID is empty a new session titled after the file is created.
func (s *Service) ImportTranscript(ctx context.Context, sessionID, path, model string) (*Session, *Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return nil, nil, fmt.Errorf("transcript file is empty: %s", path)
	}

	if model == "" {
		model = s.config.Chat.DefaultModel
	}

	var session *Session
	if sessionID == "" {
		base := filepath.Base(path)
		title := utils.SanitizeTitle(strings.TrimSuffix(base, filepath.Ext(base)))
		session, err = s.CreateSession(ctx, title)
		if err != nil {
			return nil, nil, err
		}
	} else {
		session, err = s.GetSession(ctx, sessionID)
		if err != nil {
			return nil, nil, err
		}
	}

	message, err := s.AppendMessage(ctx, session.ID, RoleAssistant, content, model)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Imported transcript",
		"session_id", session.ID,
		"message_id", message.ID,
		"path", path,
		"bytes", len(data),
	)

	return session, message, nil
}

// parseMessage decomposes assistant content; user messages pass through
func (s *Service) parseMessage(message *Message) *ParsedMessage {
	parsed := &ParsedMessage{Message: message}
	if message.Role == RoleAssistant {
		parsed.Sections = s.extractor.Parse(message.Content)
	}
	return parsed
}
