package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/tildaslashalef/streamsect/internal/loggy"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")

	// ErrMessageNotFound is returned when a message is not found
	ErrMessageNotFound = errors.New("message not found")
)

// PaginationParams defines parameters for paginated queries
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams creates a new PaginationParams instance with default values
func NewPaginationParams(page, limit int) PaginationParams {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10 // Default to 10 items per page
	}
	if limit > 100 {
		limit = 100 // Cap at 100 items per page
	}
	return PaginationParams{
		Page:  page,
		Limit: limit,
	}
}

// Repository defines the interface for transcript persistence operations
type Repository interface {
	// Session operations
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByID(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context, params PaginationParams) ([]*Session, error)
	UpdateSession(ctx context.Context, session *Session) error
	TouchSession(ctx context.Context, id string, at time.Time) error
	DeleteSession(ctx context.Context, id string) error

	// Message operations
	CreateMessage(ctx context.Context, message *Message) error
	GetMessageByID(ctx context.Context, id string) (*Message, error)
	GetMessagesBySession(ctx context.Context, sessionID string) ([]*Message, error)
	SearchMessages(ctx context.Context, searchTerm string, params PaginationParams) ([]*Message, error)
}

// SQLRepository implements Repository using SQLite database
type SQLRepository struct {
	db      *sql.DB
	logger  *loggy.Logger
	builder sq.StatementBuilderType
}

// NewSQLRepository creates a new transcript SQL repository
func NewSQLRepository(db *sql.DB, logger *loggy.Logger) Repository {
	return &SQLRepository{
		db:      db,
		logger:  logger,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

// CreateSession saves a new session to the database
func (r *SQLRepository) CreateSession(ctx context.Context, session *Session) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now
	}

	// Timestamps are stored as RFC3339 strings
	createdAt := session.CreatedAt.UTC().Format(time.RFC3339)
	updatedAt := session.UpdatedAt.UTC().Format(time.RFC3339)

	query, args, err := r.builder.
		Insert("sessions").
		Columns(
			"id",
			"title",
			"created_at",
			"updated_at",
		).
		Values(
			session.ID,
			session.Title,
			createdAt,
			updatedAt,
		).
		ToSql()

	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when creating session")
	}

	r.logger.Info("Created session", "id", session.ID, "title", session.Title)
	return nil
}

// GetSessionByID retrieves a session by its ID
func (r *SQLRepository) GetSessionByID(ctx context.Context, id string) (*Session, error) {
	query, args, err := r.builder.
		Select(
			"id",
			"title",
			"created_at",
			"updated_at",
		).
		From("sessions").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	return session, nil
}

// ListSessions returns sessions ordered by most recent activity
func (r *SQLRepository) ListSessions(ctx context.Context, params PaginationParams) ([]*Session, error) {
	query := r.builder.
		Select(
			"id",
			"title",
			"created_at",
			"updated_at",
		).
		From("sessions").
		OrderBy("updated_at DESC")

	// Add pagination
	if params.Limit > 0 {
		query = query.Limit(uint64(params.Limit))
		if params.Page > 0 {
			offset := uint64((params.Page - 1) * params.Limit)
			query = query.Offset(offset)
		}
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building paginated query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("querying for sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSessionFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return sessions, nil
}

// UpdateSession updates an existing session
func (r *SQLRepository) UpdateSession(ctx context.Context, session *Session) error {
	updatedAt := session.UpdatedAt.UTC().Format(time.RFC3339)

	query, args, err := r.builder.
		Update("sessions").
		Set("title", session.Title).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": session.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	r.logger.Info("Updated session", "id", session.ID, "title", session.Title)
	return nil
}

// TouchSession bumps a session's updated_at so it sorts as recently active
func (r *SQLRepository) TouchSession(ctx context.Context, id string, at time.Time) error {
	query, args, err := r.builder.
		Update("sessions").
		Set("updated_at", at.UTC().Format(time.RFC3339)).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("building touch query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteSession deletes a session and all its messages by its ID
func (r *SQLRepository) DeleteSession(ctx context.Context, id string) error {
	// Start a transaction to ensure atomicity
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := r.builder.
		Delete("sessions").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}

	// Execute within transaction; messages cascade via foreign key
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		err = ErrSessionNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	r.logger.Info("Deleted session and all associated data",
		"id", id,
		"cascade_deleted", "messages")
	return nil
}

// CreateMessage saves a new message to the database
func (r *SQLRepository) CreateMessage(ctx context.Context, message *Message) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	createdAt := message.CreatedAt.UTC().Format(time.RFC3339)

	query, args, err := r.builder.
		Insert("messages").
		Columns(
			"id",
			"session_id",
			"role",
			"content",
			"model",
			"created_at",
		).
		Values(
			message.ID,
			message.SessionID,
			string(message.Role),
			message.Content,
			message.Model,
			createdAt,
		).
		ToSql()

	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when creating message")
	}

	r.logger.Debug("Created message", "id", message.ID, "session_id", message.SessionID, "role", message.Role)
	return nil
}

// GetMessageByID retrieves a message by its ID
func (r *SQLRepository) GetMessageByID(ctx context.Context, id string) (*Message, error) {
	query, args, err := r.builder.
		Select(
			"id",
			"session_id",
			"role",
			"content",
			"model",
			"created_at",
		).
		From("messages").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("scanning message: %w", err)
	}

	return message, nil
}

// GetMessagesBySession returns all messages for a session in chronological order
func (r *SQLRepository) GetMessagesBySession(ctx context.Context, sessionID string) ([]*Message, error) {
	query, args, err := r.builder.
		Select(
			"id",
			"session_id",
			"role",
			"content",
			"model",
			"created_at",
		).
		From("messages").
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying for messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		message, err := scanMessageFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return messages, nil
}

// SearchMessages searches message content for the given term
func (r *SQLRepository) SearchMessages(ctx context.Context, searchTerm string, params PaginationParams) ([]*Message, error) {
	query := r.builder.
		Select(
			"id",
			"session_id",
			"role",
			"content",
			"model",
			"created_at",
		).
		From("messages").
		Where(sq.Like{"content": "%" + searchTerm + "%"}).
		OrderBy("created_at DESC")

	if params.Limit > 0 {
		query = query.Limit(uint64(params.Limit))
		if params.Page > 0 {
			offset := uint64((params.Page - 1) * params.Limit)
			query = query.Offset(offset)
		}
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building search query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("searching for messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		message, err := scanMessageFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return messages, nil
}

// Private helper functions

// scanSession scans a session from a row
func scanSession(row *sql.Row) (*Session, error) {
	var session Session
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&session.ID,
		&session.Title,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	// Parse the time strings
	session.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	session.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &session, nil
}

// scanSessionFromRows scans a session from a rows object
func scanSessionFromRows(rows *sql.Rows) (*Session, error) {
	var session Session
	var createdAtStr, updatedAtStr string

	err := rows.Scan(
		&session.ID,
		&session.Title,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	session.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	session.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &session, nil
}

// scanMessage scans a message from a row
func scanMessage(row *sql.Row) (*Message, error) {
	var message Message
	var role string
	var createdAtStr string

	err := row.Scan(
		&message.ID,
		&message.SessionID,
		&role,
		&message.Content,
		&message.Model,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	message.Role = Role(role)

	message.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &message, nil
}

// scanMessageFromRows scans a message from a rows object
func scanMessageFromRows(rows *sql.Rows) (*Message, error) {
	var message Message
	var role string
	var createdAtStr string

	err := rows.Scan(
		&message.ID,
		&message.SessionID,
		&role,
		&message.Content,
		&message.Model,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	message.Role = Role(role)

	message.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &message, nil
}
