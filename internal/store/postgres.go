package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	errUniqueViolation     pq.ErrorCode = "23505"
	errForeignKeyViolation pq.ErrorCode = "23503"
)

const userColumns = `id, uid, COALESCE(linkedin_id, ''), email, first_name, last_name, picture, headline, invited, created_at, last_login`

// dbtx covers both *sql.DB and *sql.Tx.
type dbtx interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

// PostgresStore implements the Store interface using a Postgres database.
type PostgresStore struct {
	db dbtx
}

func NewPostgresDB(cfg PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetUserByUID(ctx context.Context, uid string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE uid = $1`, uid)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByLinkedInID(ctx context.Context, linkedinID string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE linkedin_id = $1`, linkedinID)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// CreateUser inserts a new account. Empty linkedin_id and password are stored
// as NULL so accounts without an external identity do not collide on the
// linkedin_id unique constraint. A duplicate email or linkedin_id surfaces as
// ErrExists.
func (s *PostgresStore) CreateUser(ctx context.Context, r CreateUserRequest) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (uid, linkedin_id, email, first_name, last_name, picture, headline, password, invited)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
		 RETURNING `+userColumns,
		r.UID,
		r.LinkedInID,
		r.Email,
		r.FirstName,
		r.LastName,
		r.Picture,
		r.Headline,
		r.Password,
		r.Invited)

	usr, err := scanUser(row)
	if err != nil {
		if isPqErr(err, errUniqueViolation) {
			return User{}, ErrExists
		}

		return User{}, fmt.Errorf("insert user: %w", err)
	}

	return usr, nil
}

// RefreshUserProfile updates the mutable profile fields and last_login.
// Empty request fields keep the stored value, matching provider claims that
// may be absent on a later login.
func (s *PostgresStore) RefreshUserProfile(ctx context.Context, r RefreshUserProfileRequest) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE users
		 SET first_name = COALESCE(NULLIF($2, ''), first_name),
		     last_name  = COALESCE(NULLIF($3, ''), last_name),
		     picture    = COALESCE(NULLIF($4, ''), picture),
		     headline   = COALESCE(NULLIF($5, ''), headline),
		     last_login = now()
		 WHERE uid = $1
		 RETURNING `+userColumns,
		r.UID,
		r.FirstName,
		r.LastName,
		r.Picture,
		r.Headline)

	usr, err := scanUser(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrNotFound
		}

		return User{}, fmt.Errorf("refresh user profile: %w", err)
	}

	return usr, nil
}

// AttachLinkedInID links an external identity to an existing account,
// refreshes its profile fields and clears the password.
func (s *PostgresStore) AttachLinkedInID(ctx context.Context, r AttachLinkedInIDRequest) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE users
		 SET linkedin_id = $2,
		     first_name  = COALESCE(NULLIF($3, ''), first_name),
		     last_name   = COALESCE(NULLIF($4, ''), last_name),
		     picture     = COALESCE(NULLIF($5, ''), picture),
		     headline    = COALESCE(NULLIF($6, ''), headline),
		     password    = NULL,
		     last_login  = now()
		 WHERE uid = $1
		 RETURNING `+userColumns,
		r.UID,
		r.LinkedInID,
		r.FirstName,
		r.LastName,
		r.Picture,
		r.Headline)

	usr, err := scanUser(row)
	if err != nil {
		if isPqErr(err, errUniqueViolation) {
			return User{}, ErrExists
		}
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrNotFound
		}

		return User{}, fmt.Errorf("attach linkedin id: %w", err)
	}

	return usr, nil
}

func (s *PostgresStore) ListUsersExcept(ctx context.Context, uid string) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE uid <> $1 ORDER BY first_name ASC`, uid)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var usr User
		if err := rows.Scan(
			&usr.ID,
			&usr.UID,
			&usr.LinkedInID,
			&usr.Email,
			&usr.FirstName,
			&usr.LastName,
			&usr.Picture,
			&usr.Headline,
			&usr.Invited,
			&usr.CreatedAt,
			&usr.LastLogin); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, usr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (s *PostgresStore) InsertMessage(ctx context.Context, r InsertMessageRequest) (Message, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO messages (sender_id, receiver_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, sender_id, receiver_id, content, read, created_at`,
		r.SenderID,
		r.ReceiverID,
		r.Content)

	var msg Message
	err := row.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Read, &msg.CreatedAt)
	if err != nil {
		if isPqErr(err, errForeignKeyViolation) {
			return Message{}, ErrNotFound
		}

		return Message{}, fmt.Errorf("insert message: %w", err)
	}

	return msg, nil
}

// GetConversation returns every message between the two users in either
// direction, oldest first. Ties on created_at fall back to insertion order
// so repeated calls always see the same sequence.
func (s *PostgresStore) GetConversation(ctx context.Context, r ConversationRequest) ([]ConversationMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.sender_id, m.receiver_id, m.content, m.read, m.created_at,
		        s.uid, s.first_name, s.last_name, s.picture,
		        r.uid, r.first_name, r.last_name, r.picture
		 FROM messages AS m
		 JOIN users AS s ON m.sender_id = s.id
		 JOIN users AS r ON m.receiver_id = r.id
		 WHERE (s.uid = $1 AND r.uid = $2) OR (s.uid = $2 AND r.uid = $1)
		 ORDER BY m.created_at ASC, m.id ASC`,
		r.UserA, r.UserB)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	var msgs []ConversationMessage
	for rows.Next() {
		var msg ConversationMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.SenderID,
			&msg.ReceiverID,
			&msg.Content,
			&msg.Read,
			&msg.CreatedAt,
			&msg.Sender.UID,
			&msg.Sender.FirstName,
			&msg.Sender.LastName,
			&msg.Sender.Picture,
			&msg.Receiver.UID,
			&msg.Receiver.FirstName,
			&msg.Receiver.LastName,
			&msg.Receiver.Picture); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return msgs, nil
}

// MarkMessagesRead flips read on unread messages from sender to receiver and
// reports how many rows changed. Calling it again with nothing to mark is a
// no-op.
func (s *PostgresStore) MarkMessagesRead(ctx context.Context, r MarkReadRequest) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages
		 SET read = TRUE
		 WHERE read = FALSE
		   AND sender_id   = (SELECT id FROM users WHERE uid = $1)
		   AND receiver_id = (SELECT id FROM users WHERE uid = $2)`,
		r.SenderUID, r.ReceiverUID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return n, nil
}

// WithTx executes the given function within a database transaction.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return errors.New("already in transaction")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	sx := &PostgresStore{db: tx}
	if err = fn(sx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback: %v after: %w", rbErr, err)
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func scanUser(row *sql.Row) (User, error) {
	var usr User
	err := row.Scan(
		&usr.ID,
		&usr.UID,
		&usr.LinkedInID,
		&usr.Email,
		&usr.FirstName,
		&usr.LastName,
		&usr.Picture,
		&usr.Headline,
		&usr.Invited,
		&usr.CreatedAt,
		&usr.LastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}

		return User{}, err
	}

	return usr, nil
}

func isPqErr(err error, code pq.ErrorCode) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}

	return pqErr.Code == code
}
