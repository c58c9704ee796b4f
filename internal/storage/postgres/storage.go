// Package postgres stores drafts and credentials in PostgreSQL through the pgx
// database/sql driver. The schema is managed by embedded goose migrations.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/storage"
	"github.com/mcoot/bodaform/internal/storage/postgres/migrations"
)

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens the database, verifies the connection and applies migrations
func New(ctx context.Context, cfg Config) (*Storage, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = DefaultConfig().ConnectTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	s := NewWithDB(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return s, nil
}

// NewWithDB wraps an existing connection without running migrations (for testing)
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Migrate applies all pending schema migrations
func (s *Storage) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, ".")
}

// Close closes the database connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Draft operations

func (s *Storage) LoadDraft(ctx context.Context, username string) (model.Draft, error) {
	if err := model.ValidateIdentity(username); err != nil {
		return nil, err
	}

	query :=
		`SELECT data FROM drafts
		 WHERE username = $1
		 `

	var data []byte
	err := s.db.QueryRowContext(ctx, query, username).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewDraft(), nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	var draft model.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", username, err)
	}
	if draft == nil {
		draft = model.NewDraft()
	}
	return draft, nil
}

func (s *Storage) SaveDraft(ctx context.Context, username string, draft model.Draft) error {
	if err := model.ValidateIdentity(username); err != nil {
		return err
	}
	if draft == nil {
		draft = model.NewDraft()
	}

	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	query :=
		`INSERT INTO drafts (username, data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (username) DO UPDATE
		 SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
		 `

	if _, err := s.db.ExecContext(ctx, query, username, data); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Credential operations

func (s *Storage) CreateCredential(ctx context.Context, cred *model.Credential) error {
	if err := model.ValidateIdentity(cred.Username); err != nil {
		return err
	}

	query :=
		`INSERT INTO credentials (username, password_hash, legacy_password, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (username) DO NOTHING
		 `

	res, err := s.db.ExecContext(ctx, query,
		cred.Username, cred.PasswordHash, cred.LegacyPassword, string(cred.Identity().Role), cred.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return model.ErrUserExists
	}
	return nil
}

func (s *Storage) GetCredential(ctx context.Context, username string) (*model.Credential, error) {
	query :=
		`SELECT username, password_hash, legacy_password, role, created_at FROM credentials
		 WHERE username = $1
		 `

	cred, err := scanCredential(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cred, nil
}

func (s *Storage) ListCredentials(ctx context.Context) ([]*model.Credential, error) {
	query :=
		`SELECT username, password_hash, legacy_password, role, created_at FROM credentials
		 ORDER BY seq
		 `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer func() { _ = rows.Close() }()

	creds := []*model.Credential{}
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return creds, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*model.Credential, error) {
	var (
		cred model.Credential
		role string
	)
	if err := row.Scan(&cred.Username, &cred.PasswordHash, &cred.LegacyPassword, &role, &cred.CreatedAt); err != nil {
		return nil, err
	}
	cred.Role = model.Role(role)
	return &cred, nil
}
