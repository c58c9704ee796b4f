// Package file stores drafts and credentials as JSON documents on disk.
//
// Layout under the configured directory:
//
//	users.json               array of credential records
//	responses/<username>.json one draft per user
//
// Every write goes through a temporary file that is renamed into place, so a
// crash mid-write leaves the previous document intact.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/storage"
)

const (
	usersFileName = "users.json"
	responsesDir  = "responses"
	filePerm      = 0o600
	dirPerm       = 0o750
)

// Config holds file storage settings
type Config struct {
	// Dir is the root data directory
	Dir string
}

// DefaultConfig returns the default file storage configuration
func DefaultConfig() Config {
	return Config{Dir: "data"}
}

// Storage is a flat-file implementation of the storage interface
type Storage struct {
	dir string

	// guards the read-modify-write cycle on users.json
	credMu sync.Mutex
}

// New creates the data directories if needed and returns a file storage
func New(cfg Config) (*Storage, error) {
	if cfg.Dir == "" {
		cfg.Dir = DefaultConfig().Dir
	}
	if err := os.MkdirAll(filepath.Join(cfg.Dir, responsesDir), dirPerm); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", cfg.Dir, err)
	}
	return &Storage{dir: cfg.Dir}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Draft operations

func (s *Storage) LoadDraft(ctx context.Context, username string) (model.Draft, error) {
	path, err := s.draftPath(username)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.NewDraft(), nil
		}
		return nil, fmt.Errorf("read draft %s: %w", username, err)
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
	path, err := s.draftPath(username)
	if err != nil {
		return err
	}
	if draft == nil {
		draft = model.NewDraft()
	}

	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", username, err)
	}
	if err := renameio.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("write draft %s: %w", username, err)
	}
	return nil
}

func (s *Storage) draftPath(username string) (string, error) {
	if err := model.ValidateIdentity(username); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, responsesDir, username+".json"), nil
}

// Credential operations

func (s *Storage) CreateCredential(ctx context.Context, cred *model.Credential) error {
	if err := model.ValidateIdentity(cred.Username); err != nil {
		return err
	}

	s.credMu.Lock()
	defer s.credMu.Unlock()

	records, err := s.readUsers()
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.Username == cred.Username {
			return model.ErrUserExists
		}
	}

	records = append(records, storage.NewCredentialRecord(cred))
	return s.writeUsers(records)
}

func (s *Storage) GetCredential(ctx context.Context, username string) (*model.Credential, error) {
	s.credMu.Lock()
	records, err := s.readUsers()
	s.credMu.Unlock()
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		if r.Username == username {
			return r.ToModel(), nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (s *Storage) ListCredentials(ctx context.Context) ([]*model.Credential, error) {
	s.credMu.Lock()
	records, err := s.readUsers()
	s.credMu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]*model.Credential, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToModel())
	}
	return out, nil
}

func (s *Storage) usersPath() string {
	return filepath.Join(s.dir, usersFileName)
}

// readUsers loads users.json; a missing file is an empty list
func (s *Storage) readUsers() ([]storage.CredentialRecord, error) {
	data, err := os.ReadFile(s.usersPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read users: %w", err)
	}

	var records []storage.CredentialRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return records, nil
}

func (s *Storage) writeUsers(records []storage.CredentialRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := renameio.WriteFile(s.usersPath(), data, filePerm); err != nil {
		return fmt.Errorf("write users: %w", err)
	}
	return nil
}
