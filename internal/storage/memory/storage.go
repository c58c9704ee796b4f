package memory

import (
	"context"
	"sync"

	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	drafts      map[string]model.Draft
	credentials map[string]*model.Credential
	order       []string // usernames in creation order
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		drafts:      make(map[string]model.Draft),
		credentials: make(map[string]*model.Credential),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Draft operations

func (s *Storage) LoadDraft(ctx context.Context, username string) (model.Draft, error) {
	if err := model.ValidateIdentity(username); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Clone so callers never share the stored map
	return s.drafts[username].Clone(), nil
}

func (s *Storage) SaveDraft(ctx context.Context, username string, draft model.Draft) error {
	if err := model.ValidateIdentity(username); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[username] = draft.Clone()
	return nil
}

// Credential operations

func (s *Storage) CreateCredential(ctx context.Context, cred *model.Credential) error {
	if err := model.ValidateIdentity(cred.Username); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credentials[cred.Username]; exists {
		return model.ErrUserExists
	}
	c := *cred
	s.credentials[cred.Username] = &c
	s.order = append(s.order, cred.Username)
	return nil
}

func (s *Storage) GetCredential(ctx context.Context, username string) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	c := *cred
	return &c, nil
}

func (s *Storage) ListCredentials(ctx context.Context) ([]*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Credential, 0, len(s.order))
	for _, username := range s.order {
		c := *s.credentials[username]
		out = append(out, &c)
	}
	return out, nil
}
