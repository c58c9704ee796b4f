package storage

import (
	"context"

	"github.com/mcoot/bodaform/internal/model"
)

// RecordStore persists one draft document per identity
type RecordStore interface {
	// LoadDraft returns the stored draft, or an empty draft if none exists
	LoadDraft(ctx context.Context, username string) (model.Draft, error)
	// SaveDraft replaces the whole stored draft
	SaveDraft(ctx context.Context, username string, draft model.Draft) error
}

// CredentialStore persists login records
type CredentialStore interface {
	// CreateCredential stores a new record, failing with model.ErrUserExists
	// when the username is taken
	CreateCredential(ctx context.Context, cred *model.Credential) error
	// GetCredential returns model.ErrUserNotFound for unknown usernames
	GetCredential(ctx context.Context, username string) (*model.Credential, error)
	// ListCredentials returns every record in creation order
	ListCredentials(ctx context.Context) ([]*model.Credential, error)
}

// Storage defines the interface for data persistence
type Storage interface {
	RecordStore
	CredentialStore
}
