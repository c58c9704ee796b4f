package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = DefaultConfig().DialTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{client: client}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client) *Storage {
	return &Storage{client: client}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Draft operations

func (s *Storage) LoadDraft(ctx context.Context, username string) (model.Draft, error) {
	if err := model.ValidateIdentity(username); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, draftKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewDraft(), nil
		}
		return nil, err
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

	// SET replaces the whole value in one command; drafts never expire
	return s.client.Set(ctx, draftKey(username), data, 0).Err()
}

// Credential operations

func (s *Storage) CreateCredential(ctx context.Context, cred *model.Credential) error {
	if err := model.ValidateIdentity(cred.Username); err != nil {
		return err
	}

	data, err := json.Marshal(storage.NewCredentialRecord(cred))
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, credentialKey(cred.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrUserExists
	}

	return s.client.RPush(ctx, usersIndexKey(), cred.Username).Err()
}

func (s *Storage) GetCredential(ctx context.Context, username string) (*model.Credential, error) {
	data, err := s.client.Get(ctx, credentialKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var rec storage.CredentialRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return rec.ToModel(), nil
}

func (s *Storage) ListCredentials(ctx context.Context) ([]*model.Credential, error) {
	usernames, err := s.client.LRange(ctx, usersIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(usernames) == 0 {
		return []*model.Credential{}, nil
	}

	keys := make([]string, len(usernames))
	for i, u := range usernames {
		keys[i] = credentialKey(u)
	}

	// Fetch all records in one round trip using MGET
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	creds := make([]*model.Credential, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Index entry without a record
		}
		var rec storage.CredentialRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			continue // Skip invalid data
		}
		creds = append(creds, rec.ToModel())
	}

	return creds, nil
}
