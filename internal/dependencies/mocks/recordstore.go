package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/storage"
)

// FailingRecordStore wraps a RecordStore and can be told to fail saves or loads
type FailingRecordStore struct {
	storage.RecordStore

	mu        sync.Mutex
	saveErr   error
	loadErr   error
	saveCalls int
}

// Ensure FailingRecordStore implements RecordStore
var _ storage.RecordStore = (*FailingRecordStore)(nil)

// NewFailingRecordStore wraps inner; it behaves like inner until told to fail
func NewFailingRecordStore(inner storage.RecordStore) *FailingRecordStore {
	return &FailingRecordStore{RecordStore: inner}
}

// FailSaves makes every SaveDraft return err; nil restores normal behaviour
func (f *FailingRecordStore) FailSaves(err error) {
	f.mu.Lock()
	f.saveErr = err
	f.mu.Unlock()
}

// FailLoads makes every LoadDraft return err; nil restores normal behaviour
func (f *FailingRecordStore) FailLoads(err error) {
	f.mu.Lock()
	f.loadErr = err
	f.mu.Unlock()
}

// SaveCalls returns how many times SaveDraft was called
func (f *FailingRecordStore) SaveCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveCalls
}

func (f *FailingRecordStore) LoadDraft(ctx context.Context, username string) (model.Draft, error) {
	f.mu.Lock()
	err := f.loadErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.RecordStore.LoadDraft(ctx, username)
}

func (f *FailingRecordStore) SaveDraft(ctx context.Context, username string, draft model.Draft) error {
	f.mu.Lock()
	f.saveCalls++
	err := f.saveErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.RecordStore.SaveDraft(ctx, username, draft)
}
