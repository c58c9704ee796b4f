package factory

import (
	"time"

	"github.com/mcoot/bodaform/internal/dependencies/mocks"
	"github.com/mcoot/bodaform/internal/services/auth"
	"github.com/mcoot/bodaform/internal/services/wizard"
	"github.com/mcoot/bodaform/internal/storage"
	"github.com/mcoot/bodaform/internal/storage/memory"
	"github.com/mcoot/bodaform/internal/testutil"
)

// TestSecret signs tokens in test apps
const TestSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	// Records wraps the memory store so tests can make saves and loads fail
	Records *mocks.FailingRecordStore
	Memory  *memory.Storage
}

// TestOption adjusts a TestApp before its services are built
type TestOption func(*testOptions)

type testOptions struct {
	wizard wizard.Config
}

// WithAdvanceOnSaveFailure makes the wizard advance past failed saves
func WithAdvanceOnSaveFailure() TestOption {
	return func(o *testOptions) {
		o.wizard.AdvanceOnSaveFailure = true
	}
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(opts ...TestOption) *TestApp {
	o := testOptions{wizard: wizard.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	mem := memory.New()
	records := mocks.NewFailingRecordStore(mem)
	store := splitStorage{CredentialStore: mem, FailingRecordStore: records}
	mockClock := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = TestSecret

	app, err := newWithDependencies(store, mockClock, mockRandom, authCfg, o.wizard, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Records:    records,
		Memory:     mem,
	}
}

// splitStorage serves credentials from one store and drafts from another
type splitStorage struct {
	storage.CredentialStore
	*mocks.FailingRecordStore
}
