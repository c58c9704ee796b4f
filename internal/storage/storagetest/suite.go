// Package storagetest holds the behaviour every storage backend must share.
// Backend packages embed ContractSuite in their own suite and set Storage in SetupTest.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/storage"
)

// ContractSuite exercises the storage.Storage contract
type ContractSuite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

// Draft tests

func (s *ContractSuite) TestLoadDraftUnknownIdentityIsEmpty() {
	draft, err := s.Storage.LoadDraft(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.NotNil(draft)
	s.Empty(draft)
}

func (s *ContractSuite) TestSaveThenLoadRoundTrip() {
	saved := model.Draft{
		"brideName":      "Ana",
		"groomName":      "Luis",
		"isSameLocation": true,
		"withMusic":      false,
		"hashtag":        "",
	}
	s.Require().NoError(s.Storage.SaveDraft(s.Ctx, "ana", saved))

	loaded, err := s.Storage.LoadDraft(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal(saved, loaded)
}

func (s *ContractSuite) TestSaveReplacesWholeDocument() {
	s.Require().NoError(s.Storage.SaveDraft(s.Ctx, "ana", model.Draft{"brideName": "Ana"}))
	s.Require().NoError(s.Storage.SaveDraft(s.Ctx, "ana", model.Draft{"groomName": "Luis"}))

	loaded, err := s.Storage.LoadDraft(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal(model.Draft{"groomName": "Luis"}, loaded)
}

func (s *ContractSuite) TestDraftsAreIsolatedPerIdentity() {
	s.Require().NoError(s.Storage.SaveDraft(s.Ctx, "ana", model.Draft{"brideName": "Ana"}))
	s.Require().NoError(s.Storage.SaveDraft(s.Ctx, "eva", model.Draft{"brideName": "Eva"}))

	loaded, err := s.Storage.LoadDraft(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal("Ana", loaded.Text("brideName"))
}

func (s *ContractSuite) TestLoadedDraftIsNotAliased() {
	s.Require().NoError(s.Storage.SaveDraft(s.Ctx, "ana", model.Draft{"brideName": "Ana"}))

	loaded, err := s.Storage.LoadDraft(s.Ctx, "ana")
	s.Require().NoError(err)
	loaded["brideName"] = "changed"

	again, err := s.Storage.LoadDraft(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal("Ana", again.Text("brideName"))
}

func (s *ContractSuite) TestUnsafeIdentityIsRejected() {
	for _, username := range []string{"../escape", "a/b", "", ".."} {
		err := s.Storage.SaveDraft(s.Ctx, username, model.Draft{"brideName": "x"})
		s.ErrorIs(err, model.ErrInvalidIdentity, username)

		_, err = s.Storage.LoadDraft(s.Ctx, username)
		s.ErrorIs(err, model.ErrInvalidIdentity, username)
	}
}

// Credential tests

func (s *ContractSuite) TestCreateAndGetCredential() {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	cred := &model.Credential{Username: "boda2025", PasswordHash: "hash", Role: model.RoleUser, CreatedAt: created}
	s.Require().NoError(s.Storage.CreateCredential(s.Ctx, cred))

	got, err := s.Storage.GetCredential(s.Ctx, "boda2025")
	s.Require().NoError(err)
	s.Equal("boda2025", got.Username)
	s.Equal("hash", got.PasswordHash)
	s.Equal(model.RoleUser, got.Role)
	s.True(created.Equal(got.CreatedAt))
}

func (s *ContractSuite) TestGetCredentialNotFound() {
	_, err := s.Storage.GetCredential(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ContractSuite) TestCreateCredentialConflictLeavesStoreUnchanged() {
	s.Require().NoError(s.Storage.CreateCredential(s.Ctx, &model.Credential{Username: "boda2025", PasswordHash: "first", Role: model.RoleUser}))

	err := s.Storage.CreateCredential(s.Ctx, &model.Credential{Username: "boda2025", PasswordHash: "second", Role: model.RoleAdmin})
	s.ErrorIs(err, model.ErrUserExists)

	got, err := s.Storage.GetCredential(s.Ctx, "boda2025")
	s.Require().NoError(err)
	s.Equal("first", got.PasswordHash)
	s.Equal(model.RoleUser, got.Role)

	all, err := s.Storage.ListCredentials(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *ContractSuite) TestUsernamesAreCaseSensitive() {
	s.Require().NoError(s.Storage.CreateCredential(s.Ctx, &model.Credential{Username: "Ana", PasswordHash: "h"}))
	s.Require().NoError(s.Storage.CreateCredential(s.Ctx, &model.Credential{Username: "ana", PasswordHash: "h"}))

	all, err := s.Storage.ListCredentials(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *ContractSuite) TestListCredentialsInCreationOrder() {
	for _, u := range []string{"zeta", "alpha", "mid"} {
		s.Require().NoError(s.Storage.CreateCredential(s.Ctx, &model.Credential{Username: u, PasswordHash: "h"}))
	}

	all, err := s.Storage.ListCredentials(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("zeta", all[0].Username)
	s.Equal("alpha", all[1].Username)
	s.Equal("mid", all[2].Username)
}

func (s *ContractSuite) TestListCredentialsEmpty() {
	all, err := s.Storage.ListCredentials(s.Ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *ContractSuite) TestCreateCredentialRejectsUnsafeIdentity() {
	err := s.Storage.CreateCredential(s.Ctx, &model.Credential{Username: "../root", PasswordHash: "h"})
	s.ErrorIs(err, model.ErrInvalidIdentity)
}
