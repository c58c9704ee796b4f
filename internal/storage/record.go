package storage

import (
	"time"

	"github.com/mcoot/bodaform/internal/model"
)

// CredentialRecord is the JSON shape of a credential shared by the document
// backends. Password is the verbatim password of records created before
// hashing; new records only carry PasswordHash.
type CredentialRecord struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash,omitempty"`
	Password     string     `json:"password,omitempty"`
	Role         model.Role `json:"role,omitempty"`
	CreatedAt    time.Time  `json:"created_at,omitzero"`
}

// NewCredentialRecord converts a model credential
func NewCredentialRecord(c *model.Credential) CredentialRecord {
	return CredentialRecord{
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		Password:     c.LegacyPassword,
		Role:         c.Role,
		CreatedAt:    c.CreatedAt,
	}
}

// ToModel converts the record back to a model credential
func (r CredentialRecord) ToModel() *model.Credential {
	return &model.Credential{
		Username:       r.Username,
		PasswordHash:   r.PasswordHash,
		LegacyPassword: r.Password,
		Role:           r.Role,
		CreatedAt:      r.CreatedAt,
	}
}
