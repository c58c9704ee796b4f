package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftMergeOverwritesAndKeepsOthers(t *testing.T) {
	base := Draft{"brideName": "Ana", "groomName": "Luis"}

	merged := base.Merge(Draft{"groomName": "Luis Miguel", "weddingDate": "2025-06-14"})

	assert.Equal(t, Draft{
		"brideName":   "Ana",
		"groomName":   "Luis Miguel",
		"weddingDate": "2025-06-14",
	}, merged)
	// the receiver is untouched
	assert.Equal(t, "Luis", base["groomName"])
}

func TestDraftMergeNilRemovesKey(t *testing.T) {
	base := Draft{"brideName": "Ana", "hashtag": "#AnaYLuis"}

	merged := base.Merge(Draft{"hashtag": nil})

	assert.Equal(t, Draft{"brideName": "Ana"}, merged)
}

func TestDraftMergeOnNilDraft(t *testing.T) {
	var d Draft
	merged := d.Merge(Draft{"brideName": "Ana"})
	assert.Equal(t, Draft{"brideName": "Ana"}, merged)
}

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantErr bool
	}{
		{"empty", Draft{}, false},
		{"strings and bools", Draft{"brideName": "Ana", "withMusic": true}, false},
		{"nil value", Draft{"brideName": nil}, false},
		{"unknown key", Draft{"favoriteColor": "blue"}, true},
		{"number value", Draft{"guestCount": 120.0}, true},
		{"nested value", Draft{"otherEvents": map[string]any{"a": "b"}}, true},
		{"string in bool field", Draft{"isSameLocation": "yes"}, true},
		{"empty string in bool field", Draft{"withMusic": ""}, true},
		{"bool in text field", Draft{"brideName": true}, true},
		{"nil in bool field", Draft{"withMusic": nil}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDraft)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDraftValidateUnknownFieldIsWrapped(t *testing.T) {
	err := Draft{"nope": "x"}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestDraftIsAnswered(t *testing.T) {
	d := Draft{"brideName": "Ana", "groomName": "", "withMusic": false, "hashtag": nil}

	assert.True(t, d.IsAnswered("brideName"))
	assert.False(t, d.IsAnswered("groomName"))
	assert.True(t, d.IsAnswered("withMusic"))
	assert.False(t, d.IsAnswered("hashtag"))
	assert.False(t, d.IsAnswered("weddingDate"))
}

func TestDraftDisplay(t *testing.T) {
	d := Draft{"brideName": "Ana", "withMusic": true, "isSameLocation": false}

	assert.Equal(t, "Ana", d.Display("brideName"))
	assert.Equal(t, "Sí", d.Display("withMusic"))
	assert.Equal(t, "No", d.Display("isSameLocation"))
	assert.Equal(t, "", d.Display("groomName"))
}
