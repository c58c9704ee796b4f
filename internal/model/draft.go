package model

import (
	"fmt"
	"maps"
	"sort"
)

// Draft is the accumulating answer set of one couple.
// Values are strings or booleans; a missing key, a nil value or an empty string
// all mean "unanswered".
type Draft map[string]any

// NewDraft returns an empty draft
func NewDraft() Draft {
	return Draft{}
}

// Clone returns a shallow copy of the draft. A nil draft clones to an empty one.
func (d Draft) Clone() Draft {
	out := make(Draft, len(d))
	maps.Copy(out, d)
	return out
}

// Merge returns a new draft with update applied on top of d.
// Keys in update overwrite keys in d, keys absent from update are untouched and
// keys whose value is nil are removed.
func (d Draft) Merge(update Draft) Draft {
	out := d.Clone()
	for k, v := range update {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Validate checks that every key is a catalog field and every value matches
// the field's kind: strings for text fields, booleans for bool fields. Nil is
// accepted anywhere.
func (d Draft) Validate() error {
	for _, k := range d.sortedKeys() {
		f, ok := LookupField(k)
		if !ok {
			return fmt.Errorf("%w: %w: %q", ErrInvalidDraft, ErrUnknownField, k)
		}
		switch d[k].(type) {
		case nil:
		case string:
			if f.Kind == FieldKindBool {
				return fmt.Errorf("%w: field %q must be a boolean", ErrInvalidDraft, k)
			}
		case bool:
			if f.Kind != FieldKindBool {
				return fmt.Errorf("%w: field %q must be a string", ErrInvalidDraft, k)
			}
		default:
			return fmt.Errorf("%w: field %q must be a string or a boolean", ErrInvalidDraft, k)
		}
	}
	return nil
}

// IsAnswered reports whether key holds a non-empty value
func (d Draft) IsAnswered(key string) bool {
	switch v := d[key].(type) {
	case string:
		return v != ""
	case bool:
		return true
	default:
		return false
	}
}

// Text returns the string value of key, or "" when absent or not a string
func (d Draft) Text(key string) string {
	s, _ := d[key].(string)
	return s
}

// Display renders a value for people: booleans become "Sí"/"No"
func (d Draft) Display(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case bool:
		if v {
			return "Sí"
		}
		return "No"
	default:
		return ""
	}
}

// Keys returns the draft keys in sorted order
func (d Draft) Keys() []string {
	return d.sortedKeys()
}

func (d Draft) sortedKeys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
