package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "familyhub/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseFamilyID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseInvitationID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		parsed, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), parsed)
	})
}

// TestParseID_SecurityInvariants validates that parsing rejects attack vectors at API entry points.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE users;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFamilyID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIDs_MarshalAsPlainStrings(t *testing.T) {
	u := uuid.New()
	payload, err := json.Marshal(map[string]any{"family_id": FamilyID(u)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"family_id":"`+u.String()+`"}`, string(payload))
}

func TestIDs_NilDetection(t *testing.T) {
	assert.True(t, UserID{}.IsNil())
	assert.False(t, NewUserID().IsNil())
	assert.False(t, NewFamilyID().IsNil())
	assert.False(t, NewInvitationID().IsNil())
}

func TestIDs_RoundTripThroughJSONAndSQL(t *testing.T) {
	original := NewFamilyID()

	payload, err := json.Marshal(struct {
		ID FamilyID `json:"id"`
	}{original})
	require.NoError(t, err)

	var decoded struct {
		ID FamilyID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, original, decoded.ID)

	v, err := original.Value()
	require.NoError(t, err)
	var scanned FamilyID
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, original, scanned)

	var fromBytes UserID
	require.NoError(t, fromBytes.Scan([]byte(original.String())))
	assert.Equal(t, original.String(), fromBytes.String())
}
