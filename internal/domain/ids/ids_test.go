package ids

import (
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const sampleULID = "01J9ZK3DHR5M8Q2W4X6Y7V9BCD"

func TestNewULIDIsValid(t *testing.T) {
	value, err := NewULID()

	require.NoError(t, err)
	require.NoError(t, ValidateULID(value))
	require.Len(t, value, 26)
}

func TestNewULIDsSortInMintOrder(t *testing.T) {
	minted := make([]string, 5)
	for i := range minted {
		id, err := NewULID()
		require.NoError(t, err)
		minted[i] = id
	}

	require.True(t, sort.StringsAreSorted(minted), "ULIDs out of mint order: %v", minted)
}

func TestIsULID(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{sampleULID, true},
		{"  " + sampleULID + "  ", true},
		{strings.ToLower(sampleULID), true},
		{"not-a-ulid", false},
		{sampleULID[:25], false},
		{"", false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, IsULID(tc.value), "IsULID(%q)", tc.value)
	}
}

func TestValidateULID(t *testing.T) {
	require.NoError(t, ValidateULID(sampleULID))
	require.ErrorIs(t, ValidateULID("nope"), ErrInvalidULID)
}

func TestNewRecordIDIsUUID(t *testing.T) {
	id := NewRecordID()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	require.Equal(t, id, parsed.String())

	require.NotEqual(t, id, NewRecordID())
}
