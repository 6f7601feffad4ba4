package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athipan1/Database-painaidee/internal/types"
)

func TestPreferenceValidator_Normalize(t *testing.T) {
	pv := NewPreferenceValidator(50)

	t.Run("canonicalizes province, interests and language", func(t *testing.T) {
		got, err := pv.Normalize(types.Preferences{
			PreferredProvince: ptr("เชียงใหม่"),
			Interests:         []string{"วัด", "temple", "Beach"},
			Language:          ptr(" EN "),
			MaxResults:        ptr(20),
		})
		require.NoError(t, err)
		assert.Equal(t, "Chiang Mai", *got.PreferredProvince)
		assert.Equal(t, []string{"temple", "beach"}, got.Interests)
		assert.Equal(t, "en", *got.Language)
		assert.Equal(t, 20, *got.MaxResults)
	})

	t.Run("empty update is valid", func(t *testing.T) {
		got, err := pv.Normalize(types.Preferences{})
		require.NoError(t, err)
		assert.True(t, got.Empty())
	})

	invalid := []struct {
		name   string
		update types.Preferences
	}{
		{name: "unknown province", update: types.Preferences{PreferredProvince: ptr("Atlantis")}},
		{name: "zero max results", update: types.Preferences{MaxResults: ptr(0)}},
		{name: "max results over the cap", update: types.Preferences{MaxResults: ptr(51)}},
		{name: "unknown interest", update: types.Preferences{Interests: []string{"temple", "skydiving"}}},
		{name: "unsupported language", update: types.Preferences{Language: ptr("fr")}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pv.Normalize(tt.update)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidPreference)
		})
	}
}

func TestPreferences_MergeKeepsAbsentKeys(t *testing.T) {
	base := types.Preferences{PreferredProvince: ptr("Phuket"), Language: ptr("th")}
	merged := base.Merge(types.Preferences{MaxResults: ptr(3)})

	assert.Equal(t, "Phuket", *merged.PreferredProvince)
	assert.Equal(t, "th", *merged.Language)
	assert.Equal(t, 3, *merged.MaxResults)

	// base is untouched
	assert.Nil(t, base.MaxResults)
}
