package nlu

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athipan1/Database-painaidee/internal/types"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name           string
		text           string
		wantIntent     types.Intent
		wantLocations  []string
		wantActivities []string
	}{
		{
			name:       "thai greeting",
			text:       "สวัสดีครับ",
			wantIntent: types.IntentGreeting,
		},
		{
			name:       "greeting opener beats generic search",
			text:       "สวัสดีครับ ผมต้องการหาที่เที่ยว",
			wantIntent: types.IntentGreeting,
		},
		{
			name:          "location search in thai",
			text:          "หาที่เที่ยวในเชียงใหม่",
			wantIntent:    types.IntentSearchByLocation,
			wantLocations: []string{"Chiang Mai"},
		},
		{
			name:           "activity follow up",
			text:           "มีวัดสวยๆ ไหม",
			wantIntent:     types.IntentSearchByActivity,
			wantActivities: []string{"temple"},
		},
		{
			name:           "location and activity",
			text:           "หาวัดในกรุงเทพ",
			wantIntent:     types.IntentSearchByLocation,
			wantLocations:  []string{"Bangkok"},
			wantActivities: []string{"temple"},
		},
		{
			name:       "english generic search",
			text:       "find places to visit",
			wantIntent: types.IntentSearchAttractions,
		},
		{
			name:          "english location",
			text:          "Find attractions in Chiang Mai",
			wantIntent:    types.IntentSearchByLocation,
			wantLocations: []string{"Chiang Mai"},
		},
		{
			name:       "recommendations",
			text:       "แนะนำที่เที่ยวหน่อย",
			wantIntent: types.IntentGetRecommendations,
		},
		{
			name:           "details request",
			text:           "tell me about wat phra singh",
			wantIntent:     types.IntentGetDetails,
			wantActivities: []string{"temple"},
		},
		{
			name:       "out of domain",
			text:       "ราคาน้ำมันวันนี้",
			wantIntent: types.IntentUnknown,
		},
		{
			name:       "empty text",
			text:       "   ",
			wantIntent: types.IntentUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text)
			assert.Equal(t, tt.wantIntent, got.Intent)
			assert.Equal(t, tt.text, got.OriginalText)

			var locs []string
			for _, l := range got.Entities.Locations {
				locs = append(locs, l.Canonical)
			}
			assert.Equal(t, tt.wantLocations, locs)
			if tt.wantActivities == nil {
				assert.Empty(t, got.Entities.Activities)
			} else {
				assert.Equal(t, tt.wantActivities, got.Entities.Activities)
			}

			if got.Intent == types.IntentUnknown {
				assert.Zero(t, got.Confidence)
			} else {
				assert.Greater(t, got.Confidence, 0.0)
				assert.LessOrEqual(t, got.Confidence, 1.0)
			}
		})
	}
}

func TestClassifier_UnknownHasZeroConfidence(t *testing.T) {
	c := NewClassifier()
	got := c.Classify("ราคาน้ำมันวันนี้")
	assert.Equal(t, types.IntentUnknown, got.Intent)
	assert.Equal(t, 0.0, got.Confidence)
	assert.Empty(t, got.Entities.Locations)
}

func TestClassifier_Deterministic(t *testing.T) {
	c := NewClassifier()
	inputs := []string{"หาที่เที่ยวในเชียงใหม่", "hello, find temples", "แนะนำทะเลที่ภูเก็ต", "อะไร"}
	for _, in := range inputs {
		first := c.Classify(in)
		for i := 0; i < 20; i++ {
			require.Equal(t, first, c.Classify(in), in)
		}
	}
}

func TestClassifier_ConcurrentUse(t *testing.T) {
	c := NewClassifier()
	want := c.Classify("หาวัดในกรุงเทพ")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Equal(t, want, c.Classify("หาวัดในกรุงเทพ"))
			}
		}()
	}
	wg.Wait()
}

func TestClassifier_TieBreakUsesPriority(t *testing.T) {
	rules := Rules{
		types.IntentGetDetails:         {{"alpha", 2}},
		types.IntentGetRecommendations: {{"beta", 2}},
		types.IntentSearchAttractions:  {{"gamma", 2}},
	}
	c := NewClassifierWithRules(rules, DefaultThresholds())

	got := c.Classify("beta alpha")
	assert.Equal(t, types.IntentGetDetails, got.Intent)

	got = c.Classify("beta alpha gamma")
	assert.Equal(t, types.IntentSearchAttractions, got.Intent)
}

func TestClassifier_WeakEvidenceIsUnknown(t *testing.T) {
	c := NewClassifier()
	// a lone question marker scores below the minimum
	got := c.Classify("อะไร")
	assert.Equal(t, types.IntentUnknown, got.Intent)
	assert.Zero(t, got.Confidence)
	assert.NotEmpty(t, got.Scores)
}

func TestClassifier_LatinTriggersRespectWordBoundaries(t *testing.T) {
	c := NewClassifier()
	got := c.Classify("this chiang rai")
	assert.NotEqual(t, types.IntentGreeting, got.Intent)
	_, greeted := got.Scores[types.IntentGreeting]
	assert.False(t, greeted)
	require.Len(t, got.Entities.Locations, 1)
	assert.Equal(t, "Chiang Rai", got.Entities.Locations[0].Canonical)
}

func TestClassifier_LongestLocationWins(t *testing.T) {
	c := NewClassifier()
	got := c.Classify("เที่ยวพระนครศรีอยุธยา")
	require.Len(t, got.Entities.Locations, 1)
	assert.Equal(t, "Ayutthaya", got.Entities.Locations[0].Canonical)
	assert.Equal(t, "พระนครศรีอยุธยา", got.Entities.Locations[0].SourceText)
}

func TestClassifier_Keywords(t *testing.T) {
	c := NewClassifier()

	got := c.Classify("tell me about wat phra singh")
	assert.Equal(t, []string{"phra", "singh"}, got.Entities.Keywords)

	got = c.Classify("find places to visit")
	assert.Empty(t, got.Entities.Keywords)
}

func TestCanonicalLookups(t *testing.T) {
	p, ok := CanonicalProvince("เชียงใหม่")
	require.True(t, ok)
	assert.Equal(t, "Chiang Mai", p)

	p, ok = CanonicalProvince("  chiang MAI ")
	require.True(t, ok)
	assert.Equal(t, "Chiang Mai", p)

	_, ok = CanonicalProvince("Atlantis")
	assert.False(t, ok)

	assert.Equal(t, "เชียงใหม่", ThaiProvinceName("Chiang Mai"))
	assert.Equal(t, "Atlantis", ThaiProvinceName("Atlantis"))

	a, ok := CanonicalActivity("วัด")
	require.True(t, ok)
	assert.Equal(t, "temple", a)
	a, ok = CanonicalActivity("Temple")
	require.True(t, ok)
	assert.Equal(t, "temple", a)
	assert.Equal(t, "น้ำตก", ThaiActivityName("waterfall"))
	assert.Contains(t, ActivityTags(), "museum")
}

func TestNormalizeFoldsSaraAm(t *testing.T) {
	assert.Equal(t, "น้ำตก", normalize("น้ําตก"))
	assert.Equal(t, "chiang mai", normalize("  Chiang\t MAI "))
}
