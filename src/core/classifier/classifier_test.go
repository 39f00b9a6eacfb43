package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ewaste-server-go/src/core/types"
)

func TestClassify(t *testing.T) {
	c := New(nil)
	tests := []struct {
		label types.CanonicalLabel
		want  types.Detected
	}{
		{"phone", types.DetectedEwaste},
		{"smartphone", types.DetectedEwaste},
		{"laptop", types.DetectedEwaste},
		{"headphones", types.DetectedEwaste},
		{"tv", types.DetectedEwaste},
		{"bottle", types.DetectedNotEwaste},
		{"shoe", types.DetectedNotEwaste},
		{"router", types.DetectedNotEwaste},
		{types.LabelUnknown, types.DetectedNotEwaste},
		{"error", types.DetectedNotEwaste},
		{"", types.DetectedNotEwaste},
	}
	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			require.Equal(t, tt.want, c.Classify(tt.label))
		})
	}
}

func TestClassifyMonotonic(t *testing.T) {
	c := New(nil)
	for _, k := range DefaultKeywords {
		label := types.CanonicalLabel(k)
		require.Equal(t, types.DetectedEwaste, c.Classify(label), k)
		for _, wrapped := range []string{"old" + k, k + "s", "x" + k + "y"} {
			require.Equal(t, types.DetectedEwaste, c.Classify(types.CanonicalLabel(wrapped)), wrapped)
		}
	}
}

func TestNewVocabulary(t *testing.T) {
	v := NewVocabulary([]string{" Router ", "router", "", "Drone"})
	require.Equal(t, []string{"drone", "router"}, v.Keywords())
	require.Equal(t, 2, v.Size())

	c := New(v)
	require.Equal(t, types.DetectedEwaste, c.Classify("router"))
	require.Equal(t, types.DetectedNotEwaste, c.Classify("phone"))

	require.Equal(t, len(DefaultKeywords), NewVocabulary(nil).Size())
}
