package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_RegistriesCompile(t *testing.T) {
	seen := make(map[string]bool)
	for _, spec := range All() {
		t.Run(spec.Name, func(t *testing.T) {
			assert.False(t, seen[spec.TaskType], "duplicate task type")
			seen[spec.TaskType] = true
			assert.Equal(t, "infomaniak."+spec.Name, spec.TaskType)

			reg, err := spec.NewRegistry()
			require.NoError(t, err)
			assert.Equal(t, spec.Name, reg.Node())
			assert.Positive(t, reg.Len())
		})
	}
}

func TestLookup(t *testing.T) {
	spec, ok := Lookup("meeting")
	require.True(t, ok)
	assert.Equal(t, "infomaniak.meeting", spec.TaskType)

	_, ok = Lookup("kdrive")
	assert.False(t, ok)
}
