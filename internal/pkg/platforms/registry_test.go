package platforms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec(t *testing.T) {
	spec, err := Spec("twitter")
	require.NoError(t, err)
	assert.Equal(t, "twitter", spec.ID)
	assert.Equal(t, 280, spec.MaxChars)
	assert.True(t, spec.UsesPKCE)

	spec, err = Spec("linkedin")
	require.NoError(t, err)
	assert.Equal(t, 3000, spec.MaxChars)
	assert.False(t, spec.UsesPKCE)
}

func TestSpec_UnknownPlatform(t *testing.T) {
	_, err := Spec("myspace")
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown("facebook"))
	assert.False(t, IsKnown(""))
	assert.False(t, IsKnown("MYSPACE"))
}

func TestAll_EveryPlatformHasOneSpec(t *testing.T) {
	ids := All()
	assert.Len(t, ids, 5)

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate platform %s", id)
		seen[id] = true

		spec, err := Spec(id)
		require.NoError(t, err)
		assert.Equal(t, id, spec.ID)
		assert.Greater(t, spec.MaxChars, 0)
		assert.NotEmpty(t, spec.Kinds)
	}
}
