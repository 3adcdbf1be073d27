package joint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllIsClosedAndOrdered(t *testing.T) {
	all := All()
	require.Len(t, all, Count)
	assert.Equal(t, 91, Count)
	for i, id := range all {
		assert.Equal(t, ID(i), id)
		assert.True(t, id.Valid())
	}
	assert.False(t, ID(Count).Valid())
}

func TestSensorNamesRoundTrip(t *testing.T) {
	seen := make(map[string]bool, Count)
	for _, id := range All() {
		name := id.String()
		require.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate sensor name %q", name)
		seen[name] = true

		got, ok := Parse(name)
		require.True(t, ok, name)
		assert.Equal(t, id, got)
	}

	_, ok := Parse("tail_joint")
	assert.False(t, ok)
	assert.Equal(t, "invalid", ID(200).String())
}

func TestNamedJoints(t *testing.T) {
	assert.Equal(t, "root", Root.String())
	assert.Equal(t, "head_joint", Head.String())
	assert.Equal(t, "left_handIndex_1_joint", LeftHandIndex1.String())
	assert.Equal(t, "right_handThumbEnd_joint", RightHandThumbEnd.String())
	assert.Equal(t, "right_handThumbEnd_joint", ID(Count-1).String())
}

func TestMainJoints(t *testing.T) {
	m := Main()
	require.Len(t, m, 17)
	assert.Equal(t, LeftFoot, m[0])
	assert.Equal(t, Root, m[len(m)-1])

	// Callers get a copy.
	m[0] = Head
	assert.Equal(t, LeftFoot, Main()[0])

	seen := make(map[ID]bool)
	for _, id := range Main() {
		assert.True(t, id.Valid())
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestParentPrecedesChild(t *testing.T) {
	assert.Equal(t, None, Root.Parent())
	for _, id := range All()[1:] {
		p := id.Parent()
		require.True(t, p.Valid(), "%v has no parent", id)
		assert.Less(t, p, id, "%v parent %v", id, p)
	}

	assert.Equal(t, Neck4, Head.Parent())
	assert.Equal(t, LeftForearm, LeftHand.Parent())
	assert.Equal(t, RightHandThumb2, RightHandThumbEnd.Parent())
	assert.Equal(t, Spine7, RightShoulder1.Parent())
	assert.Equal(t, None, ID(Count).Parent())
}
