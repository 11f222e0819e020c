package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMappingRecoverThroughMirror exercises the classic case the recover
// token exists for: a step that deletes a range, followed later by its own
// inverse (re-inserting content of the same shape). A position inside the
// deleted range should come back out at the corresponding position in the
// reinserted content, not collapsed to the edge of the deletion.
func TestMappingRecoverThroughMirror(t *testing.T) {
	del := NewStepMap([]int{2, 4, 0})
	reinsert := NewStepMap([]int{2, 0, 4})

	m := NewMapping()
	m.AppendMap(del)
	m.AppendMap(reinsert, 0)

	assert.Equal(t, 4, m.Map(4))

	result := m.MapResult(4)
	assert.Equal(t, 4, result.Pos)
	assert.False(t, result.Deleted)
}

// TestMappingWithoutMirrorCollapsesDeletion confirms the non-mirrored case
// still behaves as before: a position inside a deleted range with no
// mirror to recover through collapses to the edge of the deletion.
func TestMappingWithoutMirrorCollapsesDeletion(t *testing.T) {
	del := NewStepMap([]int{2, 4, 0})

	m := NewMapping()
	m.AppendMap(del)

	result := m.MapResult(4)
	assert.Equal(t, 2, result.Pos)
	assert.True(t, result.Deleted)
}

func TestStepMapRecoverToken(t *testing.T) {
	sm := NewStepMap([]int{2, 0, 4})
	token := makeRecover(0, 2)
	assert.Equal(t, 4, sm.Recover(token))
}
