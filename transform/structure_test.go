package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/richtext-go/prosemirror/model"
)

func TestCanJoin(t *testing.T) {
	d := doc(p("foo"), p("bar")).Node
	assert.True(t, CanJoin(d, 5))
	assert.False(t, CanJoin(d, 2))
}

func TestJoinPoint(t *testing.T) {
	// joinPoint looks for joinable container nodes (like two adjacent
	// blockquotes), skipping plain textblocks.
	d := doc(blockquote(p("a")), blockquote(p("b"))).Node
	assert.Equal(t, 5, JoinPoint(d, 5))
}

func TestCanSplit(t *testing.T) {
	d := doc(p("hello")).Node
	assert.True(t, CanSplit(d, 3, 1, nil))
	assert.False(t, CanSplit(d, 0, 1, nil))
}

func TestLiftTarget(t *testing.T) {
	d := doc(blockquote(p("hi"))).Node
	from, err := d.Resolve(2)
	assert.NoError(t, err)
	to, err := d.Resolve(2)
	assert.NoError(t, err)
	r := from.BlockRange(to, nil)
	assert.NotNil(t, r)
	assert.Equal(t, 0, LiftTarget(r))
}

func TestFindWrappingForBlockquote(t *testing.T) {
	d := doc(p("hi")).Node
	from, err := d.Resolve(1)
	assert.NoError(t, err)
	to, err := d.Resolve(1)
	assert.NoError(t, err)
	r := from.BlockRange(to, nil)
	assert.NotNil(t, r)

	bqType, err := schema.NodeType("blockquote")
	assert.NoError(t, err)
	wrapping := FindWrapping(r, bqType, nil, nil)
	assert.NotNil(t, wrapping)
	assert.Len(t, wrapping, 1)
	assert.Equal(t, bqType, wrapping[0].Type)
}

func TestInsertPoint(t *testing.T) {
	d := doc(p("foo")).Node
	imgType, err := schema.NodeType("image")
	assert.NoError(t, err)
	assert.Equal(t, 1, InsertPoint(d, 1, imgType))
}

func TestDropPoint(t *testing.T) {
	d := doc(p("foo")).Node
	textNode := schema.Text("x")
	slice := model.NewSlice(model.NewFragment([]*model.Node{textNode}), 0, 0)
	assert.Equal(t, 2, DropPoint(d, 2, slice))
}
