package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/richtext-go/prosemirror/model"
)

func TestTransformReplaceSimple(t *testing.T) {
	testDoc := doc(p("foobar")).Node
	tr := NewTransform(testDoc)
	err := tr.Replace(3, 4, model.EmptySlice)
	assert.NoError(t, err)
	assert.True(t, tr.Doc.Eq(doc(p("fooar")).Node))
}

func TestTransformReplaceOpenSlice(t *testing.T) {
	// fits an inline slice into a narrower target by descending into its
	// own left spine until a directly matching piece of content is found.
	d := doc(p("foo<a>bar"))
	from := d.Tag["a"]

	sliceDoc := doc(p("<a>xx<b>"))
	sliceFrom, sliceTo := sliceDoc.Tag["a"], sliceDoc.Tag["b"]
	slice, err := sliceDoc.Node.Slice(sliceFrom, sliceTo, true)
	assert.NoError(t, err)

	tr := NewTransform(d.Node)
	err = tr.Replace(from, from, slice)
	assert.NoError(t, err)
	assert.True(t, tr.Doc.Eq(doc(p("fooxxbar")).Node))
}

func TestTransformSplit(t *testing.T) {
	d := doc(p("hell<a>o!"))
	tr := NewTransform(d.Node)
	err := tr.Split(d.Tag["a"], 1, nil)
	assert.NoError(t, err)
	assert.True(t, tr.Doc.Eq(doc(p("hell"), p("o!")).Node))
}

func TestTransformJoin(t *testing.T) {
	d := doc(p("foo"), p("bar"))
	tr := NewTransform(d.Node)
	err := tr.Join(5, 1)
	assert.NoError(t, err)
	assert.True(t, tr.Doc.Eq(doc(p("foobar")).Node))
}

func TestTransformWrap(t *testing.T) {
	d := doc(p("one"), p("two"))
	tr := NewTransform(d.Node)

	from, err := d.Node.Resolve(2)
	assert.NoError(t, err)
	to, err := d.Node.Resolve(d.Node.Content.Size - 2)
	assert.NoError(t, err)
	r := from.BlockRange(to, nil)
	assert.NotNil(t, r)

	olType, err := schema.NodeType("ordered_list")
	assert.NoError(t, err)

	wrapping := FindWrapping(r, olType, nil, nil)
	assert.NotNil(t, wrapping)

	err = tr.Wrap(r, wrapping)
	assert.NoError(t, err)
	assert.True(t, tr.Doc.Eq(doc(ol(li(p("one"), p("two")))).Node))
}

func TestTransformSetBlockType(t *testing.T) {
	d := doc(p("foo"))
	tr := NewTransform(d.Node)
	h1Type, err := schema.NodeType("heading")
	assert.NoError(t, err)
	err = tr.SetBlockType(1, 1, h1Type, map[string]interface{}{"level": 1})
	assert.NoError(t, err)
	assert.True(t, tr.Doc.Eq(doc(h1("foo")).Node))
}

func TestTransformSetNodeMarkup(t *testing.T) {
	d := doc(h1("foo"))
	tr := NewTransform(d.Node)
	pType, err := schema.NodeType("paragraph")
	assert.NoError(t, err)
	err = tr.SetNodeMarkup(0, pType, nil, nil)
	assert.NoError(t, err)
	assert.True(t, tr.Doc.Eq(doc(p("foo")).Node))
}

func TestTransformDeleteRange(t *testing.T) {
	d := doc(p("foo"), p("bar"))
	tr := NewTransform(d.Node)
	err := tr.DeleteRange(0, d.Node.Content.Size)
	assert.NoError(t, err)
	assert.Equal(t, 0, tr.Doc.Content.Size)
}
