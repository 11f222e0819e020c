package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"unicode/utf16"
)

// Node represents a node in the tree that makes up a ProseMirror document. So
// a document is an instance of Node, with children that are also instances of
// Node.
//
// Nodes are persistent data structures. Instead of changing them, you create
// new ones with the content you want. Old ones keep pointing at the old
// document shape. This is made cheaper by sharing structure between the old
// and new data as much as possible, which a tree shape like this (without
// back pointers) makes easy.
//
// Do not directly mutate the properties of a Node object.
type Node struct {
	Type    *NodeType
	Attrs   map[string]interface{}
	Content *Fragment
	Marks   []*Mark

	// Text holds the text for a text node. It is nil for every other kind
	// of node.
	Text *string
}

// NewNode is the constructor for a non-text node. Not for direct use, nodes
// should be created through a Schema.
func NewNode(typ *NodeType, attrs map[string]interface{}, content *Fragment, marks []*Mark) *Node {
	if content == nil {
		content = EmptyFragment
	}
	if marks == nil {
		marks = NoMarks
	}
	return &Node{Type: typ, Attrs: attrs, Content: content, Marks: marks}
}

// NewTextNode is the constructor for a text node.
func NewTextNode(typ *NodeType, attrs map[string]interface{}, text string, marks []*Mark) *Node {
	if marks == nil {
		marks = NoMarks
	}
	return &Node{Type: typ, Attrs: attrs, Content: EmptyFragment, Marks: marks, Text: &text}
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// NodeSize is the size of this node, as defined by the integer-based indexing
// scheme. For text nodes, this is the amount of UTF-16 code units. For other
// leaf nodes, it is one. For non-leaf nodes, it is the size of the content
// plus two (the start and end token).
func (n *Node) NodeSize() int {
	if n.IsText() {
		return utf16Len(*n.Text)
	}
	if n.IsLeaf() {
		return 1
	}
	return 2 + n.Content.Size
}

// ChildCount returns the number of children that the node has.
func (n *Node) ChildCount() int {
	return n.Content.ChildCount()
}

// Child gets the child node at the given index. Returns an OutOfRangeError
// when the index is out of range.
func (n *Node) Child(index int) (*Node, error) {
	return n.Content.Child(index)
}

// MaybeChild gets the child node at the given index, if it exists.
func (n *Node) MaybeChild(index int) *Node {
	return n.Content.MaybeChild(index)
}

// FirstChild returns this node's first child, or nil if there are no
// children.
func (n *Node) FirstChild() *Node {
	return n.Content.FirstChild()
}

// LastChild returns this node's last child, or nil if there are no children.
func (n *Node) LastChild() *Node {
	return n.Content.LastChild()
}

// ForEach calls fn for every child node, passing the node, its offset into
// this parent node, and its index.
func (n *Node) ForEach(fn func(node *Node, offset, index int)) {
	n.Content.ForEach(fn)
}

// NodesBetween invokes fn for all descendant nodes recursively between the
// given two positions that are relative to the start of this node's content.
// Doesn't descend into a node when fn returns false.
func (n *Node) NodesBetween(from, to int, fn func(node *Node, pos int, parent *Node, index int) bool, startPos ...int) error {
	sp := 0
	if len(startPos) > 0 {
		sp = startPos[0]
	}
	return n.Content.NodesBetween(from, to, fn, sp, n)
}

// Descendants calls fn for every descendant node.
func (n *Node) Descendants(fn func(node *Node, pos int, parent *Node, index int) bool) error {
	return n.NodesBetween(0, n.Content.Size, fn)
}

// TextContent concatenates all the text nodes found in this fragment and its
// children.
func (n *Node) TextContent() string {
	if n.IsText() {
		return *n.Text
	}
	return n.TextBetween(0, n.Content.Size, "", nil)
}

// TextBetween gets all text between positions from and to. When
// blockSeparator is not empty, it is inserted to separate text from different
// block nodes. leafText, when given, is used to provide a placeholder string
// for leaf nodes.
func (n *Node) TextBetween(from, to int, blockSeparator string, leafText func(*Node) string) string {
	return n.Content.TextBetween(from, to, blockSeparator, leafText)
}

// SameMarkup compares the markup (type, attributes, and marks) of this node
// to those of another. Returns true if both have the same markup.
func (n *Node) SameMarkup(other *Node) bool {
	return n.HasMarkup(other.Type, other.Attrs, other.Marks)
}

// HasMarkup checks whether this node's markup matches the given type,
// attributes, and marks.
func (n *Node) HasMarkup(typ *NodeType, attrs map[string]interface{}, marks []*Mark) bool {
	if n.Type != typ {
		return false
	}
	want := attrs
	if want == nil {
		want = typ.DefaultAttrs
	}
	if !reflect.DeepEqual(n.Attrs, want) {
		return false
	}
	m := marks
	if m == nil {
		m = NoMarks
	}
	return SameMarkSet(n.Marks, m)
}

// ContentMatchAt gets the content match in this node at the given index.
func (n *Node) ContentMatchAt(index int) (*ContentMatch, error) {
	match := n.Type.ContentMatch.MatchFragment(n.Content, 0, index)
	if match == nil {
		return nil, newReplaceError("Called contentMatchAt on a node with invalid content")
	}
	return match, nil
}

// CanReplace tests whether replacing the range between from and to (by index)
// with the given replacement fragment (which defaults to the empty fragment)
// is allowed, taking into account the schema's content restrictions and the
// node type's mark set.
func (n *Node) CanReplace(from, to int, replacement *Fragment, rangeStart ...int) bool {
	repl := replacement
	if repl == nil {
		repl = EmptyFragment
	}
	start := 0
	end := repl.ChildCount()
	if len(rangeStart) > 0 {
		start = rangeStart[0]
	}
	if len(rangeStart) > 1 {
		end = rangeStart[1]
	}
	one, err := n.ContentMatchAt(from)
	if err != nil {
		return false
	}
	one = one.MatchFragment(repl, start, end)
	if one == nil {
		return false
	}
	two := one.MatchFragment(n.Content, to)
	if two == nil || !two.ValidEnd {
		return false
	}
	for i := start; i < end; i++ {
		child, err := repl.Child(i)
		if err != nil {
			return false
		}
		if !n.Type.AllowsMarks(child.Marks) {
			return false
		}
	}
	return true
}

// CanReplaceWith tests whether replacing the range between from and to (by
// index) with a node of the given type would be allowed.
func (n *Node) CanReplaceWith(from, to int, typ *NodeType, marks []*Mark) bool {
	if marks != nil && !n.Type.AllowsMarks(marks) {
		return false
	}
	start, err := n.ContentMatchAt(from)
	if err != nil {
		return false
	}
	next := start.MatchType(typ)
	if next == nil {
		return false
	}
	end := next.MatchFragment(n.Content, to)
	return end != nil && end.ValidEnd
}

// CanAppend tests whether the given node's content could be appended to this
// node. If that node is empty, this will only return true if there is at
// least one node type that can appear in both the given node and this one.
func (n *Node) CanAppend(other *Node) bool {
	if other.Content.Size > 0 {
		return n.CanReplace(n.ChildCount(), n.ChildCount(), other.Content)
	}
	return n.Type.compatibleContent(other.Type)
}

// Copy creates a copy of this node, with the given set of content, or the
// same content as before when content is omitted.
func (n *Node) Copy(content ...*Fragment) *Node {
	c := n.Content
	if len(content) > 0 {
		c = content[0]
	}
	if c == n.Content {
		return n
	}
	return NewNode(n.Type, n.Attrs, c, n.Marks)
}

// Mark creates a copy of this node, with the given set of marks instead of
// the node's own marks.
func (n *Node) Mark(marks []*Mark) *Node {
	if SameMarkSet(marks, n.Marks) {
		return n
	}
	if n.IsText() {
		return NewTextNode(n.Type, n.Attrs, *n.Text, marks)
	}
	return NewNode(n.Type, n.Attrs, n.Content, marks)
}

// WithText returns a new text node with the given string as its content.
// Only valid for text nodes.
func (n *Node) WithText(text string) *Node {
	if text == *n.Text {
		return n
	}
	return NewTextNode(n.Type, n.Attrs, text, n.Marks)
}

// CutText cuts the text of a text node between the given UTF-16 code unit
// offsets.
func (n *Node) CutText(from int, to ...int) (*Node, error) {
	txt := *n.Text
	runes := utf16.Encode([]rune(txt))
	end := len(runes)
	if len(to) > 0 {
		end = to[0]
	}
	if from < 0 || end > len(runes) || from > end {
		return nil, newOutOfRangeError("Cut range %d-%d outside of text node of size %d", from, end, len(runes))
	}
	if from == 0 && end == len(runes) {
		return n, nil
	}
	return n.WithText(string(utf16.Decode(runes[from:end]))), nil
}

// Cut cuts out the part of the document between the given positions, and
// returns it as a Node.
func (n *Node) Cut(from int, to ...int) (*Node, error) {
	end := n.Content.Size
	if len(to) > 0 {
		end = to[0]
	}
	if from == 0 && end == n.Content.Size {
		return n, nil
	}
	content, err := n.Content.Cut(from, end)
	if err != nil {
		return nil, err
	}
	return n.Copy(content), nil
}

// Slice cuts out the part of the document between the given positions, and
// returns it as a Slice object.
func (n *Node) Slice(from int, args ...interface{}) (*Slice, error) {
	to := n.Content.Size
	includeParents := false
	if len(args) > 0 {
		if v, ok := args[0].(int); ok {
			to = v
		}
	}
	if len(args) > 1 {
		if v, ok := args[1].(bool); ok {
			includeParents = v
		}
	}
	if from == to {
		return EmptySlice, nil
	}
	dFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	dTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	depth := 0
	if !includeParents {
		depth = dFrom.SharedDepth(to)
	}
	start := dFrom.Start(depth)
	node := dFrom.Node(depth)
	content, err := node.Content.Cut(dFrom.Pos-start, dTo.Pos-start)
	if err != nil {
		return nil, err
	}
	return NewSlice(content, dFrom.Depth-depth, dTo.Depth-depth), nil
}

// Replace replaces the part of the document between the given positions with
// the given slice. The slice must 'fit', meaning its open sides must be able
// to connect to the surrounding content, and its content nodes must be valid
// children for the node they are placed into.
func (n *Node) Replace(from, to int, slice *Slice) (*Node, error) {
	dFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	dTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	return Replace(dFrom, dTo, slice)
}

// NodeAt finds the node directly after the given position.
func (n *Node) NodeAt(pos int) *Node {
	node := n
	for {
		index, offset, err := node.Content.FindIndex(pos)
		if err != nil {
			return nil
		}
		node = node.Content.MaybeChild(index)
		if node == nil {
			return nil
		}
		if offset == pos || node.IsText() {
			return node
		}
		pos -= offset + 1
	}
}

// ChildAt is the result of ChildAfter/ChildBefore: the child node found (may
// be nil), its index, and its offset into the parent.
type ChildAt struct {
	Node   *Node
	Index  int
	Offset int
}

// ChildAfter finds the (direct) child node after the given offset, if any,
// along with its index and offset.
func (n *Node) ChildAfter(pos int) (*ChildAt, error) {
	index, offset, err := n.Content.FindIndex(pos)
	if err != nil {
		return nil, err
	}
	return &ChildAt{Node: n.Content.MaybeChild(index), Index: index, Offset: offset}, nil
}

// ChildBefore finds the (direct) child node before the given offset, if any,
// along with its index and offset.
func (n *Node) ChildBefore(pos int) (*ChildAt, error) {
	if pos == 0 {
		return &ChildAt{}, nil
	}
	index, offset, err := n.Content.FindIndex(pos)
	if err != nil {
		return nil, err
	}
	if offset < pos {
		child, err := n.Content.Child(index)
		if err != nil {
			return nil, err
		}
		return &ChildAt{Node: child, Index: index, Offset: offset}, nil
	}
	child, err := n.Content.Child(index - 1)
	if err != nil {
		return nil, err
	}
	return &ChildAt{Node: child, Index: index - 1, Offset: offset - child.NodeSize()}, nil
}

// Resolve resolves the given position against this node's content.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	return resolvePosCached(n, pos)
}

// RangeHasMark tests whether a mark of the given type occurs in this document
// between the two given positions.
func (n *Node) RangeHasMark(from, to int, markType *MarkType) bool {
	found := false
	if to > from {
		n.NodesBetween(from, to, func(node *Node, pos int, parent *Node, index int) bool {
			if markType.IsInSet(node.Marks) != nil {
				found = true
			}
			return !found
		})
	}
	return found
}

// IsBlock returns true when this is a block (non-inline node).
func (n *Node) IsBlock() bool {
	return n.Type.IsBlock()
}

// IsTextblock returns true when this is a textblock, a block that contains
// inline content.
func (n *Node) IsTextblock() bool {
	return n.Type.IsBlock() && n.Type.InlineContent
}

// InlineContent returns true when this node allows inline content.
func (n *Node) InlineContent() bool {
	return n.Type.InlineContent
}

// IsInline returns true when this is an inline node.
func (n *Node) IsInline() bool {
	return n.Type.IsInline()
}

// IsText returns true when this is a text node.
func (n *Node) IsText() bool {
	return n.Text != nil
}

// IsLeaf returns true for node types that allow no content.
func (n *Node) IsLeaf() bool {
	return n.Type.IsLeaf()
}

// IsAtom returns true when this node is an atom, i.e. when it does not have
// directly editable content.
func (n *Node) IsAtom() bool {
	return n.Type.IsAtom()
}

// Eq tests whether two nodes represent the same piece of document, as far as
// editing is concerned.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if !n.SameMarkup(other) {
		return false
	}
	if n.IsText() {
		return *n.Text == *other.Text
	}
	return n.Content.Eq(other.Content)
}

// Check runs basic invariant checks on this node and its descendants,
// returning an error the first one that doesn't hold.
func (n *Node) Check() error {
	if !n.Type.ValidContent(n.Content) {
		return newReplaceError("Invalid content for node %s: %s", n.Type.Name, n.Content.String())
	}
	if !n.Type.AllowsMarks(n.Marks) {
		return newReplaceError("Invalid marks for node %s", n.Type.Name)
	}
	for _, c := range n.Content.Content {
		if err := c.Check(); err != nil {
			return err
		}
	}
	return nil
}

func wrapMarks(marks []*Mark, str string) string {
	for i := len(marks) - 1; i >= 0; i-- {
		str = marks[i].Type.Name + "(" + str + ")"
	}
	return str
}

func (n *Node) String() string {
	if n.Type.Spec.ToDebugString != nil {
		return n.Type.Spec.ToDebugString(n)
	}
	if n.IsText() {
		var sb strings.Builder
		sb.WriteByte('"')
		sb.WriteString(*n.Text)
		sb.WriteByte('"')
		return wrapMarks(n.Marks, sb.String())
	}
	name := n.Type.Name
	if n.Content.Size > 0 {
		name += "(" + n.Content.String() + ")"
	}
	return wrapMarks(n.Marks, name)
}

// ToJSON serializes this node to its JSON representation.
func (n *Node) ToJSON() map[string]interface{} {
	obj := map[string]interface{}{"type": n.Type.Name}
	if len(n.Attrs) > 0 {
		obj["attrs"] = n.Attrs
	}
	if n.IsText() {
		obj["text"] = *n.Text
	} else if content := n.Content.ToJSON(); content != nil {
		obj["content"] = content
	}
	if len(n.Marks) > 0 {
		marks := make([]interface{}, len(n.Marks))
		for i, m := range n.Marks {
			marks[i] = m.ToJSON()
		}
		obj["marks"] = marks
	}
	return obj
}

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.ToJSON())
}

// NodeFromJSON deserializes a node from its JSON representation.
func NodeFromJSON(schema *Schema, obj map[string]interface{}) (*Node, error) {
	if obj == nil {
		return nil, newOutOfRangeError("Invalid input for Node.fromJSON")
	}
	var marks []*Mark
	if rawMarks, ok := obj["marks"]; ok && rawMarks != nil {
		arr, ok := rawMarks.([]interface{})
		if !ok {
			return nil, newOutOfRangeError("Invalid mark data for Node.fromJSON")
		}
		marks = make([]*Mark, len(arr))
		for i, rm := range arr {
			mobj, ok := rm.(map[string]interface{})
			if !ok {
				return nil, newOutOfRangeError("Invalid mark data for Node.fromJSON")
			}
			m, err := MarkFromJSON(schema, mobj)
			if err != nil {
				return nil, err
			}
			marks[i] = m
		}
	}

	typeName, _ := obj["type"].(string)
	if typeName == "text" {
		text, ok := obj["text"].(string)
		if !ok {
			return nil, newOutOfRangeError("Invalid text node in JSON")
		}
		return schema.Text(text, marks), nil
	}

	content, err := FragmentFromJSON(schema, obj["content"])
	if err != nil {
		return nil, err
	}
	typ, err := schema.NodeType(typeName)
	if err != nil {
		return nil, err
	}
	attrs, _ := obj["attrs"].(map[string]interface{})
	node, err := typ.CreateChecked(attrs, content, marks)
	if err != nil {
		return nil, err
	}
	if err := node.Check(); err != nil {
		return nil, err
	}
	return node, nil
}
