package model

import (
	"strings"
	"unicode/utf16"
)

// Fragment represents a node's collection of child nodes. Like nodes,
// fragments are persistent data structures, and you should not mutate them
// or their content. Rather, you create new instances whenever needed. The
// API tries to make this easy.
type Fragment struct {
	Content []*Node
	Size    int
}

// NewFragment constructs a fragment from an array of nodes. Pass its size
// explicitly, or omit it to have it computed automatically from the nodes'
// sizes.
func NewFragment(content []*Node, size ...int) *Fragment {
	if len(size) > 0 {
		return &Fragment{Content: content, Size: size[0]}
	}
	total := 0
	for _, c := range content {
		total += c.NodeSize()
	}
	return &Fragment{Content: content, Size: total}
}

// EmptyFragment is the empty fragment, which is used when there's nothing to
// put in a node.
var EmptyFragment = &Fragment{Content: nil, Size: 0}

// ChildCount returns the number of child nodes in this fragment.
func (f *Fragment) ChildCount() int {
	return len(f.Content)
}

// Child gets the child node at the given index. Returns an OutOfRangeError
// when the index is out of range.
func (f *Fragment) Child(index int) (*Node, error) {
	if index < 0 || index >= len(f.Content) {
		return nil, newOutOfRangeError("Index %d out of range for %s", index, f)
	}
	return f.Content[index], nil
}

// MaybeChild gets the child node at the given index, if it exists.
func (f *Fragment) MaybeChild(index int) *Node {
	if index < 0 || index >= len(f.Content) {
		return nil
	}
	return f.Content[index]
}

// FirstChild returns the first child of the fragment, or nil if it is empty.
func (f *Fragment) FirstChild() *Node {
	if len(f.Content) == 0 {
		return nil
	}
	return f.Content[0]
}

// LastChild returns the last child of the fragment, or nil if it is empty.
func (f *Fragment) LastChild() *Node {
	if len(f.Content) == 0 {
		return nil
	}
	return f.Content[len(f.Content)-1]
}

// ForEach calls fn for every child node, passing the node, its offset into
// this parent fragment, and its index.
func (f *Fragment) ForEach(fn func(node *Node, offset, index int)) {
	pos := 0
	for i, child := range f.Content {
		fn(child, pos, i)
		pos += child.NodeSize()
	}
}

// FindDiffStart finds the first position at which this fragment and another
// fragment differ, or nil if they are the same.
func (f *Fragment) FindDiffStart(other *Fragment) *int {
	return FindDiffStart(f, other, 0)
}

// FindDiffEnd finds the first position, searching from the end, at which this
// fragment and another fragment differ, or nil if they are the same. Since
// this position will not be the same in both nodes, an object with two
// separate positions is returned.
func (f *Fragment) FindDiffEnd(other *Fragment) *DiffEnd {
	return FindDiffEnd(f, other, f.Size, other.Size)
}

// FindIndex finds the index and inner offset corresponding to a given
// relative position in this fragment. When pos falls exactly on the boundary
// between two children, the child that starts at pos is returned whatever
// round is. When pos falls inside a child, round decides: by default
// (round < 0) it rounds down to that child and its start offset; pass a value
// > 0 to round up to the next index and the child's end offset instead.
func (f *Fragment) FindIndex(pos int, round ...int) (int, int, error) {
	rnd := -1
	if len(round) > 0 {
		rnd = round[0]
	}
	if pos == 0 {
		return 0, pos, nil
	}
	if pos == f.Size {
		return len(f.Content), pos, nil
	}
	if pos > f.Size || pos < 0 {
		return 0, 0, newOutOfRangeError("Position %d outside of fragment (%s)", pos, f)
	}
	curPos := 0
	for i := 0; ; i++ {
		cur, err := f.Child(i)
		if err != nil {
			return 0, 0, err
		}
		end := curPos + cur.NodeSize()
		if end >= pos {
			if end == pos || rnd > 0 {
				return i + 1, end, nil
			}
			return i, curPos, nil
		}
		curPos = end
	}
}

// Cut cuts out the sub-fragment between the two given positions.
func (f *Fragment) Cut(from int, to ...int) (*Fragment, error) {
	end := f.Size
	if len(to) > 0 {
		end = to[0]
	}
	if from == 0 && end == f.Size {
		return f, nil
	}
	var result []*Node
	size := 0
	if end > from {
		pos := 0
		for i := 0; pos < end; i++ {
			child, err := f.Child(i)
			if err != nil {
				return nil, err
			}
			childEnd := pos + child.NodeSize()
			if childEnd > from {
				if pos < from || childEnd > end {
					if child.IsText() {
						lo := max0(from - pos)
						hi := min0(len(*child.Text), end-pos)
						child, err = child.CutText(lo, hi)
					} else {
						lo := max0(from - pos - 1)
						hi := min0(child.Content.Size, end-pos-1)
						child, err = child.Cut(lo, hi)
					}
					if err != nil {
						return nil, err
					}
				}
				result = append(result, child)
				size += child.NodeSize()
			}
			pos = childEnd
		}
	}
	return NewFragment(result, size), nil
}

// CutByIndex cuts out the sub-fragment between the given indices.
func (f *Fragment) CutByIndex(from, to int) *Fragment {
	if from == to {
		return EmptyFragment
	}
	if from == 0 && to == len(f.Content) {
		return f
	}
	return NewFragment(append([]*Node{}, f.Content[from:to]...))
}

// ReplaceChild creates a new fragment in which the node at the given index is
// replaced by the given node.
func (f *Fragment) ReplaceChild(index int, node *Node) *Fragment {
	cur := f.Content[index]
	if cur == node {
		return f
	}
	copied := append([]*Node{}, f.Content...)
	size := f.Size + node.NodeSize() - cur.NodeSize()
	copied[index] = node
	return NewFragment(copied, size)
}

// AddToStart creates a new fragment by prepending the given node to this
// fragment.
func (f *Fragment) AddToStart(node *Node) *Fragment {
	return NewFragment(append([]*Node{node}, f.Content...), f.Size+node.NodeSize())
}

// AddToEnd creates a new fragment by appending the given node to this
// fragment.
func (f *Fragment) AddToEnd(node *Node) *Fragment {
	return NewFragment(append(append([]*Node{}, f.Content...), node), f.Size+node.NodeSize())
}

// Eq compares this fragment to another one.
func (f *Fragment) Eq(other *Fragment) bool {
	if len(f.Content) != len(other.Content) {
		return false
	}
	for i, c := range f.Content {
		if !c.Eq(other.Content[i]) {
			return false
		}
	}
	return true
}

// Append creates a new fragment by concatenating this fragment with another
// one, merging adjacent compatible text nodes.
func (f *Fragment) Append(other *Fragment) *Fragment {
	if other.Size == 0 {
		return f
	}
	if f.Size == 0 {
		return other
	}
	last, first := f.LastChild(), other.FirstChild()
	content := append([]*Node{}, f.Content...)
	i := 0
	if last.IsText() && last.SameMarkup(first) {
		content[len(content)-1] = last.WithText(*last.Text + *first.Text)
		i = 1
	}
	content = append(content, other.Content[i:]...)
	return NewFragment(content, f.Size+other.Size)
}

// NodesBetween invokes a callback for all descendant nodes between the given
// two positions (relative to start of this fragment). Doesn't descend into a
// node when the callback returns false.
func (f *Fragment) NodesBetween(from, to int, fn func(node *Node, pos int, parent *Node, index int) bool, nodeStart int, parent *Node) error {
	pos := 0
	for i := 0; pos < to; i++ {
		child, err := f.Child(i)
		if err != nil {
			return err
		}
		end := pos + child.NodeSize()
		if end > from {
			cont := fn(child, nodeStart+pos, parent, i)
			if cont && child.Content != nil && child.Content.Size > 0 {
				start := pos + 1
				if err := child.Content.NodesBetween(
					max0(from-start),
					min0(child.Content.Size, to-start),
					fn, nodeStart+start, child,
				); err != nil {
					return err
				}
			}
		}
		pos = end
	}
	return nil
}

// Descendants calls fn for every descendant node.
func (f *Fragment) Descendants(fn func(node *Node, pos int, parent *Node, index int) bool) error {
	return f.NodesBetween(0, f.Size, fn, 0, nil)
}

// TextBetween extracts the text between from and to. See Node.TextBetween for
// details on blockSeparator and leafText.
func (f *Fragment) TextBetween(from, to int, blockSeparator string, leafText func(*Node) string) string {
	var sb strings.Builder
	first := true
	f.NodesBetween(from, to, func(node *Node, pos int, parent *Node, index int) bool {
		var nodeText string
		switch {
		case node.IsText():
			lo := max0(from - pos)
			hi := to - pos
			units := utf16.Encode([]rune(*node.Text))
			if hi > len(units) {
				hi = len(units)
			}
			if lo < hi {
				nodeText = string(utf16.Decode(units[lo:hi]))
			}
		case !node.IsLeaf():
			nodeText = ""
		case leafText != nil:
			nodeText = leafText(node)
		case node.Type.Spec.LeafText != nil:
			nodeText = node.Type.Spec.LeafText(node)
		default:
			nodeText = ""
		}
		if node.Type.IsBlock() && blockSeparator != "" && (node.Type.IsLeaf() && nodeText != "" || node.InlineContent()) {
			if first {
				first = false
			} else {
				sb.WriteString(blockSeparator)
			}
		}
		sb.WriteString(nodeText)
		return true
	}, 0, nil)
	return sb.String()
}

func (f *Fragment) String() string {
	parts := make([]string, len(f.Content))
	for i, c := range f.Content {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// ToJSON serializes the fragment to its JSON representation.
func (f *Fragment) ToJSON() []interface{} {
	if len(f.Content) == 0 {
		return nil
	}
	out := make([]interface{}, len(f.Content))
	for i, c := range f.Content {
		out[i] = c.ToJSON()
	}
	return out
}

// FragmentFromJSON deserializes a fragment from its JSON representation.
func FragmentFromJSON(schema *Schema, value interface{}) (*Fragment, error) {
	if value == nil {
		return EmptyFragment, nil
	}
	arr, ok := value.([]interface{})
	if !ok {
		return nil, newOutOfRangeError("Invalid input for Fragment.fromJSON")
	}
	nodes := make([]*Node, len(arr))
	for i, raw := range arr {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return nil, newOutOfRangeError("Invalid input for Fragment.fromJSON")
		}
		n, err := NodeFromJSON(schema, obj)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return fragmentFromArray(nodes), nil
}

// fragmentFromArray builds a fragment from an array of nodes, coalescing
// adjacent text nodes that share the same marks.
func fragmentFromArray(array []*Node) *Fragment {
	if len(array) == 0 {
		return EmptyFragment
	}
	var joined []*Node
	size := 0
	for i, node := range array {
		size += node.NodeSize()
		if i > 0 && node.IsText() && array[i-1].SameMarkup(node) {
			if joined == nil {
				joined = append([]*Node{}, array[:i]...)
			}
			last := joined[len(joined)-1]
			joined[len(joined)-1] = last.WithText(*last.Text + *node.Text)
		} else if joined != nil {
			joined = append(joined, node)
		}
	}
	if joined != nil {
		return NewFragment(joined, size)
	}
	return NewFragment(array, size)
}

// FragmentFrom creates a fragment from something that can be interpreted as
// a set of nodes: nil (the empty fragment), an existing *Fragment, a single
// *Node, or a []*Node.
func FragmentFrom(nodes interface{}) (*Fragment, error) {
	switch v := nodes.(type) {
	case nil:
		return EmptyFragment, nil
	case *Fragment:
		return v, nil
	case []*Node:
		return fragmentFromArray(v), nil
	case *Node:
		return NewFragment([]*Node{v}, v.NodeSize()), nil
	default:
		return nil, newOutOfRangeError("Can not convert %v to a Fragment", nodes)
	}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func min0(a, b int) int {
	if a < b {
		return a
	}
	return b
}
