package model

import "fmt"

// Slice represents a piece cut out of a larger document. It stores not only
// a fragment, but also the depth up to which nodes on both side are ‘open’
// (cut through).
type Slice struct {
	// Content is the slice's content.
	Content *Fragment
	// OpenStart is the open depth at the start.
	OpenStart int
	// OpenEnd is the open depth at the end.
	OpenEnd int
}

// NewSlice creates a slice. When specifying a non-zero open depth, you must
// make sure that there are nodes of at least that depth at the appropriate
// side of the fragment—i.e. if the fragment is an empty paragraph node,
// openStart and openEnd can't be greater than 1.
//
// It is not necessary for the content of open nodes to conform to the
// schema's content constraints, though it should be a valid start/end/middle
// for such a node, depending on which sides are open.
func NewSlice(content *Fragment, openStart, openEnd int) *Slice {
	return &Slice{
		Content:   content,
		OpenStart: openStart,
		OpenEnd:   openEnd,
	}
}

// EmptySlice is the empty slice.
var EmptySlice = NewSlice(EmptyFragment, 0, 0)

// Size is the size this slice would add when inserted into a document.
func (s *Slice) Size() int {
	return s.Content.Size - s.OpenStart - s.OpenEnd
}

// InsertAt inserts the given piece of content at the given position in the
// slice, producing a new slice. The result is not checked against the
// schema's content rules; nil is returned only when pos lies outside the
// slice's content.
func (s *Slice) InsertAt(pos int, fragment *Fragment) *Slice {
	content, err := insertInto(s.Content, pos+s.OpenStart, fragment)
	if err != nil || content == nil {
		return nil
	}
	return NewSlice(content, s.OpenStart, s.OpenEnd)
}

// RemoveBetween removes the content between the given positions from this
// slice, producing a new slice.
func (s *Slice) RemoveBetween(from, to int) *Slice {
	return NewSlice(removeRange(s.Content, from+s.OpenStart, to+s.OpenStart), s.OpenStart, s.OpenEnd)
}

// Eq tests whether this slice is equal to another slice.
func (s *Slice) Eq(other *Slice) bool {
	return s.Content.Eq(other.Content) && s.OpenStart == other.OpenStart && s.OpenEnd == other.OpenEnd
}

func (s *Slice) String() string {
	return fmt.Sprintf("%s(%d,%d)", s.Content.String(), s.OpenStart, s.OpenEnd)
}

// ToJSON serializes this slice to its JSON representation. Returns nil for
// the empty slice.
func (s *Slice) ToJSON() map[string]interface{} {
	if s.Content.Size == 0 {
		return nil
	}
	obj := map[string]interface{}{"content": s.Content.ToJSON()}
	if s.OpenStart > 0 {
		obj["openStart"] = s.OpenStart
	}
	if s.OpenEnd > 0 {
		obj["openEnd"] = s.OpenEnd
	}
	return obj
}

// SliceFromJSON deserializes a slice from its JSON representation.
func SliceFromJSON(schema *Schema, obj map[string]interface{}) (*Slice, error) {
	if obj == nil {
		return EmptySlice, nil
	}
	openStart, _ := toInt(obj["openStart"])
	openEnd, _ := toInt(obj["openEnd"])
	content, err := FragmentFromJSON(schema, obj["content"])
	if err != nil {
		return nil, err
	}
	return NewSlice(content, openStart, openEnd), nil
}

// MaxOpenSlice builds a slice around a fragment, opening it as far as
// possible on both sides (without going beyond leaf nodes).
func MaxOpenSlice(fragment *Fragment) *Slice {
	openStart, openEnd := 0, 0
	for n := fragment.FirstChild(); n != nil && !n.IsLeaf(); n = n.FirstChild() {
		openStart++
	}
	for n := fragment.LastChild(); n != nil && !n.IsLeaf(); n = n.LastChild() {
		openEnd++
	}
	return NewSlice(fragment, openStart, openEnd)
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// ---- the three-way replace kernel ----

// Replace splices the given slice into the document between the two
// resolved positions, producing a new top-level node. The open ends of the
// slice are matched up against the document's structure at the insertion
// points: nodes on the matching sides are merged (joined) rather than
// nested, provided their content is compatible.
func Replace(dFrom, dTo *ResolvedPos, slice *Slice) (*Node, error) {
	if slice.OpenStart > dFrom.Depth {
		return nil, newReplaceError("Inserted content deeper than insertion position")
	}
	if dFrom.Depth-slice.OpenStart != dTo.Depth-slice.OpenEnd {
		return nil, newReplaceError("Inconsistent open depths")
	}
	return replaceOuter(dFrom, dTo, slice, 0)
}

func replaceOuter(dFrom, dTo *ResolvedPos, slice *Slice, depth int) (*Node, error) {
	index := dFrom.Index(depth)
	node := dFrom.Node(depth)
	if index == dTo.Index(depth) && depth < dFrom.Depth-slice.OpenStart {
		inner, err := replaceOuter(dFrom, dTo, slice, depth+1)
		if err != nil {
			return nil, err
		}
		return node.Copy(node.Content.ReplaceChild(index, inner)), nil
	}
	if slice.Content.Size > 0 {
		dStart, dEnd, err := prepareSliceForReplace(slice, dFrom)
		if err != nil {
			return nil, err
		}
		frag, err := replaceThreeWay(dFrom, dStart, dEnd, dTo, depth)
		if err != nil {
			return nil, err
		}
		return closeNode(node, frag)
	}
	frag, err := replaceTwoWay(dFrom, dTo, depth)
	if err != nil {
		return nil, err
	}
	return closeNode(node, frag)
}

func checkJoin(main, sub *Node) error {
	if !sub.Type.compatibleContent(main.Type) {
		return newReplaceError("Cannot join %s onto %s", sub.Type.Name, main.Type.Name)
	}
	return nil
}

func joinable(dBefore, dAfter *ResolvedPos, depth int) (*Node, error) {
	node := dBefore.Node(depth)
	if err := checkJoin(node, dAfter.Node(depth)); err != nil {
		return nil, err
	}
	return node, nil
}

func addNode(child *Node, target []*Node) []*Node {
	n := len(target)
	if n > 0 && child.IsText() && child.SameMarkup(target[n-1]) {
		target[n-1] = target[n-1].WithText(*target[n-1].Text + *child.Text)
		return target
	}
	return append(target, child)
}

// addRange appends the children of a node at the given depth, between the
// two (possibly nil, meaning "from the very start"/"to the very end")
// resolved positions, to target.
func addRange(dStart, dEnd *ResolvedPos, depth int, target []*Node) ([]*Node, error) {
	var node *Node
	if dEnd != nil {
		node = dEnd.Node(depth)
	} else {
		node = dStart.Node(depth)
	}
	startIndex := 0
	endIndex := node.ChildCount()
	if dEnd != nil {
		endIndex = dEnd.Index(depth)
	}
	if dStart != nil {
		startIndex = dStart.Index(depth)
		if dStart.Depth > depth {
			startIndex++
		} else if dStart.TextOffset() > 0 {
			after, err := dStart.NodeAfter()
			if err != nil {
				return nil, err
			}
			target = addNode(after, target)
			startIndex++
		}
	}
	for i := startIndex; i < endIndex; i++ {
		child, err := node.Child(i)
		if err != nil {
			return nil, err
		}
		target = addNode(child, target)
	}
	if dEnd != nil && dEnd.Depth == depth && dEnd.TextOffset() > 0 {
		before, err := dEnd.NodeBefore()
		if err != nil {
			return nil, err
		}
		target = addNode(before, target)
	}
	return target, nil
}

func closeNode(node *Node, content *Fragment) (*Node, error) {
	if !node.Type.ValidContent(content) {
		return nil, newReplaceError("Invalid content for node %s", node.Type.Name)
	}
	return node.Copy(content), nil
}

func replaceThreeWay(dFrom, dStart, dEnd, dTo *ResolvedPos, depth int) (*Fragment, error) {
	var openStart, openEnd *Node
	var err error
	if dFrom.Depth > depth {
		openStart, err = joinable(dFrom, dStart, depth+1)
		if err != nil {
			return nil, err
		}
	}
	if dTo.Depth > depth {
		openEnd, err = joinable(dEnd, dTo, depth+1)
		if err != nil {
			return nil, err
		}
	}

	var content []*Node
	content, err = addRange(nil, dFrom, depth, content)
	if err != nil {
		return nil, err
	}

	if openStart != nil && openEnd != nil && dStart.Index(depth) == dEnd.Index(depth) {
		if err := checkJoin(openStart, openEnd); err != nil {
			return nil, err
		}
		inner, err := replaceThreeWay(dFrom, dStart, dEnd, dTo, depth+1)
		if err != nil {
			return nil, err
		}
		closed, err := closeNode(openStart, inner)
		if err != nil {
			return nil, err
		}
		content = addNode(closed, content)
	} else {
		if openStart != nil {
			inner, err := replaceTwoWay(dFrom, dStart, depth+1)
			if err != nil {
				return nil, err
			}
			closed, err := closeNode(openStart, inner)
			if err != nil {
				return nil, err
			}
			content = addNode(closed, content)
		}
		content, err = addRange(dStart, dEnd, depth, content)
		if err != nil {
			return nil, err
		}
		if openEnd != nil {
			inner, err := replaceTwoWay(dEnd, dTo, depth+1)
			if err != nil {
				return nil, err
			}
			closed, err := closeNode(openEnd, inner)
			if err != nil {
				return nil, err
			}
			content = addNode(closed, content)
		}
	}
	content, err = addRange(dTo, nil, depth, content)
	if err != nil {
		return nil, err
	}
	return NewFragment(content), nil
}

func replaceTwoWay(dFrom, dTo *ResolvedPos, depth int) (*Fragment, error) {
	var content []*Node
	content, err := addRange(nil, dFrom, depth, content)
	if err != nil {
		return nil, err
	}
	if dFrom.Depth > depth {
		typ, err := joinable(dFrom, dTo, depth+1)
		if err != nil {
			return nil, err
		}
		inner, err := replaceTwoWay(dFrom, dTo, depth+1)
		if err != nil {
			return nil, err
		}
		closed, err := closeNode(typ, inner)
		if err != nil {
			return nil, err
		}
		content = addNode(closed, content)
	}
	content, err = addRange(dTo, nil, depth, content)
	if err != nil {
		return nil, err
	}
	return NewFragment(content), nil
}

// prepareSliceForReplace grafts the slice's content onto the node chain of
// dAlong, down to the depth at which the slice's open start begins, and
// resolves positions at the slice's two open boundaries within that
// synthetic node. This lets replaceThreeWay treat the slice's edges exactly
// like the edges of a second document.
func prepareSliceForReplace(slice *Slice, dAlong *ResolvedPos) (*ResolvedPos, *ResolvedPos, error) {
	extra := dAlong.Depth - slice.OpenStart
	parent := dAlong.Node(extra)
	node := parent.Copy(slice.Content)
	for i := extra - 1; i >= 0; i-- {
		frag, err := FragmentFrom(node)
		if err != nil {
			return nil, nil, err
		}
		node = dAlong.Node(i).Copy(frag)
	}
	start, err := resolvePos(node, slice.OpenStart+extra)
	if err != nil {
		return nil, nil, err
	}
	end, err := resolvePos(node, node.Content.Size-slice.OpenEnd-extra)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// insertInto recursively inserts a fragment into content at the given
// position, used by Slice.InsertAt. A position inside a text node splits that
// text node around the inserted content. The result is not checked against
// the schema; an error is returned only for a position outside content.
func insertInto(content *Fragment, dist int, insert *Fragment) (*Fragment, error) {
	index, offset, err := content.FindIndex(dist)
	if err != nil {
		return nil, err
	}
	child := content.MaybeChild(index)
	if offset == dist || (child != nil && child.IsText()) {
		before, err := content.Cut(0, dist)
		if err != nil {
			return nil, err
		}
		after, err := content.Cut(dist)
		if err != nil {
			return nil, err
		}
		return before.Append(insert).Append(after), nil
	}
	rest, err := insertInto(child.Content, dist-offset-1, insert)
	if err != nil || rest == nil {
		return nil, err
	}
	return content.ReplaceChild(index, child.Copy(rest)), nil
}

// removeRange removes the content between from and to from a fragment. Both
// positions must fall on the same child (or exactly on a boundary), mirroring
// the narrow "gap" use this serves in ReplaceAroundStep.
func removeRange(content *Fragment, from, to int) *Fragment {
	index, offset, err := content.FindIndex(from)
	if err != nil {
		return content
	}
	child := content.MaybeChild(index)
	indexTo, offsetTo, err := content.FindIndex(to)
	if err != nil {
		return content
	}
	if offset == from || (child != nil && child.IsText()) {
		before, err := content.Cut(0, from)
		if err != nil {
			return content
		}
		after, err := content.Cut(to)
		if err != nil {
			return content
		}
		return before.Append(after)
	}
	if index != indexTo {
		return content
	}
	inner := removeRange(child.Content, from-offset-1, to-offset-1)
	_ = offsetTo
	return content.ReplaceChild(index, child.Copy(inner))
}
