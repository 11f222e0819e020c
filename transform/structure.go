package transform

import "github.com/richtext-go/prosemirror/model"

func joinable(a, b *model.Node) bool {
	return a != nil && b != nil && !a.IsLeaf() && a.CanAppend(b)
}

// CanJoin tests whether the blocks before and after a given position can be
// joined.
func CanJoin(doc *model.Node, pos int) bool {
	dPos, err := doc.Resolve(pos)
	if err != nil {
		return false
	}
	index := dPos.Index()
	before, err := dPos.NodeBefore()
	if err != nil {
		return false
	}
	after, err := dPos.NodeAfter()
	if err != nil {
		return false
	}
	return joinable(before, after) && dPos.Parent().CanReplace(index, index+1, nil)
}

// JoinPoint finds an ancestor of the given position that can be joined to
// the block before (or, if dir is positive, after) it, and returns the
// position at which the nodes can be joined. Returns -1 if no joinable point
// is found.
func JoinPoint(doc *model.Node, pos int, dir ...int) int {
	d := -1
	if len(dir) > 0 {
		d = dir[0]
	}
	dPos, err := doc.Resolve(pos)
	if err != nil {
		return -1
	}
	for depth := dPos.Depth; ; depth-- {
		var before, after *model.Node
		index := dPos.Index(depth)
		if depth == dPos.Depth {
			before, err = dPos.NodeBefore()
			if err != nil {
				return -1
			}
			after, err = dPos.NodeAfter()
			if err != nil {
				return -1
			}
		} else if d > 0 {
			before = dPos.Node(depth + 1)
			index++
			after = dPos.Node(depth).MaybeChild(index)
		} else {
			before = dPos.Node(depth).MaybeChild(index - 1)
			after = dPos.Node(depth + 1)
		}
		if before != nil && !before.IsTextblock() && joinable(before, after) &&
			dPos.Node(depth).CanReplace(index, index+1, nil) {
			return pos
		}
		if depth == 0 {
			break
		}
		if d < 0 {
			pos, err = dPos.Before(depth)
		} else {
			pos, err = dPos.After(depth)
		}
		if err != nil {
			return -1
		}
	}
	return -1
}

// SplitTypeAfter describes the type (and attrs) that should be used for one
// of the nodes created by a split, when it should differ from a plain copy
// of the node being split.
type SplitTypeAfter struct {
	Type  *model.NodeType
	Attrs map[string]interface{}
}

func isIsolating(typ *model.NodeType) bool {
	return typ.Spec.Isolating
}

// CanSplit tests whether the given position allows a split, at the given
// depth, producing two nodes of the given types (or copies of the original
// node when typesAfter is empty).
func CanSplit(doc *model.Node, pos int, depth int, typesAfter []*SplitTypeAfter) bool {
	dPos, err := doc.Resolve(pos)
	if err != nil {
		return false
	}
	base := dPos.Depth - depth
	var innerType *SplitTypeAfter
	if len(typesAfter) > 0 {
		innerType = typesAfter[len(typesAfter)-1]
	}
	if base < 0 {
		return false
	}
	parent := dPos.Parent()
	if isIsolating(parent.Type) {
		return false
	}
	if !parent.CanReplace(dPos.Index(), parent.ChildCount(), nil) {
		return false
	}
	if innerType != nil && !innerType.Type.ValidContent(model.EmptyFragment) {
		return false
	}
	for d, i := dPos.Depth-1, depth-2; d > base; d, i = d-1, i-1 {
		node := dPos.Node(d)
		index := dPos.Index(d)
		if isIsolating(node.Type) {
			return false
		}
		rest := node.Content.CutByIndex(index, node.ChildCount())
		var overrideChild *SplitTypeAfter
		if i+1 >= 0 && i+1 < len(typesAfter) {
			overrideChild = typesAfter[i+1]
		}
		if overrideChild != nil {
			child, err := overrideChild.Type.Create(overrideChild.Attrs, nil, nil)
			if err != nil {
				return false
			}
			rest = rest.ReplaceChild(0, child)
		}
		var after *SplitTypeAfter
		if i >= 0 && i < len(typesAfter) {
			after = typesAfter[i]
		}
		if !node.CanReplace(index+1, node.ChildCount(), nil) {
			return false
		}
		if after != nil && !after.Type.ValidContent(rest) {
			return false
		}
	}
	index := dPos.IndexAfter(base)
	var baseType *model.NodeType
	if len(typesAfter) > 0 {
		baseType = typesAfter[0].Type
	}
	if baseType == nil {
		baseType = dPos.Node(base + 1).Type
	}
	return dPos.Node(base).CanReplaceWith(index, index, baseType, nil)
}

// LiftTarget tests whether the content in the given range can be lifted out
// of its parent, and returns the depth to which it can be lifted, or -1 when
// it can not be lifted.
func LiftTarget(r *model.NodeRange) int {
	parent := r.Parent()
	content := parent.Content.CutByIndex(r.StartIndex(), r.EndIndex())
	for depth := r.Depth; ; depth-- {
		node := r.From.Node(depth)
		index := r.From.Index(depth)
		endIndex := r.To.IndexAfter(depth)
		if depth < r.Depth && node.CanReplace(index, endIndex, content) {
			return depth
		}
		if depth == 0 || isIsolating(node.Type) || index > 0 || endIndex < node.ChildCount() {
			break
		}
	}
	return -1
}

func withAttrs(typ *model.NodeType) *SplitTypeAfter {
	return &SplitTypeAfter{Type: typ}
}

// FindWrapping computes the set of wrapping node types that would need to be
// added around the given range to make the range valid in some parent node
// type, or nil if no valid wrapping could be found. attrs are the attributes
// for the new wrapping node; innerRange lets the caller restrict which part
// of range must accept the wrapper's content (defaults to range itself).
func FindWrapping(r *model.NodeRange, nodeType *model.NodeType, attrs map[string]interface{}, innerRange *model.NodeRange) []*SplitTypeAfter {
	if innerRange == nil {
		innerRange = r
	}
	around := findWrappingOutside(r, nodeType)
	if around == nil {
		return nil
	}
	inner := findWrappingInside(innerRange, nodeType)
	if inner == nil {
		return nil
	}
	result := make([]*SplitTypeAfter, 0, len(around)+1+len(inner))
	for _, t := range around {
		result = append(result, withAttrs(t))
	}
	result = append(result, &SplitTypeAfter{Type: nodeType, Attrs: attrs})
	for _, t := range inner {
		result = append(result, withAttrs(t))
	}
	return result
}

func findWrappingOutside(r *model.NodeRange, typ *model.NodeType) []*model.NodeType {
	parent := r.Parent()
	startIndex := r.StartIndex()
	endIndex := r.EndIndex()
	match, err := parent.ContentMatchAt(startIndex)
	if err != nil {
		return nil
	}
	around := match.FindWrapping(typ)
	if around == nil {
		return nil
	}
	outer := typ
	if len(around) > 0 {
		outer = around[0]
	}
	if !parent.CanReplaceWith(startIndex, endIndex, outer, nil) {
		return nil
	}
	return around
}

func findWrappingInside(r *model.NodeRange, typ *model.NodeType) []*model.NodeType {
	parent := r.Parent()
	startIndex := r.StartIndex()
	endIndex := r.EndIndex()
	inner, err := parent.Child(startIndex)
	if err != nil {
		return nil
	}
	inside := typ.ContentMatch.FindWrapping(inner.Type)
	if inside == nil {
		return nil
	}
	lastType := typ
	if len(inside) > 0 {
		lastType = inside[len(inside)-1]
	}
	innerMatch := lastType.ContentMatch
	for i := startIndex; innerMatch != nil && i < endIndex; i++ {
		child, err := parent.Child(i)
		if err != nil {
			return nil
		}
		innerMatch = innerMatch.MatchType(child.Type)
	}
	if innerMatch == nil || !innerMatch.ValidEnd {
		return nil
	}
	return inside
}

// InsertPoint finds a position at or around the given position where the
// given node type can be inserted, returning -1 if no such position exists.
func InsertPoint(doc *model.Node, pos int, nodeType *model.NodeType) int {
	dPos, err := doc.Resolve(pos)
	if err != nil {
		return -1
	}
	if dPos.Parent().CanReplaceWith(dPos.Index(), dPos.Index(), nodeType, nil) {
		return pos
	}
	if dPos.ParentOffset == 0 {
		for d := dPos.Depth - 1; d >= 0; d-- {
			index := dPos.Index(d)
			if dPos.Node(d).CanReplaceWith(index, index, nodeType, nil) {
				before, err := dPos.Before(d + 1)
				if err != nil {
					return -1
				}
				return before
			}
			if index > 0 {
				return -1
			}
		}
	}
	if dPos.ParentOffset == dPos.Parent().Content.Size {
		for d := dPos.Depth - 1; d >= 0; d-- {
			index := dPos.IndexAfter(d)
			if dPos.Node(d).CanReplaceWith(index, index, nodeType, nil) {
				after, err := dPos.After(d + 1)
				if err != nil {
					return -1
				}
				return after
			}
			if index < dPos.Node(d).ChildCount() {
				return -1
			}
		}
	}
	return -1
}

// DropPoint finds a position where a slice of the given shape can be dropped
// near the given position, returning -1 if there is no such position.
func DropPoint(doc *model.Node, pos int, slice *model.Slice) int {
	dPos, err := doc.Resolve(pos)
	if err != nil {
		return -1
	}
	if slice.Content.Size == 0 {
		return pos
	}
	content := slice.Content
	for i := 0; i < slice.OpenStart; i++ {
		first := content.FirstChild()
		if first == nil {
			break
		}
		content = first.Content
	}
	passes := 1
	if slice.OpenStart == 0 && slice.Size() > 0 {
		passes = 2
	}
	for pass := 1; pass <= passes; pass++ {
		for d := dPos.Depth; d >= 0; d-- {
			bias := 0
			if d != dPos.Depth {
				if dPos.Pos <= (dPos.Start(d+1)+dPos.End(d+1))/2 {
					bias = -1
				} else {
					bias = 1
				}
			}
			insertPos := dPos.Index(d)
			if bias > 0 {
				insertPos++
			}
			parent := dPos.Node(d)
			fits := false
			if pass == 1 {
				fits = parent.CanReplace(insertPos, insertPos, content)
			} else {
				first := content.FirstChild()
				if first != nil {
					match, err := parent.ContentMatchAt(insertPos)
					if err == nil {
						wrapping := match.FindWrapping(first.Type)
						if wrapping != nil {
							outer := first.Type
							if len(wrapping) > 0 {
								outer = wrapping[0]
							}
							fits = parent.CanReplaceWith(insertPos, insertPos, outer, nil)
						}
					}
				}
			}
			if fits {
				if bias == 0 {
					return pos
				}
				if bias < 0 {
					before, err := dPos.Before(d + 1)
					if err == nil {
						return before
					}
					return -1
				}
				after, err := dPos.After(d + 1)
				if err == nil {
					return after
				}
				return -1
			}
		}
	}
	return -1
}
