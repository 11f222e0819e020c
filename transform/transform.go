package transform

import "github.com/richtext-go/prosemirror/model"

// Transform represents an ongoing sequence of document transformations. It
// contains the original document (the start of the transform), the current,
// transformed document, and a number of Step objects that represent the
// individual changes made to the document, as well as a Mapping mapping
// between positions in the old document and the new one.
//
// Most transforming methods return the Transform object itself, so that they
// can be chained.
type Transform struct {
	// Doc is the current document (the result of applying the steps in the
	// transform).
	Doc *model.Node
	// Steps are the steps in this transform.
	Steps []Step
	// Docs holds the documents before each of the steps.
	Docs []*model.Node
	// Mapping is a mapping with the maps for each of the steps in this
	// transform.
	Mapping *Mapping
}

// NewTransform creates a transform that starts with the given document.
func NewTransform(doc *model.Node) *Transform {
	return &Transform{Doc: doc, Mapping: NewMapping()}
}

// Before is the starting document.
func (t *Transform) Before() *model.Node {
	if len(t.Docs) > 0 {
		return t.Docs[0]
	}
	return t.Doc
}

// Step applies a new step in this transform, saving the result. Throws an
// error when the step fails.
func (t *Transform) Step(step Step) error {
	result, err := t.maybeStep(step)
	if err != nil {
		return err
	}
	if result.Failed != "" {
		return newTransformError(result.Failed)
	}
	return nil
}

// maybeStep tries to apply a step to this transform, ignoring it if it
// fails. Returns the step result.
func (t *Transform) maybeStep(step Step) (StepResult, error) {
	result := step.Apply(t.Doc)
	if result.Failed == "" {
		t.addStep(step, result.Doc)
	}
	return result, nil
}

// DocChanged reports whether the document has been changed (when there are
// any steps).
func (t *Transform) DocChanged() bool {
	return len(t.Steps) > 0
}

func (t *Transform) addStep(step Step, doc *model.Node) {
	t.Docs = append(t.Docs, t.Doc)
	t.Steps = append(t.Steps, step)
	t.Mapping.AppendMap(step.GetMap())
	t.Doc = doc
}

// Replace replaces the part of the document between from and to with the
// given slice.
func (t *Transform) Replace(from int, to int, slice *model.Slice) error {
	if slice == nil {
		slice = model.EmptySlice
	}
	step, err := replaceStep(t.Doc, from, to, slice)
	if err != nil {
		return err
	}
	if step == nil {
		return nil
	}
	return t.Step(step)
}

// replaceStep builds a step that replaces the range between from and to
// with the given slice, narrowing the slice first so that it fits the
// document structure at that point.
func replaceStep(doc *model.Node, from, to int, slice *model.Slice) (Step, error) {
	if from == to && slice.Size() == 0 {
		return nil, nil
	}
	dFrom, err := doc.Resolve(from)
	if err != nil {
		return nil, err
	}
	dTo, err := doc.Resolve(to)
	if err != nil {
		return nil, err
	}
	if fitsTrivially(dFrom, dTo, slice) {
		return NewReplaceStep(from, to, slice), nil
	}
	fitted := fit(dFrom, dTo, slice)
	if fitted == nil {
		return nil, newTransformError("Could not fit slice into the given range")
	}
	if fitted.Size() == 0 && from == to {
		return nil, nil
	}
	return NewReplaceStep(from, to, fitted), nil
}

func fitsTrivially(from, to *model.ResolvedPos, slice *model.Slice) bool {
	return slice.OpenStart == 0 && slice.OpenEnd == 0 &&
		from.Start() == from.Pos && to.End() == to.Pos &&
		(slice.Content.Size == 0 || from.Parent().CanReplace(from.Index(), to.Index(), slice.Content))
}

// ReplaceRange replaces the given range, expanding and collapsing it as
// necessary to fit the content of the given slice, and adjusting the open
// depths of the slice when necessary.
//
// This is the method used to apply content like the result of a paste to a
// document.
func (t *Transform) ReplaceRange(from, to int, slice *model.Slice) error {
	if slice.Size() == 0 {
		return t.DeleteRange(from, to)
	}
	dFrom, err := t.Doc.Resolve(from)
	if err != nil {
		return err
	}
	dTo, err := t.Doc.Resolve(to)
	if err != nil {
		return err
	}
	if fitsTrivially(dFrom, dTo, slice) {
		return t.Step(NewReplaceStep(from, to, slice))
	}
	fitted := fit(dFrom, dTo, slice)
	if fitted == nil {
		return newTransformError("Could not fit slice into the given range")
	}
	return t.Step(NewReplaceStep(from, to, fitted))
}

// DeleteRange deletes the content between the given positions.
func (t *Transform) DeleteRange(from, to int) error {
	dFrom, err := t.Doc.Resolve(from)
	if err != nil {
		return err
	}
	dTo, err := t.Doc.Resolve(to)
	if err != nil {
		return err
	}
	depth := sharedDepthBetween(dFrom, dTo)
	if depth < 0 {
		return t.Replace(from, to, model.EmptySlice)
	}
	start, err := dFrom.Before(depth + 1)
	if err != nil {
		start = from
	}
	end, err := dTo.After(depth + 1)
	if err != nil {
		end = to
	}
	return t.Replace(start, end, model.EmptySlice)
}

func sharedDepthBetween(from, to *model.ResolvedPos) int {
	for d := from.Depth; d > 0; d-- {
		if from.Start(d) <= from.Pos && from.End(d) >= to.Pos {
			return d
		}
	}
	return 0
}

// DeleteAll deletes the entire content of the top node of the document.
func (t *Transform) DeleteAll() error {
	return t.Replace(0, t.Doc.Content.Size, model.EmptySlice)
}

// Split splits the node at the given position, and optionally, if depth is
// greater than one, any number of nodes above that. By default, the parts
// split off will inherit the type of the original node. This can be
// changed by passing an array of types and attributes to use after the
// split.
func (t *Transform) Split(pos int, depth int, typesAfter []*SplitTypeAfter) error {
	dPos, err := t.Doc.Resolve(pos)
	if err != nil {
		return err
	}
	var before *model.Fragment = model.EmptyFragment
	var after *model.Fragment = model.EmptyFragment
	for d, e := dPos.Depth, depth-1; d > dPos.Depth-depth; d, e = d-1, e-1 {
		node := dPos.Node(d)
		beforeNode := node.Copy(before)
		var typ *SplitTypeAfter
		if e >= 0 && e < len(typesAfter) {
			typ = typesAfter[e]
		}
		afterType := node.Type
		afterAttrs := node.Attrs
		if typ != nil {
			afterType = typ.Type
			afterAttrs = typ.Attrs
		}
		afterNode, err := afterType.Create(afterAttrs, after, node.Marks)
		if err != nil {
			return err
		}
		before, err = model.FragmentFrom(beforeNode)
		if err != nil {
			return err
		}
		after, err = model.FragmentFrom(afterNode)
		if err != nil {
			return err
		}
	}
	slice := model.NewSlice(before.Append(after), depth, depth)
	return t.Step(NewReplaceStep(pos, pos, slice, true))
}

// Join joins the blocks around the given position. If depth is greater than
// one, parent joinable nodes will be included.
func (t *Transform) Join(pos int, depth int) error {
	step := NewReplaceStep(pos-depth, pos+depth, model.EmptySlice, true)
	return t.Step(step)
}

// Wrap wraps the given range in the given set of wrappers. The wrappers are
// assumed to be valid in this position, and should probably be computed
// with FindWrapping.
func (t *Transform) Wrap(r *model.NodeRange, wrappers []*SplitTypeAfter) error {
	var content *model.Fragment = model.EmptyFragment
	for i := len(wrappers) - 1; i >= 0; i-- {
		w := wrappers[i]
		if content.Size > 0 && !w.Type.ValidContent(content) {
			return newTransformError("Wrapper type given to Transform.wrap does not form valid content for its parent")
		}
		node, err := w.Type.Create(w.Attrs, content, nil)
		if err != nil {
			return err
		}
		content, err = model.FragmentFrom(node)
		if err != nil {
			return err
		}
	}
	start := r.Start()
	end := r.End()
	return t.Step(NewReplaceAroundStep(start, end, start, end, model.NewSlice(content, 0, 0), len(wrappers), true))
}

// SetBlockType sets the type of all textblocks (partly) between from and to
// to the given node type, with the given attributes.
func (t *Transform) SetBlockType(from, to int, typ *model.NodeType, attrs map[string]interface{}) error {
	if !typ.IsTextblock() {
		return newTransformError("Type given to setBlockType should be a textblock")
	}
	mapFrom := len(t.Steps)
	var stepErr error
	err := t.Doc.NodesBetween(from, to, func(node *model.Node, pos int, parent *model.Node, index int) bool {
		if node.IsTextblock() && !node.HasMarkup(typ, attrs, node.Marks) &&
			canChangeType(t.Doc, t.Mapping.Slice(mapFrom, len(t.Steps)).Map(pos), typ) {
			mappedPos := t.Mapping.Slice(mapFrom, len(t.Steps)).Map(pos, 1)
			newNode, err := typ.Create(attrs, nil, node.Marks)
			if err != nil {
				return true
			}
			fragment, err := model.FragmentFrom(newNode)
			if err != nil {
				return true
			}
			step := NewReplaceAroundStep(mappedPos, mappedPos+node.NodeSize(), mappedPos+1, mappedPos+node.NodeSize()-1,
				model.NewSlice(fragment, 0, 0), 1, true)
			if e := t.Step(step); e != nil {
				stepErr = e
			}
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	return stepErr
}

func canChangeType(doc *model.Node, pos int, typ *model.NodeType) bool {
	dPos, err := doc.Resolve(pos)
	if err != nil {
		return false
	}
	index := dPos.Index()
	return dPos.Parent().CanReplaceWith(index, index+1, typ, nil)
}

// SetNodeMarkup changes the type, attributes, and marks of the node at pos.
// When type is nil, the existing node type is preserved.
func (t *Transform) SetNodeMarkup(pos int, typ *model.NodeType, attrs map[string]interface{}, marks []*model.Mark) error {
	node := t.Doc.NodeAt(pos)
	if node == nil {
		return newTransformError("No node at given position")
	}
	if typ == nil {
		typ = node.Type
	}
	useMarks := marks
	if useMarks == nil {
		useMarks = node.Marks
	}
	if node.IsText() {
		return newTransformError("Can't change type of text node")
	}
	newNode, err := typ.Create(attrs, nil, useMarks)
	if err != nil || !typ.ValidContent(node.Content) {
		return newTransformError("Invalid content for node type %s", typ.Name)
	}
	fragment, err := model.FragmentFrom(newNode)
	if err != nil {
		return err
	}
	return t.Step(NewReplaceAroundStep(pos, pos+node.NodeSize(), pos+1, pos+node.NodeSize()-1,
		model.NewSlice(fragment, 0, 0), 1, true))
}

// AddMark adds the given mark to the inline content between from and to.
func (t *Transform) AddMark(from, to int, mark *model.Mark) error {
	var removed []Step
	var added []Step
	var removing *RemoveMarkStep
	var adding *AddMarkStep

	err := t.Doc.NodesBetween(from, to, func(node *model.Node, pos int, parent *model.Node, index int) bool {
		if !node.IsInline() {
			return true
		}
		marks := node.Marks
		if !mark.IsInSet(marks) && parent.Type.AllowsMarkType(mark.Type) {
			start := pos
			if start < from {
				start = from
			}
			end := pos + node.NodeSize()
			if end > to {
				end = to
			}
			newSet := mark.AddToSet(marks)
			for i := 0; i < len(marks); i++ {
				if !marks[i].IsInSet(newSet) {
					if removing != nil && removing.From == start && removing.Mark.Type == marks[i].Type {
						removing.To = end
					} else {
						removing = NewRemoveMarkStep(start, end, marks[i])
						removed = append(removed, removing)
					}
				}
			}
			if adding != nil && adding.To == start {
				adding.To = end
			} else {
				adding = NewAddMarkStep(start, end, mark)
				added = append(added, adding)
			}
		}
		return true
	})
	if err != nil {
		return err
	}
	for _, s := range removed {
		if e := t.Step(s); e != nil {
			return e
		}
	}
	for _, s := range added {
		if e := t.Step(s); e != nil {
			return e
		}
	}
	return nil
}

// RemoveMark removes marks of the given type (or, when mark is non-nil,
// exactly the given mark) from the inline content between from and to.
func (t *Transform) RemoveMark(from, to int, markType *model.MarkType, mark *model.Mark) error {
	var matched []*model.Mark
	var matchedStart []int
	err := t.Doc.NodesBetween(from, to, func(node *model.Node, pos int, parent *model.Node, index int) bool {
		if !node.IsInline() {
			return true
		}
		for _, m := range node.Marks {
			keep := false
			if mark != nil {
				keep = m.Eq(mark)
			} else if markType != nil {
				keep = m.Type == markType
			} else {
				keep = true
			}
			if keep {
				start := pos
				if start < from {
					start = from
				}
				matched = append(matched, m)
				matchedStart = append(matchedStart, start)
			}
		}
		return true
	})
	if err != nil {
		return err
	}
	for i, m := range matched {
		start := matchedStart[i]
		end := to
		if end > t.Doc.Content.Size {
			end = t.Doc.Content.Size
		}
		if e := t.Step(NewRemoveMarkStep(start, end, m)); e != nil {
			return e
		}
	}
	return nil
}

// ClearIncompatible clears all marks and nodes from the given position that
// don't fit the given parent node type's content restrictions, used to make
// sure a node can be placed in a position.
func (t *Transform) ClearIncompatible(pos int, parentType *model.NodeType) error {
	dPos, err := t.Doc.Resolve(pos)
	if err != nil {
		return err
	}
	match := parentType.ContentMatch
	node := dPos.Parent()
	for i := dPos.Index(); ; i++ {
		if i >= node.ChildCount() {
			break
		}
		child, err := node.Child(i)
		if err != nil {
			break
		}
		next := match.MatchType(child.Type)
		if next == nil {
			if e := t.DeleteRange(pos, pos+child.NodeSize()); e != nil {
				return e
			}
			break
		}
		match = next
		for _, m := range child.Marks {
			if !parentType.AllowsMarkType(m.Type) {
				if e := t.Step(NewRemoveMarkStep(pos, pos+child.NodeSize(), m)); e != nil {
					return e
				}
			}
		}
		pos += child.NodeSize()
	}
	return nil
}
