package transform

import "github.com/richtext-go/prosemirror/model"

// AddNodeMarkStep adds a mark to the node at the given position, replacing
// the node itself (node marks, unlike inline marks, are a single fixed point
// rather than a range).
type AddNodeMarkStep struct {
	Pos  int
	Mark *model.Mark
}

// NewAddNodeMarkStep is the constructor for AddNodeMarkStep.
func NewAddNodeMarkStep(pos int, mark *model.Mark) *AddNodeMarkStep {
	return &AddNodeMarkStep{Pos: pos, Mark: mark}
}

// Apply is a method of the Step interface.
func (s *AddNodeMarkStep) Apply(doc *model.Node) StepResult {
	node := doc.NodeAt(s.Pos)
	if node == nil {
		return Fail("No node at mark step's position")
	}
	updated, err := node.Type.Create(node.Attrs, nil, s.Mark.AddToSet(node.Marks))
	if err != nil {
		return Fail(err.Error())
	}
	openEnd := 0
	if !node.IsLeaf() {
		openEnd = 1
	}
	fragment, err := model.FragmentFrom(updated)
	if err != nil {
		return Fail(err.Error())
	}
	return FromReplace(doc, s.Pos, s.Pos+1, model.NewSlice(fragment, 0, openEnd))
}

// GetMap is a method of the Step interface.
func (s *AddNodeMarkStep) GetMap() *StepMap {
	return EmptyStepMap
}

// Invert is a method of the Step interface.
func (s *AddNodeMarkStep) Invert(doc *model.Node) Step {
	node := doc.NodeAt(s.Pos)
	if node != nil {
		newSet := s.Mark.AddToSet(node.Marks)
		if len(newSet) == len(node.Marks) {
			for _, m := range node.Marks {
				if !m.IsInSet(newSet) {
					return NewAddNodeMarkStep(s.Pos, m)
				}
			}
			return NewAddNodeMarkStep(s.Pos, s.Mark)
		}
	}
	return NewRemoveNodeMarkStep(s.Pos, s.Mark)
}

// Map is a method of the Step interface.
func (s *AddNodeMarkStep) Map(mapping Mappable) Step {
	result := mapping.MapResult(s.Pos, 1)
	if result.Deleted {
		return nil
	}
	return NewAddNodeMarkStep(result.Pos, s.Mark)
}

// Merge is a method of the Step interface.
func (s *AddNodeMarkStep) Merge(other Step) (Step, bool) {
	return nil, false
}

// ToJSON is a method of the Step interface.
func (s *AddNodeMarkStep) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"stepType": "addNodeMark",
		"pos":      s.Pos,
		"mark":     s.Mark.ToJSON(),
	}
}

// AddNodeMarkStepFromJSON builds an AddNodeMarkStep from its JSON
// representation.
func AddNodeMarkStepFromJSON(schema *model.Schema, obj map[string]interface{}) (Step, error) {
	pos, ok := toInt(obj["pos"])
	if !ok {
		return nil, newTransformError("Invalid input for AddNodeMarkStep.fromJSON")
	}
	markObj, _ := obj["mark"].(map[string]interface{})
	mark, err := model.MarkFromJSON(schema, markObj)
	if err != nil {
		return nil, err
	}
	return NewAddNodeMarkStep(pos, mark), nil
}

var _ Step = &AddNodeMarkStep{}

// RemoveNodeMarkStep removes a mark from the node at the given position.
type RemoveNodeMarkStep struct {
	Pos  int
	Mark *model.Mark
}

// NewRemoveNodeMarkStep is the constructor for RemoveNodeMarkStep.
func NewRemoveNodeMarkStep(pos int, mark *model.Mark) *RemoveNodeMarkStep {
	return &RemoveNodeMarkStep{Pos: pos, Mark: mark}
}

// Apply is a method of the Step interface.
func (s *RemoveNodeMarkStep) Apply(doc *model.Node) StepResult {
	node := doc.NodeAt(s.Pos)
	if node == nil {
		return Fail("No node at mark step's position")
	}
	updated, err := node.Type.Create(node.Attrs, nil, s.Mark.RemoveFromSet(node.Marks))
	if err != nil {
		return Fail(err.Error())
	}
	openEnd := 0
	if !node.IsLeaf() {
		openEnd = 1
	}
	fragment, err := model.FragmentFrom(updated)
	if err != nil {
		return Fail(err.Error())
	}
	return FromReplace(doc, s.Pos, s.Pos+1, model.NewSlice(fragment, 0, openEnd))
}

// GetMap is a method of the Step interface.
func (s *RemoveNodeMarkStep) GetMap() *StepMap {
	return EmptyStepMap
}

// Invert is a method of the Step interface.
func (s *RemoveNodeMarkStep) Invert(doc *model.Node) Step {
	node := doc.NodeAt(s.Pos)
	if node == nil || !s.Mark.IsInSet(node.Marks) {
		return s
	}
	return NewAddNodeMarkStep(s.Pos, s.Mark)
}

// Map is a method of the Step interface.
func (s *RemoveNodeMarkStep) Map(mapping Mappable) Step {
	result := mapping.MapResult(s.Pos, 1)
	if result.Deleted {
		return nil
	}
	return NewRemoveNodeMarkStep(result.Pos, s.Mark)
}

// Merge is a method of the Step interface.
func (s *RemoveNodeMarkStep) Merge(other Step) (Step, bool) {
	return nil, false
}

// ToJSON is a method of the Step interface.
func (s *RemoveNodeMarkStep) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"stepType": "removeNodeMark",
		"pos":      s.Pos,
		"mark":     s.Mark.ToJSON(),
	}
}

// RemoveNodeMarkStepFromJSON builds a RemoveNodeMarkStep from its JSON
// representation.
func RemoveNodeMarkStepFromJSON(schema *model.Schema, obj map[string]interface{}) (Step, error) {
	pos, ok := toInt(obj["pos"])
	if !ok {
		return nil, newTransformError("Invalid input for RemoveNodeMarkStep.fromJSON")
	}
	markObj, _ := obj["mark"].(map[string]interface{})
	mark, err := model.MarkFromJSON(schema, markObj)
	if err != nil {
		return nil, err
	}
	return NewRemoveNodeMarkStep(pos, mark), nil
}

var _ Step = &RemoveNodeMarkStep{}

func init() {
	AddStep("addNodeMark", AddNodeMarkStepFromJSON)
	AddStep("removeNodeMark", RemoveNodeMarkStepFromJSON)
}
