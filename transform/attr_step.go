package transform

import "github.com/richtext-go/prosemirror/model"

// AttrStep sets a single attribute on the node at the given position.
type AttrStep struct {
	Pos   int
	Attr  string
	Value interface{}
}

// NewAttrStep is the constructor for AttrStep.
func NewAttrStep(pos int, attr string, value interface{}) *AttrStep {
	return &AttrStep{Pos: pos, Attr: attr, Value: value}
}

// Apply is a method of the Step interface.
func (s *AttrStep) Apply(doc *model.Node) StepResult {
	target := doc.NodeAt(s.Pos)
	if target == nil {
		return Fail("No node at attribute step's position")
	}
	attrs := map[string]interface{}{}
	for k, v := range target.Attrs {
		attrs[k] = v
	}
	attrs[s.Attr] = s.Value

	newNode, err := target.Type.Create(attrs, model.EmptyFragment, target.Marks)
	if err != nil {
		return Fail(err.Error())
	}
	openEnd := 0
	if !target.IsLeaf() {
		openEnd = 1
	}
	fragment, err := model.FragmentFrom(newNode)
	if err != nil {
		return Fail(err.Error())
	}
	slice := model.NewSlice(fragment, 0, openEnd)
	return FromReplace(doc, s.Pos, s.Pos+1, slice)
}

// GetMap is a method of the Step interface.
func (s *AttrStep) GetMap() *StepMap {
	return EmptyStepMap
}

// Invert is a method of the Step interface.
func (s *AttrStep) Invert(doc *model.Node) Step {
	target := doc.NodeAt(s.Pos)
	var prev interface{}
	if target != nil {
		prev = target.Attrs[s.Attr]
	}
	return NewAttrStep(s.Pos, s.Attr, prev)
}

// Map is a method of the Step interface.
func (s *AttrStep) Map(mapping Mappable) Step {
	result := mapping.MapResult(s.Pos, 1)
	if result.Deleted {
		return nil
	}
	return NewAttrStep(result.Pos, s.Attr, s.Value)
}

// Merge is a method of the Step interface.
func (s *AttrStep) Merge(other Step) (Step, bool) {
	o, ok := other.(*AttrStep)
	if !ok || o.Pos != s.Pos || o.Attr != s.Attr {
		return nil, false
	}
	return NewAttrStep(s.Pos, s.Attr, o.Value), true
}

// ToJSON is a method of the Step interface.
func (s *AttrStep) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"stepType": "attr",
		"pos":      s.Pos,
		"attr":     s.Attr,
		"value":    s.Value,
	}
}

// AttrStepFromJSON builds an AttrStep from its JSON representation.
func AttrStepFromJSON(schema *model.Schema, obj map[string]interface{}) (Step, error) {
	pos, ok := toInt(obj["pos"])
	if !ok {
		return nil, newTransformError("Invalid input for AttrStep.fromJSON")
	}
	attr, ok := obj["attr"].(string)
	if !ok {
		return nil, newTransformError("Invalid input for AttrStep.fromJSON")
	}
	return NewAttrStep(pos, attr, obj["value"]), nil
}

var _ Step = &AttrStep{}

// DocAttrStep sets a single attribute on the document's root node.
type DocAttrStep struct {
	Attr  string
	Value interface{}
}

// NewDocAttrStep is the constructor for DocAttrStep.
func NewDocAttrStep(attr string, value interface{}) *DocAttrStep {
	return &DocAttrStep{Attr: attr, Value: value}
}

// Apply is a method of the Step interface.
func (s *DocAttrStep) Apply(doc *model.Node) StepResult {
	attrs := map[string]interface{}{}
	for k, v := range doc.Attrs {
		attrs[k] = v
	}
	attrs[s.Attr] = s.Value
	newDoc, err := doc.Type.Create(attrs, doc.Content, doc.Marks)
	if err != nil {
		return Fail(err.Error())
	}
	return Ok(newDoc)
}

// GetMap is a method of the Step interface.
func (s *DocAttrStep) GetMap() *StepMap {
	return EmptyStepMap
}

// Invert is a method of the Step interface.
func (s *DocAttrStep) Invert(doc *model.Node) Step {
	return NewDocAttrStep(s.Attr, doc.Attrs[s.Attr])
}

// Map is a method of the Step interface.
func (s *DocAttrStep) Map(mapping Mappable) Step {
	return s
}

// Merge is a method of the Step interface.
func (s *DocAttrStep) Merge(other Step) (Step, bool) {
	o, ok := other.(*DocAttrStep)
	if !ok || o.Attr != s.Attr {
		return nil, false
	}
	return NewDocAttrStep(s.Attr, o.Value), true
}

// ToJSON is a method of the Step interface.
func (s *DocAttrStep) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"stepType": "docAttr",
		"attr":     s.Attr,
		"value":    s.Value,
	}
}

// DocAttrStepFromJSON builds a DocAttrStep from its JSON representation.
func DocAttrStepFromJSON(schema *model.Schema, obj map[string]interface{}) (Step, error) {
	attr, ok := obj["attr"].(string)
	if !ok {
		return nil, newTransformError("Invalid input for DocAttrStep.fromJSON")
	}
	return NewDocAttrStep(attr, obj["value"]), nil
}

var _ Step = &DocAttrStep{}

func init() {
	AddStep("attr", AttrStepFromJSON)
	AddStep("docAttr", DocAttrStepFromJSON)
	AddStep("mergeAttrs", SetAttrsStepFromJSON)
}
