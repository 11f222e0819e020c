// Package transform implements the document transformation system that sits
// on top of the document model: steps, step maps, and the high-level
// Transform type used to build up an editable change to a document while
// keeping track of how positions in the old document map onto the new one.
package transform

import (
	"encoding/json"
	"fmt"

	"github.com/richtext-go/prosemirror/model"
)

// Step is a document step. Steps are used to represent and track document
// changes. Each step implementation defines the following methods, which can
// be used to manipulate steps and their effect both in direct and composite
// ways.
type Step interface {
	// Apply applies this step to the given document, returning a result
	// object that either indicates failure, if the step can not be applied
	// to this document, or indicates success by containing a new document
	// produced by the step.
	Apply(doc *model.Node) StepResult
	// GetMap gets the step map that represents the changes made by this
	// step, and which can be used to transform between positions in the old
	// and the new document.
	GetMap() *StepMap
	// Invert creates an inverted version of this step. Needs the document as
	// it was before the step as argument.
	Invert(doc *model.Node) Step
	// Map maps this step through the given mapping, returning a step with
	// adjusted positions. May return nil if the mapping deleted the content
	// the step applies to.
	Map(mapping Mappable) Step
	// Merge attempts to merge this step with another one, to be applied
	// directly after it. Returns the merged step, or ok == false if the
	// steps can not be merged.
	Merge(other Step) (Step, bool)
	// ToJSON creates a JSON-serializeable representation of this step.
	ToJSON() map[string]interface{}
}

// StepResult is the result of applying a Step. Contains either a new
// document or a failure message.
type StepResult struct {
	Doc    *model.Node
	Failed string
}

// Ok builds a successful step result.
func Ok(doc *model.Node) StepResult {
	return StepResult{Doc: doc}
}

// Fail builds a failed step result.
func Fail(message string) StepResult {
	return StepResult{Failed: message}
}

// FromReplace builds a step result by replacing a range of the document with
// a slice, surfacing any replace error as a failed result rather than an
// error return, mirroring how Step.apply reports problems upstream.
func FromReplace(doc *model.Node, from, to int, slice *model.Slice) StepResult {
	dFrom, err := doc.Resolve(from)
	if err != nil {
		return Fail(err.Error())
	}
	dTo, err := doc.Resolve(to)
	if err != nil {
		return Fail(err.Error())
	}
	newDoc, err := model.Replace(dFrom, dTo, slice)
	if err != nil {
		return Fail(err.Error())
	}
	return Ok(newDoc)
}

type transformError struct {
	message string
}

func (e *transformError) Error() string { return e.message }

func newTransformError(format string, args ...interface{}) error {
	return &transformError{message: fmt.Sprintf(format, args...)}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

type stepFromJSONFunc func(schema *model.Schema, obj map[string]interface{}) (Step, error)

var stepsByID = map[string]stepFromJSONFunc{}

// AddStep registers a new step type, providing the serialization ID, and
// parsing function.
func AddStep(id string, fn stepFromJSONFunc) {
	stepsByID[id] = fn
}

// StepFromJSON deserializes a step from its JSON representation. The step
// type ID figures in the serialized data in the stepType property.
func StepFromJSON(schema *model.Schema, raw []byte) (Step, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	id, ok := obj["stepType"].(string)
	if !ok {
		return nil, newTransformError("Invalid input for Step.fromJSON")
	}
	fn, ok := stepsByID[id]
	if !ok {
		return nil, newTransformError("No step type %s defined", id)
	}
	return fn(schema, obj)
}
