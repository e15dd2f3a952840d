package schema

import "github.com/kaptinlin/jsona"

// JSONASchemaValue pairs a whole-document schema with a table of per-@name
// schemas. Value checks the instance's own data shape; each entry in
// Annotations checks the payload carried by every @name annotation found
// anywhere in the instance, wherever it occurs.
type JSONASchemaValue struct {
	Value       *Schema
	Annotations map[string]*Schema
}

var valueKey = jsona.NewKey("value", jsona.KeyProperty, 0, 0)
var annotationsKey = jsona.NewKey("annotations", jsona.KeyProperty, 0, 0)

// FromNode compiles n into a JSONASchemaValue. An object carrying a "value"
// property is read as a {value, annotations} schema-authoring document:
// "value" compiles to Value, and each property of an "annotations" object
// compiles to a per-name entry in Annotations, keyed by the bare property
// name (no leading '@' — annotation names are looked up without it
// elsewhere in this package, e.g. Annotations.Get("def")). Any other node
// is compiled as a flat, directly-annotated document: the whole thing
// becomes Value and Annotations is empty, which keeps every existing
// Compile call site working unchanged.
func FromNode(n jsona.Node, opts ...CompileOptions) (*JSONASchemaValue, error) {
	if obj, ok := n.(*jsona.ObjectNode); ok {
		if valueNode, err := obj.TryGet(jsona.PropertyKeyOf(valueKey)); err == nil {
			value, err := Compile(valueNode, opts...)
			if err != nil {
				return nil, err
			}

			annotations := map[string]*Schema{}
			if annNode, err := obj.TryGet(jsona.PropertyKeyOf(annotationsKey)); err == nil {
				annObj, ok := annNode.(*jsona.ObjectNode)
				if !ok {
					return nil, &CompileError{Kind: ErrUnexpectedType, Message: `"annotations" must be an object`}
				}
				for _, e := range annObj.Entries {
					sch, err := Compile(e.Value, opts...)
					if err != nil {
						return nil, err
					}
					annotations[e.Key.Value()] = sch
				}
			}

			return &JSONASchemaValue{Value: value, Annotations: annotations}, nil
		}
	}

	value, err := Compile(n, opts...)
	if err != nil {
		return nil, err
	}
	return &JSONASchemaValue{Value: value, Annotations: map[string]*Schema{}}, nil
}
