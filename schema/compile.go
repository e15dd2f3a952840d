package schema

import (
	"fmt"
	"regexp"

	"github.com/go-json-experiment/json"

	"github.com/kaptinlin/jsona"
)

// CompileOptions controls the policy decisions the annotation table itself
// leaves open.
type CompileOptions struct {
	// PreferOptional flips the default required-ness of object properties:
	// false (the default) makes every property required unless annotated
	// @optional; true makes every property optional unless annotated
	// @required.
	PreferOptional bool

	// RefPrefix is prepended to $defs names when building the $ref strings
	// @def/@ref compile to. Defaults to "#/$defs/"; override to anchor the
	// compiled schema's definitions under a different document URI.
	RefPrefix string
}

func (o CompileOptions) refPrefix() string {
	if o.RefPrefix != "" {
		return o.RefPrefix
	}
	return "#/$defs/"
}

// CompileErrorKind identifies which annotation-compilation failure a
// CompileError reports.
type CompileErrorKind string

const (
	ErrConflictDef         CompileErrorKind = "ConflictDef"
	ErrUnknownRef          CompileErrorKind = "UnknownRef"
	ErrUnexpectedType      CompileErrorKind = "UnexpectedType"
	ErrInvalidSchemaValue  CompileErrorKind = "InvalidSchemaValue"
	ErrUnmatchedSchemaType CompileErrorKind = "UnmatchedSchemaType"
)

// CompileError is returned by Compile when a node's annotations cannot be
// turned into a schema fragment: a duplicate @def name, an @ref to a name
// not yet defined, a malformed annotation value, or an inferred type that
// disagrees with an explicit @schema type.
type CompileError struct {
	Kind    CompileErrorKind
	Keys    jsona.Keys
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Keys.String(), e.Message)
}

// Compile walks an annotated jsona document and builds the JSON Schema it
// describes, per the @schema/@describe/@default/@example/@def/@ref/
// @pattern/@required/@optional/@compound/@anytype annotation table: @def is
// checked first (registering the built subtree under $defs and replacing
// this position with a $ref to it), then @ref (resolving to an
// already-registered $defs entry; forward references are not supported),
// then @schema is merged onto the schema being built, then children are
// recursed into, and finally @anytype is applied, clearing whatever type
// was inferred or declared.
func Compile(n jsona.Node, opts ...CompileOptions) (*Schema, error) {
	var o CompileOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	c := &compiler{opts: o, defs: map[string]*Schema{}}
	sch, err := c.compileNode(n, nil)
	if err != nil {
		return nil, err
	}
	if len(c.defs) > 0 {
		sch.Defs = c.defs
	}
	// Link parent pointers across the whole tree (Defs included) and resolve
	// every $ref an @def/@ref pair produced, the same way constructor.go's
	// fluent builders finalize a schema built without a byte-based Compiler.
	sch.initializeSchema(nil, nil)
	return sch, nil
}

type compiler struct {
	opts CompileOptions
	defs map[string]*Schema
}

func (c *compiler) compileNode(n jsona.Node, keys jsona.Keys) (*Schema, error) {
	ann := n.Annotations()

	if defVal, ok := ann.Get("def"); ok {
		name, err := annotationString(defVal, keys, "def")
		if err != nil {
			return nil, err
		}
		if _, exists := c.defs[name]; exists {
			return nil, &CompileError{Kind: ErrConflictDef, Keys: keys, Message: fmt.Sprintf("duplicate @def(%q)", name)}
		}
		built, err := c.buildSchema(n, keys, ann)
		if err != nil {
			return nil, err
		}
		c.defs[name] = built
		return &Schema{Ref: c.opts.refPrefix() + name}, nil
	}

	if refVal, ok := ann.Get("ref"); ok {
		name, err := annotationString(refVal, keys, "ref")
		if err != nil {
			return nil, err
		}
		if _, exists := c.defs[name]; !exists {
			return nil, &CompileError{Kind: ErrUnknownRef, Keys: keys, Message: fmt.Sprintf("@ref(%q) to an undefined @def", name)}
		}
		return &Schema{Ref: c.opts.refPrefix() + name}, nil
	}

	return c.buildSchema(n, keys, ann)
}

func (c *compiler) buildSchema(n jsona.Node, keys jsona.Keys, ann *jsona.Annotations) (*Schema, error) {
	sch := &Schema{}
	hadExplicitType := false

	if schemaVal, ok := ann.Get("schema"); ok {
		obj, ok := schemaVal.(*jsona.ObjectNode)
		if !ok {
			return nil, &CompileError{Kind: ErrUnexpectedType, Keys: keys, Message: "@schema(...) requires an object value"}
		}
		plain, err := obj.ToPlainJSON()
		if err != nil {
			return nil, &CompileError{Kind: ErrInvalidSchemaValue, Keys: keys, Message: err.Error()}
		}
		raw, err := json.Marshal(plain)
		if err != nil {
			return nil, &CompileError{Kind: ErrInvalidSchemaValue, Keys: keys, Message: err.Error()}
		}
		if err := json.Unmarshal(raw, sch); err != nil {
			return nil, &CompileError{Kind: ErrInvalidSchemaValue, Keys: keys, Message: err.Error()}
		}
		hadExplicitType = len(sch.Type) > 0
	}

	if describeVal, ok := ann.Get("describe"); ok {
		s, err := annotationString(describeVal, keys, "describe")
		if err != nil {
			return nil, err
		}
		sch.Description = &s
	}

	if _, ok := ann.Get("default"); ok {
		plain, err := n.ToPlainJSON()
		if err != nil {
			return nil, &CompileError{Kind: ErrInvalidSchemaValue, Keys: keys, Message: err.Error()}
		}
		sch.Default = plain
	}

	if _, ok := ann.Get("example"); ok {
		plain, err := n.ToPlainJSON()
		if err != nil {
			return nil, &CompileError{Kind: ErrInvalidSchemaValue, Keys: keys, Message: err.Error()}
		}
		sch.Examples = append(sch.Examples, plain)
	}

	compoundVal, isCompound := ann.Get("compound")
	var compoundKind string
	if isCompound {
		s, err := annotationString(compoundVal, keys, "compound")
		if err != nil {
			return nil, err
		}
		switch s {
		case "anyOf", "oneOf", "allOf":
			compoundKind = s
		default:
			return nil, &CompileError{Kind: ErrInvalidSchemaValue, Keys: keys, Message: "@compound(...) must be \"anyOf\", \"oneOf\", or \"allOf\""}
		}
	}

	inferred := inferredType(n)
	if hadExplicitType {
		if inferred != "" && !schemaTypeContains(sch.Type, inferred) {
			return nil, &CompileError{Kind: ErrUnmatchedSchemaType, Keys: keys, Message: fmt.Sprintf("inferred type %q conflicts with @schema type %v", inferred, sch.Type)}
		}
	} else if inferred != "" {
		sch.Type = SchemaType{inferred}
	}

	switch node := n.(type) {
	case *jsona.ObjectNode:
		if err := c.compileObjectProperties(node, keys, sch); err != nil {
			return nil, err
		}

	case *jsona.ArrayNode:
		if isCompound {
			target := &sch.AnyOf
			switch compoundKind {
			case "oneOf":
				target = &sch.OneOf
			case "allOf":
				target = &sch.AllOf
			}
			for i, item := range node.Items {
				childSchema, err := c.compileNode(item, keys.Child(jsona.IndexOf(i)))
				if err != nil {
					return nil, err
				}
				*target = append(*target, childSchema)
			}
			sch.Items = nil
		} else if len(node.Items) > 0 {
			prefix := make([]*Schema, 0, len(node.Items))
			for i, item := range node.Items {
				childSchema, err := c.compileNode(item, keys.Child(jsona.IndexOf(i)))
				if err != nil {
					return nil, err
				}
				prefix = append(prefix, childSchema)
			}
			sch.PrefixItems = prefix
		}
	}

	if _, ok := ann.Get("anytype"); ok {
		sch.Type = nil
	}

	return sch, nil
}

func (c *compiler) compileObjectProperties(node *jsona.ObjectNode, keys jsona.Keys, sch *Schema) error {
	props := SchemaMap{}
	patternProps := SchemaMap{}
	var required []string

	for _, e := range node.Entries {
		name := e.Key.Value()
		childKeys := keys.Child(jsona.PropertyKeyOf(e.Key))
		childSchema, err := c.compileNode(e.Value, childKeys)
		if err != nil {
			return err
		}

		childAnn := e.Value.Annotations()
		if patVal, ok := childAnn.Get("pattern"); ok {
			pat, err := annotationString(patVal, childKeys, "pattern")
			if err != nil {
				return err
			}
			if _, err := regexp.Compile(pat); err != nil {
				return &CompileError{Kind: ErrInvalidSchemaValue, Keys: childKeys, Message: "invalid @pattern regex: " + err.Error()}
			}
			patternProps[pat] = childSchema
			continue
		}

		props[name] = childSchema

		_, explicitRequired := childAnn.Get("required")
		_, explicitOptional := childAnn.Get("optional")
		included := !explicitOptional
		if c.opts.PreferOptional {
			included = explicitRequired
		}
		if included {
			required = append(required, name)
		}
	}

	if len(props) > 0 {
		sch.Properties = &props
	}
	if len(patternProps) > 0 {
		sch.PatternProperties = &patternProps
	}
	if len(required) > 0 {
		sch.Required = required
	}
	return nil
}

// annotationString reads an annotation value that must be a plain string,
// such as @def("name") or @describe("..."). Bare annotations (@required)
// decode to a BoolNode and are never passed here.
func annotationString(v jsona.Node, keys jsona.Keys, name string) (string, error) {
	s, ok := v.(*jsona.StringNode)
	if !ok {
		return "", &CompileError{Kind: ErrUnexpectedType, Keys: keys, Message: "@" + name + "(...) requires a string value"}
	}
	return s.Value, nil
}

func schemaTypeContains(t SchemaType, want string) bool {
	for _, s := range t {
		if s == want {
			return true
		}
	}
	return false
}

// inferredType maps a DOM node's kind onto the JSON Schema "type" keyword,
// distinguishing integer from number by the literal's own form.
func inferredType(n jsona.Node) string {
	switch v := n.(type) {
	case *jsona.NullNode:
		return "null"
	case *jsona.BoolNode:
		return "boolean"
	case *jsona.NumberNode:
		if v.IsInteger {
			return "integer"
		}
		return "number"
	case *jsona.StringNode:
		return "string"
	case *jsona.ArrayNode:
		return "array"
	case *jsona.ObjectNode:
		return "object"
	default:
		return ""
	}
}
