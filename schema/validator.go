package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kaptinlin/go-i18n"

	"github.com/kaptinlin/jsona"
)

// NodeValidationError reports one keyword failure at one position in a
// jsona document, located by Keys rather than by the JSON-pointer strings
// EvaluationResult deals in internally.
type NodeValidationError struct {
	Keys    jsona.Keys
	Keyword string
	Message string
}

func (e *NodeValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Keys.String(), e.Message, e.Keyword)
}

// Validator runs a compiled JSONASchemaValue against a jsona document,
// translating the JSON-pointer-keyed EvaluationResult into Keys-located
// errors.
type Validator struct {
	schema    *JSONASchemaValue
	localizer *i18n.Localizer
}

// NewValidator wraps a compiled schema value for repeated validation.
func NewValidator(s *JSONASchemaValue) *Validator {
	return &Validator{schema: s}
}

// WithLocalizer sets the localizer used to render error messages.
func (v *Validator) WithLocalizer(l *i18n.Localizer) *Validator {
	v.localizer = l
	return v
}

// Validate checks n against the wrapped schema's Value, then walks every
// annotation reachable anywhere in n (via FlatIter, which descends into
// annotation payloads the same way it descends into object/array children)
// and, for each whose name matches an entry in the wrapped schema's
// Annotations table, checks that annotation's own payload against it too.
// Errors are located by the full Keys path to the failing value — including
// any annotation segments — and the result is ordered by Keys path then
// keyword for determinism.
func (v *Validator) Validate(n jsona.Node) ([]NodeValidationError, error) {
	plain, err := n.ToPlainJSON()
	if err != nil {
		return nil, err
	}

	out, err := validateValue(v.schema.Value, plain, nil, v.localizer)
	if err != nil {
		return nil, err
	}

	if len(v.schema.Annotations) > 0 {
		for keys, node := range n.FlatIter() {
			if len(keys) == 0 {
				continue
			}
			last := keys[len(keys)-1]
			if last.Kind != jsona.KeyOrIndexAnnotation {
				continue
			}
			sch, ok := v.schema.Annotations[last.Key.Value()]
			if !ok {
				continue
			}
			annPlain, err := node.ToPlainJSON()
			if err != nil {
				return nil, err
			}
			errs, err := validateValue(sch, annPlain, keys, v.localizer)
			if err != nil {
				return nil, err
			}
			out = append(out, errs...)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if si, sj := out[i].Keys.String(), out[j].Keys.String(); si != sj {
			return si < sj
		}
		return out[i].Keyword < out[j].Keyword
	})

	return out, nil
}

// validateValue runs schema against plain and prefixes every resulting
// error's Keys with prefix, so an annotation-payload error is located by its
// full path (the annotation's own position, then wherever inside its
// payload the failure is) rather than relative to the payload alone.
func validateValue(schema *Schema, plain any, prefix jsona.Keys, localizer *i18n.Localizer) ([]NodeValidationError, error) {
	result := schema.Validate(plain)
	if result.IsValid() {
		return nil, nil
	}

	// Each detail's InstanceLocation is relative to its parent result, so
	// flatten the hierarchy while joining locations from the root down.
	var entries []List
	var flatten func(l List, base string)
	flatten = func(l List, base string) {
		l.InstanceLocation = base + l.InstanceLocation
		entries = append(entries, l)
		for _, d := range l.Details {
			flatten(d, l.InstanceLocation)
		}
	}
	flatten(*result.ToLocalizeList(localizer, true), "")

	var out []NodeValidationError
	for _, entry := range entries {
		if len(entry.Errors) == 0 {
			continue
		}
		keys, err := keysFromPointer(entry.InstanceLocation)
		if err != nil {
			return nil, err
		}
		var full jsona.Keys
		full = append(full, prefix...)
		full = append(full, keys...)

		keywords := make([]string, 0, len(entry.Errors))
		for kw := range entry.Errors {
			keywords = append(keywords, kw)
		}
		sort.Strings(keywords)
		for _, kw := range keywords {
			out = append(out, NodeValidationError{Keys: full, Keyword: kw, Message: entry.Errors[kw]})
		}
	}
	return out, nil
}

// keysFromPointer converts a JSON pointer (RFC 6901, as produced in
// EvaluationResult.InstanceLocation) into a jsona.Keys path. Numeric
// segments become array indices; everything else becomes a property key.
func keysFromPointer(ptr string) (jsona.Keys, error) {
	if ptr == "" {
		return nil, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, fmt.Errorf("schema: malformed instance location %q", ptr)
	}

	var keys jsona.Keys
	for _, seg := range strings.Split(ptr[1:], "/") {
		seg = strings.ReplaceAll(seg, "~1", "/")
		seg = strings.ReplaceAll(seg, "~0", "~")
		if idx, err := strconv.Atoi(seg); err == nil && (seg == "0" || seg[0] != '0') {
			keys = keys.Child(jsona.IndexOf(idx))
			continue
		}
		keys = keys.Child(jsona.PropertyKeyOf(jsona.NewKey(seg, jsona.KeyProperty, 0, 0)))
	}
	return keys, nil
}
