package schema_test

import (
	"testing"

	"github.com/kaptinlin/jsona/schema"
	"github.com/stretchr/testify/assert"
)

func TestStringKeywords(t *testing.T) {
	tests := []struct {
		name    string
		schema  *schema.Schema
		valid   any
		invalid any
	}{
		{
			name:    "MinLen valid",
			schema:  schema.String(schema.MinLen(3)),
			valid:   "hello",
			invalid: "hi",
		},
		{
			name:    "MinLen invalid",
			schema:  schema.String(schema.MinLen(5)),
			valid:   "hello",
			invalid: "hi",
		},
		{
			name:    "MaxLen valid",
			schema:  schema.String(schema.MaxLen(5)),
			valid:   "hello",
			invalid: "hello world",
		},
		{
			name:    "MaxLen invalid",
			schema:  schema.String(schema.MaxLen(3)),
			valid:   "hi",
			invalid: "hello",
		},
		{
			name:    "Pattern valid",
			schema:  schema.String(schema.Pattern("^[a-z]+$")),
			valid:   "hello",
			invalid: "Hello123",
		},
		{
			name:    "Pattern invalid",
			schema:  schema.String(schema.Pattern("^\\d+$")),
			valid:   "123",
			invalid: "abc",
		},
		{
			name: "Combined string keywords",
			schema: schema.String(
				schema.MinLen(3),
				schema.MaxLen(10),
				schema.Pattern("^[a-z]+$"),
			),
			valid:   "hello",
			invalid: "Hi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Test valid data
			result := tt.schema.Validate(tt.valid)
			assert.True(t, result.IsValid(), "Expected valid data to pass validation, got errors: %v", result.Errors)

			// Test invalid data
			result = tt.schema.Validate(tt.invalid)
			assert.False(t, result.IsValid(), "Expected invalid data to fail validation")
		})
	}
}

func TestNumberKeywords(t *testing.T) {
	tests := []struct {
		name    string
		schema  *schema.Schema
		valid   any
		invalid any
	}{
		{
			name:    "Min valid",
			schema:  schema.Number(schema.Min(5)),
			valid:   10.5,
			invalid: 3.2,
		},
		{
			name:    "Min invalid",
			schema:  schema.Integer(schema.Min(10)),
			valid:   15,
			invalid: 5,
		},
		{
			name:    "Max valid",
			schema:  schema.Number(schema.Max(100)),
			valid:   50.5,
			invalid: 150.2,
		},
		{
			name:    "Max invalid",
			schema:  schema.Integer(schema.Max(50)),
			valid:   25,
			invalid: 75,
		},
		{
			name:    "ExclusiveMin valid",
			schema:  schema.Number(schema.ExclusiveMin(0)),
			valid:   0.1,
			invalid: 0,
		},
		{
			name:    "ExclusiveMin invalid",
			schema:  schema.Number(schema.ExclusiveMin(10)),
			valid:   10.1,
			invalid: 10,
		},
		{
			name:    "ExclusiveMax valid",
			schema:  schema.Number(schema.ExclusiveMax(100)),
			valid:   99.9,
			invalid: 100,
		},
		{
			name:    "ExclusiveMax invalid",
			schema:  schema.Number(schema.ExclusiveMax(50)),
			valid:   49.9,
			invalid: 50,
		},
		{
			name:    "MultipleOf valid",
			schema:  schema.Number(schema.MultipleOf(2.5)),
			valid:   10.0,
			invalid: 11.0,
		},
		{
			name:    "MultipleOf invalid",
			schema:  schema.Integer(schema.MultipleOf(3)),
			valid:   9,
			invalid: 10,
		},
		{
			name: "Combined number keywords",
			schema: schema.Number(
				schema.Min(0),
				schema.Max(100),
				schema.MultipleOf(5),
			),
			valid:   25.0,
			invalid: 23.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Test valid data
			result := tt.schema.Validate(tt.valid)
			assert.True(t, result.IsValid(), "Expected valid data to pass validation, got errors: %v", result.Errors)

			// Test invalid data
			result = tt.schema.Validate(tt.invalid)
			assert.False(t, result.IsValid(), "Expected invalid data to fail validation")
		})
	}
}

func TestArrayKeywords(t *testing.T) {
	tests := []struct {
		name    string
		schema  *schema.Schema
		valid   any
		invalid any
	}{
		{
			name:    "Items valid",
			schema:  schema.Array(schema.Items(schema.String())),
			valid:   []any{"a", "b", "c"},
			invalid: []any{"a", 123, "c"},
		},
		{
			name:    "Items invalid",
			schema:  schema.Array(schema.Items(schema.Integer())),
			valid:   []any{1, 2, 3},
			invalid: []any{1, "two", 3},
		},
		{
			name:    "MinItems valid",
			schema:  schema.Array(schema.MinItems(2)),
			valid:   []any{1, 2, 3},
			invalid: []any{1},
		},
		{
			name:    "MinItems invalid",
			schema:  schema.Array(schema.MinItems(3)),
			valid:   []any{1, 2, 3, 4},
			invalid: []any{1, 2},
		},
		{
			name:    "MaxItems valid",
			schema:  schema.Array(schema.MaxItems(3)),
			valid:   []any{1, 2},
			invalid: []any{1, 2, 3, 4},
		},
		{
			name:    "MaxItems invalid",
			schema:  schema.Array(schema.MaxItems(2)),
			valid:   []any{1, 2},
			invalid: []any{1, 2, 3},
		},
		{
			name:    "UniqueItems valid",
			schema:  schema.Array(schema.UniqueItems(true)),
			valid:   []any{1, 2, 3},
			invalid: []any{1, 2, 2, 3},
		},
		{
			name:    "UniqueItems invalid",
			schema:  schema.Array(schema.UniqueItems(true)),
			valid:   []any{"a", "b", "c"},
			invalid: []any{"a", "b", "a"},
		},
		{
			name: "Combined array keywords",
			schema: schema.Array(
				schema.Items(schema.String()),
				schema.MinItems(2),
				schema.MaxItems(5),
				schema.UniqueItems(true),
			),
			valid:   []any{"a", "b", "c"},
			invalid: []any{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Test valid data
			result := tt.schema.Validate(tt.valid)
			assert.True(t, result.IsValid(), "Expected valid data to pass validation, got errors: %v", result.Errors)

			// Test invalid data
			result = tt.schema.Validate(tt.invalid)
			assert.False(t, result.IsValid(), "Expected invalid data to fail validation")
		})
	}
}

func TestObjectKeywords(t *testing.T) {
	tests := []struct {
		name    string
		schema  *schema.Schema
		valid   any
		invalid any
	}{
		{
			name: "Required valid",
			schema: schema.Object(
				schema.Prop("name", schema.String()),
				schema.Required("name"),
			),
			valid:   map[string]any{"name": "John"},
			invalid: map[string]any{"age": 25},
		},
		{
			name: "Required invalid",
			schema: schema.Object(
				schema.Prop("name", schema.String()),
				schema.Prop("age", schema.Integer()),
				schema.Required("name", "age"),
			),
			valid:   map[string]any{"name": "John", "age": 25},
			invalid: map[string]any{"name": "John"},
		},
		{
			name: "MinProps valid",
			schema: schema.Object(
				schema.MinProps(2),
			),
			valid:   map[string]any{"a": 1, "b": 2, "c": 3},
			invalid: map[string]any{"a": 1},
		},
		{
			name: "MinProps invalid",
			schema: schema.Object(
				schema.MinProps(3),
			),
			valid:   map[string]any{"a": 1, "b": 2, "c": 3},
			invalid: map[string]any{"a": 1, "b": 2},
		},
		{
			name: "MaxProps valid",
			schema: schema.Object(
				schema.MaxProps(3),
			),
			valid:   map[string]any{"a": 1, "b": 2},
			invalid: map[string]any{"a": 1, "b": 2, "c": 3, "d": 4},
		},
		{
			name: "MaxProps invalid",
			schema: schema.Object(
				schema.MaxProps(2),
			),
			valid:   map[string]any{"a": 1, "b": 2},
			invalid: map[string]any{"a": 1, "b": 2, "c": 3},
		},
		{
			name: "AdditionalProps false valid",
			schema: schema.Object(
				schema.Prop("name", schema.String()),
				schema.AdditionalProps(false),
			),
			valid:   map[string]any{"name": "John"},
			invalid: map[string]any{"name": "John", "age": 25},
		},
		{
			name: "AdditionalProps false invalid",
			schema: schema.Object(
				schema.Prop("name", schema.String()),
				schema.AdditionalProps(false),
			),
			valid:   map[string]any{"name": "John"},
			invalid: map[string]any{"name": "John", "extra": "value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Test valid data
			result := tt.schema.Validate(tt.valid)
			assert.True(t, result.IsValid(), "Expected valid data to pass validation, got errors: %v", result.Errors)

			// Test invalid data
			result = tt.schema.Validate(tt.invalid)
			assert.False(t, result.IsValid(), "Expected invalid data to fail validation")
		})
	}
}

func TestBasicConvenienceFunctions(t *testing.T) {
	tests := []struct {
		name    string
		schema  *schema.Schema
		valid   any
		invalid any
	}{
		{
			name:    "PositiveInt valid",
			schema:  schema.PositiveInt(),
			valid:   5,
			invalid: 0,
		},
		{
			name:    "PositiveInt invalid",
			schema:  schema.PositiveInt(),
			valid:   1,
			invalid: -1,
		},
		{
			name:    "NonNegativeInt valid",
			schema:  schema.NonNegativeInt(),
			valid:   0,
			invalid: -1,
		},
		{
			name:    "NonNegativeInt invalid",
			schema:  schema.NonNegativeInt(),
			valid:   5,
			invalid: -5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Test valid data
			result := tt.schema.Validate(tt.valid)
			assert.True(t, result.IsValid(), "Expected valid data to pass validation, got errors: %v", result.Errors)

			// Test invalid data
			result = tt.schema.Validate(tt.invalid)
			assert.False(t, result.IsValid(), "Expected invalid data to fail validation")
		})
	}
}

func TestAnnotationKeywords(t *testing.T) {
	// Test that annotation keywords don't affect validation
	schema := schema.String(
		schema.Title("User Name"),
		schema.Description("The user's display name"),
		schema.Default("Anonymous"),
		schema.Examples("John", "Jane"),
		schema.MinLen(1),
	)

	result := schema.Validate("Alice")
	assert.True(t, result.IsValid(), "Expected valid string to pass validation, got errors: %v", result.Errors)

	result = schema.Validate("")
	assert.False(t, result.IsValid(), "Expected empty string to fail validation due to minLength")
}

func TestKeywordCombinations(t *testing.T) {
	// Test complex combinations of different keyword types
	schema := schema.Object(
		schema.Prop("username", schema.String(
			schema.MinLen(3),
			schema.MaxLen(20),
			schema.Pattern("^[a-zA-Z0-9_]+$"),
			schema.Title("Username"),
			schema.Description("User's login name"),
		)),
		schema.Prop("age", schema.Integer(
			schema.Min(0),
			schema.Max(150),
			schema.Title("Age"),
		)),
		schema.Prop("tags", schema.Array(
			schema.Items(schema.String(schema.MinLen(1))),
			schema.UniqueItems(true),
			schema.MaxItems(10),
		)),
		schema.Required("username"),
		schema.AdditionalProps(false),
		schema.Title("User Registration"),
		schema.Description("Schema for user registration data"),
	)

	validData := map[string]any{
		"username": "john_doe",
		"age":      25,
		"tags":     []any{"developer", "golang"},
	}

	result := schema.Validate(validData)
	assert.True(t, result.IsValid(), "Expected valid data to pass validation, got errors: %v", result.Errors)

	invalidData := map[string]any{
		"username": "jo", // Too short
		"age":      200,  // Too old
		"extra":    "not allowed",
	}

	result = schema.Validate(invalidData)
	assert.False(t, result.IsValid(), "Expected invalid data to fail validation")
}
