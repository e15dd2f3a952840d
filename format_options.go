package jsona

// Options controls the formatter's layout decisions. Defaults follow
// spec.md's documented style rather than original_source's Rust defaults
// (see DESIGN.md): this module's public contract governs.
type Options struct {
	IndentString      string
	TrailingComma     bool
	TrailingNewline   bool
	FormatKey         bool
	CRLF              bool
	AllowedBlankLines int
	ColumnWidth       int
}

// DefaultOptions returns the formatter's documented defaults.
func DefaultOptions() Options {
	return Options{
		IndentString:      "  ",
		TrailingComma:     true,
		TrailingNewline:   true,
		FormatKey:         false,
		CRLF:              false,
		AllowedBlankLines: 2,
		ColumnWidth:       80,
	}
}

func (o Options) newline() string {
	if o.CRLF {
		return "\r\n"
	}
	return "\n"
}

// OptionsPatch overrides a subset of Options fields. Used by
// FormatWithPathScopes to vary layout for a matched subtree without
// restating every field.
type OptionsPatch struct {
	IndentString      *string
	TrailingComma     *bool
	TrailingNewline   *bool
	FormatKey         *bool
	CRLF              *bool
	AllowedBlankLines *int
	ColumnWidth       *int
}

func (o Options) withPatch(p OptionsPatch) Options {
	out := o
	if p.IndentString != nil {
		out.IndentString = *p.IndentString
	}
	if p.TrailingComma != nil {
		out.TrailingComma = *p.TrailingComma
	}
	if p.TrailingNewline != nil {
		out.TrailingNewline = *p.TrailingNewline
	}
	if p.FormatKey != nil {
		out.FormatKey = *p.FormatKey
	}
	if p.CRLF != nil {
		out.CRLF = *p.CRLF
	}
	if p.AllowedBlankLines != nil {
		out.AllowedBlankLines = *p.AllowedBlankLines
	}
	if p.ColumnWidth != nil {
		out.ColumnWidth = *p.ColumnWidth
	}
	return out
}
