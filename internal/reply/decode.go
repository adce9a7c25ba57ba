package reply

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dgallion1/notegest/internal/section"
	"github.com/dgallion1/notegest/internal/tags"
)

//go:embed schema.json
var schemaSource []byte

const schemaURL = "reply.schema.json"

// Decoder turns raw completions into replies. It holds the compiled reply
// schema and is safe for concurrent use.
type Decoder struct {
	format Format
	schema *jsonschema.Schema
}

// NewDecoder compiles the structured reply schema.
func NewDecoder(format Format) (*Decoder, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
		return nil, fmt.Errorf("add reply schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile reply schema: %w", err)
	}
	return &Decoder{format: format, schema: schema}, nil
}

// Format returns the reply shape this decoder expects.
func (d *Decoder) Format() Format {
	return d.format
}

// Decode parses raw according to the decoder's format.
func (d *Decoder) Decode(raw string) (Reply, error) {
	if d.format == FormatJSON {
		return d.DecodeStructured(raw)
	}
	return DecodePlain(raw), nil
}

// DecodePlain treats raw as the replacement block. Headings are checked when
// the block is merged.
func DecodePlain(raw string) Reply {
	return Reply{Kind: Plain, Replacement: raw}
}

type structuredReply struct {
	Section2 string   `json:"section2"`
	Section3 string   `json:"section3"`
	Tags     []string `json:"tags"`
}

// DecodeStructured parses a JSON object reply with section2, section3 and
// tags fields.
func (d *Decoder) DecodeStructured(raw string) (Reply, error) {
	body := stripCodeBlock(raw)

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Reply{}, &section.SchemaError{Kind: section.ErrInvalidJSON, Detail: fmt.Sprintf("%v (raw: %s)", err, truncate(body, 200))}
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return Reply{}, &section.SchemaError{Kind: section.ErrInvalidJSON, Detail: fmt.Sprintf("trailing data after json value (raw: %s)", truncate(body, 200))}
	}
	if _, ok := doc.(map[string]any); !ok {
		return Reply{}, &section.SchemaError{Kind: section.ErrNotObject, Detail: fmt.Sprintf("got %s", jsonKind(doc))}
	}
	if err := d.schema.Validate(doc); err != nil {
		return Reply{}, schemaViolation(err)
	}

	var sr structuredReply
	if err := json.Unmarshal([]byte(body), &sr); err != nil {
		return Reply{}, &section.SchemaError{Kind: section.ErrFieldType, Detail: err.Error()}
	}
	canon, err := tags.Canonicalize(sr.Tags)
	if err != nil {
		return Reply{}, err
	}

	return Reply{
		Kind:        Structured,
		Replacement: strings.TrimSpace(sr.Section2) + "\n\n" + strings.TrimSpace(sr.Section3),
		Tags:        canon,
	}, nil
}

// schemaViolation maps the first failing schema keyword to a violation kind.
func schemaViolation(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &section.SchemaError{Kind: section.ErrFieldType, Detail: err.Error()}
	}
	leaf := firstLeaf(ve)
	kind := section.ErrFieldType
	if strings.HasSuffix(leaf.KeywordLocation, "/required") {
		kind = section.ErrMissingField
	}
	loc := leaf.InstanceLocation
	if loc == "" {
		loc = "#"
	}
	return &section.SchemaError{Kind: kind, Detail: loc + ": " + leaf.Message}
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
