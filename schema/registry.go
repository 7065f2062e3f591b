package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrDuplicateSchema = errors.New("schema already registered")
	ErrUnknownSchema   = errors.New("schema not registered")
	ErrInvalidDocument = errors.New("schema document is not valid JSON")
)

const baseURL = "https://schemas.devconnect.dev/"

// Builder collects schema documents before they are compiled into a Registry.
// A Builder is not safe for concurrent use.
type Builder struct {
	docs map[string][]byte
}

func NewBuilder() *Builder {
	return &Builder{docs: make(map[string][]byte)}
}

// Register stores doc under name. Registering the same name twice is an error.
func (b *Builder) Register(name string, doc []byte) error {
	if name == "" {
		return errors.New("schema name cannot be empty")
	}
	if _, ok := b.docs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSchema, name)
	}
	if !json.Valid(doc) {
		return fmt.Errorf("%w: %s", ErrInvalidDocument, name)
	}
	b.docs[name] = doc
	return nil
}

// Build compiles every registered document once. The returned Registry is
// immutable and safe to share between goroutines.
func (b *Builder) Build() (*Registry, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	compiler.AssertFormat = true

	names := make([]string, 0, len(b.docs))
	for name := range b.docs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := compiler.AddResource(baseURL+name+".json", bytes.NewReader(b.docs[name])); err != nil {
			return nil, fmt.Errorf("adding schema %s: %w", name, err)
		}
	}

	compiled := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		s, err := compiler.Compile(baseURL + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("compiling schema %s: %w", name, err)
		}
		compiled[name] = s
	}

	return &Registry{schemas: compiled}, nil
}

type Registry struct {
	schemas map[string]*jsonschema.Schema
}

// FieldError is one offending field and the reason it was rejected.
// Nested fields use dotted paths, e.g. "tech_stack.0".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Result struct {
	Valid  bool
	Errors []FieldError
	Data   any
}

// FieldMap flattens Errors into field -> message, first message per field wins.
func (r Result) FieldMap() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, fe := range r.Errors {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

func (r *Registry) Has(name string) bool {
	_, ok := r.schemas[name]
	return ok
}

// Validate runs the named schema against data, which must be a decoded JSON
// value (map[string]any, []any, string, float64, bool or nil).
func (r *Registry) Validate(name string, data any) (Result, error) {
	s, ok := r.schemas[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}

	err := s.Validate(data)
	if err == nil {
		return Result{Valid: true, Errors: nil, Data: data}, nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return Result{}, fmt.Errorf("validating against %s: %w", name, err)
	}

	var fieldErrs []FieldError
	collectLeaves(ve, &fieldErrs)
	if len(fieldErrs) == 0 {
		fieldErrs = []FieldError{{Field: "body", Message: ve.Message}}
	}
	return Result{Valid: false, Errors: fieldErrs}, nil
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]FieldError) {
	if len(ve.Causes) == 0 {
		*out = append(*out, toFieldErrors(ve)...)
		return
	}
	for _, cause := range ve.Causes {
		collectLeaves(cause, out)
	}
}

var quotedName = regexp.MustCompile(`'([^']+)'|"([^"]+)"`)

func toFieldErrors(ve *jsonschema.ValidationError) []FieldError {
	keyword := lastSegment(ve.KeywordLocation)
	path := pointerToPath(ve.InstanceLocation)

	switch keyword {
	case "required", "additionalProperties":
		reason := "is required"
		if keyword == "additionalProperties" {
			reason = "is not allowed"
		}
		var fes []FieldError
		for _, m := range quotedName.FindAllStringSubmatch(ve.Message, -1) {
			name := m[1]
			if name == "" {
				name = m[2]
			}
			fes = append(fes, FieldError{Field: joinPath(path, name), Message: reason})
		}
		if len(fes) > 0 {
			return fes
		}
	}

	if path == "" {
		path = keyword
	}
	return []FieldError{{Field: path, Message: ve.Message}}
}

func lastSegment(keywordLocation string) string {
	parts := strings.Split(keywordLocation, "/")
	return parts[len(parts)-1]
}

// pointerToPath turns a JSON pointer like "/tech_stack/0" into "tech_stack.0".
func pointerToPath(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return ""
	}
	segments := strings.Split(pointer, "/")
	for i, seg := range segments {
		seg = strings.ReplaceAll(seg, "~1", "/")
		segments[i] = strings.ReplaceAll(seg, "~0", "~")
	}
	return strings.Join(segments, ".")
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
