package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"stockroom/internal/shared"
)

//go:embed schemas/*.json
var schemasFS embed.FS

const (
	maxBodyBytes  = 1 << 20
	maxEchoLength = 100
)

// Schema is one compiled request schema. Fields fixes the order violations
// are reported in.
type Schema struct {
	Name     string
	Fields   []string
	Raw      []byte
	required []string
	compiled *jsonschema.Schema
}

func compileSchema(file string, fields ...string) (*Schema, error) {
	raw, err := schemasFS.ReadFile("schemas/" + file)
	if err != nil {
		return nil, err
	}

	var head struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", file, err)
	}

	// The schemas double as OpenAPI 3.0 component schemas, which use the
	// draft-4 boolean form of exclusiveMinimum.
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft4
	if err := compiler.AddResource(file, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", file, err)
	}
	compiled, err := compiler.Compile(file)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", file, err)
	}

	return &Schema{
		Name:     strings.TrimSuffix(file, ".json"),
		Fields:   fields,
		Raw:      raw,
		required: head.Required,
		compiled: compiled,
	}, nil
}

type Validator struct {
	ItemCreate *Schema
	Divide     *Schema
}

func NewValidator() (*Validator, error) {
	itemCreate, err := compileSchema("item_create.json", "name", "price", "in_stock")
	if err != nil {
		return nil, err
	}
	divide, err := compileSchema("divide.json", "a", "b")
	if err != nil {
		return nil, err
	}
	return &Validator{ItemCreate: itemCreate, Divide: divide}, nil
}

// Decode reads a JSON body, checks it against s and only then decodes it into
// dst. Every violation is reported, not just the first.
func (v *Validator) Decode(r io.Reader, s *Schema, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return bodyViolation("read", "could not read request body")
	}
	if len(body) > maxBodyBytes {
		return bodyViolation("max_size", fmt.Sprintf("request body exceeds %d bytes", maxBodyBytes))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return bodyViolation("json", "request body is not valid JSON")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return bodyViolation("json", "unexpected data after JSON value")
	}

	var ve *jsonschema.ValidationError
	if err := s.compiled.Validate(doc); err != nil && !errors.As(err, &ve) {
		return fmt.Errorf("validate %s: %w", s.Name, err)
	}
	if out := s.violations(ve, doc); len(out) > 0 {
		return &shared.ValidationError{Violations: out}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return bodyViolation("json", "request body does not match "+s.Name)
	}
	return nil
}

func bodyViolation(constraint, msg string) error {
	return &shared.ValidationError{Violations: []shared.Violation{{
		Field:      "body",
		Location:   "body",
		Constraint: constraint,
		Message:    msg,
	}}}
}

func (s *Schema) violations(ve *jsonschema.ValidationError, doc any) []shared.Violation {
	var out []shared.Violation
	if ve != nil {
		s.collect(ve, doc, &out)
	}
	out = append(out, s.rangeViolations(doc)...)

	rank := func(field string) int {
		if i := slices.Index(s.Fields, field); i >= 0 {
			return i
		}
		if field == "body" {
			return -1
		}
		return len(s.Fields)
	}
	slices.SortStableFunc(out, func(a, b shared.Violation) int {
		return rank(a.Field) - rank(b.Field)
	})
	return out
}

// rangeViolations reports numeric fields whose literal has no float64
// counterpart: overflow to ±Inf, or a non-zero literal that rounds to 0.
// The schema check runs on exact decimals and cannot see either case.
func (s *Schema) rangeViolations(doc any) []shared.Violation {
	obj, _ := doc.(map[string]any)
	var out []shared.Violation
	for _, field := range s.Fields {
		n, ok := obj[field].(json.Number)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(n.String(), 64)
		switch {
		case err != nil || math.IsInf(f, 0) || math.IsNaN(f):
			out = append(out, shared.Violation{
				Field:      field,
				Location:   "body",
				Constraint: "finite",
				Message:    "must be a finite number",
			})
		case f == 0 && !zeroLiteral(n):
			out = append(out, shared.Violation{
				Field:      field,
				Location:   "body",
				Constraint: "underflow",
				Message:    "non-zero value is too small to represent",
			})
		}
	}
	return out
}

// zeroLiteral reports whether every mantissa digit of n is 0.
func zeroLiteral(n json.Number) bool {
	mantissa, _, _ := strings.Cut(strings.ToLower(n.String()), "e")
	return strings.Trim(mantissa, "-+0.") == ""
}

func (s *Schema) collect(ve *jsonschema.ValidationError, doc any, out *[]shared.Violation) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			s.collect(c, doc, out)
		}
		return
	}

	obj, _ := doc.(map[string]any)
	keyword := path.Base(ve.KeywordLocation)

	if keyword == "required" && obj != nil {
		for _, name := range s.required {
			if _, ok := obj[name]; !ok {
				*out = append(*out, shared.Violation{
					Field:      name,
					Location:   "body",
					Constraint: "required",
					Message:    "field required",
				})
			}
		}
		return
	}

	field := strings.ReplaceAll(strings.TrimPrefix(ve.InstanceLocation, "/"), "/", ".")
	if field == "" {
		field = "body"
	}
	v := shared.Violation{
		Field:      field,
		Location:   "body",
		Constraint: keyword,
		Message:    ve.Message,
	}
	if obj != nil {
		v.Value = echo(obj[field])
	}
	*out = append(*out, v)
}

// echo returns scalar values that are safe to send back; composites and long
// strings are dropped.
func echo(v any) any {
	switch x := v.(type) {
	case string:
		if utf8.RuneCountInString(x) > maxEchoLength {
			return nil
		}
		return x
	case json.Number:
		if _, err := x.Float64(); err != nil {
			return nil
		}
		return x
	case bool:
		return x
	default:
		return nil
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &shared.ValidationError{Violations: []shared.Violation{{
			Field:      "id",
			Location:   "path",
			Constraint: "integer",
			Message:    "must be an integer",
			Value:      echo(raw),
		}}}
	}
	return id, nil
}
