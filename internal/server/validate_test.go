package server

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/shared"
)

func TestValidator_DecodeItem(t *testing.T) {
	t.Parallel()
	v, err := NewValidator()
	require.NoError(t, err)

	var got shared.ItemCreate
	require.NoError(t, v.Decode(strings.NewReader(`{"name":"Widget","price":3.25}`), v.ItemCreate, &got))
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, 3.25, got.Price)
	assert.Nil(t, got.InStock)
	assert.True(t, got.Stock())
}

func TestValidator_ReportsEveryViolationInFieldOrder(t *testing.T) {
	t.Parallel()
	v, err := NewValidator()
	require.NoError(t, err)

	var dst shared.ItemCreate
	err = v.Decode(strings.NewReader(`{"in_stock":"no","price":-1,"name":""}`), v.ItemCreate, &dst)

	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Violations, 3)
	assert.Equal(t, "name", ve.Violations[0].Field)
	assert.Equal(t, "price", ve.Violations[1].Field)
	assert.Equal(t, "in_stock", ve.Violations[2].Field)
	assert.Equal(t, "type", ve.Violations[2].Constraint)
	for _, vi := range ve.Violations {
		assert.Equal(t, "body", vi.Location)
	}
}

func TestValidator_RequiredFields(t *testing.T) {
	t.Parallel()
	v, err := NewValidator()
	require.NoError(t, err)

	var dst shared.DivideRequest
	err = v.Decode(strings.NewReader(`{}`), v.Divide, &dst)

	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Violations, 2)
	for i, field := range []string{"a", "b"} {
		assert.Equal(t, field, ve.Violations[i].Field)
		assert.Equal(t, "required", ve.Violations[i].Constraint)
	}
}

func TestValidator_BodyTooLarge(t *testing.T) {
	t.Parallel()
	v, err := NewValidator()
	require.NoError(t, err)

	big := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `","price":1}`
	var dst shared.ItemCreate
	err = v.Decode(strings.NewReader(big), v.ItemCreate, &dst)

	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "max_size", ve.Violations[0].Constraint)
}

func TestEcho(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", echo("short"))
	assert.Nil(t, echo(strings.Repeat("x", maxEchoLength+1)))
	assert.Equal(t, true, echo(true))
	assert.Nil(t, echo(map[string]any{"a": 1}))
	assert.Nil(t, echo([]any{1}))
	assert.Nil(t, echo(nil))
	assert.Equal(t, json.Number("-5"), echo(json.Number("-5")))
	assert.Nil(t, echo(json.Number("1e400")))
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("forty-two")
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "path", ve.Violations[0].Location)
	assert.Equal(t, "forty-two", ve.Violations[0].Value)
}

func TestValidator_NumbersOutsideFloat64Range(t *testing.T) {
	t.Parallel()
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name        string
		schema      *Schema
		body        string
		fields      []string
		constraints []string
	}{
		{"both operands overflow", v.Divide, `{"a":1e400,"b":-1e400}`, []string{"a", "b"}, []string{"finite", "finite"}},
		{"divisor underflows", v.Divide, `{"a":1,"b":1e-400}`, []string{"b"}, []string{"underflow"}},
		{"price underflows", v.ItemCreate, `{"name":"x","price":1e-400}`, []string{"price"}, []string{"underflow"}},
		{"overflow beside schema failure", v.ItemCreate, `{"name":"","price":1e400}`, []string{"name", "price"}, []string{"minLength", "finite"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var dst map[string]any
			err := v.Decode(strings.NewReader(tc.body), tc.schema, &dst)

			var ve *shared.ValidationError
			require.ErrorAs(t, err, &ve)
			var fields, constraints []string
			for _, vi := range ve.Violations {
				fields = append(fields, vi.Field)
				constraints = append(constraints, vi.Constraint)
			}
			assert.Equal(t, tc.fields, fields)
			assert.Equal(t, tc.constraints, constraints)
		})
	}
}

func TestValidator_ZeroLiteralsAreNotUnderflow(t *testing.T) {
	t.Parallel()
	v, err := NewValidator()
	require.NoError(t, err)

	for _, b := range []string{"0", "-0.0", "0e-500", "0.000"} {
		var dst shared.DivideRequest
		assert.NoError(t, v.Decode(strings.NewReader(`{"a":1,"b":`+b+`}`), v.Divide, &dst), b)
		assert.Zero(t, dst.B)
	}
}
