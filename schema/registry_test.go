package schema

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := Default()
	require.NoError(t, err)
	return reg
}

func TestDefaultRegistersEverySchema(t *testing.T) {
	reg := defaultRegistry(t)
	for name := range predefined {
		assert.True(t, reg.Has(name), name)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Register("Thing", []byte(`{"type":"object"}`)))

	err := b.Register("Thing", []byte(`{"type":"string"}`))
	assert.ErrorIs(t, err, ErrDuplicateSchema)
}

func TestRegisterRejectsMalformedDocuments(t *testing.T) {
	err := NewBuilder().Register("Broken", []byte(`{"type":`))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestValidateUnknownSchema(t *testing.T) {
	_, err := defaultRegistry(t).Validate("Nope", map[string]any{})
	assert.ErrorIs(t, err, ErrUnknownSchema)
}

func TestRegisterShortPassword(t *testing.T) {
	reg := defaultRegistry(t)

	res, err := reg.Validate(AuthRegister, map[string]any{
		"email":    "a@b.com",
		"password": "short",
	})
	require.NoError(t, err)

	assert.False(t, res.Valid)
	assert.NotNil(t, res.Errors)
	assert.Nil(t, res.Data)

	fields := res.FieldMap()
	assert.Contains(t, fields, "password")
	assert.Equal(t, "is required", fields["full_name"])
	assert.Equal(t, "is required", fields["username"])
	assert.NotContains(t, fields, "email")
}

func TestValidRegisterPassesDataThrough(t *testing.T) {
	body := map[string]any{
		"email":     "ada@example.com",
		"password":  "correcthorse",
		"full_name": "Ada Lovelace",
		"username":  "ada_l",
	}
	res, err := defaultRegistry(t).Validate(AuthRegister, body)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Equal(t, body, res.Data)
}

func TestFormatsAreAsserted(t *testing.T) {
	reg := defaultRegistry(t)

	res, err := reg.Validate(AuthLogin, map[string]any{"email": "not-an-email", "password": "longenough"})
	require.NoError(t, err)
	assert.Contains(t, res.FieldMap(), "email")

	res, err = reg.Validate(IdParam, map[string]any{"id": "1234"})
	require.NoError(t, err)
	assert.Contains(t, res.FieldMap(), "id")

	res, err = reg.Validate(ProjectIdParam, map[string]any{"projectId": "3f0b1c5e-8d52-4c3a-9a57-2f6f1b0d9e11"})
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestNestedFieldPaths(t *testing.T) {
	res, err := defaultRegistry(t).Validate(ProjectCreate, map[string]any{
		"title":       "Portfolio",
		"description": "A place for my things",
		"tech_stack":  []any{"Go", 42.0},
	})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.FieldMap(), "tech_stack.1")
}

func TestCommentContentMustNotBeBlank(t *testing.T) {
	reg := defaultRegistry(t)

	for _, content := range []string{"", "   "} {
		res, err := reg.Validate(CommentCreate, map[string]any{"content": content})
		require.NoError(t, err)
		assert.False(t, res.Valid, "%q should be rejected", content)
		assert.Contains(t, res.FieldMap(), "content")
	}

	padded := "  " + strings.Repeat("x", 2000) + "\n"
	res, err := reg.Validate(CommentCreate, map[string]any{"content": padded})
	require.NoError(t, err)
	assert.True(t, res.Valid, "length is checked after trimming")
}

func TestPageAndOffsetAreBounded(t *testing.T) {
	reg := defaultRegistry(t)

	for _, name := range []string{PaginationQuery, ProjectListQuery, CommentListQuery, ProfileListQuery} {
		res, err := reg.Validate(name, map[string]any{"page": float64(1e17)})
		require.NoError(t, err)
		assert.False(t, res.Valid, name)
		assert.Contains(t, res.FieldMap(), "page", name)
	}

	for _, name := range []string{ProjectListQuery, UserProjectsQuery} {
		res, err := reg.Validate(name, map[string]any{"offset": float64(1e17)})
		require.NoError(t, err)
		assert.False(t, res.Valid, name)
	}

	res, err := reg.Validate(ProjectListQuery, map[string]any{"page": float64(1000000), "limit": float64(100)})
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestProfileUpdateRejectsUnknownFields(t *testing.T) {
	res, err := defaultRegistry(t).Validate(ProfileUpdate, map[string]any{"email": "x@y.z"})
	require.NoError(t, err)
	assert.Equal(t, "is not allowed", res.FieldMap()["email"])
}

func TestCoerceQuery(t *testing.T) {
	q := url.Values{
		"page":   {"2"},
		"limit":  {"200", "5"},
		"search": {"go"},
		"zip":    {"02134"},
		"inf":    {"Inf"},
		"empty":  {""},
	}
	got := CoerceQuery(q)

	assert.Equal(t, 2.0, got["page"])
	assert.Equal(t, 200.0, got["limit"])
	assert.Equal(t, "go", got["search"])
	assert.Equal(t, 2134.0, got["zip"])
	assert.Equal(t, "Inf", got["inf"])
	assert.Equal(t, "", got["empty"])
}

func TestQueryValidationAfterCoercion(t *testing.T) {
	reg := defaultRegistry(t)

	res, err := reg.Validate(CommentListQuery, CoerceQuery(url.Values{"limit": {"0"}, "sort": {"popular"}}))
	require.NoError(t, err)
	assert.Contains(t, res.FieldMap(), "limit")

	res, err = reg.Validate(CommentListQuery, CoerceQuery(url.Values{"limit": {"abc"}}))
	require.NoError(t, err)
	assert.Contains(t, res.FieldMap(), "limit")

	res, err = reg.Validate(ProjectListQuery, CoerceQuery(url.Values{"limit": {"200"}}))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = reg.Validate(PaginationQuery, CoerceQuery(url.Values{"page": {"1.5"}}))
	require.NoError(t, err)
	assert.Contains(t, res.FieldMap(), "page")
}

func TestIntAndStringHelpers(t *testing.T) {
	data := map[string]any{"limit": 25.0, "sort": "oldest"}
	assert.Equal(t, 25, Int(data, "limit", 10))
	assert.Equal(t, 10, Int(data, "page", 10))
	assert.Equal(t, "oldest", String(data, "sort", "newest"))
	assert.Equal(t, "newest", String(data, "missing", "newest"))
}
