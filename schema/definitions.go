package schema

// Names of the predefined schemas.
const (
	AuthRegister      = "AuthRegister"
	AuthLogin         = "AuthLogin"
	AuthRefresh       = "AuthRefresh"
	PaginationQuery   = "PaginationQuery"
	ProjectListQuery  = "ProjectListQuery"
	UserProjectsQuery = "UserProjectsQuery"
	CommentListQuery  = "CommentListQuery"
	ProfileListQuery  = "ProfileListQuery"
	IdParam           = "IdParam"
	ProjectIdParam    = "ProjectIdParam"
	CommentIdParam    = "CommentIdParam"
	UserIdParam       = "UserIdParam"
	ProjectCreate     = "ProjectCreate"
	ProjectUpdate     = "ProjectUpdate"
	CommentCreate     = "CommentCreate"
	ProfileUpdate     = "ProfileUpdate"
)

var predefined = map[string]string{
	AuthLogin: `{
		"type": "object",
		"required": ["email", "password"],
		"properties": {
			"email": {"type": "string", "format": "email"},
			"password": {"type": "string", "minLength": 8}
		}
	}`,

	AuthRegister: `{
		"type": "object",
		"required": ["full_name", "username", "email", "password"],
		"properties": {
			"full_name": {"type": "string", "minLength": 2, "maxLength": 100},
			"username": {"type": "string", "minLength": 3, "maxLength": 30, "pattern": "^[a-zA-Z0-9_]+$"},
			"email": {"type": "string", "format": "email"},
			"password": {"type": "string", "minLength": 8}
		}
	}`,

	AuthRefresh: `{
		"type": "object",
		"required": ["refresh_token"],
		"properties": {
			"refresh_token": {"type": "string", "minLength": 1}
		}
	}`,

	PaginationQuery: `{
		"type": "object",
		"properties": {
			"page": {"type": "integer", "minimum": 1, "maximum": 1000000, "default": 1},
			"limit": {"type": "integer", "minimum": 1, "maximum": 100, "default": 10},
			"search": {"type": "string", "minLength": 2, "maxLength": 100}
		}
	}`,

	// limit has no bounds here: the project list clamps it instead of rejecting.
	ProjectListQuery: `{
		"type": "object",
		"properties": {
			"page": {"type": "integer", "minimum": 1, "maximum": 1000000, "default": 1},
			"limit": {"type": "integer", "default": 10},
			"offset": {"type": "integer", "minimum": 0, "maximum": 100000000},
			"search": {"type": "string", "minLength": 2, "maxLength": 100}
		}
	}`,

	UserProjectsQuery: `{
		"type": "object",
		"properties": {
			"limit": {"type": "integer", "default": 10},
			"offset": {"type": "integer", "minimum": 0, "maximum": 100000000, "default": 0}
		}
	}`,

	CommentListQuery: `{
		"type": "object",
		"properties": {
			"page": {"type": "integer", "minimum": 1, "maximum": 1000000, "default": 1},
			"limit": {"type": "integer", "minimum": 1, "maximum": 100, "default": 10},
			"sort": {"type": "string", "enum": ["newest", "oldest", "popular"], "default": "newest"}
		}
	}`,

	ProfileListQuery: `{
		"type": "object",
		"properties": {
			"page": {"type": "integer", "minimum": 1, "maximum": 1000000, "default": 1},
			"limit": {"type": "integer", "minimum": 1, "maximum": 100, "default": 10},
			"search": {"type": "string", "minLength": 2, "maxLength": 100}
		}
	}`,

	IdParam:        uuidParam("id"),
	ProjectIdParam: uuidParam("projectId"),
	CommentIdParam: uuidParam("commentId"),
	UserIdParam:    uuidParam("userId"),

	ProjectCreate: `{
		"type": "object",
		"required": ["title", "description", "tech_stack"],
		"properties": {
			"title": {"type": "string", "minLength": 3, "maxLength": 100},
			"description": {"type": "string", "minLength": 10, "maxLength": 1000},
			"demo_url": {"type": "string", "format": "uri"},
			"github_url": {"type": "string", "format": "uri"},
			"tech_stack": {"type": "array", "items": {"type": "string"}, "minItems": 1},
			"image_url": {"type": "string", "format": "uri"}
		}
	}`,

	ProjectUpdate: `{
		"type": "object",
		"minProperties": 1,
		"properties": {
			"title": {"type": "string", "minLength": 3, "maxLength": 100},
			"description": {"type": "string", "minLength": 10, "maxLength": 1000},
			"demo_url": {"type": "string", "format": "uri"},
			"github_url": {"type": "string", "format": "uri"},
			"tech_stack": {"type": "array", "items": {"type": "string"}, "minItems": 1},
			"image_url": {"type": "string", "format": "uri"}
		}
	}`,

	// content length is checked by the comment service after trimming.
	CommentCreate: `{
		"type": "object",
		"required": ["content"],
		"properties": {
			"content": {"type": "string", "minLength": 1, "pattern": "\\S"}
		}
	}`,

	ProfileUpdate: `{
		"type": "object",
		"minProperties": 1,
		"additionalProperties": false,
		"properties": {
			"full_name": {"type": "string", "minLength": 2, "maxLength": 100},
			"username": {"type": "string", "minLength": 3, "maxLength": 30, "pattern": "^[a-zA-Z0-9_]+$"},
			"avatar_url": {"type": "string", "format": "uri"},
			"website": {"type": "string", "format": "uri"},
			"bio": {"type": "string", "maxLength": 500},
			"github_url": {"type": "string", "format": "uri"},
			"linkedin_url": {"type": "string", "format": "uri"}
		}
	}`,
}

func uuidParam(name string) string {
	return `{
		"type": "object",
		"required": ["` + name + `"],
		"properties": {
			"` + name + `": {"type": "string", "format": "uuid"}
		}
	}`
}

// Default builds a Registry holding every predefined schema.
func Default() (*Registry, error) {
	b := NewBuilder()
	for name, doc := range predefined {
		if err := b.Register(name, []byte(doc)); err != nil {
			return nil, err
		}
	}
	return b.Build()
}
