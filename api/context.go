package api

import (
	"context"

	"github.com/devconnect-app/backend/models"
)

type keyType string

const (
	callerKey keyType = "caller"
	bodyKey   keyType = "validatedBody"
	queryKey  keyType = "validatedQuery"
	paramsKey keyType = "validatedParams"
)

// ctxWithCaller adds the authenticated caller to the context
func ctxWithCaller(ctx context.Context, caller models.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// ctxGetCaller returns the caller, or the zero Caller on anonymous requests.
func ctxGetCaller(ctx context.Context) models.Caller {
	caller, _ := ctx.Value(callerKey).(models.Caller)
	return caller
}

func ctxWithBody(ctx context.Context, raw []byte) context.Context {
	return context.WithValue(ctx, bodyKey, raw)
}

func ctxGetBody(ctx context.Context) ([]byte, bool) {
	raw, ok := ctx.Value(bodyKey).([]byte)
	return raw, ok
}

func ctxWithQuery(ctx context.Context, query map[string]any) context.Context {
	return context.WithValue(ctx, queryKey, query)
}

// ctxGetQuery returns the coerced query, never nil.
func ctxGetQuery(ctx context.Context) map[string]any {
	if query, ok := ctx.Value(queryKey).(map[string]any); ok {
		return query
	}
	return map[string]any{}
}

func ctxWithParams(ctx context.Context, params map[string]any) context.Context {
	return context.WithValue(ctx, paramsKey, params)
}

func ctxGetParams(ctx context.Context) map[string]any {
	if params, ok := ctx.Value(paramsKey).(map[string]any); ok {
		return params
	}
	return map[string]any{}
}
