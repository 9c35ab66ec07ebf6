package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/ops"
)

// Result is the outcome of one tool invocation. Exactly one of Payload and
// Err is set.
type Result struct {
	Payload any
	Err     *errors.OrdenError
}

// IsError reports whether the invocation failed.
func (r Result) IsError() bool {
	return r.Err != nil
}

// JSON serializes the result into the tool-outcome string handed back to
// the model. It is always well-formed JSON.
func (r Result) JSON() string {
	if r.Err != nil {
		return string(ErrorPayload(r.Err))
	}
	b, err := json.Marshal(r.Payload)
	if err != nil {
		return string(ErrorPayload(errors.NewInternal(err)))
	}
	return string(b)
}

// ErrorPayload renders err as {"error":{"code","message","status","details"?}}.
// Details of internal errors are never included, and errors that are not
// OrdenErrors are reported as a generic internal error.
func ErrorPayload(err error) []byte {
	var errorObj map[string]any

	if oErr, ok := err.(*errors.OrdenError); ok {
		errorObj = map[string]any{
			"code":    oErr.Code,
			"message": oErr.Message,
			"status":  oErr.Status,
		}
		if oErr.Code != errors.ErrInternal && oErr.Details != nil {
			errorObj["details"] = oErr.Details
		}
	} else {
		errorObj = map[string]any{
			"code":    errors.ErrInternal,
			"message": "an internal error occurred",
			"status":  500,
		}
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return content
}

// Executor dispatches tool invocations against the notes stores.
type Executor struct {
	deps     *ops.Deps
	registry *Registry
	logger   *slog.Logger
}

// NewExecutor creates an Executor for the tools enabled in registry.
func NewExecutor(deps *ops.Deps, registry *Registry, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{deps: deps, registry: registry, logger: logger}
}

// Registry returns the set of tools the executor dispatches.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs the named tool with raw JSON arguments on behalf of userID.
// It never panics; failures are reported through Result.Err.
func (e *Executor) Execute(ctx context.Context, name string, raw json.RawMessage, userID string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "tool panicked", "tool", name, "panic", r, "stack", string(debug.Stack()))
			res = Result{Err: errors.NewInternal(fmt.Errorf("tool %s panicked: %v", name, r))}
		}
	}()

	h, ok := e.registry.lookup(name)
	if !ok {
		return Result{Err: errors.NewUnknownTool(name)}
	}

	payload, err := h(ctx, e.deps, raw, userID)
	if err != nil {
		oErr, ok := err.(*errors.OrdenError)
		if !ok {
			oErr = errors.NewInternal(err)
		}
		if oErr.Code == errors.ErrInternal {
			e.logger.ErrorContext(ctx, "tool failed", "tool", name, "err", err)
		} else {
			e.logger.DebugContext(ctx, "tool rejected", "tool", name, "code", oErr.Code, "msg", oErr.Message)
		}
		return Result{Err: oErr}
	}
	return Result{Payload: payload}
}

// decode unmarshals raw tool arguments into a typed struct. Empty input and
// JSON null decode as an empty object.
func decode[T any](raw json.RawMessage) (T, error) {
	var result T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return result, nil
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, errors.NewInvalidArguments(fmt.Sprintf("invalid arguments: %v", err))
	}
	return result, nil
}
