package mcp

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tokime/internal/errors"
)

// decode copies tool arguments into T. Type mismatches come back as
// INVALID_REQUEST naming the argument, e.g. a fractional "start" timestamp.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("arguments are not valid JSON: %v", err))
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&result); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) && typeErr.Field != "" {
			return result, errors.NewInvalidRequest(fmt.Sprintf("%s must be %s, got %s", typeErr.Field, argKind(typeErr.Type.Kind().String()), typeErr.Value))
		}
		return result, errors.NewInvalidRequest(fmt.Sprintf("invalid arguments: %v", err))
	}
	return result, nil
}

// argKind names a Go kind the way tool schemas do.
func argKind(kind string) string {
	switch kind {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return "an integer"
	case "bool":
		return "a boolean"
	case "string":
		return "a string"
	default:
		return "a " + kind
	}
}
