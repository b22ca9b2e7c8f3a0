package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape identifies which accepted layout a summary response used.
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeObject is {"summary_text": "..."}.
	ShapeObject
	// ShapeArray is [{"summary_text": "..."}, ...]; the first element wins.
	ShapeArray
	// ShapeString is a bare JSON string.
	ShapeString
)

func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	case ShapeString:
		return "string"
	default:
		return "unknown"
	}
}

// Response is a decoded summary response.
type Response struct {
	Shape   Shape
	Summary string
}

type summaryObject struct {
	SummaryText *string `json:"summary_text"`
}

// DecodeResponse decodes body into one of the accepted shapes. Any other
// valid JSON yields ErrUnrecognizedShape; invalid JSON yields the decode
// error.
func DecodeResponse(body []byte) (Response, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Response{}, fmt.Errorf("%w: empty body", ErrUnrecognizedShape)
	}
	switch body[0] {
	case '{':
		var obj summaryObject
		if err := json.Unmarshal(body, &obj); err != nil {
			return Response{}, fmt.Errorf("decode object: %w", err)
		}
		if obj.SummaryText == nil {
			return Response{}, fmt.Errorf("%w: object without summary_text", ErrUnrecognizedShape)
		}
		return Response{Shape: ShapeObject, Summary: *obj.SummaryText}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return Response{}, fmt.Errorf("decode array: %w", err)
		}
		if len(items) == 0 {
			return Response{}, fmt.Errorf("%w: empty array", ErrUnrecognizedShape)
		}
		var obj summaryObject
		if err := json.Unmarshal(items[0], &obj); err != nil || obj.SummaryText == nil {
			return Response{}, fmt.Errorf("%w: array element without summary_text", ErrUnrecognizedShape)
		}
		return Response{Shape: ShapeArray, Summary: *obj.SummaryText}, nil
	case '"':
		var s string
		if err := json.Unmarshal(body, &s); err != nil {
			return Response{}, fmt.Errorf("decode string: %w", err)
		}
		return Response{Shape: ShapeString, Summary: s}, nil
	default:
		if !json.Valid(body) {
			return Response{}, fmt.Errorf("decode response: invalid JSON")
		}
		return Response{}, fmt.Errorf("%w: %s", ErrUnrecognizedShape, firstBytes(body, 32))
	}
}

func firstBytes(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
