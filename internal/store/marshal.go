package store

import (
	"fmt"
	"time"

	"github.com/roach88/tabula/internal/model"
)

// timeLayout is the storage form for timestamps. RFC 3339 with
// nanoseconds, always UTC, so stored text sorts chronologically.
const timeLayout = time.RFC3339Nano

// marshalArgs converts operation args to canonical JSON TEXT for storage.
// Canonical serialization keeps replayed events byte-identical to what was
// committed.
func marshalArgs(args model.Object) (string, error) {
	if len(args) == 0 {
		return "{}", nil
	}
	data, err := model.MarshalCanonical(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}

// unmarshalArgs parses canonical JSON TEXT back to operation args.
func unmarshalArgs(data string) (model.Object, error) {
	if data == "" || data == "{}" {
		return model.Object{}, nil
	}
	var obj model.Object
	if err := obj.UnmarshalJSON([]byte(data)); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	return obj, nil
}

// marshalState converts a document state to canonical JSON TEXT.
func marshalState(state model.Object) (string, error) {
	if len(state) == 0 {
		return "{}", nil
	}
	data, err := model.MarshalCanonical(state)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return string(data), nil
}

// unmarshalState parses canonical JSON TEXT back to a document state.
func unmarshalState(data string) (model.Object, error) {
	if data == "" || data == "{}" {
		return model.Object{}, nil
	}
	var obj model.Object
	if err := obj.UnmarshalJSON([]byte(data)); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return obj, nil
}

// marshalTime formats a timestamp for storage.
func marshalTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// unmarshalTime parses a stored timestamp.
func unmarshalTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unmarshal time %q: %w", s, err)
	}
	return t, nil
}
