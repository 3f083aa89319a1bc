package shopping

import "encoding/json"

// Field is an optional member of a partial update. Set reports whether the
// field appeared in the request at all; Value is nil when it was null.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Of returns a Field set to v.
func Of[T any](v T) Field[T] { return Field[T]{Set: true, Value: &v} }

// Null returns a Field that clears the target.
func Null[T any]() Field[T] { return Field[T]{Set: true} }

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// apply merges the field into dst when set.
func (f Field[T]) apply(dst **T) {
	if f.Set {
		*dst = f.Value
	}
}
