package dto

import "encoding/json"

// Nullable is a patch field that tells an absent value from an explicit null.
// Set is true once the field appeared in the decoded JSON, and Value is nil
// when that value was null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Value returns a present field holding v.
func Value[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a present field cleared to null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}
