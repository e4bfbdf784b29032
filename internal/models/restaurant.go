package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrInfoNotObject is returned when a restaurant info payload is not a JSON object.
var ErrInfoNotObject = errors.New("restaurant info must be a JSON object")

// RestaurantInfo is the restaurant-info payload, kept byte-for-byte as received.
// The menu core never looks inside it; renderers decode the fields they need.
type RestaurantInfo struct {
	raw json.RawMessage
}

// NewRestaurantInfo wraps raw JSON, rejecting anything but an object.
func NewRestaurantInfo(raw []byte) (RestaurantInfo, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return RestaurantInfo{}, ErrInfoNotObject
	}
	return RestaurantInfo{raw: append(json.RawMessage(nil), trimmed...)}, nil
}

// IsZero reports whether no payload has been set.
func (r RestaurantInfo) IsZero() bool {
	return len(r.raw) == 0
}

// Raw returns a copy of the payload bytes.
func (r RestaurantInfo) Raw() []byte {
	return append([]byte(nil), r.raw...)
}

// Decode unmarshals the payload into v.
func (r RestaurantInfo) Decode(v any) error {
	if r.IsZero() {
		return ErrInfoNotObject
	}
	return json.Unmarshal(r.raw, v)
}

// MarshalJSON emits the payload unchanged, or null when unset.
func (r RestaurantInfo) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return r.Raw(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RestaurantInfo) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	info, err := NewRestaurantInfo(data)
	if err != nil {
		return err
	}
	*r = info
	return nil
}
