package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB stores an arbitrary JSON document in a jsonb column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}

// Tradeoff is a single advantage or disadvantage of a blueprint.
type Tradeoff struct {
	Point       string `json:"point"`
	Description string `json:"description"`
}

// TradeoffList is an ordered list of tradeoffs stored as a JSON array.
type TradeoffList []Tradeoff

func (t TradeoffList) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *TradeoffList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}

// Vector is an embedding stored as a JSON array of floats.
type Vector []float32

func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (v *Vector) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	switch src := value.(type) {
	case []byte:
		return json.Unmarshal(src, v)
	case string:
		return json.Unmarshal([]byte(src), v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}
