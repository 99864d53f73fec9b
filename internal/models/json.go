package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	raw, err := scanBytes(value)
	if err != nil {
		return err
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}

	*m = decoded
	return nil
}

// Clone returns a deep copy of the map.
func (m JSONMap) Clone() JSONMap {
	if m == nil {
		return nil
	}
	return JSONMap(CloneMap(m))
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported JSON column value")
	}
}

// CloneMap deep copies a decoded JSON object.
func CloneMap(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}
	dst := make(map[string]interface{}, len(src))
	for key, value := range src {
		dst[key] = CloneValue(value)
	}
	return dst
}

// CloneValue deep copies values produced by encoding/json decoding.
func CloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return CloneMap(v)
	case JSONMap:
		return CloneMap(v)
	case []interface{}:
		cloned := make([]interface{}, len(v))
		for i, item := range v {
			cloned[i] = CloneValue(item)
		}
		return cloned
	case []string:
		cloned := make([]string, len(v))
		copy(cloned, v)
		return cloned
	default:
		return v
	}
}
