package h

import (
	"fmt"

	"github.com/tidwall/gjson"
)

type JsonValue struct {
	value string
}

func NewJsonValue(value string) JsonValue {
	return JsonValue{value: value}
}

func (j JsonValue) Get(path string) any {
	value := gjson.Get(j.value, path)
	if value.Exists() {
		return value.Value()
	}
	return nil
}

// DecodeJsonObject decodes a document whose top level must be an object.
func DecodeJsonObject(body []byte) (map[string]any, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid json document")
	}
	result := gjson.ParseBytes(body)
	if !result.IsObject() {
		return nil, fmt.Errorf("expected a json object, got %s", result.Type)
	}
	values, ok := result.Value().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a json object")
	}
	return values, nil
}
