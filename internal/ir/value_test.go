package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectUnmarshalJSON(t *testing.T) {
	var obj Object
	err := json.Unmarshal([]byte(`{"topic":"hi","n":9007199254740993,"ok":true,"tags":["a"]}`), &obj)
	require.NoError(t, err)

	topic, ok := obj.Str("topic")
	assert.True(t, ok)
	assert.Equal(t, "hi", topic)

	n, ok := obj.Int64("n")
	assert.True(t, ok)
	assert.Equal(t, int64(9007199254740993), n, "large ints must not lose precision")

	assert.Equal(t, Bool(true), obj["ok"])
	assert.Equal(t, Array{String("a")}, obj["tags"])
}

func TestObjectUnmarshalJSONRejectsFloatsAndNull(t *testing.T) {
	var obj Object
	assert.Error(t, json.Unmarshal([]byte(`{"x":1.5}`), &obj))
	assert.Error(t, json.Unmarshal([]byte(`{"x":null}`), &obj))
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &obj))
}

func TestObjectAccessorsWrongType(t *testing.T) {
	obj := Object{"n": Int(1), "s": String("x")}

	_, ok := obj.Str("n")
	assert.False(t, ok)
	_, ok = obj.Int64("s")
	assert.False(t, ok)
	_, ok = obj.Str("missing")
	assert.False(t, ok)
}

func TestObjectMarshalJSONSorted(t *testing.T) {
	data, err := json.Marshal(Object{"b": Int(2), "a": Array{Bool(false)}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[false],"b":2}`, string(data))
}

func TestFromAnyYAMLShapes(t *testing.T) {
	v, err := FromAny(map[string]any{"count": 3, "name": "x"})
	require.NoError(t, err)
	assert.Equal(t, Object{"count": Int(3), "name": String("x")}, v)
}
