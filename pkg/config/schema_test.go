package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchema(t *testing.T) {
	data, err := JSONSchema()
	require.NoError(t, err)

	var schema struct {
		Title      string                     `json:"title"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, "shapeview configuration", schema.Title)
	for _, key := range []string{"logging", "storage", "datasets", "shapes_per_chunk", "canvas", "max_chunk_size"} {
		assert.Contains(t, schema.Properties, key)
	}

	var maxChunk struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(schema.Properties["max_chunk_size"], &maxChunk))
	assert.Equal(t, "string", maxChunk.Type)
}
