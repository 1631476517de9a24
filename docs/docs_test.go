package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerDocIsValidJSON(t *testing.T) {
	doc := SwaggerInfo.ReadDoc()

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "/api", parsed["basePath"])
	assert.Contains(t, parsed["paths"], "/resume/parse")
}
