package apidoc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestLoad(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "rentmanager", doc.Info.Title)
	for _, path := range []string{"/properties", "/properties/{id}", "/rooms", "/rooms/{id}", "/tenants", "/tenants/{id}", "/dashboard/stats"} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
	assert.NotNil(t, doc.Paths.Find("/rooms/{id}").Delete)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, "3.0.3", gjson.GetBytes(raw, "openapi").String())
	assert.Equal(t, "string", gjson.GetBytes(raw, "components.schemas.Error.properties.error.properties.code.type").String())
}
