package openapi

import (
	"reflect"
	"sort"
	"strings"
	"testing"

	"inventory-api/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type document struct {
	Paths      map[string]interface{} `yaml:"paths"`
	Components struct {
		Schemas map[string]struct {
			Required   []string                          `yaml:"required"`
			Properties map[string]map[string]interface{} `yaml:"properties"`
		} `yaml:"schemas"`
	} `yaml:"components"`
}

func loadDocument(t *testing.T) document {
	t.Helper()
	var doc document
	require.NoError(t, yaml.Unmarshal(YAML, &doc))
	return doc
}

func TestDocumentDescribesProductRoutes(t *testing.T) {
	doc := loadDocument(t)

	assert.Contains(t, doc.Paths, "/api/products")
	assert.Contains(t, doc.Paths, "/api/products/{id}")
	assert.Contains(t, doc.Paths, "/health")
}

func TestProductSchemaMatchesValidationTags(t *testing.T) {
	schema, ok := loadDocument(t).Components.Schemas["Product"]
	require.True(t, ok)

	var required []string
	productType := reflect.TypeOf(dto.Product{})
	for i := 0; i < productType.NumField(); i++ {
		field := productType.Field(i)
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]

		assert.Contains(t, schema.Properties, name, "field %s missing from schema", name)

		for _, rule := range strings.Split(field.Tag.Get("validate"), ",") {
			if rule == "required" {
				required = append(required, name)
			}
		}
	}

	sort.Strings(required)
	documented := append([]string(nil), schema.Required...)
	sort.Strings(documented)
	assert.Equal(t, required, documented)

	assert.EqualValues(t, 2147483647, schema.Properties["stock"]["maximum"])
}
