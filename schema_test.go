package embedify_test

import (
	"testing"

	"github.com/fwojciec/embedify"
	"github.com/stretchr/testify/assert"
)

func TestClassifySchema(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  string
		want embedify.Schema
	}{
		{"sport", embedify.SchemaActivity},
		{"cafe", embedify.SchemaBusiness},
		{"sports_team", embedify.SchemaGroup},
		{"band", embedify.SchemaOrganization},
		{"musician", embedify.SchemaPerson},
		{"state_province", embedify.SchemaPlace},
		{"tv_show", embedify.SchemaProduct},
		{"blog", embedify.SchemaWebsite},
		{"website", embedify.SchemaWebsite},
		{"article", embedify.SchemaNone},
		{"Website", embedify.SchemaNone},
		{"", embedify.SchemaNone},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, embedify.ClassifySchema(tt.typ))
		})
	}
}

func TestSchemas(t *testing.T) {
	t.Parallel()

	schemas := embedify.Schemas()

	assert.Len(t, schemas, 8)
	assert.Equal(t, embedify.SchemaActivity, schemas[0])
	assert.Equal(t, embedify.SchemaWebsite, schemas[7])
}

func TestSchemaTypes(t *testing.T) {
	t.Parallel()

	t.Run("returns member types", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"blog", "website"}, embedify.SchemaTypes(embedify.SchemaWebsite))
	})

	t.Run("returns a copy", func(t *testing.T) {
		t.Parallel()

		types := embedify.SchemaTypes(embedify.SchemaActivity)
		types[0] = "mutated"

		assert.Equal(t, "activity", embedify.SchemaTypes(embedify.SchemaActivity)[0])
	})

	t.Run("unknown schema", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, embedify.SchemaTypes("spaceship"))
	})
}
