package embedify

// Schema is a coarse classification bucket grouping related Open Graph types.
type Schema string

// Schema constants. SchemaNone is returned when a type belongs to no schema.
const (
	SchemaNone         Schema = ""
	SchemaActivity     Schema = "activity"
	SchemaBusiness     Schema = "business"
	SchemaGroup        Schema = "group"
	SchemaOrganization Schema = "organization"
	SchemaPerson       Schema = "person"
	SchemaPlace        Schema = "place"
	SchemaProduct      Schema = "product"
	SchemaWebsite      Schema = "website"
)

// DefaultType is assigned to records that declare no type.
const DefaultType = "website"

// schemaTypes maps each schema to its member types. Lookup order matters:
// ClassifySchema returns the first schema containing a type.
var schemaTypes = []struct {
	schema Schema
	types  []string
}{
	{SchemaActivity, []string{"activity", "sport"}},
	{SchemaBusiness, []string{"bar", "company", "cafe", "hotel", "restaurant"}},
	{SchemaGroup, []string{"cause", "sports_league", "sports_team"}},
	{SchemaOrganization, []string{"band", "government", "non_profit", "school", "university"}},
	{SchemaPerson, []string{"actor", "athlete", "author", "director", "musician", "politician", "public_figure"}},
	{SchemaPlace, []string{"city", "country", "landmark", "state_province"}},
	{SchemaProduct, []string{"album", "book", "drink", "food", "game", "movie", "product", "song", "tv_show"}},
	{SchemaWebsite, []string{"blog", "website"}},
}

// Schemas returns all known schemas in lookup order.
func Schemas() []Schema {
	schemas := make([]Schema, len(schemaTypes))
	for i, st := range schemaTypes {
		schemas[i] = st.schema
	}
	return schemas
}

// SchemaTypes returns the member types of schema, or nil for an unknown schema.
// The returned slice is a copy.
func SchemaTypes(schema Schema) []string {
	for _, st := range schemaTypes {
		if st.schema == schema {
			return append([]string(nil), st.types...)
		}
	}
	return nil
}

// ClassifySchema returns the schema whose member set contains typ exactly.
// Returns SchemaNone if typ belongs to no schema; that is not an error.
func ClassifySchema(typ string) Schema {
	for _, st := range schemaTypes {
		for _, t := range st.types {
			if t == typ {
				return st.schema
			}
		}
	}
	return SchemaNone
}
