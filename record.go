package embedify

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"sort"
)

// Attribute names synthesized or normalized by the pipeline.
const (
	AttrTitle       = "title"
	AttrType        = "type"
	AttrURL         = "url"
	AttrDescription = "description"
	AttrImage       = "image"
)

// MandatoryAttributes returns the attributes a record needs to be valid,
// in the order they are checked.
func MandatoryAttributes() []string {
	return []string{AttrTitle, AttrType, AttrImage, AttrURL}
}

// Record holds the Open Graph metadata of a single page.
// Empty string fields and an empty Images slice mean the attribute is absent.
type Record struct {
	Title       string
	Type        string
	URL         string
	Description string
	Images      []ImageCandidate

	// Properties holds og: attributes without a dedicated field, keyed by
	// their normalized name (e.g. "site_name", "image:width").
	Properties map[string]string
}

// Has reports whether the named attribute is present and non-empty.
func (r *Record) Has(name string) bool {
	switch name {
	case AttrImage:
		return len(r.Images) > 0
	default:
		v, ok := r.Attr(name)
		return ok && v != ""
	}
}

// Attr returns a string attribute by name. The image attribute is not a
// string and is reported through Images instead.
func (r *Record) Attr(name string) (string, bool) {
	switch name {
	case AttrTitle:
		return r.Title, r.Title != ""
	case AttrType:
		return r.Type, r.Type != ""
	case AttrURL:
		return r.URL, r.URL != ""
	case AttrDescription:
		return r.Description, r.Description != ""
	case AttrImage:
		return "", false
	}
	v, ok := r.Properties[name]
	return v, ok && v != ""
}

// Valid reports whether all mandatory attributes are present.
// Validity is informational; an invalid record is still a usable result.
func (r *Record) Valid() bool {
	return len(r.Missing()) == 0
}

// Missing returns the mandatory attributes that are absent, in check order.
func (r *Record) Missing() []string {
	var missing []string
	for _, name := range MandatoryAttributes() {
		if !r.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Schema classifies the record's type.
func (r *Record) Schema() Schema {
	return ClassifySchema(r.Type)
}

// Is reports whether the record's type equals name, or whether name is a
// schema whose member set contains the record's type.
func (r *Record) Is(name string) bool {
	if r.Type == "" {
		return false
	}
	return r.Type == name || slices.Contains(SchemaTypes(Schema(name)), r.Type)
}

// MarshalJSON encodes the record as a flat object. Named attributes come
// first, followed by extra properties in key order. Absent attributes are
// omitted.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, value any) error {
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	for _, name := range []string{AttrTitle, AttrType, AttrURL, AttrDescription} {
		if v, ok := r.Attr(name); ok {
			if err := write(name, v); err != nil {
				return nil, err
			}
		}
	}
	if len(r.Images) > 0 {
		if err := write(AttrImage, r.Images); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(r.Properties))
	for k, v := range r.Properties {
		if v == "" || isNamedAttr(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := write(k, r.Properties[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat object produced by MarshalJSON.
// Non-string extra values are ignored.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Record{}
	for k, v := range raw {
		if k == AttrImage {
			if err := json.Unmarshal(v, &r.Images); err != nil {
				return err
			}
			continue
		}

		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		switch k {
		case AttrTitle:
			r.Title = s
		case AttrType:
			r.Type = s
		case AttrURL:
			r.URL = s
		case AttrDescription:
			r.Description = s
		default:
			if r.Properties == nil {
				r.Properties = make(map[string]string)
			}
			r.Properties[k] = s
		}
	}
	return nil
}

func isNamedAttr(name string) bool {
	switch name {
	case AttrTitle, AttrType, AttrURL, AttrDescription, AttrImage:
		return true
	}
	return false
}

// RecordService produces Open Graph records for URLs.
type RecordService interface {
	// Fetch retrieves the page at uri and returns its best-effort record.
	// A record missing mandatory attributes is not an error; callers check
	// Valid. Returns EFETCH, EREDIRECT, EPARSE or ECANCELED on failure.
	Fetch(ctx context.Context, uri string) (*Record, error)
}

// RecordWriter persists records.
type RecordWriter interface {
	WriteRecord(ctx context.Context, rec *Record) error
}
