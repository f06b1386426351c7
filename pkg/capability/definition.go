package capability

import "fmt"

// maxSchemaDepth and maxSchemaErrors bound validation cost against a
// pathological caveat or schema (nesting depth, error fan-out).
const (
	maxSchemaDepth  = 5
	maxSchemaErrors = 5
)

// jtdType enumerates the JSON Type Definition leaf types this package
// accepts inside a Properties-form schema.
type jtdType string

const (
	jtdString  jtdType = "string"
	jtdBoolean jtdType = "boolean"
	jtdFloat32 jtdType = "float32"
	jtdFloat64 jtdType = "float64"
	jtdInt8    jtdType = "int8"
	jtdUint8   jtdType = "uint8"
	jtdInt16   jtdType = "int16"
	jtdUint16  jtdType = "uint16"
	jtdInt32   jtdType = "int32"
	jtdUint32  jtdType = "uint32"
)

// caveatSchema is a JSON Type Definition schema restricted to the
// "Properties" form (RFC 8927 §3.3.5): required and optional named
// properties, each itself a leaf type or a nested Properties schema.
// CapabilitiesDefinition restricts caveat schemas to this single form,
// which is sufficient to express the structured-object caveats this
// package deals with without pulling in a general JTD schema type
// (elements, values, discriminator, ref) that caveats never use.
type caveatSchema struct {
	Properties         map[string]*caveatSchema `json:"properties,omitempty"`
	OptionalProperties map[string]*caveatSchema `json:"optionalProperties,omitempty"`
	Type               jtdType                  `json:"type,omitempty"`
}

// newCaveatSchema parses and validates a raw JTD document, rejecting
// anything that isn't a well-formed Properties-form schema.
func newCaveatSchema(raw map[string]any) (*caveatSchema, error) {
	s := &caveatSchema{}
	if t, ok := raw["type"]; ok {
		ts, ok := t.(string)
		if !ok {
			return nil, &Error{Kind: ErrInvalidCaveats, Message: "schema type must be a string"}
		}
		s.Type = jtdType(ts)
		if !s.Type.valid() {
			return nil, &Error{Kind: ErrInvalidCaveats, Message: fmt.Sprintf("unsupported JTD type %q", ts)}
		}
	}
	if props, ok := raw["properties"]; ok {
		m, err := parsePropertyMap(props)
		if err != nil {
			return nil, err
		}
		s.Properties = m
	}
	if opt, ok := raw["optionalProperties"]; ok {
		m, err := parsePropertyMap(opt)
		if err != nil {
			return nil, err
		}
		s.OptionalProperties = m
	}
	if s.Type == "" && s.Properties == nil && s.OptionalProperties == nil {
		return nil, &Error{Kind: ErrInvalidCaveats, Message: "schema must declare a type or properties"}
	}
	if s.Type != "" && (s.Properties != nil || s.OptionalProperties != nil) {
		return nil, &Error{Kind: ErrInvalidCaveats, Message: "schema cannot mix type with properties"}
	}
	return s, nil
}

func parsePropertyMap(v any) (map[string]*caveatSchema, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &Error{Kind: ErrInvalidCaveats, Message: "properties must be an object"}
	}
	out := make(map[string]*caveatSchema, len(obj))
	for k, sv := range obj {
		sub, ok := sv.(map[string]any)
		if !ok {
			return nil, &Error{Kind: ErrInvalidCaveats, Message: fmt.Sprintf("property %q schema must be an object", k)}
		}
		parsed, err := newCaveatSchema(sub)
		if err != nil {
			return nil, err
		}
		out[k] = parsed
	}
	return out, nil
}

func (t jtdType) valid() bool {
	switch t {
	case jtdString, jtdBoolean, jtdFloat32, jtdFloat64,
		jtdInt8, jtdUint8, jtdInt16, jtdUint16, jtdInt32, jtdUint32:
		return true
	}
	return false
}

// validate checks instance against s, stopping once maxSchemaErrors
// mismatches accumulate or maxSchemaDepth nesting is exceeded.
func (s *caveatSchema) validate(instance any, depth int, errs *int) bool {
	if depth > maxSchemaDepth || *errs >= maxSchemaErrors {
		*errs++
		return false
	}

	if s.Type != "" {
		if !jtdTypeMatches(s.Type, instance) {
			*errs++
			return false
		}
		return true
	}

	obj, ok := instance.(map[string]any)
	if !ok {
		*errs++
		return false
	}
	ok2 := true
	for k, sub := range s.Properties {
		v, present := obj[k]
		if !present {
			*errs++
			ok2 = false
			continue
		}
		if !sub.validate(v, depth+1, errs) {
			ok2 = false
		}
	}
	for k, sub := range s.OptionalProperties {
		if v, present := obj[k]; present {
			if !sub.validate(v, depth+1, errs) {
				ok2 = false
			}
		}
	}
	return ok2
}

func jtdTypeMatches(t jtdType, v any) bool {
	switch t {
	case jtdString:
		_, ok := v.(string)
		return ok
	case jtdBoolean:
		_, ok := v.(bool)
		return ok
	case jtdFloat32, jtdFloat64, jtdInt8, jtdUint8, jtdInt16, jtdUint16, jtdInt32, jtdUint32:
		_, ok := v.(float64)
		return ok
	}
	return false
}

// CaveatsDefinition is a set of JTD Properties-form schemas that
// together describe the caveat shapes an ability accepts.
type CaveatsDefinition struct {
	schemas []*caveatSchema
}

// NewCaveatsDefinition parses each raw document as a Properties-form
// JTD schema.
func NewCaveatsDefinition(docs []map[string]any) (CaveatsDefinition, error) {
	def := CaveatsDefinition{}
	for _, d := range docs {
		s, err := newCaveatSchema(d)
		if err != nil {
			return CaveatsDefinition{}, err
		}
		def.schemas = append(def.schemas, s)
	}
	return def, nil
}

// IsEmpty reports whether the definition declares no schemas.
func (d CaveatsDefinition) IsEmpty() bool {
	return len(d.schemas) == 0
}

// Accepts reports whether every member of requested validates against
// at least one of the definition's schemas. An empty definition accepts
// only the any caveats set.
func (d CaveatsDefinition) Accepts(requested Caveats) bool {
	if d.IsEmpty() {
		return requested.IsAny()
	}
	for _, caveat := range requested {
		matched := false
		for _, s := range d.schemas {
			errs := 0
			if s.validate(map[string]any(caveat), 0, &errs) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// capabilityDefEntry pairs a resource root with its accepted abilities.
type capabilityDefEntry struct {
	Resource  ResourceUri
	Abilities map[Ability]CaveatsDefinition
}

// CapabilitiesDefinition is the canonical enumeration of acceptable
// (resource_root_uri, ability, caveats_schema) triples a root authority
// uses to gate the final ground capabilities a resolved chain produces.
// Abilities here are concrete (no wildcards): they are the canonical
// leaves a resolved capability must match exactly.
type CapabilitiesDefinition struct {
	entries []capabilityDefEntry
}

// NewCapabilitiesDefinition builds an empty definition to be filled by Insert.
func NewCapabilitiesDefinition() *CapabilitiesDefinition {
	return &CapabilitiesDefinition{}
}

// Insert adds a (resource, ability, caveats schema) triple, merging it
// into an existing entry whose resource root already permits it.
func (d *CapabilitiesDefinition) Insert(resource ResourceUri, ability Ability, caveatsDef CaveatsDefinition) {
	for i := range d.entries {
		if d.entries[i].Resource.Permits(resource) {
			d.entries[i].Abilities[ability] = caveatsDef
			return
		}
	}
	d.entries = append(d.entries, capabilityDefEntry{
		Resource:  resource,
		Abilities: map[Ability]CaveatsDefinition{ability: caveatsDef},
	})
}

// Accepts reports whether the resolved (resource, ability, caveats)
// tuple is a descendant of some declared root resource, matches one of
// its enumerated abilities, and validates against that ability's
// caveats schema set.
func (d *CapabilitiesDefinition) Accepts(resource ResourceUri, ability Ability, caveats Caveats) bool {
	for _, e := range d.entries {
		if !e.Resource.Permits(resource) {
			continue
		}
		for a, def := range e.Abilities {
			if a.Equal(ability) {
				return def.Accepts(caveats)
			}
		}
	}
	return false
}
