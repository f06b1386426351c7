package capability

import "testing"

func TestCaveatsDefinitionEmptyAcceptsOnlyAny(t *testing.T) {
	def := CaveatsDefinition{}
	if !def.Accepts(Any()) {
		t.Error("empty definition should accept the any caveats set")
	}
	requested, _ := NewCaveats([]Caveat{{"to": "alice"}})
	if def.Accepts(requested) {
		t.Error("empty definition should reject a non-any caveats set")
	}
}

func TestCaveatsDefinitionPropertiesSchema(t *testing.T) {
	def, err := NewCaveatsDefinition([]map[string]any{
		{
			"properties": map[string]any{
				"to": map[string]any{"type": "string"},
			},
			"optionalProperties": map[string]any{
				"urgent": map[string]any{"type": "boolean"},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewCaveatsDefinition: %v", err)
	}

	ok, err := NewCaveats([]Caveat{{"to": "alice"}})
	if err != nil {
		t.Fatalf("NewCaveats: %v", err)
	}
	if !def.Accepts(ok) {
		t.Error("caveat with required string property should be accepted")
	}

	withOptional, _ := NewCaveats([]Caveat{{"to": "alice", "urgent": true}})
	if !def.Accepts(withOptional) {
		t.Error("caveat with matching optional property should be accepted")
	}

	missing, _ := NewCaveats([]Caveat{{"urgent": true}})
	if def.Accepts(missing) {
		t.Error("caveat missing a required property should be rejected")
	}

	wrongType, _ := NewCaveats([]Caveat{{"to": 42}})
	if def.Accepts(wrongType) {
		t.Error("caveat with wrong property type should be rejected")
	}
}

func TestNewCaveatSchemaRejectsTypeAndPropertiesMix(t *testing.T) {
	_, err := newCaveatSchema(map[string]any{
		"type":       "string",
		"properties": map[string]any{"a": map[string]any{"type": "string"}},
	})
	if err == nil {
		t.Error("a schema mixing type and properties should be rejected")
	}
}

func TestNewCaveatSchemaRequiresTypeOrProperties(t *testing.T) {
	if _, err := newCaveatSchema(map[string]any{}); err == nil {
		t.Error("a schema declaring neither type nor properties should be rejected")
	}
}

func TestCapabilitiesDefinitionAccepts(t *testing.T) {
	def := NewCapabilitiesDefinition()
	resource, _ := ParseResourceUri("https://example.com/msg")
	ability, _ := NewAbility("msg/send")
	schema, err := NewCaveatsDefinition([]map[string]any{
		{"properties": map[string]any{"to": map[string]any{"type": "string"}}},
	})
	if err != nil {
		t.Fatalf("NewCaveatsDefinition: %v", err)
	}
	def.Insert(resource, ability, schema)

	caveats, _ := NewCaveats([]Caveat{{"to": "bob"}})
	if !def.Accepts(resource, ability, caveats) {
		t.Error("expected definition to accept a matching resolved tuple")
	}

	otherAbility, _ := NewAbility("msg/delete")
	if def.Accepts(resource, otherAbility, caveats) {
		t.Error("an ability not enumerated in the definition should be rejected")
	}
}
