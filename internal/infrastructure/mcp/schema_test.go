package mcp

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

func TestSchemaVersionIsSemver(t *testing.T) {
	re := regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	if !re.MatchString(SchemaVersion) {
		t.Fatalf("SchemaVersion %q is not valid semver", SchemaVersion)
	}
}

func TestSchemaDocument(t *testing.T) {
	doc := buildSchemaDocument()
	if len(doc.Tools) != 5 {
		t.Errorf("tools = %v", doc.Tools)
	}
	if len(doc.DeliveryPaths) != len(routing.AllPaths()) {
		t.Fatalf("delivery paths = %+v", doc.DeliveryPaths)
	}
	if doc.DeliveryPaths[0].Path != routing.PathBuy || doc.DeliveryPaths[0].Label == "" {
		t.Errorf("first path = %+v", doc.DeliveryPaths[0])
	}
	if len(doc.Classifications) != 4 {
		t.Errorf("classifications = %v", doc.Classifications)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		SpecSchema map[string]any `json:"spec_schema"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.SpecSchema["properties"] == nil {
		t.Error("spec schema should embed the JSON Schema properties")
	}
}
