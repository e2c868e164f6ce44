package catalogs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"wurmexport.ai/internal/sim/source"
	"wurmexport.ai/internal/sim/terrain"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return dir
}

func TestLoadRepoConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c1, _ := terrain.Custom(1)
	if n, ok := c.CustomName(c1); !ok || n != "W:Steppe" {
		t.Fatalf("custom 1 = %q %v", n, ok)
	}
	if c.Terrains.Digest == "" {
		t.Fatalf("missing digest")
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Terrains.ByTerrain) != 0 {
		t.Fatalf("expected no names, got %v", c.Terrains.ByTerrain)
	}
}

func TestSchemaRejects(t *testing.T) {
	for name, body := range map[string]string{
		"slot zero":     `{"custom_terrains":[{"custom":0,"name":"x"}]}`,
		"slot too high": `{"custom_terrains":[{"custom":97,"name":"x"}]}`,
		"empty name":    `{"custom_terrains":[{"custom":3,"name":""}]}`,
		"unknown key":   `{"terrains":[]}`,
		"not json":      `{`,
	} {
		if _, err := Load(writeCatalog(t, body)); err == nil {
			t.Fatalf("%s: accepted", name)
		}
	}
}

func TestSchemaViolationIsValidationError(t *testing.T) {
	_, err := Load(writeCatalog(t, `{"custom_terrains":[{"custom":0,"name":"x"}]}`))
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want a schema validation error", err)
	}

	c, err := Load(writeCatalog(t, `{"custom_terrains":[{"custom":96,"name":"W:Last"}]}`))
	if err != nil {
		t.Fatalf("valid catalog: %v", err)
	}
	last, _ := terrain.Custom(96)
	if n, ok := c.CustomName(last); !ok || n != "W:Last" {
		t.Fatalf("custom 96 = %q %v", n, ok)
	}
}

func TestDuplicateSlotRejected(t *testing.T) {
	dir := writeCatalog(t, `{"custom_terrains":[{"custom":4,"name":"a"},{"custom":4,"name":"b"}]}`)
	if _, err := Load(dir); err == nil {
		t.Fatalf("duplicate slot accepted")
	}
}

func TestApplyKeepsWorldNames(t *testing.T) {
	dir := writeCatalog(t, `{"custom_terrains":[{"custom":1,"name":"W:Steppe"},{"custom":2,"name":"W:Tundra"}]}`)
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c1, _ := terrain.Custom(1)
	c2, _ := terrain.Custom(2)
	w := source.NewGridWorld(0, 60, 256, source.Bounds{Width: 1, Height: 1})
	w.SetCustomName(c1, "Meadow")

	named := c.Apply(w)
	if len(named) != 1 || named[0] != c2 {
		t.Fatalf("named = %v", named)
	}
	if got := w.TerrainName(c1); got != "Meadow" {
		t.Fatalf("world name overwritten: %q", got)
	}
	if got := w.TerrainName(c2); got != "W:Tundra" {
		t.Fatalf("catalog name not applied: %q", got)
	}
}
