package artifact

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"levelforge/internal/config"
	"levelforge/internal/grid"
	"levelforge/internal/level"
	"levelforge/internal/logging"
	"levelforge/internal/worldmap"
)

func composeLevel(t *testing.T) *level.Level {
	t.Helper()
	cfg := config.Default()
	lvl, err := level.Generate(&cfg.Level, "gallery", "M", "test_seed_01", 2, logging.Discard())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return lvl
}

func TestLevelDocumentIsByteIdentical(t *testing.T) {
	first, err := Marshal(FromLevel(composeLevel(t)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := Marshal(FromLevel(composeLevel(t)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("identical runs should serialize to identical bytes")
	}
	if !bytes.HasSuffix(first, []byte("}\n")) {
		t.Fatal("artifact should end with a newline")
	}
	if !bytes.Contains(first, []byte("\n  \"id\": ")) {
		t.Fatal("artifact should be indented with two spaces")
	}
}

func TestLevelDocumentShape(t *testing.T) {
	lvl := composeLevel(t)
	data, err := Marshal(FromLevel(lvl))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "name", "theme", "seed", "world", "tilemap", "tileTypes", "spawns", "enemies", "triggers", "artFrames", "itemSpawn"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("missing key %q", key)
		}
	}
	tileTypes := doc["tileTypes"].(map[string]any)
	wall := tileTypes["1"].(map[string]any)
	if wall["name"] != "wall" || wall["solid"] != true {
		t.Fatalf("unexpected wall tile type %v", wall)
	}
	if rows := doc["tilemap"].([]any); len(rows) != lvl.Grid.Height {
		t.Fatalf("expected %d rows, got %d", lvl.Grid.Height, len(rows))
	}
}

func TestEmptyCollectionsSerializeAsArrays(t *testing.T) {
	g, _ := grid.New(3, 3, grid.Land)
	doc := FromWorld(&worldmap.World{Grid: g, TileSize: 16})
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"landmarks": []`, `"roads": []`, `"river": []`, `"regions": []`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Fatalf("expected %s in %s", key, data)
		}
	}

	lvl := &level.Level{Grid: g}
	data, err = Marshal(FromLevel(lvl))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(data, []byte(`"itemSpawn": null`)) || !bytes.Contains(data, []byte(`"enemies": []`)) {
		t.Fatalf("unexpected empty level encoding: %s", data)
	}
}

func TestWriteFileIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "level.json")

	if err := Write(path, map[string]int{"a": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Write(path, map[string]int{"a": 2}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "{\n  \"a\": 2\n}\n" {
		t.Fatalf("unexpected content %q", data)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the artifact to remain, got %d entries", len(entries))
	}
}

func TestSchemas(t *testing.T) {
	schemas := Schemas()
	for _, name := range []string{"level.schema", "world.schema"} {
		s, ok := schemas[name]
		if !ok {
			t.Fatalf("missing schema %s", name)
		}
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal %s: %v", name, err)
		}
		if !strings.Contains(string(data), `"properties"`) {
			t.Fatalf("schema %s has no properties: %s", name, data)
		}
	}
	data, _ := json.Marshal(schemas["level.schema"])
	if !strings.Contains(string(data), `"tilemap"`) || !strings.Contains(string(data), `"shielded"`) {
		t.Fatalf("level schema incomplete: %s", data)
	}
}
