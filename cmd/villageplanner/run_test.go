package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChicagoDave/villageplanner/pkg/scene"
	"github.com/ChicagoDave/villageplanner/pkg/validation"
)

const testProject = `
seed: 42
canvas:
  width: 1200
  height: 600
layout:
  count: 15
attractors:
  - {type: house, x: 0.5, y: 0.5}
  - {type: tree, x: -0.5, y: -0.5}
`

func writeProject(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "village.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestGenerateDocumentFromProject(t *testing.T) {
	cfg, err := loadValid(writeProject(t, testProject))
	if err != nil {
		t.Fatal(err)
	}
	d, report, err := generateDocument(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Valid || len(report.Warnings) != 0 {
		t.Errorf("report: %s", report.Summary)
	}
	if d.Metadata == nil || d.Metadata.Seed != 42 || d.Metadata.Aspect != 2 {
		t.Errorf("metadata = %+v", d.Metadata)
	}
	if len(d.AttractorData) != 2 {
		t.Errorf("got %d attractors, want 2", len(d.AttractorData))
	}
	if n := d.EntityCount(); n == 0 || n > 15 {
		t.Errorf("entity count = %d", n)
	}
	if r := scene.ValidateDocument(d); !r.Valid {
		t.Errorf("generated document invalid: %s", r.Summary)
	}

	again, _, err := generateDocument(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if again.EntityCount() != d.EntityCount() || again.EntityData.RiverWidth != d.EntityData.RiverWidth {
		t.Error("same seed produced a different layout")
	}
}

func TestLoadAndValidateDefaults(t *testing.T) {
	cfg, report, err := loadAndValidate("")
	if err != nil {
		t.Fatal(err)
	}
	if !report.Valid || cfg.Canvas.Width != 800 {
		t.Errorf("defaults: valid=%v canvas=%+v", report.Valid, cfg.Canvas)
	}
}

func TestLoadValidRejectsBadConfig(t *testing.T) {
	dir := writeProject(t, "layout:\n  count: -1\n")
	if _, err := loadValid(dir); err == nil {
		t.Error("expected error for negative count")
	}
}

func TestRunGenerateWritesFile(t *testing.T) {
	dir := writeProject(t, testProject)
	out := filepath.Join(t.TempDir(), "data.json")
	if err := runGenerate(dir, out, nil); err != nil {
		t.Fatal(err)
	}
	d, err := scene.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if d.EntityCount() == 0 {
		t.Error("written document has no entities")
	}
}

func TestRunRenderFromDocument(t *testing.T) {
	dir := writeProject(t, testProject)
	doc := filepath.Join(t.TempDir(), "data.json")
	if err := runGenerate(dir, doc, nil); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "village.svg")
	if err := runRender(doc, out, true, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("output is not an SVG")
	}
}

func TestPrintValidationReport(t *testing.T) {
	r := validation.NewReport()
	r.AddError(validation.Result{
		Level:       validation.LevelScene,
		Message:     "river width out of range",
		Path:        "entityData.riverWidth",
		ActualValue: 2.0,
		Expected:    "0 < width < 1",
	})
	r.AddWarning(validation.Result{
		Level:        validation.LevelScene,
		Message:      "entities overlap",
		Path:         "entityData.houses[0]",
		ConflictWith: "entityData.trees[1]",
	})

	var buf bytes.Buffer
	printValidationReport(&buf, r)
	out := buf.String()
	for _, want := range []string{
		"ERRORS (1)",
		"-> entityData.riverWidth = 2",
		"expected: 0 < width < 1",
		"WARNINGS (1)",
		"overlaps: entityData.trees[1]",
		"Result: INVALID",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
