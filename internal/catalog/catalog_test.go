package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseArrayDocument(t *testing.T) {
	data := []byte(`[
		{
			"id": "dtp_series",
			"title": "DTP",
			"category": "vaccines",
			"priority": "required",
			"conditions": {"minAge": null, "maxAge": null},
			"defaultNotificationTime": "09:00",
			"description": "Diphtheria, tetanus, polio",
			"schedule": {"dueAgeMonths": [2, 4, 11]},
			"seriesId": "dtp"
		}
	]`)

	c := Parse(data)
	if c.Len() != 1 {
		t.Fatalf("expected 1 template, got %d", c.Len())
	}

	tpl, ok := c.Get("dtp_series")
	if !ok {
		t.Fatal("expected dtp_series to be present")
	}
	if tpl.Category != CategoryVaccines {
		t.Fatalf("expected vaccines, got %s", tpl.Category)
	}
	if tpl.Priority != PriorityRequired {
		t.Fatalf("expected required, got %s", tpl.Priority)
	}
	if tpl.SeriesID != "dtp" {
		t.Fatalf("expected series dtp, got %q", tpl.SeriesID)
	}
	if !tpl.HasSchedule() || len(tpl.Schedule.DueAgeMonths) != 3 {
		t.Fatalf("expected 3 due ages, got %+v", tpl.Schedule)
	}
	if tpl.Conditions.MinAge != nil {
		t.Fatalf("expected nil minAge, got %d", *tpl.Conditions.MinAge)
	}
}

func TestParseObjectDocumentWithRange(t *testing.T) {
	data := []byte(`{"templates": [
		{"id": "ror_2", "title": "MMR 2", "category": "vaccines", "priority": "recommended",
		 "conditions": {}, "schedule": {"dueAgeMonthsRange": {"min": 16, "max": 18}}}
	]}`)

	c := Parse(data)
	tpl, ok := c.Get("ror_2")
	if !ok {
		t.Fatal("expected ror_2 to be present")
	}
	r := tpl.Schedule.DueAgeMonthsRange
	if r == nil || r.Min != 16 || r.Max != 18 {
		t.Fatalf("expected range 16-18, got %+v", r)
	}
}

func TestUnknownEnumsFallBack(t *testing.T) {
	data := []byte(`[{"id": "x", "title": "X", "category": "sports", "priority": "urgent", "conditions": {}}]`)

	tpl, ok := Parse(data).Get("x")
	if !ok {
		t.Fatal("expected template x")
	}
	if tpl.Category != CategoryCustom {
		t.Fatalf("expected custom category, got %s", tpl.Category)
	}
	if tpl.Priority != PriorityInfo {
		t.Fatalf("expected info priority, got %s", tpl.Priority)
	}
}

func TestMalformedDocumentYieldsEmptyCatalog(t *testing.T) {
	for name, data := range map[string]string{
		"truncated": `[{"id": "x"`,
		"empty":     ``,
		"scalar":    `42`,
	} {
		t.Run(name, func(t *testing.T) {
			c := Parse([]byte(data))
			if c.Len() != 0 {
				t.Fatalf("expected empty catalog, got %d templates", c.Len())
			}
		})
	}
}

func TestDuplicatesAndMissingIDsAreDropped(t *testing.T) {
	c := New([]Template{
		{ID: "a", Title: "First"},
		{ID: "", Title: "No id"},
		{ID: "a", Title: "Second"},
		{ID: "b", Title: "B"},
	})

	if c.Len() != 2 {
		t.Fatalf("expected 2 templates, got %d", c.Len())
	}
	tpl, _ := c.Get("a")
	if tpl.Title != "First" {
		t.Fatalf("expected first occurrence to win, got %q", tpl.Title)
	}
	if got := c.Templates()[1].ID; got != "b" {
		t.Fatalf("expected document order, got %q second", got)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.yaml")
	content := `templates:
  - id: hpv_vaccination
    title: HPV vaccination
    category: vaccines
    priority: recommended
    conditions:
      minAge: 11
      maxAge: 14
  - id: bcg
    title: BCG
    category: vaccines
    priority: required
    schedule:
      dueAgeMonths: [0]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 templates, got %d", c.Len())
	}

	hpv, _ := c.Get("hpv_vaccination")
	if hpv.Conditions.MinAge == nil || *hpv.Conditions.MinAge != 11 {
		t.Fatalf("expected minAge 11, got %+v", hpv.Conditions)
	}
	bcg, _ := c.Get("bcg")
	if !bcg.HasSchedule() || len(bcg.Schedule.DueAgeMonths) != 1 || bcg.Schedule.DueAgeMonths[0] != 0 {
		t.Fatalf("expected bcg at month 0, got %+v", bcg.Schedule)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if c.Len() == 0 {
		t.Fatal("expected built-in templates")
	}
	for _, tpl := range c.Templates() {
		if tpl.Title == "" {
			t.Fatalf("template %s has no title", tpl.ID)
		}
	}
	if _, ok := c.Get("ror_2"); !ok {
		t.Fatal("expected ror_2 in default catalog")
	}
}

func TestPriorityRank(t *testing.T) {
	if !(PriorityRequired.Rank() < PriorityRecommended.Rank() &&
		PriorityRecommended.Rank() < PriorityInfo.Rank() &&
		PriorityInfo.Rank() < Priority("other").Rank()) {
		t.Fatal("unexpected priority ordering")
	}
}
