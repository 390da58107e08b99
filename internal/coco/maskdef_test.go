package coco

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"testing"
)

func sampleLegend() []ColorEntry {
	return []ColorEntry{
		{Key: "(255, 0, 0)", ColorCategory: ColorCategory{Category: "eagle", SuperCategory: "bird"}},
		{Key: "(0, 255, 0)", ColorCategory: ColorCategory{Category: "owl", SuperCategory: "bird"}},
	}
}

func TestAddCategory(t *testing.T) {
	defs := NewMaskDefinitions()
	if !defs.AddCategory("eagle", "bird") {
		t.Error("first insertion should return true")
	}
	if defs.AddCategory("eagle", "bird") {
		t.Error("duplicate insertion should return false")
	}
	if !defs.AddCategory("owl", "bird") {
		t.Error("new category under existing super-category should return true")
	}

	names, ok := defs.SuperCategories.Get("bird")
	if !ok || !reflect.DeepEqual(names, []string{"eagle", "owl"}) {
		t.Errorf("bird categories: got %v", names)
	}
}

func TestAddMask_DuplicateImage(t *testing.T) {
	defs := NewMaskDefinitions()
	if !defs.AddMask("images/00000000.jpg", "masks/00000000.png", sampleLegend()) {
		t.Error("first mask should be accepted")
	}
	if defs.AddMask("images/00000000.jpg", "masks/00000000.png", sampleLegend()) {
		t.Error("duplicate image path should be rejected")
	}
}

func TestBuildCategories_OrderAndIDs(t *testing.T) {
	defs := NewMaskDefinitions()
	defs.AddCategory("eagle", "bird")
	defs.AddCategory("horse", "animal")
	defs.AddCategory("owl", "bird")

	categories, byName := defs.BuildCategories()
	if len(categories) != 3 {
		t.Fatalf("got %d categories, want 3", len(categories))
	}

	// Ids start at 1 (0 is background) in encounter order of the
	// super-category hierarchy.
	want := []Category{
		{SuperCategory: "bird", ID: 1, Name: "eagle"},
		{SuperCategory: "bird", ID: 2, Name: "owl"},
		{SuperCategory: "animal", ID: 3, Name: "horse"},
	}
	if !reflect.DeepEqual(categories, want) {
		t.Errorf("categories: got %+v, want %+v", categories, want)
	}
	if byName["owl"] != 2 || byName["horse"] != 3 {
		t.Errorf("id lookup: got %v", byName)
	}
}

func TestMaskDefinitions_FileRoundTrip(t *testing.T) {
	dir := t.TempDir()

	defs := NewMaskDefinitions()
	defs.AddMask("images/00000000.jpg", "masks/00000000.png", sampleLegend())
	defs.AddMask("images/00000001.jpg", "masks/00000001.png", []ColorEntry{
		{Key: "(255, 0, 0)", ColorCategory: ColorCategory{Category: "horse", SuperCategory: "animal"}},
	})

	if err := defs.WriteFile(dir); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loaded, err := ReadMaskDefinitions(filepath.Join(dir, MaskDefinitionsFile))
	if err != nil {
		t.Fatalf("ReadMaskDefinitions failed: %v", err)
	}

	if !reflect.DeepEqual(loaded.Masks.Keys(), defs.Masks.Keys()) {
		t.Errorf("mask order not preserved: %v", loaded.Masks.Keys())
	}
	if !reflect.DeepEqual(loaded.SuperCategories.Keys(), []string{"bird", "animal"}) {
		t.Errorf("super-category order not preserved: %v", loaded.SuperCategories.Keys())
	}

	entry, ok := loaded.Masks.Get("images/00000000.jpg")
	if !ok {
		t.Fatal("first mask entry missing after round trip")
	}
	if entry.Mask != "masks/00000000.png" {
		t.Errorf("mask path: got %q", entry.Mask)
	}
	got := entry.ColorCategories["(255, 0, 0)"]
	if got.Category != "eagle" || got.SuperCategory != "bird" {
		t.Errorf("color category: got %+v", got)
	}
}

func TestOrderedMap_MarshalOrder(t *testing.T) {
	m := &OrderedMap[int]{}
	m.Set("zebra", 1)
	m.Set("apple", 2)
	m.Set("mango", 3)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"zebra":1,"apple":2,"mango":3}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var loaded OrderedMap[int]
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Keys(), []string{"zebra", "apple", "mango"}) {
		t.Errorf("decode order: got %v", loaded.Keys())
	}
}

func TestDatasetInfo_FileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	info := &DatasetInfo{
		Info: Info{
			Description: "synthetic dataset",
			Version:     "1.0",
			Year:        2026,
			DateCreated: "01/15/2026",
		},
		License: License{ID: 0, Name: "None"},
	}
	if err := info.WriteFile(dir); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	loaded, err := ReadDatasetInfo(filepath.Join(dir, DatasetInfoFile))
	if err != nil {
		t.Fatalf("ReadDatasetInfo failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, info) {
		t.Errorf("round trip mismatch: got %+v", loaded)
	}
}
