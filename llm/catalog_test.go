// ABOUTME: Tests for model catalog lookup by id and alias.
// ABOUTME: Covers case-insensitive matching and custom registration.

package llm

import "testing"

func TestCatalogLookupByAlias(t *testing.T) {
	catalog := NewCatalog()

	cases := []struct {
		in       string
		wantID   string
		wantHit  bool
	}{
		{"quality", "claude-opus-4-6", true},
		{"fast", "claude-haiku-4-5", true},
		{"OPUS", "claude-opus-4-6", true},
		{"claude-sonnet-4-5", "claude-sonnet-4-5", true},
		{"nope", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		info, ok := catalog.Lookup(tc.in)
		if ok != tc.wantHit {
			t.Fatalf("Lookup(%q) hit=%v, want %v", tc.in, ok, tc.wantHit)
		}
		if ok && info.ID != tc.wantID {
			t.Fatalf("Lookup(%q) = %s, want %s", tc.in, info.ID, tc.wantID)
		}
	}
}

func TestCatalogRegisterCustomModel(t *testing.T) {
	catalog := NewCatalog()
	catalog.Register(ModelInfo{ID: "local-llm", Provider: "local", Aliases: []string{"dev"}})

	info, ok := catalog.Lookup("dev")
	if !ok || info.ID != "local-llm" {
		t.Fatalf("custom model not found: %+v ok=%v", info, ok)
	}
}

func TestCatalogByProvider(t *testing.T) {
	catalog := NewCatalog()
	anthropic := catalog.ByProvider("anthropic")
	if len(anthropic) == 0 {
		t.Fatal("expected builtin anthropic models")
	}
	for _, m := range anthropic {
		if m.Provider != "anthropic" {
			t.Fatalf("wrong provider in result: %+v", m)
		}
	}
}
