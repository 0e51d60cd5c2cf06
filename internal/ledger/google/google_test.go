package google

import (
	"path/filepath"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"plain", "45.50", 45.50},
		{"decimal comma", "45,50", 45.50},
		{"integer", "120", 120},
		{"padded", "  9.99  ", 9.99},
		{"empty", "", 0},
		{"garbage", "abc", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseAmount(tc.in); got != tc.want {
				t.Errorf("parseAmount(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestToStrings(t *testing.T) {
	got := toStrings([]any{" 2024-01-15 ", 45.5, "Groceries"})
	want := []string{"2024-01-15", "45.5", "Groceries"}
	if len(got) != len(want) {
		t.Fatalf("got %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("toStrings[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestColOutOfRange(t *testing.T) {
	cols := []string{"a", "b"}
	if got := col(cols, 1); got != "b" {
		t.Errorf("col(1) = %q, want %q", got, "b")
	}
	if got := col(cols, 5); got != "" {
		t.Errorf("col(5) = %q, want empty", got)
	}
	if got := col(cols, -1); got != "" {
		t.Errorf("col(-1) = %q, want empty", got)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheets.json")
	reg := newRegistry(path)

	id, err := reg.Lookup("alice")
	if err != nil {
		t.Fatalf("Lookup on missing file: %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty ID for unknown user, got %q", id)
	}

	got, err := reg.Record("alice", "sheet-1")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got != "sheet-1" {
		t.Fatalf("Record returned %q, want sheet-1", got)
	}

	// A second record for the same user keeps the first ID.
	got, err = reg.Record("alice", "sheet-2")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got != "sheet-1" {
		t.Fatalf("Record returned %q, want the original sheet-1", got)
	}

	// Mapping survives a fresh registry on the same file.
	reg2 := newRegistry(path)
	id, err = reg2.Lookup("alice")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if id != "sheet-1" {
		t.Fatalf("Lookup = %q, want sheet-1", id)
	}
}
