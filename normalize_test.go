package access

import (
	"testing"
	"time"
)

// storedTimestamp mimics a document SDK timestamp wrapper.
type storedTimestamp struct {
	t time.Time
}

func (s storedTimestamp) Time() time.Time { return s.t }

func TestNormalizeInstantShapes(t *testing.T) {
	want := time.Unix(1700000000, 0).UTC()

	cases := []struct {
		name string
		raw  any
		ok   bool
	}{
		{"native", want, true},
		{"pointer", &want, true},
		{"convertible", storedTimestamp{want}, true},
		{"epoch map", map[string]any{"_seconds": float64(1700000000), "_nanoseconds": float64(0)}, true},
		{"epoch map int", Document{"_seconds": int64(1700000000)}, true},
		{"iso string", "2023-11-14T22:13:20Z", true},
		{"nil", nil, false},
		{"empty string", "", false},
		{"garbage string", "not a timestamp at all", false},
		{"number", 1700000000, false},
		{"plain map", map[string]any{"seconds": float64(1)}, false},
	}
	for _, tc := range cases {
		got, ok := NormalizeInstant(tc.raw)
		if ok != tc.ok {
			t.Fatalf("%s: recognized=%v, want %v", tc.name, ok, tc.ok)
		}
		if ok && !got.Equal(want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, want)
		}
	}
}

func TestNormalizeInstantEpochWithNanos(t *testing.T) {
	got, ok := NormalizeInstant(map[string]any{"_seconds": float64(1700000000), "_nanoseconds": float64(500000000)})
	if !ok {
		t.Fatalf("expected recognition")
	}
	if !got.Equal(time.Unix(1700000000, 500000000).UTC()) {
		t.Fatalf("nanoseconds lost: %v", got)
	}
}

func TestNormalizeDocumentLeavesStringsAlone(t *testing.T) {
	doc := Document{
		"createdAt": "2023-11-14T22:13:20Z",
		"name":      "Omar N",
	}
	out := NormalizeDocument(doc)
	if out["createdAt"] != "2023-11-14T22:13:20Z" {
		t.Fatalf("ISO strings are already normalized and must pass through unchanged")
	}
	if out["name"] != "Omar N" {
		t.Fatalf("non-timestamp fields must be untouched")
	}
}

func TestNormalizeDocumentRewritesObjects(t *testing.T) {
	doc := Document{
		"createdAt": storedTimestamp{time.Unix(1700000000, 0).UTC()},
		"audit": map[string]any{
			"at": map[string]any{"_seconds": float64(1700000000)},
		},
	}
	out := NormalizeDocument(doc)
	const wantISO = "2023-11-14T22:13:20Z"
	if out["createdAt"] != wantISO {
		t.Fatalf("convertible object not rewritten: %v", out["createdAt"])
	}
	audit, ok := out["audit"].(map[string]any)
	if !ok {
		t.Fatalf("nested map shape lost")
	}
	if audit["at"] != wantISO {
		t.Fatalf("nested epoch map not rewritten: %v", audit["at"])
	}
}

func TestNormalizeDocumentDoesNotMutateInput(t *testing.T) {
	doc := Document{
		"createdAt": map[string]any{"_seconds": float64(1700000000)},
	}
	_ = NormalizeDocument(doc)
	if _, ok := doc["createdAt"].(map[string]any); !ok {
		t.Fatalf("normalization must copy, not mutate the source document")
	}
}
