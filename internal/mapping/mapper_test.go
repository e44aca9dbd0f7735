package mapping

import "testing"

func TestMapperForwardLookup(t *testing.T) {
	m := NewMapper(map[string]string{
		"gpt-3.5-turbo": "llama-3.1-instruct-13b",
		"gpt-4":         "llama-3.1-instruct-70b",
	})

	if got := m.ToInternal("gpt-3.5-turbo"); got != "llama-3.1-instruct-13b" {
		t.Errorf("ToInternal(gpt-3.5-turbo) = %q", got)
	}
	if got := m.ToInternal("gpt-4"); got != "llama-3.1-instruct-70b" {
		t.Errorf("ToInternal(gpt-4) = %q", got)
	}
}

func TestMapperUnknownNamesPassThrough(t *testing.T) {
	m := NewMapper(map[string]string{"gpt-4": "llama-70b"})

	if got := m.ToInternal("totally-unknown"); got != "totally-unknown" {
		t.Errorf("ToInternal passthrough = %q", got)
	}
	if got := m.ToExternal("totally-unknown"); got != "totally-unknown" {
		t.Errorf("ToExternal passthrough = %q", got)
	}
}

func TestMapperRoundTrip(t *testing.T) {
	m := NewMapper(map[string]string{"gpt-4": "llama-70b"})

	if got := m.ToExternal(m.ToInternal("gpt-4")); got != "gpt-4" {
		t.Errorf("round trip = %q, want gpt-4", got)
	}
}

func TestMapperManyToOneDeterministicReverse(t *testing.T) {
	table := map[string]string{
		"gpt-4":       "llama-70b",
		"gpt-4-turbo": "llama-70b",
		"gpt-4o":      "llama-70b",
	}
	m := NewMapper(table)

	if a, b := m.ToInternal("gpt-4"), m.ToInternal("gpt-4o"); a != b {
		t.Fatalf("colliding externals should share internal: %q vs %q", a, b)
	}

	// Lexicographically smallest external name wins, on every call and on
	// every rebuild of the table.
	for i := 0; i < 10; i++ {
		if got := NewMapper(table).ToExternal("llama-70b"); got != "gpt-4" {
			t.Fatalf("ToExternal(llama-70b) = %q, want gpt-4", got)
		}
	}
}
