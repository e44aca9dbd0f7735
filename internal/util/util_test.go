package util

import (
	"reflect"
	"testing"
)

func TestCountWords(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"one two three", 3},
		{"  spaced\tout\nwords  ", 3},
	}
	for _, tc := range cases {
		if got := CountWords(tc.text); got != tc.want {
			t.Errorf("CountWords(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("abcdefghij", 3, 3, "..."); got != "abc...hij" {
		t.Errorf("TruncateString = %q", got)
	}
	if got := TruncateString("short", 3, 3, "..."); got != "short" {
		t.Errorf("short string modified: %q", got)
	}
}

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("UTIL_TEST_KEY", "set-value")
	if got := GetEnvWithDefault("UTIL_TEST_KEY", "fallback"); got != "set-value" {
		t.Errorf("got %q", got)
	}
	if got := GetEnvWithDefault("UTIL_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("got %q", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := map[string]any{"model": "gpt-4", "n": 2.0}
	data, err := MarshalJSON(in)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var out map[string]any
	if err := UnmarshalJSON(data, &out); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch: %v vs %v", in, out)
	}
}
