package transform

import "testing"

func TestParseBodyRejectsNonObjects(t *testing.T) {
	cases := []string{`[1,2]`, `"text"`, `42`, `not json`, ``}
	for _, in := range cases {
		if _, err := ParseBody([]byte(in)); err == nil {
			t.Errorf("ParseBody(%q) succeeded, want error", in)
		}
	}
}

func TestBodyModelAccessor(t *testing.T) {
	body, err := ParseBody([]byte(`{"model":"gpt-4","stream":true}`))
	if err != nil {
		t.Fatalf("ParseBody: %v", err)
	}

	model, ok := body.Model()
	if !ok || model != "gpt-4" {
		t.Errorf("Model() = %q, %v", model, ok)
	}
	if !body.Stream() {
		t.Errorf("Stream() = false, want true")
	}
}

func TestBodyModelMissingOrNonString(t *testing.T) {
	body := Body{"model": 42}
	if _, ok := body.Model(); ok {
		t.Errorf("non-string model reported as present")
	}
	if _, ok := (Body{}).Model(); ok {
		t.Errorf("absent model reported as present")
	}
}

func TestBodyStreamDefaultsFalse(t *testing.T) {
	if (Body{}).Stream() {
		t.Errorf("Stream() on empty body = true")
	}
	if (Body{"stream": "yes"}).Stream() {
		t.Errorf("Stream() on non-bool = true")
	}
}

func TestBodyCloneIsIndependentAtTopLevel(t *testing.T) {
	orig := Body{"model": "a", "n": 1}
	clone := orig.Clone()
	clone["model"] = "b"

	if orig["model"] != "a" {
		t.Errorf("clone write leaked into original: %v", orig["model"])
	}
}
