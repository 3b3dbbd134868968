package jsondoc

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"
)

func mustParse(t *testing.T, data string) *Object {
	t.Helper()
	obj := New()
	if err := obj.UnmarshalJSON([]byte(data)); err != nil {
		t.Fatalf("failed to parse %q: %v", data, err)
	}
	return obj
}

func TestDecodePreservesKeyOrder(t *testing.T) {
	obj := mustParse(t, `{"zeta":1,"alpha":{"9":"x","2":"y"},"mid":[1,2]}`)

	want := []string{"zeta", "alpha", "mid"}
	if got := obj.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("top-level keys = %v, want %v", got, want)
	}

	nested, ok := AsObject(obj.Val("alpha"))
	if !ok {
		t.Fatalf("alpha is not an object: %T", obj.Val("alpha"))
	}
	if got := nested.Keys(); !reflect.DeepEqual(got, []string{"9", "2"}) {
		t.Fatalf("nested keys = %v, want [9 2]", got)
	}

	key, val := nested.At(1)
	if key != "2" || val != "y" {
		t.Fatalf("At(1) = (%q, %v), want (\"2\", \"y\")", key, val)
	}
}

func TestMarshalRoundTripKeepsOrder(t *testing.T) {
	raw := `{"b":1,"a":{"d":null,"c":[true,"s"]},"e":2.5}`
	obj := mustParse(t, raw)

	out, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !bytes.Equal(out, []byte(raw)) {
		t.Fatalf("round trip = %s, want %s", out, raw)
	}
}

func TestMergeRules(t *testing.T) {
	base := mustParse(t, `{"outline":{"intro":"old","credits":3},"quizzes":[1,2],"keep":"yes"}`)
	patch := mustParse(t, `{"outline":{"intro":"new"},"quizzes":[3],"added":true}`)

	merged := Merge(base, patch)

	outline, _ := AsObject(merged.Val("outline"))
	if outline.Val("intro") != "new" {
		t.Errorf("nested key not overwritten: %v", outline.Val("intro"))
	}
	if outline.Val("credits") == nil {
		t.Errorf("sibling nested key lost in merge")
	}

	// Arrays are replaced wholesale, never concatenated.
	quizzes, _ := AsArray(merged.Val("quizzes"))
	if len(quizzes) != 1 {
		t.Errorf("array not replaced: %v", quizzes)
	}

	if merged.Val("keep") != "yes" {
		t.Errorf("untouched key lost")
	}
	if merged.Val("added") != true {
		t.Errorf("new key not added")
	}

	// Inputs must stay untouched.
	baseOutline, _ := AsObject(base.Val("outline"))
	if baseOutline.Val("intro") != "old" {
		t.Errorf("merge mutated its input")
	}
}

func TestMergeTypeMismatchReplaces(t *testing.T) {
	base := mustParse(t, `{"section":{"a":1}}`)
	patch := mustParse(t, `{"section":"plain"}`)

	merged := Merge(base, patch)
	if merged.Val("section") != "plain" {
		t.Fatalf("type mismatch should replace, got %v", merged.Val("section"))
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	base := mustParse(t, `{"a":{"b":1},"c":[1,2]}`)
	patch := mustParse(t, `{"a":{"b":2},"d":"x"}`)

	once := Merge(base, patch)
	twice := Merge(once, patch)

	onceJSON, _ := json.Marshal(once)
	twiceJSON, _ := json.Marshal(twice)
	if !bytes.Equal(onceJSON, twiceJSON) {
		t.Fatalf("merge not idempotent: %s vs %s", onceJSON, twiceJSON)
	}
}

func TestSetDeleteAndScan(t *testing.T) {
	obj := New()
	obj.Set("one", 1)
	obj.Set("two", 2)
	obj.Set("one", 10)
	if got := obj.Keys(); !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Fatalf("re-set must not duplicate keys: %v", got)
	}
	obj.Delete("one")
	if _, ok := obj.Get("one"); ok {
		t.Fatalf("delete did not remove key")
	}

	var scanned Object
	if err := scanned.Scan([]byte(`{"x":1}`)); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if scanned.Len() != 1 {
		t.Fatalf("scan produced %d keys", scanned.Len())
	}

	var empty Object
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("scan nil failed: %v", err)
	}
	if empty.Len() != 0 {
		t.Fatalf("scan nil should yield empty object")
	}
}
