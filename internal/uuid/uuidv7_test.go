package uuid

import (
	"testing"

	googleuuid "github.com/google/uuid"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()

	if a == b {
		t.Fatal("expected distinct ids")
	}
	if !IsValid(a) {
		t.Fatalf("expected valid uuid, got %q", a)
	}
	if v := googleuuid.MustParse(a).Version(); v != 7 {
		t.Errorf("expected version 7, got %d", v)
	}
}

func TestIsValid(t *testing.T) {
	if IsValid("not-a-uuid") {
		t.Error("expected invalid")
	}
	if !IsValid("0190c8a2-7b3e-7cc1-8a9e-2f1d3c4b5a69") {
		t.Error("expected valid")
	}
}
