package variable

import "testing"

func TestCoerceNumber(t *testing.T) {
	v, err := Coerce("42", TypeNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Num != 42 {
		t.Errorf("expected 42, got %v", v.Num)
	}

	v, err = Coerce(3.5, TypeNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Num != 3.5 {
		t.Errorf("expected 3.5, got %v", v.Num)
	}

	v, err = Coerce(true, TypeNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Num != 1 {
		t.Errorf("expected 1, got %v", v.Num)
	}
}

func TestCoerceNumberFailure(t *testing.T) {
	// Non-numeric input falls back to zero and reports the error; it must
	// never panic, since it sits on the untrusted data path.
	v, err := Coerce("not a number", TypeNumber)
	if err == nil {
		t.Fatal("expected error for non-numeric string")
	}
	if v.Num != 0 {
		t.Errorf("expected fallback 0, got %v", v.Num)
	}

	v, err = Coerce(map[string]interface{}{"a": 1}, TypeNumber)
	if err == nil {
		t.Fatal("expected error for object input")
	}
	if v.Num != 0 {
		t.Errorf("expected fallback 0, got %v", v.Num)
	}
}

func TestCoerceBoolean(t *testing.T) {
	cases := []struct {
		raw  interface{}
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"1", true},
		{"false", false},
		{"0", false},
		{float64(7), true},
		{float64(0), false},
	}

	for _, c := range cases {
		v, err := Coerce(c.raw, TypeBoolean)
		if err != nil {
			t.Errorf("coerce %v: unexpected error: %v", c.raw, err)
			continue
		}
		if v.Bool != c.want {
			t.Errorf("coerce %v: expected %v, got %v", c.raw, c.want, v.Bool)
		}
	}
}

func TestCoerceString(t *testing.T) {
	v, err := Coerce(7, TypeString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Str != "7" {
		t.Errorf("expected \"7\", got %q", v.Str)
	}

	v, err = Coerce(float64(7), TypeString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Str != "7" {
		t.Errorf("expected \"7\", got %q", v.Str)
	}

	v, err = Coerce(true, TypeString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Str != "true" {
		t.Errorf("expected \"true\", got %q", v.Str)
	}
}

func TestCoerceUnknownType(t *testing.T) {
	if _, err := Coerce(1, Type("vector")); err == nil {
		t.Error("expected error for unknown type")
	}
}
