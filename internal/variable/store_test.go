package variable

import "testing"

func TestDefineAndGet(t *testing.T) {
	s := NewStore()

	v, err := s.Define("temperature", TypeNumber, 21.5)
	if err != nil {
		t.Fatalf("define failed: %v", err)
	}
	if v.ID == "" {
		t.Error("expected generated id")
	}
	if v.Value.Num != 21.5 {
		t.Errorf("expected default 21.5, got %v", v.Value.Num)
	}

	got, ok := s.Get(v.ID)
	if !ok {
		t.Fatal("expected variable to exist")
	}
	if got.Name != "temperature" {
		t.Errorf("expected name temperature, got %s", got.Name)
	}
}

func TestDefineRejectsUnknownType(t *testing.T) {
	s := NewStore()
	if _, err := s.Define("x", Type("blob"), nil); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestSetCoercesToDeclaredType(t *testing.T) {
	s := NewStore()
	v, _ := s.Define("count", TypeNumber, 0)

	if _, _, err := s.Set(v.ID, "42"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, _ := s.Get(v.ID)
	if got.Value.Kind != KindNumber || got.Value.Num != 42 {
		t.Errorf("expected coerced number 42, got %+v", got.Value)
	}
}

func TestSetRejectsUncoercibleValue(t *testing.T) {
	s := NewStore()
	v, _ := s.Define("count", TypeNumber, 5)

	if _, _, err := s.Set(v.ID, "garbage"); err == nil {
		t.Fatal("expected coercion error")
	}

	// The failed write must leave the variable untouched.
	got, _ := s.Get(v.ID)
	if got.Value.Num != 5 {
		t.Errorf("expected value unchanged at 5, got %v", got.Value.Num)
	}
}

func TestSetMissingVariable(t *testing.T) {
	s := NewStore()
	if _, _, err := s.Set("nope", 1); err == nil {
		t.Error("expected error for missing variable")
	}
}

func TestNoChangeNotificationForSameValue(t *testing.T) {
	s := NewStore()
	v, _ := s.Define("level", TypeNumber, 0)

	var changes []Change
	s.OnChange(func(ch Change) {
		changes = append(changes, ch)
	})

	if _, changed, _ := s.Set(v.ID, 10); !changed {
		t.Error("expected first write to report a change")
	}
	if _, changed, _ := s.Set(v.ID, 10); changed {
		t.Error("expected second identical write to be a no-op")
	}
	if _, changed, _ := s.Set(v.ID, "10"); changed {
		t.Error("expected coerced-equal write to be a no-op")
	}

	if len(changes) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(changes))
	}
	if changes[0].Old.Num != 0 || changes[0].New.Num != 10 {
		t.Errorf("expected change 0 -> 10, got %v -> %v", changes[0].Old.Num, changes[0].New.Num)
	}
}

func TestRemoveLeavesDanglingReference(t *testing.T) {
	s := NewStore()
	v, _ := s.Define("gone", TypeString, "x")

	s.Remove(v.ID)

	if _, ok := s.Get(v.ID); ok {
		t.Error("expected variable to be removed")
	}
	if _, _, err := s.Set(v.ID, "y"); err == nil {
		t.Error("expected error writing a removed variable")
	}
}

func TestReset(t *testing.T) {
	s := NewStore()
	v, _ := s.Define("speed", TypeNumber, 3)

	s.Set(v.ID, 99)
	if err := s.Reset(v.ID); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	got, _ := s.Get(v.ID)
	if got.Value.Num != 3 {
		t.Errorf("expected default 3 after reset, got %v", got.Value.Num)
	}
}

func TestFindByName(t *testing.T) {
	s := NewStore()
	s.Define("alpha", TypeNumber, 1)
	s.Define("beta", TypeNumber, 2)

	v, ok := s.FindByName("beta")
	if !ok {
		t.Fatal("expected to find beta")
	}
	if v.Value.Num != 2 {
		t.Errorf("expected 2, got %v", v.Value.Num)
	}

	if _, ok := s.FindByName("gamma"); ok {
		t.Error("did not expect to find gamma")
	}
}
