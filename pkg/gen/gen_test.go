package gen

import "testing"

func TestJobIDUnique(t *testing.T) {
	seen := make(map[string]struct{})

	for range 1000 {
		id := JobID()
		if id == "" {
			t.Fatal("expected non-empty id")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSessionIDUnique(t *testing.T) {
	if SessionID() == SessionID() {
		t.Error("expected distinct session ids")
	}
}
