package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", "u1") || !m.Enabled("c", "u1") || !m.Enabled("e", "u1") {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", "u1") || m.Enabled("d", "u1") || m.Enabled("f", "u1") {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
	if !m.Enabled("A", "u1") {
		t.Fatal("flag names are case-insensitive")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	if !m.Enabled("always", "") {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", "jane@x.com") {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.Enabled("canary", "jane@x.com")
	for range 5 {
		if got := m.Enabled("canary", "jane@x.com"); got != first {
			t.Fatal("rollout evaluation must be deterministic per subject")
		}
	}

	if m.Enabled("canary", "") {
		t.Fatal("percentage rollout requires a subject")
	}
}

func TestParse(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off,=on,w= ")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d", len(raw))
	}
	if raw["x"] != "on" || raw["y"] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}
	if NewManager("").Enabled(ResendRequiresAccount, "a@b.c") {
		t.Fatal("unset flags are off")
	}

	var nilManager *Manager
	if nilManager.Enabled(ResendRequiresAccount, "") {
		t.Fatal("nil manager reports every flag off")
	}
}
