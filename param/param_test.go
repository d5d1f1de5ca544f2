package param

import "testing"

func TestCountAndNames(t *testing.T) {
	if Count != 40 {
		t.Fatalf("parameter count: got %d want 40", Count)
	}
	seen := map[string]bool{}
	for i := 0; i < Count; i++ {
		name := ID(i).String()
		if name == "" || name == "unknown" {
			t.Fatalf("parameter %d has no name", i)
		}
		if seen[name] {
			t.Fatalf("duplicate parameter name %q", name)
		}
		seen[name] = true
		id, ok := ByName(name)
		if !ok || id != ID(i) {
			t.Fatalf("ByName(%q): got %d,%v want %d", name, id, ok, i)
		}
	}
}

func TestStableIdentities(t *testing.T) {
	cases := map[ID]string{
		AmpEnvAttack:    "amp_attack",
		MasterVolume:    "master_vol",
		ReverbWet:       "reverb_wet",
		PortamentoTime:  "portamento_time",
		KeyboardMode:    "keyboard_mode",
		AmpVelocitySens: "amp_vel_sens",
	}
	for id, name := range cases {
		if id.String() != name {
			t.Fatalf("id %d: got %q want %q", id, id.String(), name)
		}
	}
	if MasterVolume != 14 || KeyboardMode != 32 {
		t.Fatalf("parameter numbering changed")
	}
}

func TestDefaultsWithinRange(t *testing.T) {
	defaults := Defaults()
	for i, v := range defaults {
		p := Props(ID(i))
		if v < p.Min || v > p.Max {
			t.Fatalf("%s default %f outside [%f,%f]", p.Name, v, p.Min, p.Max)
		}
	}
}

func TestClampAndUnknown(t *testing.T) {
	if got := Clamp(MasterVolume, 2); got != 1 {
		t.Fatalf("clamp high: got %f", got)
	}
	if got := Clamp(FilterCutoff, -3); got != -0.5 {
		t.Fatalf("clamp low: got %f", got)
	}
	if ID(Count).Valid() || ID(-1).Valid() {
		t.Fatalf("out of range ids must be invalid")
	}
	if _, ok := ByName("nope"); ok {
		t.Fatalf("unknown name must not resolve")
	}
}
