package engine

import "testing"

func TestParamStoreDefaults(t *testing.T) {
	p := newParamStore()
	if p.get("cutoff") != 1200.0 {
		t.Errorf("expected cutoff default 1200, got %v", p.get("cutoff"))
	}
	if p.get("detune") != 1.01 {
		t.Errorf("expected detune default 1.01, got %v", p.get("detune"))
	}
	if len(p.values) != len(defaultParams) {
		t.Errorf("expected %d parameters, got %d", len(defaultParams), len(p.values))
	}
}

func TestParamStoreIgnoresUnknownNames(t *testing.T) {
	p := newParamStore()
	p.set("glide_time", 100)
	if _, ok := p.values["glide_time"]; ok {
		t.Errorf("unknown name must not be stored")
	}
	// Case-sensitive: "Cutoff" is not "cutoff".
	p.set("Cutoff", 500)
	if p.get("cutoff") != 1200.0 {
		t.Errorf("expected cutoff untouched, got %v", p.get("cutoff"))
	}
}

func TestParamStoreSnapshotIsACopy(t *testing.T) {
	p := newParamStore()
	snap := p.snapshot()
	snap["cutoff"] = 1.0
	if p.get("cutoff") != 1200.0 {
		t.Errorf("mutating a snapshot must not touch the store")
	}
	p.set("cutoff", 700)
	if snap2 := p.snapshot(); snap2["cutoff"] != 700 {
		t.Errorf("expected snapshot to reflect the store, got %v", snap2["cutoff"])
	}
}

func TestParamStoreReset(t *testing.T) {
	p := newParamStore()
	p.set("res", 0.9)
	p.reset()
	if p.get("res") != 0.2 {
		t.Errorf("expected res back at its default, got %v", p.get("res"))
	}
}
