package engine

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestPresetRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "peppermint-preset")
	expectNoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "lead.json")
	saved := &Preset{
		Sliders:   map[string]float64{"cutoff": 640, "res": 0.55},
		PolyMode:  true,
		LfoTarget: 1.0,
		NoteIndex: 2,
		MidiPort:  "Keystation 49",
	}
	expectNoError(t, SavePreset(path, saved))

	loaded, err := LoadPreset(path)
	expectNoError(t, err)
	if loaded.Sliders["cutoff"] != 640 || loaded.Sliders["res"] != 0.55 {
		t.Errorf("unexpected sliders: %v", loaded.Sliders)
	}
	if !loaded.PolyMode || loaded.LfoTarget != 1.0 || loaded.NoteIndex != 2 {
		t.Errorf("unexpected fields: %+v", loaded)
	}
	if loaded.MidiPort != "Keystation 49" {
		t.Errorf("unexpected midi port: %q", loaded.MidiPort)
	}
}

func TestPresetAbsentMidiPort(t *testing.T) {
	dir, err := ioutil.TempDir("", "peppermint-preset")
	expectNoError(t, err)
	defer os.RemoveAll(dir)

	// Preset written by an older build: no midi_port field, and a
	// slider key the current parameter set no longer has.
	path := filepath.Join(dir, "old.json")
	body := `{
    "sliders": {"cutoff": 900.0, "pulse_width": 0.3},
    "poly_mode": false,
    "lfo_target": 0.0,
    "note_index": 0
}`
	expectNoError(t, ioutil.WriteFile(path, []byte(body), 0644))
	loaded, err := LoadPreset(path)
	expectNoError(t, err)
	if loaded.MidiPort != "" {
		t.Errorf("expected empty midi port, got %q", loaded.MidiPort)
	}

	// Applying it must not error and must drop the stray key.
	e, _ := newTestEngine(0)
	e.ApplyPreset(loaded)
	for {
		select {
		case cmd := <-e.CommandCh:
			e.apply(cmd)
			continue
		default:
		}
		break
	}
	if e.store.get("cutoff") != 900.0 {
		t.Errorf("expected cutoff restored, got %v", e.store.get("cutoff"))
	}
	if _, ok := e.store.values["pulse_width"]; ok {
		t.Errorf("stray slider key must be ignored")
	}
	if e.polyMode {
		t.Errorf("expected mono mode restored")
	}
}

func TestLoadPresetMissingFile(t *testing.T) {
	if _, err := LoadPreset("/nonexistent/peppermint.json"); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
