package engine

import (
	"encoding/json"
	"io/ioutil"

	"github.com/pkg/errors"
)

// ----- Presets ----- //

// Preset is the flat on-disk record the GUI saves and restores. Slider
// keys that no longer match a known parameter are tolerated: the store
// drops them when the preset is applied.
type Preset struct {
	Sliders   map[string]float64 `json:"sliders"`
	PolyMode  bool               `json:"poly_mode"`
	LfoTarget float64            `json:"lfo_target"`
	NoteIndex int                `json:"note_index"`
	MidiPort  string             `json:"midi_port,omitempty"`
}

// LoadPreset reads a preset JSON file.
func LoadPreset(path string) (*Preset, error) {
	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading preset")
	}
	var p Preset
	if err := json.Unmarshal(bytes, &p); err != nil {
		return nil, errors.Wrap(err, "parsing preset")
	}
	return &p, nil
}

// SavePreset writes a preset JSON file.
func SavePreset(path string, p *Preset) error {
	bytes, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		return errors.Wrap(err, "encoding preset")
	}
	return errors.Wrap(ioutil.WriteFile(path, bytes, 0644), "writing preset")
}

// ApplyPreset enqueues the preset's state onto the engine: one
// SetParam per slider, the LFO routing, then the mode flag.
func (e *Engine) ApplyPreset(p *Preset) {
	for name, value := range p.Sliders {
		e.SetParam(name, value)
	}
	e.SetParam("lfo_target", p.LfoTarget)
	e.SetPolyMode(p.PolyMode)
}
