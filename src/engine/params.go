package engine

// ----- Parameter Store ----- //

// Canonical control names of the peppermintVoice synthdef. The store
// accepts exactly these; anything else (stray keys from old preset
// files, future parameters) is silently dropped.
var defaultParams = map[string]float64{
	"vco_mix":    0.5,
	"vco1_wave":  0.0,
	"vco2_wave":  0.0,
	"detune":     1.01,
	"cutoff":     1200.0,
	"res":        0.2,
	"env_amt":    0.5,
	"noise_mix":  0.0,
	"lfo_freq":   5.0,
	"lfo_depth":  0.0,
	"lfo_target": 0.0,
	"atk":        0.01,
	"dec":        0.1,
	"sus":        0.7,
	"rel":        0.3,
	"amp":        0.2,
}

// paramStore holds the current value of every synth parameter. It is
// the seed for newly created voices and the answer to GUI reads. It is
// only ever touched from the worker goroutine, so it carries no lock.
type paramStore struct {
	values map[string]float64
}

func newParamStore() *paramStore {
	p := &paramStore{values: make(map[string]float64, len(defaultParams))}
	p.reset()
	return p
}

// reset restores every parameter to its synthdef default. Called at
// store creation and after an engine reboot.
func (p *paramStore) reset() {
	for name, value := range defaultParams {
		p.values[name] = value
	}
}

func (p *paramStore) known(name string) bool {
	_, ok := defaultParams[name]
	return ok
}

// set stores value under name if name is a known parameter, otherwise
// does nothing. Unknown names are not an error.
func (p *paramStore) set(name string, value float64) {
	if !p.known(name) {
		return
	}
	p.values[name] = value
}

func (p *paramStore) get(name string) float64 {
	return p.values[name]
}

// snapshot returns a full copy for seeding a new voice.
func (p *paramStore) snapshot() map[string]float64 {
	copied := make(map[string]float64, len(p.values))
	for name, value := range p.values {
		copied[name] = value
	}
	return copied
}
