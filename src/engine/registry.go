package engine

// ----- Voice Registry ----- //

// voice is a handle to one running instance of the synthdef on the
// server, addressed by node id. The engine frees the node itself once
// the release envelope completes; the registry only tracks what we
// believe is sounding.
type voice struct {
	nodeID int32
	note   int
	params map[string]float64 // controls at creation time
}

// voiceRegistry is pure in-memory bookkeeping for live voices: a mono
// slot plus an insertion-ordered note->voice map for poly mode. No
// locks; only the worker goroutine touches it.
type voiceRegistry struct {
	mono     *voice
	monoNote int
	poly     map[int]*voice
	order    []int // poly insertion order, oldest first
}

func newVoiceRegistry() *voiceRegistry {
	return &voiceRegistry{
		monoNote: -1,
		poly:     make(map[int]*voice, 16),
		order:    make([]int, 0, 16),
	}
}

func (r *voiceRegistry) setMono(v *voice, note int) {
	r.mono = v
	r.monoNote = note
}

func (r *voiceRegistry) clearMono() {
	r.mono = nil
	r.monoNote = -1
}

func (r *voiceRegistry) putPoly(note int, v *voice) {
	if _, ok := r.poly[note]; !ok {
		r.order = append(r.order, note)
	}
	r.poly[note] = v
}

// popPoly removes and returns the voice for note, or nil.
func (r *voiceRegistry) popPoly(note int) *voice {
	v, ok := r.poly[note]
	if !ok {
		return nil
	}
	delete(r.poly, note)
	for i, n := range r.order {
		if n == note {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return v
}

// oldestPolyNote returns the earliest-inserted held note, or -1 when
// no poly voice is live. Steal eviction order is strictly FIFO.
func (r *voiceRegistry) oldestPolyNote() int {
	if len(r.order) == 0 {
		return -1
	}
	return r.order[0]
}

func (r *voiceRegistry) polyCount() int {
	return len(r.poly)
}

// polyVoices returns the live poly voices in insertion order.
func (r *voiceRegistry) polyVoices() []*voice {
	voices := make([]*voice, 0, len(r.order))
	for _, note := range r.order {
		voices = append(voices, r.poly[note])
	}
	return voices
}

func (r *voiceRegistry) clearPoly() {
	r.poly = make(map[int]*voice, 16)
	r.order = r.order[:0]
}
