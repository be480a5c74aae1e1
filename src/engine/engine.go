package engine

import (
	"context"
	"log"
	"math"
	"sync/atomic"
)

const (
	// DefaultMaxVoices is the poly mode voice limit.
	DefaultMaxVoices = 8

	commandBufferSize = 65536
)

// ----- Commands ----- //

// Command is one discrete request for the worker loop. Each kind is
// its own struct so the worker dispatches over an exhaustive type
// switch instead of inspecting string tuples.
type Command interface {
	isCommand()
}

// NoteOn starts (or retriggers) a note. Velocity 0-127; a velocity of
// zero is treated as a NoteOff per MIDI convention.
type NoteOn struct {
	Note     int
	Velocity int
}

// NoteOff releases the voice for a note.
type NoteOff struct {
	Note int
}

// NoteOffAll releases every live voice (panic / all-notes-off).
type NoteOffAll struct{}

// SetParam stores a parameter value and fans it out to live voices.
type SetParam struct {
	Name  string
	Value float64
}

// SetMode switches between mono and poly allocation. It does not
// touch voices already sounding in the other mode.
type SetMode struct {
	Poly bool
}

// Reboot tears down and re-establishes the engine connection.
type Reboot struct{}

// Shutdown releases all voices and stops the worker loop.
type Shutdown struct{}

func (NoteOn) isCommand()     {}
func (NoteOff) isCommand()    {}
func (NoteOffAll) isCommand() {}
func (SetParam) isCommand()   {}
func (SetMode) isCommand()    {}
func (Reboot) isCommand()     {}
func (Shutdown) isCommand()   {}

// ----- Utility ----- //

// MidiToHz converts a MIDI note number to Hz (12-TET, A4 = 440Hz).
func MidiToHz(note int) float64 {
	return 440.0 * math.Pow(2, float64(note-69)/12.0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ----- Engine ----- //

// DialFunc establishes a Transport to the external audio engine.
// Run calls it once at startup and again on every Reboot command.
type DialFunc func() (Transport, error)

// Engine owns the voice allocator: the parameter store, the voice
// registry and the connection to the external synth server. All of
// that state is mutated only by the worker goroutine inside Run;
// every other goroutine just enqueues commands, so no locks are
// needed around allocation.
type Engine struct {
	CommandCh chan Command

	dial      DialFunc
	maxVoices int

	// worker-owned state
	store     *paramStore
	reg       *voiceRegistry
	ids       *nodeIDAllocator
	transport Transport
	polyMode  bool

	running int32 // atomic; read by the status reporter
}

// New creates an Engine that connects via dial. maxVoices <= 0 falls
// back to DefaultMaxVoices.
func New(dial DialFunc, maxVoices int) *Engine {
	if maxVoices <= 0 {
		maxVoices = DefaultMaxVoices
	}
	return &Engine{
		CommandCh: make(chan Command, commandBufferSize),
		dial:      dial,
		maxVoices: maxVoices,
		store:     newParamStore(),
		reg:       newVoiceRegistry(),
		ids:       newNodeIDAllocator(),
	}
}

// ----- Public API (any goroutine) ----- //

// NoteOn ...
func (e *Engine) NoteOn(note int, velocity int) {
	e.CommandCh <- NoteOn{Note: note, Velocity: velocity}
}

// NoteOff ...
func (e *Engine) NoteOff(note int) {
	e.CommandCh <- NoteOff{Note: note}
}

// NoteOffAll ...
func (e *Engine) NoteOffAll() {
	e.CommandCh <- NoteOffAll{}
}

// SetParam ...
func (e *Engine) SetParam(name string, value float64) {
	e.CommandCh <- SetParam{Name: name, Value: value}
}

// SetPolyMode ...
func (e *Engine) SetPolyMode(poly bool) {
	e.CommandCh <- SetMode{Poly: poly}
}

// Reboot ...
func (e *Engine) Reboot() {
	e.CommandCh <- Reboot{}
}

// Shutdown ...
func (e *Engine) Shutdown() {
	e.CommandCh <- Shutdown{}
}

// Running reports whether the engine connection is up. Safe to call
// from any goroutine; drives the GUI status indicator.
func (e *Engine) Running() bool {
	return atomic.LoadInt32(&e.running) == 1
}

func (e *Engine) setRunning(up bool) {
	if up {
		atomic.StoreInt32(&e.running, 1)
	} else {
		atomic.StoreInt32(&e.running, 0)
	}
}

// HandleRawMIDI decodes a raw MIDI message and enqueues the matching
// note command. Non-note messages are ignored.
func (e *Engine) HandleRawMIDI(data []byte) {
	if len(data) < 3 {
		return
	}
	if data[0]>>4 == 8 || data[0]>>4 == 9 && data[2] == 0 {
		e.NoteOff(int(data[1]))
	} else if data[0]>>4 == 9 && data[2] > 0 {
		e.NoteOn(int(data[1]), int(data[2]))
	}
}

// ----- Worker loop ----- //

// Run connects to the engine and processes commands strictly in FIFO
// order until a Shutdown command arrives or ctx is cancelled. Voices
// still sounding at exit are gated off before the connection closes.
func (e *Engine) Run(ctx context.Context) error {
	e.connect()
	for {
		select {
		case <-ctx.Done():
			log.Println("engine loop interrupted")
			e.teardown()
			return nil
		case cmd := <-e.CommandCh:
			if _, ok := cmd.(Shutdown); ok {
				e.teardown()
				log.Println("engine loop ended.")
				return nil
			}
			e.apply(cmd)
		}
	}
}

func (e *Engine) connect() {
	transport, err := e.dial()
	if err != nil {
		log.Printf("engine unavailable: %v\n", err)
		e.setRunning(false)
		return
	}
	e.transport = transport
	e.setRunning(true)
}

func (e *Engine) teardown() {
	e.handleNoteOffAll()
	if e.transport != nil {
		if err := e.transport.Close(); err != nil {
			log.Printf("error while closing engine connection: %v\n", err)
		}
		e.transport = nil
	}
	e.setRunning(false)
}

func (e *Engine) apply(cmd Command) {
	switch c := cmd.(type) {
	case NoteOn:
		e.handleNoteOn(c.Note, c.Velocity)
	case NoteOff:
		e.handleNoteOff(c.Note)
	case NoteOffAll:
		e.handleNoteOffAll()
	case SetParam:
		e.handleSetParam(c.Name, c.Value)
	case SetMode:
		e.polyMode = c.Poly
	case Reboot:
		e.handleReboot()
	case Shutdown:
		// handled in Run
	default:
		log.Printf("unknown command %T\n", cmd)
	}
}

// ----- Handlers (worker goroutine only) ----- //

func (e *Engine) handleNoteOn(note int, velocity int) {
	if velocity <= 0 {
		// MIDI convention: note-on with zero velocity is a note-off.
		e.handleNoteOff(note)
		return
	}
	if e.transport == nil {
		// Engine not booted yet: drop the note rather than queue it.
		log.Printf("dropping note %d: engine not running\n", note)
		return
	}
	freq := MidiToHz(note)
	amp := clamp01(float64(velocity)/127.0) * e.store.get("amp")

	if e.polyMode {
		// Retrigger: never two live voices for the same note.
		if old := e.reg.popPoly(note); old != nil {
			e.gateOff(old)
		}
		// FIFO steal: evict the oldest-inserted voice at capacity.
		if e.reg.polyCount() >= e.maxVoices {
			if stolen := e.reg.popPoly(e.reg.oldestPolyNote()); stolen != nil {
				e.gateOff(stolen)
			}
		}
		e.reg.putPoly(note, e.startVoice(note, freq, amp))
	} else {
		// The previous mono voice is released before the new one is
		// requested, so at most one voice ever holds the mono slot.
		if e.reg.mono != nil {
			e.gateOff(e.reg.mono)
			e.reg.clearMono()
		}
		e.reg.setMono(e.startVoice(note, freq, amp), note)
	}
}

func (e *Engine) startVoice(note int, freq float64, amp float64) *voice {
	controls := e.store.snapshot()
	controls["frequency"] = freq
	controls["amp"] = amp
	controls["gate"] = 1.0
	nodeID := e.ids.alloc()
	if err := e.transport.CreateVoice(nodeID, controls); err != nil {
		// Fire and forget: keep the local view even if the send failed.
		log.Printf("failed to create voice %d: %v\n", nodeID, err)
	}
	return &voice{nodeID: nodeID, note: note, params: controls}
}

func (e *Engine) handleNoteOff(note int) {
	if e.polyMode {
		if v := e.reg.popPoly(note); v != nil {
			e.gateOff(v)
		}
	} else {
		// A stale note-off (key released after another note already
		// took the mono slot) must not kill the current voice.
		if e.reg.mono != nil && e.reg.monoNote == note {
			e.gateOff(e.reg.mono)
			e.reg.clearMono()
		}
	}
}

func (e *Engine) handleNoteOffAll() {
	if e.reg.mono != nil {
		e.gateOff(e.reg.mono)
		e.reg.clearMono()
	}
	for _, v := range e.reg.polyVoices() {
		e.gateOff(v)
	}
	e.reg.clearPoly()
}

func (e *Engine) handleSetParam(name string, value float64) {
	if !e.store.known(name) {
		return
	}
	e.store.set(name, value)
	if e.transport == nil {
		return
	}
	if e.reg.mono != nil {
		if err := e.transport.SetControl(e.reg.mono.nodeID, name, value); err != nil {
			log.Printf("failed to set %s on node %d: %v\n", name, e.reg.mono.nodeID, err)
		}
	}
	for _, v := range e.reg.polyVoices() {
		if err := e.transport.SetControl(v.nodeID, name, value); err != nil {
			log.Printf("failed to set %s on node %d: %v\n", name, v.nodeID, err)
		}
	}
}

// handleReboot releases every voice, drops the connection and dials a
// fresh one. Parameters are reinstalled at their defaults, matching
// the synthdef the new server instance loads.
func (e *Engine) handleReboot() {
	e.handleNoteOffAll()
	if e.transport != nil {
		if err := e.transport.Close(); err != nil {
			log.Printf("error while closing engine connection: %v\n", err)
		}
		e.transport = nil
	}
	e.setRunning(false)
	e.store.reset()
	e.connect()
}

// gateOff asks the voice's envelope to enter its release phase. The
// engine frees the node itself once the release completes; registry
// cleanup is the caller's job.
func (e *Engine) gateOff(v *voice) {
	if e.transport == nil {
		return
	}
	if err := e.transport.SetControl(v.nodeID, "gate", 0.0); err != nil {
		log.Printf("failed to gate off node %d: %v\n", v.nodeID, err)
	}
}
