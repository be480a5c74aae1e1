package engine

import (
	"context"
	"log"

	"gitlab.com/gomidi/rtmididrv"
)

// ----- MIDI input ----- //

// ListMidiIns returns the names of the available MIDI input ports.
func ListMidiIns() []string {
	drv, err := rtmididrv.New()
	if err != nil {
		log.Printf("failed to initialize MIDI driver: %v\n", err)
		return nil
	}
	defer func() {
		if err := drv.Close(); err != nil {
			log.Printf("failed to close MIDI driver: %v\n", err)
		}
	}()
	ins, err := drv.Ins()
	if err != nil {
		log.Printf("failed to get MIDI IN: %v\n", err)
		return nil
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

// ListenToMidiIn opens the named MIDI input port (or the first
// available one if portName is empty) and streams its raw messages on
// the returned channel until ctx is done. Never fails hard: with no
// usable port the channel simply stays silent.
func ListenToMidiIn(ctx context.Context, portName string) <-chan []byte {
	ch := make(chan []byte, 65536)
	go func() {
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			if err := drv.Close(); err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		if len(ins) == 0 {
			log.Println("WARN: MIDI IN not found")
			return
		}
		in := ins[0]
		if portName != "" {
			found := false
			for _, candidate := range ins {
				if candidate.String() == portName {
					in = candidate
					found = true
					break
				}
			}
			if !found {
				log.Printf("MIDI IN %q not found, using %s\n", portName, in.String())
			}
		}
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			if err := in.Close(); err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			ch <- data
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			if err := in.StopListening(); err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		defer close(ch)
		<-ctx.Done()
	}()
	return ch
}
