package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rothamp/peppermint/src/engine"
	"golang.org/x/sync/errgroup"
)

var (
	sockFileName = flag.String("sock", "/tmp/peppermint.sock", "control socket path")
	scsynthAddr  = flag.String("scsynth", "127.0.0.1:57110", "scsynth UDP address")
	presetPath   = flag.String("preset", "", "preset JSON to apply at startup")
	midiPort     = flag.String("midi", "", "MIDI input port name (default: first available)")
	maxVoices    = flag.Int("max-voices", engine.DefaultMaxVoices, "poly mode voice limit")
	listDevices  = flag.Bool("list-devices", false, "list ALSA playback devices and exit")
	listMidi     = flag.Bool("list-midi", false, "list MIDI input ports and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	if *listDevices {
		for _, d := range engine.ListAudioDevices() {
			log.Printf("%s\t%s\n", d.Name, d.Description)
		}
		return
	}
	if *listMidi {
		for _, name := range engine.ListMidiIns() {
			log.Println(name)
		}
		return
	}

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e := engine.New(func() (engine.Transport, error) {
		return engine.DialScsynth(*scsynthAddr)
	}, *maxVoices)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()

	port := *midiPort
	if *presetPath != "" {
		preset, err := engine.LoadPreset(*presetPath)
		if err != nil {
			log.Printf("failed to load preset: %v\n", err)
		} else {
			e.ApplyPreset(preset)
			if port == "" {
				port = preset.MidiPort
			}
		}
	}

	err := withControlConnection(ctx, *sockFileName, func(conn net.Conn) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return e.Run(ctx)
		})
		g.Go(func() error {
			pumpMidi(ctx, e, port)
			return nil
		})
		g.Go(func() error {
			return receiveCommands(ctx, conn, e)
		})
		g.Go(func() error {
			return sendReports(ctx, conn, e)
		})
		return g.Wait()
	})
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func withControlConnection(ctx context.Context, path string, f func(net.Conn) error) error {
	os.Remove(path)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", path)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing control socket...")
		if err := listener.Close(); err != nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(path)
	}()
	log.Printf("start listening...\n")
	conn, err := listener.Accept()
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	return f(conn)
}

func pumpMidi(ctx context.Context, e *engine.Engine, portName string) {
	for data := range engine.ListenToMidiIn(ctx, portName) {
		e.HandleRawMIDI(data)
	}
	log.Println("pumpMidi() ended.")
}

func receiveCommands(ctx context.Context, conn net.Conn, e *engine.Engine) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		default:
		}
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		fields, err := parseCommand(string(line))
		if err != nil {
			return err
		}
		if err := dispatchCommand(e, fields); err != nil {
			log.Printf("bad command %q: %v\n", string(line), err)
		}
		line = []byte{}
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	fields := strings.Split(line, " ")
	for i, item := range fields {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		fields[i] = escaped
	}
	return fields, nil
}

func dispatchCommand(e *engine.Engine, fields []string) error {
	switch fields[0] {
	case "note_on":
		if len(fields) < 2 {
			return errMissingArgs(fields[0])
		}
		note, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return err
		}
		velocity := int64(100)
		if len(fields) > 2 {
			velocity, err = strconv.ParseInt(fields[2], 10, 32)
			if err != nil {
				return err
			}
		}
		e.NoteOn(int(note), int(velocity))
	case "note_off":
		if len(fields) < 2 {
			return errMissingArgs(fields[0])
		}
		note, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return err
		}
		e.NoteOff(int(note))
	case "panic":
		e.NoteOffAll()
	case "set":
		if len(fields) < 3 {
			return errMissingArgs(fields[0])
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return err
		}
		e.SetParam(fields[1], value)
	case "mono":
		e.SetPolyMode(false)
	case "poly":
		e.SetPolyMode(true)
	case "reboot":
		e.Reboot()
	default:
		log.Printf("unknown command %v\n", fields[0])
	}
	return nil
}

type errMissingArgs string

func (e errMissingArgs) Error() string {
	return "missing arguments for " + string(e)
}

func sendReports(ctx context.Context, conn net.Conn, e *engine.Engine) error {
	t := time.NewTicker(time.Second)
	defer t.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			s := "status stopped"
			if e.Running() {
				s = "status running"
			}
			conn.Write([]byte(s + "\n"))
		}
	}
	log.Println("sendReports() ended.")
	return nil
}
