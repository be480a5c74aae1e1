package engine

import (
	"net"
	"sort"

	"github.com/pkg/errors"
	"github.com/scgolang/osc"
)

// ----- scsynth adapter ----- //

const (
	synthDefName   = "peppermintVoice"
	addToHead      = 0
	defaultGroupID = 1
)

// Transport is the boundary to the external audio engine. Sends are
// fire and forget: no acknowledgement, no retry. The worker's local
// registry is authoritative over confirmed delivery.
type Transport interface {
	// CreateVoice instantiates the synthdef under nodeID with the
	// given control values.
	CreateVoice(nodeID int32, controls map[string]float64) error
	// SetControl sets a single control on a running node.
	SetControl(nodeID int32, name string, value float64) error
	Close() error
}

// scsynthConn speaks scsynth's OSC command set over UDP.
type scsynthConn struct {
	conn *osc.UDPConn
}

// DialScsynth connects a UDP OSC client to a running scsynth at addr
// (host:port, conventionally 127.0.0.1:57110).
func DialScsynth(addr string) (Transport, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "resolving scsynth address")
	}
	laddr, err := net.ResolveUDPAddr("udp", "0.0.0.0:0")
	if err != nil {
		return nil, errors.Wrap(err, "resolving local address")
	}
	conn, err := osc.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, errors.Wrap(err, "dialing scsynth")
	}
	return &scsynthConn{conn: conn}, nil
}

// CreateVoice sends /s_new: synthdef name, node id, add action, target
// group, then name/value pairs. Controls go out in sorted order so the
// wire format is stable.
func (s *scsynthConn) CreateVoice(nodeID int32, controls map[string]float64) error {
	args := osc.Arguments{
		osc.String(synthDefName),
		osc.Int(nodeID),
		osc.Int(addToHead),
		osc.Int(defaultGroupID),
	}
	names := make([]string, 0, len(controls))
	for name := range controls {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args = append(args, osc.String(name), osc.Float(float32(controls[name])))
	}
	return s.conn.Send(osc.Message{Address: "/s_new", Arguments: args})
}

// SetControl sends /n_set for a single control.
func (s *scsynthConn) SetControl(nodeID int32, name string, value float64) error {
	return s.conn.Send(osc.Message{
		Address: "/n_set",
		Arguments: osc.Arguments{
			osc.Int(nodeID),
			osc.String(name),
			osc.Float(float32(value)),
		},
	})
}

func (s *scsynthConn) Close() error {
	return s.conn.Close()
}
