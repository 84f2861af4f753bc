// Package capture defines the thin external collaborator interface spec.md
// §6 requires for live packet capture and injection: the core depends only
// on this interface, never on a concrete OS capture mechanism, so
// packet.Parse can be driven by live traffic the same way it's driven by a
// PCAP-NG file's stored payloads.
//
//go:generate go tool mockgen -destination=capturemock/mock_capture.go -package=capturemock github.com/picatz/packetgen/capture Collaborator,Session
package capture

import (
	"errors"
	"time"

	"braces.dev/errtrace"
)

// ErrTimeout is returned by Session.Next when no packet arrived within the
// requested timeout. It is not a failure of the session itself.
var ErrTimeout = errors.New("capture: timeout")

// Collaborator opens capture sessions on a named interface. A real
// implementation wraps a host packet-capture library (libpcap, AF_PACKET,
// NDIS, …); see internal/rawcapture for the one backend this module ships.
type Collaborator interface {
	// Open starts a capture session on iface, bounding each captured frame
	// to snaplen bytes, optionally in promiscuous mode, optionally
	// restricted by a capture filter expression. The concrete filter
	// syntax is the collaborator's concern, not the core's.
	Open(iface string, snaplen int, promisc bool, filter string) (Session, error)

	// DefaultIface returns the name of the host's default capture
	// interface, for callers that don't want to enumerate interfaces
	// themselves.
	DefaultIface() (string, error)
}

// Session is a single open capture/injection handle returned by
// Collaborator.Open. Packets obtained from Next are fed to packet.Parse
// using the session's LinkType.
type Session interface {
	// Next blocks for up to timeout for the next captured frame. It
	// returns ErrTimeout (wrapped) if none arrived in time.
	Next(timeout time.Duration) ([]byte, error)

	// Inject transmits b on the session's interface unchanged.
	Inject(b []byte) error

	// LinkType is the PCAP/PCAP-NG link-type number (see the linktype
	// package) framing every byte slice this session produces.
	LinkType() int

	// Close releases the session's underlying handle. Close is safe to
	// call more than once.
	Close() error
}

// Open is a convenience wrapper that calls c.Open and wraps any returned
// error with call-site context via errtrace, per this module's error
// handling convention (see errors.go).
func Open(c Collaborator, iface string, snaplen int, promisc bool, filter string) (Session, error) {
	sess, err := c.Open(iface, snaplen, promisc, filter)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return sess, nil
}
