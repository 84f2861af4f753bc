//go:build linux

package rawcapture

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/picatz/packetgen/capture"
	"github.com/picatz/packetgen/linktype"
)

func newCollaborator() (capture.Collaborator, error) {
	return linuxCollaborator{}, nil
}

// linuxCollaborator opens capture sessions as raw AF_PACKET/SOCK_RAW
// sockets bound to a single interface, the thin wrapper over a host
// packet-capture mechanism spec.md §6 calls for. It captures and injects
// whole Ethernet frames; promiscuous mode is toggled through the socket's
// PACKET_MR_PROMISC membership (see setPromisc). filter is not interpreted here —
// capture.Collaborator leaves filter syntax to the backend, and this one
// has none, so every frame on the interface is delivered.
type linuxCollaborator struct{}

func (linuxCollaborator) Open(iface string, snaplen int, promisc bool, filter string) (capture.Session, error) {
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, fmt.Errorf("rawcapture: socket: %w", err)
	}

	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rawcapture: interface %s: %w", iface, err)
	}

	if promisc {
		if err := setPromisc(fd, ifi.Index, true); err != nil {
			unix.Close(fd)
			return nil, err
		}
	}

	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  ifi.Index,
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rawcapture: bind %s: %w", iface, err)
	}

	if snaplen <= 0 {
		snaplen = 65535
	}

	return &linuxSession{fd: fd, ifindex: ifi.Index, snaplen: snaplen, promisc: promisc}, nil
}

func (linuxCollaborator) DefaultIface() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("rawcapture: interfaces: %w", err)
	}
	for _, ifi := range ifaces {
		if ifi.Flags&net.FlagLoopback != 0 || ifi.Flags&net.FlagUp == 0 {
			continue
		}
		return ifi.Name, nil
	}
	return "", fmt.Errorf("rawcapture: no default interface found")
}

type linuxSession struct {
	fd      int
	ifindex int
	snaplen int
	promisc bool
	closed  bool
}

func (s *linuxSession) Next(timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		tv := unix.NsecToTimeval(timeout.Nanoseconds())
		if err := unix.SetsockoptTimeval(s.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
			return nil, fmt.Errorf("rawcapture: set timeout: %w", err)
		}
	}

	buf := make([]byte, s.snaplen)
	n, _, err := unix.Recvfrom(s.fd, buf, 0)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, capture.ErrTimeout
		}
		return nil, fmt.Errorf("rawcapture: recvfrom: %w", err)
	}
	return buf[:n], nil
}

func (s *linuxSession) Inject(b []byte) error {
	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  s.ifindex,
	}
	if err := unix.Sendto(s.fd, b, 0, sa); err != nil {
		return fmt.Errorf("rawcapture: sendto: %w", err)
	}
	return nil
}

func (s *linuxSession) LinkType() int { return linktype.Ethernet }

func (s *linuxSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.promisc {
		_ = setPromisc(s.fd, s.ifindex, false)
	}
	return unix.Close(s.fd)
}

// htons converts a 16-bit value from host to network byte order, needed
// because AF_PACKET protocol numbers are sent big-endian regardless of the
// host's native endian.
func htons(v int) uint16 {
	return uint16(v)<<8 | uint16(v)>>8
}

// setPromisc joins or leaves the interface's PACKET_MR_PROMISC multicast
// group, which is how promiscuous mode is toggled on an AF_PACKET socket
// without touching the interface's own IFF_PROMISC flag (and therefore
// without affecting any other socket sharing the interface).
func setPromisc(fd, ifindex int, enable bool) error {
	mreq := unix.PacketMreq{
		Ifindex: int32(ifindex),
		Type:    unix.PACKET_MR_PROMISC,
	}
	opt := unix.PACKET_ADD_MEMBERSHIP
	if !enable {
		opt = unix.PACKET_DROP_MEMBERSHIP
	}
	if err := unix.SetsockoptPacketMreq(fd, unix.SOL_PACKET, opt, &mreq); err != nil {
		return fmt.Errorf("rawcapture: set promisc: %w", err)
	}
	return nil
}
