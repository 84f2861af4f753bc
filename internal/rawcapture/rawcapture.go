// Package rawcapture backs capture.Collaborator on platforms this module
// has a real OS-level capture mechanism for. New returns the platform's
// Collaborator, or an error on platforms with none.
package rawcapture

import (
	"errors"

	"github.com/picatz/packetgen/capture"
)

// ErrUnsupported is returned by New on a platform with no rawcapture
// backend compiled in.
var ErrUnsupported = errors.New("rawcapture: unsupported platform")

// New returns the platform-appropriate capture.Collaborator. On Linux this
// opens AF_PACKET/SOCK_RAW sockets directly (see rawcapture_linux.go); on
// every other platform it returns ErrUnsupported, since this module ships
// only the one backend spec.md §6 calls for as a worked example, not a
// cross-platform capture library.
func New() (capture.Collaborator, error) {
	return newCollaborator()
}
