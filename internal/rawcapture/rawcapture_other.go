//go:build !linux

package rawcapture

import "github.com/picatz/packetgen/capture"

func newCollaborator() (capture.Collaborator, error) {
	return nil, ErrUnsupported
}
