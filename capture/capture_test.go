package capture_test

import (
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/picatz/packetgen/capture"
	"github.com/picatz/packetgen/capture/capturemock"
	"github.com/picatz/packetgen/linktype"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOpenWrapsCollaboratorError(t *testing.T) {
	ctrl := gomock.NewController(t)

	c := capturemock.NewMockCollaborator(ctrl)
	c.EXPECT().
		Open("eth0", 65535, true, "").
		Return(nil, capture.ErrTimeout)

	_, err := capture.Open(c, "eth0", 65535, true, "")
	if err == nil {
		t.Fatal("capture.Open: expected error, got nil")
	}
}

func TestSessionNextDeliversFrame(t *testing.T) {
	ctrl := gomock.NewController(t)

	sess := capturemock.NewMockSession(ctrl)
	frame := []byte{0xAA, 0xBB}
	sess.EXPECT().Next(10 * time.Millisecond).Return(frame, nil)
	sess.EXPECT().LinkType().Return(linktype.Ethernet)
	sess.EXPECT().Close().Return(nil)

	got, err := sess.Next(10 * time.Millisecond)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(got) != string(frame) {
		t.Fatalf("Next: got %x, want %x", got, frame)
	}
	if sess.LinkType() != linktype.Ethernet {
		t.Fatalf("LinkType: got %d, want %d", sess.LinkType(), linktype.Ethernet)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
