package protocol

import (
	"errors"
	"io"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		frame   Frame
		wantLen int // expected total length including header
	}{
		{"empty_payload", Frame{Type: FrameEvent, Payload: []byte{}}, FrameHeaderSize},
		{"with_payload", Frame{Type: FramePatches, Payload: []byte{0x01, 0x02, 0x03}}, FrameHeaderSize + 3},
		{"handshake", Frame{Type: FrameHandshake, Payload: []byte{0x01, 0x00, 0x00, 0x00}}, FrameHeaderSize + 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := tc.frame.Encode()
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if len(encoded) != tc.wantLen {
				t.Errorf("Encode() length = %d, want %d", len(encoded), tc.wantLen)
			}

			decoded, err := DecodeFrame(encoded)
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if decoded.Type != tc.frame.Type {
				t.Errorf("Type = %v, want %v", decoded.Type, tc.frame.Type)
			}
			if string(decoded.Payload) != string(tc.frame.Payload) {
				t.Errorf("Payload = %v, want %v", decoded.Payload, tc.frame.Payload)
			}
		})
	}
}

func TestFrameErrors(t *testing.T) {
	if _, err := DecodeFrame([]byte{0x01, 0x00}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short header: got %v, want ErrUnexpectedEOF", err)
	}
	if _, err := DecodeFrame([]byte{0x01, 0x00, 0x00, 0x05, 0x01}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short payload: got %v, want ErrUnexpectedEOF", err)
	}
	if _, err := DecodeFrame([]byte{0x7F, 0x00, 0x00, 0x00}); !errors.Is(err, ErrInvalidFrameType) {
		t.Errorf("unknown type: got %v, want ErrInvalidFrameType", err)
	}
	if _, err := NewFrame(FrameEvent, make([]byte, MaxPayloadSize+1)).Encode(); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("oversized payload: got %v, want ErrFrameTooLarge", err)
	}
}

func TestFrameTypeString(t *testing.T) {
	tests := map[FrameType]string{
		FrameHandshake:  "Handshake",
		FrameEvent:      "Event",
		FramePatches:    "Patches",
		FrameError:      "Error",
		FrameType(0x42): "Unknown",
	}
	for ft, want := range tests {
		if got := ft.String(); got != want {
			t.Errorf("FrameType(%d).String() = %q, want %q", ft, got, want)
		}
	}
}
