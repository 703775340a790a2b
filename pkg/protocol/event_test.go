package protocol

import (
	"errors"
	"testing"

	"github.com/vango-dev/filtersync/pkg/querycodec"
)

func TestEventEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		event *Event
	}{
		{"commit", NewCommitEvent(7, querycodec.NewRecord(querycodec.F("page", querycodec.Int(2))))},
		{"commit_empty", NewCommitEvent(8, querycodec.Record{})},
		{"reset", NewResetEvent(9)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeEvent(EncodeEvent(tc.event))
			if err != nil {
				t.Fatalf("DecodeEvent() error = %v", err)
			}
			if got.Seq != tc.event.Seq || got.Type != tc.event.Type {
				t.Errorf("DecodeEvent() = %+v, want %+v", got, tc.event)
			}
			if !got.Update.Equal(tc.event.Update) {
				t.Errorf("Update = %v, want %v", got.Update, tc.event.Update)
			}
		})
	}
}

func TestDecodeEventErrors(t *testing.T) {
	if _, err := DecodeEvent([]byte{0x01, 0x7F}); err == nil {
		t.Error("unknown event type: expected error")
	}
	if _, err := DecodeEvent([]byte{0x01, byte(EventReset), 0x00}); !errors.Is(err, ErrTrailingPayload) {
		t.Errorf("trailing bytes: got %v", err)
	}
	if _, err := DecodeEvent(nil); err == nil {
		t.Error("empty payload: expected error")
	}
}

func TestEventTypeString(t *testing.T) {
	if EventCommit.String() != "Commit" || EventReset.String() != "Reset" {
		t.Errorf("unexpected names: %s %s", EventCommit, EventReset)
	}
	if got := EventType(9).String(); got != "EventType(9)" {
		t.Errorf("unknown: got %s", got)
	}
}
