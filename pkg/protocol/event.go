package protocol

import (
	"fmt"

	"github.com/vango-dev/filtersync/pkg/querycodec"
)

// EventType identifies a client → server filter event.
type EventType uint8

const (
	EventCommit EventType = 0x01 // Merge Update into the filter state
	EventReset  EventType = 0x02 // Restore the initial filter state
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	switch et {
	case EventCommit:
		return "Commit"
	case EventReset:
		return "Reset"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(et))
	}
}

// Event is a decoded client event. Seq must increase strictly within a
// session; the first event may carry any value, including 0.
//
// Wire format:
//
//	[Seq: varint][Type: byte][Update: record]   (commit)
//	[Seq: varint][Type: byte]                   (reset)
type Event struct {
	Seq    uint64
	Type   EventType
	Update querycodec.Record
}

// NewCommitEvent creates a commit event carrying a partial update.
func NewCommitEvent(seq uint64, update querycodec.Record) *Event {
	return &Event{Seq: seq, Type: EventCommit, Update: update}
}

// NewResetEvent creates a reset event.
func NewResetEvent(seq uint64) *Event {
	return &Event{Seq: seq, Type: EventReset}
}

// EncodeEvent encodes an event to bytes.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteUvarint(ev.Seq)
	e.WriteByte(byte(ev.Type))
	if ev.Type == EventCommit {
		e.WriteRecord(ev.Update)
	}
	return e.Bytes()
}

// DecodeEvent decodes an event from bytes.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	ev := &Event{}

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	ev.Seq = seq

	typ, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ev.Type = EventType(typ)

	switch ev.Type {
	case EventCommit:
		if ev.Update, err = d.ReadRecord(); err != nil {
			return nil, err
		}
	case EventReset:
	default:
		return nil, fmt.Errorf("protocol: unknown event type %d", typ)
	}

	if !d.EOF() {
		return nil, ErrTrailingPayload
	}
	return ev, nil
}
