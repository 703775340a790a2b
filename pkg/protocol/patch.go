package protocol

import "github.com/vango-dev/filtersync/pkg/querycodec"

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	// PatchURLReplace replaces the query component of the client's current
	// URL without adding a history entry (history.replaceState).
	PatchURLReplace PatchOp = 0x30

	// PatchState carries the full held filter state so the client can
	// re-render its filter controls.
	PatchState PatchOp = 0x31
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchURLReplace:
		return "URLReplace"
	case PatchState:
		return "State"
	default:
		return "Unknown"
	}
}

// Patch represents a single client-side update.
type Patch struct {
	Op    PatchOp
	Value string            // Raw query for URLReplace
	State querycodec.Record // Held state for State
}

// NewURLReplacePatch creates a URLReplace patch. rawQuery has no leading '?'.
func NewURLReplacePatch(rawQuery string) Patch {
	return Patch{Op: PatchURLReplace, Value: rawQuery}
}

// NewStatePatch creates a State patch.
func NewStatePatch(state querycodec.Record) Patch {
	return Patch{Op: PatchState, State: state}
}

// PatchesFrame represents a batch of patches with sequence number.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// EncodePatches encodes a patches frame to bytes.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		p := &pf.Patches[i]
		e.WriteByte(byte(p.Op))
		switch p.Op {
		case PatchURLReplace:
			e.WriteString(p.Value)
		case PatchState:
			e.WriteRecord(p.State)
		}
	}
	return e.Bytes()
}

// DecodePatches decodes a patches frame from bytes.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCount(MaxFieldCount)
	if err != nil {
		return nil, err
	}

	patches := make([]Patch, count)
	for i := range patches {
		op, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		patches[i].Op = PatchOp(op)

		switch patches[i].Op {
		case PatchURLReplace:
			patches[i].Value, err = d.ReadString()
		case PatchState:
			patches[i].State, err = d.ReadRecord()
		default:
			// Unknown patch op carries no payload we can skip safely.
			return nil, ErrInvalidFrameType
		}
		if err != nil {
			return nil, err
		}
	}

	return &PatchesFrame{Seq: seq, Patches: patches}, nil
}
