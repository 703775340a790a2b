// Package protocol implements the binary wire protocol between a filter
// session on the server and the thin client that owns the address bar.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHandshake (0x00): ClientHello (path + query) / ServerHello (state)
//   - FrameEvent (0x01): Client → Server commit and reset events
//   - FramePatches (0x02): Server → Client URL replace and state patches
//   - FrameError (0x05): Error message
//
// # Encoding
//
//   - Varint: Compact encoding for counts and sequence numbers
//   - ZigZag: Signed integers encoded as unsigned varints
//   - Length-prefixed: Strings prefixed with varint length
//   - Records: field count followed by key and tagged value per field
//
// # Session Flow
//
//	client                              server
//	  │── Handshake(ClientHello) ──────────▶│  mount engine against path?query
//	  │◀──────── Handshake(ServerHello) ────│  reconciled state
//	  │◀──────── Patches[URLReplace] ───────│  only when the query was seeded
//	  │── Event(Commit{page: 2}) ──────────▶│
//	  │◀──── Patches[URLReplace, State] ────│
package protocol
