package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ferrors "github.com/vango-dev/filtersync/internal/errors"
	"github.com/vango-dev/filtersync/pkg/filterstate"
	"github.com/vango-dev/filtersync/pkg/location"
	"github.com/vango-dev/filtersync/pkg/protocol"
	"github.com/vango-dev/filtersync/pkg/querycodec"
)

// Session is one connected client and the filter engine bound to its
// address bar.
type Session struct {
	ID string

	conn   *websocket.Conn
	nav    *location.Navigator
	engine *filterstate.Engine[querycodec.Record]
	config *Config
	tracer trace.Tracer
	logger *slog.Logger

	// mu serializes writes to conn and guards pending.
	mu      sync.Mutex
	pending []protocol.Patch
	sendSeq uint64
	lastSeq uint64
	seenSeq bool

	closed    atomic.Bool
	closeOnce sync.Once
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// newSession binds an engine to the URL reported in hello. The engine is not
// mounted yet.
func newSession(conn *websocket.Conn, hello *protocol.ClientHello, cfg *Config, tracer trace.Tracer) (*Session, error) {
	s := &Session{
		ID:     generateSessionID(),
		conn:   conn,
		config: cfg,
		tracer: tracer,
	}
	s.logger = cfg.Logger.With("session_id", s.ID)

	start := location.URL{
		Path:     normalizePath(hello.Path),
		RawQuery: strings.TrimPrefix(hello.Query, "?"),
	}
	s.nav = location.NewNavigator(start, s.queuePatch)

	opts := []filterstate.Option{filterstate.WithLogger(s.logger)}
	if cfg.Metrics != nil {
		opts = append(opts, filterstate.WithObserver(cfg.Metrics))
	}
	eng, err := filterstate.New(s.nav, cfg.Defaults.Clone(), opts...)
	if err != nil {
		return nil, err
	}
	s.engine = eng
	return s, nil
}

func (s *Session) queuePatch(p protocol.Patch) {
	s.mu.Lock()
	s.pending = append(s.pending, p)
	s.mu.Unlock()
}

// Start mounts the engine and sends the ServerHello, followed by the URL
// patch when the address bar had to be seeded.
func (s *Session) Start() error {
	state := s.engine.Mount()
	url := s.nav.Read()
	s.logger.Info("session started", "path", url.Path, "query", url.RawQuery)

	hello := &protocol.ServerHello{
		Status:    protocol.HandshakeOK,
		SessionID: s.ID,
		State:     state,
	}
	if err := s.send(protocol.FrameHandshake, protocol.EncodeServerHello(hello)); err != nil {
		return err
	}
	return s.flush(false)
}

// ReadLoop reads event frames until the connection closes.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.reject(protocol.ErrInvalidFrame, err)
			continue
		}
		if frame.Type != protocol.FrameEvent {
			s.reject(protocol.ErrInvalidFrame, fmt.Errorf("unexpected %s frame", frame.Type))
			continue
		}

		ev, err := protocol.DecodeEvent(frame.Payload)
		if err != nil {
			s.reject(protocol.ErrInvalidEvent, err)
			continue
		}
		s.handleEvent(ev)
	}
}

// handleEvent applies one client event and answers with the URL replace
// and the new held state.
func (s *Session) handleEvent(ev *protocol.Event) {
	start := time.Now()
	url := s.nav.Read()
	_, span := s.tracer.Start(context.Background(), "filtersync."+ev.Type.String(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("filtersync.session_id", s.ID),
			attribute.String("filtersync.path", url.Path),
			attribute.Int64("filtersync.event_seq", int64(ev.Seq)),
			attribute.Int("filtersync.fields", ev.Update.Len()),
		),
	)
	defer span.End()

	err := s.apply(ev)
	if err == nil {
		err = s.flush(true)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.String("filtersync.query", s.engine.Query()))
		span.SetStatus(codes.Ok, "")
	}

	if s.config.Metrics != nil {
		s.config.Metrics.RecordEvent(strings.ToLower(ev.Type.String()), time.Since(start), err)
	}
}

func (s *Session) apply(ev *protocol.Event) error {
	s.mu.Lock()
	if s.seenSeq && ev.Seq <= s.lastSeq {
		last := s.lastSeq
		s.mu.Unlock()
		err := fmt.Errorf("event seq %d not after %d", ev.Seq, last)
		s.reject(protocol.ErrInvalidEvent, err)
		return err
	}
	s.lastSeq = ev.Seq
	s.seenSeq = true
	s.mu.Unlock()

	switch ev.Type {
	case protocol.EventCommit:
		s.engine.Commit(ev.Update)
	case protocol.EventReset:
		s.engine.Reset(nil)
	}
	s.logger.Debug("event applied", "type", ev.Type, "seq", ev.Seq, "query", s.engine.Query())
	return nil
}

// flush sends queued patches, followed by a state patch when withState is
// set. Nothing is sent when there is nothing to say.
func (s *Session) flush(withState bool) error {
	s.mu.Lock()
	patches := s.pending
	s.pending = nil
	s.mu.Unlock()

	if withState {
		patches = append(patches, protocol.NewStatePatch(s.engine.Record()))
	}
	if len(patches) == 0 {
		return nil
	}

	s.mu.Lock()
	s.sendSeq++
	pf := &protocol.PatchesFrame{Seq: s.sendSeq, Patches: patches}
	s.mu.Unlock()

	if err := s.send(protocol.FramePatches, protocol.EncodePatches(pf)); err != nil {
		return err
	}
	if s.config.Metrics != nil {
		s.config.Metrics.RecordPatches(len(patches))
	}
	return nil
}

// reject logs a protocol violation and tells the client, keeping the
// session open.
func (s *Session) reject(code protocol.ErrorCode, cause error) {
	s.logger.Warn(ferrors.New(ferrors.CodeProtocolViolation).FormatCompact(),
		"code", code.String(), "cause", cause)
	if s.config.Metrics != nil {
		s.config.Metrics.RecordProtocolError(code.String())
	}
	em := protocol.NewError(code, cause.Error())
	if err := s.send(protocol.FrameError, protocol.EncodeErrorMessage(em)); err != nil {
		s.logger.Debug("error frame not sent", "error", err)
	}
}

func (s *Session) send(ft protocol.FrameType, payload []byte) error {
	data, err := protocol.NewFrame(ft, payload).Encode()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return websocket.ErrCloseSent
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		s.logger.Error("write error", "error", err)
		return err
	}
	return nil
}

// Engine returns the session's filter engine.
func (s *Session) Engine() *filterstate.Engine[querycodec.Record] {
	return s.engine
}

// URL returns the client's current URL as tracked by the session.
func (s *Session) URL() location.URL {
	return s.nav.Read()
}

// Close closes the connection. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.conn.Close()
		s.logger.Info("session closed")
	})
}
