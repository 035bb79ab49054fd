package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/protocol"
	"github.com/vango-dev/vdiff/pkg/snapshot"
	"github.com/vango-dev/vdiff/pkg/telemetry"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

// maxSessionIDLength bounds session IDs, which become storage keys.
const maxSessionIDLength = 128

// Session is one websocket connection streaming patch scripts for a
// session ID.
//
// The client sends Tree frames. The first tree of a session with no stored
// snapshot, and any tree flagged FlagReset, is mounted and acknowledged
// with an Ack carrying the current sequence. Every other tree is diffed
// against the previous one and answered with a Patches frame under the
// next sequence. The client acks each script it applied, or reports a
// fatal Error, after which the next tree is mounted again.
//
// Only the read loop writes data frames; heartbeat pings go through
// WriteControl, which is safe alongside it.
type Session struct {
	ID string

	conn    *websocket.Conn
	store   snapshot.Store
	differ  *telemetry.Differ
	metrics *telemetry.Metrics
	config  Config
	logger  *slog.Logger

	tree  *vdom.Node
	seq   uint64
	acked uint64

	closeOnce sync.Once
	done      chan struct{}
}

// HandleWebSocket upgrades the request and serves the session named by the
// {id} route parameter until the connection closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validSessionID(id) {
		writeError(w, http.StatusBadRequest, NewSessionError(id, "connect", ErrInvalidSessionID))
		return
	}
	if err := s.reserve(id); err != nil {
		status := http.StatusConflict
		if err == ErrServerClosed {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, NewSessionError(id, "connect", err))
		return
	}
	defer s.release(id)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied.
		s.logger.Debug("websocket upgrade failed", "session_id", id, "error", err)
		s.config.Metrics.RecordWebSocketError("upgrade")
		return
	}

	sess := s.newSession(id, conn)
	if !s.attach(sess) {
		sess.Close()
		return
	}

	s.config.Metrics.SessionOpened()
	defer s.config.Metrics.SessionClosed()

	sess.logger.Info("session connected")
	sess.Serve(context.WithoutCancel(r.Context()))
	sess.logger.Info("session disconnected", "seq", sess.seq, "acked", sess.acked)
}

func validSessionID(id string) bool {
	return id != "" && len(id) <= maxSessionIDLength
}

func (s *Server) newSession(id string, conn *websocket.Conn) *Session {
	return &Session{
		ID:      id,
		conn:    conn,
		store:   s.config.Store,
		differ:  s.config.Differ,
		metrics: s.config.Metrics,
		config:  s.config,
		logger:  s.logger.With("session_id", id),
		done:    make(chan struct{}),
	}
}

// Serve restores the session's snapshot and runs the read loop until the
// connection closes.
func (s *Session) Serve(ctx context.Context) {
	defer s.Close()

	tree, err := s.store.Load(ctx, s.ID)
	switch {
	case err == nil:
		s.tree = tree
		s.logger.Debug("snapshot restored")
	case errors.Is(err, errors.CodeSnapshotNotFound):
	default:
		s.logger.Error("snapshot load failed", "error", err)
		s.sendError(err, 0)
		return
	}

	s.conn.SetReadLimit(s.config.MaxMessageBytes)
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	go s.heartbeat()
	s.ReadLoop(ctx)
}

// ReadLoop reads frames until the connection is closed or a write fails.
// Malformed frames are reported to the client and skipped.
func (s *Session) ReadLoop(ctx context.Context) {
	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		mt, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.metrics.RecordWebSocketError("read")
			}
			return
		}

		if mt != websocket.BinaryMessage {
			err = s.sendError(errors.New(errors.CodeUnsupportedFrame).
				WithDetail("only binary messages carry frames"), s.seq)
		} else if frame, derr := protocol.DecodeFrame(msg); derr != nil {
			err = s.sendError(errors.New(errors.CodeMalformedPayload).Wrap(derr), s.seq)
		} else {
			s.metrics.RecordFrame(frame.Type.String(), "in")
			err = s.handleFrame(ctx, frame)
		}
		if err != nil {
			s.logger.Error("write error", "error", err)
			return
		}
	}
}

// handleFrame dispatches one frame. It returns an error only when the
// connection can no longer be written to.
func (s *Session) handleFrame(ctx context.Context, frame *protocol.Frame) error {
	switch frame.Type {
	case protocol.FrameTree:
		return s.handleTreeFrame(ctx, frame)

	case protocol.FrameAck:
		return s.handleAckFrame(frame.Payload)

	case protocol.FrameError:
		return s.handleErrorFrame(ctx, frame.Payload)

	default:
		return s.sendError(errors.New(errors.CodeUnsupportedFrame).
			WithDetailf("clients may not send %s frames", frame.Type), s.seq)
	}
}

func (s *Session) handleTreeFrame(ctx context.Context, frame *protocol.Frame) error {
	next, err := protocol.DecodeNode(frame.Payload)
	if err != nil {
		return s.sendError(errors.New(errors.CodeMalformedPayload).Wrap(err), s.seq)
	}

	if s.tree == nil || frame.Flags.Has(protocol.FlagReset) {
		if err := s.store.Save(ctx, s.ID, next); err != nil {
			return s.sendError(err, s.seq)
		}
		s.tree = next
		s.logger.Debug("tree mounted", "seq", s.seq)
		return s.send(protocol.FrameAck, protocol.EncodeAck(&protocol.Ack{Seq: s.seq}))
	}

	patches := s.differ.Diff(ctx, s.tree, next)
	if err := s.store.Save(ctx, s.ID, next); err != nil {
		return s.sendError(err, s.seq)
	}
	s.tree = next
	s.seq++
	s.logger.Debug("patches sent", "seq", s.seq, "patches", len(patches))
	return s.send(protocol.FramePatches, protocol.EncodePatches(&protocol.PatchesFrame{
		Seq:     s.seq,
		Patches: patches,
	}))
}

func (s *Session) handleAckFrame(payload []byte) error {
	ack, err := protocol.DecodeAck(payload)
	if err != nil {
		return s.sendError(errors.New(errors.CodeMalformedPayload).Wrap(err), s.seq)
	}
	if ack.Seq > s.seq {
		return s.sendError(errors.New(errors.CodeMalformedPayload).
			WithDetailf("ack for sequence %d, last sent %d", ack.Seq, s.seq), s.seq)
	}
	if ack.Seq > s.acked {
		s.acked = ack.Seq
	}
	return nil
}

// handleErrorFrame handles an error reported by the client. A fatal error
// means the client's tree no longer matches ours, so the snapshot is
// dropped and the next tree is mounted from scratch.
func (s *Session) handleErrorFrame(ctx context.Context, payload []byte) error {
	em, err := protocol.DecodeErrorMessage(payload)
	if err != nil {
		return s.sendError(errors.New(errors.CodeMalformedPayload).Wrap(err), s.seq)
	}
	s.logger.Warn("client error", "code", em.Code, "seq", em.Seq, "fatal", em.Fatal, "message", em.Message)
	s.metrics.RecordApplyError(errors.New(em.Code))
	if !em.IsFatal() {
		return nil
	}
	s.tree = nil
	if err := s.store.Delete(ctx, s.ID); err != nil {
		s.logger.Error("snapshot delete failed", "error", err)
	}
	return nil
}

func (s *Session) send(ft protocol.FrameType, payload []byte) error {
	frame := protocol.NewFrame(ft, payload)
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, frame.Encode()); err != nil {
		s.metrics.RecordWebSocketError("write")
		return NewSessionError(s.ID, "write "+ft.String(), err)
	}
	s.metrics.RecordFrame(ft.String(), "out")
	return nil
}

func (s *Session) sendError(err error, seq uint64) error {
	em := protocol.NewErrorMessage(err, seq)
	s.logger.Warn("session error", "code", em.Code, "error", err)
	return s.send(protocol.FrameError, protocol.EncodeErrorMessage(em))
}

// heartbeat pings the client until the session closes.
func (s *Session) heartbeat() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.metrics.RecordWebSocketError("ping")
				s.Close()
				return
			}
		}
	}
}

// Close closes the connection. It is safe to call more than once and from
// any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		s.conn.Close()
	})
}
