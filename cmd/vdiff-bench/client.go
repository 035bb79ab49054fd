package main

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/vdiff/pkg/livetree"
	"github.com/vango-dev/vdiff/pkg/protocol"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

type benchCounters struct {
	treesSent     atomic.Uint64
	treesComplete atomic.Uint64
	treeBytes     atomic.Uint64
	patchBytes    atomic.Uint64
	patchFrames   atomic.Uint64
	patchesTotal  atomic.Uint64
}

type benchErrors struct {
	mountFailures       atomic.Uint64
	treeWriteFailures   atomic.Uint64
	frameDecodeFailures atomic.Uint64
	patchDecodeFailures atomic.Uint64
	serverErrorFrames   atomic.Uint64
	applyFailures       atomic.Uint64
	mirrorMismatches    atomic.Uint64
	timeouts            atomic.Uint64
	failedSessions      atomic.Uint64
}

// snapshot returns the non-zero failure counts by name.
func (e *benchErrors) snapshot() map[string]uint64 {
	out := make(map[string]uint64)
	for name, c := range map[string]*atomic.Uint64{
		"mount":           &e.mountFailures,
		"tree_write":      &e.treeWriteFailures,
		"frame_decode":    &e.frameDecodeFailures,
		"patch_decode":    &e.patchDecodeFailures,
		"server_error":    &e.serverErrorFrames,
		"apply":           &e.applyFailures,
		"mirror_mismatch": &e.mirrorMismatches,
		"timeout":         &e.timeouts,
	} {
		if n := c.Load(); n > 0 {
			out[name] = n
		}
	}
	return out
}

type patchOpCounts struct {
	counts [256]atomic.Uint64
}

func (p *patchOpCounts) add(op vdom.PatchOp) {
	p.counts[uint8(op)].Add(1)
}

func (p *patchOpCounts) snapshot() map[string]uint64 {
	out := make(map[string]uint64)
	for i := range p.counts {
		count := p.counts[i].Load()
		if count == 0 {
			continue
		}
		name := vdom.PatchOp(uint8(i)).String()
		if name == "Unknown" {
			name = fmt.Sprintf("0x%02x", i)
		}
		out[name] = count
	}
	return out
}

// workload is the page state of one session: an echo line and a keyed
// list of labels.
type workload struct {
	echo   string
	keys   []int
	labels map[int]string
}

func newWorkload(clientID, listSize int) *workload {
	f := gofakeit.New(uint64(clientID) + 1)
	w := &workload{
		keys:   make([]int, listSize),
		labels: make(map[int]string, listSize),
	}
	for i := range w.keys {
		w.keys[i] = i
		w.labels[i] = f.Word()
	}
	return w
}

// update sets the echo line and one label to token. Every other update
// also rotates the last item to the front, which the server sends as a
// keyed move.
func (w *workload) update(token string, seq uint64) {
	w.echo = token
	if len(w.keys) == 0 {
		return
	}
	w.labels[w.keys[tokenIndex(token, len(w.keys))]] = token
	if seq%2 == 0 {
		last := w.keys[len(w.keys)-1]
		copy(w.keys[1:], w.keys[:len(w.keys)-1])
		w.keys[0] = last
	}
}

func (w *workload) render() *vdom.Node {
	items := make([]any, 0, len(w.keys))
	for _, k := range w.keys {
		items = append(items, vdom.Li(vdom.Key(k), vdom.Text(w.labels[k])))
	}
	return vdom.Div(
		vdom.ID("app"),
		vdom.Div(vdom.ID("echo"), vdom.Text(w.echo)),
		vdom.Ul(items...),
	)
}

func tokenIndex(token string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(token))
	return int(h.Sum32() % uint32(n))
}

func makeToken(clientID int, seq uint64, payloadBytes int) string {
	if payloadBytes <= 0 {
		return ""
	}
	seed := (uint64(clientID) << 32) ^ seq
	base := strconv.FormatUint(seed, 36)
	if len(base) >= payloadBytes {
		return base[len(base)-payloadBytes:]
	}
	return base + strings.Repeat("x", payloadBytes-len(base))
}

// client is one benchmark session.
type client struct {
	id       int
	url      string
	cfg      benchConfig
	counters *benchCounters
	errs     *benchErrors
	ops      *patchOpCounts
	samples  chan<- time.Duration

	conn   *websocket.Conn
	mirror *livetree.Tree
}

func (c *client) run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.errs.mountFailures.Add(1)
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	c.conn = conn

	w := newWorkload(c.id, c.cfg.ListSize)
	if err := c.mount(w.render()); err != nil {
		c.errs.mountFailures.Add(1)
		return err
	}

	period := time.Duration(float64(time.Second) / c.cfg.RPS)
	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		seq++
		w.update(makeToken(c.id, seq, c.cfg.PayloadBytes), seq)
		next := w.render()

		start := time.Now()
		if err := c.step(next); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		rtt := time.Since(start)
		c.counters.treesComplete.Add(1)
		c.samples <- rtt

		if sleep := period - rtt; sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}
	}
}

// mount replaces the session tree and waits for the server's Ack.
func (c *client) mount(tree *vdom.Node) error {
	f := protocol.NewFrame(protocol.FrameTree, protocol.EncodeNode(tree))
	f.Flags = protocol.FlagReset
	if err := c.conn.WriteMessage(websocket.BinaryMessage, f.Encode()); err != nil {
		return fmt.Errorf("mount write: %w", err)
	}

	frame, _, err := c.readFrame()
	if err != nil {
		return fmt.Errorf("mount read: %w", err)
	}
	if frame.Type != protocol.FrameAck {
		return fmt.Errorf("mount: expected Ack, got %s", frame.Type)
	}
	c.mirror = livetree.Mount(tree)
	return nil
}

// step sends next, applies the returned script to the mirror and acks it.
func (c *client) step(next *vdom.Node) error {
	data := protocol.NewFrame(protocol.FrameTree, protocol.EncodeNode(next)).Encode()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		c.errs.treeWriteFailures.Add(1)
		return fmt.Errorf("tree write: %w", err)
	}
	c.counters.treesSent.Add(1)
	c.counters.treeBytes.Add(uint64(len(data)))

	pf, err := c.waitForPatches()
	if err != nil {
		return err
	}

	if err := c.mirror.Apply(pf.Patches); err != nil {
		c.errs.applyFailures.Add(1)
		return fmt.Errorf("apply seq %d: %w", pf.Seq, err)
	}
	if !vdom.Equal(c.mirror.Snapshot(), next) {
		c.errs.mirrorMismatches.Add(1)
		return fmt.Errorf("seq %d: mirror does not match the sent tree", pf.Seq)
	}

	ack := protocol.NewFrame(protocol.FrameAck, protocol.EncodeAck(&protocol.Ack{Seq: pf.Seq}))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, ack.Encode()); err != nil {
		return fmt.Errorf("ack write: %w", err)
	}
	return nil
}

func (c *client) waitForPatches() (*protocol.PatchesFrame, error) {
	for {
		frame, size, err := c.readFrame()
		if err != nil {
			if isTimeout(err) {
				c.errs.timeouts.Add(1)
			}
			return nil, err
		}

		switch frame.Type {
		case protocol.FramePatches:
			c.counters.patchFrames.Add(1)
			c.counters.patchBytes.Add(uint64(size))
			pf, err := protocol.DecodePatches(frame.Payload)
			if err != nil {
				c.errs.patchDecodeFailures.Add(1)
				return nil, err
			}
			for _, p := range pf.Patches {
				c.ops.add(p.Op)
			}
			c.counters.patchesTotal.Add(uint64(len(pf.Patches)))
			return pf, nil

		case protocol.FrameError:
			c.errs.serverErrorFrames.Add(1)
			if em, err := protocol.DecodeErrorMessage(frame.Payload); err == nil {
				return nil, em
			}
			return nil, errors.New("server error frame")
		}
	}
}

func (c *client) readFrame() (*protocol.Frame, int, error) {
	if c.cfg.EventTimeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.EventTimeout))
	}
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return nil, 0, err
	}
	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		c.errs.frameDecodeFailures.Add(1)
		return nil, 0, err
	}
	return frame, len(msg), nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
