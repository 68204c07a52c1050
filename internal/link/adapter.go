package link

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"

	"github.com/panjf2000/gnet/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
	"github.com/rx178nwj/SoilMonitorRev2/internal/ring"
)

// frameHeaderSize is the multiplexing header: 1 endpoint byte + 4-byte
// little-endian payload length, prefixed to every message on the wire in
// place of BLE's implicit per-characteristic addressing.
const frameHeaderSize = 5

// Dispatcher is the subset of the protocol engine the link adapter drives
// on a command-endpoint write.
type Dispatcher interface {
	Dispatch(raw []byte) []byte
}

// connState tracks per-connection buffering and notify subscriptions. gnet
// hands back the same *gnet.Conn across OnTraffic calls for a connection,
// so this is stored in the conn's context.
type connState struct {
	buf           bytes.Buffer
	subscriptions map[Endpoint]bool
}

// Adapter is the gnet-based link transport. It owns no sensing/decision
// logic of its own; it multiplexes endpoint frames to the protocol engine
// and the ring store, and fans out notifications to subscribed connections.
type Adapter struct {
	gnet.BuiltinEventEngine

	dispatcher Dispatcher
	store      *ring.Store
	controller *Controller
	logger     *zap.SugaredLogger

	mu    sync.Mutex
	conns map[gnet.Conn]*connState

	maxBulkDays int

	engineMu sync.Mutex
	engine   gnet.Engine
}

// New constructs a link Adapter.
func New(dispatcher Dispatcher, store *ring.Store, controller *Controller, logger *zap.SugaredLogger) *Adapter {
	return &Adapter{
		dispatcher:  dispatcher,
		store:       store,
		controller:  controller,
		logger:      logger,
		conns:       make(map[gnet.Conn]*connState),
		maxBulkDays: 30,
	}
}

// OnBoot captures the engine handle (needed for graceful Shutdown) and
// logs start-up.
func (a *Adapter) OnBoot(eng gnet.Engine) gnet.Action {
	a.engineMu.Lock()
	a.engine = eng
	a.engineMu.Unlock()
	a.logger.Info("link adapter listening")
	return gnet.None
}

// Shutdown stops the gnet engine, closing all open connections.
func (a *Adapter) Shutdown(ctx context.Context) error {
	a.engineMu.Lock()
	eng := a.engine
	a.engineMu.Unlock()
	return eng.Stop(ctx)
}

// ListenAndServe runs the gnet event loop against listenAddr, e.g.
// "tcp://0.0.0.0:8765". It blocks until the engine stops.
func (a *Adapter) ListenAndServe(listenAddr string) error {
	return gnet.Run(a, listenAddr, gnet.WithMulticore(true))
}

// OnOpen registers a new connection's state.
func (a *Adapter) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	a.mu.Lock()
	a.conns[c] = &connState{subscriptions: make(map[Endpoint]bool)}
	a.mu.Unlock()
	a.controller.setConnected(true)
	return nil, gnet.None
}

// OnClose discards the closed connection's state.
func (a *Adapter) OnClose(c gnet.Conn, err error) gnet.Action {
	a.mu.Lock()
	delete(a.conns, c)
	remaining := len(a.conns)
	a.mu.Unlock()
	if remaining == 0 {
		a.controller.setConnected(false)
	}
	return gnet.None
}

// OnTraffic accumulates bytes for the connection and processes every
// complete multiplexed frame found.
func (a *Adapter) OnTraffic(c gnet.Conn) gnet.Action {
	data, err := c.Next(-1)
	if err != nil {
		return gnet.Close
	}

	a.mu.Lock()
	state, ok := a.conns[c]
	a.mu.Unlock()
	if !ok {
		return gnet.None
	}

	state.buf.Write(data)

	for {
		endpoint, payload, ok := nextFrame(&state.buf)
		if !ok {
			break
		}
		a.handleFrame(c, state, endpoint, payload)
	}

	return gnet.None
}

// nextFrame extracts one complete multiplexed frame from buf if available,
// advancing buf past it. Pulled out of OnTraffic as a pure function so the
// framing logic is testable without a live gnet.Conn.
func nextFrame(buf *bytes.Buffer) (Endpoint, []byte, bool) {
	raw := buf.Bytes()
	if len(raw) < frameHeaderSize {
		return 0, nil, false
	}
	endpoint := Endpoint(raw[0])
	length := binary.LittleEndian.Uint32(raw[1:5])
	if len(raw) < frameHeaderSize+int(length) {
		return 0, nil, false
	}
	payload := make([]byte, length)
	copy(payload, raw[frameHeaderSize:frameHeaderSize+int(length)])
	buf.Next(frameHeaderSize + int(length))
	return endpoint, payload, true
}

func (a *Adapter) handleFrame(c gnet.Conn, state *connState, endpoint Endpoint, payload []byte) {
	if !a.controller.Enabled() {
		return
	}
	switch endpoint {
	case EndpointCommand:
		resp := a.dispatcher.Dispatch(payload)
		if resp == nil {
			return // dropped while busy; no response to send
		}
		a.send(c, EndpointResponse, resp)

	case EndpointStoreStatus:
		// write-without-response subscribe toggle; reads are served
		// synchronously below via a zero-length "subscribe" convention.
		state.subscriptions[EndpointStoreStatus] = true
		stats := a.store.GetStats()
		a.send(c, EndpointStoreStatus, encodeStats(stats))

	case EndpointSample:
		state.subscriptions[EndpointSample] = true

	case EndpointResponse:
		state.subscriptions[EndpointResponse] = true

	case EndpointBulk:
		state.subscriptions[EndpointBulk] = true
		a.sendBulkHistoryExport(c)

	default:
		a.logger.Warnw("link frame on unknown endpoint", "endpoint", endpoint)
	}
}

// sendBulkHistoryExport implements the supplemented BulkHistoryExport
// operation: a write to EndpointBulk triggers a msgpack-encoded dump of
// the last N daily summaries, delivered as one notify frame.
func (a *Adapter) sendBulkHistoryExport(c gnet.Conn) {
	summaries := a.store.GetRecentDailySummaries(a.maxBulkDays)
	encoded, err := msgpack.Marshal(summaries)
	if err != nil {
		a.logger.Errorw("failed to encode bulk history export", "error", err)
		return
	}
	a.send(c, EndpointBulk, encoded)
}

// NotifySample is called by the sampling scheduler's sink wiring on every
// completed sample, fanning it out to connections subscribed to
// EndpointSample (§4.7 notifications: "emitted at each sampling tick when
// subscribed").
func (a *Adapter) NotifySample(sample model.Sample) {
	raw, err := sample.MarshalBinary()
	if err != nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for c, state := range a.conns {
		if state.subscriptions[EndpointSample] {
			a.send(c, EndpointSample, raw)
		}
	}
}

func (a *Adapter) send(c gnet.Conn, endpoint Endpoint, payload []byte) {
	frame := make([]byte, frameHeaderSize+len(payload))
	frame[0] = byte(endpoint)
	binary.LittleEndian.PutUint32(frame[1:5], uint32(len(payload)))
	copy(frame[frameHeaderSize:], payload)
	if err := c.AsyncWrite(frame, nil); err != nil {
		a.logger.Warnw("link write failed", "endpoint", endpoint, "error", err)
	}
}

func encodeStats(s ring.Stats) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(s.MinuteSlotsFilled))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(s.MinuteSlotsTotal))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(s.DailySlotsFilled))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(s.DailySlotsTotal))
	return buf
}
