package link

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/rx178nwj/SoilMonitorRev2/internal/ring"
)

func buildFrame(endpoint Endpoint, payload []byte) []byte {
	frame := make([]byte, frameHeaderSize+len(payload))
	frame[0] = byte(endpoint)
	binary.LittleEndian.PutUint32(frame[1:5], uint32(len(payload)))
	copy(frame[frameHeaderSize:], payload)
	return frame
}

func TestNextFrameReturnsFalseOnShortBuffer(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x01, 0x02})
	_, _, ok := nextFrame(buf)
	if ok {
		t.Fatalf("expected no frame from a short buffer")
	}
}

func TestNextFrameWaitsForFullPayload(t *testing.T) {
	frame := buildFrame(EndpointCommand, []byte("hello"))
	buf := bytes.NewBuffer(frame[:len(frame)-2])
	if _, _, ok := nextFrame(buf); ok {
		t.Fatalf("expected no frame until payload is complete")
	}
}

func TestNextFrameExtractsOneCompleteFrame(t *testing.T) {
	frame := buildFrame(EndpointCommand, []byte("hello"))
	buf := bytes.NewBuffer(frame)
	endpoint, payload, ok := nextFrame(buf)
	if !ok {
		t.Fatalf("expected a complete frame")
	}
	if endpoint != EndpointCommand {
		t.Fatalf("expected EndpointCommand, got %v", endpoint)
	}
	if string(payload) != "hello" {
		t.Fatalf("expected payload %q, got %q", "hello", payload)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected buffer fully drained, got %d bytes left", buf.Len())
	}
}

func TestNextFrameHandlesTwoFramesBackToBack(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	buf.Write(buildFrame(EndpointSample, []byte("a")))
	buf.Write(buildFrame(EndpointBulk, []byte("bb")))

	ep1, p1, ok := nextFrame(buf)
	if !ok || ep1 != EndpointSample || string(p1) != "a" {
		t.Fatalf("unexpected first frame: %v %q %v", ep1, p1, ok)
	}
	ep2, p2, ok := nextFrame(buf)
	if !ok || ep2 != EndpointBulk || string(p2) != "bb" {
		t.Fatalf("unexpected second frame: %v %q %v", ep2, p2, ok)
	}
}

func TestEncodeStatsRoundTripsFieldOrder(t *testing.T) {
	s := ring.New()
	stats := s.GetStats()
	buf := encodeStats(stats)
	if len(buf) != 16 {
		t.Fatalf("expected 16-byte stats encoding, got %d", len(buf))
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != uint32(stats.MinuteSlotsFilled) {
		t.Fatalf("minute slots filled mismatch")
	}
	if binary.LittleEndian.Uint32(buf[4:8]) != uint32(stats.MinuteSlotsTotal) {
		t.Fatalf("minute slots total mismatch")
	}
}

func TestDeviceNamePadsHardwareVersion(t *testing.T) {
	name := DeviceName(3, "AB12")
	if name != "PlantMonitor_03_AB12" {
		t.Fatalf("expected PlantMonitor_03_AB12, got %q", name)
	}
}

func TestDeviceNameDoubleDigitHardwareVersion(t *testing.T) {
	name := DeviceName(12, "FF00")
	if name != "PlantMonitor_12_FF00" {
		t.Fatalf("expected PlantMonitor_12_FF00, got %q", name)
	}
}
