package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-atlas/engine/shadow"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func TestTickLogsAfterInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithUpdateInterval(time.Second), WithClock(clock.now))

	clock.t = clock.t.Add(500 * time.Millisecond)
	if p.Tick() {
		t.Error("Expected no log before the interval elapsed")
	}
	clock.t = clock.t.Add(600 * time.Millisecond)
	if !p.Tick() {
		t.Error("Expected a log after the interval elapsed")
	}
}

func TestRecordShadowFrame(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now))

	p.RecordShadowFrame(shadow.FrameState{
		DirectionalAtlasSize:     2048,
		OtherAtlasSize:           1024,
		ReservedDirectionalCount: 1,
		ReservedOtherSlotCount:   7,
		BakedOnlyCount:           2,
		DrawCount:                11,
	})
	p.RecordShadowFrame(shadow.FrameState{ReservedDirectionalCount: 1, DrawCount: 4})

	clock.t = clock.t.Add(2 * time.Second)
	if !p.Tick() {
		t.Fatal("Expected a log after the interval elapsed")
	}

	got := p.LastShadowStats()
	want := ShadowStats{Frames: 2, DirectionalLights: 2, OtherSlots: 7, BakedOnly: 2, Draws: 15, MaxAtlasSize: 2048}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	clock.t = clock.t.Add(2 * time.Second)
	p.Tick()
	if p.LastShadowStats().Frames != 0 {
		t.Errorf("Expected counters reset after logging, got %+v", p.LastShadowStats())
	}
}
