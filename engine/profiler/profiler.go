package profiler

import (
	"log"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-atlas/engine/shadow"
)

// ShadowStats accumulates shadow atlas counters over one profiler interval.
type ShadowStats struct {
	Frames            int
	DirectionalLights int
	OtherSlots        int
	BakedOnly         int
	Draws             int
	MaxAtlasSize      int
}

// Profiler tracks frame rate, memory and shadow atlas statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	now            func() time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	shadows     ShadowStats
	lastShadows ShadowStats
}

// ProfilerBuilderOption is a function that configures a Profiler during construction.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval is an option builder that sets how often stats are logged.
func WithUpdateInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// WithClock is an option builder that replaces time.Now.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// RecordShadowFrame adds one frame's shadow state to the current interval.
// Call it after Render and before Cleanup, while the reservations are still live.
//
// Parameters:
//   - st: the frame state reported by the shadow system
func (p *Profiler) RecordShadowFrame(st shadow.FrameState) {
	p.shadows.Frames++
	p.shadows.DirectionalLights += st.ReservedDirectionalCount
	p.shadows.OtherSlots += st.ReservedOtherSlotCount
	p.shadows.BakedOnly += st.BakedOnlyCount
	p.shadows.Draws += st.DrawCount
	p.shadows.MaxAtlasSize = max(p.shadows.MaxAtlasSize, st.DirectionalAtlasSize, st.OtherAtlasSize)
}

// LastShadowStats returns the shadow counters of the most recently logged interval.
func (p *Profiler) LastShadowStats() ShadowStats {
	return p.lastShadows
}

// Tick should be called once per frame to track frame timing.
// Logs FPS, heap usage, allocation rate, GC pauses and shadow counters when the
// update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var maxPauseUs uint64
	// PauseNs is a circular buffer of the last 256 pauses
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	for i := startIdx; i < gcCount; i++ {
		maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (max: %d µs)",
		fps, allocMB, allocRateMB, gcCount, maxPauseUs)

	if s := p.shadows; s.Frames > 0 {
		n := float64(s.Frames)
		log.Printf("[Profiler] Shadows/frame: %.1f directional | %.1f other slots | %.1f baked-only | %.1f draws | atlas: %d",
			float64(s.DirectionalLights)/n, float64(s.OtherSlots)/n, float64(s.BakedOnly)/n, float64(s.Draws)/n, s.MaxAtlasSize)
	}

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.lastShadows = p.shadows
	p.shadows = ShadowStats{}
	return true
}
