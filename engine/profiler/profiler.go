package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-instancer/common"
)

// FrameStats counts what the instance renderers did during one or more frames.
type FrameStats struct {
	// Instances is the number of instances visited.
	Instances int
	// Skipped counts instances with an invalid or hidden object type.
	Skipped int
	// OutOfRange counts instances beyond every LOD distance.
	OutOfRange int
	// Culled counts instances rejected by the frustum test.
	Culled int
	// Faded counts instances drawn inside a cross-fade band.
	Faded int
	// Draws is the number of draw commands submitted, one per submesh per LOD drawn.
	Draws int
}

// Add accumulates o into s.
func (s *FrameStats) Add(o FrameStats) {
	s.Instances += o.Instances
	s.Skipped += o.Skipped
	s.OutOfRange += o.OutOfRange
	s.Culled += o.Culled
	s.Faded += o.Faded
	s.Draws += o.Draws
}

// Reset zeroes every counter.
func (s *FrameStats) Reset() {
	*s = FrameStats{}
}

// Profiler tracks frame rate, memory and instance rendering statistics.
// Outputs stats to the package logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	frames FrameStats
	now    func() time.Time
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - interval: how often stats are logged, defaults to 1 second when <= 0
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
		now:            time.Now,
	}
}

// Record adds one frame's render statistics to the current interval.
//
// Parameters:
//   - s: the statistics to add
func (p *Profiler) Record(s FrameStats) {
	p.frames.Add(s)
}

// Stats returns the statistics accumulated since the last report.
func (p *Profiler) Stats() FrameStats {
	return p.frames
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, per-frame instance counts, heap usage, allocation rate, GC count/pause times.
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
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	perFrame := func(n int) float64 { return float64(n) / float64(p.frameCount) }
	common.Logger().Info("profiler",
		slog.Float64("fps", fps),
		slog.Float64("instances", perFrame(p.frames.Instances)),
		slog.Float64("draws", perFrame(p.frames.Draws)),
		slog.Float64("culled", perFrame(p.frames.Culled)),
		slog.Float64("faded", perFrame(p.frames.Faded)),
		slog.Float64("heap_mb", allocMB),
		slog.Float64("alloc_rate_mb_s", allocRateMB),
		slog.Uint64("gc", uint64(gcCount)),
		slog.Uint64("gc_last_us", lastPauseUs),
		slog.Uint64("gc_max_us", maxPauseUs),
	)

	p.frameCount = 0
	p.frames.Reset()
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
