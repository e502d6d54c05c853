package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/Carmen-Shannon/oxy-instancer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-instancer/engine/scene"
)

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	// quitChannel is replaced at the start of every Run; quitClosed guards the single close.
	quitChannel chan struct{}
	quitClosed  bool

	profiler         *profiler.Profiler
	profilerInterval time.Duration
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	scenes map[int]scene.Scene
}

// Engine runs a set of scenes at a fixed tick rate without a window. Each tick advances every
// active scene in ascending key order, which drives animation, reference sync and draw
// submission, then calls the tick callback.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Profiler returns the engine profiler. Render counters are recorded into it every tick
	// whether or not profiling output is enabled.
	Profiler() *profiler.Profiler

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// TickRate returns the current tick interval.
	TickRate() time.Duration

	// SetTickCallback registers the function called after the scenes each engine tick.
	// Use this for input, brush application and other per-frame logic.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// AddScene registers a scene at the given key.
	// Scenes are ticked in ascending key order.
	//
	// Parameters:
	//   - key: the key determining tick order (lower ticks first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given key.
	//
	// Parameters:
	//   - key: the key of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the key of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Step advances every active scene once with the given delta and runs the tick callback.
	// Run calls it from its ticker; it can also be called directly to drive the engine manually.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	//
	// Returns:
	//   - error: non-nil if a scene or the callback panicked
	Step(deltaTime float32) error

	// Run ticks the engine until ctx is done, Quit is called or a tick panics. Blocks. Once it
	// returns the engine can be run again; a Quit issued while not running does not carry over.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: the tick error that stopped the loop, or nil
	Run(ctx context.Context) error

	// Quit signals the run loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:               &sync.Mutex{},
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		scenes:           make(map[int]scene.Scene),
		running:          false,
		wg:               sync.WaitGroup{},
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}
	e.profiler = profiler.NewProfiler(e.profilerInterval)
	return e
}

func (e *engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("engine: already running")
	}
	e.running = true
	rate := e.engineTickRate
	e.quitChannel = make(chan struct{})
	e.quitClosed = false
	quit := e.quitChannel
	e.mu.Unlock()

	common.Logger().Info("engine started", slog.Duration("tick_rate", rate))

	errs := make(chan error, 1)
	e.wg.Add(2)
	go e.handleEngine(rate, quit, errs)
	go e.handleQuit(ctx, quit)
	e.wg.Wait()

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	common.Logger().Info("engine stopped")

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

// Quit signals all engine goroutines to stop.
// Safe to call multiple times; only the first call per run closes the quit channel.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the current quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.quitClosed {
		close(e.quitChannel)
		e.quitClosed = true
	}
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Listens for dynamic rate changes via tickRateChannel. Exits when the quit channel is closed
// or a tick fails.
func (e *engine) handleEngine(rate time.Duration, quit <-chan struct{}, errs chan<- error) {
	defer e.wg.Done()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if err := e.Step(dt); err != nil {
				errs <- err
				e.signalQuit()
				return
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		}
	}
}

// handleQuit blocks until ctx is done or the quit channel is closed.
func (e *engine) handleQuit(ctx context.Context, quit <-chan struct{}) {
	defer e.wg.Done()
	select {
	case <-ctx.Done():
		e.signalQuit()
	case <-quit:
	}
}

// Step recovers from panics inside scenes and the callback so a bad frame stops the loop
// instead of crashing the process.
func (e *engine) Step(deltaTime float32) (err error) {
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("engine tick recovered from panic", slog.Any("panic", r))
			err = fmt.Errorf("engine: tick panicked: %v", r)
		}
	}()

	e.mu.Lock()
	active := e.activeScenes()
	callback := e.tickCallback
	profiling := e.profilingEnabled
	e.mu.Unlock()

	for _, s := range active {
		e.profiler.Record(s.Tick(deltaTime))
	}

	if callback != nil {
		callback(deltaTime)
	}

	if profiling {
		e.profiler.Tick()
	}
	return nil
}

// activeScenes must be called with the lock held.
func (e *engine) activeScenes() []scene.Scene {
	active := make([]scene.Scene, 0, len(e.scenes))
	for _, k := range common.SortedKeys(e.scenes) {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.engineTickRate = newRate
	if !e.running {
		return
	}

	// Non-blocking send - if channel is full, replace the pending value
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) TickRate() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engineTickRate
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) AddScene(key int, s scene.Scene) {
	if s == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
