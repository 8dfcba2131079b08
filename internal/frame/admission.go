package frame

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/platewatch/platewatch-go/internal/errors"
	"github.com/platewatch/platewatch-go/internal/platenet"
	"golang.org/x/sync/semaphore"
)

const retainKey = "last-result"

// Recognizer is the strict single-call recognition contract the controller
// guards: never invoked concurrently with itself, one frame in flight.
type Recognizer interface {
	Recognize(img image.Image) (*platenet.LicensePlateResult, platenet.StageTimings, error)
}

// Outcome is the published view of one admitted frame.
type Outcome struct {
	Image  *image.RGBA
	Width  int
	Height int

	// Raw is this frame's own recognition result, nil when nothing was
	// detected. Reducers (stability tracker, identity stabilizer) must
	// consume Raw, never Published.
	Raw *platenet.LicensePlateResult

	// Published is the presentation view: equal to Raw, except that an
	// empty frame may re-report the previous non-nil result while it is
	// within the retention window.
	Published *platenet.LicensePlateResult

	Timings     platenet.StageTimings
	ConvertTime time.Duration
	Err         error // model invocation failure, surfaced for diagnostics

	FPS       float64
	Processed uint64
	Dropped   uint64
}

// Config holds the admission controller settings.
type Config struct {
	MinInterval     time.Duration // minimum pause after a frame finishes
	RetentionWindow time.Duration // how long Published may lag behind Raw
}

// Controller admits raw frames into the recognition pipeline. Drop policy:
// a new frame is dropped while the previous one is still processing, or
// when less than MinInterval has elapsed since the previous one finished.
// Conversion runs on its own worker goroutine; inference always runs on
// the single owning inference goroutine. There is no mid-flight
// cancellation; a started inference runs to completion.
type Controller struct {
	cfg     Config
	pn      Recognizer // touched only by the inference goroutine
	onFrame func(*Outcome)

	inflight  *semaphore.Weighted
	convertCh chan RawFrame
	inferCh   chan converted
	wg        sync.WaitGroup
	stopOnce  sync.Once

	lastFinishNanos atomic.Int64
	processed       atomic.Uint64
	dropped         atomic.Uint64
	fps             fpsWindow // inference goroutine only

	lastResult *gocache.Cache
}

type converted struct {
	frame       RawFrame
	img         *image.RGBA
	convertTime time.Duration
	err         error
}

// NewController validates cfg and builds a stopped controller. onFrame is
// invoked on the inference goroutine, once per admitted frame in strict
// frame order; it must not call back into the controller.
func NewController(pn Recognizer, cfg Config, onFrame func(*Outcome)) (*Controller, error) {
	if pn == nil {
		return nil, errors.ValidationError("frame: controller requires a recognition pipeline")
	}
	if cfg.MinInterval < 0 {
		return nil, errors.ValidationError("frame: MinInterval must not be negative, got %s", cfg.MinInterval)
	}
	if cfg.RetentionWindow < 0 {
		return nil, errors.ValidationError("frame: RetentionWindow must not be negative, got %s", cfg.RetentionWindow)
	}

	return &Controller{
		cfg:        cfg,
		pn:         pn,
		onFrame:    onFrame,
		inflight:   semaphore.NewWeighted(1),
		convertCh:  make(chan RawFrame, 1),
		inferCh:    make(chan converted, 1),
		lastResult: gocache.New(cfg.RetentionWindow, time.Minute),
	}, nil
}

// Start launches the conversion worker and the owning inference goroutine.
func (c *Controller) Start() {
	c.wg.Add(2)
	go c.convertLoop()
	go c.inferLoop()
}

// Stop drains in-flight work and stops both goroutines. The admission
// gate is held permanently first, so a Feed racing with Stop either
// completes through the pipeline or is dropped at the gate; it can never
// reach the closed channel. Stop is idempotent.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		// Waits out any frame between admission and finish.
		_ = c.inflight.Acquire(context.Background(), 1)
		close(c.convertCh)
		c.wg.Wait()
	})
}

// Feed offers one raw frame. It returns false when the frame was dropped
// by the busy gate or the rate gate; after Stop every frame is dropped at
// the busy gate. The frame must own its pixel bytes (see CopyPixels).
func (c *Controller) Feed(f RawFrame) bool {
	if !c.inflight.TryAcquire(1) {
		c.dropped.Add(1)
		return false
	}
	if last := c.lastFinishNanos.Load(); last != 0 {
		if time.Since(time.Unix(0, last)) < c.cfg.MinInterval {
			c.inflight.Release(1)
			c.dropped.Add(1)
			return false
		}
	}
	// The semaphore guarantees the channel slot is free.
	c.convertCh <- f
	return true
}

// Dropped returns the dropped frame count.
func (c *Controller) Dropped() uint64 { return c.dropped.Load() }

// Processed returns the processed frame count.
func (c *Controller) Processed() uint64 { return c.processed.Load() }

func (c *Controller) convertLoop() {
	defer c.wg.Done()
	defer close(c.inferCh)
	for f := range c.convertCh {
		start := time.Now()
		img, err := Convert(f)
		c.inferCh <- converted{
			frame:       f,
			img:         img,
			convertTime: time.Since(start),
			err:         err,
		}
	}
}

func (c *Controller) inferLoop() {
	defer c.wg.Done()
	log := getLogger()
	for cf := range c.inferCh {
		outcome := &Outcome{
			Image:       cf.img,
			ConvertTime: cf.convertTime,
		}
		if cf.img != nil {
			outcome.Width = cf.img.Bounds().Dx()
			outcome.Height = cf.img.Bounds().Dy()
		} else {
			outcome.Width = cf.frame.Width
			outcome.Height = cf.frame.Height
		}

		switch {
		case cf.err != nil:
			// Malformed frame: same as no detection downstream.
			log.Debug("frame conversion failed", "error", cf.err)
		default:
			raw, timings, err := c.pn.Recognize(cf.img)
			outcome.Raw = raw
			outcome.Timings = timings
			if err != nil {
				outcome.Err = err
				log.Error("recognition failed", "error", err)
			}
		}

		now := time.Now()
		c.lastFinishNanos.Store(now.UnixNano())
		c.fps.Add(now)
		outcome.Processed = c.processed.Add(1)
		outcome.Dropped = c.dropped.Load()
		outcome.FPS = c.fps.FPS()

		outcome.Published = c.retainedView(outcome)

		if c.onFrame != nil {
			c.onFrame(outcome)
		}
		c.inflight.Release(1)
	}
}

// retainedView applies the retention window to the published result. Only
// the published view is affected; reducers always see the raw result.
func (c *Controller) retainedView(o *Outcome) *platenet.LicensePlateResult {
	if o.Raw != nil {
		c.lastResult.Set(retainKey, o.Raw, gocache.DefaultExpiration)
		return o.Raw
	}
	if o.Err != nil {
		// Failures are surfaced as such, not papered over with stale results.
		return nil
	}
	if c.cfg.RetentionWindow <= 0 {
		// A zero TTL would mean never-expire in the cache.
		return nil
	}
	if v, ok := c.lastResult.Get(retainKey); ok {
		return v.(*platenet.LicensePlateResult)
	}
	return nil
}
