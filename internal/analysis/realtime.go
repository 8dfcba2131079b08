// Package analysis wires the recognition pipeline, admission controller
// and per-frame reducers into the realtime and file analysis modes.
package analysis

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/platewatch/platewatch-go/internal/analysis/processor"
	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/frame"
	"github.com/platewatch/platewatch-go/internal/logging"
	"github.com/platewatch/platewatch-go/internal/notification"
	"github.com/platewatch/platewatch-go/internal/observability"
	"github.com/platewatch/platewatch-go/internal/platenet"
)

// RealtimeAnalysis runs the live scanning loop against the given frame
// source until an interrupt arrives.
func RealtimeAnalysis(settings *conf.Settings, source frame.Source) error {
	log := logging.ForService("analysis")

	registry := platenet.NewRegistry(settings)
	defer registry.Close()

	videoPipeline, err := registry.Acquire(platenet.VariantVideo)
	if err != nil {
		return err
	}
	capturePipeline, err := registry.Acquire(platenet.VariantCapture)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	if settings.Realtime.Telemetry.Enabled {
		go metrics.Serve(settings.Realtime.Telemetry.Listen)
	}

	stabilizer, err := processor.NewPlateStabilizer(settings.Realtime.Stabilizer, notification.Multi{
		notification.NewLogNotifier(),
		counterNotifier{metrics},
	})
	if err != nil {
		return err
	}

	// The capture handler runs asynchronously; the tracker itself is fed
	// from the inference goroutine, so both go through one mutex.
	var trackerMu sync.Mutex
	captureCh := make(chan processor.CapturedFrame, 1)
	tracker, err := processor.NewStabilityTracker(settings.Realtime.Capture, func(cf processor.CapturedFrame) {
		metrics.Captures.Inc()
		captureCh <- cf
	})
	if err != nil {
		return err
	}

	controller, err := frame.NewController(videoPipeline, frame.Config{
		MinInterval:     settings.Realtime.MinInterval,
		RetentionWindow: settings.Realtime.RetentionWindow,
	}, func(o *frame.Outcome) {
		// Reducers always see the raw per-frame result, never the
		// retention-adjusted published view.
		var box *platenet.DetectionBox
		if o.Raw != nil {
			box = o.Raw.PlateBox
		}
		trackerMu.Lock()
		progress := tracker.Feed(box, o.Image, o.Width, o.Height)
		trackerMu.Unlock()
		stabilized := stabilizer.Observe(o.Raw)

		metrics.ObserveFrame(o.Timings.Total, o.FPS)

		if settings.Realtime.ProcessingTime {
			log.Info("frame processed",
				"detect_ms", o.Timings.Detect.Milliseconds(),
				"crop_ms", o.Timings.Crop.Milliseconds(),
				"classify_ms", o.Timings.Classify.Milliseconds(),
				"segment_ms", o.Timings.Segment.Milliseconds(),
				"total_ms", o.Timings.Total.Milliseconds(),
				"fps", o.FPS)
		}
		if stabilized != nil && o.Raw != nil {
			log.Debug("plate observed",
				"plate", stabilized.Raw,
				"stability", stabilized.Stability.String(),
				"frames", stabilized.ConsecutiveFrames,
				"stable_count", progress.StableCount,
				"required", progress.RequiredCount)
		}
	})
	if err != nil {
		return err
	}
	controller.Start()

	// One-shot high-accuracy pass on each captured frame; the tracker
	// stays latched until the pass finishes.
	captureDone := make(chan struct{})
	go func() {
		defer close(captureDone)
		for cf := range captureCh {
			result, timings, err := capturePipeline.Recognize(cf.Image)
			switch {
			case err != nil:
				log.Error("capture recognition failed", "error", err)
			case result == nil:
				log.Warn("captured frame yielded no plate on the high-accuracy pass",
					"candidate_confidence", cf.Confidence)
			default:
				log.Info("plate captured",
					"plate", result.FullPlate(),
					"confidence", cf.Confidence,
					"total_ms", timings.Total.Milliseconds())
			}
			trackerMu.Lock()
			tracker.Restart()
			trackerMu.Unlock()
		}
	}()

	if err := source.Start(func(f frame.RawFrame) {
		// Pixel buffers from the source are only valid during the
		// callback; copy before handing off.
		if !controller.Feed(frame.CopyPixels(f)) {
			metrics.FramesDropped.Inc()
		}
	}); err != nil {
		controller.Stop()
		close(captureCh)
		<-captureDone
		return err
	}

	log.Info("realtime analysis started",
		"min_interval", settings.Realtime.MinInterval,
		"required_stable_frames", settings.Realtime.Capture.RequiredStableFrames)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println() // keep the ^C off the last log line

	if err := source.Stop(); err != nil {
		log.Warn("frame source stop failed", "error", err)
	}
	controller.Stop()
	close(captureCh)
	<-captureDone

	log.Info("realtime analysis stopped",
		"processed", controller.Processed(),
		"dropped", controller.Dropped(),
		"confirmed", len(stabilizer.History()))
	return nil
}

// counterNotifier bumps the confirmation metric alongside the user-facing
// notifier.
type counterNotifier struct {
	metrics *observability.Metrics
}

func (c counterNotifier) PlateConfirmed(string, float64) {
	c.metrics.Confirmations.Inc()
}
