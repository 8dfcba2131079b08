// Package benchmark measures recognition pipeline throughput.
package benchmark

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/platenet"
)

var (
	iterations int
	frameW     int
	frameH     int
)

// Command creates the inference benchmark command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Run recognition pipeline benchmark",
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations < 1 {
				return fmt.Errorf("iterations must be positive, got %d", iterations)
			}
			return runBenchmark(settings)
		},
	}

	cmd.Flags().IntVarP(&iterations, "iterations", "n", 50, "number of frames to process")
	cmd.Flags().IntVar(&frameW, "width", 1280, "synthetic frame width")
	cmd.Flags().IntVar(&frameH, "height", 720, "synthetic frame height")
	return cmd
}

func runBenchmark(settings *conf.Settings) error {
	registry := platenet.NewRegistry(settings)
	defer registry.Close()

	pipeline, err := registry.Acquire(platenet.VariantVideo)
	if err != nil {
		return err
	}

	img := syntheticFrame(frameW, frameH)
	durations := make([]time.Duration, 0, iterations)

	// One warmup call so delegate initialization stays out of the numbers.
	if _, _, err := pipeline.Recognize(img); err != nil {
		return err
	}

	fmt.Printf("benchmarking %d frames at %dx%d\n", iterations, frameW, frameH)
	for i := 0; i < iterations; i++ {
		start := time.Now()
		if _, _, err := pipeline.Recognize(img); err != nil {
			return err
		}
		durations = append(durations, time.Since(start))
	}

	report(durations)
	return nil
}

func report(durations []time.Duration) {
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	avg := total / time.Duration(len(durations))
	p50 := durations[len(durations)/2]
	p95 := durations[len(durations)*95/100]

	fmt.Printf("avg %s, p50 %s, p95 %s, %.1f fps\n",
		avg.Round(time.Microsecond), p50.Round(time.Microsecond), p95.Round(time.Microsecond),
		1.0/avg.Seconds())
}

// syntheticFrame builds a noisy gray frame so the detector has realistic
// input statistics without depending on test assets.
func syntheticFrame(w, h int) *image.RGBA {
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(96 + rng.Intn(64))
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}
