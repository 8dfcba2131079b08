package analysis

import (
	"fmt"
	"image"
	_ "image/jpeg" // input decoding
	_ "image/png"  // input decoding
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/errors"
	"github.com/platewatch/platewatch-go/internal/logging"
	"github.com/platewatch/platewatch-go/internal/platenet"
)

// FileAnalysis recognizes plates in a single image file or in every image
// under a directory, using the offline threshold profile.
func FileAnalysis(settings *conf.Settings, path string) error {
	log := logging.ForService("analysis")

	registry := platenet.NewRegistry(settings)
	defer registry.Close()

	pipeline, err := registry.Acquire(platenet.VariantFile)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return errors.New(fmt.Errorf("analysis: cannot access input %q: %w", path, err)).
			Component("analysis").
			Category(errors.CategoryImageIO).
			Build()
	}

	files := []string{path}
	if info.IsDir() {
		files, err = listImageFiles(path)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return errors.Newf("analysis: no images found under %q", path).
				Component("analysis").
				Category(errors.CategoryImageIO).
				Build()
		}
	}

	start := time.Now()
	found := 0
	for _, file := range files {
		result, timings, err := analyzeImageFile(pipeline, file)
		switch {
		case err != nil:
			// A bad file is skipped, the batch continues.
			log.Error("analysis failed", "file", file, "error", err)
		case result == nil:
			fmt.Printf("%s: no plate detected\n", file)
		default:
			found++
			fmt.Printf("%s: %s (confidence %.2f)\n", file, result.FullPlate(), result.PlateBox.Confidence)
			if settings.Realtime.ProcessingTime {
				fmt.Printf("  detect %s, crop %s, classify %s, segment %s, total %s\n",
					timings.Detect, timings.Crop, timings.Classify, timings.Segment, timings.Total)
			}
		}
	}

	fmt.Printf("analyzed %d file(s), %d plate(s) found in %s\n", len(files), found, time.Since(start).Round(time.Millisecond))
	return nil
}

func analyzeImageFile(pipeline *platenet.PlateNet, path string) (*platenet.LicensePlateResult, platenet.StageTimings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, platenet.StageTimings{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, platenet.StageTimings{}, errors.New(fmt.Errorf("cannot decode image: %w", err)).
			Component("analysis").
			Category(errors.CategoryImageIO).
			Context("file", filepath.Base(path)).
			Build()
	}
	return pipeline.Recognize(img)
}

func listImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("analysis: cannot read directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
