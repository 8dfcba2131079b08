package frame

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // frame decoding
	_ "image/png"  // frame decoding
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/platewatch/platewatch-go/internal/errors"
)

// ReplaySource pushes still images from a directory as a synthetic camera
// feed at a fixed rate. It stands in for a device camera during
// development and offline evaluation.
type ReplaySource struct {
	dir      string
	interval time.Duration
	loop     bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewReplaySource creates a source replaying the images under dir every
// interval, restarting from the first image when loop is set.
func NewReplaySource(dir string, interval time.Duration, loop bool) (*ReplaySource, error) {
	if interval <= 0 {
		return nil, errors.ValidationError("frame: replay interval must be positive, got %s", interval)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf("frame: replay source needs a directory, got %q", dir).
			Component("frame").
			Category(errors.CategoryFrameSource).
			Build()
	}
	return &ReplaySource{dir: dir, interval: interval, loop: loop, stopCh: make(chan struct{})}, nil
}

// Start begins pushing frames. deliver is called from the replay goroutine
// and must copy pixel bytes out before returning.
func (s *ReplaySource) Start(deliver func(RawFrame)) error {
	files, err := s.listImages()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Newf("frame: no images found under %q", s.dir).
			Component("frame").
			Category(errors.CategoryFrameSource).
			Build()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		idx := 0
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
			}

			f, err := s.loadFrame(files[idx])
			if err != nil {
				getLogger().Warn("skipping unreadable frame", "file", files[idx], "error", err)
			} else {
				deliver(f)
			}

			idx++
			if idx >= len(files) {
				if !s.loop {
					return
				}
				idx = 0
			}
		}
	}()
	return nil
}

// Stop halts frame delivery and waits for the replay goroutine.
func (s *ReplaySource) Stop() error {
	close(s.stopCh)
	s.wg.Wait()
	return nil
}

func (s *ReplaySource) listImages() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("frame: cannot read replay directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(s.dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *ReplaySource) loadFrame(path string) (RawFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawFrame{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return RawFrame{}, err
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return RawFrame{
		Pixels:    rgba.Pix,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Format:    FormatRGBA,
		Rotation:  0,
		Timestamp: time.Now(),
	}, nil
}
