// Package platenet implements the two-stage license plate recognition
// adapter: a plate detection head and a character classification head,
// both TensorFlow Lite models bound to a single owning execution context.
package platenet

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/errors"
	tflite "github.com/tphakala/go-tflite"
	"github.com/tphakala/go-tflite/delegates/xnnpack"
)

// Variant selects the detection confidence threshold profile of a pipeline.
type Variant string

const (
	// VariantFile is offline batch analysis with the lowest threshold.
	VariantFile Variant = "file"
	// VariantVideo is the live video feed profile.
	VariantVideo Variant = "video"
	// VariantCapture is the one-shot high-accuracy pass with the highest threshold.
	VariantCapture Variant = "capture"
)

// modelHead wraps one loaded TFLite model with its fixed input shape
// [1, H, W, 3] and transposed output shape [1, attributes, candidates].
type modelHead struct {
	interpreter   *tflite.Interpreter
	inputW        int
	inputH        int
	numAttrs      int
	numCandidates int
}

// PlateNet holds the two interpreters and reusable scratch buffers. The
// scratch buffers make the object unsafe for concurrent or re-entrant
// invocation; callers must serialize, see Recognize.
type PlateNet struct {
	Settings *conf.Settings
	Variant  Variant

	plateHead *modelHead
	charHead  *modelHead
	mu        sync.Mutex

	plateInput  []float32
	charInput   []float32
	plateOutput []float32
	charOutput  []float32
}

// New loads both model heads and allocates scratch buffers.
func New(settings *conf.Settings, variant Variant) (*PlateNet, error) {
	pn := &PlateNet{
		Settings: settings,
		Variant:  variant,
	}

	var err error
	pn.plateHead, err = pn.initializeHead(settings.PlateNet.PlateModelPath)
	if err != nil {
		return nil, errors.New(fmt.Errorf("platenet: failed to initialize plate detection model: %w", err)).
			Component("platenet").
			Category(errors.CategoryModelInit).
			ModelContext(settings.PlateNet.PlateModelPath, string(variant)).
			Build()
	}
	pn.charHead, err = pn.initializeHead(settings.PlateNet.CharModelPath)
	if err != nil {
		pn.plateHead.delete()
		return nil, errors.New(fmt.Errorf("platenet: failed to initialize character model: %w", err)).
			Component("platenet").
			Category(errors.CategoryModelInit).
			ModelContext(settings.PlateNet.CharModelPath, string(variant)).
			Build()
	}

	pn.plateInput = make([]float32, pn.plateHead.inputW*pn.plateHead.inputH*3)
	pn.charInput = make([]float32, pn.charHead.inputW*pn.charHead.inputH*3)
	pn.plateOutput = make([]float32, pn.plateHead.numAttrs*pn.plateHead.numCandidates)
	pn.charOutput = make([]float32, pn.charHead.numAttrs*pn.charHead.numCandidates)

	getLogger().Info("model heads initialized",
		"variant", string(variant),
		"plate_input", fmt.Sprintf("%dx%d", pn.plateHead.inputW, pn.plateHead.inputH),
		"char_input", fmt.Sprintf("%dx%d", pn.charHead.inputW, pn.charHead.inputH))

	return pn, nil
}

// initializeHead loads one model file and creates its interpreter.
func (pn *PlateNet) initializeHead(path string) (*modelHead, error) {
	modelData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read model file %s: %w", path, err)
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return nil, fmt.Errorf("cannot load TensorFlow Lite model from %s", path)
	}

	threads := pn.determineThreadCount()
	options := tflite.NewInterpreterOptions()
	if pn.Settings.PlateNet.UseXNNPACK {
		delegate := xnnpack.New(xnnpack.DelegateOptions{NumThreads: int32(max(1, threads-1))}) //nolint:gosec // G115: thread count bounded by CPU count, safe conversion
		if delegate == nil {
			getLogger().Warn("failed to create XNNPACK delegate, falling back to default CPU")
			options.SetNumThread(threads)
		} else {
			options.AddDelegate(delegate)
			options.SetNumThread(1)
		}
	} else {
		options.SetNumThread(threads)
	}

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		return nil, fmt.Errorf("cannot create interpreter for %s", path)
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		return nil, fmt.Errorf("tensor allocation failed for %s", path)
	}

	inputTensor := interpreter.GetInputTensor(0)
	outputTensor := interpreter.GetOutputTensor(0)
	if inputTensor == nil || outputTensor == nil {
		interpreter.Delete()
		return nil, fmt.Errorf("cannot access model tensors for %s", path)
	}
	if inputTensor.NumDims() != 4 {
		interpreter.Delete()
		return nil, fmt.Errorf("unexpected input tensor rank %d for %s, want 4", inputTensor.NumDims(), path)
	}
	if outputTensor.NumDims() != 3 {
		interpreter.Delete()
		return nil, fmt.Errorf("unexpected output tensor rank %d for %s, want 3", outputTensor.NumDims(), path)
	}

	head := &modelHead{
		interpreter:   interpreter,
		inputH:        inputTensor.Dim(1),
		inputW:        inputTensor.Dim(2),
		numAttrs:      outputTensor.Dim(1),
		numCandidates: outputTensor.Dim(2),
	}

	// TFLite keeps its own copy of the model data.
	runtime.GC()

	return head, nil
}

// determineThreadCount returns the interpreter thread count from settings,
// defaulting to the CPU count.
func (pn *PlateNet) determineThreadCount() int {
	if t := pn.Settings.PlateNet.Threads; t > 0 {
		return t
	}
	return runtime.NumCPU()
}

// invoke runs one inference of head with input already staged in src,
// copying the raw output into dst. Callers hold pn.mu.
func (pn *PlateNet) invoke(head *modelHead, src, dst []float32) error {
	inputTensor := head.interpreter.GetInputTensor(0)
	if inputTensor == nil {
		return fmt.Errorf("cannot get input tensor")
	}
	copy(inputTensor.Float32s(), src)

	if status := head.interpreter.Invoke(); status != tflite.OK {
		return fmt.Errorf("tensor invoke failed: %v", status)
	}

	outputTensor := head.interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		return fmt.Errorf("cannot get output tensor")
	}
	copy(dst, outputTensor.Float32s())
	return nil
}

// detectionThreshold returns the plate confidence threshold for this
// pipeline's variant.
func (pn *PlateNet) detectionThreshold() float64 {
	switch pn.Variant {
	case VariantFile:
		return pn.Settings.PlateNet.Thresholds.File
	case VariantCapture:
		return pn.Settings.PlateNet.Thresholds.Capture
	default:
		return pn.Settings.PlateNet.Thresholds.Video
	}
}

func (h *modelHead) delete() {
	if h != nil && h.interpreter != nil {
		h.interpreter.Delete()
		h.interpreter = nil
	}
}

// Delete releases both interpreters. The PlateNet must not be used afterward.
func (pn *PlateNet) Delete() {
	pn.mu.Lock()
	defer pn.mu.Unlock()
	pn.plateHead.delete()
	pn.charHead.delete()
}
