// Package viewer drives the select, detect, annotate and display cycle
// behind the traffic light viewer window.
package viewer

import (
	"context"
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-trafficlight/common"
	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/nvr-ai/go-trafficlight/logging"
	"github.com/nvr-ai/go-trafficlight/profiler"
)

// Notification texts shown to the user.
const (
	ResultTitle      = "Detection Result"
	NoDetectionsText = "No traffic signal detected."
	ErrorTitle       = "Detection Failed"
)

// ErrBusy is returned when a file is selected while another request is in flight.
var ErrBusy = errors.New("viewer: a detection request is already in progress")

// State is the shell's position in the request cycle.
type State int

// Shell states.
const (
	StateIdle State = iota
	StateFileSelected
	StateDetecting
	StateDisplaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFileSelected:
		return "file-selected"
	case StateDetecting:
		return "detecting"
	case StateDisplaying:
		return "displaying"
	default:
		return "unknown"
	}
}

// Loader reads an image file into an RGB frame.
type Loader interface {
	Load(path string) (images.Frame, error)
}

// Detector finds traffic lights in a frame.
type Detector interface {
	Detect(ctx context.Context, frame images.Frame) ([]common.Detection, error)
}

// Annotator burns detections into a copy of a frame.
type Annotator interface {
	Annotate(frame images.Frame, detections []common.Detection) (images.Frame, error)
}

// Display is the persistent surface the current result is rendered on.
type Display interface {
	// Show replaces whatever is currently displayed. The shell keeps
	// ownership of the frame until the next successful Show.
	Show(frame images.Frame) error
}

// Notifier shows modal messages to the user.
type Notifier interface {
	Info(title, message string)
	Error(title string, err error)
}

// Shell is the viewer state machine. At most one request is in flight.
type Shell struct {
	loader    Loader
	detector  Detector
	annotator Annotator
	display   Display
	notifier  Notifier
	profiler  *profiler.StageProfiler

	mu        sync.Mutex
	state     State
	current   images.Frame
	listeners []func(State)
}

// NewShell wires the shell's collaborators.
//
// Arguments:
//   - loader: Reads the selected file.
//   - detector: The detection engine, constructed before the shell.
//   - annotator: Draws the detections.
//   - display: Renders results.
//   - notifier: Shows information and error messages.
//   - prof: Stage timer; nil creates a private one.
//
// Returns:
//   - *Shell: An idle shell.
func NewShell(
	loader Loader,
	detector Detector,
	annotator Annotator,
	display Display,
	notifier Notifier,
	prof *profiler.StageProfiler,
) *Shell {
	if prof == nil {
		prof = profiler.NewStageProfiler()
	}
	return &Shell{
		loader:    loader,
		detector:  detector,
		annotator: annotator,
		display:   display,
		notifier:  notifier,
		profiler:  prof,
		state:     StateIdle,
	}
}

// State returns the current state.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnStateChange registers a callback invoked after every transition. It runs
// on the goroutine that caused the transition.
func (s *Shell) OnStateChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Profiler returns the stage timer the shell records into.
func (s *Shell) Profiler() *profiler.StageProfiler {
	return s.profiler
}

// Select handles the outcome of the file picker and runs the request to completion.
//
// A cancelled picker leaves the shell untouched. Failures are reported
// through the notifier exactly once; the previously displayed image stays.
//
// Arguments:
//   - ctx: Cancels a pending detection.
//   - path: The chosen file.
//   - ok: False when the user cancelled the picker.
//
// Returns:
//   - error: ErrBusy if a request is in flight, or the failure that was notified.
func (s *Shell) Select(ctx context.Context, path string, ok bool) error {
	if !ok || path == "" {
		logging.Debugf("file selection cancelled")
		return nil
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = StateFileSelected
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()
	s.notify(StateIdle, StateFileSelected, listeners)

	err := s.process(ctx, path)
	if err != nil {
		log.Printf("❌ detection failed for %s: %v", path, err)
		s.notifier.Error(ErrorTitle, err)
	}

	s.transition(StateIdle)
	return err
}

func (s *Shell) process(ctx context.Context, path string) error {
	done := s.profiler.StartOperation(profiler.StageLoad)
	frame, err := s.loader.Load(path)
	logging.Debugf("load %s took %v", path, done())
	if err != nil {
		return errors.Wrap(err, "failed to load image")
	}

	s.transition(StateDetecting)

	done = s.profiler.StartOperation(profiler.StageDetect)
	detections, err := s.detector.Detect(ctx, frame)
	logging.Debugf("detect took %v", done())
	if err != nil {
		frame.Close()
		return errors.Wrap(err, "failed to run detection")
	}
	s.profiler.RecordMetric("detections", float64(len(detections)))

	result := frame
	if len(detections) == 0 {
		s.notifier.Info(ResultTitle, NoDetectionsText)
	} else {
		for _, d := range detections {
			logging.Debugf("%s", d)
		}

		done = s.profiler.StartOperation(profiler.StageAnnotate)
		result, err = s.annotator.Annotate(frame, detections)
		logging.Debugf("annotate took %v", done())
		frame.Close()
		if err != nil {
			return errors.Wrap(err, "failed to annotate image")
		}
	}

	s.transition(StateDisplaying)

	if err := s.display.Show(result); err != nil {
		result.Close()
		return errors.Wrap(err, "failed to display image")
	}

	s.mu.Lock()
	previous := s.current
	s.current = result
	s.mu.Unlock()
	previous.Close()

	log.Printf("✅ %s: %d traffic light(s)", path, len(detections))
	return nil
}

// Current returns the displayed frame. The shell keeps ownership.
func (s *Shell) Current() images.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close releases the displayed frame.
func (s *Shell) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.current.Close()
	s.current = images.Frame{}
	return err
}

func (s *Shell) transition(to State) {
	s.mu.Lock()
	from := s.state
	s.state = to
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()

	s.notify(from, to, listeners)
}

func (s *Shell) notify(from, to State, listeners []func(State)) {
	logging.Debugf("viewer: %s -> %s", from, to)
	for _, fn := range listeners {
		fn(to)
	}
}
