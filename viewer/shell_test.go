package viewer

import (
	"context"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-trafficlight/annotate"
	"github.com/nvr-ai/go-trafficlight/common"
	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/nvr-ai/go-trafficlight/profiler"
)

type stubLoader struct {
	err   error
	calls int
}

func (l *stubLoader) Load(string) (images.Frame, error) {
	l.calls++
	if l.err != nil {
		return images.Frame{}, l.err
	}
	return images.NewBlankFrame(64, 64, color.RGBA{A: 255}), nil
}

type stubDetector struct {
	detections []common.Detection
	err        error
	gate       chan struct{}
}

func (d *stubDetector) Detect(ctx context.Context, _ images.Frame) ([]common.Detection, error) {
	if d.gate != nil {
		<-d.gate
	}
	return d.detections, d.err
}

type failingAnnotator struct{}

func (failingAnnotator) Annotate(images.Frame, []common.Detection) (images.Frame, error) {
	return images.Frame{}, errors.New("draw failed")
}

type recordingDisplay struct {
	mu    sync.Mutex
	shown []string
}

func (d *recordingDisplay) Show(f images.Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown = append(d.shown, images.ComputeFrameChecksum(f))
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	infos  []string
	errors []error
}

func (n *recordingNotifier) Info(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, title+": "+message)
}

func (n *recordingNotifier) Error(_ string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, err)
}

type fixture struct {
	loader   *stubLoader
	detector *stubDetector
	display  *recordingDisplay
	notifier *recordingNotifier
	shell    *Shell
}

func newFixture(annotator Annotator) *fixture {
	f := &fixture{
		loader:   &stubLoader{},
		detector: &stubDetector{},
		display:  &recordingDisplay{},
		notifier: &recordingNotifier{},
	}
	if annotator == nil {
		annotator = annotate.NewAnnotator(nil)
	}
	f.shell = NewShell(f.loader, f.detector, annotator, f.display, f.notifier, profiler.NewStageProfiler())
	return f
}

var redLight = common.Detection{Label: "red", ClassID: 0, Confidence: 0.9, X1: 10, Y1: 20, X2: 30, Y2: 50}

func TestSelectCancelledIsNoop(t *testing.T) {
	f := newFixture(nil)
	defer f.shell.Close()

	require.NoError(t, f.shell.Select(context.Background(), "", false))
	assert.Equal(t, StateIdle, f.shell.State())
	assert.Zero(t, f.loader.calls)
	assert.Empty(t, f.display.shown)
	assert.Empty(t, f.notifier.infos)
}

func TestSelectDisplaysAnnotatedImage(t *testing.T) {
	f := newFixture(nil)
	defer f.shell.Close()
	f.detector.detections = []common.Detection{redLight}

	var states []State
	f.shell.OnStateChange(func(s State) { states = append(states, s) })

	require.NoError(t, f.shell.Select(context.Background(), "lights.jpg", true))

	assert.Equal(t, []State{StateFileSelected, StateDetecting, StateDisplaying, StateIdle}, states)
	require.Len(t, f.display.shown, 1)
	assert.Empty(t, f.notifier.infos)
	assert.Empty(t, f.notifier.errors)

	blank := images.NewBlankFrame(64, 64, color.RGBA{A: 255})
	defer blank.Close()
	assert.NotEqual(t, images.ComputeFrameChecksum(blank), f.display.shown[0], "boxes must be burned in")
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, f.shell.Current().At(10, 35))

	s, ok := f.shell.Profiler().Stage(profiler.StageAnnotate)
	require.True(t, ok)
	assert.Equal(t, int64(1), s.Count)
}

func TestSelectZeroDetectionsNotifiesAndDisplays(t *testing.T) {
	f := newFixture(nil)
	defer f.shell.Close()

	require.NoError(t, f.shell.Select(context.Background(), "empty-road.jpg", true))

	assert.Equal(t, []string{ResultTitle + ": " + NoDetectionsText}, f.notifier.infos)
	require.Len(t, f.display.shown, 1)

	blank := images.NewBlankFrame(64, 64, color.RGBA{A: 255})
	defer blank.Close()
	assert.Equal(t, images.ComputeFrameChecksum(blank), f.display.shown[0])
	assert.Equal(t, StateIdle, f.shell.State())
}

func TestSelectFailuresNotifyOnceAndKeepImage(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *fixture)
		annotator Annotator
	}{
		{
			name:  "load",
			setup: func(f *fixture) { f.loader.err = errors.New("corrupt file") },
		},
		{
			name:  "detect",
			setup: func(f *fixture) { f.detector.err = errors.New("session crashed") },
		},
		{
			name:      "annotate",
			setup:     func(f *fixture) { f.detector.detections = []common.Detection{redLight} },
			annotator: failingAnnotator{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.annotator)
			defer f.shell.Close()

			// A first successful request puts an image on screen.
			require.NoError(t, f.shell.Select(context.Background(), "first.jpg", true))
			require.Len(t, f.display.shown, 1)
			before := images.ComputeFrameChecksum(f.shell.Current())

			tt.setup(f)
			err := f.shell.Select(context.Background(), "second.jpg", true)
			require.Error(t, err)

			assert.Len(t, f.notifier.errors, 1)
			assert.Len(t, f.display.shown, 1, "display must not change")
			assert.Equal(t, before, images.ComputeFrameChecksum(f.shell.Current()))
			assert.Equal(t, StateIdle, f.shell.State())
		})
	}
}

func TestSelectWhileBusy(t *testing.T) {
	f := newFixture(nil)
	defer f.shell.Close()
	f.detector.gate = make(chan struct{})

	detecting := make(chan struct{}, 1)
	f.shell.OnStateChange(func(s State) {
		if s == StateDetecting {
			detecting <- struct{}{}
		}
	})

	result := make(chan error, 1)
	go func() {
		result <- f.shell.Select(context.Background(), "slow.jpg", true)
	}()

	select {
	case <-detecting:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached detecting")
	}

	err := f.shell.Select(context.Background(), "impatient.jpg", true)
	assert.ErrorIs(t, err, ErrBusy)

	// Cancelling the picker while busy is still a no-op.
	assert.NoError(t, f.shell.Select(context.Background(), "", false))

	close(f.detector.gate)
	require.NoError(t, <-result)
	assert.Equal(t, 1, f.loader.calls)
	assert.Equal(t, StateIdle, f.shell.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "detecting", StateDetecting.String())
	assert.Equal(t, "unknown", State(42).String())
}
