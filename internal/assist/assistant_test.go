// internal/assist/assistant_test.go
package assist

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/api/schemas"
	"github.com/halcyondale/deskpilot-cli/internal/config"
	"github.com/halcyondale/deskpilot-cli/internal/desktop"
	"github.com/halcyondale/deskpilot-cli/internal/executor"
	"github.com/halcyondale/deskpilot-cli/internal/interpreter"
	"github.com/halcyondale/deskpilot-cli/internal/resolver"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingAnalyzer struct {
	calls atomic.Int64
	state *schemas.ScreenState
}

func (c *countingAnalyzer) Analyze(context.Context) *schemas.ScreenState {
	c.calls.Add(1)
	if c.state != nil {
		return c.state
	}
	return &schemas.ScreenState{App: schemas.UnknownApp, CapturedAt: time.Now()}
}

type nullInjector struct {
	mu     sync.Mutex
	pos    schemas.Point
	clicks int
}

func (n *nullInjector) MoveMouse(_ context.Context, p schemas.Point) error {
	n.mu.Lock()
	n.pos = p
	n.mu.Unlock()
	return nil
}
func (n *nullInjector) Click(context.Context, schemas.Point) error {
	n.mu.Lock()
	n.clicks++
	n.mu.Unlock()
	return nil
}
func (n *nullInjector) TypeText(context.Context, string) error { return nil }
func (n *nullInjector) PointerLocation(context.Context) (schemas.Point, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pos, nil
}

type nullLauncher struct{ launched []string }

func (n *nullLauncher) Launch(_ context.Context, app string) error {
	n.launched = append(n.launched, app)
	return nil
}

type nullOpener struct{ urls []string }

func (n *nullOpener) OpenURL(_ context.Context, url string) error {
	n.urls = append(n.urls, url)
	return nil
}

type nullGeometry struct{}

func (nullGeometry) Size(context.Context) (int, int, error) { return 1920, 1080, nil }

type capturingRecorder struct {
	mu       sync.Mutex
	userText []string
	actions  []schemas.Action
	states   []*schemas.ScreenState
}

func (c *capturingRecorder) RecordExchange(userText string, action schemas.Action, state *schemas.ScreenState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userText = append(c.userText, userText)
	c.actions = append(c.actions, action)
	c.states = append(c.states, state)
}

type scriptedClient struct{ response string }

func (s *scriptedClient) Generate(context.Context, schemas.GenerationRequest) (string, error) {
	return s.response, nil
}

func newTestAssistant(analyzer Analyzer, hold time.Duration) (*Assistant, *nullOpener, *nullLauncher) {
	a, opener, launcher := newRecordedAssistant(analyzer, nil, nil, hold)
	return a, opener, launcher
}

func newRecordedAssistant(analyzer Analyzer, client schemas.LLMClient, rec Recorder, hold time.Duration) (*Assistant, *nullOpener, *nullLauncher) {
	opener := &nullOpener{}
	launcher := &nullLauncher{}
	provider := &desktop.Provider{
		Input:     &nullInjector{pos: schemas.Point{X: 500, Y: 500}},
		Launcher:  launcher,
		URLOpener: opener,
		Geometry:  nullGeometry{},
	}

	res := resolver.New(zap.NewNop())
	exec := executor.New(provider, res, nil, config.ExecutorConfig{
		FailsafeMargin: 2,
		PointerSpeed:   200,
		SearchURL:      "https://www.google.com/search?q=",
	}, zap.NewNop())

	// With a nil client every command takes the deterministic path.
	interp := interpreter.New(client, config.InterpreterConfig{ScreenTextCap: 1000}, time.Second, zap.NewNop())

	gate := NewGate(hold, zap.NewNop())
	return New(analyzer, interp, res, exec, gate, rec, 10*time.Millisecond, zap.NewNop()), opener, launcher
}

func TestGate(t *testing.T) {
	t.Run("single slot", func(t *testing.T) {
		g := NewGate(time.Minute, zap.NewNop())
		assert.False(t, g.Active())
		assert.True(t, g.Activate())
		assert.False(t, g.Activate(), "second activation reports already open")
		assert.True(t, g.Active())

		g.Deactivate()
		assert.False(t, g.Active())
	})

	t.Run("auto release after hold", func(t *testing.T) {
		g := NewGate(20*time.Millisecond, zap.NewNop())
		g.Activate()
		require.Eventually(t, func() bool { return !g.Active() }, time.Second, 5*time.Millisecond)
	})
}

func TestHandleRequiresActivation(t *testing.T) {
	a, opener, _ := newTestAssistant(&countingAnalyzer{}, time.Minute)

	_, out := a.Handle(context.Background(), "open spotify")
	assert.Equal(t, schemas.OutcomeRejected, out.Status)
	assert.Empty(t, opener.urls)

	a.Gate().Activate()
	action, out := a.Handle(context.Background(), "open spotify")
	assert.Equal(t, schemas.OutcomeOK, out.Status)
	assert.Equal(t, schemas.ActionOpenApplication, action.Type)
}

func TestHandleEndToEndFallbackSearch(t *testing.T) {
	a, opener, _ := newTestAssistant(&countingAnalyzer{}, time.Minute)
	a.Gate().Activate()

	action, out := a.Handle(context.Background(), "search for rust borrow checker")
	require.Equal(t, schemas.OutcomeOK, out.Status)
	assert.Equal(t, schemas.ActionWebSearch, action.Type)
	assert.Equal(t, "for rust borrow checker", action.Query)
	require.Len(t, opener.urls, 1)
	assert.Equal(t, "https://www.google.com/search?q=for+rust+borrow+checker", opener.urls[0])
}

func TestHandleRecordsResolvedAction(t *testing.T) {
	state := &schemas.ScreenState{
		App:  schemas.AppIdentity{Name: "Spotify", Title: "Spotify Premium"},
		Text: "Home Search Your Library",
		Regions: []schemas.Region{
			{Center: schemas.Point{X: 640, Y: 480}, NearbyText: "play button"},
		},
		CapturedAt: time.Now(),
	}
	client := &scriptedClient{response: `{"type":"screen_click","target_element":"play button","confidence":0.9}`}
	rec := &capturingRecorder{}
	a, _, _ := newRecordedAssistant(&countingAnalyzer{state: state}, client, rec, time.Minute)
	a.Gate().Activate()

	_, out := a.Handle(context.Background(), "click the play button")
	require.Equal(t, schemas.OutcomeOK, out.Status)

	require.Len(t, rec.actions, 1)
	assert.Equal(t, "click the play button", rec.userText[0])
	recorded := rec.actions[0]
	assert.Equal(t, schemas.ActionScreenClick, recorded.Type)
	require.NotNil(t, recorded.Coordinates, "transcript carries the bound coordinates")
	assert.Equal(t, schemas.Point{X: 640, Y: 480}, *recorded.Coordinates)
	require.NotNil(t, rec.states[0])
	assert.Equal(t, "Spotify", rec.states[0].App.Name)
}

func TestBackgroundAnalysisLoop(t *testing.T) {
	analyzer := &countingAnalyzer{}
	a, _, _ := newTestAssistant(analyzer, time.Minute)

	a.Start(context.Background())
	defer a.Stop()

	require.Eventually(t, func() bool {
		return analyzer.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	assert.NotNil(t, a.Snapshot(context.Background()))
}

func TestSnapshotAnalyzesOnDemand(t *testing.T) {
	analyzer := &countingAnalyzer{state: &schemas.ScreenState{Text: "hello"}}
	a, _, _ := newTestAssistant(analyzer, time.Minute)

	state := a.Snapshot(context.Background())
	require.NotNil(t, state)
	assert.Equal(t, "hello", state.Text)
	assert.Equal(t, int64(1), analyzer.calls.Load())

	// Second call reuses the stored snapshot.
	a.Snapshot(context.Background())
	assert.Equal(t, int64(1), analyzer.calls.Load())
}
