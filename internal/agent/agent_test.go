package agent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nocookies/internal/consent"
	"nocookies/internal/coordinator"
	"nocookies/internal/dom/htmldoc"
	"nocookies/internal/sitememory"
)

type memoryStub struct {
	svc      *sitememory.Service
	checkErr error
	markErr  error
	checks   atomic.Int32
}

func newMemory() *memoryStub {
	return &memoryStub{svc: sitememory.New()}
}

func (m *memoryStub) CheckIfProcessed(_ context.Context, url string) (bool, error) {
	m.checks.Add(1)
	if m.checkErr != nil {
		return false, m.checkErr
	}
	return m.svc.IsProcessed(url), nil
}

func (m *memoryStub) MarkAsProcessed(_ context.Context, url string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.svc.MarkProcessed(url)
	return nil
}

type gateStub struct {
	enabled bool
	err     error
}

func (g gateStub) Enabled(context.Context) (bool, error) {
	return g.enabled, g.err
}

type recorderStub struct {
	mu   sync.Mutex
	runs []Outcome
}

func (r *recorderStub) RecordRun(_ context.Context, o Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, o)
	return nil
}

type sleepLog struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepLog) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func newAgent(mem Memory, gate Gate, cfg Config, opts ...Option) *Agent {
	return New(consent.NewScanner(nil, nil), mem, gate, cfg, nil, opts...)
}

func parse(t *testing.T, body string) *htmldoc.Document {
	t.Helper()
	doc, err := htmldoc.ParseString("<html><body>"+body+"</body></html>", "https://shop.example.com/checkout")
	require.NoError(t, err)
	return doc
}

func clickedIDs(doc *htmldoc.Document) []string {
	var out []string
	for _, c := range doc.Clicks() {
		out = append(out, c.ID)
	}
	return out
}

const rejectPage = `<div class="cookie-banner">
  <p>We use cookies to improve your experience.</p>
  <button id="accept">Accept all</button>
  <button id="reject">Reject All</button>
</div>`

const twoStepPage = `<div class="cookie-consent" id="cmp">
  <p>We use cookies.</p>
  <button id="accept">Accept all</button>
  <button id="more">Expand Options</button>
  <div id="second" hidden>
    <label><input type="checkbox" id="marketing" checked> Marketing Cookies</label>
    <label><input type="checkbox" id="necessary" checked> Necessary</label>
    <button id="confirm">Confirm</button>
  </div>
</div>`

func TestRejectScenario(t *testing.T) {
	doc := parse(t, rejectPage)
	doc.Local().Set("cart_id", "42")
	doc.Local().Set("auth_token", "t0k3n")
	mem := newMemory()
	rec := &recorderStub{}
	a := newAgent(mem, gateStub{enabled: true}, DefaultConfig(), WithRecorder(rec), WithSleep((&sleepLog{}).sleep))

	o, err := a.Handle(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, StateRejectClicked, o.State)
	assert.Equal(t, []State{StateIdle, StateCheckGate, StateScanned, StateRejectClicked}, o.Trace)
	assert.Equal(t, []string{"reject"}, clickedIDs(doc))
	assert.Equal(t, "shop.example.com", o.Origin)
	assert.Equal(t, 1, o.StorageRemoved)

	_, ok := doc.Local().Get("cart_id")
	assert.False(t, ok)
	_, ok = doc.Local().Get("auth_token")
	assert.True(t, ok)

	assert.True(t, mem.svc.IsProcessed("https://shop.example.com/"))
	require.Len(t, rec.runs, 1)
	assert.Equal(t, StateRejectClicked, rec.runs[0].State)
}

func TestExpandToggleConfirmScenario(t *testing.T) {
	doc := parse(t, twoStepPage)
	doc.OnClick(func(e *htmldoc.Element) {
		if e.Attr("id") == "more" {
			doc.Find("second").RemoveAttr("hidden")
		}
	})
	mem := newMemory()
	sleeps := &sleepLog{}
	a := newAgent(mem, gateStub{enabled: true}, DefaultConfig(), WithSleep(sleeps.sleep))

	o, err := a.Handle(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, StateConfirmClicked, o.State)
	assert.Equal(t, []State{
		StateIdle, StateCheckGate, StateScanned,
		StateExpanded, StateToggledOff, StateConfirmClicked,
	}, o.Trace)
	assert.Equal(t, []string{"more", "marketing", "confirm"}, clickedIDs(doc))
	assert.Equal(t, 3, o.Clicks)
	assert.Equal(t, 1, o.TogglesOff)
	assert.True(t, doc.Find("necessary").Checked())
	assert.Equal(t, []time.Duration{800 * time.Millisecond, 500 * time.Millisecond}, sleeps.delays)
	assert.True(t, mem.svc.IsProcessed(doc.URL()))
}

func TestDisabledPerformsNoMutation(t *testing.T) {
	doc := parse(t, rejectPage)
	doc.Local().Set("cart_id", "42")
	mem := newMemory()
	a := newAgent(mem, gateStub{enabled: false}, DefaultConfig())

	o, err := a.Handle(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, StateDisabled, o.State)
	assert.Empty(t, doc.Clicks())
	_, ok := doc.Local().Get("cart_id")
	assert.True(t, ok)
	assert.Zero(t, mem.checks.Load())
	assert.False(t, mem.svc.IsProcessed(doc.URL()))
}

func TestGateErrorIsTreatedAsEnabled(t *testing.T) {
	doc := parse(t, rejectPage)
	a := newAgent(newMemory(), gateStub{enabled: false, err: errors.New("store down")}, DefaultConfig())

	o, err := a.Handle(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, StateRejectClicked, o.State)
}

func TestSecondRunOnProcessedOriginClicksNothing(t *testing.T) {
	doc := parse(t, rejectPage)
	a := newAgent(newMemory(), gateStub{enabled: true}, DefaultConfig())

	_, err := a.Handle(context.Background(), doc)
	require.NoError(t, err)
	before := len(doc.Clicks())

	o, err := a.Handle(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, StateAlreadyProcessed, o.State)
	assert.Len(t, doc.Clicks(), before)
}

func TestUnrelatedButtonIsNeverActivated(t *testing.T) {
	doc := parse(t, `<div class="legal"><p>Terms</p><button id="tos">Accept Terms of Service</button></div>`)
	mem := newMemory()
	cfg := DefaultConfig()
	cfg.RequireDialogHint = false
	a := newAgent(mem, gateStub{enabled: true}, cfg)

	o, err := a.Handle(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, StateNoAction, o.State)
	assert.Empty(t, doc.Clicks())
	// a pass without action still counts as handled
	assert.True(t, mem.svc.IsProcessed(doc.URL()))
}

func TestMissingDialogHintLeavesOriginUnprocessed(t *testing.T) {
	doc := parse(t, `<div class="header"><button>Close</button></div>`)
	mem := newMemory()
	a := newAgent(mem, gateStub{enabled: true}, DefaultConfig())

	o, err := a.Handle(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, StateNoDialog, o.State)
	assert.Empty(t, doc.Clicks())
	assert.False(t, mem.svc.IsProcessed(doc.URL()))
}

func TestProcessedCheckFailsOpen(t *testing.T) {
	doc := parse(t, rejectPage)
	mem := newMemory()
	mem.checkErr = errors.New("message port closed")
	a := newAgent(mem, gateStub{enabled: true}, DefaultConfig())

	o, err := a.Handle(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, StateRejectClicked, o.State)
}

func TestStoppedCoordinatorIsCritical(t *testing.T) {
	doc := parse(t, rejectPage)
	mem := newMemory()
	mem.checkErr = coordinator.ErrClosed
	a := newAgent(mem, gateStub{enabled: true}, DefaultConfig())

	_, err := a.Handle(context.Background(), doc)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StateCheckGate, stepErr.Step)
	assert.Equal(t, ErrorTypeCritical, stepErr.Kind)
	assert.Empty(t, doc.Clicks())
}

func TestMarkFailureIsNotFatal(t *testing.T) {
	doc := parse(t, rejectPage)
	mem := newMemory()
	mem.markErr = errors.New("no response")
	a := newAgent(mem, gateStub{enabled: true}, DefaultConfig())

	o, err := a.Handle(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, StateRejectClicked, o.State)
}

func TestConcurrentPassIsRefused(t *testing.T) {
	doc := parse(t, rejectPage)
	a := newAgent(newMemory(), gateStub{enabled: true}, DefaultConfig())
	a.inFlight.Store(true)

	o, err := a.Handle(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, StateBusy, o.State)
	assert.Empty(t, doc.Clicks())
}

func TestCancelDuringExpandDelay(t *testing.T) {
	doc := parse(t, twoStepPage)
	ctx, cancel := context.WithCancel(context.Background())
	a := newAgent(newMemory(), gateStub{enabled: true}, DefaultConfig(), WithSleep(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	o, err := a.Handle(ctx, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateExpanded, o.State)
	assert.Equal(t, []string{"more"}, clickedIDs(doc))
}

func TestStateHelpers(t *testing.T) {
	assert.True(t, StateRejectClicked.Terminal())
	assert.True(t, StateNoAction.Terminal())
	assert.False(t, StateDisabled.Terminal())
	assert.True(t, StateConfirmClicked.Success())
	assert.False(t, StateNoAction.Success())
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorTypeCritical, classifyError(context.Canceled))
	assert.Equal(t, ErrorTypeCritical, classifyError(errors.New("Target closed")))
	assert.Equal(t, ErrorTypeTemporary, classifyError(errors.New("element is not attached")))
	assert.Equal(t, "critical", ErrorTypeCritical.String())
}
