package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/invoice-intake/constants"
	"github.com/joseph-ayodele/invoice-intake/internal/common"
	"github.com/joseph-ayodele/invoice-intake/internal/extract"
	"github.com/joseph-ayodele/invoice-intake/internal/intake"
)

// State of the upload workflow.
type State int

const (
	Idle State = iota
	Selected
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selected:
		return "selected"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// User-facing messages.
const (
	MsgSuccess         = "Invoice extracted successfully!"
	MsgNoFile          = "please select a file to upload"
	MsgSelectionLocked = "a submission is in progress; the selected file cannot change until it completes"
	MsgSelectAgain     = "select a file to submit again"
)

// ErrSubmissionInFlight is returned by Select while an attempt is outstanding.
var ErrSubmissionInFlight = errors.New("submission in progress")

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("workflow closed")

// Extractor is the extraction client as seen by the workflow.
type Extractor interface {
	Submit(ctx context.Context, doc intake.Document) extract.Result
}

// Upload drives one candidate file from selection to an extracted record.
//
// Every method except Close must be called from a single owner goroutine,
// typically an event loop that alternates between user actions and Next.
// Attempts run on their own goroutines and only ever post events; they never
// touch workflow state, so no lock guards it. closeMu only orders attempt
// registration against Close.
type Upload struct {
	extractor Extractor
	notifier  Notifier
	navigator Navigator
	delay     time.Duration
	logger    *slog.Logger

	events  chan Event
	closed  chan struct{}
	closeMu sync.Mutex
	once    sync.Once
	wg      sync.WaitGroup

	state      State
	file       *intake.Document
	recordID   string
	failure    string
	generation uint64
	navTimer   *time.Timer
}

type Option func(*Upload)

func WithNotifier(n Notifier) Option {
	return func(u *Upload) {
		if n != nil {
			u.notifier = n
		}
	}
}

func WithNavigator(n Navigator) Option {
	return func(u *Upload) {
		if n != nil {
			u.navigator = n
		}
	}
}

// WithNavigateDelay sets the pause between the success notice and navigation.
// Zero navigates on the next event.
func WithNavigateDelay(d time.Duration) Option {
	return func(u *Upload) {
		if d >= 0 {
			u.delay = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(u *Upload) {
		if l != nil {
			u.logger = l
		}
	}
}

// WithEventBuffer sizes the event queue.
func WithEventBuffer(n int) Option {
	return func(u *Upload) {
		if n > 0 {
			u.events = make(chan Event, n)
		}
	}
}

func NewUpload(extractor Extractor, opts ...Option) *Upload {
	u := &Upload{
		extractor: extractor,
		navigator: NavigatorFunc(func(string) {}),
		delay:     constants.DefaultNavigateDelay,
		logger:    slog.Default(),
		events:    make(chan Event, 16),
		closed:    make(chan struct{}),
		state:     Idle,
	}
	for _, o := range opts {
		o(u)
	}
	if u.notifier == nil {
		u.notifier = LogNotifier{Logger: u.logger}
	}
	return u
}

func (u *Upload) State() State { return u.state }

// File returns the current candidate, if any.
func (u *Upload) File() (intake.CandidateFile, bool) {
	if u.file == nil {
		return intake.CandidateFile{}, false
	}
	return u.file.CandidateFile, true
}

// RecordID is set in Succeeded.
func (u *Upload) RecordID() string { return u.recordID }

// FailureMessage is set in Failed.
func (u *Upload) FailureMessage() string { return u.failure }

// Generation identifies the current attempt; results tagged otherwise are stale.
func (u *Upload) Generation() uint64 { return u.generation }

// Events exposes the queue for owners that multiplex it in their own select.
// Every received event must be passed to Dispatch.
func (u *Upload) Events() <-chan Event { return u.events }

// Select validates doc and, if admitted, makes it the candidate.
// A rejected file leaves state and candidate unchanged.
func (u *Upload) Select(doc intake.Document) error {
	if u.state == Submitting {
		u.logger.Info("workflow.select.ignored", "state", u.state.String(), "file", doc.Name)
		u.notify(LevelInfo, MsgSelectionLocked)
		return ErrSubmissionInFlight
	}

	out := intake.Validate(doc.CandidateFile)
	if !out.Admitted {
		u.logger.Info("workflow.select.rejected", "file", doc.Name, "reason", out.RejectionReason)
		u.notify(LevelError, out.RejectionReason)
		return fmt.Errorf("%w: %s", common.ErrValidationRejection, out.RejectionReason)
	}
	for _, w := range out.Warnings {
		u.notify(LevelWarning, w)
	}

	d := doc
	u.file = &d
	u.recordID = ""
	u.failure = ""
	u.stopNavigation()
	u.setState(Selected)
	return nil
}

// Submit starts one extraction attempt for the candidate. It reports whether
// an attempt was started; a submit while Submitting or after Close is a no-op.
func (u *Upload) Submit(ctx context.Context) bool {
	if u.isClosed() {
		u.logger.Debug("workflow.submit.ignored", "reason", "closed")
		return false
	}
	switch u.state {
	case Selected:
	case Submitting:
		u.logger.Debug("workflow.submit.ignored", "reason", "in_flight", "generation", u.generation)
		return false
	case Idle:
		u.notify(LevelError, MsgNoFile)
		return false
	default:
		u.logger.Info("workflow.submit.ignored", "state", u.state.String())
		u.notify(LevelInfo, MsgSelectAgain)
		return false
	}

	if !u.register() {
		u.logger.Debug("workflow.submit.ignored", "reason", "closed")
		return false
	}
	u.generation++
	gen := u.generation
	doc := *u.file
	u.setState(Submitting)
	u.logger.Info("workflow.submit.started", "generation", gen, "file", doc.Name, "size", doc.Size)

	go func() {
		defer u.wg.Done()
		res := u.extractor.Submit(ctx, doc)
		u.post(SubmitCompleted{Generation: gen, Result: res})
	}()
	return true
}

// Reset returns to Idle from any state. Results and navigations belonging to
// earlier attempts are ignored from now on.
func (u *Upload) Reset() {
	u.generation++
	u.stopNavigation()
	u.file = nil
	u.recordID = ""
	u.failure = ""
	u.setState(Idle)
}

// Next waits for one event, applies it and returns it.
func (u *Upload) Next(ctx context.Context) (Event, error) {
	select {
	case ev := <-u.events:
		u.Dispatch(ev)
		return ev, nil
	case <-u.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Dispatch applies an event received from Events.
func (u *Upload) Dispatch(ev Event) {
	if ev.generation() != u.generation {
		u.logger.Info("workflow.event.stale",
			"event", fmt.Sprintf("%T", ev),
			"event_generation", ev.generation(),
			"generation", u.generation,
		)
		return
	}

	switch e := ev.(type) {
	case SubmitCompleted:
		if u.state != Submitting {
			return
		}
		u.complete(e.Result)
	case NavigationDue:
		if u.state != Succeeded || u.navTimer == nil {
			return
		}
		u.navTimer = nil
		u.logger.Info("workflow.navigate", "record_id", e.RecordID)
		u.navigator.Navigate(e.RecordID)
	}
}

func (u *Upload) complete(res extract.Result) {
	switch r := res.(type) {
	case extract.Success:
		u.recordID = r.RecordID
		u.file = nil
		u.setState(Succeeded)
		u.notify(LevelSuccess, MsgSuccess)
		u.scheduleNavigation(r.RecordID)
	case extract.Failure:
		u.failure = r.Message
		u.setState(Failed)
		u.notify(LevelError, r.Message)
	default:
		u.failure = fmt.Sprintf("unexpected response from extraction service: %T", res)
		u.setState(Failed)
		u.notify(LevelError, u.failure)
	}
}

func (u *Upload) scheduleNavigation(recordID string) {
	gen := u.generation
	u.navTimer = time.AfterFunc(u.delay, func() {
		u.post(NavigationDue{Generation: gen, RecordID: recordID})
	})
}

func (u *Upload) stopNavigation() {
	if u.navTimer != nil {
		u.navTimer.Stop()
		u.navTimer = nil
	}
}

// register adds one attempt to wg unless Close has begun.
func (u *Upload) register() bool {
	u.closeMu.Lock()
	defer u.closeMu.Unlock()
	if u.isClosed() {
		return false
	}
	u.wg.Add(1)
	return true
}

func (u *Upload) isClosed() bool {
	select {
	case <-u.closed:
		return true
	default:
		return false
	}
}

// post never blocks past Close.
func (u *Upload) post(ev Event) {
	select {
	case u.events <- ev:
	case <-u.closed:
	}
}

func (u *Upload) setState(s State) {
	if s == u.state {
		return
	}
	u.logger.Debug("workflow.transition", "from", u.state.String(), "to", s.String(), "generation", u.generation)
	u.state = s
}

func (u *Upload) notify(level Level, msg string) {
	u.notifier.Notify(Notice{Level: level, Message: msg})
}

// Close stops event delivery and waits for outstanding attempts, up to ctx.
// It may be called from any goroutine.
func (u *Upload) Close(ctx context.Context) {
	u.closeMu.Lock()
	u.once.Do(func() { close(u.closed) })
	u.closeMu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); u.wg.Wait() }()

	select {
	case <-ctx.Done():
		u.logger.Warn("workflow.close.interrupted")
	case <-done:
		u.logger.Debug("workflow.closed")
	}
}
