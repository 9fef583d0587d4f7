package workflow

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
	"github.com/joseph-ayodele/invoice-intake/internal/extract"
	"github.com/joseph-ayodele/invoice-intake/internal/intake"
)

// pendingCall is one outstanding Submit; the test decides when it resolves.
type pendingCall struct {
	doc   intake.Document
	reply chan extract.Result
}

type fakeExtractor struct {
	calls chan pendingCall
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{calls: make(chan pendingCall, 8)}
}

func (f *fakeExtractor) Submit(ctx context.Context, doc intake.Document) extract.Result {
	c := pendingCall{doc: doc, reply: make(chan extract.Result, 1)}
	f.calls <- c
	select {
	case r := <-c.reply:
		return r
	case <-ctx.Done():
		return extract.Failure{Kind: extract.KindConnectivity, Message: ctx.Err().Error()}
	}
}

func (f *fakeExtractor) next(t *testing.T) pendingCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("expected an extraction call")
		return pendingCall{}
	}
}

func (f *fakeExtractor) assertNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected extraction call for %s", c.doc.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func doc(name, mediaType string, size int64) intake.Document {
	return intake.Document{
		CandidateFile: intake.CandidateFile{Name: name, MediaType: mediaType, Size: size},
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("content")), nil
		},
	}
}

func newTestUpload(t *testing.T, fx *fakeExtractor, opts ...Option) (*Upload, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	opts = append([]Option{WithNotifier(rec), WithNavigator(rec), WithNavigateDelay(0)}, opts...)
	u := NewUpload(fx, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		u.Close(ctx)
	})
	return u, rec
}

func next(t *testing.T, u *Upload) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev, err := u.Next(ctx)
	require.NoError(t, err)
	return ev
}

func TestScenarioAPDFSucceedsAndNavigatesOnce(t *testing.T) {
	fx := newFakeExtractor()
	u, rec := newTestUpload(t, fx)

	require.NoError(t, u.Select(doc("invoice.pdf", "application/pdf", 500000)))
	assert.Equal(t, Selected, u.State())
	assert.Empty(t, rec.Notices, "a PDF carries no warning")

	require.True(t, u.Submit(context.Background()))
	assert.Equal(t, Submitting, u.State())

	call := fx.next(t)
	assert.Equal(t, "invoice.pdf", call.doc.Name)
	call.reply <- extract.Success{RecordID: "INV-123"}

	ev := next(t, u)
	assert.IsType(t, SubmitCompleted{}, ev)
	assert.Equal(t, Succeeded, u.State())
	assert.Equal(t, "INV-123", u.RecordID())
	assert.Equal(t, Notice{Level: LevelSuccess, Message: MsgSuccess}, rec.Last())
	_, hasFile := u.File()
	assert.False(t, hasFile, "candidate is discarded on success")
	assert.Empty(t, rec.Navigations, "navigation waits for the delay")

	ev = next(t, u)
	assert.Equal(t, NavigationDue{Generation: u.Generation(), RecordID: "INV-123"}, ev)
	assert.Equal(t, []string{"INV-123"}, rec.Navigations)
}

func TestScenarioBImageWarnsThenFailsResubmittable(t *testing.T) {
	fx := newFakeExtractor()
	u, rec := newTestUpload(t, fx)

	require.NoError(t, u.Select(doc("photo.png", "image/png", 2000000)))
	require.Len(t, rec.Notices, 1)
	assert.Equal(t, Notice{Level: LevelWarning, Message: intake.WarningNonPDF}, rec.Notices[0])

	require.True(t, u.Submit(context.Background()))
	fx.next(t).reply <- extract.Failure{Kind: extract.KindService, Message: "unsupported file type", Status: 400}
	next(t, u)

	assert.Equal(t, Failed, u.State())
	assert.Equal(t, "unsupported file type", u.FailureMessage())
	assert.Equal(t, Notice{Level: LevelError, Message: "unsupported file type"}, rec.Last())
	assert.Empty(t, rec.Navigations)

	// no automatic retry
	fx.assertNoCall(t)

	u.Reset()
	require.NoError(t, u.Select(doc("invoice.pdf", "application/pdf", 1000)))
	require.True(t, u.Submit(context.Background()))
	fx.next(t).reply <- extract.Success{RecordID: "INV-2"}
	next(t, u)
	assert.Equal(t, Succeeded, u.State())
}

func TestScenarioCOversizedStaysIdle(t *testing.T) {
	fx := newFakeExtractor()
	u, rec := newTestUpload(t, fx)

	err := u.Select(doc("bigfile.pdf", "application/pdf", 11000000))

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidationRejection))
	assert.Equal(t, Idle, u.State())
	assert.Equal(t, Notice{Level: LevelError, Message: intake.ReasonTooLarge}, rec.Last())
	_, hasFile := u.File()
	assert.False(t, hasFile)

	assert.False(t, u.Submit(context.Background()))
	assert.Equal(t, Notice{Level: LevelError, Message: MsgNoFile}, rec.Last())
	fx.assertNoCall(t)
}

func TestSubmitIsSingleFlight(t *testing.T) {
	fx := newFakeExtractor()
	u, _ := newTestUpload(t, fx)
	require.NoError(t, u.Select(doc("invoice.pdf", "application/pdf", 10)))

	assert.True(t, u.Submit(context.Background()))
	assert.False(t, u.Submit(context.Background()))
	assert.False(t, u.Submit(context.Background()))

	call := fx.next(t)
	fx.assertNoCall(t)

	call.reply <- extract.Success{RecordID: "one"}
	next(t, u)
	assert.Equal(t, Succeeded, u.State())
}

func TestLateResultAfterResetIsIgnored(t *testing.T) {
	fx := newFakeExtractor()
	u, rec := newTestUpload(t, fx)

	require.NoError(t, u.Select(doc("first.pdf", "application/pdf", 10)))
	require.True(t, u.Submit(context.Background()))
	first := fx.next(t)

	u.Reset()
	assert.Equal(t, Idle, u.State())

	require.NoError(t, u.Select(doc("second.pdf", "application/pdf", 10)))
	require.True(t, u.Submit(context.Background()))
	second := fx.next(t)
	assert.Equal(t, "second.pdf", second.doc.Name)

	first.reply <- extract.Success{RecordID: "STALE"}
	ev := next(t, u)
	assert.Less(t, ev.(SubmitCompleted).Generation, u.Generation())
	assert.Equal(t, Submitting, u.State(), "stale result must not complete the current attempt")
	assert.Empty(t, u.RecordID())

	second.reply <- extract.Success{RecordID: "FRESH"}
	next(t, u)
	next(t, u)
	assert.Equal(t, "FRESH", u.RecordID())
	assert.Equal(t, []string{"FRESH"}, rec.Navigations)
}

func TestLateResultAfterResetToIdleIsIgnored(t *testing.T) {
	fx := newFakeExtractor()
	u, rec := newTestUpload(t, fx)

	require.NoError(t, u.Select(doc("first.pdf", "application/pdf", 10)))
	require.True(t, u.Submit(context.Background()))
	call := fx.next(t)
	u.Reset()

	call.reply <- extract.Failure{Kind: extract.KindService, Message: "boom"}
	next(t, u)

	assert.Equal(t, Idle, u.State())
	assert.Empty(t, u.FailureMessage())
	for _, n := range rec.Notices {
		assert.NotEqual(t, "boom", n.Message)
	}
}

func TestResetCancelsPendingNavigation(t *testing.T) {
	fx := newFakeExtractor()
	u, rec := newTestUpload(t, fx, WithNavigateDelay(30*time.Millisecond))

	require.NoError(t, u.Select(doc("invoice.pdf", "application/pdf", 10)))
	require.True(t, u.Submit(context.Background()))
	fx.next(t).reply <- extract.Success{RecordID: "INV-1"}
	next(t, u)
	require.Equal(t, Succeeded, u.State())

	u.Reset()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err := u.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, rec.Navigations)
}

func TestSelectWhileSubmittingIsIgnored(t *testing.T) {
	fx := newFakeExtractor()
	u, rec := newTestUpload(t, fx)

	require.NoError(t, u.Select(doc("invoice.pdf", "application/pdf", 10)))
	require.True(t, u.Submit(context.Background()))
	call := fx.next(t)

	err := u.Select(doc("other.pdf", "application/pdf", 10))
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.Equal(t, Notice{Level: LevelInfo, Message: MsgSelectionLocked}, rec.Last())
	f, _ := u.File()
	assert.Equal(t, "invoice.pdf", f.Name)
	assert.Equal(t, Submitting, u.State())

	call.reply <- extract.Success{RecordID: "x"}
	next(t, u)
}

func TestRejectedSelectKeepsCurrentCandidate(t *testing.T) {
	u, _ := newTestUpload(t, newFakeExtractor())

	require.NoError(t, u.Select(doc("invoice.pdf", "application/pdf", 10)))
	err := u.Select(doc("notes.txt", "text/plain", 10))

	assert.ErrorIs(t, err, common.ErrValidationRejection)
	assert.Equal(t, Selected, u.State())
	f, ok := u.File()
	require.True(t, ok)
	assert.Equal(t, "invoice.pdf", f.Name)
}

func TestSelectReplacesCandidateAfterTerminalStates(t *testing.T) {
	fx := newFakeExtractor()
	u, _ := newTestUpload(t, fx)

	require.NoError(t, u.Select(doc("a.pdf", "application/pdf", 10)))
	require.NoError(t, u.Select(doc("b.pdf", "application/pdf", 10)))
	f, _ := u.File()
	assert.Equal(t, "b.pdf", f.Name)

	require.True(t, u.Submit(context.Background()))
	fx.next(t).reply <- extract.Failure{Kind: extract.KindConnectivity, Message: "could not reach extraction service: refused"}
	next(t, u)
	require.Equal(t, Failed, u.State())

	assert.False(t, u.Submit(context.Background()), "failed attempts need a new selection")
	fx.assertNoCall(t)

	require.NoError(t, u.Select(doc("c.pdf", "application/pdf", 10)))
	assert.Equal(t, Selected, u.State())
	assert.Empty(t, u.FailureMessage())
}

func TestNextAfterClose(t *testing.T) {
	u := NewUpload(newFakeExtractor())
	u.Close(context.Background())

	_, err := u.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSubmitAfterCloseStartsNoAttempt(t *testing.T) {
	fx := newFakeExtractor()
	u, _ := newTestUpload(t, fx)
	require.NoError(t, u.Select(doc("a.pdf", "application/pdf", 10)))

	u.Close(context.Background())

	assert.False(t, u.Submit(context.Background()))
	assert.Equal(t, Selected, u.State())
	assert.Zero(t, u.Generation())
	fx.assertNoCall(t)
}
