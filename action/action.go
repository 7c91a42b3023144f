// Package action implements the one-shot Action lifecycle from spec §3/§5:
// construct on the owning ("origin") goroutine, process() on any worker
// goroutine under an exclusive completion lock, then commit() back on the
// origin goroutine to finalize side effects. Four concrete Kinds exist —
// Import, Export, RenderPreview, SerializeSession — but they share one
// lifecycle implementation; session constructs each by supplying the
// process/commit closures rather than this package holding a back-reference
// to session.Session, per the redesign note in spec §9 ("re-architect as a
// handle/index... to avoid raw back-pointers").
//
// Grounded on gogpu-gg's internal/gpu.CoreCommandEncoder, which enforces an
// identical one-shot recording/finishing state machine (ErrEncoderNotRecording
// / ErrEncoderLocked / ErrEncoderFinished / ErrEncoderConsumed) with plain
// sentinel errors rather than a generic state-machine library.
package action

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/internal/goid"
)

// Kind identifies which of the four concrete Action variants a Base was
// constructed as (spec §3: Import, Export, RenderPreview, SerializeSession).
type Kind uint8

const (
	KindImport Kind = iota
	KindExport
	KindRenderPreview
	KindSerializeSession
)

func (k Kind) String() string {
	switch k {
	case KindImport:
		return "Import"
	case KindExport:
		return "Export"
	case KindRenderPreview:
		return "RenderPreview"
	case KindSerializeSession:
		return "SerializeSession"
	default:
		return "Unknown"
	}
}

// Errors returned by Action lifecycle violations.
var (
	// ErrAlreadyProcessing is returned by Process when it is called a
	// second time (concurrently or sequentially) on the same Action.
	ErrAlreadyProcessing = errors.New("action: process already called")
	// ErrNotProcessed is returned by Commit when Process has not yet
	// completed.
	ErrNotProcessed = errors.New("action: commit called before process completed")
	// ErrWrongThread is returned by Commit when called from a goroutine
	// other than the one that constructed the Action (spec §5's
	// concurrency-contract violation, kind WrongThread).
	ErrWrongThread = errors.New("action: commit must run on the action's origin goroutine")
)

// Action is the capability every concrete variant satisfies: a one-shot
// process/commit lifecycle plus a non-blocking completion probe.
type Action interface {
	Kind() Kind
	Process() error
	Commit() error
	Finished() bool
}

// Base implements Action. Embed it in a concrete wrapper type (see
// NewImport/NewExport/NewRenderPreview/NewSerializeSession) so the Kind
// shows up distinctly in logs and type switches while the lifecycle code
// lives exactly once.
type Base struct {
	kind   Kind
	origin uint64

	// completionLock is held exclusively for the duration of Process, so
	// Finished can probe it with a non-blocking TryLock per spec §5.
	completionLock sync.Mutex

	started atomic.Bool
	done    atomic.Bool
	err     error

	processFn func() error
	commitFn  func() error
}

// newBase constructs a Base whose origin is the calling goroutine.
func newBase(kind Kind, processFn, commitFn func() error) Base {
	return Base{
		kind:      kind,
		origin:    goid.Current(),
		processFn: processFn,
		commitFn:  commitFn,
	}
}

// NewImport constructs an Import action.
func NewImport(processFn, commitFn func() error) *Base {
	b := newBase(KindImport, processFn, commitFn)
	return &b
}

// NewExport constructs an Export action.
func NewExport(processFn, commitFn func() error) *Base {
	b := newBase(KindExport, processFn, commitFn)
	return &b
}

// NewRenderPreview constructs a RenderPreview action.
func NewRenderPreview(processFn, commitFn func() error) *Base {
	b := newBase(KindRenderPreview, processFn, commitFn)
	return &b
}

// NewSerializeSession constructs a SerializeSession action.
func NewSerializeSession(processFn, commitFn func() error) *Base {
	b := newBase(KindSerializeSession, processFn, commitFn)
	return &b
}

// Kind reports which concrete variant this Base backs.
func (b *Base) Kind() Kind { return b.kind }

// Process runs processFn under the exclusive completionLock. It may be
// called from any goroutine (a session.Session thread-pool worker, or the
// origin goroutine itself for a synchronous call). Calling it more than
// once returns ErrAlreadyProcessing without re-running processFn.
func (b *Base) Process() error {
	if !b.started.CompareAndSwap(false, true) {
		return ErrAlreadyProcessing
	}
	b.completionLock.Lock()
	defer b.completionLock.Unlock()
	err := b.processFn()
	b.err = err
	b.done.Store(true)
	return err
}

// Commit finalizes the action's side effects by running commitFn. It must
// be called from the same goroutine that constructed the Action
// (ErrWrongThread otherwise) and after Process has completed
// (ErrNotProcessed otherwise). If Process failed, Commit returns that
// error without running commitFn, per spec §7's propagation policy
// ("errors in process() prevent commit()").
func (b *Base) Commit() error {
	if goid.Current() != b.origin {
		return tonefx.NewError(tonefx.KindWrongThread, ErrWrongThread)
	}
	if !b.done.Load() {
		return ErrNotProcessed
	}
	if b.err != nil {
		return b.err
	}
	return b.commitFn()
}

// Finished is a non-blocking probe: it reports true once Process has been
// called and is not currently running (whether it succeeded or failed).
// It never blocks, per spec §5's "finished() is a non-blocking try_lock
// probe".
func (b *Base) Finished() bool {
	if !b.started.Load() {
		return false
	}
	if b.completionLock.TryLock() {
		b.completionLock.Unlock()
		return true
	}
	return false
}

// Err returns the error Process completed with, if any. Only meaningful
// once Finished() reports true.
func (b *Base) Err() error { return b.err }
