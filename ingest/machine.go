package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lorekeep/ai"
	"github.com/poiesic/lorekeep/core"
	"github.com/poiesic/lorekeep/storage"
)

const (
	defaultAutoApproveThreshold  = 0.75
	defaultMaxExtractionAttempts = 3
	defaultExtractionBaseDelay   = time.Second
)

// Embedder is the embedding capability the machine depends on. It is
// satisfied by ai.FailoverEmbedder.
type Embedder interface {
	// Embed returns the vector and the model version that produced it.
	Embed(ctx context.Context, text string) ([]float32, string, error)

	// ModelVersion reports the model version that will serve the next call.
	ModelVersion() string
}

// Indexer receives committed embeddings so the vector index tracks the
// embedding store. The index is a derived projection; indexing errors
// are logged, not fatal, because Rebuild restores it from storage.
type Indexer interface {
	Upsert(noteID core.ID, vector []float32, modelVersion string) error
	Remove(noteID core.ID)
}

// run tracks one in-flight state machine execution.
type run struct {
	cancel     context.CancelFunc
	committing atomic.Bool
}

// entityLocks serializes writes per note ID so concurrent ingestion and
// edits of the same note cannot interleave.
type entityLocks struct {
	mu    sync.Mutex
	locks map[core.ID]*sync.Mutex
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: make(map[core.ID]*sync.Mutex)}
}

func (l *entityLocks) acquire(id core.ID) func() {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Machine drives submitted documents through extraction, assessment,
// embedding, and the quality gate, and is the sole writer of new
// embeddings. Tasks execute asynchronously on a worker pool; each task
// has at most one in-flight run.
type Machine struct {
	notes      storage.NoteRepository
	embeddings storage.EmbeddingRepository
	tasks      storage.TaskRepository
	reviews    storage.ReviewRepository
	audit      storage.AuditRepository

	embedder  Embedder
	extractor ai.Extractor
	assessor  *Assessor
	policy    Policy
	indexer   Indexer

	threshold             float64
	maxExtractionAttempts int
	extractionBaseDelay   time.Duration

	pool      *ants.Pool
	mu        sync.Mutex
	inFlight  map[string]*run
	noteLocks *entityLocks

	logger *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine) error

// WithPoolSize sets the worker pool size for concurrent task processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(m *Machine) error {
		if size < 1 {
			size = 1
		}
		if m.pool != nil {
			m.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		m.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) error {
		if logger != nil {
			m.logger = logger
		}
		return nil
	}
}

// WithThreshold sets the auto-approval confidence threshold.
// Default 0.75. The default is an example value, not a calibrated one;
// operators are expected to tune it.
func WithThreshold(threshold float64) Option {
	return func(m *Machine) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("threshold must be in [0,1], got %v", threshold)
		}
		m.threshold = threshold
		return nil
	}
}

// WithPolicy sets the transition policy. Default is DefaultPolicy.
func WithPolicy(policy Policy) Option {
	return func(m *Machine) error {
		if policy != nil {
			m.policy = policy
		}
		return nil
	}
}

// WithAssessor sets the confidence assessor. Default is NewAssessor().
func WithAssessor(assessor *Assessor) Option {
	return func(m *Machine) error {
		if assessor != nil {
			m.assessor = assessor
		}
		return nil
	}
}

// WithIndexer attaches a vector index that receives committed embeddings.
func WithIndexer(indexer Indexer) Option {
	return func(m *Machine) error {
		m.indexer = indexer
		return nil
	}
}

// WithExtractionRetry sets the retry budget for the external extraction
// call. Defaults: 3 attempts, 1s base delay.
func WithExtractionRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(m *Machine) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		m.maxExtractionAttempts = maxAttempts
		if baseDelay > 0 {
			m.extractionBaseDelay = baseDelay
		}
		return nil
	}
}

// NewMachine creates an ingestion state machine.
func NewMachine(
	notes storage.NoteRepository,
	embeddings storage.EmbeddingRepository,
	tasks storage.TaskRepository,
	reviews storage.ReviewRepository,
	audit storage.AuditRepository,
	embedder Embedder,
	extractor ai.Extractor,
	opts ...Option,
) (*Machine, error) {
	if notes == nil {
		return nil, ErrNoteRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if tasks == nil {
		return nil, ErrTaskRepositoryRequired
	}
	if reviews == nil {
		return nil, ErrReviewRepositoryRequired
	}
	if audit == nil {
		return nil, ErrAuditRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		notes:                 notes,
		embeddings:            embeddings,
		tasks:                 tasks,
		reviews:               reviews,
		audit:                 audit,
		embedder:              embedder,
		extractor:             extractor,
		assessor:              NewAssessor(),
		policy:                DefaultPolicy(),
		threshold:             defaultAutoApproveThreshold,
		maxExtractionAttempts: defaultMaxExtractionAttempts,
		extractionBaseDelay:   defaultExtractionBaseDelay,
		pool:                  pool,
		inFlight:              make(map[string]*run),
		noteLocks:             newEntityLocks(),
		logger:                slog.Default().With("component", "ingest"),
	}

	for _, opt := range opts {
		if optErr := opt(m); optErr != nil {
			m.Release()
			return nil, optErr
		}
	}
	return m, nil
}

// Release releases the worker pool. In-flight runs are cancelled.
// The machine should not be used after calling Release.
func (m *Machine) Release() {
	m.mu.Lock()
	for _, r := range m.inFlight {
		r.cancel()
	}
	m.mu.Unlock()
	if m.pool != nil {
		m.pool.Release()
	}
}

// SubmitOptions holds optional parameters for task submission.
type SubmitOptions struct {
	// ExtractedText, when non-empty, skips the external extraction call.
	ExtractedText string

	// Tags to attach to the resulting note.
	Tags []string

	// Type of the resulting note. Defaults to NoteTypeLiterature.
	Type core.NoteType

	// Provenance of the submission. Defaults to a human actor.
	Provenance core.Provenance
}

func (o *SubmitOptions) normalize() {
	if o.Type == 0 {
		o.Type = core.NoteTypeLiterature
	}
	if o.Provenance.Actor == 0 {
		o.Provenance.Actor = core.ActorHuman
	}
}

// Submit creates an ingestion task for a source document and starts its
// state machine run asynchronously. Returns the task ID.
func (m *Machine) Submit(ctx context.Context, source string, opts *SubmitOptions) (string, error) {
	if opts == nil {
		opts = &SubmitOptions{}
	}
	opts.normalize()

	task := &core.IngestionTask{
		Id:     uuid.NewString(),
		Source: source,
		State:  core.TaskStateReceived,
	}
	if err := core.ValidateTask(task); err != nil {
		return "", err
	}
	if err := m.tasks.AddTask(ctx, task); err != nil {
		return "", err
	}

	if err := m.start(task, opts); err != nil {
		return "", err
	}
	return task.Id, nil
}

// GetTaskStatus retrieves the current state of a task.
func (m *Machine) GetTaskStatus(ctx context.Context, taskID string) (*core.IngestionTask, error) {
	return m.tasks.GetTask(ctx, taskID)
}

// Retry re-runs a FAILED task from the beginning. A task with an
// in-flight run is rejected with ErrAlreadyInProgress.
func (m *Machine) Retry(ctx context.Context, taskID string) error {
	m.mu.Lock()
	_, running := m.inFlight[taskID]
	m.mu.Unlock()
	if running {
		return ErrAlreadyInProgress
	}

	task, err := m.tasks.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.State != core.TaskStateFailed {
		return fmt.Errorf("%w: state is %s", ErrTaskNotRetryable, task.State)
	}
	if err := m.policy.Allow(task, core.TaskStateReceived); err != nil {
		return err
	}

	task.State = core.TaskStateReceived
	task.ErrorDetail = ""
	task.RetryCount++
	if err := m.tasks.UpdateTask(ctx, task); err != nil {
		return err
	}
	opts := &SubmitOptions{}
	opts.normalize()
	return m.start(task, opts)
}

// Cancel aborts a task that has not yet begun writing records.
// Tasks in RECEIVED, EXTRACTING, or ASSESSING are cancellable; once
// EMBEDDING has begun, ErrCancellationTooLate is returned so no
// partial, unaudited write can be produced.
func (m *Machine) Cancel(ctx context.Context, taskID string) error {
	task, err := m.tasks.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	switch task.State {
	case core.TaskStateReceived, core.TaskStateExtracting, core.TaskStateAssessing:
	default:
		return fmt.Errorf("%w: state is %s", ErrCancellationTooLate, task.State)
	}

	m.mu.Lock()
	r := m.inFlight[taskID]
	m.mu.Unlock()
	if r != nil {
		if r.committing.Load() {
			return fmt.Errorf("%w: task is committing", ErrCancellationTooLate)
		}
		r.cancel()
		// The run observes the cancellation and records the terminal
		// state itself.
		return nil
	}

	if err := m.policy.Allow(task, core.TaskStateCancelled); err != nil {
		return err
	}
	task.State = core.TaskStateCancelled
	return m.tasks.UpdateTask(ctx, task)
}

// start registers the in-flight run and schedules it on the pool.
func (m *Machine) start(task *core.IngestionTask, opts *SubmitOptions) error {
	runCtx, cancel := context.WithCancel(context.Background())
	r := &run{cancel: cancel}

	m.mu.Lock()
	if _, exists := m.inFlight[task.Id]; exists {
		m.mu.Unlock()
		cancel()
		return ErrAlreadyInProgress
	}
	m.inFlight[task.Id] = r
	m.mu.Unlock()

	err := m.pool.Submit(func() {
		defer func() {
			cancel()
			m.mu.Lock()
			delete(m.inFlight, task.Id)
			m.mu.Unlock()
		}()
		m.runTask(runCtx, r, task, opts)
	})
	if err != nil {
		cancel()
		m.mu.Lock()
		delete(m.inFlight, task.Id)
		m.mu.Unlock()
		return err
	}
	return nil
}

// runTask executes the state machine for one task.
func (m *Machine) runTask(ctx context.Context, r *run, task *core.IngestionTask, opts *SubmitOptions) {
	logger := m.logger.With("task", task.Id, "source", task.Source)

	// RECEIVED -> EXTRACTING
	if err := m.transition(ctx, task, core.TaskStateExtracting); err != nil {
		m.fail(task, err, logger)
		return
	}

	text := opts.ExtractedText
	if text == "" {
		err := RetryWithBackoff(ctx, func() error {
			var extractErr error
			text, extractErr = m.extractor.Extract(ctx, task.Source)
			return extractErr
		}, m.maxExtractionAttempts, m.extractionBaseDelay, func(err error) bool {
			// Malformed sources are permanent; retrying cannot help.
			return errors.Is(err, ai.ErrExtractionFailed)
		})
		if err != nil {
			m.fail(task, fmt.Errorf("extraction: %w", err), logger)
			return
		}
	}

	// EXTRACTING -> ASSESSING
	if err := m.transition(ctx, task, core.TaskStateAssessing); err != nil {
		m.fail(task, err, logger)
		return
	}
	task.Confidence = m.assessor.Assess(task.Source, text, opts.Tags)
	logger.Debug("assessed submission", "confidence", task.Confidence)

	// ASSESSING -> EMBEDDING. Always proceeds regardless of score, so
	// low-confidence content still gets search context for review.
	if err := m.transition(ctx, task, core.TaskStateEmbedding); err != nil {
		m.fail(task, err, logger)
		return
	}

	vector, modelVersion, err := m.embedder.Embed(ctx, text)
	if err != nil {
		m.fail(task, fmt.Errorf("embedding: %w", err), logger)
		return
	}

	next := core.TaskStateAutoFinalized
	if task.Confidence < m.threshold {
		next = core.TaskStatePendingReview
	}
	if err := m.policy.Allow(task, next); err != nil {
		m.fail(task, err, logger)
		return
	}

	// Last cancellation checkpoint; past this point the commit runs to
	// completion and Cancel returns ErrCancellationTooLate.
	select {
	case <-ctx.Done():
		m.fail(task, ctx.Err(), logger)
		return
	default:
	}
	r.committing.Store(true)

	note, err := m.commit(context.WithoutCancel(ctx), task, text, vector, modelVersion, next, opts)
	if err != nil {
		m.fail(task, fmt.Errorf("finalize: %w", err), logger)
		return
	}

	m.indexUpsert(note.Id, vector, modelVersion)
	logger.Info("task completed", "state", task.State, "note", note.Id, "confidence", task.Confidence)
}

// commit atomically creates the note, its embedding record, the audit
// records, and (for the review path) the review item, and moves the
// task to its post-embedding state. Either everything commits or the
// task reverts to FAILED with no partial entity visible to queries.
func (m *Machine) commit(ctx context.Context, task *core.IngestionTask, text string, vector []float32, modelVersion string, next core.TaskState, opts *SubmitOptions) (*core.Note, error) {
	status := core.NoteStatusActive
	if next == core.TaskStatePendingReview {
		status = core.NoteStatusUnreviewed
	}

	note := &core.Note{
		Contents:   text,
		Type:       opts.Type,
		Tags:       opts.Tags,
		Status:     status,
		Quality:    task.Confidence,
		Provenance: opts.Provenance,
	}
	if err := core.ValidateNote(note); err != nil {
		return nil, err
	}

	actor := actorName(opts.Provenance)
	err := m.notes.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := m.notes.AddNotes(ctx, note); err != nil {
			return err
		}
		if err := m.embeddings.PutEmbedding(ctx, &core.EmbeddingRecord{
			NoteId:       note.Id,
			NoteVersion:  note.Version.Version,
			Vector:       vector,
			ModelVersion: modelVersion,
		}); err != nil {
			return err
		}
		if err := m.audit.Append(ctx, &core.AuditRecord{
			Actor:         actor,
			Action:        core.AuditActionNoteCreate,
			NoteId:        note.Id,
			NoteVersion:   note.Version.Version,
			Justification: fmt.Sprintf("ingested from %s (confidence %.2f)", task.Source, task.Confidence),
		}); err != nil {
			return err
		}
		if err := m.audit.Append(ctx, &core.AuditRecord{
			Actor:       actor,
			Action:      core.AuditActionEmbed,
			NoteId:      note.Id,
			NoteVersion: note.Version.Version,
		}); err != nil {
			return err
		}

		if next == core.TaskStatePendingReview {
			if err := m.reviews.AddReviewItem(ctx, &core.ReviewItem{
				Id:      uuid.NewString(),
				TaskId:  task.Id,
				NoteId:  note.Id,
				Reasons: []core.ReviewReason{core.ReviewReasonLowConfidence},
			}); err != nil {
				return err
			}
		}

		task.State = next
		task.NoteId = note.Id
		return m.tasks.UpdateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// EditNote replaces the content of a finalized note, bumping its version
// and re-embedding the new content. The old embedding is left in place,
// marked non-current. Re-submitting unchanged content that already has a
// current embedding under the active model version is a no-op.
func (m *Machine) EditNote(ctx context.Context, noteID core.ID, contents string, actor string, justification string) error {
	unlock := m.noteLocks.acquire(noteID)
	defer unlock()

	note, err := m.notes.GetNote(ctx, noteID)
	if err != nil {
		return err
	}
	if note.Status != core.NoteStatusActive {
		return fmt.Errorf("%w: status is %d", ErrNoteNotEditable, note.Status)
	}

	modelVersion := m.embedder.ModelVersion()
	if contents == note.Contents {
		if current, err := m.embeddings.GetCurrentEmbedding(ctx, noteID, modelVersion); err == nil &&
			current.NoteVersion == note.Version.Version {
			return nil
		}
		// Same content but no current embedding under this model; fall
		// through and embed without bumping the version.
		return m.reembed(ctx, note, actor)
	}

	vector, usedModel, err := m.embedder.Embed(ctx, contents)
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}

	note.Contents = contents
	note.Version.Version++

	err = m.notes.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := m.notes.UpdateNotes(ctx, note); err != nil {
			return err
		}
		if err := m.embeddings.PutEmbedding(ctx, &core.EmbeddingRecord{
			NoteId:       note.Id,
			NoteVersion:  note.Version.Version,
			Vector:       vector,
			ModelVersion: usedModel,
		}); err != nil {
			return err
		}
		if err := m.audit.Append(ctx, &core.AuditRecord{
			Actor:         actor,
			Action:        core.AuditActionNoteEdit,
			NoteId:        note.Id,
			NoteVersion:   note.Version.Version,
			Justification: justification,
		}); err != nil {
			return err
		}
		return m.audit.Append(ctx, &core.AuditRecord{
			Actor:       actor,
			Action:      core.AuditActionReembed,
			NoteId:      note.Id,
			NoteVersion: note.Version.Version,
		})
	})
	if err != nil {
		return err
	}

	m.indexUpsert(note.Id, vector, usedModel)
	return nil
}

// ReembedNote recomputes the embedding of a note's current version under
// the active model version. Idempotent: if a current embedding for the
// (note version, model version) pair already exists, nothing happens.
func (m *Machine) ReembedNote(ctx context.Context, noteID core.ID) error {
	unlock := m.noteLocks.acquire(noteID)
	defer unlock()

	note, err := m.notes.GetNote(ctx, noteID)
	if err != nil {
		return err
	}
	if !note.Searchable(true) {
		// Withdrawn and deleted notes keep their history but are never
		// re-embedded.
		return nil
	}

	modelVersion := m.embedder.ModelVersion()
	if current, err := m.embeddings.GetCurrentEmbedding(ctx, noteID, modelVersion); err == nil &&
		current.NoteVersion == note.Version.Version {
		return nil
	}
	return m.reembed(ctx, note, "reembed-worker")
}

// reembed embeds the note's current content and commits the record with
// its audit entry. Caller must hold the entity lock.
func (m *Machine) reembed(ctx context.Context, note *core.Note, actor string) error {
	vector, modelVersion, err := m.embedder.Embed(ctx, note.Contents)
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}

	err = m.notes.WithTransaction(ctx, func(ctx context.Context) error {
		if err := m.embeddings.PutEmbedding(ctx, &core.EmbeddingRecord{
			NoteId:       note.Id,
			NoteVersion:  note.Version.Version,
			Vector:       vector,
			ModelVersion: modelVersion,
		}); err != nil {
			return err
		}
		return m.audit.Append(ctx, &core.AuditRecord{
			Actor:       actor,
			Action:      core.AuditActionReembed,
			NoteId:      note.Id,
			NoteVersion: note.Version.Version,
		})
	})
	if err != nil {
		return err
	}

	m.indexUpsert(note.Id, vector, modelVersion)
	return nil
}

// transition checks the policy and persists the new state.
func (m *Machine) transition(ctx context.Context, task *core.IngestionTask, next core.TaskState) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if err := m.policy.Allow(task, next); err != nil {
		return err
	}
	task.State = next
	return m.tasks.UpdateTask(ctx, task)
}

// fail moves the task to its failure-terminal state. Cancellation is
// recorded as CANCELLED, everything else as FAILED with detail.
func (m *Machine) fail(task *core.IngestionTask, cause error, logger *slog.Logger) {
	ctx := context.Background()
	if errors.Is(cause, context.Canceled) {
		task.State = core.TaskStateCancelled
		task.ErrorDetail = ""
		if err := m.tasks.UpdateTask(ctx, task); err != nil {
			logger.Error("failed to record task cancellation", "err", err)
		}
		logger.Info("task cancelled")
		return
	}

	task.State = core.TaskStateFailed
	task.ErrorDetail = cause.Error()
	if err := m.tasks.UpdateTask(ctx, task); err != nil {
		logger.Error("failed to record task failure", "err", err)
	}
	logger.Warn("task failed", "err", cause)
}

func (m *Machine) indexUpsert(noteID core.ID, vector []float32, modelVersion string) {
	if m.indexer == nil {
		return
	}
	if err := m.indexer.Upsert(noteID, vector, modelVersion); err != nil {
		// The index is rebuilt from the embedding store, so divergence
		// here is recoverable; surface it loudly instead of failing the
		// committed transaction.
		m.logger.Error("vector index update failed, rebuild required", "note", noteID, "err", err)
	}
}

func actorName(p core.Provenance) string {
	if p.Actor == core.ActorAgent {
		if p.AgentVersion != "" {
			return "agent:" + p.AgentVersion
		}
		return "agent"
	}
	return "human"
}
