package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"codeberg.org/snonux/batchlingo/internal/domain"
	"codeberg.org/snonux/batchlingo/internal/retry"
	"codeberg.org/snonux/batchlingo/internal/store"
	"codeberg.org/snonux/batchlingo/internal/translate"
)

// ErrEmptyBatch is returned when a batch is submitted with no valid inputs
var ErrEmptyBatch = errors.New("no valid inputs in batch")

// Config holds orchestrator settings
type Config struct {
	OutputDir   string        // root directory for translated images
	Concurrency int           // bounded worker pool size (default 4)
	CallTimeout time.Duration // per-attempt timeout for adapter calls (default 120s)
}

// DefaultConfig returns default orchestrator settings
func DefaultConfig() *Config {
	return &Config{
		OutputDir:   "outputs",
		Concurrency: 4,
		CallTimeout: 120 * time.Second,
	}
}

// Snapshot is a read-only view of a session and its file records
type Snapshot struct {
	Session *domain.Session
	Records []*domain.FileRecord
}

// Orchestrator drives concurrent translation of a session's file records
type Orchestrator struct {
	store    store.Store
	provider translate.Provider
	policy   *retry.Policy
	config   *Config

	mu      sync.Mutex
	running map[string]bool // sessions with an active run in this process
}

// New creates a new batch orchestrator
func New(s store.Store, provider translate.Provider, policy *retry.Policy, config *Config) *Orchestrator {
	if policy == nil {
		policy = retry.DefaultPolicy()
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = 120 * time.Second
	}

	return &Orchestrator{
		store:    s,
		provider: provider,
		policy:   policy,
		config:   config,
		running:  make(map[string]bool),
	}
}

// CreateSession validates the inputs and persists a new pending session with
// one pending file record per readable input. Returns ErrEmptyBatch when no
// input is readable.
func (o *Orchestrator) CreateSession(inputs []string, targetLanguage, promptVersion string) (*domain.Session, error) {
	var valid []string
	for _, input := range inputs {
		if info, err := os.Stat(input); err != nil || info.IsDir() {
			fmt.Fprintf(os.Stderr, "Warning: skipping unreadable input: %s\n", input)
			continue
		}
		valid = append(valid, input)
	}

	if len(valid) == 0 {
		return nil, ErrEmptyBatch
	}

	now := time.Now()
	session := &domain.Session{
		ID:             uuid.NewString(),
		CreatedAt:      now,
		TargetLanguage: targetLanguage,
		PromptVersion:  promptVersion,
		Status:         domain.SessionPending,
	}
	if err := o.store.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	records := make([]*domain.FileRecord, 0, len(valid))
	for _, input := range valid {
		records = append(records, &domain.FileRecord{
			ID:             uuid.NewString(),
			SessionID:      session.ID,
			SourceFilename: filepath.Base(input),
			InputRef:       input,
			Status:         domain.FilePending,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	if err := o.store.CreateFileRecords(records); err != nil {
		return nil, fmt.Errorf("failed to create file records: %w", err)
	}

	return session, nil
}

// Run executes a session's pending file records through a bounded worker
// pool. Duplicate calls on a running or finished session are no-ops that
// return the current snapshot. Per-file failures are recorded on the
// records, never raised: the caller always gets a structured snapshot.
func (o *Orchestrator) Run(ctx context.Context, sessionID string) (*Snapshot, error) {
	session, err := o.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != domain.SessionPending {
		return o.Status(sessionID)
	}

	o.mu.Lock()
	if o.running[sessionID] {
		o.mu.Unlock()
		return o.Status(sessionID)
	}
	o.running[sessionID] = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.running, sessionID)
		o.mu.Unlock()
	}()

	if err := o.store.UpdateSessionStatus(sessionID, domain.SessionRunning); err != nil {
		return nil, err
	}

	records, err := o.store.ListFileRecords(sessionID)
	if err != nil {
		return nil, err
	}

	prompt := translate.BuildPrompt(session.TargetLanguage)

	// Semaphore-bounded worker pool; stopDispatch is set once an auth
	// failure lands so no further records go out. storeFailed flags any
	// claim or update the store refused, so the run can be resumed later.
	sem := make(chan struct{}, o.config.Concurrency)
	var wg sync.WaitGroup
	var stopDispatch, storeFailed atomic.Bool

	for _, record := range records {
		if record.Status.Terminal() {
			continue
		}

		if stopDispatch.Load() {
			o.failWithoutDispatch(record.ID, domain.ErrorKindAuth, "credential rejected earlier in this batch", &storeFailed)
			continue
		}

		wg.Add(1)
		go func(record *domain.FileRecord) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			if stopDispatch.Load() {
				o.failWithoutDispatch(record.ID, domain.ErrorKindAuth, "credential rejected earlier in this batch", &storeFailed)
				return
			}

			// Records already in progress are stale claims from an
			// interrupted run; this run owns the session, so they are
			// re-processed without a fresh claim.
			if record.Status == domain.FilePending {
				claimed, err := o.store.ClaimFileRecord(record.ID)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to claim %s: %v\n", record.SourceFilename, err)
					storeFailed.Store(true)
					return
				}
				if !claimed {
					return
				}
			}

			if kind := o.processRecord(ctx, session, record, prompt, &storeFailed); kind == domain.ErrorKindAuth {
				stopDispatch.Store(true)
			}
		}(record)
	}

	wg.Wait()

	// Records never dispatched because the stop flag was set after the
	// dispatch loop passed them
	if stopDispatch.Load() {
		remaining, err := o.store.ListFileRecords(sessionID)
		if err != nil {
			storeFailed.Store(true)
		}
		for _, r := range remaining {
			if !r.Status.Terminal() {
				o.failWithoutDispatch(r.ID, domain.ErrorKindAuth, "credential rejected earlier in this batch", &storeFailed)
			}
		}
	}

	final, err := o.store.ListFileRecords(sessionID)
	if err != nil {
		return nil, err
	}

	// An interrupted or store-degraded run leaves records non-terminal;
	// park the session back in pending so a later run can finish it.
	status := domain.AggregateStatus(final)
	if status == domain.SessionRunning && (ctx.Err() != nil || storeFailed.Load()) {
		status = domain.SessionPending
	}
	if err := o.store.UpdateSessionStatus(sessionID, status); err != nil {
		return nil, err
	}

	return o.Status(sessionID)
}

// processRecord runs one file through the retry policy and persists the
// outcome. Returns the error kind of the outcome, ErrorKindNone on success.
func (o *Orchestrator) processRecord(ctx context.Context, session *domain.Session, record *domain.FileRecord, prompt string, storeFailed *atomic.Bool) domain.ErrorKind {
	start := time.Now()

	data, err := os.ReadFile(record.InputRef)
	if err != nil {
		// Input disappeared between enumeration and dispatch; no network
		// attempt is consumed.
		o.persistUpdate(record.ID, store.RecordUpdate{
			Status:       domain.FileFailed,
			ErrorKind:    domain.ErrorKindPermanent,
			ErrorMessage: fmt.Sprintf("input unreadable: %v", err),
			AttemptCount: 0,
			DurationMS:   time.Since(start).Milliseconds(),
		}, storeFailed)
		return domain.ErrorKindPermanent
	}

	req := &translate.Request{
		ImageData:      data,
		MIMEType:       translate.GuessMIMEType(record.SourceFilename),
		TargetLanguage: session.TargetLanguage,
		Prompt:         prompt,
	}

	var result *translate.Result
	outcome := o.policy.Execute(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
		defer cancel()

		res, err := o.provider.TranslateImage(callCtx, req)
		if err != nil {
			return err
		}
		result = res
		return nil
	})

	durationMS := time.Since(start).Milliseconds()

	if outcome.Err != nil {
		kind := translate.KindOf(outcome.Err)
		o.persistUpdate(record.ID, store.RecordUpdate{
			Status:       domain.FileFailed,
			ErrorKind:    kind,
			ErrorMessage: outcome.Err.Error(),
			AttemptCount: outcome.Attempts,
			DurationMS:   durationMS,
		}, storeFailed)
		return kind
	}

	outputRef, err := o.writeOutput(session.ID, record.SourceFilename, result)
	if err != nil {
		o.persistUpdate(record.ID, store.RecordUpdate{
			Status:       domain.FileFailed,
			ErrorKind:    domain.ErrorKindPermanent,
			ErrorMessage: fmt.Sprintf("failed to write output: %v", err),
			AttemptCount: outcome.Attempts,
			DurationMS:   durationMS,
		}, storeFailed)
		return domain.ErrorKindPermanent
	}

	o.persistUpdate(record.ID, store.RecordUpdate{
		Status:       domain.FileSuccess,
		OutputRef:    outputRef,
		AttemptCount: outcome.Attempts,
		DurationMS:   durationMS,
	}, storeFailed)
	return domain.ErrorKindNone
}

// persistUpdate writes a record outcome, flagging the run for resume when
// the store refuses the write
func (o *Orchestrator) persistUpdate(recordID string, update store.RecordUpdate, storeFailed *atomic.Bool) {
	if _, err := o.store.UpdateFileRecord(recordID, update); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to persist outcome for record %s: %v\n", recordID, err)
		storeFailed.Store(true)
	}
}

// failWithoutDispatch marks a record failed without consuming an attempt
func (o *Orchestrator) failWithoutDispatch(recordID string, kind domain.ErrorKind, message string, storeFailed *atomic.Bool) {
	o.persistUpdate(recordID, store.RecordUpdate{
		Status:       domain.FileFailed,
		ErrorKind:    kind,
		ErrorMessage: message,
		AttemptCount: 0,
	}, storeFailed)
}

// writeOutput saves a translated image under the session's output directory
func (o *Orchestrator) writeOutput(sessionID, sourceFilename string, result *translate.Result) (string, error) {
	dir := filepath.Join(o.config.OutputDir, sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	stem := strings.TrimSuffix(sourceFilename, filepath.Ext(sourceFilename))
	name := stem + "_translated" + translate.ExtFromMIME(result.MIMEType)
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, result.ImageData, 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}

// Status returns a read-only snapshot of a session and its records. It is
// valid to call while a run is in flight; the snapshot reflects partial
// progress.
func (o *Orchestrator) Status(sessionID string) (*Snapshot, error) {
	session, err := o.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	records, err := o.store.ListFileRecords(sessionID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Session: session, Records: records}, nil
}
