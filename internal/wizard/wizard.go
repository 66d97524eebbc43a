// ABOUTME: Multi-step person creation state machine
// ABOUTME: Step 1 creates or adopts a person; steps 2-4 attach files, records and persons

// Package wizard drives person creation in four steps. Every step commits
// through its own service calls, so abandoning the wizard leaves whatever was
// confirmed so far; partial completion is incomplete, never an error.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/2389/antecedentes/internal/api"
	"github.com/2389/antecedentes/internal/files"
	"github.com/2389/antecedentes/internal/linking"
	"github.com/2389/antecedentes/internal/model"
	"github.com/2389/antecedentes/internal/search"
)

var (
	// ErrStepLocked is returned when a step needs a person that does not exist yet.
	ErrStepLocked = errors.New("step locked until the person is saved")
	// ErrDuplicatePerson is returned when the identification already exists.
	ErrDuplicatePerson = errors.New("a person with this identification already exists")
	// ErrInvalidStep is returned for a step outside 1..4.
	ErrInvalidStep = errors.New("invalid step")
	// ErrNothingSelected is returned when linking with an empty selection.
	ErrNothingSelected = errors.New("nothing selected")
)

// PersonAPI is the person service as the wizard uses it.
type PersonAPI interface {
	linking.PersonLinker
	FindByIdentification(ctx context.Context, identification string) (*model.Person, error)
	Create(ctx context.Context, in model.PersonInput) (*model.Person, error)
	Update(ctx context.Context, id int64, in model.PersonInput) (*model.Person, error)
	Search(ctx context.Context, query url.Values) ([]model.Person, error)
	Linked(ctx context.Context, id int64) (*api.Linked, error)
}

// RecordAPI is the record service as the wizard uses it.
type RecordAPI interface {
	Search(ctx context.Context, query url.Values) ([]model.Record, error)
	Create(ctx context.Context, in model.RecordInput) (*model.Record, error)
}

// Services are the backends the wizard calls.
type Services struct {
	Persons PersonAPI
	Records RecordAPI
	Files   files.Uploader
}

// ServicesFrom binds the wizard to an API client.
func ServicesFrom(c *api.Client) Services {
	return Services{Persons: c.Persons, Records: c.Records, Files: c.Files}
}

// LookupResult is delivered after an identification lookup is applied.
type LookupResult struct {
	Identification string
	Person         *model.Person
	Err            error
}

// Options tunes the wizard.
type Options struct {
	LookupDebounce  time.Duration
	LookupMinLength int
	PageSize        int
	// OnLookup, when set, is called after each applied (non-stale) lookup.
	OnLookup func(LookupResult)
	Logger   *slog.Logger
}

const (
	defaultLookupDebounce  = 500 * time.Millisecond
	defaultLookupMinLength = 7
)

// Wizard is the creation state machine.
type Wizard struct {
	svc    Services
	opts   Options
	logger *slog.Logger

	mu          sync.Mutex
	form        model.PersonInput
	match       *model.Person
	personFound bool
	fieldErrors model.ValidationErrors
	lookupSeq   uint64
	timer       *time.Timer

	person    *model.Person
	current   Step
	completed map[Step]bool
	advanced  bool

	staging       *files.Staging
	recordView    *search.View[model.Record]
	recordWidget  *linking.Widget[model.Record]
	personView    *search.View[model.Person]
	personWidget  *linking.Widget[model.Person]
	linkedRecords []model.PersonRecordRelationship
	connections   []model.PersonConnection
}

// New creates a wizard at step 1.
func New(svc Services, opts Options) *Wizard {
	if opts.LookupDebounce <= 0 {
		opts.LookupDebounce = defaultLookupDebounce
	}
	if opts.LookupMinLength <= 0 {
		opts.LookupMinLength = defaultLookupMinLength
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "wizard")

	return &Wizard{
		svc:          svc,
		opts:         opts,
		logger:       logger,
		fieldErrors:  model.ValidationErrors{},
		current:      StepPersonal,
		completed:    map[Step]bool{},
		staging:      files.NewStaging(opts.Logger),
		recordView:   search.NewView[model.Record](opts.PageSize),
		recordWidget: linking.NewWidget(linking.RecordID, nil),
		personView:   search.NewView[model.Person](opts.PageSize),
		personWidget: linking.NewWidget(linking.PersonID, nil),
	}
}

// Current is the active step.
func (w *Wizard) Current() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Activate moves to step. Steps 2-4 return ErrStepLocked until a person exists.
func (w *Wizard) Activate(step Step) error {
	if !step.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStep, int(step))
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if step != StepPersonal && w.person == nil {
		return ErrStepLocked
	}
	w.current = step
	return nil
}

// Unlocked reports whether step can be activated.
func (w *Wizard) Unlocked(step Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return step == StepPersonal || (step.Valid() && w.person != nil)
}

// Completed reports whether step has been completed.
func (w *Wizard) Completed(step Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completed[step]
}

// CompletedCount is the number of completed steps.
func (w *Wizard) CompletedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, s := range Steps {
		if w.completed[s] {
			n++
		}
	}
	return n
}

func (w *Wizard) complete(step Step) {
	w.mu.Lock()
	w.completed[step] = true
	w.mu.Unlock()
}

// Person is the saved person, nil before step 1 succeeds.
func (w *Wizard) Person() *model.Person {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.person
}

func (w *Wizard) requirePerson() (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.person == nil {
		return 0, ErrStepLocked
	}
	return w.person.ID, nil
}

// Finish returns the person id for the detail view and releases staged
// previews. Nothing is rolled back.
func (w *Wizard) Finish() (int64, error) {
	id, err := w.requirePerson()
	if err != nil {
		return 0, err
	}
	w.Close()
	w.logger.Info("wizard finished", "person_id", id, "completed", w.CompletedCount())
	return id, nil
}

// Close stops a pending lookup and releases staged previews.
func (w *Wizard) Close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.lookupSeq++
	w.mu.Unlock()

	if err := w.staging.Close(); err != nil {
		w.logger.Warn("closing staging", "error", err)
	}
}
