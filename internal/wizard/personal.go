// ABOUTME: Step 1: personal data form, debounced identification lookup and submit
// ABOUTME: A found person is adopted as-is; otherwise the form is validated and created

package wizard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/2389/antecedentes/internal/api"
	"github.com/2389/antecedentes/internal/model"
)

// Form returns the personal data form.
func (w *Wizard) Form() model.PersonInput {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// SetForm replaces the form. The identification is kept in sync with lookups
// only through TypeIdentification and LookupIdentification.
func (w *Wizard) SetForm(in model.PersonInput) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form = in
}

// PersonFound reports whether the identification matched an existing person.
func (w *Wizard) PersonFound() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.personFound
}

// FieldErrors returns the field errors of the last submit.
func (w *Wizard) FieldErrors() model.ValidationErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(model.ValidationErrors, len(w.fieldErrors))
	for k, v := range w.fieldErrors {
		out[k] = v
	}
	return out
}

// TypeIdentification records a keystroke-level change of the identification.
// After the debounce a lookup runs for the latest value, provided it has the
// minimum length. A lookup superseded by newer input is discarded.
func (w *Wizard) TypeIdentification(ctx context.Context, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.form.Identification = value
	w.lookupSeq++
	seq := w.lookupSeq
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if len(strings.TrimSpace(value)) < w.opts.LookupMinLength {
		return
	}
	w.timer = time.AfterFunc(w.opts.LookupDebounce, func() {
		w.lookup(ctx, seq, value)
	})
}

// LookupIdentification sets the identification and looks it up right away,
// superseding any pending debounced lookup.
func (w *Wizard) LookupIdentification(ctx context.Context, value string) (*model.Person, error) {
	w.mu.Lock()
	w.form.Identification = value
	w.lookupSeq++
	seq := w.lookupSeq
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	res := w.lookup(ctx, seq, value)
	return res.Person, res.Err
}

func (w *Wizard) lookup(ctx context.Context, seq uint64, value string) LookupResult {
	found, err := w.svc.Persons.FindByIdentification(ctx, value)
	res := LookupResult{Identification: value, Person: found, Err: err}

	w.mu.Lock()
	if seq != w.lookupSeq {
		w.mu.Unlock()
		w.logger.Debug("discarding stale lookup", "identification", value)
		return res
	}
	w.timer = nil
	if err == nil {
		w.applyLookup(found)
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("identification lookup failed", "error", err)
	}
	if w.opts.OnLookup != nil {
		w.opts.OnLookup(res)
	}
	return res
}

// applyLookup fills the form from a match. Callers hold mu.
func (w *Wizard) applyLookup(found *model.Person) {
	if found == nil {
		w.match = nil
		w.personFound = false
		return
	}
	w.match = found
	w.personFound = true
	w.form = model.PersonInputFrom(found)
}

// SubmitPersonal saves step 1. A found person is adopted without a create
// call; otherwise the form is validated and created. A duplicate response
// becomes a field error on identification and returns ErrDuplicatePerson.
// Once a person exists, submitting again updates it. The first success
// completes step 1 and advances to step 2, once.
func (w *Wizard) SubmitPersonal(ctx context.Context) error {
	w.mu.Lock()
	in := w.form
	match := w.match
	existing := w.person
	w.fieldErrors = model.ValidationErrors{}
	w.mu.Unlock()

	var (
		p   *model.Person
		err error
	)
	switch {
	case existing == nil && match != nil && strings.EqualFold(strings.TrimSpace(in.Identification), strings.TrimSpace(match.Identification)):
		p = match
		w.logger.Info("adopted existing person", "person_id", p.ID)
	case existing == nil:
		p, err = w.svc.Persons.Create(ctx, in)
	default:
		p, err = w.svc.Persons.Update(ctx, existing.ID, in)
	}

	if err != nil {
		return w.submitFailed(err)
	}

	w.mu.Lock()
	w.person = p
	w.form = model.PersonInputFrom(p)
	w.completed[StepPersonal] = true
	if !w.advanced {
		w.advanced = true
		w.current = StepFiles
	}
	w.mu.Unlock()

	if existing == nil {
		w.personWidget.SetLinked([]int64{p.ID})
		w.refreshLinked(ctx)
	}
	return nil
}

func (w *Wizard) submitFailed(err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		for k, v := range verrs {
			w.fieldErrors[k] = v
		}
		return err
	}
	if api.IsDuplicate(err) {
		w.fieldErrors["identification"] = ErrDuplicatePerson.Error()
		return ErrDuplicatePerson
	}
	return err
}
