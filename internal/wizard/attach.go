// ABOUTME: Steps 2-4: staged file upload, record linking and person linking
// ABOUTME: Each item is its own call; reports carry successes and warnings

package wizard

import (
	"context"

	"github.com/2389/antecedentes/internal/files"
	"github.com/2389/antecedentes/internal/linking"
	"github.com/2389/antecedentes/internal/model"
	"github.com/2389/antecedentes/internal/search"
)

// Staging holds the files of step 2.
func (w *Wizard) Staging() *files.Staging { return w.staging }

// UploadFiles uploads every staged file to the person.
func (w *Wizard) UploadFiles(ctx context.Context) (files.UploadReport, error) {
	id, err := w.requirePerson()
	if err != nil {
		return files.UploadReport{}, err
	}
	report := w.staging.Upload(ctx, w.svc.Files, id)
	if len(report.Uploaded) > 0 {
		w.complete(StepFiles)
	}
	return report, nil
}

// refreshLinked reloads the person's links so candidates exclude them.
func (w *Wizard) refreshLinked(ctx context.Context) {
	id, err := w.requirePerson()
	if err != nil {
		return
	}
	linked, err := w.svc.Persons.Linked(ctx, id)
	if err != nil {
		w.logger.Warn("loading linked entities", "person_id", id, "error", err)
		return
	}

	recordIDs, personIDs := linking.LinkedIDs(linked)
	w.recordWidget.SetLinked(recordIDs)
	w.personWidget.SetLinked(append(personIDs, id))

	w.mu.Lock()
	w.linkedRecords = linked.Records
	w.connections = linked.Connections
	w.mu.Unlock()
}

// LinkedRecords are the records linked to the person so far.
func (w *Wizard) LinkedRecords() []model.PersonRecordRelationship {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.linkedRecords
}

// Connections are the persons linked to the person so far.
func (w *Wizard) Connections() []model.PersonConnection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connections
}

// RecordView holds the step 3 search results.
func (w *Wizard) RecordView() *search.View[model.Record] { return w.recordView }

// RecordWidget holds the step 3 selection and availability toggle.
func (w *Wizard) RecordWidget() *linking.Widget[model.Record] { return w.recordWidget }

// SearchRecords runs a record search for step 3.
func (w *Wizard) SearchRecords(ctx context.Context, c search.RecordCriteria) error {
	if _, err := w.requirePerson(); err != nil {
		return err
	}
	return w.recordView.Run(ctx, c, w.svc.Records.Search)
}

// RecordCandidates are the searched records the widget shows.
func (w *Wizard) RecordCandidates() []model.Record {
	return w.recordWidget.Visible(w.recordView.Results())
}

// LinkRecords links every selected record with the same relationship type.
// Linked records leave the selection; failed ones stay selected.
func (w *Wizard) LinkRecords(ctx context.Context, rel model.RelationshipType) (linking.Report, error) {
	id, err := w.requirePerson()
	if err != nil {
		return linking.Report{}, err
	}
	ids := w.recordWidget.Selection.IDs()
	if len(ids) == 0 {
		return linking.Report{}, ErrNothingSelected
	}

	report := linking.LinkRecords(ctx, w.svc.Persons, id, ids, rel)
	for _, linked := range report.Linked {
		w.recordWidget.Selection.Set(linked, false)
	}
	if report.SuccessCount > 0 {
		w.complete(StepRecords)
	}
	w.refreshLinked(ctx)
	return report, nil
}

// CreateAndLinkRecord creates a record for the person and links it with the
// relationship type returned by creation.
func (w *Wizard) CreateAndLinkRecord(ctx context.Context, in model.RecordInput) (*model.Record, error) {
	id, err := w.requirePerson()
	if err != nil {
		return nil, err
	}
	in.PersonID = id
	if in.TypeRelationship == "" {
		in.TypeRelationship = model.RelationshipInvolved
	}

	r, err := w.svc.Records.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	rel := r.TypeRelationship
	if rel == "" {
		rel = in.TypeRelationship
	}
	if _, err := w.svc.Persons.LinkRecord(ctx, id, r.ID, rel); err != nil {
		return r, err
	}

	w.complete(StepRecords)
	w.refreshLinked(ctx)
	return r, nil
}

// PersonView holds the step 4 search results.
func (w *Wizard) PersonView() *search.View[model.Person] { return w.personView }

// PersonWidget holds the step 4 selection and availability toggle.
func (w *Wizard) PersonWidget() *linking.Widget[model.Person] { return w.personWidget }

// SearchPersons runs a person search for step 4.
func (w *Wizard) SearchPersons(ctx context.Context, c search.PersonCriteria) error {
	if _, err := w.requirePerson(); err != nil {
		return err
	}
	return w.personView.Run(ctx, c, w.svc.Persons.Search)
}

// PersonCandidates are the searched persons, never including the person
// itself, minus the already linked ones while the toggle is on.
func (w *Wizard) PersonCandidates() []model.Person {
	out := w.personWidget.Visible(w.personView.Results())
	if w.personWidget.ShowOnlyAvailable {
		return out
	}
	if p := w.Person(); p != nil {
		return linking.Available(out, []int64{p.ID}, linking.PersonID)
	}
	return out
}

// LinkPersons connects every selected person with the same connection type.
func (w *Wizard) LinkPersons(ctx context.Context, t model.ConnectionType) (linking.Report, error) {
	id, err := w.requirePerson()
	if err != nil {
		return linking.Report{}, err
	}
	ids := w.personWidget.Selection.IDs()
	if len(ids) == 0 {
		return linking.Report{}, ErrNothingSelected
	}

	report := linking.LinkPersons(ctx, w.svc.Persons, id, ids, t)
	for _, linked := range report.Linked {
		w.personWidget.Selection.Set(linked, false)
	}
	if report.SuccessCount > 0 {
		w.complete(StepPersons)
	}
	w.refreshLinked(ctx)
	return report, nil
}
