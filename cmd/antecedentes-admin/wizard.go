// ABOUTME: Interactive person creation wizard on the terminal
// ABOUTME: Step 1 saves the person; files, records and connections unlock afterwards

package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/antecedentes/internal/linking"
	"github.com/2389/antecedentes/internal/model"
	"github.com/2389/antecedentes/internal/search"
	"github.com/2389/antecedentes/internal/wizard"
)

func (a *app) cmdPersonsNew(ctx context.Context) error {
	if _, err := a.requireWrite(ctx); err != nil {
		return err
	}

	w := wizard.New(wizard.ServicesFrom(a.client), wizard.Options{
		LookupDebounce:  a.cfg.Wizard.LookupDebounce,
		LookupMinLength: a.cfg.Wizard.LookupMinLength,
		PageSize:        a.cfg.Search.PageSize,
		Logger:          a.logger,
	})
	defer w.Close()

	cyan := color.New(color.FgCyan)
	cyan.Println("\nNew person (Enter accepts the value in brackets)")

	if err := a.wizardPersonal(ctx, w); err != nil {
		return err
	}

	for {
		printSteps(w)
		choice := a.prompt("Step to open (2 files, 3 records, 4 persons, 1 edit, f finish)", "f")
		var err error
		switch strings.ToLower(choice) {
		case "1":
			err = a.wizardPersonal(ctx, w)
		case "2":
			err = a.openStep(w, wizard.StepFiles, func() error { return a.wizardFiles(ctx, w) })
		case "3":
			err = a.openStep(w, wizard.StepRecords, func() error { return a.wizardRecords(ctx, w) })
		case "4":
			err = a.openStep(w, wizard.StepPersons, func() error { return a.wizardPersons(ctx, w) })
		case "f", "finish", "q":
			id, err := w.Finish()
			if err != nil {
				return err
			}
			p, err := a.loadPerson(ctx, id)
			if err != nil {
				return err
			}
			printPerson(p)
			return nil
		default:
			warn("unknown choice %q", choice)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			color.Red("  %s\n", describe(err))
		}
	}
}

func (a *app) openStep(w *wizard.Wizard, step wizard.Step, run func() error) error {
	if err := w.Activate(step); err != nil {
		return err
	}
	return run()
}

func printSteps(w *wizard.Wizard) {
	fmt.Println()
	for _, s := range wizard.Steps {
		mark := "  "
		switch {
		case w.Completed(s):
			mark = color.GreenString("✓ ")
		case !w.Unlocked(s):
			mark = color.HiBlackString("× ")
		}
		current := ""
		if w.Current() == s {
			current = color.CyanString(" <")
		}
		fmt.Printf("  %s%d. %s%s\n", mark, int(s), s, current)
	}
	fmt.Printf("  %d of %d steps completed\n\n", w.CompletedCount(), len(wizard.Steps))
}

// wizardPersonal runs step 1 until the person is saved.
func (a *app) wizardPersonal(ctx context.Context, w *wizard.Wizard) error {
	if err := w.Activate(wizard.StepPersonal); err != nil {
		return err
	}
	for {
		in := w.Form()
		if w.Person() == nil {
			typ := a.prompt("Identification type (CEDULA/RUC/PASAPORTE)", orDefault(in.IdentificationType, model.IdentificationCedula))
			ident := a.prompt("Identification", in.Identification)
			if ident == "" {
				return fmt.Errorf("identification is required")
			}

			found, err := w.LookupIdentification(ctx, ident)
			if err != nil {
				warn("lookup failed: %s", describe(err))
			}
			if found != nil {
				fmt.Printf("  Found %s (%s), person %d\n", found.FullName(), found.Identification, found.ID)
				if a.confirm("  Use this person?", false) {
					if err := w.SubmitPersonal(ctx); err != nil {
						return err
					}
					success("Using person %d", found.ID)
					return nil
				}
				continue
			}
			in = w.Form()
			in.IdentificationType = strings.ToUpper(typ)
		}

		in.Names = a.prompt("Names", in.Names)
		in.Lastnames = a.prompt("Lastnames", in.Lastnames)
		in.Address = a.prompt("Address", in.Address)
		in.Province = a.prompt("Province", in.Province)
		in.Country = a.prompt("Country", in.Country)
		in.Observations = a.prompt("Observations", in.Observations)
		w.SetForm(in)

		err := w.SubmitPersonal(ctx)
		if err == nil {
			p := w.Person()
			success("Saved person %d: %s", p.ID, p.FullName())
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		printFieldErrors(w.FieldErrors(), err)
	}
}

func printFieldErrors(errs model.ValidationErrors, err error) {
	if len(errs) == 0 {
		color.Red("  %s\n", describe(err))
		return
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		color.Red("  %s: %s\n", f, errs[f])
	}
}

func (a *app) wizardFiles(ctx context.Context, w *wizard.Wizard) error {
	st := w.Staging()
	for {
		path := a.prompt("File path (empty to upload)", "")
		if path == "" {
			break
		}
		desc := a.prompt("Description", "")
		it, err := st.Add(path, desc)
		if err != nil {
			warn("%s", describe(err))
			continue
		}
		fmt.Printf("  staged %s (%s, %s)\n", it.Name, it.Kind, byteSize(it.Size))
	}
	if st.Len() == 0 {
		fmt.Println("  Nothing staged.")
		return nil
	}

	r, err := w.UploadFiles(ctx)
	if err != nil {
		return err
	}
	if err := printUploadReport(r); err != nil {
		warn("%s; failed files stay staged", err)
	}
	return nil
}

func (a *app) wizardRecords(ctx context.Context, w *wizard.Wizard) error {
	for {
		printLinkedRecords(w.LinkedRecords())
		choice := a.prompt("Records: s search and link, n new record, b back", "b")
		switch strings.ToLower(choice) {
		case "s":
			criteria := search.RecordCriteria{
				Title:      a.prompt("  Title", ""),
				TypeRecord: strings.ToUpper(a.prompt("  Type", "")),
				PersonName: a.prompt("  Person name", ""),
			}
			if err := w.SearchRecords(ctx, criteria); err != nil {
				warn("%s", describe(err))
				continue
			}
			cands := w.RecordCandidates()
			if len(cands) == 0 {
				fmt.Println("  (no records available to link)")
				continue
			}
			printRecords(firstPage(cands, w.RecordView().PageSize()))
			if !selectIDs(a, &w.RecordWidget().Selection, linking.RecordID, cands) {
				continue
			}
			rel, err := parseRelationship(a.prompt("  Relationship", string(model.RelationshipInvolved)))
			if err != nil {
				warn("%s", err)
				continue
			}
			r, err := w.LinkRecords(ctx, rel)
			if err != nil {
				warn("%s", describe(err))
				continue
			}
			printLinkReport(r, "record(s)")
		case "n":
			in := model.RecordInput{
				Title:      a.prompt("  Title", ""),
				TypeRecord: strings.ToUpper(a.prompt("  Type", string(model.RecordTypeTheft))),
			}
			if t, _ := model.ParseRecordType(in.TypeRecord); t == model.RecordTypeOther {
				in.CustomType = a.prompt("  Custom type label", "")
			}
			in.Date = a.prompt("  Date (YYYY-MM-DD)", "")
			in.Content = a.prompt("  Content", "")
			rel, err := parseRelationship(a.prompt("  Relationship", string(model.RelationshipInvolved)))
			if err != nil {
				warn("%s", err)
				continue
			}
			in.TypeRelationship = rel
			rec, err := w.CreateAndLinkRecord(ctx, in)
			if err != nil {
				warn("%s", describe(err))
				continue
			}
			success("Created and linked record %d: %s", rec.ID, rec.Title)
		default:
			return nil
		}
	}
}

func (a *app) wizardPersons(ctx context.Context, w *wizard.Wizard) error {
	for {
		printConnections(w.Connections())
		choice := a.prompt("Persons: s search and link, b back", "b")
		if strings.ToLower(choice) != "s" {
			return nil
		}
		criteria := search.PersonCriteria{
			Names:          a.prompt("  Names", ""),
			Lastnames:      a.prompt("  Lastnames", ""),
			Identification: a.prompt("  Identification", ""),
		}
		if err := w.SearchPersons(ctx, criteria); err != nil {
			warn("%s", describe(err))
			continue
		}
		cands := w.PersonCandidates()
		if len(cands) == 0 {
			fmt.Println("  (no persons available to link)")
			continue
		}
		printPersons(firstPage(cands, w.PersonView().PageSize()))
		if !selectIDs(a, &w.PersonWidget().Selection, linking.PersonID, cands) {
			continue
		}
		t, err := parseConnection(a.prompt("  Connection type", string(model.ConnectionContact)))
		if err != nil {
			warn("%s", err)
			continue
		}
		r, err := w.LinkPersons(ctx, t)
		if err != nil {
			warn("%s", describe(err))
			continue
		}
		printLinkReport(r, "person(s)")
	}
}

func firstPage[T any](items []T, size int) []T {
	if size <= 0 {
		size = search.DefaultPageSize
	}
	if len(items) > size {
		warn("showing %d of %d, refine the search to see the rest", size, len(items))
	}
	return search.Paginate(items, 1, size)
}

// selectIDs reads a comma or space separated list of ids and selects the
// ones present among candidates. It reports whether anything was selected.
func selectIDs[T any](a *app, sel *linking.Selection, id func(T) int64, candidates []T) bool {
	known := make(map[int64]bool, len(candidates))
	for _, c := range candidates {
		known[id(c)] = true
	}

	ids, err := parseIDList(a.prompt("  Select ids (comma separated)", ""))
	if err != nil {
		if !errors.Is(err, errNoIDs) {
			warn("%s", err)
		}
		return false
	}
	sel.Clear()
	for _, i := range ids {
		if !known[i] {
			warn("%d is not among the results", i)
			continue
		}
		sel.Set(i, true)
	}
	return sel.Len() > 0
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

var errNoIDs = errors.New("no ids given")

func parseIDList(s string) ([]int64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return nil, errNoIDs
	}
	out := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id: %s", f)
		}
		out = append(out, id)
	}
	return out, nil
}
