// ABOUTME: Person commands: search, detail, update, delete, dossier export and linking
// ABOUTME: Links run one call per item and report partial failures as warnings

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/2389/antecedentes/internal/api"
	"github.com/2389/antecedentes/internal/linking"
	"github.com/2389/antecedentes/internal/model"
	"github.com/2389/antecedentes/internal/report"
	"github.com/2389/antecedentes/internal/search"
)

func (a *app) cmdPersons(ctx context.Context, args []string) error {
	subcmd := "search"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "search", "list", "ls":
		return a.cmdPersonsSearch(ctx, args)
	case "show", "get":
		return a.cmdPersonsShow(ctx, args)
	case "new", "create":
		return a.cmdPersonsNew(ctx)
	case "update", "edit":
		return a.cmdPersonsUpdate(ctx, args)
	case "delete", "rm", "remove":
		return a.cmdPersonsDelete(ctx, args)
	case "export":
		return a.cmdPersonsExport(ctx, args)
	case "link-record":
		return a.cmdPersonsLinkRecord(ctx, args)
	case "unlink-record":
		return a.cmdPersonsUnlinkRecord(ctx, args)
	case "link-person":
		return a.cmdPersonsLinkPerson(ctx, args)
	case "unlink-person":
		return a.cmdPersonsUnlinkPerson(ctx, args)
	default:
		return fmt.Errorf("unknown persons subcommand: %s (use search, show, new, update, delete, export, link-record, unlink-record, link-person, unlink-person)", subcmd)
	}
}

func (a *app) cmdPersonsSearch(ctx context.Context, args []string) error {
	f, err := parseFlags(args, []string{"names", "lastnames", "identification", "address", "page"}, nil)
	if err != nil {
		return err
	}
	if _, err := a.require(ctx); err != nil {
		return err
	}
	page, err := f.page()
	if err != nil {
		return err
	}

	criteria := search.PersonCriteria{
		Names:          f.get("names"),
		Lastnames:      f.get("lastnames"),
		Identification: f.get("identification"),
		Address:        f.get("address"),
	}
	view := search.NewView[model.Person](a.cfg.Search.PageSize)
	if err := view.Run(ctx, criteria, a.client.Persons.Search); err != nil {
		if errors.Is(err, search.ErrEmptyCriteria) {
			return fmt.Errorf("%w (use --names, --lastnames, --identification or --address)", err)
		}
		return err
	}
	view.SetPage(page)

	heading("Persons")
	if view.State() == search.StateEmpty {
		fmt.Println("  (no persons match)")
		fmt.Println()
		return nil
	}
	printPersons(view.PageItems())
	printPageControl(view.Page(), view.PageCount(), view.Total())
	fmt.Println()
	return nil
}

// loadPerson fetches a person with its linked records and connections.
func (a *app) loadPerson(ctx context.Context, id int64) (*model.Person, error) {
	p, err := a.client.Persons.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	linked, err := a.client.Persons.Linked(ctx, id)
	if err != nil {
		return nil, err
	}
	p.RecordRelationships = linked.Records
	p.Connections = linked.Connections
	return p, nil
}

func (a *app) cmdPersonsShow(ctx context.Context, args []string) error {
	f, err := parseFlags(args, nil, nil)
	if err != nil {
		return err
	}
	id, err := f.id(0, "person id")
	if err != nil {
		return err
	}
	if _, err := a.require(ctx); err != nil {
		return err
	}

	p, err := a.loadPerson(ctx, id)
	if err != nil {
		return notFound(err, "person", id)
	}
	printPerson(p)
	return nil
}

func printPerson(p *model.Person) {
	heading(orDash(p.FullName()))
	field("ID", fmt.Sprintf("%d", p.ID))
	field("Identification", fmt.Sprintf("%s (%s)", p.Identification, p.IdentificationType))
	field("Address", p.Address)
	field("Province", p.Province)
	field("Country", p.Country)
	field("Observations", p.Observations)
	field("Created", p.CreatedAt.Short())
	field("Updated", p.UpdatedAt.Short())

	images, docs := p.Images(), p.Documents()
	heading(fmt.Sprintf("Images (%d)", len(images)))
	if len(images) > 0 {
		printFiles(images)
	}
	heading(fmt.Sprintf("Documents (%d)", len(docs)))
	if len(docs) > 0 {
		printFiles(docs)
	}
	heading(fmt.Sprintf("Records (%d)", len(p.RecordRelationships)))
	if len(p.RecordRelationships) > 0 {
		printLinkedRecords(p.RecordRelationships)
	}
	heading(fmt.Sprintf("Connections (%d)", len(p.Connections)))
	if len(p.Connections) > 0 {
		printConnections(p.Connections)
	}
	fmt.Println()
}

func (a *app) cmdPersonsUpdate(ctx context.Context, args []string) error {
	f, err := parseFlags(args, []string{
		"identification", "identification-type", "names", "lastnames",
		"address", "province", "country", "observations",
	}, nil)
	if err != nil {
		return err
	}
	id, err := f.id(0, "person id")
	if err != nil {
		return err
	}
	if _, err := a.requireWrite(ctx); err != nil {
		return err
	}

	p, err := a.client.Persons.Get(ctx, id)
	if err != nil {
		return err
	}
	in := model.PersonInputFrom(p)
	set := func(flag string, dst *string) {
		if f.has(flag) {
			*dst = f.get(flag)
		}
	}
	set("identification", &in.Identification)
	set("identification-type", &in.IdentificationType)
	set("names", &in.Names)
	set("lastnames", &in.Lastnames)
	set("address", &in.Address)
	set("province", &in.Province)
	set("country", &in.Country)
	set("observations", &in.Observations)
	in.IdentificationType = strings.ToUpper(strings.TrimSpace(in.IdentificationType))

	updated, err := a.client.Persons.Update(ctx, id, in)
	if err != nil {
		return err
	}
	success("Updated person %d: %s", updated.ID, updated.FullName())
	return nil
}

func (a *app) cmdPersonsDelete(ctx context.Context, args []string) error {
	f, err := parseFlags(args, nil, []string{"yes"})
	if err != nil {
		return err
	}
	id, err := f.id(0, "person id")
	if err != nil {
		return err
	}
	if _, err := a.requireWrite(ctx); err != nil {
		return err
	}

	p, err := a.client.Persons.Get(ctx, id)
	if err != nil {
		return err
	}
	if !a.confirm(fmt.Sprintf("Delete %s (%s) and all of their files?", p.FullName(), p.Identification), f.bool("yes")) {
		fmt.Println("Aborted.")
		return nil
	}
	if err := a.client.Persons.Delete(ctx, id); err != nil {
		return err
	}
	success("Deleted person %d", id)
	return nil
}

func (a *app) cmdPersonsExport(ctx context.Context, args []string) error {
	f, err := parseFlags(args, []string{"out"}, []string{"html"})
	if err != nil {
		return err
	}
	id, err := f.id(0, "person id")
	if err != nil {
		return err
	}
	if _, err := a.require(ctx); err != nil {
		return err
	}

	p, err := a.loadPerson(ctx, id)
	if err != nil {
		return err
	}
	out := []byte(report.Markdown(p))
	if f.bool("html") {
		title := p.FullName()
		if title == "" {
			title = fmt.Sprintf("person %d", p.ID)
		}
		if out, err = report.RenderHTML(title, string(out)); err != nil {
			return fmt.Errorf("rendering dossier: %w", err)
		}
	}

	path := f.get("out")
	if path == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing dossier: %w", err)
	}
	success("Wrote dossier for %s to %s", p.FullName(), path)
	return nil
}

func parseRelationship(s string) (model.RelationshipType, error) {
	if s == "" {
		return model.RelationshipInvolved, nil
	}
	t, ok := model.ParseRelationshipType(s)
	if !ok {
		return "", fmt.Errorf("unknown relationship type %q (use %s)", s, joinTypes(model.RelationshipTypes))
	}
	return t, nil
}

func parseConnection(s string) (model.ConnectionType, error) {
	if s == "" {
		return "", fmt.Errorf("--type is required (use %s)", joinTypes(model.ConnectionTypes()))
	}
	t, ok := model.ParseConnectionType(s)
	if !ok {
		return "", fmt.Errorf("unknown connection type %q (use %s)", s, joinTypes(model.ConnectionTypes()))
	}
	return t, nil
}

func joinTypes[T ~string](types []T) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func printAlreadyLinked(ids []int64, what string) {
	for _, id := range ids {
		warn("%s %d is already linked, skipped", what, id)
	}
}

func printLinkReport(r linking.Report, what string) {
	if r.SuccessCount > 0 {
		success("Linked %d %s", r.SuccessCount, what)
	}
	for _, w := range r.Warnings {
		warn("%s", w)
	}
	if r.SuccessCount == 0 && r.ErrorCount == 0 {
		fmt.Println("Nothing to link.")
	}
}

func (a *app) cmdPersonsLinkRecord(ctx context.Context, args []string) error {
	f, err := parseFlags(args, []string{"type"}, nil)
	if err != nil {
		return err
	}
	personID, err := f.id(0, "person id")
	if err != nil {
		return err
	}
	recordIDs, err := f.ids(1, "record id")
	if err != nil {
		return err
	}
	rel, err := parseRelationship(f.get("type"))
	if err != nil {
		return err
	}
	if _, err := a.requireWrite(ctx); err != nil {
		return err
	}

	linked, err := a.client.Persons.Linked(ctx, personID)
	if err != nil {
		return notFound(err, "person", personID)
	}
	linkedRecords, _ := linking.LinkedIDs(linked)
	recordIDs, already := linking.Partition(recordIDs, linkedRecords)
	printAlreadyLinked(already, "record")

	r := linking.LinkRecords(ctx, a.client.Persons, personID, recordIDs, rel)
	printLinkReport(r, "record(s) as "+string(rel))
	if !r.OK() {
		return fmt.Errorf("%s", r.Summary())
	}
	return nil
}

func (a *app) cmdPersonsLinkPerson(ctx context.Context, args []string) error {
	f, err := parseFlags(args, []string{"type"}, nil)
	if err != nil {
		return err
	}
	personID, err := f.id(0, "person id")
	if err != nil {
		return err
	}
	otherIDs, err := f.ids(1, "other person id")
	if err != nil {
		return err
	}
	t, err := parseConnection(f.get("type"))
	if err != nil {
		return err
	}
	if _, err := a.requireWrite(ctx); err != nil {
		return err
	}

	linked, err := a.client.Persons.Linked(ctx, personID)
	if err != nil {
		return notFound(err, "person", personID)
	}
	otherIDs, self := linking.Partition(otherIDs, []int64{personID})
	if len(self) > 0 {
		warn("person %d cannot be linked to itself, skipped", personID)
	}
	_, connected := linking.LinkedIDs(linked)
	otherIDs, already := linking.Partition(otherIDs, connected)
	printAlreadyLinked(already, "person")

	r := linking.LinkPersons(ctx, a.client.Persons, personID, otherIDs, t)
	printLinkReport(r, "person(s) as "+string(t))
	if !r.OK() {
		return fmt.Errorf("%s", r.Summary())
	}
	return nil
}

func (a *app) cmdPersonsUnlinkRecord(ctx context.Context, args []string) error {
	f, err := parseFlags(args, nil, []string{"yes"})
	if err != nil {
		return err
	}
	personID, err := f.id(0, "person id")
	if err != nil {
		return err
	}
	recordID, err := f.id(1, "record id")
	if err != nil {
		return err
	}
	if _, err := a.requireWrite(ctx); err != nil {
		return err
	}

	rels, ok, err := linking.Unlink(ctx,
		func() bool {
			return a.confirm(fmt.Sprintf("Unlink record %d from person %d?", recordID, personID), f.bool("yes"))
		},
		func(ctx context.Context) error { return a.client.Persons.UnlinkRecord(ctx, personID, recordID) },
		func(ctx context.Context) ([]model.PersonRecordRelationship, error) {
			linked, err := a.client.Persons.Linked(ctx, personID)
			if err != nil {
				return nil, err
			}
			return linked.Records, nil
		},
	)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Aborted.")
		return nil
	}
	success("Unlinked record %d", recordID)
	heading(fmt.Sprintf("Records (%d)", len(rels)))
	if len(rels) > 0 {
		printLinkedRecords(rels)
	}
	fmt.Println()
	return nil
}

func (a *app) cmdPersonsUnlinkPerson(ctx context.Context, args []string) error {
	f, err := parseFlags(args, nil, []string{"yes"})
	if err != nil {
		return err
	}
	personID, err := f.id(0, "person id")
	if err != nil {
		return err
	}
	otherID, err := f.id(1, "other person id")
	if err != nil {
		return err
	}
	if _, err := a.requireWrite(ctx); err != nil {
		return err
	}

	conns, ok, err := linking.Unlink(ctx,
		func() bool {
			return a.confirm(fmt.Sprintf("Remove the connection between %d and %d?", personID, otherID), f.bool("yes"))
		},
		func(ctx context.Context) error { return a.client.Persons.UnlinkPerson(ctx, personID, otherID) },
		func(ctx context.Context) ([]model.PersonConnection, error) {
			linked, err := a.client.Persons.Linked(ctx, personID)
			if err != nil {
				return nil, err
			}
			return linked.Connections, nil
		},
	)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Aborted.")
		return nil
	}
	success("Removed connection to person %d", otherID)
	heading(fmt.Sprintf("Connections (%d)", len(conns)))
	if len(conns) > 0 {
		printConnections(conns)
	}
	fmt.Println()
	return nil
}

// notFound names the missing entity on a by-id 404.
func notFound(err error, what string, id int64) error {
	if api.IsNotFound(err) {
		return fmt.Errorf("%s %d not found", what, id)
	}
	return err
}
