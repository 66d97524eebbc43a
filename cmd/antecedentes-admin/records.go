// ABOUTME: Record commands: search, detail, create, update, delete and stats
// ABOUTME: OTROS takes a custom label via --other, which is what gets stored

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2389/antecedentes/internal/model"
	"github.com/2389/antecedentes/internal/search"
)

var recordFlags = []string{"title", "type", "other", "date", "content", "observations"}

func (a *app) cmdRecords(ctx context.Context, args []string) error {
	subcmd := "search"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "search", "list", "ls":
		return a.cmdRecordsSearch(ctx, args)
	case "show", "get":
		return a.cmdRecordsShow(ctx, args)
	case "create", "add", "new":
		return a.cmdRecordsCreate(ctx, args)
	case "update", "edit":
		return a.cmdRecordsUpdate(ctx, args)
	case "delete", "rm", "remove":
		return a.cmdRecordsDelete(ctx, args)
	case "stats":
		return a.cmdDashboard(ctx)
	default:
		return fmt.Errorf("unknown records subcommand: %s (use search, show, create, update, delete, stats)", subcmd)
	}
}

func (a *app) cmdRecordsSearch(ctx context.Context, args []string) error {
	f, err := parseFlags(args, []string{"title", "content", "type", "person", "from", "to", "page"}, nil)
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

	criteria := search.RecordCriteria{
		Title:      f.get("title"),
		Content:    f.get("content"),
		TypeRecord: strings.ToUpper(f.get("type")),
		PersonName: f.get("person"),
		DateFrom:   f.get("from"),
		DateTo:     f.get("to"),
	}
	view := search.NewView[model.Record](a.cfg.Search.PageSize)
	if err := view.Run(ctx, criteria, a.client.Records.Search); err != nil {
		if errors.Is(err, search.ErrEmptyCriteria) {
			return fmt.Errorf("%w (use --title, --content, --type, --person, --from or --to)", err)
		}
		return err
	}
	view.SetPage(page)

	heading("Records")
	if view.State() == search.StateEmpty {
		fmt.Println("  (no records match)")
		fmt.Println()
		return nil
	}
	printRecords(view.PageItems())
	printPageControl(view.Page(), view.PageCount(), view.Total())
	fmt.Println()
	return nil
}

func (a *app) cmdRecordsShow(ctx context.Context, args []string) error {
	f, err := parseFlags(args, nil, nil)
	if err != nil {
		return err
	}
	id, err := f.id(0, "record id")
	if err != nil {
		return err
	}
	if _, err := a.require(ctx); err != nil {
		return err
	}

	r, err := a.client.Records.Get(ctx, id)
	if err != nil {
		return notFound(err, "record", id)
	}
	heading(orDash(r.Title))
	field("ID", fmt.Sprintf("%d", r.ID))
	field("Type", r.TypeRecord)
	field("Date", r.Date)
	field("Content", r.Content)
	field("Observations", r.Observations)
	field("Created", r.CreatedAt.Short())
	field("Updated", r.UpdatedAt.Short())
	fmt.Println()
	return nil
}

// applyRecordFlags overlays the given flags onto in.
func applyRecordFlags(f *flags, in *model.RecordInput) {
	set := func(flag string, dst *string) {
		if f.has(flag) {
			*dst = f.get(flag)
		}
	}
	set("title", &in.Title)
	set("type", &in.TypeRecord)
	set("other", &in.CustomType)
	set("date", &in.Date)
	set("content", &in.Content)
	set("observations", &in.Observations)
	// A custom label alone implies OTROS.
	if f.has("other") && !f.has("type") {
		in.TypeRecord = string(model.RecordTypeOther)
	}
}

func (a *app) cmdRecordsCreate(ctx context.Context, args []string) error {
	f, err := parseFlags(args, recordFlags, nil)
	if err != nil {
		return err
	}
	if _, err := a.requireWrite(ctx); err != nil {
		return err
	}

	var in model.RecordInput
	applyRecordFlags(f, &in)
	r, err := a.client.Records.Create(ctx, in)
	if err != nil {
		return err
	}
	success("Created record %d: %s (%s)", r.ID, r.Title, r.TypeRecord)
	return nil
}

func (a *app) cmdRecordsUpdate(ctx context.Context, args []string) error {
	f, err := parseFlags(args, recordFlags, nil)
	if err != nil {
		return err
	}
	id, err := f.id(0, "record id")
	if err != nil {
		return err
	}
	if _, err := a.requireWrite(ctx); err != nil {
		return err
	}

	r, err := a.client.Records.Get(ctx, id)
	if err != nil {
		return notFound(err, "record", id)
	}
	in := model.RecordInput{
		Title:        r.Title,
		Content:      r.Content,
		Observations: r.Observations,
		TypeRecord:   r.TypeRecord,
		Date:         r.Date,
	}
	applyRecordFlags(f, &in)

	updated, err := a.client.Records.Update(ctx, id, in)
	if err != nil {
		return err
	}
	success("Updated record %d: %s (%s)", updated.ID, updated.Title, updated.TypeRecord)
	return nil
}

func (a *app) cmdRecordsDelete(ctx context.Context, args []string) error {
	f, err := parseFlags(args, nil, []string{"yes"})
	if err != nil {
		return err
	}
	id, err := f.id(0, "record id")
	if err != nil {
		return err
	}
	if _, err := a.requireWrite(ctx); err != nil {
		return err
	}

	r, err := a.client.Records.Get(ctx, id)
	if err != nil {
		return notFound(err, "record", id)
	}
	if !a.confirm(fmt.Sprintf("Delete record %q?", r.Title), f.bool("yes")) {
		fmt.Println("Aborted.")
		return nil
	}
	if err := a.client.Records.Delete(ctx, id); err != nil {
		return err
	}
	success("Deleted record %d", id)
	return nil
}
