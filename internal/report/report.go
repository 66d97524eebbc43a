// ABOUTME: Person dossier export as Markdown and standalone HTML
// ABOUTME: HTML is rendered with goldmark into an embedded page template

// Package report builds the printable dossier of a person: identity,
// attachments, linked records and connections.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/2389/antecedentes/internal/model"
)

//go:embed templates/dossier.html
var templateFS embed.FS

var page = template.Must(template.ParseFS(templateFS, "templates/dossier.html"))

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders the dossier of p.
func Markdown(p *model.Person) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escape(p.FullName()))

	b.WriteString("## Identity\n\n")
	b.WriteString("| Field | Value |\n| --- | --- |\n")
	row(&b, "ID", fmt.Sprint(p.ID))
	row(&b, "Identification", p.Identification)
	row(&b, "Document type", p.IdentificationType)
	row(&b, "Names", p.Names)
	row(&b, "Lastnames", p.Lastnames)
	row(&b, "Address", p.Address)
	row(&b, "Province", p.Province)
	row(&b, "Country", p.Country)
	row(&b, "Created", p.CreatedAt.Short())
	row(&b, "Updated", p.UpdatedAt.Short())
	b.WriteString("\n")

	if obs := strings.TrimSpace(p.Observations); obs != "" {
		fmt.Fprintf(&b, "## Observations\n\n%s\n\n", escape(obs))
	}

	writeFiles(&b, "Images", p.Images())
	writeFiles(&b, "Documents", p.Documents())
	writeRecords(&b, p.RecordRelationships)
	writeConnections(&b, p.Connections)
	return b.String()
}

func writeFiles(b *strings.Builder, title string, files []model.File) {
	fmt.Fprintf(b, "## %s (%d)\n\n", title, len(files))
	if len(files) == 0 {
		b.WriteString("None.\n\n")
		return
	}
	b.WriteString("| File | Type | Size | Description |\n| --- | --- | --- | --- |\n")
	for _, f := range files {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			cell(f.OriginalFilename), cell(f.MimeType), humanSize(f.FileSize), cell(f.Description))
	}
	b.WriteString("\n")
}

func writeRecords(b *strings.Builder, rels []model.PersonRecordRelationship) {
	fmt.Fprintf(b, "## Records (%d)\n\n", len(rels))
	if len(rels) == 0 {
		b.WriteString("None.\n\n")
		return
	}
	b.WriteString("| Record | Title | Type | Date | Relationship |\n| --- | --- | --- | --- | --- |\n")
	for _, rel := range rels {
		title, typ, date := "", "", ""
		if rel.Record != nil {
			title, typ, date = rel.Record.Title, rel.Record.TypeRecord, rel.Record.Date
		}
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s |\n",
			rel.RecordID, cell(title), cell(typ), cell(date), cell(string(rel.TypeRelationship)))
	}
	b.WriteString("\n")
}

func writeConnections(b *strings.Builder, conns []model.PersonConnection) {
	fmt.Fprintf(b, "## Connections (%d)\n\n", len(conns))
	if len(conns) == 0 {
		b.WriteString("None.\n\n")
		return
	}
	groups := []struct {
		title    string
		category model.ConnectionCategory
	}{
		{"Personal", model.CategoryPersonal},
		{"Criminal", model.CategoryCriminal},
		{"Other", model.CategoryOther},
	}
	for _, g := range groups {
		var rows []model.PersonConnection
		for _, c := range conns {
			if c.Category() == g.category {
				rows = append(rows, c)
			}
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", g.title)
		b.WriteString("| Person | Identification | Connection |\n| --- | --- | --- |\n")
		for _, c := range rows {
			name, ident := fmt.Sprintf("person %d", c.ConnectedPersonID), ""
			if c.Person != nil {
				name, ident = c.Person.FullName(), c.Person.Identification
			}
			fmt.Fprintf(b, "| %s | %s | %s |\n", cell(name), cell(ident), cell(string(c.ConnectionType)))
		}
		b.WriteString("\n")
	}
}

func row(b *strings.Builder, field, value string) {
	if strings.TrimSpace(value) == "" {
		value = "-"
	}
	fmt.Fprintf(b, "| %s | %s |\n", field, cell(value))
}

// cell makes a value safe inside a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	return strings.ReplaceAll(escape(s), "|", `\|`)
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`, "[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`,
)

func escape(s string) string { return mdEscaper.Replace(s) }

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

// RenderHTML converts a Markdown dossier into a standalone HTML page.
func RenderHTML(title, md string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title     string
		Content   template.HTML
		Generated string
	}{
		Title:     title,
		Content:   template.HTML(body.String()),
		Generated: time.Now().Format("2006-01-02 15:04"),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return out.Bytes(), nil
}
