// ABOUTME: Terminal rendering: headings, tabwriter tables, page controls and prompts
// ABOUTME: Passwords are read without echo when stdin is a terminal

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/2389/antecedentes/internal/model"
	"github.com/2389/antecedentes/internal/search"
)

func heading(title string) {
	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  " + title)
	cyan.Println("  " + strings.Repeat("-", len([]rune(title))))
}

func success(format string, args ...any) {
	color.New(color.FgGreen).Printf("✓ "+format+"\n", args...)
}

func warn(format string, args ...any) {
	color.New(color.FgYellow).Printf("! "+format+"\n", args...)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func field(label, value string) {
	fmt.Printf("  %-16s %s\n", label+":", orDash(value))
}

func printPersons(people []model.Person) {
	w := newTable(os.Stdout)
	fmt.Fprintln(w, "  ID\tIDENTIFICATION\tNAMES\tLASTNAMES\tADDRESS")
	fmt.Fprintln(w, "  --\t--------------\t-----\t---------\t-------")
	for _, p := range people {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n",
			p.ID, p.Identification, truncate(p.Names, 24), truncate(p.Lastnames, 24), truncate(orDash(p.Address), 30))
	}
	w.Flush()
}

func printRecords(records []model.Record) {
	w := newTable(os.Stdout)
	fmt.Fprintln(w, "  ID\tTYPE\tDATE\tTITLE")
	fmt.Fprintln(w, "  --\t----\t----\t-----")
	for _, r := range records {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", r.ID, r.TypeRecord, orDash(r.Date), truncate(r.Title, 48))
	}
	w.Flush()
}

func printFiles(files []model.File) {
	w := newTable(os.Stdout)
	fmt.Fprintln(w, "  ID\tKIND\tNAME\tSIZE\tDESCRIPTION")
	fmt.Fprintln(w, "  --\t----\t----\t----\t-----------")
	for _, f := range files {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n",
			f.ID, f.Kind(), truncate(f.OriginalFilename, 32), byteSize(f.FileSize), truncate(orDash(f.Description), 32))
	}
	w.Flush()
}

func printLinkedRecords(rels []model.PersonRecordRelationship) {
	w := newTable(os.Stdout)
	fmt.Fprintln(w, "  RECORD\tRELATIONSHIP\tTYPE\tTITLE")
	fmt.Fprintln(w, "  ------\t------------\t----\t-----")
	for _, r := range rels {
		typ, title := "-", "-"
		if r.Record != nil {
			typ, title = r.Record.TypeRecord, truncate(r.Record.Title, 40)
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", r.RecordID, r.TypeRelationship, typ, title)
	}
	w.Flush()
}

func printConnections(conns []model.PersonConnection) {
	w := newTable(os.Stdout)
	fmt.Fprintln(w, "  PERSON\tCONNECTION\tCATEGORY\tNAME")
	fmt.Fprintln(w, "  ------\t----------\t--------\t----")
	for _, c := range conns {
		name := "-"
		if c.Person != nil {
			name = truncate(c.Person.FullName(), 40)
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", c.ConnectedPersonID, c.ConnectionType, c.Category(), name)
	}
	w.Flush()
}

// printPageControl renders the result count and the windowed page list.
func printPageControl(page, pages, total int) {
	if pages <= 1 {
		fmt.Printf("\n  %d result(s)\n", total)
		return
	}
	var b strings.Builder
	for _, it := range search.Window(page, pages) {
		switch {
		case it.Ellipsis:
			b.WriteString(" …")
		case it.Current:
			b.WriteString(" " + color.New(color.Bold).Sprintf("[%d]", it.Page))
		default:
			b.WriteString(" " + strconv.Itoa(it.Page))
		}
	}
	fmt.Printf("\n  %d result(s), page %d of %d:%s\n", total, page, pages, b.String())
}

func printStats(st *model.Stats) {
	heading("Dashboard")
	fmt.Printf("  Persons:   %d\n", st.TotalPersons)
	fmt.Printf("  Records:   %d\n", st.TotalRecords)
	fmt.Printf("  Files:     %d\n", st.TotalFiles)

	if len(st.RecordsByType) > 0 {
		heading("Records by type")
		types := make([]string, 0, len(st.RecordsByType))
		for t := range st.RecordsByType {
			types = append(types, t)
		}
		sort.Strings(types)
		w := newTable(os.Stdout)
		for _, t := range types {
			fmt.Fprintf(w, "  %s\t%d\n", t, st.RecordsByType[t])
		}
		w.Flush()
	}

	heading("Recent records")
	if len(st.RecentRecords) == 0 {
		fmt.Println("  (no records)")
	} else {
		printRecords(st.RecentRecords)
	}
	fmt.Println()
}

func byteSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

// prompt reads one line. On EOF the default is returned.
func (a *app) prompt(question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := a.in.ReadString('\n')
	if err != nil && input == "" {
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

// promptPassword reads a password without echo on a terminal, or a plain
// line when stdin is piped.
func (a *app) promptPassword(question string) (string, error) {
	fmt.Printf("%s: ", question)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question. assumeYes skips the prompt.
func (a *app) confirm(question string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	answer := strings.ToLower(a.prompt(question+" (y/N)", ""))
	return answer == "y" || answer == "yes"
}
