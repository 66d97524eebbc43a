// ABOUTME: Operator CLI for the antecedentes REST API
// ABOUTME: Session-gated person, record, file and account management with a creation wizard

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/antecedentes/internal/api"
	"github.com/2389/antecedentes/internal/session"
)

const banner = `
             _                     _            _
  __ _ _ __ | |_ ___  ___ ___  __| | ___ _ __ | |_ ___  ___
 / _' | '_ \| __/ _ \/ __/ _ \/ _' |/ _ \ '_ \| __/ _ \/ __|
| (_| | | | | ||  __/ (_|  __/ (_| |  __/ | | | ||  __/\__ \
 \__,_|_| |_|\__\___|\___\___|\__,_|\___|_| |_|\__\___||___/
`

func main() {
	args, verbose := stripVerbose(os.Args[1:])
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := args[0]
	args = args[1:]

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}

	a, err := newApp(ctx, verbose)
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	switch cmd {
	case "login":
		err = a.cmdLogin(ctx, args)
	case "logout":
		err = a.cmdLogout()
	case "whoami", "me":
		err = a.cmdWhoami(ctx)
	case "health", "status":
		err = a.cmdHealth(ctx)
	case "dashboard":
		err = a.cmdDashboard(ctx)
	case "persons", "person":
		err = a.cmdPersons(ctx, args)
	case "records", "record":
		err = a.cmdRecords(ctx, args)
	case "files", "file":
		err = a.cmdFiles(ctx, args)
	case "users", "user":
		err = a.cmdUsers(ctx, args)
	case "roles":
		err = a.cmdRoles(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		a.reportError(err)
		a.Close()
		os.Exit(1)
	}
}

// reportError prints err the way an operator should see it. An expired
// session has already been announced by the expiry watcher.
func (a *app) reportError(err error) {
	switch {
	case errors.Is(err, session.ErrNoSession):
		color.Red("Not logged in. Run: antecedentes-admin login\n")
	case api.IsUnauthorized(err) && a.expired():
		// the expiry notice was shown
	default:
		color.Red("Error: %s\n", describe(err))
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: antecedentes-admin [-v] <command> [args]")
	fmt.Println()
	yellow.Println("Session:")
	fmt.Println("  login [--username U]              Sign in (password is prompted)")
	fmt.Println("  logout                            Clear the stored session")
	fmt.Println("  whoami                            Show the signed-in user and layout")
	fmt.Println("  health                            Check the API")
	fmt.Println()
	yellow.Println("Persons:")
	fmt.Println("  dashboard                         Totals and recent records")
	fmt.Println("  persons search [--names N] [--lastnames L] [--identification I] [--address A] [--page P]")
	fmt.Println("  persons show <id>                 Detail with files, records and connections")
	fmt.Println("  persons new                       Interactive creation wizard")
	fmt.Println("  persons update <id> [--names N] [--lastnames L] [--address A] [--province P] [--country C] [--observations O]")
	fmt.Println("  persons delete <id> [--yes]       Delete a person")
	fmt.Println("  persons export <id> [--html] [--out FILE]")
	fmt.Println("  persons link-record <id> <record-id>... [--type T]")
	fmt.Println("  persons unlink-record <id> <record-id> [--yes]")
	fmt.Println("  persons link-person <id> <other-id>... [--type T]")
	fmt.Println("  persons unlink-person <id> <other-id> [--yes]")
	fmt.Println()
	yellow.Println("Records:")
	fmt.Println("  records search [--title T] [--content C] [--type T] [--person P] [--from D] [--to D] [--page P]")
	fmt.Println("  records show <id>")
	fmt.Println("  records create --title T --type T [--other LABEL] [--date YYYY-MM-DD] [--content C] [--observations O]")
	fmt.Println("  records update <id> [same flags as create]")
	fmt.Println("  records delete <id> [--yes]")
	fmt.Println("  records stats")
	fmt.Println()
	yellow.Println("Files:")
	fmt.Println("  files upload <person-id> <path>... [--description D]")
	fmt.Println("  files download <file-id> [--out FILE]")
	fmt.Println("  files delete <file-id> [--yes]")
	fmt.Println()
	yellow.Println("Accounts (ADMIN):")
	fmt.Println("  users list | show <id> | create | update <id> | delete <id>")
	fmt.Println("  roles                             List roles")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  ANTECEDENTES_CONFIG       Client config file (YAML or TOML)")
	fmt.Println("  ANTECEDENTES_API_URL      API base URL (default: http://localhost:8000)")
	fmt.Println("  ANTECEDENTES_LOG_LEVEL    Log level on stderr (default: warn)")
	fmt.Println()
}
