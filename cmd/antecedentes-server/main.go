// ABOUTME: Entry point for the antecedentes development API server
// ABOUTME: Serves the REST API over SQLite and manages its config and admin account

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/antecedentes/internal/config"
	"github.com/2389/antecedentes/internal/logging"
	"github.com/2389/antecedentes/internal/server"
	"github.com/2389/antecedentes/internal/store"
)

// version is set at build time.
var version = "dev"

const banner = `
             _                     _            _
  __ _ _ __ | |_ ___  ___ ___  __| | ___ _ __ | |_ ___  ___
 / _' | '_ \| __/ _ \/ __/ _ \/ _' |/ _ \ '_ \| __/ _ \/ __|
| (_| | | | | ||  __/ (_|  __/ (_| |  __/ | | | ||  __/\__ \
 \__,_|_| |_|\__\___|\___\___|\__,_|\___|_| |_|\__\___||___/
`

// getConfigPath returns the path to the server config file.
// Priority: ANTECEDENTES_SERVER_CONFIG > XDG_CONFIG_HOME/antecedentes/server.yaml > ~/.config/antecedentes/server.yaml
func getConfigPath() string {
	if envPath := os.Getenv("ANTECEDENTES_SERVER_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "server.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "antecedentes", "server.yaml")
}

// getDataPath returns the directory holding the database and uploads.
// Priority: XDG_DATA_HOME/antecedentes > ~/.local/share/antecedentes
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data"
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "antecedentes")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: antecedentes-server <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                                   Start the API server")
		fmt.Println("  init                                    Create a new config file interactively")
		fmt.Println("  bootstrap --username U --password P     Create an ADMIN account")
		fmt.Println("  health                                  Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "bootstrap":
		err = runBootstrap(ctx, os.Args[2:])
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.Setup(cfg.Logging, os.Stdout)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	fmt.Printf("Files:     %s\n", cfg.Files.Dir)
	fmt.Println()

	logger.Info("starting antecedentes-server",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"database", cfg.Database.Path,
	)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	srv, err := server.New(cfg, st, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	if err := srv.Bootstrap(ctx); err != nil {
		return err
	}

	return srv.Run(ctx)
}

// runBootstrap creates an ADMIN account in the configured database.
// Supports both "--flag value" and "--flag=value" formats.
func runBootstrap(ctx context.Context, args []string) error {
	var username, password string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--username" || arg == "-u":
			if i+1 >= len(args) {
				return fmt.Errorf("--username requires a value")
			}
			username = args[i+1]
			i++
		case strings.HasPrefix(arg, "--username="):
			username = strings.TrimPrefix(arg, "--username=")
		case arg == "--password" || arg == "-p":
			if i+1 >= len(args) {
				return fmt.Errorf("--password requires a value")
			}
			password = args[i+1]
			i++
		case strings.HasPrefix(arg, "--password="):
			password = strings.TrimPrefix(arg, "--password=")
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("--username flag is required")
	}
	if len(password) < 8 {
		return fmt.Errorf("--password must be at least 8 characters")
	}

	configPath := getConfigPath()
	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Printf("  ✓ Database: %s\n", cfg.Database.Path)

	created, err := st.EnsureAdmin(ctx, username, password)
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}
	if !created {
		yellow.Printf("  User %q already exists, nothing changed\n", username)
		return nil
	}

	green.Printf("  ✓ Created ADMIN account: %s\n", username)
	fmt.Println()
	yellow.Println("  Ready to go:")
	fmt.Println("    antecedentes-server serve       # start the server")
	fmt.Println("    antecedentes-admin login        # sign in")
	fmt.Println()
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.LoadServer(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("antecedentes-server configuration setup")
	fmt.Println("=======================================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	dataPath := getDataPath()

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if !isYes(overwrite) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "127.0.0.1:8000")

	fmt.Println("\n--- Storage Configuration ---")
	dbPath := prompt(reader, "SQLite database path", filepath.Join(dataPath, "antecedentes.db"))
	filesDir := prompt(reader, "Upload directory", filepath.Join(dataPath, "files"))

	fmt.Println("\n--- Bootstrap Admin ---")
	adminUser := prompt(reader, "Admin username (leave empty to skip)", "")
	var adminPassword string
	if adminUser != "" {
		adminPassword = prompt(reader, "Admin password", "")
		if len(adminPassword) < 8 {
			return fmt.Errorf("admin password must be at least 8 characters")
		}
	}

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (color/text/json)", "color")

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("generating JWT secret: %w", err)
	}
	jwtSecret := base64.StdEncoding.EncodeToString(secretBytes)

	var cfg strings.Builder
	cfg.WriteString("# antecedentes-server configuration\n")
	cfg.WriteString("# Generated by antecedentes-server init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n\n", httpAddr))

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n\n", dbPath))

	cfg.WriteString("files:\n")
	cfg.WriteString(fmt.Sprintf("  dir: %q\n\n", filesDir))

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  jwt_secret: %q\n", jwtSecret))
	cfg.WriteString("  token_ttl: \"8h\"\n\n")

	if adminUser != "" {
		cfg.WriteString("bootstrap:\n")
		cfg.WriteString(fmt.Sprintf("  admin_username: %q\n", adminUser))
		cfg.WriteString(fmt.Sprintf("  admin_password: %q\n\n", adminPassword))
	}

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", logFormat))

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	// The file carries the JWT secret.
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo start the server:")
	fmt.Println("  antecedentes-server serve")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "yes" || s == "y"
}
