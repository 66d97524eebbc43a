// ABOUTME: Session commands: login, logout, whoami, health and the dashboard
// ABOUTME: Login stores the token and profile; logout clears them

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/antecedentes/internal/auth"
)

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	f, err := parseFlags(args, []string{"username"}, nil)
	if err != nil {
		return err
	}

	username := strings.TrimSpace(f.get("username"))
	if username == "" {
		username = a.prompt("Username", "")
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}
	password, err := a.promptPassword("Password")
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	res, err := a.client.Auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := a.provider.Save(res.AccessToken, &res.User); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	role := auth.ClassifyRole(&res.User)
	success("Logged in as %s (%s)", res.User.Username, res.User.DisplayRole())
	if !role.CanWrite() {
		color.New(color.FgYellow).Println("  read-only access: searches and detail views only")
	}
	return nil
}

func (a *app) cmdLogout() error {
	if err := a.provider.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	success("Logged out")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	s, err := a.require(ctx)
	if err != nil {
		return err
	}

	heading("Identity")
	field("User ID", fmt.Sprintf("%d", s.User.ID))
	field("Username", s.User.Username)
	field("Name", strings.TrimSpace(s.User.Names+" "+s.User.Lastname))
	field("Role", s.User.DisplayRole())
	field("Layout", s.Layout().String())
	field("API", a.client.BaseURL())
	fmt.Println()
	return nil
}

func (a *app) cmdHealth(ctx context.Context) error {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	h, err := a.client.Health(ctx)
	if err != nil {
		yellow.Printf("  API:      ")
		color.Red("UNREACHABLE (%s)\n", describe(err))
		return nil
	}
	green.Printf("  API:      ")
	fmt.Printf("%s at %s", h.Status, a.client.BaseURL())
	if h.Version != "" {
		fmt.Printf(" (version %s)", h.Version)
	}
	fmt.Println()

	if user, err := a.provider.User(); err == nil && user != nil && a.provider.Token() != "" {
		green.Printf("  Session:  ")
		fmt.Printf("%s (%s)\n", user.Username, user.DisplayRole())
	} else {
		yellow.Printf("  Session:  ")
		fmt.Println("(not logged in)")
	}
	return nil
}

func (a *app) cmdDashboard(ctx context.Context) error {
	if _, err := a.require(ctx); err != nil {
		return err
	}
	st, err := a.client.Dashboard.Stats(ctx)
	if err != nil {
		return err
	}
	printStats(st)
	return nil
}
