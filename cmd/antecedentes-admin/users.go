// ABOUTME: Account administration commands for ADMIN users
// ABOUTME: Passwords are prompted twice and never taken from flags

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/2389/antecedentes/internal/model"
)

var roleIDs = map[string]int64{
	model.RoleAdmin:    model.RoleIDAdmin,
	model.RoleModerate: model.RoleIDModerate,
	model.RoleUser:     model.RoleIDUser,
	model.RoleView:     model.RoleIDView,
}

// parseRole accepts a role name (any case) or a numeric id.
func parseRole(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if id, ok := roleIDs[strings.ToUpper(s)]; ok {
		return id, nil
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil && id >= model.RoleIDAdmin && id <= model.RoleIDView {
		return id, nil
	}
	return 0, fmt.Errorf("unknown role %q (use ADMIN, MODERATE, USER or VIEW)", s)
}

func (a *app) cmdUsers(ctx context.Context, args []string) error {
	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		return a.cmdUsersList(ctx)
	case "show", "get":
		return a.cmdUsersShow(ctx, args)
	case "create", "add":
		return a.cmdUsersCreate(ctx, args)
	case "update", "edit":
		return a.cmdUsersUpdate(ctx, args)
	case "delete", "rm", "remove":
		return a.cmdUsersDelete(ctx, args)
	default:
		return fmt.Errorf("unknown users subcommand: %s (use list, show, create, update, delete)", subcmd)
	}
}

func (a *app) cmdUsersList(ctx context.Context) error {
	if _, err := a.requireAdmin(ctx); err != nil {
		return err
	}
	users, err := a.client.Users.List(ctx)
	if err != nil {
		return err
	}

	heading("Users")
	if len(users) == 0 {
		fmt.Println("  (no users)")
		fmt.Println()
		return nil
	}
	w := newTable(os.Stdout)
	fmt.Fprintln(w, "  ID\tUSERNAME\tNAME\tROLE")
	fmt.Fprintln(w, "  --\t--------\t----\t----")
	for _, u := range users {
		name := strings.TrimSpace(u.Names + " " + u.Lastname)
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", u.ID, u.Username, truncate(orDash(name), 32), u.DisplayRole())
	}
	w.Flush()
	fmt.Println()
	return nil
}

func (a *app) cmdUsersShow(ctx context.Context, args []string) error {
	f, err := parseFlags(args, nil, nil)
	if err != nil {
		return err
	}
	id, err := f.id(0, "user id")
	if err != nil {
		return err
	}
	if _, err := a.requireAdmin(ctx); err != nil {
		return err
	}

	u, err := a.client.Users.Get(ctx, id)
	if err != nil {
		return notFound(err, "user", id)
	}
	heading(u.Username)
	field("ID", fmt.Sprintf("%d", u.ID))
	field("Names", u.Names)
	field("Lastname", u.Lastname)
	field("Role", u.DisplayRole())
	fmt.Println()
	return nil
}

// readPassword prompts twice. optional allows an empty answer.
func (a *app) readPassword(optional bool) (string, string, error) {
	label := "Password"
	if optional {
		label = "New password (empty keeps the current one)"
	}
	password, err := a.promptPassword(label)
	if err != nil {
		return "", "", err
	}
	if password == "" && optional {
		return "", "", nil
	}
	confirm, err := a.promptPassword("Confirm password")
	if err != nil {
		return "", "", err
	}
	return password, confirm, nil
}

func (a *app) cmdUsersCreate(ctx context.Context, args []string) error {
	f, err := parseFlags(args, []string{"names", "lastname", "username", "role"}, nil)
	if err != nil {
		return err
	}
	if _, err := a.requireAdmin(ctx); err != nil {
		return err
	}

	in := model.UserInput{
		Names:    f.get("names"),
		Lastname: f.get("lastname"),
		Username: f.get("username"),
	}
	if in.Names == "" {
		in.Names = a.prompt("Names", "")
	}
	if in.Lastname == "" {
		in.Lastname = a.prompt("Lastname", "")
	}
	if in.Username == "" {
		in.Username = a.prompt("Username", "")
	}
	role := f.get("role")
	if role == "" {
		role = a.prompt("Role (ADMIN/MODERATE/USER/VIEW)", model.RoleUser)
	}
	if in.RoleID, err = parseRole(role); err != nil {
		return err
	}
	if in.Password, in.ConfirmPassword, err = a.readPassword(false); err != nil {
		return err
	}

	u, err := a.client.Users.Create(ctx, in)
	if err != nil {
		return err
	}
	success("Created user %d: %s (%s)", u.ID, u.Username, u.DisplayRole())
	return nil
}

func (a *app) cmdUsersUpdate(ctx context.Context, args []string) error {
	f, err := parseFlags(args, []string{"names", "lastname", "username", "role"}, []string{"password"})
	if err != nil {
		return err
	}
	id, err := f.id(0, "user id")
	if err != nil {
		return err
	}
	if _, err := a.requireAdmin(ctx); err != nil {
		return err
	}

	u, err := a.client.Users.Get(ctx, id)
	if err != nil {
		return notFound(err, "user", id)
	}
	in := model.UserInput{
		Names:    u.Names,
		Lastname: u.Lastname,
		Username: u.Username,
		RoleID:   u.RoleID,
	}
	if in.RoleID == 0 && u.Role != nil {
		in.RoleID = u.Role.ID
	}
	if f.has("names") {
		in.Names = f.get("names")
	}
	if f.has("lastname") {
		in.Lastname = f.get("lastname")
	}
	if f.has("username") {
		in.Username = f.get("username")
	}
	if f.has("role") {
		if in.RoleID, err = parseRole(f.get("role")); err != nil {
			return err
		}
	}
	if f.bool("password") {
		if in.Password, in.ConfirmPassword, err = a.readPassword(true); err != nil {
			return err
		}
	}

	updated, err := a.client.Users.Update(ctx, id, in)
	if err != nil {
		return err
	}
	success("Updated user %d: %s (%s)", updated.ID, updated.Username, updated.DisplayRole())
	return nil
}

func (a *app) cmdUsersDelete(ctx context.Context, args []string) error {
	f, err := parseFlags(args, nil, []string{"yes"})
	if err != nil {
		return err
	}
	id, err := f.id(0, "user id")
	if err != nil {
		return err
	}
	s, err := a.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if s.User != nil && s.User.ID == id {
		return fmt.Errorf("you cannot delete your own account")
	}

	if !a.confirm(fmt.Sprintf("Delete user %d?", id), f.bool("yes")) {
		fmt.Println("Aborted.")
		return nil
	}
	if err := a.client.Users.Delete(ctx, id); err != nil {
		return notFound(err, "user", id)
	}
	success("Deleted user %d", id)
	return nil
}

func (a *app) cmdRoles(ctx context.Context) error {
	if _, err := a.require(ctx); err != nil {
		return err
	}
	roles, err := a.client.Roles.List(ctx)
	if err != nil {
		return err
	}

	heading("Roles")
	w := newTable(os.Stdout)
	fmt.Fprintln(w, "  ID\tNAME")
	fmt.Fprintln(w, "  --\t----")
	for _, r := range roles {
		fmt.Fprintf(w, "  %d\t%s\n", r.ID, r.Name)
	}
	w.Flush()
	fmt.Println()
	return nil
}
