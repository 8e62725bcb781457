// ABOUTME: Administrator commands for docket-admin: account listing, deletion and the audit log
// ABOUTME: Every command here requires an ADMIN token; the gateway rejects anyone else

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/docket/internal/rpc"
)

// cmdUsers handles user subcommands
func cmdUsers(e env, args []string) error {
	if err := requireToken(e); err != nil {
		return err
	}

	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		return cmdUsersList(e)
	case "delete", "rm", "remove":
		return cmdUsersDelete(e, args)
	default:
		return fmt.Errorf("unknown users subcommand: %s (use list, delete)", subcmd)
	}
}

func cmdUsersList(e env) error {
	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	resp, err := client.ListUsers(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Users")
	cyan.Println("  -----")

	if len(resp.Users) == 0 {
		fmt.Println("  (no users)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tEMAIL\tDEPARTMENT\tROLE\tCREATED")
	fmt.Fprintln(w, "  --\t----\t-----\t----------\t----\t-------")
	for _, u := range resp.Users {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID,
			truncate(u.Name, 24),
			truncate(u.Email, 32),
			truncate(u.Department, 16),
			u.Role,
			u.CreatedAt.Local().Format("Jan 02 15:04"),
		)
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdUsersDelete(e env, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: users delete <user-id>")
	}
	userID := args[0]

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	if err := client.DeleteUser(ctx, &rpc.DeleteUserRequest{UserID: userID}); err != nil {
		return err
	}

	color.New(color.FgGreen).Printf("✓ Deleted user: %s\n", userID)
	return nil
}

// cmdAudit lists the account audit log, newest first.
func cmdAudit(e env, args []string) error {
	if err := requireToken(e); err != nil {
		return err
	}

	var req rpc.ListAuditLogRequest
	var since string
	flags := newFlags("audit")
	flags.StringVarP(&req.Action, "action", "a", "", "filter by action (e.g. delete_user, login_failed)")
	flags.StringVar(&req.ActorID, "actor", "", "filter by actor ID")
	flags.StringVar(&req.TargetID, "target", "", "filter by target ID")
	flags.StringVar(&since, "since", "", "only entries newer than a duration (24h) or RFC 3339 time")
	flags.IntVarP(&req.Limit, "limit", "n", 50, "maximum entries (max 1000)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var err error
	if req.Since, err = sinceArg(since, time.Now()); err != nil {
		return err
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	resp, err := client.ListAuditLog(ctx, &req)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Audit Log")
	cyan.Println("  ---------")

	if len(resp.Entries) == 0 {
		fmt.Println("  (no entries)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  TIME\tACTION\tACTOR\tTARGET")
	fmt.Fprintln(w, "  ----\t------\t-----\t------")
	for _, a := range resp.Entries {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			a.Timestamp.Local().Format(time.DateTime),
			actionColor(a.Action),
			truncate(a.ActorID, 36),
			a.TargetType+"/"+a.TargetID,
		)
	}
	w.Flush()
	fmt.Println()
	return nil
}

// sinceArg turns a relative duration or an absolute time into the RFC 3339
// form the gateway expects. An empty value means no lower bound.
func sinceArg(raw string, now time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		if d <= 0 {
			return "", fmt.Errorf("--since duration must be positive, got %s", raw)
		}
		return now.Add(-d).UTC().Format(time.RFC3339), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", fmt.Errorf("--since must be a duration like 24h or an RFC 3339 time, got %q", raw)
	}
	return t.UTC().Format(time.RFC3339), nil
}

func actionColor(action string) string {
	switch action {
	case "login_failed", "delete_user":
		return color.RedString(action)
	case "register_user", "import_legal_document":
		return color.GreenString(action)
	default:
		return action
	}
}

// formatTransitions renders the statuses a document may move to next.
func formatTransitions(targets []string) string {
	if len(targets) == 0 {
		return color.HiBlackString("none (final)")
	}
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		out = append(out, statusColor(t))
	}
	return strings.Join(out, ", ")
}
