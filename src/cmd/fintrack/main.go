package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"text/tabwriter"

	"fintrack-server/src/client"
	"fintrack-server/src/models"
	"fintrack-server/src/query"
	"fintrack-server/src/util"
)

const usage = `Usage: fintrack [-server URL] [-session FILE] <command> [flags]

Commands:
  login    -user NAME [-password PW]   log in, creating the account if needed
  logout                               forget the saved session
  list     [filter flags]              show transactions, newest first
  summary  [filter flags] [-remote]    totals and expenses by category
  add      -amount N [-type T] [-category C] [-description D] [-date YYYY-MM-DD]
  delete   ID

Filter flags: -type income|expense|all -category NAME|all -from YYYY-MM-DD -to YYYY-MM-DD`

func main() {
	os.Exit(exitCode(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr), os.Stderr))
}

// exitCode reports err on stderr; -h is not a failure.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fintrack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprintln(stderr, usage) }

	server := fs.String("server", envOr("FINTRACK_SERVER", "http://localhost:8080"), "API base URL")
	sessionPath := fs.String("session", "", "Session file (default: user config dir)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stdout, usage)
		return errors.New("missing command")
	}

	if *sessionPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("locate config dir: %w", err)
		}
		*sessionPath = filepath.Join(dir, "fintrack", "session.json")
	}

	httpClient := client.NewHTTPClient(*server, nil)
	ctrl := client.NewController(httpClient, client.NewFileStore(*sessionPath))

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "login":
		return runLogin(ctx, ctrl, cmdArgs, stdin, stdout, stderr)
	case "logout":
		if err := ctrl.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Logged out")
		return nil
	}

	if err := ctrl.Start(ctx); err != nil {
		return err
	}

	switch cmd {
	case "list":
		return runList(ctrl, cmdArgs, stdout, stderr)
	case "summary":
		return runSummary(ctx, ctrl, httpClient, cmdArgs, stdout, stderr)
	case "add":
		return runAdd(ctx, ctrl, cmdArgs, stdout, stderr)
	case "delete":
		return runDelete(ctx, ctrl, cmdArgs, stdout)
	default:
		fmt.Fprintln(stdout, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runLogin(ctx context.Context, ctrl *client.Controller, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(stderr)
	username := fs.String("user", "", "Username")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("missing required flags: user")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = util.ReadPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	if err := ctrl.Login(ctx, *username, password); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Logged in as %s (%d transactions)\n", ctrl.Username(), len(ctrl.Transactions()))
	return nil
}

func filterFlags(fs *flag.FlagSet) *query.Filter {
	f := &query.Filter{}
	fs.StringVar(&f.Type, "type", query.All, "income, expense or all")
	fs.StringVar(&f.Category, "category", query.All, "category name or all")
	fs.StringVar(&f.From, "from", "", "earliest date, inclusive")
	fs.StringVar(&f.To, "to", "", "latest date, inclusive")
	return f
}

func requireLogin(ctrl *client.Controller) error {
	if !ctrl.LoggedIn() {
		return errors.New("not logged in, run: fintrack login -user NAME")
	}
	return nil
}

func runList(ctrl *client.Controller, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	filter := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireLogin(ctrl); err != nil {
		return err
	}

	ctrl.SetFilter(*filter)
	visible := ctrl.Visible()
	if len(visible) == 0 {
		fmt.Fprintln(stdout, "No transactions")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, t := range visible {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Date, t.Type, t.Amount.StringFixed(2), t.Category, t.Description)
	}
	return tw.Flush()
}

func runSummary(ctx context.Context, ctrl *client.Controller, api *client.HTTPClient, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	fs.SetOutput(stderr)
	filter := filterFlags(fs)
	remote := fs.Bool("remote", false, "ask the server instead of aggregating locally")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireLogin(ctrl); err != nil {
		return err
	}

	ctrl.SetFilter(*filter)
	summary := ctrl.Summary()
	if *remote {
		s, err := api.Summary(ctx, ctrl.Token(), ctrl.Filter())
		if err != nil {
			return err
		}
		summary = *s
	}

	fmt.Fprintf(stdout, "Income:   %s\n", summary.TotalIncome.StringFixed(2))
	fmt.Fprintf(stdout, "Expenses: %s\n", summary.TotalExpense.StringFixed(2))
	fmt.Fprintf(stdout, "Balance:  %s\n", summary.TotalIncome.Sub(summary.TotalExpense).StringFixed(2))
	if len(summary.ByCategory) == 0 {
		return nil
	}

	fmt.Fprintln(stdout)
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSPENT")
	for _, category := range sortedKeys(summary) {
		fmt.Fprintf(tw, "%s\t%s\n", category, summary.ByCategory[category].StringFixed(2))
	}
	return tw.Flush()
}

func runAdd(ctx context.Context, ctrl *client.Controller, args []string, stdout, stderr io.Writer) error {
	draft := ctrl.Draft()

	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	typ := fs.String("type", string(draft.Type), "income or expense")
	fs.StringVar(&draft.Amount, "amount", draft.Amount, "amount, e.g. 12.50")
	fs.StringVar(&draft.Category, "category", draft.Category, "category")
	fs.StringVar(&draft.Description, "description", draft.Description, "description")
	fs.StringVar(&draft.Date, "date", draft.Date, "date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireLogin(ctrl); err != nil {
		return err
	}
	draft.Type = models.TransactionType(*typ)

	ctrl.SetDraft(draft)
	created, err := ctrl.AddTransaction(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Added transaction %d: %s %s on %s\n", created.ID, created.Type, created.Amount.StringFixed(2), created.Date)
	return nil
}

func runDelete(ctx context.Context, ctrl *client.Controller, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: fintrack delete ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}
	if err := requireLogin(ctrl); err != nil {
		return err
	}
	if err := ctrl.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted transaction %d\n", id)
	return nil
}

func sortedKeys(s query.Summary) []string {
	keys := make([]string, 0, len(s.ByCategory))
	for k := range s.ByCategory {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
