// Command expensectl records expenses and prints dashboard views and catalog
// queries from the terminal, against the same SQLite file the server uses.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"expensedash/internal/analytics"
	"expensedash/internal/cli"
	"expensedash/internal/core"
	"expensedash/internal/filter"
	applog "expensedash/internal/log"
	"expensedash/internal/services"
)

const usage = `usage: expensectl <command> [flags]

commands:
  add       record an expense
  list      list expenses matching the filter
  kpis      show total, count, cashback and mean for the filter
  filters   show the selectable filter values
  catalog   list catalogs, or run every query of one catalog (A or B)
  query     run one catalog query, e.g. "expensectl query B 5"
`

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(envOr("LOG_LEVEL", "warn"), os.Getenv("LOG_FORMAT")).WithComponent(applog.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	svc := services.NewExpenseService(repo, cli.InitPublisher(logger, cfg), nil)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close expense service", applog.FieldError, err)
		}
	}()

	app := &app{
		expenses:  svc,
		dashboard: services.NewDashboard(repo, nil),
		out:       os.Stdout,
		today:     func() string { return time.Now().Format(core.DateLayout) },
	}
	if err := app.run(context.Background(), os.Args[1:]); err != nil {
		logger.Debug("Command failed", applog.FieldOperation, commandName(os.Args[1:]), applog.FieldError, err.Error())
		cli.RenderError(os.Stderr, err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		svc.Close()
		os.Exit(1)
	}
}

func commandName(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var errUsage = errors.New("invalid usage")

type app struct {
	expenses  *services.ExpenseService
	dashboard *services.Dashboard
	out       io.Writer
	today     func() string
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "add":
		return a.add(ctx, rest)
	case "list":
		return a.list(ctx, rest)
	case "kpis":
		return a.kpis(ctx, rest)
	case "filters":
		return a.filters(ctx)
	case "catalog":
		return a.catalog(ctx, rest)
	case "query":
		return a.query(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var in core.ExpenseInput
	fs.StringVar(&in.Date, "date", a.today(), "expense date (YYYY-MM-DD)")
	fs.StringVar(&in.Category, "category", "", "category")
	fs.StringVar(&in.PaymentMode, "mode", "", "payment mode")
	fs.StringVar(&in.Description, "desc", "", "description")
	fs.StringVar(&in.Amount, "amount", "", "amount, comma or dot decimals")
	fs.StringVar(&in.Cashback, "cashback", "", "cashback received")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("add: %v: %w", err, errUsage)
	}

	e, err := a.expenses.Record(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Recorded expense #%d: %s %s %s\n", e.ID, e.Date, e.Category, cli.FormatCell(e.Amount))
	return nil
}

// filterFlags registers the three selectors on fs, each defaulting to "All".
func filterFlags(fs *flag.FlagSet) func() filter.Spec {
	category := fs.String("category", filter.AllValue, "category selector")
	mode := fs.String("mode", filter.AllValue, "payment mode selector")
	month := fs.String("month", filter.AllValue, "month selector (YYYY-MM)")
	return func() filter.Spec {
		values := map[string]string{"category": *category, "payment_mode": *mode, "month": *month}
		return filter.ParseSpec(func(key string) string { return values[key] })
	}
}

func (a *app) open(ctx context.Context, name string, args []string) (*services.Session, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	spec := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", name, err, errUsage)
	}
	return a.dashboard.Open(ctx, spec())
}

func (a *app) list(ctx context.Context, args []string) error {
	s, err := a.open(ctx, "list", args)
	if err != nil {
		return err
	}
	cli.RenderExpenses(a.out, s.Records())
	return nil
}

func (a *app) kpis(ctx context.Context, args []string) error {
	s, err := a.open(ctx, "kpis", args)
	if err != nil {
		return err
	}
	cli.RenderKPIs(a.out, s.KPIs())
	return nil
}

func (a *app) filters(ctx context.Context) error {
	s, err := a.dashboard.Open(ctx, filter.Spec{})
	if err != nil {
		return err
	}
	cli.RenderDomain(a.out, s.Filters())
	return nil
}

func (a *app) catalog(ctx context.Context, args []string) error {
	if len(args) == 0 {
		for _, c := range analytics.Catalogs() {
			qs, _ := analytics.Queries(c)
			fmt.Fprintf(a.out, "%s: %s\n", c, c.Title())
			for _, q := range qs {
				fmt.Fprintf(a.out, "  %s%-3d %s\n", c, q.ID, q.Label)
			}
		}
		return nil
	}

	c, err := analytics.ParseCatalog(args[0])
	if err != nil {
		return err
	}
	s, err := a.dashboard.Open(ctx, filter.Spec{})
	if err != nil {
		return err
	}
	results, err := s.Catalog(ctx, c)
	if err != nil {
		return err
	}
	for _, r := range results {
		cli.RenderResult(a.out, r)
	}
	return nil
}

func (a *app) query(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("query needs a catalog and an id: %w", errUsage)
	}
	c, err := analytics.ParseCatalog(args[0])
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("query id %q: %w", args[1], analytics.ErrUnknownQuery)
	}
	q, err := analytics.Lookup(c, id)
	if err != nil {
		return err
	}

	s, err := a.dashboard.Open(ctx, filter.Spec{})
	if err != nil {
		return err
	}
	t, err := s.Query(c, id)
	if err != nil {
		return err
	}
	cli.RenderResult(a.out, analytics.Result{Catalog: c, ID: q.ID, Label: q.Label, Table: t})
	return nil
}
