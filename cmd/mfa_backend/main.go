package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ketepool/member_fund_app/internal/adapters/investments"
	"github.com/ketepool/member_fund_app/internal/adapters/notify"
	"github.com/ketepool/member_fund_app/internal/core/services"
	"github.com/ketepool/member_fund_app/internal/dto"
	"github.com/ketepool/member_fund_app/internal/platform/clock"
	"github.com/ketepool/member_fund_app/internal/platform/config"
	"github.com/ketepool/member_fund_app/internal/platform/ctxlog"
	"github.com/ketepool/member_fund_app/internal/repositories/database/pgsql"
	"github.com/ketepool/member_fund_app/pkg/database"
	"github.com/shopspring/decimal"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const usage = `usage: mfa_backend <command> [flags]

commands:
  distribute-annual   run the annual profit distribution
  distribute-bonus    run the quarterly bonus pool distribution
  fix-duplicates      remove duplicate ledger entries for a member
  dispatch-outbox     deliver pending notifications
`

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := ctxlog.WithLogger(context.Background(), logger)

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	svcContainer := services.NewContainer(services.ContainerDeps{
		Repos:       repos,
		Clock:       clock.System(),
		Config:      cfg,
		Notifier:    notify.NewSlogNotifier(logger),
		Investments: investments.NewSlogInvestmentService(logger),
	})

	if err := runCommand(ctx, logger, svcContainer, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("Command failed", slog.String("command", os.Args[1]), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	// Open a temporary standard sql.DB connection for migrations, using the
	// pgx stdlib driver to stay compatible with the main pool.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

func runCommand(ctx context.Context, logger *slog.Logger, svc *services.Container, command string, args []string) error {
	switch command {
	case "distribute-annual":
		fs := flag.NewFlagSet("distribute-annual", flag.ExitOnError)
		pool := fs.String("pool", "", "total profit pool to distribute")
		year := fs.Int("year", time.Now().UTC().Year()-1, "calendar year to distribute for")
		by := fs.String("by", "ops", "operator reference")
		if err := fs.Parse(args); err != nil {
			return err
		}

		totalPool, err := decimal.NewFromString(*pool)
		if err != nil {
			return fmt.Errorf("invalid -pool value %q: %w", *pool, err)
		}

		result, err := svc.Distribution.DistributeAnnual(ctx, dto.DistributeAnnualRequest{
			TotalPool: totalPool,
			Year:      *year,
			CreatedBy: *by,
		})
		if err != nil {
			return err
		}
		logDistributionResult(logger, result)
		return nil

	case "distribute-bonus":
		fs := flag.NewFlagSet("distribute-bonus", flag.ExitOnError)
		profit := fs.String("profit", "", "quarterly profit the bonus pool is carved from")
		percent := fs.String("percent", "", "bonus pool percent (empty uses the configured default)")
		quarter := fs.String("quarter", "", "quarter start date, YYYY-MM-DD")
		by := fs.String("by", "ops", "operator reference")
		if err := fs.Parse(args); err != nil {
			return err
		}

		quarterlyProfit, err := decimal.NewFromString(*profit)
		if err != nil {
			return fmt.Errorf("invalid -profit value %q: %w", *profit, err)
		}
		poolPercent := decimal.Zero
		if *percent != "" {
			poolPercent, err = decimal.NewFromString(*percent)
			if err != nil {
				return fmt.Errorf("invalid -percent value %q: %w", *percent, err)
			}
		}
		quarterStart, err := time.Parse("2006-01-02", *quarter)
		if err != nil {
			return fmt.Errorf("invalid -quarter value %q: %w", *quarter, err)
		}

		result, err := svc.Distribution.DistributeQuarterlyBonus(ctx, dto.DistributeBonusRequest{
			QuarterlyProfit: quarterlyProfit,
			PoolPercent:     poolPercent,
			QuarterStart:    quarterStart,
			CreatedBy:       *by,
		})
		if err != nil {
			return err
		}
		logDistributionResult(logger, result)
		return nil

	case "fix-duplicates":
		fs := flag.NewFlagSet("fix-duplicates", flag.ExitOnError)
		member := fs.String("member", "", "member whose ledger to repair")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *member == "" {
			return fmt.Errorf("-member is required")
		}

		groups, err := svc.Ledger.FindDuplicates(ctx, *member)
		if err != nil {
			return err
		}
		for _, g := range groups {
			logger.Info("duplicate group found",
				slog.String("reference", g.Reference),
				slog.String("type", string(g.TransactionType)),
				slog.String("amount", g.Amount.String()),
				slog.Int("count", g.Count),
			)
		}

		deleted, err := svc.Ledger.FixDuplicates(ctx, *member)
		if err != nil {
			return err
		}
		logger.Info("ledger repair finished",
			slog.String("member_id", *member),
			slog.Int("groups", len(groups)),
			slog.Int64("deleted", deleted),
		)
		return nil

	case "dispatch-outbox":
		sent, err := svc.Outbox.DispatchPending(ctx)
		if err != nil {
			return err
		}
		logger.Info("outbox dispatch finished", slog.Int("sent", sent))
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func logDistributionResult(logger *slog.Logger, result *dto.DistributionResult) {
	if !result.Success {
		logger.Error("distribution did not complete",
			slog.String("batch_id", result.BatchID),
			slog.String("error", result.Error),
		)
		return
	}
	logger.Info("distribution completed",
		slog.String("batch_id", result.BatchID),
		slog.String("period", string(result.PeriodType)),
		slog.String("total_pool", result.TotalPool.String()),
		slog.String("total_distributed", result.TotalDistributed.String()),
		slog.Int("shares", len(result.Shares)),
	)
	for _, share := range result.Shares {
		logger.Info("member share",
			slog.String("member_id", share.MemberID),
			slog.String("amount", share.Amount.String()),
			slog.String("pool_percent", share.PoolPercent.String()),
			slog.String("method", string(share.Method)),
			slog.String("loan_repaid", share.LoanRepaid.String()),
		)
	}
}
