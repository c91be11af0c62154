package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"northwind-analytics/internal/config"
	"northwind-analytics/internal/database"
	"northwind-analytics/internal/sample"
)

var initDBCmd = &cobra.Command{
	Use:       "init-db [postgres|mysql|mongo]",
	Short:     "Create the Northwind tables and seed them with sample data",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"postgres", "mysql", "mongo"},
	RunE:      runInitDB,
}

var initDBFlags struct {
	reset bool
	opts  sample.Options
}

func init() {
	defaults := sample.DefaultOptions()
	initDBFlags.opts = defaults
	initDBCmd.Flags().BoolVar(&initDBFlags.reset, "reset", true, "Drop existing tables first")
	initDBCmd.Flags().IntVar(&initDBFlags.opts.Customers, "customers", defaults.Customers, "Number of customers")
	initDBCmd.Flags().IntVar(&initDBFlags.opts.Products, "products", defaults.Products, "Number of products")
	initDBCmd.Flags().IntVar(&initDBFlags.opts.Orders, "orders", defaults.Orders, "Number of orders")
	initDBCmd.Flags().Int64Var(&initDBFlags.opts.Seed, "seed", defaults.Seed, "Random seed")

	rootCmd.AddCommand(initDBCmd)
}

func runInitDB(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx := context.Background()

	driver, err := database.NewDriver(source, cfg.Databases.MongoDatabase)
	if err != nil {
		return err
	}
	if err := driver.Connect(cfg.DSN(source)); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", source, err)
	}
	defer driver.Close()

	// Reset the database to ensure a clean state before setup
	if initDBFlags.reset {
		if err := driver.Reset(ctx); err != nil {
			config.LogError(logger, "main", "runInitDB", "reset", source, err)
			return fmt.Errorf("failed to reset database: %w", err)
		}
	}
	if err := driver.Setup(ctx); err != nil {
		config.LogError(logger, "main", "runInitDB", "setup", source, err)
		return fmt.Errorf("failed to setup database: %w", err)
	}

	tables := sample.Generate(initDBFlags.opts)
	if err := driver.Seed(ctx, tables); err != nil {
		config.LogError(logger, "main", "runInitDB", "seed", source, err)
		return fmt.Errorf("failed to seed database: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"source":    source,
		"customers": len(tables.Customers),
		"products":  len(tables.Products),
		"orders":    len(tables.Orders),
		"lines":     len(tables.OrderLines),
	}).Info("database seeded")
	return nil
}
