package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"northwind-analytics/internal/classifier"
	"northwind-analytics/internal/config"
	"northwind-analytics/internal/database"
	"northwind-analytics/internal/sample"
	"northwind-analytics/internal/session"
)

var (
	configPath string
	cfg        *config.Config
	logger     *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Northwind sales analytics",
	Long: `Load the Northwind tables from a database (or the built-in sample),
then report on revenue, customers and products.

Sources:
  postgres, mysql, mongo   - read the five tables from the configured DSN
  sample                   - generate a deterministic in-memory dataset`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		logger = config.NewLogger(cfg.Log)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openSource returns the configured table source and a func releasing it.
func openSource(source string) (session.Source, func(), error) {
	if source == "sample" {
		return sample.Source{Options: sample.DefaultOptions()}, func() {}, nil
	}
	driver, err := database.NewDriver(source, cfg.Databases.MongoDatabase)
	if err != nil {
		return nil, nil, err
	}
	if err := driver.Connect(cfg.DSN(source)); err != nil {
		config.LogError(logger, "main", "openSource", "connect", source, err)
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", source, err)
	}
	return driver, func() { driver.Close() }, nil
}

// loadSession loads the configured source into a fresh session.
func loadSession(ctx context.Context) (*session.Session, error) {
	src, release, err := openSource(cfg.Source)
	if err != nil {
		return nil, err
	}
	defer release()

	sess := session.New(logger)
	if _, err := sess.Reload(ctx, src); err != nil {
		return nil, err
	}
	return sess, nil
}

// loadModel returns nil when no model path is configured.
func loadModel() (*classifier.Model, error) {
	if cfg.Classifier.ModelPath == "" {
		return nil, nil
	}
	return classifier.Load(cfg.Classifier.ModelPath)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
