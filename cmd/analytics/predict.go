package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"northwind-analytics/internal/classifier"
	"northwind-analytics/internal/segment"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Assign a customer to a cluster",
	Long: `Predict the cluster of an existing customer (--customer) or of a
profile entered by hand through the feature flags.`,
	RunE: runPredict,
}

var predictFlags struct {
	customer string
	input    segment.Input
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictFlags.customer, "customer", "", "Customer id to predict from the loaded dataset")
	f.Float64Var(&predictFlags.input.Recency, "recency", 30, "Days since the last order")
	f.Float64Var(&predictFlags.input.Frequency, "frequency", 5, "Number of orders")
	f.Float64Var(&predictFlags.input.Monetary, "monetary", 1000, "Total revenue")
	f.Float64Var(&predictFlags.input.AvgDiscount, "avg-discount", 0.05, "Mean discount rate (0-1)")
	f.Float64Var(&predictFlags.input.AvgDaysBetweenOrders, "avg-days-between", 60, "Mean days between orders")
	f.Float64Var(&predictFlags.input.RecentRatio, "recent-ratio", 0.3, "Share of orders in the recent window (0-1)")

	rootCmd.AddCommand(predictCmd)
}

type predictOutput struct {
	CustomerID      string    `json:"customer_id"`
	Cluster         int       `json:"cluster"`
	Label           string    `json:"label"`
	Recommendations []string  `json:"recommendations"`
	Vector          []float64 `json:"vector"`
}

func runPredict(cmd *cobra.Command, args []string) error {
	model, err := loadModel()
	if err != nil {
		return err
	}
	if model == nil {
		return errors.New("no classifier model configured (classifier.model_path)")
	}

	features, err := predictFeatures()
	if err != nil {
		return err
	}

	p, err := segment.Predict(model, features)
	if err != nil {
		return err
	}
	return printJSON(describe(model, p))
}

func describe(model *classifier.Model, p segment.Prediction) predictOutput {
	return predictOutput{
		CustomerID:      p.CustomerID,
		Cluster:         p.Cluster,
		Label:           model.Label(p.Cluster),
		Recommendations: model.Recommendation(p.Cluster),
		Vector:          p.Vector,
	}
}

func predictFeatures() (segment.CustomerFeatures, error) {
	if predictFlags.customer == "" {
		if err := validator.New().Struct(predictFlags.input); err != nil {
			return segment.CustomerFeatures{}, fmt.Errorf("invalid input: %w", err)
		}
		return segment.FeaturesFromInput("manual", predictFlags.input), nil
	}

	sess, err := loadSession(context.Background())
	if err != nil {
		return segment.CustomerFeatures{}, err
	}
	ds, err := sess.Current()
	if err != nil {
		return segment.CustomerFeatures{}, err
	}
	opts := segment.FeatureOptions{RecentWindowDays: cfg.Analytics.RecentWindowDays}
	for _, f := range segment.Features(ds.Full(), opts) {
		if f.CustomerID == predictFlags.customer {
			return f, nil
		}
	}
	return segment.CustomerFeatures{}, fmt.Errorf("customer %s has no dated orders", predictFlags.customer)
}
