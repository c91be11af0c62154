package segment

import (
	"fmt"
	"math"
	"strings"
	"time"

	"northwind-analytics/internal/view"
)

// Feature names a classifier may declare.
const (
	FeatureRecency        = "recency"
	FeatureFrequency      = "frequency"
	FeatureMonetary       = "monetary"
	FeatureMonetaryLog    = "monetary_log"
	FeatureAvgDiscount    = "avg_discount"
	FeatureAvgDaysBetween = "avg_days_between_orders"
	FeatureRecentRatio    = "recent_ratio"
)

// DefaultRecentWindowDays is the look-back window for the recent order ratio.
const DefaultRecentWindowDays = 180

type FeatureOptions struct {
	RecentWindowDays int
}

type CustomerFeatures struct {
	CustomerID           string  `json:"customer_id"`
	Recency              float64 `json:"recency"`
	Frequency            float64 `json:"frequency"`
	Monetary             float64 `json:"monetary"`
	AvgDiscount          float64 `json:"avg_discount"`
	AvgDaysBetweenOrders float64 `json:"avg_days_between_orders"`
	RecentRatio          float64 `json:"recent_ratio"`
}

// Value looks up a feature by name. monetary_log is log1p(monetary).
func (f CustomerFeatures) Value(name string) (float64, bool) {
	switch name {
	case FeatureRecency:
		return f.Recency, true
	case FeatureFrequency:
		return f.Frequency, true
	case FeatureMonetary:
		return f.Monetary, true
	case FeatureMonetaryLog:
		return math.Log1p(f.Monetary), true
	case FeatureAvgDiscount:
		return f.AvgDiscount, true
	case FeatureAvgDaysBetween:
		return f.AvgDaysBetweenOrders, true
	case FeatureRecentRatio:
		return f.RecentRatio, true
	}
	return 0, false
}

// Features engineers one row per customer with a dated order, ordered by
// customer id. RecentRatio is the share of the customer's dated orders that
// fall within the window ending at the latest order date in v.
func Features(v view.View, opts FeatureOptions) []CustomerFeatures {
	maxDate, ok := view.MaxDate(v)
	if !ok {
		return nil
	}
	window := opts.RecentWindowDays
	if window <= 0 {
		window = DefaultRecentWindowDays
	}
	cutoff := maxDate.AddDate(0, 0, -window)

	var out []CustomerFeatures
	for _, c := range activity(v) {
		if !c.dated {
			continue
		}
		recent := 0
		for _, d := range c.orders {
			if !d.Before(cutoff) {
				recent++
			}
		}
		out = append(out, CustomerFeatures{
			CustomerID:           c.id,
			Recency:              float64(daysBetween(c.last, maxDate)),
			Frequency:            float64(c.frequency()),
			Monetary:             c.monetary.Float64(),
			AvgDiscount:          c.discounts / float64(c.lines),
			AvgDaysBetweenOrders: meanGap(c.orderDates()),
			RecentRatio:          float64(recent) / float64(len(c.orders)),
		})
	}
	return out
}

// meanGap is the mean number of days between consecutive dates, 0 for fewer
// than two dates.
func meanGap(dates []time.Time) float64 {
	if len(dates) < 2 {
		return 0
	}
	total := 0
	for i := 1; i < len(dates); i++ {
		total += daysBetween(dates[i-1], dates[i])
	}
	return float64(total) / float64(len(dates)-1)
}

// Input is a manually entered customer profile.
type Input struct {
	Recency              float64 `json:"recency" validate:"gte=0"`
	Frequency            float64 `json:"frequency" validate:"gte=1"`
	Monetary             float64 `json:"monetary" validate:"gte=0"`
	AvgDiscount          float64 `json:"avg_discount" validate:"gte=0,lte=1"`
	AvgDaysBetweenOrders float64 `json:"avg_days_between_orders" validate:"gte=0"`
	RecentRatio          float64 `json:"recent_ratio" validate:"gte=0,lte=1"`
}

// FeaturesFromInput turns a manual profile into classifier features.
func FeaturesFromInput(id string, in Input) CustomerFeatures {
	return CustomerFeatures{
		CustomerID:           id,
		Recency:              in.Recency,
		Frequency:            in.Frequency,
		Monetary:             in.Monetary,
		AvgDiscount:          in.AvgDiscount,
		AvgDaysBetweenOrders: in.AvgDaysBetweenOrders,
		RecentRatio:          in.RecentRatio,
	}
}

// Classifier is the external clustering model. FeatureNames is the ordered
// feature list Predict expects.
type Classifier interface {
	FeatureNames() []string
	Predict(vector []float64) (int, error)
}

// FeatureMismatchError reports a vector that does not match the classifier's
// declared feature list. It affects a single prediction.
type FeatureMismatchError struct {
	CustomerID string
	Declared   []string
	Unknown    []string
	Length     int
}

func (e *FeatureMismatchError) Error() string {
	if len(e.Unknown) > 0 {
		return fmt.Sprintf("feature mismatch for %s: unknown features %s", e.CustomerID, strings.Join(e.Unknown, ", "))
	}
	return fmt.Sprintf("feature mismatch for %s: vector has %d values, classifier declares %d", e.CustomerID, e.Length, len(e.Declared))
}

// Vector orders f by names.
func Vector(f CustomerFeatures, names []string) ([]float64, error) {
	vec := make([]float64, 0, len(names))
	var unknown []string
	for _, n := range names {
		val, ok := f.Value(n)
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		vec = append(vec, val)
	}
	if len(unknown) > 0 {
		return nil, &FeatureMismatchError{CustomerID: f.CustomerID, Declared: names, Unknown: unknown, Length: len(vec)}
	}
	return vec, nil
}

type Prediction struct {
	CustomerID string    `json:"customer_id"`
	Cluster    int       `json:"cluster"`
	Vector     []float64 `json:"vector"`
}

// Predict builds the vector c declares and asks c for a cluster.
func Predict(c Classifier, f CustomerFeatures) (Prediction, error) {
	names := c.FeatureNames()
	vec, err := Vector(f, names)
	if err != nil {
		return Prediction{}, err
	}
	if len(names) == 0 || len(vec) != len(names) {
		return Prediction{}, &FeatureMismatchError{CustomerID: f.CustomerID, Declared: names, Length: len(vec)}
	}
	cluster, err := c.Predict(vec)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict %s: %w", f.CustomerID, err)
	}
	return Prediction{CustomerID: f.CustomerID, Cluster: cluster, Vector: vec}, nil
}

// PredictAll predicts every customer. A failed prediction is collected in
// errs and does not stop the others.
func PredictAll(c Classifier, features []CustomerFeatures) (preds []Prediction, errs []error) {
	for _, f := range features {
		p, err := Predict(c, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		preds = append(preds, p)
	}
	return preds, errs
}
