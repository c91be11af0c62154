// Package classifier loads the externally trained clustering model and
// exposes it through segment.Classifier. The model is a nearest-centroid
// assignment over standardized features.
package classifier

import (
	"fmt"
	"math"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Model struct {
	FeatureColumns  []string         `yaml:"feature_columns" validate:"required,min=1,dive,required"`
	Mean            []float64        `yaml:"mean"`
	Scale           []float64        `yaml:"scale"`
	Centroids       [][]float64      `yaml:"centroids" validate:"required,min=1"`
	Labels          map[int]string   `yaml:"labels"`
	Recommendations map[int][]string `yaml:"recommendations"`
}

// Load reads a model file and checks that its arrays agree with the declared
// feature columns.
func Load(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Model{}
	if err := yaml.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return m, nil
}

func (m *Model) validate() error {
	if err := validator.New().Struct(m); err != nil {
		return err
	}
	n := len(m.FeatureColumns)
	if len(m.Mean) != 0 && len(m.Mean) != n {
		return fmt.Errorf("mean has %d values for %d features", len(m.Mean), n)
	}
	if len(m.Scale) != 0 && len(m.Scale) != n {
		return fmt.Errorf("scale has %d values for %d features", len(m.Scale), n)
	}
	for i, c := range m.Centroids {
		if len(c) != n {
			return fmt.Errorf("centroid %d has %d values for %d features", i, len(c), n)
		}
	}
	return nil
}

func (m *Model) FeatureNames() []string {
	return append([]string(nil), m.FeatureColumns...)
}

// Predict standardizes vector and returns the index of the nearest centroid.
// Equal distances resolve to the lower index.
func (m *Model) Predict(vector []float64) (int, error) {
	if len(vector) != len(m.FeatureColumns) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.FeatureColumns), len(vector))
	}
	best, bestDist := 0, math.Inf(1)
	for i, c := range m.Centroids {
		dist := 0.0
		for j, v := range vector {
			d := m.standardize(j, v) - c[j]
			dist += d * d
		}
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best, nil
}

func (m *Model) standardize(j int, v float64) float64 {
	if len(m.Mean) > 0 {
		v -= m.Mean[j]
	}
	if len(m.Scale) > 0 && m.Scale[j] != 0 {
		v /= m.Scale[j]
	}
	return v
}

// Label names a cluster, falling back to "Cluster N".
func (m *Model) Label(cluster int) string {
	if l, ok := m.Labels[cluster]; ok {
		return l
	}
	return fmt.Sprintf("Cluster %d", cluster)
}

func (m *Model) Recommendation(cluster int) []string {
	return m.Recommendations[cluster]
}

// Clusters lists cluster indexes in ascending order.
func (m *Model) Clusters() []int {
	out := make([]int, len(m.Centroids))
	for i := range out {
		out[i] = i
	}
	return out
}
