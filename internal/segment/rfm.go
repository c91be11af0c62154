// Package segment derives customer and product segmentation statistics from a
// view: RFM scoring, product performance, temporal trends, cohort retention,
// discount impact, and the feature vectors handed to an external classifier.
package segment

import (
	"math"
	"sort"
	"strconv"
	"time"

	"northwind-analytics/internal/view"
)

const (
	Champions = "Champions"
	Loyal     = "Loyal"
	Potential = "Potential"
	AtRisk    = "At Risk"
	Lost      = "Lost"
)

// Segments lists the labels from best to worst.
var Segments = []string{Champions, Loyal, Potential, AtRisk, Lost}

type CustomerRFM struct {
	CustomerID  string  `json:"customer_id"`
	CompanyName *string `json:"company_name"`
	Country     *string `json:"country"`
	Recency     int     `json:"recency"`
	Frequency   int     `json:"frequency"`
	Monetary    float64 `json:"monetary"`
	RScore      int     `json:"r_score"`
	FScore      int     `json:"f_score"`
	MScore      int     `json:"m_score"`
	Score       string  `json:"rfm_score"`
	Total       int     `json:"rfm_total"`
	Segment     string  `json:"segment"`
}

// customerActivity is the per-customer rollup shared by RFM and Features.
type customerActivity struct {
	id        string
	company   *string
	country   *string
	orders    map[int]time.Time
	undated   map[int]struct{}
	monetary  view.Money
	discounts float64
	lines     int
	last      time.Time
	dated     bool
}

func (c *customerActivity) frequency() int { return len(c.orders) + len(c.undated) }

// orderDates returns the distinct order dates in ascending order.
func (c *customerActivity) orderDates() []time.Time {
	seen := map[time.Time]struct{}{}
	var out []time.Time
	for _, d := range c.orders {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// activity rolls v up per customer, ordered by customer id. Rows without a
// customer id are ignored.
func activity(v view.View) []*customerActivity {
	index := map[string]*customerActivity{}
	for r := range v.All() {
		if r.CustomerID == nil {
			continue
		}
		c, ok := index[*r.CustomerID]
		if !ok {
			c = &customerActivity{
				id:      *r.CustomerID,
				company: r.CompanyName,
				country: r.Country,
				orders:  map[int]time.Time{},
				undated: map[int]struct{}{},
			}
			index[c.id] = c
		}
		c.monetary.Add(r.LineTotal)
		c.discounts += r.Discount
		c.lines++
		if r.OrderDate == nil {
			c.undated[r.OrderID] = struct{}{}
			continue
		}
		c.orders[r.OrderID] = *r.OrderDate
		if !c.dated || r.OrderDate.After(c.last) {
			c.last = *r.OrderDate
			c.dated = true
		}
	}

	out := make([]*customerActivity, 0, len(index))
	for _, c := range index {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// RFM scores every customer with at least one dated order, ordered by
// customer id. Recency is measured against the latest order date in v.
func RFM(v view.View) []CustomerRFM {
	maxDate, ok := view.MaxDate(v)
	if !ok {
		return nil
	}

	var out []CustomerRFM
	for _, c := range activity(v) {
		if !c.dated {
			continue
		}
		out = append(out, CustomerRFM{
			CustomerID:  c.id,
			CompanyName: c.company,
			Country:     c.country,
			Recency:     daysBetween(c.last, maxDate),
			Frequency:   c.frequency(),
			Monetary:    c.monetary.Float64(),
		})
	}

	recency := make([]float64, len(out))
	frequency := make([]float64, len(out))
	monetary := make([]float64, len(out))
	for i, r := range out {
		recency[i] = float64(r.Recency)
		frequency[i] = float64(r.Frequency)
		monetary[i] = r.Monetary
	}

	rBins := quartileBins(recency)
	fBins := quartileBins(firstRanks(frequency))
	mBins := quartileBins(firstRanks(monetary))
	for i := range out {
		r := &out[i]
		r.RScore = 5 - rBins[i]
		r.FScore = fBins[i]
		r.MScore = mBins[i]
		r.Score = strconv.Itoa(r.RScore) + strconv.Itoa(r.FScore) + strconv.Itoa(r.MScore)
		r.Total = r.RScore + r.FScore + r.MScore
		r.Segment = SegmentFor(r.Total)
	}
	return out
}

// SegmentFor maps an RFM total (3 to 12) to its segment label.
func SegmentFor(total int) string {
	switch {
	case total >= 10:
		return Champions
	case total >= 8:
		return Loyal
	case total >= 6:
		return Potential
	case total >= 4:
		return AtRisk
	default:
		return Lost
	}
}

// firstRanks assigns ranks 1..n by ascending value. Equal values are ranked
// in the order they appear.
func firstRanks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	ranks := make([]float64, len(values))
	for rank, i := range idx {
		ranks[i] = float64(rank + 1)
	}
	return ranks
}

// quantile is the linearly interpolated q-quantile of sorted.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// quartileBins assigns each value to bin 1..4 using the 25/50/75% quantile
// edges. A value lands in the lowest bin whose upper edge it does not exceed,
// so collapsed edges merge bins instead of failing.
func quartileBins(values []float64) []int {
	bins := make([]int, len(values))
	if len(values) == 0 {
		return bins
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	edges := [3]float64{quantile(sorted, 0.25), quantile(sorted, 0.5), quantile(sorted, 0.75)}
	for i, v := range values {
		bins[i] = 4
		for j, e := range edges {
			if v <= e {
				bins[i] = j + 1
				break
			}
		}
	}
	return bins
}

type SegmentStat struct {
	Segment   string  `json:"segment"`
	Customers int     `json:"customers"`
	Revenue   float64 `json:"revenue"`
	Share     float64 `json:"share_pct"`
}

// SegmentSummary counts customers and revenue per segment. Every segment is
// listed, best first; Share is the percentage of customers to one decimal.
func SegmentSummary(rfm []CustomerRFM) []SegmentStat {
	stats := make([]SegmentStat, len(Segments))
	revenue := make([]view.Money, len(Segments))
	pos := map[string]int{}
	for i, s := range Segments {
		stats[i].Segment = s
		pos[s] = i
	}
	for _, r := range rfm {
		i := pos[r.Segment]
		stats[i].Customers++
		revenue[i].Add(r.Monetary)
	}
	for i := range stats {
		stats[i].Revenue = revenue[i].Float64()
		if len(rfm) > 0 {
			stats[i].Share = round(float64(stats[i].Customers)/float64(len(rfm))*100, 1)
		}
	}
	return stats
}
