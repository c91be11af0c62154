package segment

import (
	"time"

	"northwind-analytics/internal/aggregate"
	"northwind-analytics/internal/view"
)

type MonthlyPoint struct {
	Month    string   `json:"month"`
	Revenue  float64  `json:"revenue"`
	Orders   int      `json:"orders"`
	Quantity int      `json:"quantity"`
	Growth   *float64 `json:"revenue_growth"`
}

type WeekdayTotal struct {
	Day     string  `json:"day_of_week"`
	Revenue float64 `json:"revenue"`
}

type QuarterPoint struct {
	Quarter string  `json:"quarter"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type Trends struct {
	Monthly   []MonthlyPoint `json:"monthly"`
	Daily     []WeekdayTotal `json:"daily"`
	Quarterly []QuarterPoint `json:"quarterly"`
}

var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// BuildTrends builds the monthly, day-of-week and quarterly series. Month over
// month growth is a percentage rounded to two decimals, nil for the first
// month or after a month with zero revenue. Every weekday is listed,
// Monday first.
func BuildTrends(v view.View) Trends {
	var t Trends

	var prev *float64
	for _, p := range aggregate.SumByPeriod(v, aggregate.Month) {
		m := MonthlyPoint{Month: p.Period, Revenue: p.Revenue, Orders: p.Orders, Quantity: p.ItemsSold}
		if prev != nil && *prev != 0 {
			g := round((p.Revenue-*prev) / *prev * 100, 2)
			m.Growth = &g
		}
		revenue := p.Revenue
		prev = &revenue
		t.Monthly = append(t.Monthly, m)
	}

	byDay := map[time.Weekday]float64{}
	for r := range v.All() {
		if r.OrderDate != nil {
			byDay[r.OrderDate.Weekday()] += r.LineTotal
		}
	}
	t.Daily = make([]WeekdayTotal, len(weekdays))
	for i, d := range weekdays {
		t.Daily[i] = WeekdayTotal{Day: d.String(), Revenue: byDay[d]}
	}

	for _, p := range aggregate.SumByPeriod(v, aggregate.Quarter) {
		t.Quarterly = append(t.Quarterly, QuarterPoint{Quarter: p.Period, Revenue: p.Revenue, Orders: p.Orders})
	}
	return t
}
