package segment

import (
	"northwind-analytics/internal/aggregate"
	"northwind-analytics/internal/view"
)

type Profile struct {
	Customers      int                     `json:"customers"`
	Orders         int                     `json:"orders"`
	Revenue        float64                 `json:"revenue"`
	AvgBasket      float64                 `json:"avg_basket"`
	AvgDaysBetween float64                 `json:"avg_days_between_orders"`
	TopProducts    []aggregate.Ranked      `json:"top_products"`
	Monthly        []aggregate.PeriodTotal `json:"monthly"`
}

const profileTopProducts = 10

// ClusterProfile describes the orders of the given customers. Customers
// counts the ids passed in, whether or not they ordered within v.
func ClusterProfile(v view.View, customerIDs []string) Profile {
	distinct := map[string]struct{}{}
	for _, id := range customerIDs {
		distinct[id] = struct{}{}
	}
	sub := view.Subset(v, customerIDs)
	kpi := aggregate.KPISummary(sub)

	p := Profile{
		Customers: len(distinct),
		Orders:    kpi.Orders,
		Revenue:   kpi.Revenue,
		AvgBasket: kpi.AvgOrderValue,
		Monthly:   aggregate.SumByPeriod(sub, aggregate.Month),
	}
	// The keys are fixed so TopN cannot fail here.
	p.TopProducts, _ = aggregate.TopN(sub, aggregate.KeyProduct, aggregate.MetricLineTotal, profileTopProducts)

	var gaps float64
	acts := activity(sub)
	n := 0
	for _, c := range acts {
		if !c.dated {
			continue
		}
		gaps += meanGap(c.orderDates())
		n++
	}
	if n > 0 {
		p.AvgDaysBetween = gaps / float64(n)
	}
	return p
}
