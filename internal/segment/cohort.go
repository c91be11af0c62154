package segment

import (
	"sort"
	"time"

	"northwind-analytics/internal/view"
)

// CohortMatrix holds retention percentages by cohort month (rows) and months
// since the cohort's first month (columns). Cells a cohort never reached are
// nil. Column 0 is always 100.
type CohortMatrix struct {
	Cohorts []string     `json:"cohorts"`
	Sizes   []int        `json:"sizes"`
	Cells   [][]*float64 `json:"retention"`
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func monthLabel(index int) string {
	return time.Date(index/12, time.Month(index%12+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// Cohorts assigns each customer to the month of their first dated order and
// counts distinct active customers per month offset.
func Cohorts(v view.View) *CohortMatrix {
	first := map[string]int{}
	type visit struct {
		customer string
		month    int
	}
	var visits []visit
	for r := range v.All() {
		if r.CustomerID == nil || r.OrderDate == nil {
			continue
		}
		m := monthIndex(*r.OrderDate)
		if f, ok := first[*r.CustomerID]; !ok || m < f {
			first[*r.CustomerID] = m
		}
		visits = append(visits, visit{*r.CustomerID, m})
	}

	active := map[int]map[int]map[string]struct{}{}
	width := 0
	for _, vi := range visits {
		cohort := first[vi.customer]
		offset := vi.month - cohort
		if active[cohort] == nil {
			active[cohort] = map[int]map[string]struct{}{}
		}
		if active[cohort][offset] == nil {
			active[cohort][offset] = map[string]struct{}{}
		}
		active[cohort][offset][vi.customer] = struct{}{}
		if offset+1 > width {
			width = offset + 1
		}
	}

	cohorts := make([]int, 0, len(active))
	for c := range active {
		cohorts = append(cohorts, c)
	}
	sort.Ints(cohorts)

	m := &CohortMatrix{
		Cohorts: make([]string, len(cohorts)),
		Sizes:   make([]int, len(cohorts)),
		Cells:   make([][]*float64, len(cohorts)),
	}
	for i, c := range cohorts {
		size := len(active[c][0])
		m.Cohorts[i] = monthLabel(c)
		m.Sizes[i] = size
		m.Cells[i] = make([]*float64, width)
		for offset, customers := range active[c] {
			pct := float64(len(customers)) / float64(size) * 100
			m.Cells[i][offset] = &pct
		}
	}
	return m
}

// Offsets is the number of month columns.
func (m *CohortMatrix) Offsets() int {
	if len(m.Cells) == 0 {
		return 0
	}
	return len(m.Cells[0])
}

func (m *CohortMatrix) row(cohort string) int {
	for i, c := range m.Cohorts {
		if c == cohort {
			return i
		}
	}
	return -1
}

// Retention returns the percentage for cohort ("2006-01") at offset, or false
// when the cell is absent.
func (m *CohortMatrix) Retention(cohort string, offset int) (float64, bool) {
	i := m.row(cohort)
	if i < 0 || offset < 0 || offset >= len(m.Cells[i]) || m.Cells[i][offset] == nil {
		return 0, false
	}
	return *m.Cells[i][offset], true
}

// Size is the number of customers in cohort, 0 if unknown.
func (m *CohortMatrix) Size(cohort string) int {
	if i := m.row(cohort); i >= 0 {
		return m.Sizes[i]
	}
	return 0
}
