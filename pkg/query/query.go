// Package query selects employees for listing and export.
package query

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredPayroll/pkg/dates"
	"github.com/mcclellann/fredPayroll/pkg/ledger"
	"github.com/mcclellann/fredPayroll/pkg/models"
)

type Category string

const (
	CategoryAll        Category = ""
	CategoryHighSalary Category = "high-salary"
	CategoryRecent     Category = "recent"
)

type Tab string

const (
	TabAll              Tab = ""
	TabCommission       Tab = "commission"
	TabAdvance          Tab = "advance"
	TabLoan             Tab = "loan"
	TabRemainingAdvance Tab = "remaining-advance"
	TabRemainingLoan    Tab = "remaining-loan"
)

var (
	HighSalaryThreshold = decimal.NewFromInt(50000)
	RecentCutoff        = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Criteria are AND-ed together. Zero values match everything.
type Criteria struct {
	Search   string
	Category Category
	Location string
	Tab      Tab
}

// ParseCriteria reads criteria from request query parameters. "all" is
// accepted as an alias for no filter.
func ParseCriteria(v url.Values) Criteria {
	c := Criteria{
		Search:   strings.TrimSpace(v.Get("search")),
		Category: Category(strings.ToLower(strings.TrimSpace(v.Get("category")))),
		Location: strings.TrimSpace(v.Get("location")),
		Tab:      Tab(strings.ToLower(strings.TrimSpace(v.Get("tab")))),
	}
	if c.Category == "all" {
		c.Category = CategoryAll
	}
	if c.Tab == "all" {
		c.Tab = TabAll
	}
	return c
}

// Apply returns the employees matching c, keeping their order.
func Apply(employees []models.Employee, c Criteria) []models.Employee {
	out := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		if Match(e, c) {
			out = append(out, e)
		}
	}
	return out
}

// Match reports whether e passes every predicate in c.
func Match(e models.Employee, c Criteria) bool {
	return matchSearch(e, c.Search) &&
		matchCategory(e, c.Category) &&
		matchLocation(e, c.Location) &&
		matchTab(e, c.Tab)
}

func matchSearch(e models.Employee, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(e.Name), term) ||
		strings.Contains(strings.ToLower(e.EmployeeID), term) ||
		strings.Contains(strings.ToLower(e.JobTitle), term)
}

func matchCategory(e models.Employee, cat Category) bool {
	switch cat {
	case CategoryHighSalary:
		return e.NetSalary.GreaterThanOrEqual(HighSalaryThreshold)
	case CategoryRecent:
		return dates.After(e.JoiningDate, RecentCutoff)
	default:
		return true
	}
}

func matchLocation(e models.Employee, location string) bool {
	if location == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(e.Location), location)
}

func matchTab(e models.Employee, tab Tab) bool {
	switch tab {
	case TabCommission:
		return e.Commission.IsPositive()
	case TabAdvance:
		return ledger.Sum(e.Advances).Deduction.IsPositive()
	case TabLoan:
		return ledger.Sum(e.Loans).Deduction.IsPositive()
	case TabRemainingAdvance:
		return e.RemainingAdvance.IsPositive()
	case TabRemainingLoan:
		return e.RemainingLoan.IsPositive()
	default:
		return true
	}
}

// Locations lists the distinct non-empty locations, sorted case-insensitively.
func Locations(employees []models.Employee) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range employees {
		loc := strings.TrimSpace(e.Location)
		key := strings.ToLower(loc)
		if loc == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, loc)
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}
