package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mcclellann/fredPayroll/pkg/dates"
	"github.com/mcclellann/fredPayroll/pkg/export"
	"github.com/mcclellann/fredPayroll/pkg/models"
	"github.com/mcclellann/fredPayroll/pkg/payroll"
	"github.com/mcclellann/fredPayroll/pkg/query"
)

// calculator uses ?strategy= when given, else the configured strategy.
func (s *Server) calculator(r *http.Request) (*payroll.Calculator, error) {
	strategy := s.strategy
	if name := r.URL.Query().Get("strategy"); name != "" {
		var err error
		if strategy, err = payroll.StrategyByName(name); err != nil {
			return nil, err
		}
	}
	return payroll.NewCalculator(strategy)
}

// period reads ?month=YYYY-MM, defaulting to the current month.
func (s *Server) period(r *http.Request) (int, time.Month, error) {
	key := r.URL.Query().Get("month")
	if key == "" {
		now := s.now()
		return now.Year(), now.Month(), nil
	}
	return dates.ParseMonthKey(key)
}

func (s *Server) year(r *http.Request) (int, error) {
	v := r.URL.Query().Get("year")
	if v == "" {
		return s.now().Year(), nil
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q", v)
	}
	return year, nil
}

func (s *Server) employeePayrollHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid employee ID")
	if !ok {
		return
	}
	year, month, err := s.period(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	calc, err := s.calculator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	e, err := s.roster.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(calc.MonthlyPayroll(e, year, month))
}

func (s *Server) monthlyPayrollHandler(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.period(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	calc, err := s.calculator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	employees, err := s.roster.Search(r.Context(), query.ParseCriteria(r.URL.Query()))
	if err != nil {
		s.writeError(w, err)
		return
	}

	records := calc.MonthlyPayrolls(employees, year, month)
	total := payroll.Aggregate(records)
	total.Year, total.Month, total.MonthKey = year, month, dates.MonthKey(year, month)
	total.Strategy = calc.Strategy().Name()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Records []models.MonthlyPayrollRecord `json:"records"`
		Total   models.MonthlyPayrollRecord   `json:"total"`
	}{records, total})
}

func (s *Server) yearlyPayrollHandler(w http.ResponseWriter, r *http.Request) {
	year, err := s.year(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	calc, err := s.calculator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	employees, err := s.roster.Search(r.Context(), query.ParseCriteria(r.URL.Query()))
	if err != nil {
		s.writeError(w, err)
		return
	}

	months := calc.YearlyPayroll(employees, year)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Months []models.MonthlyPayrollRecord `json:"months"`
		Totals models.MonthlyPayrollRecord   `json:"totals"`
	}{months, payroll.YearTotals(months)})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	employees, err := s.roster.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payroll.Summarize(employees, s.now()))
}

func (s *Server) locationsHandler(w http.ResponseWriter, r *http.Request) {
	employees, err := s.roster.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(query.Locations(employees))
}

func (s *Server) exportEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	employees, err := s.roster.Search(r.Context(), query.ParseCriteria(r.URL.Query()))
	if err != nil {
		s.writeError(w, err)
		return
	}

	setAttachment(w, "text/csv; charset=utf-8", export.FileName("employees", s.now()))
	if err := export.WriteEmployees(w, employees); err != nil {
		s.logger.Error("employee export failed", zap.Error(err))
	}
}

func (s *Server) exportMonthlyHandler(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.period(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	calc, err := s.calculator(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	employees, err := s.roster.Search(r.Context(), query.ParseCriteria(r.URL.Query()))
	if err != nil {
		s.writeError(w, err)
		return
	}

	setAttachment(w, "text/csv; charset=utf-8", export.FileName("payroll_"+dates.MonthKey(year, month), s.now()))
	if err := export.WriteMonthly(w, calc.MonthlyPayrolls(employees, year, month)); err != nil {
		s.logger.Error("payroll export failed", zap.Error(err))
	}
}

func (s *Server) importEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	inputs, err := export.ReadEmployees(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	type failure struct {
		Row        int    `json:"row"`
		EmployeeID string `json:"employeeId"`
		Error      string `json:"error"`
	}
	var resp struct {
		Created  int       `json:"created"`
		Failures []failure `json:"failures"`
	}
	resp.Failures = []failure{}
	for i, in := range inputs {
		if _, err := s.roster.Create(r.Context(), in); err != nil {
			resp.Failures = append(resp.Failures, failure{Row: i + 2, EmployeeID: in.EmployeeID, Error: err.Error()})
			continue
		}
		resp.Created++
	}
	s.logger.Info("employees imported", zap.Int("created", resp.Created), zap.Int("failed", len(resp.Failures)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func setAttachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
