package main

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mcclellann/fredPayroll/pkg/ledger"
	"github.com/mcclellann/fredPayroll/pkg/models"
	"github.com/mcclellann/fredPayroll/pkg/query"
)

func (s *Server) listEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	employees, err := s.roster.Search(r.Context(), query.ParseCriteria(r.URL.Query()))
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(employees)
}

func (s *Server) createEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	var in models.EmployeeInput
	if err := s.decode(w, r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := s.roster.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(e)
}

func (s *Server) getEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid employee ID")
	if !ok {
		return
	}

	e, err := s.roster.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(e)
}

func (s *Server) updateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid employee ID")
	if !ok {
		return
	}

	var in models.EmployeeInput
	if err := s.decode(w, r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := s.roster.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(e)
}

func (s *Server) deleteEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid employee ID")
	if !ok {
		return
	}

	if err := s.roster.Remove(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addEntryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid employee ID")
	if !ok {
		return
	}

	e, entry, err := s.roster.AddEntry(r.Context(), id, ledgerKind(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(struct {
		Entry    models.LedgerEntry `json:"entry"`
		Employee models.Employee    `json:"employee"`
	}{entry, e})
}

func (s *Server) updateEntryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid employee ID")
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID", "Invalid entry ID")
	if !ok {
		return
	}

	var req struct {
		Field ledger.Field `json:"field"`
		Value any          `json:"value"`
	}
	if err := s.decode(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	switch req.Field {
	case ledger.FieldOriginalAmount, ledger.FieldDeduction, ledger.FieldDate, ledger.FieldReason, ledger.FieldInstallments:
	default:
		http.Error(w, "Unknown field", http.StatusBadRequest)
		return
	}

	e, err := s.roster.UpdateEntry(r.Context(), id, ledgerKind(r), entryID, req.Field, req.Value)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(e)
}

func (s *Server) deleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid employee ID")
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID", "Invalid entry ID")
	if !ok {
		return
	}

	e, err := s.roster.RemoveEntry(r.Context(), id, ledgerKind(r), entryID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(e)
}

func ledgerKind(r *http.Request) models.LedgerKind {
	if mux.Vars(r)["kind"] == "loans" {
		return models.LedgerKindLoan
	}
	return models.LedgerKindAdvance
}

func pathID(w http.ResponseWriter, r *http.Request, name, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		http.Error(w, msg, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	dec.UseNumber() // Keep amounts exact until money.Coerce reads them
	return dec.Decode(dst)
}
