package main

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/mcclellann/fredPayroll/pkg/dates"
	"github.com/mcclellann/fredPayroll/pkg/models"
	"github.com/mcclellann/fredPayroll/pkg/receipt"
)

func (s *Server) createReceiptHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid employee ID")
	if !ok {
		return
	}

	var req struct {
		Type  string               `json:"type"`
		Items []receipt.CustomItem `json:"items"`
		Notes string               `json:"notes"`
	}
	if err := s.decode(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	typ, err := receipt.ParseType(req.Type)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rc, err := s.roster.IssueReceipt(r.Context(), id, typ, req.Items, req.Notes)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rc)
}

func (s *Server) listReceiptsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := receipt.Filter{
		Search:     q.Get("search"),
		EmployeeID: q.Get("employeeId"),
		From:       dates.Parse(q.Get("from")),
		To:         dates.Parse(q.Get("to")),
	}
	if t := q.Get("type"); t != "" && t != "all" {
		typ, err := receipt.ParseType(t)
		if err != nil {
			s.writeError(w, err)
			return
		}
		f.Type = typ
	}

	receipts, err := s.roster.Receipts(r.Context(), f)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Receipts []models.Receipt `json:"receipts"`
		Totals   receipt.Totals   `json:"totals"`
	}{receipts, receipt.TotalsByType(receipts)})
}

func (s *Server) getReceiptHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid receipt ID")
	if !ok {
		return
	}

	rc, err := s.roster.Receipt(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rc)
}

func (s *Server) receiptPDFHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Invalid receipt ID")
	if !ok {
		return
	}

	rc, err := s.roster.Receipt(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Render fully before writing so a failure can still become a 500.
	var buf bytes.Buffer
	head := receipt.Letterhead{CompanyName: s.cfg.CompanyName, Currency: s.cfg.Currency}
	if err := receipt.WritePDF(&buf, rc, head); err != nil {
		s.writeError(w, err)
		return
	}

	setAttachment(w, "application/pdf", rc.Number+".pdf")
	w.Write(buf.Bytes())
}
