package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-billdesk/billing"
	"github.com/jrsteele09/go-billdesk/secured"
	"github.com/rs/zerolog/log"
)

// BillsPageHandler renders all bills, optionally filtered by category.
func (s *Server) BillsPageHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("bills.html")
	if err != nil {
		panic("Failed to parse bills template: " + err.Error())
	}
	return func(w http.ResponseWriter, r *http.Request) {
		category := billing.CategoryType(r.URL.Query().Get("category"))

		bills, err := s.bills.ListBills(r.Context(), category)
		if err != nil {
			if errors.Is(err, secured.ErrAuthorizationFailure) {
				s.redirectToReauth(w, r)
				return
			}
			log.Error().Err(err).Msg("listing bills")
			bills = nil
		}

		data := s.pageData(r)
		data.Bills = bills
		data.Categories = billing.AllCategories
		data.SelectedCategory = category

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	}
}

// BillDetailsHandler renders one bill with its pay form. The pay action is
// only offered while the bill's calendar month is the current one.
func (s *Server) BillDetailsHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("bill_details.html")
	if err != nil {
		panic("Failed to parse bill details template: " + err.Error())
	}
	return func(w http.ResponseWriter, r *http.Request) {
		billID := r.PathValue("id")

		bill, err := s.bills.GetBill(r.Context(), billID)
		if err != nil {
			if errors.Is(err, secured.ErrAuthorizationFailure) {
				s.redirectToReauth(w, r)
				return
			}
			http.Error(w, "Bill not found or access denied.", http.StatusNotFound)
			return
		}

		data := s.pageData(r)
		data.Bill = bill
		data.Payable = bill.PayableNow(s.nowTime())
		data.Today = s.nowTime().Format("2006-01-02")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	}
}

// PayBillHandler records a payment for a bill.
func (s *Server) PayBillHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		billID := r.PathValue("id")

		bill, err := s.bills.GetBill(r.Context(), billID)
		if err != nil {
			if errors.Is(err, secured.ErrAuthorizationFailure) {
				s.redirectToReauth(w, r)
				return
			}
			http.Error(w, "Bill not found or access denied.", http.StatusNotFound)
			return
		}
		if !bill.PayableNow(s.nowTime()) {
			redirectWithError(w, r, RouteBills+"/"+billID, "This bill can only be paid during its own month.")
			return
		}

		amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
		if err != nil {
			redirectWithError(w, r, RouteBills+"/"+billID, "Enter a valid amount.")
			return
		}

		payment := billing.Payment{
			BillID:         bill.ID,
			Username:       r.FormValue("username"),
			Email:          r.FormValue("email"),
			Phone:          r.FormValue("phone"),
			Address:        r.FormValue("address"),
			Amount:         amount,
			DatePaid:       r.FormValue("date"),
			AdditionalInfo: r.FormValue("additionalInfo"),
		}

		if _, err := s.bills.RecordPayment(r.Context(), payment); err != nil {
			if errors.Is(err, secured.ErrAuthorizationFailure) {
				s.redirectToReauth(w, r)
				return
			}
			log.Error().Err(err).Str("billId", billID).Msg("recording payment")
			redirectWithError(w, r, RouteBills+"/"+billID, "An error occurred during payment submission.")
			return
		}

		redirectWithInfo(w, r, RouteMyBills, "Bill successfully paid and recorded!")
	}
}
