package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-billdesk/billing"
	apperrors "github.com/jrsteele09/go-billdesk/internal/errors"
	"github.com/jrsteele09/go-billdesk/report"
	"github.com/jrsteele09/go-billdesk/secured"
	"github.com/rs/zerolog/log"
)

// MyBillsPageHandler renders the current user's payment history.
func (s *Server) MyBillsPageHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("my_bills.html")
	if err != nil {
		panic("Failed to parse my bills template: " + err.Error())
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := s.session.Current()

		payments, err := s.bills.ListPayments(r.Context(), id.Email)
		if err != nil {
			if errors.Is(err, secured.ErrAuthorizationFailure) {
				s.redirectToReauth(w, r)
				return
			}
			log.Error().Err(err).Msg("listing payments")
			payments = nil
		}

		data := s.pageData(r)
		data.Payments = payments

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	}
}

// UpdatePaymentHandler edits one paid-bill record.
func (s *Server) UpdatePaymentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		paymentID := r.PathValue("id")

		amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
		if err != nil {
			redirectWithError(w, r, RouteMyBills, "Enter a valid amount.")
			return
		}

		payment := billing.Payment{
			Username:       r.FormValue("username"),
			Phone:          r.FormValue("phone"),
			Address:        r.FormValue("address"),
			Amount:         amount,
			DatePaid:       r.FormValue("date"),
			AdditionalInfo: r.FormValue("additionalInfo"),
			Status:         billing.StatusPaid,
		}

		if err := s.bills.UpdatePayment(r.Context(), paymentID, payment); err != nil {
			switch {
			case errors.Is(err, secured.ErrAuthorizationFailure):
				s.redirectToReauth(w, r)
			case errors.Is(err, apperrors.ErrNotFound):
				redirectWithError(w, r, RouteMyBills, "Could not update the record. It may have been removed.")
			default:
				log.Error().Err(err).Str("paymentId", paymentID).Msg("updating payment")
				redirectWithError(w, r, RouteMyBills, "Update failed due to a server or network issue.")
			}
			return
		}

		redirectWithInfo(w, r, RouteMyBills, "Payment record updated.")
	}
}

// DeletePaymentHandler removes one paid-bill record.
func (s *Server) DeletePaymentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID := r.PathValue("id")

		if err := s.bills.DeletePayment(r.Context(), paymentID); err != nil {
			switch {
			case errors.Is(err, secured.ErrAuthorizationFailure):
				s.redirectToReauth(w, r)
			case errors.Is(err, apperrors.ErrAlreadyDeleted):
				redirectWithError(w, r, RouteMyBills, "Could not delete the item. It may have already been deleted.")
			default:
				log.Error().Err(err).Str("paymentId", paymentID).Msg("deleting payment")
				redirectWithError(w, r, RouteMyBills, "Deletion failed due to a server or network issue.")
			}
			return
		}

		redirectWithInfo(w, r, RouteMyBills, "Your bill has been deleted.")
	}
}

// StatementHandler streams the user's payment history as a PDF statement.
func (s *Server) StatementHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := s.session.Current()

		payments, err := s.bills.ListPayments(r.Context(), id.Email)
		if err != nil {
			if errors.Is(err, secured.ErrAuthorizationFailure) {
				s.redirectToReauth(w, r)
				return
			}
			http.Error(w, "could not load payment history", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="statement.pdf"`)
		if err := report.WriteStatement(w, id, payments); err != nil {
			log.Error().Err(err).Msg("writing statement")
		}
	}
}
