package billing

import (
	"context"
	"net/url"

	apperrors "github.com/jrsteele09/go-billdesk/internal/errors"
	"github.com/jrsteele09/go-billdesk/secured"
	"github.com/pkg/errors"
)

// Client is a typed view of the remote bills/payments service. All calls go
// through the secured client, so they carry the session's credential and
// inherit the standard authorization-failure handling.
type Client struct {
	secured *secured.Client
}

func NewClient(securedClient *secured.Client) (*Client, error) {
	if securedClient == nil {
		return nil, errors.New("[billing.NewClient] secured client is required")
	}
	return &Client{secured: securedClient}, nil
}

// Result envelopes used by the service's write operations.
type insertResult struct {
	InsertedID string `json:"insertedId"`
}

type updateResult struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

type deleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// ListBills fetches all bills, optionally filtered by category.
func (c *Client) ListBills(ctx context.Context, category CategoryType) ([]Bill, error) {
	path := "/bills"
	if category != "" {
		path += "?category=" + url.QueryEscape(string(category))
	}

	var bills []Bill
	if err := c.secured.Get(ctx, path, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

// GetBill fetches one bill by identifier.
func (c *Client) GetBill(ctx context.Context, billID string) (*Bill, error) {
	var bill Bill
	if err := c.secured.Get(ctx, "/bills/"+url.PathEscape(billID), &bill); err != nil {
		return nil, err
	}
	if bill.ID == "" {
		return nil, apperrors.ErrNotFound
	}
	return &bill, nil
}

// RecordPayment records a paid bill and returns the new record's identifier.
func (c *Client) RecordPayment(ctx context.Context, payment Payment) (string, error) {
	payment.Status = StatusPaid

	var result insertResult
	if err := c.secured.Post(ctx, "/myBills", payment, &result); err != nil {
		return "", err
	}
	if result.InsertedID == "" {
		return "", &secured.RequestError{Status: 200, Body: "payment was not recorded"}
	}
	return result.InsertedID, nil
}

// ListPayments fetches a user's paid bills by email.
func (c *Client) ListPayments(ctx context.Context, email string) ([]Payment, error) {
	var payments []Payment
	if err := c.secured.Get(ctx, "/myBills?email="+url.QueryEscape(email), &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// UpdatePayment updates one paid-bill record by identifier.
func (c *Client) UpdatePayment(ctx context.Context, paymentID string, payment Payment) error {
	var result updateResult
	if err := c.secured.Put(ctx, "/myBills/"+url.PathEscape(paymentID), payment, &result); err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeletePayment deletes one paid-bill record by identifier. A record that was
// already gone reports ErrAlreadyDeleted.
func (c *Client) DeletePayment(ctx context.Context, paymentID string) error {
	var result deleteResult
	if err := c.secured.Delete(ctx, "/myBills/"+url.PathEscape(paymentID), &result); err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrAlreadyDeleted
	}
	return nil
}
