package server_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/go-billdesk/billing"
	"github.com/stretchr/testify/require"
)

func TestLoginPage_CarriesRedirect(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.get(t, "/login?redirect=%2FmyBills")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `name="redirect" value="/myBills"`)
}

func TestLoginSubmit_BadCredentials(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.postForm(t, "/login", url.Values{
		"email":    {testEmail},
		"password": {"wrong-password"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/login", location.Path)
	require.Contains(t, location.Query().Get("error"), "Check your email or password")

	id, _ := f.store.Current()
	require.Nil(t, id)
}

func TestRegisterSubmit_CreatesAndSignsIn(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.postForm(t, "/register", url.Values{
		"name":     {"New User"},
		"photoURL": {"https://example.com/new.png"},
		"email":    {"new.user@example.com"},
		"password": {"Passw0rdOk"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/bills", rec.Header().Get("Location"))

	id, _ := f.store.Current()
	require.NotNil(t, id)
	require.Equal(t, "new.user@example.com", id.Email)
	require.Equal(t, "New User", id.DisplayName)
}

func TestRegisterSubmit_DuplicateAccount(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.postForm(t, "/register", url.Values{
		"name":     {testName},
		"email":    {testEmail},
		"password": {"Passw0rdOk"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/register", location.Path)
	require.Contains(t, location.Query().Get("error"), "already exists")
}

func TestRegisterSubmit_WeakPassword(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.postForm(t, "/register", url.Values{
		"name":     {"New User"},
		"email":    {"new.user@example.com"},
		"password": {"weak"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Contains(t, location.Query().Get("error"), "at least 8 characters")
}

func TestForgotPassword(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("empty email", func(t *testing.T) {
		rec := f.postForm(t, "/forgot-password", url.Values{})

		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Contains(t, location.Query().Get("error"), "enter your email address first")
	})

	t.Run("known account", func(t *testing.T) {
		rec := f.postForm(t, "/forgot-password", url.Values{"email": {testEmail}})

		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Contains(t, location.Query().Get("info"), "reset link sent")
		require.Equal(t, []string{testEmail}, f.gateway.ResetRequests)
	})
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	rec := f.get(t, "/logout")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	id, _ := f.store.Current()
	require.Nil(t, id)
}

func TestFederatedStart_RedirectsToProvider(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.get(t, "/auth/federated?redirect=%2FmyBills")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "https://fake-issuer.example.com/authorize")
}

func TestFederatedCallback_ReturnsToIntent(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.get(t, "/auth/federated?redirect=%2FmyBills")
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	rec = f.get(t, "/auth/callback?state="+url.QueryEscape(state)+"&code=auth-code")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/myBills", rec.Header().Get("Location"))

	id, _ := f.store.Current()
	require.NotNil(t, id)
}

func TestFederatedCallback_ProviderError(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.get(t, "/auth/callback?error=access_denied")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/login", location.Path)
	require.Contains(t, location.Query().Get("error"), "cancelled or rejected")
}

func TestPayBill_RecordsPayment(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	var recorded billing.Payment
	f.billsHandler = func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(billing.Bill{ID: "b1", Title: "March Gas", Date: "2026-03-05", Amount: 80})
		case r.Method == http.MethodPost:
			json.NewDecoder(r.Body).Decode(&recorded)
			json.NewEncoder(w).Encode(map[string]string{"insertedId": "pay-1"})
		}
	}

	rec := f.postForm(t, "/bills/b1/pay", url.Values{
		"username":       {testName},
		"email":          {testEmail},
		"phone":          {"555-0100"},
		"address":        {"12 High Street"},
		"amount":         {"80.00"},
		"date":           {"2026-03-15"},
		"additionalInfo": {"paid in full"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/myBills", location.Path)
	require.Contains(t, location.Query().Get("info"), "successfully paid")

	require.Equal(t, "b1", recorded.BillID)
	require.Equal(t, billing.StatusPaid, recorded.Status)
	require.Equal(t, 80.00, recorded.Amount)
}

// TestPayBill_OutsideBillMonth tests that payment is refused server-side even
// if the form is submitted directly.
func TestPayBill_OutsideBillMonth(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	f.billsHandler = func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			t.Error("payment must not reach the backend outside the bill's month")
			return
		}
		json.NewEncoder(w).Encode(billing.Bill{ID: "b1", Title: "February Gas", Date: "2026-02-05", Amount: 80})
	}

	rec := f.postForm(t, "/bills/b1/pay", url.Values{"amount": {"80.00"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Contains(t, location.Query().Get("error"), "only be paid during its own month")
}

func TestUpdatePayment(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	f.billsHandler = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/myBills/pay-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]int{"modifiedCount": 1})
	}

	rec := f.postForm(t, "/myBills/pay-1", url.Values{
		"username": {"Jane Renamed"},
		"amount":   {"90.00"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Contains(t, location.Query().Get("info"), "updated")
}

func TestDeletePayment_AlreadyGone(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	f.billsHandler = func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int{"deletedCount": 0})
	}

	rec := f.postForm(t, "/myBills/pay-1/delete", url.Values{})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Contains(t, location.Query().Get("error"), "may have already been deleted")
}

// TestRejectedCredential_RedirectsToReauth tests the authorization-failure
// path end to end: the backend rejects the credential, the session is torn
// down, and the visitor lands on the re-authentication entry point.
func TestRejectedCredential_RedirectsToReauth(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	f.billsHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}

	rec := f.get(t, "/myBills")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/register", rec.Header().Get("Location"))

	id, _ := f.store.Current()
	require.Nil(t, id, "Rejected credential tears the session down")
}

func TestProfilePage(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	rec := f.get(t, "/myProfile")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), testName)
	require.Contains(t, rec.Body.String(), testEmail)
}

func TestProfileUpdate(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	rec := f.postForm(t, "/myProfile/update", url.Values{
		"name":     {"Jane Renamed"},
		"photoURL": {"https://example.com/renamed.png"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/myProfile", location.Path)
	require.Contains(t, location.Query().Get("info"), "updated successfully")

	id, _ := f.store.Current()
	require.NotNil(t, id)
	require.Equal(t, "Jane Renamed", id.DisplayName)
}

func TestStatement_ServesPDF(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	f.billsHandler = func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]billing.Payment{
			{ID: "pay-1", Username: testName, Amount: 120.50, DatePaid: "2026-03-10", Status: billing.StatusPaid},
		})
	}

	rec := f.get(t, "/myBills/statement.pdf")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	require.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"), "Response should be a PDF document")
}

func TestThemeToggle(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.postForm(t, "/theme", url.Values{"redirect": {"/bills"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/bills", rec.Header().Get("Location"))

	theme, err := f.prefs.Get()
	require.NoError(t, err)
	require.Equal(t, "dark", string(theme))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, "theme", cookies[0].Name)
	require.Equal(t, "dark", cookies[0].Value)
}
