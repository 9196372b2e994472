package flowstate_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-billdesk/identity/flowstate"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo_UpsertAndGet(t *testing.T) {
	repo := flowstate.NewInMemoryRepo()

	stored := &flowstate.FlowState{
		CodeVerifier: "verifier-123",
		Nonce:        "nonce-456",
		Intent:       "/myBills",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.Upsert("state-1", stored))

	got, err := repo.Get("state-1")
	require.NoError(t, err)
	require.Equal(t, "verifier-123", got.CodeVerifier)
	require.Equal(t, "nonce-456", got.Nonce)
	require.Equal(t, "/myBills", got.Intent)

	// Mutating the returned copy must not touch the stored entry.
	got.Intent = "/tampered"
	again, err := repo.Get("state-1")
	require.NoError(t, err)
	require.Equal(t, "/myBills", again.Intent)
}

func TestInMemoryRepo_GetUnknownState(t *testing.T) {
	repo := flowstate.NewInMemoryRepo()

	_, err := repo.Get("missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "state not found")
}

func TestInMemoryRepo_ExpiredState(t *testing.T) {
	repo := flowstate.NewInMemoryRepo()

	require.NoError(t, repo.Upsert("state-1", &flowstate.FlowState{
		CodeVerifier: "verifier-123",
		CreatedAt:    time.Now().Add(-16 * time.Minute),
	}))

	_, err := repo.Get("state-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "state expired")
}

func TestInMemoryRepo_Delete(t *testing.T) {
	repo := flowstate.NewInMemoryRepo()

	require.NoError(t, repo.Upsert("state-1", &flowstate.FlowState{CreatedAt: time.Now()}))
	require.NoError(t, repo.Delete("state-1"))

	_, err := repo.Get("state-1")
	require.Error(t, err)
}

func TestInMemoryRepo_Validation(t *testing.T) {
	repo := flowstate.NewInMemoryRepo()

	require.Error(t, repo.Upsert("", &flowstate.FlowState{}))
	require.Error(t, repo.Upsert("state-1", nil))

	_, err := repo.Get("")
	require.Error(t, err)
	require.Error(t, repo.Delete(""))
}
