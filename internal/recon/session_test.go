package recon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tallybook/internal/ledger"
	"github.com/tallybook-dev/tallybook/internal/logging"
	"github.com/tallybook-dev/tallybook/internal/model"
)

type allAccounts struct{}

func (allAccounts) Exists(int) bool { return true }

const testAccountID = 1010

// newTestBook wires a real ledger and session service over one temp book,
// with the reconciliation store enforcing locks on the ledger side.
func newTestBook(t *testing.T) (*Service, *ledger.Service) {
	t.Helper()
	root := t.TempDir()
	store := NewStore(root)
	led := ledger.NewService(root, allAccounts{}, store, ledger.GSTAccounts{Paid: 1310, Collected: 2310})
	return NewService(store, led, logging.NewNop()), led
}

func jan(day int) time.Time {
	return time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC)
}

func addSplit(t *testing.T, led *ledger.Service, day int, payee, amount string) string {
	t.Helper()
	txID, err := led.AddSplit(ledger.SplitParams{
		Date:            jan(day),
		Payee:           payee,
		CashAccount:     testAccountID,
		Amount:          dec(amount),
		CategoryAccount: 5200,
	})
	require.NoError(t, err)
	return txID
}

func TestStart(t *testing.T) {
	svc, _ := newTestBook(t)

	rec, err := svc.Start(testAccountID, jan(1), jan(31), dec("1200.00"), dec("1100.00"), "january")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, model.ReconciliationInProgress, rec.Status)

	got, err := svc.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "january", got.Notes)
}

func TestStart_ConflictsWithInProgress(t *testing.T) {
	svc, _ := newTestBook(t)

	_, err := svc.Start(testAccountID, jan(1), jan(31), dec("0.00"), dec("0.00"), "")
	require.NoError(t, err)

	_, err = svc.Start(testAccountID, jan(1), jan(31), dec("0.00"), dec("0.00"), "")
	var ce ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Reason, "in progress")

	// A different account is fine.
	_, err = svc.Start(1020, jan(1), jan(31), dec("0.00"), dec("0.00"), "")
	assert.NoError(t, err)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestBook(t)
	_, err := svc.Get("missing")
	var nf NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestReconcilePostings(t *testing.T) {
	svc, led := newTestBook(t)
	txID := addSplit(t, led, 5, "Woolworths", "-52.30")

	rec, err := svc.Start(testAccountID, jan(1), jan(31), dec("0.00"), dec("-52.30"), "")
	require.NoError(t, err)

	require.NoError(t, svc.ReconcilePostings(rec.ID, []string{txID + "a"}))

	p, err := led.FindPosting(txID + "a")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, p.ReconciliationID)
	assert.True(t, p.Cleared)
}

func TestReconcilePostings_RejectsOtherAccount(t *testing.T) {
	svc, led := newTestBook(t)
	txID := addSplit(t, led, 5, "Woolworths", "-52.30")

	rec, err := svc.Start(testAccountID, jan(1), jan(31), dec("0.00"), dec("0.00"), "")
	require.NoError(t, err)

	// Posting "b" is the category side, not the session's account.
	err = svc.ReconcilePostings(rec.ID, []string{txID + "b"})
	var ce ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Reason, "not on account")
}

func TestUnreconcilePostings(t *testing.T) {
	svc, led := newTestBook(t)
	txID := addSplit(t, led, 5, "Woolworths", "-52.30")

	rec, err := svc.Start(testAccountID, jan(1), jan(31), dec("0.00"), dec("-52.30"), "")
	require.NoError(t, err)
	require.NoError(t, svc.ReconcilePostings(rec.ID, []string{txID + "a"}))

	require.NoError(t, svc.UnreconcilePostings(rec.ID, []string{txID + "a"}))

	p, err := led.FindPosting(txID + "a")
	require.NoError(t, err)
	assert.Empty(t, p.ReconciliationID)
	assert.False(t, p.Cleared)
}

func TestUnreconcilePostings_RejectsForeignStamp(t *testing.T) {
	svc, led := newTestBook(t)
	txID := addSplit(t, led, 5, "Woolworths", "-52.30")

	rec, err := svc.Start(testAccountID, jan(1), jan(31), dec("0.00"), dec("0.00"), "")
	require.NoError(t, err)

	// Never reconciled under this session.
	err = svc.UnreconcilePostings(rec.ID, []string{txID + "a"})
	var ce ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Reason, "not reconciled under this session")
}

func TestStatus_RecomputedFromLedger(t *testing.T) {
	svc, led := newTestBook(t)
	tx1 := addSplit(t, led, 5, "Woolworths", "-52.30")
	addSplit(t, led, 10, "Rent", "-800.00")

	rec, err := svc.Start(testAccountID, jan(1), jan(31), dec("1000.00"), dec("147.70"), "")
	require.NoError(t, err)

	status, err := svc.Status(rec.ID)
	require.NoError(t, err)
	assert.True(t, status.ClearedBalance.Equal(dec("1000.00")))
	assert.True(t, status.Difference.Equal(dec("-852.30")))
	assert.False(t, status.IsBalanced)
	assert.Equal(t, 0, status.ReconciledCount)
	assert.Equal(t, 2, status.UnreconciledCount)
	assert.True(t, status.UnreconciledBalance.Equal(dec("-852.30")))

	require.NoError(t, svc.ReconcilePostings(rec.ID, []string{tx1 + "a"}))

	status, err = svc.Status(rec.ID)
	require.NoError(t, err)
	assert.True(t, status.ClearedBalance.Equal(dec("947.70")))
	assert.Equal(t, 1, status.ReconciledCount)
	assert.Equal(t, 1, status.UnreconciledCount)
	assert.False(t, status.IsBalanced)
}

func TestLock_RefusesUnbalanced(t *testing.T) {
	svc, led := newTestBook(t)
	addSplit(t, led, 5, "Woolworths", "-52.30")

	rec, err := svc.Start(testAccountID, jan(1), jan(31), dec("1000.00"), dec("947.70"), "")
	require.NoError(t, err)

	// Nothing reconciled yet: cleared balance is still the opening balance.
	err = svc.Lock(rec.ID)
	var ce ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Reason, "out of balance")

	got, err := svc.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReconciliationInProgress, got.Status)
}

func TestLock_BalancedSession(t *testing.T) {
	svc, led := newTestBook(t)
	txID := addSplit(t, led, 5, "Woolworths", "-52.30")

	rec, err := svc.Start(testAccountID, jan(1), jan(31), dec("1000.00"), dec("947.70"), "")
	require.NoError(t, err)
	require.NoError(t, svc.ReconcilePostings(rec.ID, []string{txID + "a"}))

	require.NoError(t, svc.Lock(rec.ID))

	got, err := svc.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReconciliationLocked, got.Status)
}

func TestLock_IsTerminal(t *testing.T) {
	svc, led := newTestBook(t)
	txID := addSplit(t, led, 5, "Woolworths", "-52.30")

	rec, err := svc.Start(testAccountID, jan(1), jan(31), dec("1000.00"), dec("947.70"), "")
	require.NoError(t, err)
	require.NoError(t, svc.ReconcilePostings(rec.ID, []string{txID + "a"}))
	require.NoError(t, svc.Lock(rec.ID))

	var ce ConflictError

	// No second lock, no further posting mutations through the session.
	require.ErrorAs(t, svc.Lock(rec.ID), &ce)
	require.ErrorAs(t, svc.ReconcilePostings(rec.ID, []string{txID + "a"}), &ce)
	require.ErrorAs(t, svc.UnreconcilePostings(rec.ID, []string{txID + "a"}), &ce)
}

func TestLock_ProtectsPostingsInLedger(t *testing.T) {
	svc, led := newTestBook(t)
	txID := addSplit(t, led, 5, "Woolworths", "-52.30")

	rec, err := svc.Start(testAccountID, jan(1), jan(31), dec("1000.00"), dec("947.70"), "")
	require.NoError(t, err)
	require.NoError(t, svc.ReconcilePostings(rec.ID, []string{txID + "a"}))
	require.NoError(t, svc.Lock(rec.ID))

	// Direct ledger mutation of a locked posting fails too.
	var le ledger.LockedError
	require.ErrorAs(t, led.UnreconcilePosting(txID+"a"), &le)
	assert.Equal(t, rec.ID, le.ReconciliationID)
}

func TestStatus_CountsWindowPaddedPostings(t *testing.T) {
	svc, led := newTestBook(t)
	// Dated 3 days after the period end, inside the padding window.
	txID := addSplit(t, led, 31, "Late Fee", "-10.00")

	rec, err := svc.Start(testAccountID, jan(1), jan(28), dec("100.00"), dec("90.00"), "")
	require.NoError(t, err)

	// Unreconciled postings outside the period proper are not counted.
	status, err := svc.Status(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, status.UnreconciledCount)

	// But once reconciled into the session, they clear.
	require.NoError(t, svc.ReconcilePostings(rec.ID, []string{txID + "a"}))
	status, err = svc.Status(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.ReconciledCount)
	assert.True(t, status.IsBalanced)
}
