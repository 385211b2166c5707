package moderation

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makershowcase/backend/internal/models"
	"github.com/makershowcase/backend/internal/testutil"
)

func TestApproveRecordsReviewer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	entry := testutil.CreateEntry(t, db, "Walnut desk", models.StatusPending)

	approved, err := svc.Approve(entry.ID, "alice", false)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, "alice", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	assert.False(t, approved.Featured)
}

func TestApproveWithFeaturedIsOneTransition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	entry := testutil.CreateEntry(t, db, "Ceramic vase", models.StatusPending)

	approved, err := svc.Approve(entry.ID, "alice", true)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.True(t, approved.Featured)
	assert.Equal(t, "alice", approved.FeaturedBy)
}

func TestApproveAlreadyApprovedKeepsOriginal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	entry := testutil.CreateEntry(t, db, "Copper lamp", models.StatusPending)

	first, err := svc.Approve(entry.ID, "alice", false)
	require.NoError(t, err)

	_, err = svc.Approve(entry.ID, "bob", true)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.StatusApproved, conflict.Status)
	assert.Equal(t, "alice", conflict.Actor)
	assert.Equal(t, first.ApprovedAt.Unix(), conflict.At.Unix())

	// Stored fields must be untouched by the losing call.
	var reloaded models.Entry
	require.NoError(t, db.First(&reloaded, entry.ID).Error)
	assert.Equal(t, "alice", reloaded.ApprovedBy)
	assert.Equal(t, first.ApprovedAt.Unix(), reloaded.ApprovedAt.Unix())
	assert.False(t, reloaded.Featured)
}

func TestApproveUnknownEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	_, err := svc.Approve(999, "alice", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveRejectedEntryClearsRejection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	entry := testutil.CreateEntry(t, db, "Oak shelf", models.StatusPending)
	_, err := svc.Reject(entry.ID, "bob", "blurry photos")
	require.NoError(t, err)

	approved, err := svc.Approve(entry.ID, "alice", false)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Empty(t, approved.RejectedBy)
	assert.Empty(t, approved.RejectedReason)
	assert.Nil(t, approved.RejectedAt)
}

func TestRejectRequiresReason(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	entry := testutil.CreateEntry(t, db, "Wool rug", models.StatusPending)

	_, err := svc.Reject(entry.ID, "bob", "")
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestRejectRecordsReason(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	entry := testutil.CreateEntry(t, db, "Wool rug", models.StatusPending)

	rejected, err := svc.Reject(entry.ID, "bob", "duplicate submission")
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.Equal(t, "bob", rejected.RejectedBy)
	assert.Equal(t, "duplicate submission", rejected.RejectedReason)
	require.NotNil(t, rejected.RejectedAt)
}

func TestRejectApprovedEntryConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	entry := testutil.CreateEntry(t, db, "Glass terrarium", models.StatusPending)
	_, err := svc.Approve(entry.ID, "alice", false)
	require.NoError(t, err)

	_, err = svc.Reject(entry.ID, "bob", "too late")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.StatusApproved, conflict.Status)
	assert.Equal(t, "alice", conflict.Actor)

	var reloaded models.Entry
	require.NoError(t, db.First(&reloaded, entry.ID).Error)
	assert.Equal(t, models.StatusApproved, reloaded.Status)
}

func TestRejectTwiceReturnsExistingReason(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	entry := testutil.CreateEntry(t, db, "Leather wallet", models.StatusPending)
	_, err := svc.Reject(entry.ID, "bob", "not handmade")
	require.NoError(t, err)

	_, err = svc.Reject(entry.ID, "carol", "different reason")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.StatusRejected, conflict.Status)
	assert.Equal(t, "bob", conflict.Actor)
	assert.Equal(t, "not handmade", conflict.Reason)
}

func TestConcurrentApproveExactlyOneWinner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	entry := testutil.CreateEntry(t, db, "Birch canoe", models.StatusPending)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, actor := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(i int, actor string) {
			defer wg.Done()
			_, errs[i] = svc.Approve(entry.ID, actor, false)
		}(i, actor)
	}
	wg.Wait()

	var winners, conflicts int
	for _, err := range errs {
		var conflict *ConflictError
		switch {
		case err == nil:
			winners++
		case errors.As(err, &conflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, conflicts)
}

func TestBulkApproveAllPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	a := testutil.CreateEntry(t, db, "Entry A", models.StatusPending)
	b := testutil.CreateEntry(t, db, "Entry B", models.StatusPending)
	c := testutil.CreateEntry(t, db, "Entry C", models.StatusPending)

	approved, err := svc.BulkApprove([]int{a.ID, b.ID, c.ID}, "alice")
	require.NoError(t, err)
	require.Len(t, approved, 3)

	for _, entry := range approved {
		assert.Equal(t, models.StatusApproved, entry.Status)
		assert.Equal(t, "alice", entry.ApprovedBy)
	}
}

func TestBulkApproveRejectsWholeBatchOnConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	a := testutil.CreateEntry(t, db, "Entry A", models.StatusPending)
	b := testutil.CreateEntry(t, db, "Entry B", models.StatusPending)
	c := testutil.CreateEntry(t, db, "Entry C", models.StatusPending)

	_, err := svc.Approve(b.ID, "bob", false)
	require.NoError(t, err)

	_, err = svc.BulkApprove([]int{a.ID, b.ID, c.ID}, "alice")
	var bulkConflict *BulkConflictError
	require.ErrorAs(t, err, &bulkConflict)
	assert.Equal(t, []int{b.ID}, bulkConflict.EntryIDs)

	// No side effects: A and C stay pending, B keeps its original approver.
	var reloaded models.Entry
	require.NoError(t, db.First(&reloaded, a.ID).Error)
	assert.Equal(t, models.StatusPending, reloaded.Status)
	require.NoError(t, db.First(&reloaded, c.ID).Error)
	assert.Equal(t, models.StatusPending, reloaded.Status)
	require.NoError(t, db.First(&reloaded, b.ID).Error)
	assert.Equal(t, "bob", reloaded.ApprovedBy)
}

func TestBulkApproveReportsAllMissingIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	a := testutil.CreateEntry(t, db, "Entry A", models.StatusPending)

	_, err := svc.BulkApprove([]int{a.ID, 777, 888}, "alice")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.ElementsMatch(t, []int{777, 888}, validation.MissingIDs)

	var reloaded models.Entry
	require.NoError(t, db.First(&reloaded, a.ID).Error)
	assert.Equal(t, models.StatusPending, reloaded.Status)
}

func TestBulkApproveEmptyBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	_, err := svc.BulkApprove(nil, "alice")
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestBulkApproveDeduplicatesIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	a := testutil.CreateEntry(t, db, "Entry A", models.StatusPending)

	approved, err := svc.BulkApprove([]int{a.ID, a.ID, a.ID}, "alice")
	require.NoError(t, err)
	assert.Len(t, approved, 1)
}

func TestPendingQueueOldestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	first := testutil.CreateEntry(t, db, "First", models.StatusPending)
	second := testutil.CreateEntry(t, db, "Second", models.StatusPending)
	testutil.CreateEntry(t, db, "Approved already", models.StatusApproved)

	pending, err := svc.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
}
