package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-portal/models"
)

func TestReceiptRecovery_RecordAndRetry(t *testing.T) {
	store := newFakeStore()
	recovery := NewReceiptRecovery(newTestDB(t), store)
	ctx := context.Background()

	pending, err := recovery.Record(ctx, customer, 31, receipt, errors.New("connection reset"))
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptNeedsReview, pending.Status)
	assert.Equal(t, 1, pending.Attempts)

	store.uploadErr = errors.New("still down")
	retried, err := recovery.Retry(ctx, admin, pending.ID)
	assert.EqualError(t, err, "still down")
	require.NotNil(t, retried)
	assert.Equal(t, 2, retried.Attempts)
	assert.Equal(t, models.ReceiptNeedsReview, retried.Status)

	store.uploadErr = nil
	retried, err = recovery.Retry(ctx, admin, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptUploaded, retried.Status)
	assert.Empty(t, retried.LastError)
	assert.Equal(t, []uint{31}, store.uploads)

	list, err := recovery.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = recovery.Retry(ctx, admin, pending.ID)
	assert.ErrorIs(t, err, ErrReceiptAlreadyUploaded)

	assert.Equal(t, ReceiptMetrics{Recorded: 1, Recovered: 1, FailedRetries: 1, AwaitingReview: 0}, recovery.Metrics())
}

func TestReceiptRecovery_UnknownUpload(t *testing.T) {
	recovery := NewReceiptRecovery(newTestDB(t), newFakeStore())

	_, err := recovery.Retry(context.Background(), admin, "does-not-exist")
	assert.ErrorIs(t, err, ErrPendingReceiptNotFound)
}

func TestReceiptRecovery_ListsOldestFirst(t *testing.T) {
	recovery := NewReceiptRecovery(newTestDB(t), newFakeStore())
	ctx := context.Background()

	first, err := recovery.Record(ctx, customer, 1, receipt, nil)
	require.NoError(t, err)
	second, err := recovery.Record(ctx, customer, 2, receipt, nil)
	require.NoError(t, err)

	list, err := recovery.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, receipt.Data, list[0].Data)
}
