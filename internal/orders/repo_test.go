package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/osinbeats/beatstore-backend/pkg/db/models"
	"github.com/osinbeats/beatstore-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	beats := `
CREATE TABLE IF NOT EXISTS beats (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  bpm INTEGER,
  key TEXT,
  genre TEXT,
  mood TEXT,
  tags TEXT,
  audio_preview_url TEXT,
  audio_full_url TEXT,
  cover_image_url TEXT,
  price_mp3_cents INTEGER NOT NULL,
  price_wav_cents INTEGER NOT NULL,
  price_stems_cents INTEGER NOT NULL,
  is_sold INTEGER NOT NULL DEFAULT 0,
  is_featured INTEGER NOT NULL DEFAULT 0,
  is_published INTEGER NOT NULL DEFAULT 0,
  plays_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  beat_id TEXT,
  customer_email TEXT NOT NULL,
  customer_name TEXT,
  license_tier TEXT NOT NULL,
  price_paid_cents INTEGER NOT NULL,
  stripe_session_id TEXT UNIQUE,
  stripe_payment_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  download_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(beats).Error)
	require.NoError(t, db.Exec(orders).Error)
	return db
}

func seedBeat(t *testing.T, db *gorm.DB) *models.Beat {
	t.Helper()
	beat := &models.Beat{
		ID:              uuid.New(),
		Title:           "Midnight Drive",
		Slug:            "midnight-drive-" + uuid.NewString()[:8],
		PriceMP3Cents:   2999,
		PriceWAVCents:   4999,
		PriceStemsCents: 19999,
		IsPublished:     true,
	}
	require.NoError(t, db.Create(beat).Error)
	return beat
}

func TestUpsertConfirmationCollapsesDuplicates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	beat := seedBeat(t, db)
	sessionID := "cs_test_" + uuid.NewString()
	paymentID := "pi_" + uuid.NewString()
	confirmed := func() *models.Order {
		name := "Ada Buyer"
		return &models.Order{
			ID:              uuid.New(),
			BeatID:          &beat.ID,
			CustomerEmail:   "buyer@example.com",
			CustomerName:    &name,
			LicenseTier:     enums.LicenseTierStems,
			PricePaidCents:  19999,
			StripeSessionID: &sessionID,
			StripePaymentID: &paymentID,
			Status:          enums.OrderStatusCompleted,
		}
	}

	first, firstCompleted, err := repo.UpsertConfirmation(ctx, confirmed())
	require.NoError(t, err)
	second, replayCompleted, err := repo.UpsertConfirmation(ctx, confirmed())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	// Only the call that completed the order reports true, so racing
	// confirmations cannot both count the completion.
	assert.True(t, firstCompleted)
	assert.False(t, replayCompleted)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Where("stripe_session_id = ?", sessionID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, enums.OrderStatusCompleted, second.Status)
	assert.Equal(t, 19999, second.PricePaidCents)
}

func TestUpsertConfirmationCompletesPendingRow(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	beat := seedBeat(t, db)
	sessionID := "cs_test_" + uuid.NewString()
	pending := &models.Order{
		ID:              uuid.New(),
		BeatID:          &beat.ID,
		CustomerEmail:   "buyer@example.com",
		LicenseTier:     enums.LicenseTierWAV,
		PricePaidCents:  4999,
		StripeSessionID: &sessionID,
		Status:          enums.OrderStatusPending,
	}
	_, err := repo.Create(ctx, pending)
	require.NoError(t, err)

	paymentID := "pi_" + uuid.NewString()
	confirmed := &models.Order{
		ID:              uuid.New(),
		BeatID:          &beat.ID,
		CustomerEmail:   "buyer@example.com",
		LicenseTier:     enums.LicenseTierWAV,
		PricePaidCents:  4999,
		StripeSessionID: &sessionID,
		StripePaymentID: &paymentID,
		Status:          enums.OrderStatusCompleted,
	}
	result, completed, err := repo.UpsertConfirmation(ctx, confirmed)
	require.NoError(t, err)

	// The pending row is completed in place rather than duplicated.
	assert.True(t, completed)
	assert.Equal(t, pending.ID, result.ID)
	assert.Equal(t, enums.OrderStatusCompleted, result.Status)
	require.NotNil(t, result.StripePaymentID)
	assert.Equal(t, paymentID, *result.StripePaymentID)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Where("stripe_session_id = ?", sessionID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFindByStripeSessionIDPreloadsBeat(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	beat := seedBeat(t, db)
	sessionID := "cs_test_" + uuid.NewString()
	order := &models.Order{
		ID:              uuid.New(),
		BeatID:          &beat.ID,
		CustomerEmail:   "buyer@example.com",
		LicenseTier:     enums.LicenseTierMP3,
		PricePaidCents:  2999,
		StripeSessionID: &sessionID,
		Status:          enums.OrderStatusCompleted,
	}
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	found, err := repo.FindByStripeSessionID(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, found.Beat)
	assert.Equal(t, beat.Slug, found.Beat.Slug)
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	err := repo.UpdateStatus(context.Background(), uuid.New(), enums.OrderStatusRefunded)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
