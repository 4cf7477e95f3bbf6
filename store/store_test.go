package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudbilling/engine/domain/shared"
	"github.com/cloudbilling/engine/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir, zap.NewNop())
	require.NoError(t, err)
	return s, dir
}

func TestOpen_SeedsWhenMissing(t *testing.T) {
	s, dir := openTestStore(t)

	s.View(func(d *Dataset) {
		assert.Len(t, d.Users, 2)
		assert.Len(t, d.Products, 10)
		assert.Len(t, d.Orders, 3)
		assert.Len(t, d.Invoices, 1)
		assert.Len(t, d.Categories, 5)
		assert.True(t, d.Settings.TaxRate.Equal(decimal.RequireFromString("0.09")))
	})

	// Seeding persists immediately.
	_, err := os.Stat(filepath.Join(dir, "data.json"))
	require.NoError(t, err)
}

func TestOpen_RoundTrip(t *testing.T) {
	s, dir := openTestStore(t)

	var before Dataset
	s.View(func(d *Dataset) { before = *d.Clone() })

	reopened, err := Open(dir, zap.NewNop())
	require.NoError(t, err)

	reopened.View(func(d *Dataset) {
		require.Len(t, d.Users, len(before.Users))
		require.Len(t, d.Products, len(before.Products))
		require.Len(t, d.Orders, len(before.Orders))
		require.Len(t, d.Invoices, len(before.Invoices))
		assert.Equal(t, before.Categories, d.Categories)
		assert.Equal(t, before.Counters, d.Counters)

		for i, p := range before.Products {
			assert.Equal(t, p.ID, d.Products[i].ID)
			assert.Equal(t, p.Name, d.Products[i].Name)
			assert.Equal(t, p.Quantity, d.Products[i].Quantity)
			assert.True(t, p.Price.Equal(d.Products[i].Price))
		}
		for i, o := range before.Orders {
			assert.Equal(t, o.ID, d.Orders[i].ID)
			assert.Equal(t, o.Status, d.Orders[i].Status)
			assert.True(t, o.TotalAmount.Equal(d.Orders[i].TotalAmount))
			assert.Equal(t, len(o.Items), len(d.Orders[i].Items))
		}
		assert.Equal(t, before.Users[0].PasswordHash, d.Users[0].PasswordHash)
		assert.True(t, before.Invoices[0].TaxAmount.Equal(d.Invoices[0].TaxAmount))
	})
}

func TestOpen_CorruptedBlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte("{not json"), 0o600))

	_, err := Open(dir, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorrupted))
}

func TestReset_RestoresSeedData(t *testing.T) {
	s, dir := openTestStore(t)

	err := s.Update(context.Background(), func(d *Dataset) error {
		d.Products = nil
		d.Settings.CompanyName = "Mutated"
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, s.Reset(context.Background()))

	s.View(func(d *Dataset) {
		assert.Len(t, d.Products, 10)
		assert.Equal(t, "CloudBilling Pro", d.Settings.CompanyName)
	})

	// The reset state is persisted.
	reopened, err := Open(dir, zap.NewNop())
	require.NoError(t, err)
	reopened.View(func(d *Dataset) {
		assert.Len(t, d.Products, 10)
	})
}

func TestUpdate_AllOrNothing(t *testing.T) {
	s, _ := openTestStore(t)

	boom := errors.New("boom")
	err := s.Update(context.Background(), func(d *Dataset) error {
		d.Products[0].Quantity = 0
		d.Orders = nil
		return boom
	})
	require.ErrorIs(t, err, boom)

	s.View(func(d *Dataset) {
		assert.Equal(t, int64(25), d.Products[0].Quantity, "failed update must not leak partial mutations")
		assert.Len(t, d.Orders, 3)
	})
}

func TestUpdate_PersistsOnSuccess(t *testing.T) {
	s, dir := openTestStore(t)

	err := s.Update(context.Background(), func(d *Dataset) error {
		d.Settings.CompanyName = "Acme Billing"
		return nil
	})
	require.NoError(t, err)

	reopened, err := Open(dir, zap.NewNop())
	require.NoError(t, err)
	reopened.View(func(d *Dataset) {
		assert.Equal(t, "Acme Billing", d.Settings.CompanyName)
	})
}

func TestUpdate_CancelledContext(t *testing.T) {
	s, _ := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Update(ctx, func(d *Dataset) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCounters_SurviveDeletion(t *testing.T) {
	s, _ := openTestStore(t)

	// Delete the highest-ID product, then allocate: the freed ID must
	// not be reused.
	err := s.Update(context.Background(), func(d *Dataset) error {
		d.Products = d.Products[:len(d.Products)-1]
		return nil
	})
	require.NoError(t, err)

	var next int64
	err = s.Update(context.Background(), func(d *Dataset) error {
		next = d.Counters.NextProduct()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), next)
}

func TestDataset_FindHelpers(t *testing.T) {
	s, _ := openTestStore(t)

	s.View(func(d *Dataset) {
		require.NotNil(t, d.FindUserByEmail(SeedAdminEmail))
		assert.Nil(t, d.FindUserByEmail("nobody@example.com"))

		smartphone := d.FindProduct(5)
		require.NotNil(t, smartphone)
		assert.Equal(t, "Smartphone X", smartphone.Name)
		assert.Equal(t, int64(12), smartphone.Quantity)

		assert.Nil(t, d.FindProduct(999))
		require.NotNil(t, d.FindInvoiceByOrder(1))
		assert.Nil(t, d.FindInvoiceByOrder(2))
		assert.True(t, d.HasCategory("Books"))
		assert.False(t, d.HasCategory("Groceries"))
	})
}

func TestDataset_CloneIsDeep(t *testing.T) {
	s, _ := openTestStore(t)

	var clone *Dataset
	s.View(func(d *Dataset) { clone = d.Clone() })

	clone.Products[0].Quantity = 0
	clone.Orders[0].Items[0].Quantity = 99

	s.View(func(d *Dataset) {
		assert.Equal(t, int64(25), d.Products[0].Quantity)
		assert.Equal(t, int64(1), d.Orders[0].Items[0].Quantity)
	})
}

func TestSeedDataset_OrderTotalsConsistent(t *testing.T) {
	d := SeedDataset()

	for _, o := range d.Orders {
		sum := decimal.Zero
		for _, item := range o.Items {
			sum = sum.Add(item.Amount())
		}
		assert.True(t, sum.Equal(o.TotalAmount), "order %d total mismatch", o.ID)
	}

	inv := d.Invoices[0]
	order := d.FindOrder(inv.OrderID)
	require.NotNil(t, order)
	require.Equal(t, trade.OrderStatusCompleted, order.Status)
	assert.True(t, inv.TaxAmount.Equal(order.TotalAmount.Mul(d.Settings.TaxRate)))
	assert.True(t, inv.TotalAmount.Equal(order.TotalAmount.Add(inv.TaxAmount)))
}

func TestSession_SaveLoadClear(t *testing.T) {
	s, _ := openTestStore(t)

	snap, err := s.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, snap, "no session stored initially")

	in := SessionSnapshot{ID: uuid.New(), UserID: 1, Username: "admin", Role: "Admin"}
	require.NoError(t, s.SaveSession(in))

	snap, err = s.LoadSession()
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, in.ID, snap.ID)
	assert.Equal(t, int64(1), snap.UserID)

	require.NoError(t, s.ClearSession())
	snap, err = s.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, snap)

	// Clearing twice is a no-op.
	require.NoError(t, s.ClearSession())
}

func TestSession_MalformedSnapshotDiscarded(t *testing.T) {
	s, dir := openTestStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("??"), 0o600))

	snap, err := s.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestErrCorrupted_IsDomainError(t *testing.T) {
	var de *shared.DomainError
	assert.True(t, errors.As(ErrCorrupted, &de))
	assert.Equal(t, "CORRUPTED_DATA", de.Code)
}
