package services

import (
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"coldchain/internal/apperrors"
	"coldchain/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func fixedYear(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestNormalizeSiteName(t *testing.T) {
	assert.Equal(t, "DOUALA", NormalizeSiteName("Douala"))
	assert.Equal(t, "NEW_BELL", NormalizeSiteName("new bell"))
	assert.Equal(t, "NEW_BELL", NormalizeSiteName("  New   Bell  "))
}

func TestInvoicePrefix(t *testing.T) {
	assert.Equal(t, "INV-DOUALA-2026-", InvoicePrefix("Douala", 2026))
	assert.Equal(t, "INV-NEW_BELL-2025-", InvoicePrefix("New Bell", 2025))
}

func TestNextInvoiceNumberFirstOfYear(t *testing.T) {
	sites := newFakeSiteRepo(&models.Site{ID: 1, Name: "Douala"})
	invoices := newFakeInvoiceRepo()
	allocator := &sequenceAllocator{siteRepo: sites, invoiceRepo: invoices, now: fixedYear(2026)}

	number, err := allocator.NextInvoiceNumber(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "INV-DOUALA-2026-00001", number)
}

func TestNextInvoiceNumberIncrements(t *testing.T) {
	sites := newFakeSiteRepo(&models.Site{ID: 1, Name: "Douala"})
	invoices := newFakeInvoiceRepo(
		&models.Invoice{ID: 1, SiteID: 1, InvoiceNumber: "INV-DOUALA-2026-00041"},
		&models.Invoice{ID: 2, SiteID: 1, InvoiceNumber: "INV-DOUALA-2026-00042"},
	)
	allocator := &sequenceAllocator{siteRepo: sites, invoiceRepo: invoices, now: fixedYear(2026)}

	number, err := allocator.NextInvoiceNumber(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "INV-DOUALA-2026-00043", number)
}

func TestNextInvoiceNumberYearRollover(t *testing.T) {
	sites := newFakeSiteRepo(&models.Site{ID: 1, Name: "Douala"})
	invoices := newFakeInvoiceRepo(
		&models.Invoice{ID: 1, SiteID: 1, InvoiceNumber: "INV-DOUALA-2025-00999"},
	)
	allocator := &sequenceAllocator{siteRepo: sites, invoiceRepo: invoices, now: fixedYear(2026)}

	number, err := allocator.NextInvoiceNumber(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "INV-DOUALA-2026-00001", number)
}

func TestNextInvoiceNumberSitesAreIndependent(t *testing.T) {
	sites := newFakeSiteRepo(
		&models.Site{ID: 1, Name: "Douala"},
		&models.Site{ID: 2, Name: "New Bell"},
	)
	invoices := newFakeInvoiceRepo(
		&models.Invoice{ID: 1, SiteID: 1, InvoiceNumber: "INV-DOUALA-2026-00007"},
	)
	allocator := &sequenceAllocator{siteRepo: sites, invoiceRepo: invoices, now: fixedYear(2026)}

	number, err := allocator.NextInvoiceNumber(nil, 2)
	require.NoError(t, err)
	assert.Equal(t, "INV-NEW_BELL-2026-00001", number)
}

// rowLockSiteRepo pairs with rowLockTx to emulate SELECT FOR UPDATE: the
// site row lock taken inside the callback is released when the
// transaction ends, so concurrent allocators serialize on the site row
// the same way they do against Postgres.
type rowLockSiteRepo struct {
	*fakeSiteRepo
	row *sync.Mutex
}

func (f *rowLockSiteRepo) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Site, error) {
	f.row.Lock()
	return f.fakeSiteRepo.GetByID(id)
}

type rowLockTx struct {
	row *sync.Mutex
}

func (t rowLockTx) Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	err := fn(nil)
	t.row.Unlock()
	return err
}

func TestNextInvoiceNumberConcurrentAllocationsAreUnique(t *testing.T) {
	var row sync.Mutex
	sites := &rowLockSiteRepo{fakeSiteRepo: newFakeSiteRepo(&models.Site{ID: 1, Name: "Douala"}), row: &row}
	invoices := newFakeInvoiceRepo()
	allocator := &sequenceAllocator{siteRepo: sites, invoiceRepo: invoices, now: fixedYear(2026)}
	db := rowLockTx{row: &row}

	const workers = 16
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- db.Transaction(func(tx *gorm.DB) error {
				number, err := allocator.NextInvoiceNumber(tx, 1)
				if err != nil {
					return err
				}
				return invoices.Create(tx, &models.Invoice{SiteID: 1, InvoiceNumber: number})
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	issued, err := invoices.GetBySite(1)
	require.NoError(t, err)
	require.Len(t, issued, workers)
	seen := make(map[string]bool, workers)
	for _, invoice := range issued {
		seen[invoice.InvoiceNumber] = true
	}
	assert.Len(t, seen, workers)
	assert.True(t, seen["INV-DOUALA-2026-00001"])
	assert.True(t, seen[fmt.Sprintf("INV-DOUALA-2026-%05d", workers)])
}

func TestNextInvoiceNumberSequenceExhausted(t *testing.T) {
	sites := newFakeSiteRepo(&models.Site{ID: 1, Name: "Douala"})
	invoices := newFakeInvoiceRepo(
		&models.Invoice{ID: 1, SiteID: 1, InvoiceNumber: "INV-DOUALA-2026-99999"},
	)
	allocator := &sequenceAllocator{siteRepo: sites, invoiceRepo: invoices, now: fixedYear(2026)}

	_, err := allocator.NextInvoiceNumber(nil, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestNextInvoiceNumberUnknownSite(t *testing.T) {
	allocator := &sequenceAllocator{siteRepo: newFakeSiteRepo(), invoiceRepo: newFakeInvoiceRepo(), now: fixedYear(2026)}

	_, err := allocator.NextInvoiceNumber(nil, 42)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
