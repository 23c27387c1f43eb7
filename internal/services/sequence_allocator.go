package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"coldchain/internal/apperrors"
	"coldchain/internal/repository"

	"gorm.io/gorm"
)

const invoiceSequenceWidth = 5

// maxInvoiceSequence is the largest sequence the padded width can hold.
// Widening past it would break the lexical ordering MaxNumberWithPrefix
// relies on, so allocation stops there instead of wrapping.
const maxInvoiceSequence = 99999

// SequenceAllocator hands out the next invoice number for a site. The
// sequence key is (site, year): the year is part of the prefix, so a
// year change restarts numbering at 1 without any reset bookkeeping.
//
// Allocation locks the site row for the duration of the caller's
// transaction. Two concurrent generations for the same site therefore
// serialize, and the transaction scope must cover both the allocation
// and the invoice insert.
type SequenceAllocator interface {
	NextInvoiceNumber(tx *gorm.DB, siteID uint) (string, error)
}

type sequenceAllocator struct {
	siteRepo    repository.SiteRepository
	invoiceRepo repository.InvoiceRepository
	now         func() time.Time
}

func NewSequenceAllocator(siteRepo repository.SiteRepository, invoiceRepo repository.InvoiceRepository) SequenceAllocator {
	return &sequenceAllocator{siteRepo: siteRepo, invoiceRepo: invoiceRepo, now: time.Now}
}

func (s *sequenceAllocator) NextInvoiceNumber(tx *gorm.DB, siteID uint) (string, error) {
	site, err := s.siteRepo.GetByIDForUpdate(tx, siteID)
	if err != nil {
		return "", notFoundOr(err, "site %d not found", siteID)
	}

	prefix := InvoicePrefix(site.Name, s.now().Year())
	last, err := s.invoiceRepo.MaxNumberWithPrefix(tx, prefix)
	if err != nil {
		return "", err
	}

	next := 1
	if last != "" {
		seq, err := parseSequence(last, prefix)
		if err != nil {
			return "", err
		}
		next = seq + 1
	}
	if next > maxInvoiceSequence {
		return "", apperrors.Conflict("invoice sequence exhausted for prefix %s", prefix)
	}
	return fmt.Sprintf("%s%0*d", prefix, invoiceSequenceWidth, next), nil
}

// InvoicePrefix builds the "INV-{SITE}-{YEAR}-" prefix. The site name is
// uppercased with spaces collapsed to underscores.
func InvoicePrefix(siteName string, year int) string {
	return fmt.Sprintf("INV-%s-%d-", NormalizeSiteName(siteName), year)
}

func NormalizeSiteName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), "_"))
}

func parseSequence(number, prefix string) (int, error) {
	suffix := strings.TrimPrefix(number, prefix)
	seq, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("malformed invoice number %q: %w", number, err)
	}
	return seq, nil
}
