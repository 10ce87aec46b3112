package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/posting_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/posting_ledger/internal/apperrors"
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
	"github.com/SscSPs/posting_ledger/internal/core/services"
)

const (
	accReceivable = "62.01"
	accRevenue    = "90.01"
	accCOGS       = "90.02"
	accInventory  = "41.01"
	accSuppliers  = "60.01"
)

var testChart = domain.NewChartOfAccounts([]domain.Account{
	{Code: accReceivable, Name: "Settlements with customers", Type: domain.Asset},
	{Code: accRevenue, Name: "Revenue", Type: domain.Revenue},
	{Code: accCOGS, Name: "Cost of sales", Type: domain.Expense},
	{Code: accInventory, Name: "Goods", Type: domain.Asset},
	{Code: accSuppliers, Name: "Settlements with suppliers", Type: domain.Liability},
})

// LedgerScenarioTestSuite drives the services end to end over the in-memory store.
type LedgerScenarioTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	svc   *portssvc.ServiceContainer
	key   domain.RunKey
	day   time.Time
}

func (s *LedgerScenarioTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.store.AddBrandCountry(domain.BrandCountry{BrandID: "brand-1", CountryID: "RU", LegalEntityID: "le-1"})
	s.store.AddDocument("sales_documents", "sd-1")
	s.store.AddDocument("sales_documents", "sd-2")
	s.store.AddDocument("supplies", "sup-1")
	s.day = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	s.key = domain.RunKey{LegalEntityID: "le-1", DocType: domain.DocSalesDocument, DocID: "sd-1"}

	s.svc = services.NewContainer(s.store.Provider(), services.ContainerConfig{
		BaseCurrency: "RUB",
		Chart:        testChart,
		DocumentTables: map[string]string{
			string(domain.DocSalesDocument): "sales_documents",
			string(domain.DocSupply):        "supplies",
		},
		RetryPolicy:   services.DefaultRetryPolicy(),
		BalancePolicy: services.BalancePolicy{ValidateOnPost: true, BatchConcurrency: 4},
	})
}

func (s *LedgerScenarioTestSuite) line(docID string, lineNumber int, debit, credit string, amount int64) portssvc.CreateEntryInput {
	return portssvc.CreateEntryInput{
		DocType:       domain.DocSalesDocument,
		DocID:         docID,
		CountryID:     "RU",
		BrandID:       "brand-1",
		LineNumber:    lineNumber,
		PostingDate:   s.day,
		DebitAccount:  debit,
		CreditAccount: credit,
		Amount:        decimal.NewFromInt(amount),
		Currency:      "RUB",
	}
}

// postSale records the two lines of a sale inside a fresh run.
func (s *LedgerScenarioTestSuite) postSale() *domain.PostingRun {
	run, err := s.svc.PostingRun.GetOrCreateRun(s.ctx, s.key)
	s.Require().NoError(err)

	for _, in := range []portssvc.CreateEntryInput{
		s.line("sd-1", 1, accReceivable, accRevenue, 600),
		s.line("sd-1", 2, accCOGS, accInventory, 400),
	} {
		in.PostingRunID = &run.ID
		_, err := s.svc.Ledger.CreateEntry(s.ctx, in)
		s.Require().NoError(err)
	}
	return run
}

func (s *LedgerScenarioTestSuite) TestPostedRunBalances() {
	run := s.postSale()

	report, err := s.svc.Balance.ValidateDocument(s.ctx, s.key.DocType, s.key.DocID, &run.ID)

	s.Require().NoError(err)
	s.True(report.IsBalanced)
	s.Require().Len(report.Currencies, 1)
	s.True(decimal.NewFromInt(1000).Equal(report.Currencies[0].TotalDebit))
	s.True(decimal.NewFromInt(1000).Equal(report.Currencies[0].TotalCredit))
	s.NoError(s.svc.Balance.MaybeValidateOnPost(s.ctx, s.key.DocType, s.key.DocID, &run.ID))

	hasEntries, err := s.svc.PostingRun.HasEntries(s.ctx, run.ID)
	s.Require().NoError(err)
	s.True(hasEntries)
}

func (s *LedgerScenarioTestSuite) TestVoidRunMirrorsEntries() {
	run := s.postSale()

	result, err := s.svc.PostingRun.VoidRun(s.ctx, run.ID, "correction")
	s.Require().NoError(err)

	s.False(result.AlreadyVoided)
	s.Equal(domain.RunVoided, result.OriginalRun.Status)
	s.Equal("correction", *result.OriginalRun.VoidReason)
	s.Require().NotNil(result.ReversalRun)
	s.Equal(run.ID, *result.ReversalRun.ReversalOfRunID)
	s.Equal(2, result.ReversalRun.Version)
	s.Equal(domain.RunPosted, result.ReversalRun.Status)
	s.Equal(2, result.ReversedEntries)

	stored, err := s.store.FindRunByID(s.ctx, run.ID)
	s.Require().NoError(err)
	s.Equal(domain.RunVoided, stored.Status)
	s.Equal(result.ReversalRun.ID, *stored.ReversalRunID)

	mirrors, err := s.store.FindEntriesByRun(s.ctx, result.ReversalRun.ID)
	s.Require().NoError(err)
	s.Require().Len(mirrors, 2)
	s.Equal(accRevenue, mirrors[0].DebitAccount)
	s.Equal(accReceivable, mirrors[0].CreditAccount)
	s.True(decimal.NewFromInt(600).Equal(mirrors[0].AmountBase))
	s.Equal(accInventory, mirrors[1].DebitAccount)
	s.Equal(accCOGS, mirrors[1].CreditAccount)
	s.True(decimal.NewFromInt(400).Equal(mirrors[1].AmountBase))
	for _, m := range mirrors {
		s.Equal(domain.SourceReversal, m.Source)
		s.Require().NotNil(m.Provenance)
		s.Equal(run.ID, m.Provenance.ReversalOfRunID)
	}

	// The voided run plus its reversal nets the document to zero on both sides.
	report, err := s.svc.Balance.ValidateDocument(s.ctx, s.key.DocType, s.key.DocID, nil)
	s.Require().NoError(err)
	s.True(report.IsBalanced)

	active, err := s.svc.PostingRun.GetActiveRun(s.ctx, s.key)
	s.Require().NoError(err)
	s.Nil(active)
}

func (s *LedgerScenarioTestSuite) TestConcurrentGetOrCreateRunYieldsOneRun() {
	const callers = 10
	runs := make([]*domain.PostingRun, callers)

	g, gctx := errgroup.WithContext(s.ctx)
	for i := 0; i < callers; i++ {
		i := i
		g.Go(func() error {
			run, err := s.svc.PostingRun.GetOrCreateRun(gctx, s.key)
			runs[i] = run
			return err
		})
	}
	s.Require().NoError(g.Wait())

	for _, run := range runs {
		s.Equal(1, run.Version)
		s.Equal(runs[0].ID, run.ID)
	}
	all, err := s.svc.PostingRun.ListRuns(s.ctx, s.key)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *LedgerScenarioTestSuite) TestSameAccountOnBothSidesIsRejected() {
	in := s.line("sd-1", 1, accReceivable, accReceivable, 100)

	_, err := s.svc.Ledger.CreateEntry(s.ctx, in)

	s.ErrorIs(err, apperrors.ErrValidation)
	entries, err := s.svc.Ledger.ListByDocument(s.ctx, domain.DocSalesDocument, "sd-1")
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *LedgerScenarioTestSuite) TestVoidRunTwiceReturnsSameReversal() {
	run := s.postSale()

	first, err := s.svc.PostingRun.VoidRun(s.ctx, run.ID, "correction")
	s.Require().NoError(err)
	second, err := s.svc.PostingRun.VoidRun(s.ctx, run.ID, "again")
	s.Require().NoError(err)

	s.True(second.AlreadyVoided)
	s.Equal(first.ReversalRunID(), second.ReversalRunID())
	s.Require().NotNil(second.ReversalRun)
	s.Equal(first.ReversalRun.ID, second.ReversalRun.ID)
	s.Equal(run.ID, *second.ReversalRun.ReversalOfRunID)
	s.Equal("correction", *second.OriginalRun.VoidReason)

	runs, err := s.svc.PostingRun.ListRuns(s.ctx, s.key)
	s.Require().NoError(err)
	s.Len(runs, 2)
	entries, err := s.svc.Ledger.ListByDocument(s.ctx, s.key.DocType, s.key.DocID)
	s.Require().NoError(err)
	s.Len(entries, 4)
}

func (s *LedgerScenarioTestSuite) TestConcurrentVoidCreatesOneReversal() {
	run := s.postSale()
	const callers = 5
	results := make([]*domain.VoidResult, callers)

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.svc.PostingRun.VoidRun(s.ctx, run.ID, "correction")
		}()
	}
	wg.Wait()

	winners := 0
	for i := range results {
		s.Require().NoError(errs[i])
		s.Equal(results[0].ReversalRunID(), results[i].ReversalRunID())
		if !results[i].AlreadyVoided {
			winners++
		}
	}
	s.Equal(1, winners)

	runs, err := s.svc.PostingRun.ListRuns(s.ctx, s.key)
	s.Require().NoError(err)
	s.Len(runs, 2)
}

func (s *LedgerScenarioTestSuite) TestVoidAndRepostKeepsVersionsGapFree() {
	current := s.postSale()
	for i := 0; i < 2; i++ {
		_, err := s.svc.PostingRun.VoidRun(s.ctx, current.ID, "repost")
		s.Require().NoError(err)
		next, err := s.svc.PostingRun.CreateNextRun(s.ctx, s.key, &current.ID)
		s.Require().NoError(err)
		s.Equal(current.ID, *next.RepostedFromRunID)
		current = next
	}

	runs, err := s.svc.PostingRun.ListRuns(s.ctx, s.key)
	s.Require().NoError(err)
	versions := make([]int, 0, len(runs))
	for _, r := range runs {
		versions = append(versions, r.Version)
	}
	s.Equal([]int{1, 2, 3, 4, 5}, versions)

	active, err := s.svc.PostingRun.GetActiveRun(s.ctx, s.key)
	s.Require().NoError(err)
	s.Require().NotNil(active)
	s.Equal(current.ID, active.ID)
	s.Equal(5, active.Version)
}

func (s *LedgerScenarioTestSuite) TestVoidRunOfEmptyRun() {
	run, err := s.svc.PostingRun.GetOrCreateRun(s.ctx, s.key)
	s.Require().NoError(err)

	result, err := s.svc.PostingRun.VoidRun(s.ctx, run.ID, "")

	s.Require().NoError(err)
	s.Equal(0, result.ReversedEntries)
	s.Equal(domain.DefaultVoidReason, *result.OriginalRun.VoidReason)
	hasEntries, err := s.svc.PostingRun.HasEntries(s.ctx, result.ReversalRunID())
	s.Require().NoError(err)
	s.False(hasEntries)
}

func (s *LedgerScenarioTestSuite) TestCreateEntryIsIdempotentPerLineToken() {
	in := s.line("sd-1", 1, accReceivable, accRevenue, 600)
	in.LineToken = stringPtr("sale:sd-1:1")

	first, err := s.svc.Ledger.CreateEntry(s.ctx, in)
	s.Require().NoError(err)
	second, err := s.svc.Ledger.CreateEntry(s.ctx, in)
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	entries, err := s.svc.Ledger.ListByDocument(s.ctx, domain.DocSalesDocument, "sd-1")
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *LedgerScenarioTestSuite) TestCreateEntryBackfillsPostingRun() {
	in := s.line("sd-1", 1, accReceivable, accRevenue, 600)
	in.LineToken = stringPtr("sale:sd-1:1")
	first, err := s.svc.Ledger.CreateEntry(s.ctx, in)
	s.Require().NoError(err)
	s.Nil(first.PostingRunID)

	run, err := s.svc.PostingRun.GetOrCreateRun(s.ctx, s.key)
	s.Require().NoError(err)
	in.PostingRunID = &run.ID
	in.Amount = decimal.NewFromInt(999)
	patched, err := s.svc.Ledger.CreateEntry(s.ctx, in)
	s.Require().NoError(err)

	s.Equal(first.ID, patched.ID)
	s.Require().NotNil(patched.PostingRunID)
	s.Equal(run.ID, *patched.PostingRunID)
	s.True(decimal.NewFromInt(600).Equal(patched.Amount), "existing amounts are never rewritten")

	byRun, err := s.store.FindEntriesByRun(s.ctx, run.ID)
	s.Require().NoError(err)
	s.Len(byRun, 1)
}

func (s *LedgerScenarioTestSuite) TestCreateEntryDefaults() {
	entry, err := s.svc.Ledger.CreateEntry(s.ctx, s.line("sd-1", 3, accReceivable, accRevenue, 50))

	s.Require().NoError(err)
	s.Equal(domain.SourceAuto, entry.Source)
	s.Equal(domain.DocSalesDocument, entry.SourceDocType)
	s.Equal("sd-1", entry.SourceDocID)
	s.Equal("le-1", entry.Scope.LegalEntityID)
	s.True(decimal.NewFromInt(50).Equal(entry.AmountBase))
}

func (s *LedgerScenarioTestSuite) TestCreateEntryConvertsForeignCurrency() {
	s.store.AddRate("USD", s.day.AddDate(0, 0, -3), decimal.RequireFromString("91.5"))
	in := s.line("sd-1", 1, accReceivable, accRevenue, 10)
	in.Currency = "USD"

	entry, err := s.svc.Ledger.CreateEntry(s.ctx, in)

	s.Require().NoError(err)
	s.True(decimal.RequireFromString("915").Equal(entry.AmountBase))
	s.True(decimal.NewFromInt(10).Equal(entry.Amount))
}

func (s *LedgerScenarioTestSuite) TestCreateEntryWithoutRateFails() {
	in := s.line("sd-1", 1, accReceivable, accRevenue, 10)
	in.Currency = "EUR"

	_, err := s.svc.Ledger.CreateEntry(s.ctx, in)

	var rateErr *apperrors.RateNotFoundError
	s.Require().True(errors.As(err, &rateErr))
	s.Equal("EUR", rateErr.Currency)
	s.ErrorIs(err, apperrors.ErrRateNotFound)
	entries, _ := s.svc.Ledger.ListByDocument(s.ctx, domain.DocSalesDocument, "sd-1")
	s.Empty(entries)
}

func (s *LedgerScenarioTestSuite) TestCreateEntryRejectsUnknownDocument() {
	_, err := s.svc.Ledger.CreateEntry(s.ctx, s.line("sd-404", 1, accReceivable, accRevenue, 10))
	s.ErrorIs(err, apperrors.ErrReferential)

	in := s.line("sd-1", 1, accReceivable, accRevenue, 10)
	in.SourceDocType = domain.DocSupply
	in.SourceDocID = "sup-404"
	_, err = s.svc.Ledger.CreateEntry(s.ctx, in)
	s.ErrorIs(err, apperrors.ErrReferential)

	in = s.line("sd-1", 1, accReceivable, accRevenue, 10)
	in.DocType = domain.DocStockTransfer
	_, err = s.svc.Ledger.CreateEntry(s.ctx, in)
	s.ErrorIs(err, apperrors.ErrReferential, "doc types without a registered check are rejected")
}

func (s *LedgerScenarioTestSuite) TestCreateEntryExemptDocTypeSkipsExistenceCheck() {
	in := s.line("pay-1", 1, accSuppliers, accReceivable, 10)
	in.DocType = domain.DocPayment

	entry, err := s.svc.Ledger.CreateEntry(s.ctx, in)

	s.Require().NoError(err)
	s.Equal(domain.DocPayment, entry.DocType)
}

func (s *LedgerScenarioTestSuite) TestCreateEntryRejectsUnknownAccount() {
	_, err := s.svc.Ledger.CreateEntry(s.ctx, s.line("sd-1", 1, "99.99", accRevenue, 10))
	s.ErrorIs(err, apperrors.ErrValidation)
	s.ErrorContains(err, "unknown debit account code: 99.99")
}

func (s *LedgerScenarioTestSuite) TestCreateEntryRejectsForeignRun() {
	other, err := s.svc.PostingRun.GetOrCreateRun(s.ctx, domain.RunKey{LegalEntityID: "le-1", DocType: domain.DocSalesDocument, DocID: "sd-2"})
	s.Require().NoError(err)
	in := s.line("sd-1", 1, accReceivable, accRevenue, 10)
	in.PostingRunID = &other.ID

	_, err = s.svc.Ledger.CreateEntry(s.ctx, in)

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerScenarioTestSuite) TestCreateEntryRejectsVoidedRun() {
	run := s.postSale()
	_, err := s.svc.PostingRun.VoidRun(s.ctx, run.ID, "correction")
	s.Require().NoError(err)
	in := s.line("sd-1", 3, accReceivable, accRevenue, 10)
	in.PostingRunID = &run.ID

	_, err = s.svc.Ledger.CreateEntry(s.ctx, in)

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerScenarioTestSuite) TestCreateEntryRejectsReversalRun() {
	run := s.postSale()
	result, err := s.svc.PostingRun.VoidRun(s.ctx, run.ID, "correction")
	s.Require().NoError(err)
	in := s.line("sd-1", 3, accReceivable, accRevenue, 10)
	reversalID := result.ReversalRunID()
	in.PostingRunID = &reversalID

	_, err = s.svc.Ledger.CreateEntry(s.ctx, in)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.ErrorContains(err, "is a reversal")
	mirrors, err := s.store.FindEntriesByRun(s.ctx, reversalID)
	s.Require().NoError(err)
	s.Len(mirrors, 2)
}

func (s *LedgerScenarioTestSuite) TestCreateEntryRejectsDuplicateLineInRun() {
	run := s.postSale()
	in := s.line("sd-1", 1, accReceivable, accRevenue, 75)
	in.PostingRunID = &run.ID

	_, err := s.svc.Ledger.CreateEntry(s.ctx, in)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.ErrorContains(err, "line 1 is already recorded")

	result, err := s.svc.PostingRun.VoidRun(s.ctx, run.ID, "correction")
	s.Require().NoError(err)
	s.Equal(2, result.ReversedEntries)
}

func (s *LedgerScenarioTestSuite) TestCreateEntryRejectsDuplicateLineOnBackfill() {
	run := s.postSale()
	in := s.line("sd-1", 2, accReceivable, accRevenue, 75)
	in.LineToken = stringPtr("late:sd-1:2")
	loose, err := s.svc.Ledger.CreateEntry(s.ctx, in)
	s.Require().NoError(err)

	in.PostingRunID = &run.ID
	_, err = s.svc.Ledger.CreateEntry(s.ctx, in)

	s.ErrorIs(err, apperrors.ErrValidation)
	stored, err := s.store.FindEntryByLineToken(s.ctx, domain.DocSalesDocument, "sd-1", "late:sd-1:2")
	s.Require().NoError(err)
	s.Equal(loose.ID, stored.ID)
	s.Nil(stored.PostingRunID)
}

func (s *LedgerScenarioTestSuite) TestScopeResolvedFromDocumentScope() {
	s.store.SetDocumentScope(domain.DocumentRef{DocType: domain.DocSalesDocument, DocID: "sd-1"},
		domain.Scope{CountryID: "RU", BrandID: "brand-1", WarehouseID: stringPtr("wh-1")})
	in := s.line("sd-1", 1, accReceivable, accRevenue, 10)
	in.CountryID, in.BrandID = "", ""

	entry, err := s.svc.Ledger.CreateEntry(s.ctx, in)

	s.Require().NoError(err)
	s.Equal("le-1", entry.Scope.LegalEntityID)
	s.Equal("wh-1", *entry.Scope.WarehouseID)
}

func (s *LedgerScenarioTestSuite) TestScopeResolutionFailure() {
	in := s.line("sd-1", 1, accReceivable, accRevenue, 10)
	in.CountryID, in.BrandID = "", ""
	_, err := s.svc.Ledger.CreateEntry(s.ctx, in)
	s.ErrorIs(err, apperrors.ErrScopeResolution)

	in = s.line("sd-1", 1, accReceivable, accRevenue, 10)
	in.BrandID = "brand-unmapped"
	_, err = s.svc.Ledger.CreateEntry(s.ctx, in)
	s.ErrorIs(err, apperrors.ErrScopeResolution)
	s.ErrorContains(err, "no legal entity configured for brand+country (brand-unmapped, RU)")
}

func (s *LedgerScenarioTestSuite) TestListPaginates() {
	for i := 1; i <= 3; i++ {
		in := s.line("sd-1", i, accReceivable, accRevenue, int64(i*10))
		in.PostingDate = s.day.AddDate(0, 0, i)
		_, err := s.svc.Ledger.CreateEntry(s.ctx, in)
		s.Require().NoError(err)
	}

	page, err := s.svc.Ledger.List(s.ctx, domain.EntryFilter{Limit: 2})
	s.Require().NoError(err)
	s.Len(page.Entries, 2)
	s.Require().NotNil(page.NextToken)
	s.Equal(3, page.Entries[0].LineNumber)

	rest, err := s.svc.Ledger.List(s.ctx, domain.EntryFilter{Limit: 2, NextToken: page.NextToken})
	s.Require().NoError(err)
	s.Len(rest.Entries, 1)
	s.Nil(rest.NextToken)

	from, to := s.day.AddDate(0, 0, 5), s.day
	_, err = s.svc.Ledger.List(s.ctx, domain.EntryFilter{FromDate: &from, ToDate: &to})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerScenarioTestSuite) TestValidateBatchReportsMalformedDocuments() {
	s.postSale()
	require.NoError(s.T(), s.store.SaveEntry(s.ctx, domain.AccountingEntry{
		ID:            "broken",
		DocType:       domain.DocSalesDocument,
		DocID:         "sd-2",
		PostingDate:   s.day,
		DebitAccount:  accReceivable,
		CreditAccount: accRevenue,
		Currency:      "RUB",
		AmountBase:    decimal.Zero,
		CreatedAt:     s.day,
	}))

	report, err := s.svc.Balance.ValidateBatch(s.ctx, domain.BatchFilter{})

	s.Require().NoError(err)
	s.Equal(2, report.CheckedDocuments)
	s.Equal(1, report.UnbalancedDocuments)
	s.Require().Len(report.Problems, 1)
	s.Equal("sd-2", report.Problems[0].Doc.DocID)
	s.Contains(report.Problems[0].Message, "amountBase must be > 0")

	err = s.svc.Balance.MaybeValidateOnPost(s.ctx, domain.DocSalesDocument, "sd-2", nil)
	s.ErrorIs(err, apperrors.ErrBalanceViolation)

	lenient := services.NewBalanceValidator(s.store, services.BalancePolicy{})
	s.NoError(lenient.MaybeValidateOnPost(s.ctx, domain.DocSalesDocument, "sd-2", nil))
}

func (s *LedgerScenarioTestSuite) TestValidateBatchReportsTruncation() {
	s.postSale()
	_, err := s.svc.Ledger.CreateEntry(s.ctx, s.line("sd-2", 1, accReceivable, accRevenue, 10))
	s.Require().NoError(err)
	capped := services.NewBalanceValidator(s.store, services.BalancePolicy{BatchConcurrency: 2, BatchDocumentLimit: 1})

	report, err := capped.ValidateBatch(s.ctx, domain.BatchFilter{})

	s.Require().NoError(err)
	s.True(report.Truncated)
	s.Equal(1, report.CheckedDocuments)

	full, err := s.svc.Balance.ValidateBatch(s.ctx, domain.BatchFilter{})
	s.Require().NoError(err)
	s.False(full.Truncated)
	s.Equal(2, full.CheckedDocuments)
}

func (s *LedgerScenarioTestSuite) TestCheckIntegrity() {
	report, err := s.svc.Integrity.CheckIntegrity(s.ctx)
	s.Require().NoError(err)
	s.True(report.OK())

	_, err = s.svc.Ledger.CreateEntry(s.ctx, s.line("sd-1", 1, accReceivable, accRevenue, 10))
	s.Require().NoError(err)
	_, err = s.svc.PostingRun.CreateNextRun(s.ctx, s.key, nil)
	s.Require().NoError(err)
	_, err = s.svc.PostingRun.CreateNextRun(s.ctx, s.key, nil)
	s.Require().NoError(err)

	report, err = s.svc.Integrity.CheckIntegrity(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(report.Issues, 2)
	s.Equal("le-1/SALES_DOCUMENT:sd-1 has more than one POSTED run", report.Issues[0])
	s.Contains(report.Issues[1], "has no posting run")

	s.Require().NoError(s.store.SaveEntry(s.ctx, domain.AccountingEntry{
		ID:            "unscoped",
		DocType:       domain.DocPayment,
		DocID:         "pay-1",
		LineNumber:    4,
		PostingDate:   s.day,
		DebitAccount:  accSuppliers,
		CreditAccount: accReceivable,
		Amount:        decimal.NewFromInt(5),
		Currency:      "RUB",
		AmountBase:    decimal.NewFromInt(5),
		Scope:         domain.Scope{CountryID: "RU", BrandID: "brand-1"},
		CreatedAt:     s.day,
	}))

	report, err = s.svc.Integrity.CheckIntegrity(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(report.Issues, 3)
	s.Equal("entry unscoped of PAYMENT:pay-1 line 4 has no legal entity", report.Issues[2])
}

func TestLedgerScenarioTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerScenarioTestSuite))
}

func TestDocumentRegistry(t *testing.T) {
	registry := services.NewDocumentRegistry()

	check, ok := registry.CheckerFor(domain.DocTestSeed)
	require.True(t, ok)
	exists, err := check(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, exists)

	_, ok = registry.CheckerFor(domain.DocSupply)
	assert.False(t, ok)

	registry.Register(domain.DocSupply, func(_ context.Context, id string) (bool, error) { return id == "s-1", nil })
	check, ok = registry.CheckerFor(domain.DocSupply)
	require.True(t, ok)
	exists, _ = check(context.Background(), "s-2")
	assert.False(t, exists)
}

func TestCurrencyConverter(t *testing.T) {
	store := memory.NewStore()
	store.AddRate("USD", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(90))
	converter := services.NewCurrencyConverter(store, "rub")
	ctx := context.Background()
	onDay := time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "RUB", converter.BaseCurrency())

	got, err := converter.ConvertToBase(ctx, decimal.NewFromInt(7), "RUB", onDay)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(7).Equal(got))

	got, err = converter.ConvertToBase(ctx, decimal.NewFromInt(2), "usd", onDay)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(180).Equal(got))

	_, err = converter.ConvertToBase(ctx, decimal.NewFromInt(2), "USD", onDay.AddDate(0, 0, -1))
	assert.EqualError(t, err, "no rate for currency USD on or before 2024-12-31")
}

func TestScopeResolver_CanonicalPairForBareLegalEntity(t *testing.T) {
	store := memory.NewStore()
	store.AddBrandCountry(domain.BrandCountry{BrandID: "b2", CountryID: "KZ", LegalEntityID: "le-1"})
	store.AddBrandCountry(domain.BrandCountry{BrandID: "b1", CountryID: "RU", LegalEntityID: "le-1"})
	resolver := services.NewScopeResolver(store, store)

	scope, err := resolver.Resolve(context.Background(), domain.ScopeRequest{
		Doc:      domain.DocumentRef{DocType: domain.DocInternalTransfer, DocID: "t-1"},
		Explicit: domain.Scope{LegalEntityID: "le-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.Scope{CountryID: "RU", BrandID: "b1", LegalEntityID: "le-1"}, scope)
}

func TestScopeResolver_SourceDocumentFallback(t *testing.T) {
	store := memory.NewStore()
	store.AddBrandCountry(domain.BrandCountry{BrandID: "b1", CountryID: "RU", LegalEntityID: "le-1"})
	source := domain.DocumentRef{DocType: domain.DocSupply, DocID: "sup-1"}
	store.SetDocumentScope(source, domain.Scope{CountryID: "RU", BrandID: "b1", MarketplaceID: stringPtr("mp-1")})
	resolver := services.NewScopeResolver(store, store)

	scope, err := resolver.Resolve(context.Background(), domain.ScopeRequest{
		Doc:       domain.DocumentRef{DocType: domain.DocSupplyReceipt, DocID: "rcpt-1"},
		SourceDoc: &source,
		Explicit:  domain.Scope{MarketplaceID: stringPtr("mp-override")},
	})

	require.NoError(t, err)
	assert.Equal(t, "le-1", scope.LegalEntityID)
	assert.Equal(t, "mp-override", *scope.MarketplaceID)
}

func stringPtr(s string) *string {
	return &s
}
