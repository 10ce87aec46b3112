package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
)

// integrityIssueLimit bounds each class of issue reported by one sweep.
const integrityIssueLimit = 100

type integrityService struct {
	BaseService
	runRepo   portsrepo.PostingRunReader
	entryRepo portsrepo.EntryReader
}

// NewIntegrityService creates a new IntegrityService.
func NewIntegrityService(runRepo portsrepo.PostingRunReader, entryRepo portsrepo.EntryReader) portssvc.IntegritySvcFacade {
	return &integrityService{runRepo: runRepo, entryRepo: entryRepo}
}

var _ portssvc.IntegritySvcFacade = (*integrityService)(nil)

func (s *integrityService) CheckIntegrity(ctx context.Context) (*domain.IntegrityReport, error) {
	report := &domain.IntegrityReport{Issues: []string{}}

	keys, err := s.runRepo.FindKeysWithMultipleActiveRuns(ctx, integrityIssueLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to find keys with multiple active runs: %w", err)
	}
	for _, key := range keys {
		report.Issues = append(report.Issues, fmt.Sprintf("%s has more than one POSTED run", key))
	}

	orphans, err := s.entryRepo.ListEntriesWithoutRun(ctx, domain.ControlledDocTypes, integrityIssueLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to find controlled entries without a run: %w", err)
	}
	for _, e := range orphans {
		report.Issues = append(report.Issues, fmt.Sprintf("entry %s of %s line %d has no posting run", e.ID, e.Document(), e.LineNumber))
	}

	unscoped, err := s.entryRepo.ListEntriesWithoutLegalEntity(ctx, integrityIssueLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to find entries without legal entity: %w", err)
	}
	for _, e := range unscoped {
		report.Issues = append(report.Issues, fmt.Sprintf("entry %s of %s line %d has no legal entity", e.ID, e.Document(), e.LineNumber))
	}

	if report.OK() {
		s.LogInfo(ctx, "Posting integrity check passed")
	} else {
		s.LogWarn(ctx, "Posting integrity issues found", zap.Int("issues", len(report.Issues)))
	}
	return report, nil
}
