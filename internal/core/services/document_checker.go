package services

import (
	"context"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
)

// DocumentRegistry maps doc types to existence predicates.
// Exempt doc types always exist; table-backed types look up their business table.
type DocumentRegistry struct {
	predicates map[domain.DocType]portssvc.DocumentPredicate
}

var _ portssvc.DocumentExistenceChecker = (*DocumentRegistry)(nil)

// NewDocumentRegistry registers the exempt doc types.
func NewDocumentRegistry() *DocumentRegistry {
	r := &DocumentRegistry{predicates: make(map[domain.DocType]portssvc.DocumentPredicate)}
	for _, dt := range domain.ExemptDocTypes {
		r.Register(dt, alwaysExists)
	}
	return r
}

// NewTableDocumentRegistry registers the exempt doc types plus one table lookup per configured doc type.
func NewTableDocumentRegistry(tables portsrepo.DocumentTableReader, docTables map[string]string) *DocumentRegistry {
	r := NewDocumentRegistry()
	for docType, table := range docTables {
		r.Register(domain.DocType(docType), tablePredicate(tables, table))
	}
	return r
}

// Register sets the predicate of a doc type, replacing any previous one.
func (r *DocumentRegistry) Register(docType domain.DocType, predicate portssvc.DocumentPredicate) {
	r.predicates[docType] = predicate
}

func (r *DocumentRegistry) CheckerFor(docType domain.DocType) (portssvc.DocumentPredicate, bool) {
	p, ok := r.predicates[docType]
	return p, ok
}

func alwaysExists(context.Context, string) (bool, error) {
	return true, nil
}

func tablePredicate(tables portsrepo.DocumentTableReader, table string) portssvc.DocumentPredicate {
	return func(ctx context.Context, docID string) (bool, error) {
		return tables.DocumentExists(ctx, table, docID)
	}
}
