package domain

// DocType identifies the kind of business document an entry is posted against.
type DocType string

const (
	DocAcquiringEvent               DocType = "ACQUIRING_EVENT"
	DocSalesDocument                DocType = "SALES_DOCUMENT"
	DocSupply                       DocType = "SUPPLY"
	DocSupplyReceipt                DocType = "SUPPLY_RECEIPT"
	DocInventoryAdjustment          DocType = "INVENTORY_ADJUSTMENT"
	DocStockAdjustment              DocType = "STOCK_ADJUSTMENT"
	DocStockTransfer                DocType = "STOCK_TRANSFER"
	DocPayment                      DocType = "PAYMENT"
	DocPaymentExecution             DocType = "PAYMENT_EXECUTION"
	DocFinancialDocument            DocType = "FINANCIAL_DOCUMENT"
	DocFinancialDocumentAccrual     DocType = "FINANCIAL_DOCUMENT_ACCRUAL"
	DocFinancialDocumentRecognition DocType = "FINANCIAL_DOCUMENT_RECOGNITION"
	DocProductionCompletion         DocType = "PRODUCTION_COMPLETION"
	DocProductionConsumption        DocType = "PRODUCTION_CONSUMPTION"
	DocInternalTransfer             DocType = "INTERNAL_TRANSFER"
	DocMarketplacePayoutTransfer    DocType = "MARKETPLACE_PAYOUT_TRANSFER"
	DocStatementLineFee             DocType = "STATEMENT_LINE_FEE"
	DocSaleReturn                   DocType = "SALE_RETURN"
	DocTestSeed                     DocType = "TEST_SEED"
	DocOther                        DocType = "OTHER"
)

var knownDocTypes = map[DocType]struct{}{
	DocAcquiringEvent: {}, DocSalesDocument: {}, DocSupply: {}, DocSupplyReceipt: {},
	DocInventoryAdjustment: {}, DocStockAdjustment: {}, DocStockTransfer: {}, DocPayment: {},
	DocPaymentExecution: {}, DocFinancialDocument: {}, DocFinancialDocumentAccrual: {},
	DocFinancialDocumentRecognition: {}, DocProductionCompletion: {}, DocProductionConsumption: {},
	DocInternalTransfer: {}, DocMarketplacePayoutTransfer: {}, DocStatementLineFee: {},
	DocSaleReturn: {}, DocTestSeed: {}, DocOther: {},
}

// IsValid reports whether d is one of the known document types.
func (d DocType) IsValid() bool {
	_, ok := knownDocTypes[d]
	return ok
}

// ExemptDocTypes are posted without a document existence check; their documents
// live outside the ledger's reach or are synthetic.
var ExemptDocTypes = []DocType{
	DocPayment,
	DocProductionCompletion,
	DocProductionConsumption,
	DocInternalTransfer,
	DocMarketplacePayoutTransfer,
	DocStatementLineFee,
	DocPaymentExecution,
	DocTestSeed,
	DocOther,
}

// ControlledDocTypes must always be posted through a posting run.
var ControlledDocTypes = []DocType{
	DocSalesDocument,
	DocFinancialDocumentAccrual,
	DocPaymentExecution,
	DocInternalTransfer,
}

// DocumentRef points at a business document.
type DocumentRef struct {
	DocType DocType `json:"docType"`
	DocID   string  `json:"docId"`
}

func (r DocumentRef) String() string {
	return string(r.DocType) + ":" + r.DocID
}
