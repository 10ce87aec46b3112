package domain

// Scope is the (country, brand, legal entity, marketplace, warehouse) tuple an entry is filed under.
type Scope struct {
	CountryID     string  `json:"countryId"`
	BrandID       string  `json:"brandId"`
	LegalEntityID string  `json:"legalEntityId"`
	MarketplaceID *string `json:"marketplaceId,omitempty"`
	WarehouseID   *string `json:"warehouseId,omitempty"`
}

// IsComplete reports whether every mandatory scope field is set.
func (s Scope) IsComplete() bool {
	return s.CountryID != "" && s.BrandID != "" && s.LegalEntityID != ""
}

// BrandCountry maps a brand+country pair to the legal entity that books it.
type BrandCountry struct {
	BrandID       string `json:"brandId"`
	CountryID     string `json:"countryId"`
	LegalEntityID string `json:"legalEntityId"`
}

// ScopeRequest carries the document references and caller overrides handed to a ScopeResolver.
type ScopeRequest struct {
	Doc       DocumentRef
	SourceDoc *DocumentRef
	Explicit  Scope
}
