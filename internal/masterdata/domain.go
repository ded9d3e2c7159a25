// Package masterdata holds the lookup entities referenced by procurement
// documents: vendors, cost code configurations and the preferred-item catalog.
package masterdata

import (
	"errors"
	"strings"
)

// Vendor supplies goods against purchase and change orders.
type Vendor struct {
	UUID            string `json:"uuid"`
	CorporationUUID string `json:"corporation_uuid"`
	Name            string `json:"name"`
	IsActive        bool   `json:"is_active"`
}

// CostCode is a budgeting bucket configured per corporation.
type CostCode struct {
	UUID            string `json:"uuid"`
	CorporationUUID string `json:"corporation_uuid"`
	Number          string `json:"cost_code_number"`
	Name            string `json:"cost_code_name"`
	IsActive        bool   `json:"is_active"`
}

// Label renders the report label for a cost code.
func (c CostCode) Label() string {
	return strings.TrimSpace(c.Number + " " + c.Name)
}

// CatalogItem is a preferred-item catalog entry ("project item"). Purchase
// and change order line items reference these by UUID; reports aggregate by
// this key across orders.
type CatalogItem struct {
	UUID            string `json:"uuid"`
	CorporationUUID string `json:"corporation_uuid"`
	ProjectUUID     string `json:"project_uuid"`
	Name            string `json:"item_name"`
	SequenceCode    string `json:"item_sequence"`
	ModelNumber     string `json:"manufacturer_model_number"`
	Unit            string `json:"unit"`
	CostCodeUUID    string `json:"cost_code_uuid"`
	IsActive        bool   `json:"is_active"`
}

var (
	// ErrNotFound indicates a lookup entity is missing.
	ErrNotFound = errors.New("masterdata: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("masterdata: invalid input")
)
