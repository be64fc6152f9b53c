package domain

import "strings"

// Dimension identifies one filterable column of the sales fact table.
type Dimension string

const (
	DimOrganization    Dimension = "sales_org"
	DimCountry         Dimension = "sales_country"
	DimRegion          Dimension = "sales_region"
	DimState           Dimension = "sales_state"
	DimCity            Dimension = "sales_city"
	DimProductLine     Dimension = "product_line"
	DimProductCategory Dimension = "product_category"
)

// DisplayName returns the label used in payloads and summaries.
func (d Dimension) DisplayName() string {
	switch d {
	case DimOrganization:
		return "Sales Organization"
	case DimCountry:
		return "Country"
	case DimRegion:
		return "Region"
	case DimState:
		return "State"
	case DimCity:
		return "City"
	case DimProductLine:
		return "Product Line"
	case DimProductCategory:
		return "Product Category"
	}
	return string(d)
}

// DimensionChain is the fixed selection order. Every filter clause and
// option list is built by walking this slice, never by ad hoc branching.
var DimensionChain = []Dimension{
	DimOrganization,
	DimCountry,
	DimRegion,
	DimState,
	DimCity,
	DimProductLine,
	DimProductCategory,
}

// FilterValue is an optional filter constraint. The zero value means
// "no constraint". "All" and blank inputs normalize to the zero value so
// a dimension literally named "All" can never match by accident.
type FilterValue struct {
	value string
	set   bool
}

// NewFilterValue normalizes a raw selection string into a FilterValue.
func NewFilterValue(raw string) FilterValue {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" || strings.EqualFold(cleaned, "All") {
		return FilterValue{}
	}
	return FilterValue{value: cleaned, set: true}
}

func (f FilterValue) IsSet() bool { return f.set }

func (f FilterValue) Value() string { return f.value }

// OrAll returns the constrained value, or "All" when unset.
func (f FilterValue) OrAll() string {
	if f.set {
		return f.value
	}
	return "All"
}

// FilterSelection is one request's selection path across the dimension
// chain. Missing entries mean no constraint. Immutable once built.
type FilterSelection map[Dimension]FilterValue

func (s FilterSelection) Get(dim Dimension) FilterValue {
	return s[dim]
}

// Constrained reports whether any dimension carries a value.
func (s FilterSelection) Constrained() bool {
	for _, v := range s {
		if v.IsSet() {
			return true
		}
	}
	return false
}

// Subset returns a selection containing only the given dimensions.
func (s FilterSelection) Subset(dims ...Dimension) FilterSelection {
	sub := make(FilterSelection, len(dims))
	for _, d := range dims {
		if v, ok := s[d]; ok && v.IsSet() {
			sub[d] = v
		}
	}
	return sub
}

// Key renders a deterministic cache key for the selection, walking the
// dimension chain in order.
func (s FilterSelection) Key() string {
	var b strings.Builder
	for _, dim := range DimensionChain {
		b.WriteString(string(dim))
		b.WriteByte('=')
		b.WriteString(s.Get(dim).OrAll())
		b.WriteByte('|')
	}
	return b.String()
}

// FilterOptions holds the resolved dropdown candidates per dimension,
// each list sorted and prefixed with the "All" sentinel.
type FilterOptions map[Dimension][]string
