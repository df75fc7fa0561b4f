package transform

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// ActiveFlag is written to every product's active element.
	ActiveFlag = "1"
	// DefaultBrandID is written when the feed carries no brand identifier, which it never does.
	DefaultBrandID = "0"

	DefaultVariantName1 = "Renk"
	DefaultVariantName2 = "Beden"

	SourceCurrencyLira = "TL"
	TargetCurrencyLira = "TRY"
)

// Source element names.
const (
	srcCode       = "code"
	srcWSCode     = "ws_code"
	srcImages     = "images"
	srcImageItem  = "img_item"
	srcSubs       = "subproducts"
	srcSub        = "subproduct"
	srcType1      = "type1"
	srcType2      = "type2"
	srcStock      = "stock"
	srcBarcode    = "barcode"
	srcScript     = "script"
	srcProduct    = "product"
	targetRoot    = "products"
	targetProduct = "product"
)

var hundred = decimal.NewFromInt(100)

// fieldRule maps one target child element. A rule without a source writes
// constant; a rule with a source copies its text through convert when set.
type fieldRule struct {
	target   string
	source   string
	constant string
	optional bool
	convert  func(string) (string, error)
}

// productFields lists the product children in output order.
var productFields = []fieldRule{
	{target: "barcode", source: srcBarcode, optional: true},
	{target: "main_category", source: "cat1name"},
	{target: "top_category", source: "cat2name"},
	{target: "sub_category", source: "cat2name"},
	{target: "sub_category_"},
	{target: "categoryID", source: "cat2code"},
	{target: "category", source: "category_path"},
	{target: "active", constant: ActiveFlag},
	{target: "brandID", constant: DefaultBrandID},
	{target: "brand", source: "brand"},
	{target: "name", source: "name"},
	{target: "description", source: "detail"},
	{target: "listPrice", source: "price_list_vat_included"},
	{target: "price", source: "price_special_vat_included"},
	{target: "tax", source: "vat", convert: VATToTax},
	{target: "currency", source: "currency", convert: NormalizeCurrency},
	{target: "desi", source: "desi"},
	{target: "quantity", source: srcStock},
}

// VATToTax rescales a VAT percentage to a fraction: "18" becomes "0.18".
func VATToTax(vat string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(vat))
	if err != nil {
		return "", fmt.Errorf("not a number: %w", err)
	}
	return d.Div(hundred).String(), nil
}

// NormalizeCurrency maps the feed's lira token to its ISO code and passes anything else through.
func NormalizeCurrency(currency string) (string, error) {
	if currency == SourceCurrencyLira {
		return TargetCurrencyLira, nil
	}
	return currency, nil
}
