package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Item is one cart line as the engine sees it: a price snapshot plus enough
// identity to detect package membership.
type Item struct {
	SubjectID   string
	SubjectName string
	IsBundle    bool
	Price       decimal.Decimal
}

// Offer is a resolved, valid discount code. Exactly one of Amount or Percent
// is non-zero.
type Offer struct {
	Code    string
	Amount  decimal.Decimal
	Percent decimal.Decimal
}

type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Package  string // matched package name, "" if none
}

// Package is a pre-enumerated multi-subject deal: buying whole-subject
// bundles for exactly these subjects costs Price flat instead of the summed
// bundle prices.
type Package struct {
	Name     string
	Subjects []string
	Price    decimal.Decimal
}

var packages = []Package{
	{
		Name:     "Mandatory 5 Package",
		Subjects: []string{"Mathematics", "English", "Kiswahili", "Science", "Social Studies"},
		Price:    decimal.NewFromInt(1200),
	},
	{
		Name:     "Languages Pair",
		Subjects: []string{"English", "Kiswahili"},
		Price:    decimal.NewFromInt(550),
	},
}

// ComputeQuote prices a set of cart items with an optional resolved offer.
// The subtotal is always the plain sum of item prices; a package match or an
// offer is reported through Discount so Total = max(0, Subtotal - Discount).
func ComputeQuote(items []Item, offer *Offer) Quote {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price)
	}

	discount := decimal.Zero
	pkgName := ""
	if pkg := matchPackage(items); pkg != nil {
		discount = subtotal.Sub(pkg.Price)
		pkgName = pkg.Name
	}

	if offer != nil {
		base := subtotal.Sub(discount)
		if offer.Percent.IsPositive() {
			discount = discount.Add(base.Mul(offer.Percent).Div(decimal.NewFromInt(100)).Round(2))
		} else {
			discount = discount.Add(offer.Amount)
		}
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
		Package:  pkgName,
	}
}

// matchPackage returns the package whose subject set exactly equals the cart,
// or nil. Only all-bundle carts qualify.
func matchPackage(items []Item) *Package {
	names := make(map[string]bool, len(items))
	for _, it := range items {
		if !it.IsBundle {
			return nil
		}
		names[strings.ToLower(it.SubjectName)] = true
	}
	if len(names) != len(items) {
		return nil
	}

	for i := range packages {
		pkg := &packages[i]
		if len(pkg.Subjects) != len(items) {
			continue
		}
		all := true
		for _, s := range pkg.Subjects {
			if !names[strings.ToLower(s)] {
				all = false
				break
			}
		}
		if all {
			return pkg
		}
	}
	return nil
}

// AllocateTotal spreads a discounted total back over the individual items in
// minor currency units, proportional to each item's snapshot price. Rounding
// leftovers land on the first items so the amounts always sum to the total.
func AllocateTotal(items []Item, total decimal.Decimal, currency string) ([]int64, error) {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price)
	}

	totalMinor, err := MinorUnits(total, currency)
	if err != nil {
		return nil, err
	}

	amounts := make([]int64, len(items))
	if subtotal.IsZero() {
		return amounts, nil
	}

	var allocated int64
	for i, it := range items {
		share := total.Mul(it.Price).Div(subtotal)
		minor, err := MinorUnits(share.RoundDown(exponent(currency)), currency)
		if err != nil {
			return nil, err
		}
		amounts[i] = minor
		allocated += minor
	}

	for i := 0; allocated < totalMinor; i++ {
		amounts[i%len(amounts)]++
		allocated++
	}
	return amounts, nil
}

// Currencies whose minor unit equals the major unit (per ISO 4217 / the
// payment provider's zero-decimal list).
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true,
	"kmf": true, "krw": true, "mga": true, "pyg": true, "rwf": true,
	"ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true,
	"xpf": true,
}

func exponent(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return 0
	}
	return 2
}

// MinorUnits converts a decimal amount to the currency's smallest unit.
// Amounts with sub-minor-unit precision are rejected rather than silently
// rounded.
func MinorUnits(amount decimal.Decimal, currency string) (int64, error) {
	shifted := amount.Shift(exponent(currency))
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has sub-minor-unit precision for %s", amount, currency)
	}
	return shifted.IntPart(), nil
}

// FromMinorUnits is the inverse of MinorUnits.
func FromMinorUnits(minor int64, currency string) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-exponent(currency))
}
