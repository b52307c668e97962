package utils

import "github.com/shopspring/decimal"

// FormatCurrency formata um valor monetário com duas casas decimais, ex.: $1000.00
func FormatCurrency(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
