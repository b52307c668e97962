package domain

import "github.com/shopspring/decimal"

// DailySalesReportTopic é o nome padrão da fila do relatório diário
const DailySalesReportTopic = "daily_sales_report"

// ItemSold é a quantidade total vendida de um SKU no dia
type ItemSold struct {
	SKU           string `json:"sku"`
	TotalQuantity int    `json:"totalQuantity"`
}

// DailySalesReport é o resumo diário publicado na fila, nunca persistido
type DailySalesReport struct {
	Date       string          `json:"date"` // YYYY-MM-DD
	TotalSales decimal.Decimal `json:"totalSales"`
	ItemsSold  []ItemSold      `json:"itemsSold"`
}
