package notifying

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/vfg2006/invoice-report-api/internal/domain"
	"github.com/vfg2006/invoice-report-api/pkg/utils"
)

var funcs = map[string]any{
	"currency": utils.FormatCurrency,
}

var reportText = texttemplate.Must(texttemplate.New("report.txt").Funcs(funcs).Parse(
	`Daily Sales Report - {{.Date}}

Total Sales: {{currency .TotalSales}}

Items Sold:
{{range .ItemsSold}}SKU: {{.SKU}}, Quantity: {{.TotalQuantity}}
{{end}}`))

var reportHTML = htmltemplate.Must(htmltemplate.New("report.html").Funcs(funcs).Parse(
	`<h1>Daily Sales Report - {{.Date}}</h1>
<p><strong>Total Sales:</strong> {{currency .TotalSales}}</p>

<h2>Items Sold</h2>
<table border="1" cellpadding="5" cellspacing="0">
  <tr>
    <th>SKU</th>
    <th>Total Quantity</th>
  </tr>
{{- range .ItemsSold}}
  <tr>
    <td>{{.SKU}}</td>
    <td>{{.TotalQuantity}}</td>
  </tr>
{{- end}}
</table>
`))

func Subject(report *domain.DailySalesReport) string {
	return "Daily Sales Report - " + report.Date
}

// RenderReportText monta o corpo em texto puro, um item por linha
func RenderReportText(report *domain.DailySalesReport) (string, error) {
	var sb strings.Builder
	if err := reportText.Execute(&sb, report); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderReportHTML monta o corpo HTML com a tabela de itens; SKUs são escapados
func RenderReportHTML(report *domain.DailySalesReport) (string, error) {
	var sb strings.Builder
	if err := reportHTML.Execute(&sb, report); err != nil {
		return "", err
	}
	return sb.String(), nil
}
