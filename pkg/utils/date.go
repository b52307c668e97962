package utils

import (
	"fmt"
	"time"
)

// Layouts aceitos em filtros e no corpo das requisições, do mais específico ao mais simples
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate interpreta uma data ISO. Datas sem fuso são consideradas UTC,
// assim "2023-12-01" corresponde a 2023-12-01T00:00:00Z.
func ParseDate(dateStr string) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, dateStr); err == nil {
			return &date, nil
		}
	}

	return nil, fmt.Errorf("data inválida: %q", dateStr)
}

// StartOfDay retorna a meia-noite do dia de t no fuso de t
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
