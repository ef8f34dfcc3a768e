// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tfctl/catsync/internal/catalog"
)

// CSVHeader is the header row of the products CSV.
var CSVHeader = []string{"Название товара", "Категория", "Цена продажи", "Количество", "Статус", "Описание"}

// ConvertToCSV renders a JSON array of products as semicolon-separated rows
// under CSVHeader. Name, category and description are always quoted. An
// empty list, or anything that is not an array, renders as "".
//
// encoding/csv only quotes when a field needs it, so rows are assembled here.
func ConvertToCSV(products []byte) string {
	list := gjson.ParseBytes(products)
	if !list.IsArray() {
		return ""
	}
	items := list.Array()
	if len(items) == 0 {
		return ""
	}

	lines := make([]string, 0, len(items)+1)
	lines = append(lines, strings.Join(CSVHeader, ";"))
	for _, p := range items {
		row := []string{
			quoted(p.Get("name")),
			quoted(p.Get("category")),
			verbatim(p.Get("price")),
			verbatim(p.Get("quantity")),
			catalog.StatusLabel(p.Get("status").String()),
			quoted(p.Get("description")),
		}
		lines = append(lines, strings.Join(row, ";"))
	}
	return strings.Join(lines, "\n")
}

func quoted(v gjson.Result) string {
	if !v.Exists() || v.Type == gjson.Null {
		return `""`
	}
	return `"` + strings.ReplaceAll(v.String(), `"`, `""`) + `"`
}

// verbatim keeps numbers as their JSON text so 10.50 stays 10.50.
func verbatim(v gjson.Result) string {
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return ""
	case v.Type == gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}
