package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Cotización"

// QuoteXLSX renders the document as a single-sheet workbook. Amounts are
// written as numbers so the sheet can be recalculated.
func QuoteXLSX(d Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", "A", 32); err != nil {
		return nil, fmt.Errorf("set col width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "C", 18); err != nil {
		return nil, fmt.Errorf("set col width: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt, Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &moneyFmt,
		Border:       thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	row := 1
	set := func(col string, v any) {
		f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), v)
	}
	style := func(from, to string, id int) {
		f.SetCellStyle(sheetName, fmt.Sprintf("%s%d", from, row), fmt.Sprintf("%s%d", to, row), id)
	}

	set("A", sanitizeExcelCell(d.Title))
	style("A", "A", titleStyle)
	row++
	if d.CompanyName != "" {
		set("A", sanitizeExcelCell(d.CompanyName))
		row++
	}
	if d.ClientName != "" {
		set("A", "Cliente")
		set("B", sanitizeExcelCell(d.ClientName))
		row++
	}
	if !d.Date.IsZero() {
		set("A", "Fecha")
		set("B", d.Date.Format("2006-01-02"))
		row++
	}
	row++

	set("A", "Material")
	set("B", "Gramos")
	style("A", "B", headerStyle)
	row++
	for _, it := range d.Items {
		set("A", sanitizeExcelCell(it.Material))
		set("B", it.MassGrams)
		row++
	}
	for _, e := range d.Extras {
		set("A", sanitizeExcelCell("Extra: "+e.Description))
		set("B", e.Amount)
		style("B", "B", moneyStyle)
		row++
	}
	row++

	set("A", "Concepto")
	set("B", "USD")
	if d.Local != nil && d.localMoney(1) != "" {
		set("C", d.Local.Code)
		style("A", "C", headerStyle)
	} else {
		style("A", "B", headerStyle)
	}
	row++

	if d.Breakdown == nil {
		set("A", "Total sin calcular (falta la máquina)")
		row++
	} else {
		put := func(label string, amount float64, id int) {
			set("A", label)
			set("B", amount)
			last := "B"
			if d.Local != nil && d.localMoney(1) != "" {
				set("C", amount*d.Local.Rate)
				last = "C"
			}
			style("B", last, id)
			row++
		}
		for _, l := range breakdownLines(*d.Breakdown) {
			put(l.Label, l.Amount, moneyStyle)
		}
		set("A", "Cantidad")
		set("B", int(d.units()))
		row++
		put("Total", d.Breakdown.Total*d.units(), totalStyle)
	}
	row++

	set("A", "Tiempo de impresión (h)")
	set("B", d.PrintHours)
	row++
	set("A", "Mano de obra (h)")
	set("B", d.LaborHours)
	row++
	set("A", "Tarifa eléctrica")
	set("B", tariffLabel(d.Tariff, d.PeakHours))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell stops user text from being read as a formula.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
