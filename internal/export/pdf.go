package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	grey     = &props.Color{Red: 100, Green: 100, Blue: 100}
	headerBg = &props.Color{Red: 33, Green: 37, Blue: 41}
	altBg    = &props.Color{Red: 248, Green: 249, Blue: 250}
	white    = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// QuotePDF renders the document as an A4 PDF and returns its bytes.
func QuotePDF(d Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   grey,
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, d)
	addItems(m, d)
	addTotals(m, d)
	addAssumptions(m, d)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate quote pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, d Document) {
	company := d.CompanyName
	if company == "" {
		company = "Cotización"
	}
	m.AddRows(
		row.New(10).Add(
			col.New(7).Add(text.New(company, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Left})),
			col.New(5).Add(text.New("COTIZACIÓN", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right})),
		),
	)

	contact := d.CompanyContact
	if d.CompanyInstagram != "" {
		contact = joinNonEmpty([]string{contact, d.CompanyInstagram}, " | ")
	}
	date := ""
	if !d.Date.IsZero() {
		date = d.Date.Format("02/01/2006")
	}
	m.AddRows(
		row.New(7).Add(
			col.New(7).Add(text.New(contact, props.Text{Size: 8, Align: align.Left, Color: grey})),
			col.New(5).Add(text.New(date, props.Text{Size: 9, Align: align.Right})),
		),
	)
	m.AddRows(row.New(4))

	label := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Left, Color: grey}
	value := props.Text{Size: 10, Align: align.Left}
	m.AddRows(
		row.New(5).Add(
			col.New(8).Add(text.New("TRABAJO", label)),
			col.New(4).Add(text.New("CLIENTE", label)),
		),
		row.New(7).Add(
			col.New(8).Add(text.New(d.Title, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left})),
			col.New(4).Add(text.New(d.ClientName, value)),
		),
	)
	if d.Notes != "" {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New(d.Notes, props.Text{Size: 8, Align: align.Left}))))
	}
	m.AddRows(row.New(4))
}

func addItems(m core.Maroto, d Document) {
	head := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left, Color: white}
	headRight := head
	headRight.Align = align.Right
	headerCell := &props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(7).Add(
			col.New(8).Add(text.New("Material", head)).WithStyle(headerCell),
			col.New(4).Add(text.New("Gramos", headRight)).WithStyle(headerCell),
		),
	)

	body := props.Text{Size: 8, Align: align.Left}
	bodyRight := props.Text{Size: 8, Align: align.Right}
	for i, it := range d.Items {
		c1 := col.New(8).Add(text.New(it.Material, body))
		c2 := col.New(4).Add(text.New(fmt.Sprintf("%.1f", it.MassGrams), bodyRight))
		if i%2 == 1 {
			cell := &props.Cell{BackgroundColor: altBg}
			c1 = c1.WithStyle(cell)
			c2 = c2.WithStyle(cell)
		}
		m.AddRows(row.New(6).Add(c1, c2))
	}
	for _, e := range d.Extras {
		m.AddRows(row.New(6).Add(
			col.New(8).Add(text.New("Extra: "+e.Description, body)),
			col.New(4).Add(text.New(d.money(e.Amount), bodyRight)),
		))
	}
	m.AddRows(row.New(4))
}

func addTotals(m core.Maroto, d Document) {
	label := props.Text{Size: 8, Align: align.Right, Color: grey}
	value := props.Text{Size: 8, Align: align.Right}

	if d.Breakdown == nil {
		m.AddRows(row.New(8).Add(col.New(12).Add(text.New(
			"Total sin calcular: la máquina asignada ya no existe.",
			props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left},
		))))
		return
	}

	for _, l := range breakdownLines(*d.Breakdown) {
		m.AddRows(row.New(5).Add(
			col.New(8).Add(text.New(l.Label, label)),
			col.New(4).Add(text.New(d.money(l.Amount), value)),
		))
	}

	total := d.Breakdown.Total * d.units()
	grand := props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}
	m.AddRows(row.New(9).Add(
		col.New(8).Add(text.New(fmt.Sprintf("TOTAL (%d u.)", int(d.units())), grand)),
		col.New(4).Add(text.New(d.money(total), grand)),
	))
	if local := d.localMoney(total); local != "" {
		m.AddRows(row.New(7).Add(
			col.New(8).Add(text.New("Total en moneda local", label)),
			col.New(4).Add(text.New(local, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
		))
	}
	m.AddRows(row.New(4))
}

func addAssumptions(m core.Maroto, d Document) {
	label := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Left, Color: grey}
	body := props.Text{Size: 8, Align: align.Left}

	lines := []string{
		fmt.Sprintf("Tiempo de impresión: %.2f h", d.PrintHours),
		fmt.Sprintf("Mano de obra: %.2f h", d.LaborHours),
		"Tarifa eléctrica: " + tariffLabel(d.Tariff, d.PeakHours),
	}
	if d.Machine != "" {
		lines = append(lines, "Máquina: "+d.Machine)
	}
	if d.Width > 0 || d.Height > 0 || d.Depth > 0 {
		lines = append(lines, fmt.Sprintf("Dimensiones: %.0f x %.0f x %.0f mm", d.Width, d.Height, d.Depth))
	}

	m.AddRows(row.New(5).Add(col.New(12).Add(text.New("SUPUESTOS", label))))
	for _, l := range lines {
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New(l, body))))
	}
}

func joinNonEmpty(parts []string, sep string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
