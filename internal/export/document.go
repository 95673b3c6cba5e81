// Package export renders a priced quote or design as plain text, PDF or XLSX.
package export

import (
	"fmt"
	"time"

	"github.com/Simplici0/cotiza3d/internal/currency"
	"github.com/Simplici0/cotiza3d/internal/pricing"
)

// Item is one part of the job with its material resolved to a name.
type Item struct {
	Material  string
	MassGrams float64
}

// Local carries the display currency a document is also priced in.
type Local struct {
	Code string
	Rate float64
}

// Document is everything an exported quote shows. Breakdown is nil when the
// job cannot be priced.
type Document struct {
	CompanyName      string
	CompanyContact   string
	CompanyInstagram string

	Title      string
	ClientName string
	Quantity   int
	Date       time.Time
	Notes      string

	Width, Height, Depth float64

	Items      []Item
	Machine    string
	PrintHours float64
	LaborHours float64
	Tariff     pricing.TariffType
	PeakHours  float64
	Extras     []pricing.ExtraCost

	Breakdown *pricing.Breakdown
	Places    int
	Local     *Local
}

// NewDocument resolves the job's material and machine names against the
// catalog used to price it.
func NewDocument(title string, job pricing.JobSpec, b *pricing.Breakdown, materials []pricing.Material, machines []pricing.Machine) Document {
	doc := Document{
		Title:      title,
		Quantity:   1,
		PrintHours: job.PrintHours,
		LaborHours: job.LaborHours,
		Tariff:     job.Tariff,
		Extras:     job.ExtraCosts,
		Breakdown:  b,
		Places:     2,
	}
	doc.PeakHours, _ = pricing.EnergySplit(job)

	names := make(map[string]string, len(materials))
	for _, m := range materials {
		names[m.ID] = m.Name
	}
	for _, p := range job.Parts {
		name, ok := names[p.MaterialID]
		if !ok {
			name = "Material eliminado"
		}
		doc.Items = append(doc.Items, Item{Material: name, MassGrams: p.MassGrams})
	}

	for _, m := range machines {
		if m.ID == job.MachineID {
			doc.Machine = m.Name
			break
		}
	}
	return doc
}

func (d Document) units() float64 {
	if d.Quantity < 1 {
		return 1
	}
	return float64(d.Quantity)
}

func (d Document) money(amount float64) string {
	return currency.Format(amount, currency.Base, d.Places, currency.DisplayCode)
}

// localMoney formats a base amount in the local currency, or returns "" when
// the document has none.
func (d Document) localMoney(amount float64) string {
	if d.Local == nil || d.Local.Code == "" || d.Local.Code == currency.Base {
		return ""
	}
	v, err := currency.Convert(amount, d.Local.Rate)
	if err != nil {
		return ""
	}
	return currency.Format(v, d.Local.Code, d.Places, currency.DisplayCode)
}

func (d Document) totalMass() float64 {
	var g float64
	for _, it := range d.Items {
		g += it.MassGrams
	}
	return g
}

func tariffLabel(t pricing.TariffType, peakHours float64) string {
	switch t {
	case pricing.TariffPeak:
		return "Punta"
	case pricing.TariffMixed:
		return fmt.Sprintf("Mixta (%.2f h en punta)", peakHours)
	default:
		return "Fuera de punta"
	}
}

// line is a labelled amount of the cost breakdown.
type line struct {
	Label  string
	Amount float64
}

func breakdownLines(b pricing.Breakdown) []line {
	return []line{
		{"Material", b.MaterialCost},
		{"Depreciación de máquina", b.MachineDepreciationCost},
		{"Energía", b.EnergyCost},
		{"Mano de obra", b.LaborCost},
		{"Subtotal producción", b.Subtotal},
		{"Diseño", b.DesignCost},
		{"Costos extra", b.TotalExtraCosts},
		{"Costo total", b.CostSubtotal},
		{"Ganancia", b.ProfitAmount},
		{"Precio unitario", b.Total},
	}
}
