package export

import (
	"fmt"
	"strings"
)

// QuoteText renders the document as plain text suitable for pasting into a
// chat with the client.
func QuoteText(d Document) string {
	var b strings.Builder

	if d.CompanyName != "" {
		fmt.Fprintln(&b, d.CompanyName)
	}
	fmt.Fprintf(&b, "Cotización: %s\n", d.Title)
	if d.ClientName != "" {
		fmt.Fprintf(&b, "Cliente: %s\n", d.ClientName)
	}
	if !d.Date.IsZero() {
		fmt.Fprintf(&b, "Fecha: %s\n", d.Date.Format("2006-01-02"))
	}
	b.WriteString("\n")

	if d.Breakdown == nil {
		b.WriteString("Total: sin calcular (falta la máquina)\n")
	} else {
		total := d.Breakdown.Total * d.units()
		fmt.Fprintf(&b, "Total: %s\n", d.money(total))
		if local := d.localMoney(total); local != "" {
			fmt.Fprintf(&b, "Total local: %s\n", local)
		}
		if d.units() > 1 {
			fmt.Fprintf(&b, "Precio unitario: %s x %d\n", d.money(d.Breakdown.Total), d.Quantity)
		}

		b.WriteString("\nDesglose:\n")
		for _, l := range breakdownLines(*d.Breakdown) {
			fmt.Fprintf(&b, "- %s: %s\n", l.Label, d.money(l.Amount))
		}
	}

	b.WriteString("\nSupuestos:\n")
	fmt.Fprintf(&b, "- Tiempo de impresión: %.2f h\n", d.PrintHours)
	fmt.Fprintf(&b, "- Mano de obra: %.2f h\n", d.LaborHours)
	fmt.Fprintf(&b, "- Tarifa eléctrica: %s\n", tariffLabel(d.Tariff, d.PeakHours))
	if d.Machine != "" {
		fmt.Fprintf(&b, "- Máquina: %s\n", d.Machine)
	}
	if d.Breakdown != nil && d.Breakdown.IsManualPrice {
		b.WriteString("- Precio fijado manualmente\n")
	}
	if d.Local != nil && d.localMoney(1) != "" {
		fmt.Fprintf(&b, "- Tipo de cambio: 1 USD = %.4f %s\n", d.Local.Rate, d.Local.Code)
	}

	b.WriteString("\nDatos del item:\n")
	for _, it := range d.Items {
		fmt.Fprintf(&b, "- Material: %s (%.1f g)\n", it.Material, it.MassGrams)
	}
	for _, e := range d.Extras {
		fmt.Fprintf(&b, "- Extra: %s (%s)\n", e.Description, d.money(e.Amount))
	}
	fmt.Fprintf(&b, "- Cantidad: %d\n", int(d.units()))
	if d.Width > 0 || d.Height > 0 || d.Depth > 0 {
		fmt.Fprintf(&b, "- Dimensiones: %.0f x %.0f x %.0f mm\n", d.Width, d.Height, d.Depth)
	}
	if d.Notes != "" {
		fmt.Fprintf(&b, "- Notas: %s\n", d.Notes)
	}

	if d.CompanyContact != "" || d.CompanyInstagram != "" {
		b.WriteString("\n")
		contact := d.CompanyContact
		if d.CompanyInstagram != "" {
			contact = strings.TrimSpace(contact + " " + d.CompanyInstagram)
		}
		fmt.Fprintf(&b, "Contacto: %s\n", contact)
	}

	return b.String()
}
