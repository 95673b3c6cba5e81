// Package reports aggregates stored quotes and investments into the figures
// shown on the dashboard, the investments page and the client list.
package reports

import (
	"errors"
	"sort"

	"github.com/Simplici0/cotiza3d/internal/pricing"
	"github.com/Simplici0/cotiza3d/internal/store"
)

// Dashboard is the shop summary. Money figures are in the base currency.
type Dashboard struct {
	TotalRevenue        float64       `json:"totalRevenue"`
	TotalCost           float64       `json:"totalCost"`
	TotalProfit         float64       `json:"totalProfit"`
	ConfirmedQuotes     int           `json:"confirmedQuotes"`
	InPreparationQuotes int           `json:"inPreparationQuotes"`
	DraftQuotes         int           `json:"draftQuotes"`
	Materials           int           `json:"materials"`
	Machines            int           `json:"machines"`
	TotalInvested       float64       `json:"totalInvested"`
	RecoveryPercentage  float64       `json:"recoveryPercentage"`
	ActiveQuotes        []store.Quote `json:"activeQuotes"`
}

// Recovery tracks how much of the invested capital profits have paid back.
type Recovery struct {
	TotalInvested   float64 `json:"totalInvested"`
	TotalProfit     float64 `json:"totalProfit"`
	AmountToRecover float64 `json:"amountToRecover"`
	Percentage      float64 `json:"percentage"`
}

// ClientStat is a client row enriched with its purchase history.
type ClientStat struct {
	store.Client
	LastJobName    string  `json:"lastJobName,omitempty"`
	TotalPurchased float64 `json:"totalPurchased"`
}

// HistoryEntry is one quote in a client's history.
type HistoryEntry struct {
	store.Quote
	Breakdown *pricing.Breakdown `json:"breakdown"`
	TotalUSD  float64            `json:"totalUSD"`
}

// quoteTotals prices a quote and scales it by its quantity. ok is false when
// the quote's machine is gone and its price cannot be computed.
func quoteTotals(q store.Quote, catalog store.Catalog) (b pricing.Breakdown, ok bool, err error) {
	b, err = catalog.Calculate(q.Job)
	if errors.Is(err, pricing.ErrMachineRequired) {
		return pricing.Breakdown{}, false, nil
	}
	if err != nil {
		return pricing.Breakdown{}, false, err
	}
	return b, true, nil
}

// BuildDashboard summarises confirmed work against the money invested.
func BuildDashboard(quotes []store.Quote, investments []store.Investment, catalog store.Catalog) (Dashboard, error) {
	d := Dashboard{
		Materials:    len(catalog.Materials),
		Machines:     len(catalog.Machines),
		ActiveQuotes: make([]store.Quote, 0),
	}

	for _, q := range quotes {
		switch q.Status {
		case store.StatusDraft:
			d.DraftQuotes++
		case store.StatusInPreparation:
			d.InPreparationQuotes++
		}
		if q.Status.Active() {
			d.ActiveQuotes = append(d.ActiveQuotes, q)
		}
		if !q.Status.Confirmed() {
			continue
		}
		d.ConfirmedQuotes++

		b, ok, err := quoteTotals(q, catalog)
		if err != nil {
			return Dashboard{}, err
		}
		if !ok {
			continue
		}
		d.TotalRevenue += b.Total * q.Units()
		d.TotalCost += b.CostSubtotal * q.Units()
	}
	d.TotalProfit = d.TotalRevenue - d.TotalCost

	for _, inv := range investments {
		d.TotalInvested += inv.Amount
	}
	d.RecoveryPercentage = BuildRecovery(d.TotalProfit, d.TotalInvested).Percentage

	return d, nil
}

// BuildRecovery compares accumulated profit with the money invested.
func BuildRecovery(profit, invested float64) Recovery {
	r := Recovery{
		TotalInvested:   invested,
		TotalProfit:     profit,
		AmountToRecover: max(0, invested-profit),
	}
	if invested > 0 {
		// Floored at 0: a net loss shows in AmountToRecover, not as a negative percentage.
		r.Percentage = max(0, min(100, profit/invested*100))
	}
	return r
}

// BuildClientStats attaches each client's latest job and confirmed spend.
func BuildClientStats(clients []store.Client, quotes []store.Quote, catalog store.Catalog) ([]ClientStat, error) {
	byClient := make(map[string][]store.Quote)
	for _, q := range quotes {
		if q.ClientID == "" {
			continue
		}
		byClient[q.ClientID] = append(byClient[q.ClientID], q)
	}

	stats := make([]ClientStat, 0, len(clients))
	for _, c := range clients {
		stat := ClientStat{Client: c}
		var latest store.Quote
		for _, q := range byClient[c.ID] {
			if latest.ID == "" || q.CreatedAt.After(latest.CreatedAt) {
				latest = q
			}
			if !q.Status.Confirmed() {
				continue
			}
			b, ok, err := quoteTotals(q, catalog)
			if err != nil {
				return nil, err
			}
			if ok {
				stat.TotalPurchased += b.Total * q.Units()
			}
		}
		stat.LastJobName = latest.Name
		stats = append(stats, stat)
	}
	return stats, nil
}

// BuildClientHistory lists a client's quotes newest first with their totals.
// Quotes whose price cannot be computed carry a nil breakdown.
func BuildClientHistory(clientID string, quotes []store.Quote, catalog store.Catalog) ([]HistoryEntry, error) {
	history := make([]HistoryEntry, 0)
	for _, q := range quotes {
		if q.ClientID != clientID {
			continue
		}
		entry := HistoryEntry{Quote: q}
		b, ok, err := quoteTotals(q, catalog)
		if err != nil {
			return nil, err
		}
		if ok {
			entry.Breakdown = &b
			entry.TotalUSD = b.Total * q.Units()
		}
		history = append(history, entry)
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})
	return history, nil
}
