package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/cotiza3d/internal/currency"
	"github.com/Simplici0/cotiza3d/internal/reports"
	"github.com/Simplici0/cotiza3d/internal/store"
)

func (s *server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.store.ListClients(r.Context())
	if err != nil {
		writeFailure(w, "clients", err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "client", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var c store.Client
	if err := decodeJSON(w, r, &c); err != nil {
		writeFailure(w, "client", err)
		return
	}
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		writeFailure(w, "client", err)
		return
	}
	created, err := s.store.CreateClient(r.Context(), c)
	if err != nil {
		writeFailure(w, "client", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var c store.Client
	if err := decodeJSON(w, r, &c); err != nil {
		writeFailure(w, "client", err)
		return
	}
	c.ID = chi.URLParam(r, "id")
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		writeFailure(w, "client", err)
		return
	}
	if err := s.store.UpdateClient(r.Context(), c); err != nil {
		writeFailure(w, "client", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, "client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleClientStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		writeFailure(w, "clients", err)
		return
	}
	quotes, err := s.store.ListQuotes(ctx, store.QuoteFilter{})
	if err != nil {
		writeFailure(w, "quotes", err)
		return
	}
	catalog, err := s.store.Catalog(ctx)
	if err != nil {
		writeFailure(w, "catalog", err)
		return
	}

	stats, err := reports.BuildClientStats(clients, quotes, catalog)
	if err != nil {
		writeFailure(w, "client stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *server) handleClientHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetClient(ctx, id); err != nil {
		writeFailure(w, "client", err)
		return
	}
	quotes, err := s.store.ListQuotes(ctx, store.QuoteFilter{ClientID: id})
	if err != nil {
		writeFailure(w, "quotes", err)
		return
	}
	catalog, err := s.store.Catalog(ctx)
	if err != nil {
		writeFailure(w, "catalog", err)
		return
	}

	history, err := reports.BuildClientHistory(id, quotes, catalog)
	if err != nil {
		writeFailure(w, "client history", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *server) dashboard(r *http.Request) (reports.Dashboard, error) {
	ctx := r.Context()
	quotes, err := s.store.ListQuotes(ctx, store.QuoteFilter{})
	if err != nil {
		return reports.Dashboard{}, err
	}
	investments, err := s.store.ListInvestments(ctx)
	if err != nil {
		return reports.Dashboard{}, err
	}
	catalog, err := s.store.Catalog(ctx)
	if err != nil {
		return reports.Dashboard{}, err
	}
	return reports.BuildDashboard(quotes, investments, catalog)
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard(r)
	if err != nil {
		writeFailure(w, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *server) handleInvestmentSummary(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard(r)
	if err != nil {
		writeFailure(w, "investment summary", err)
		return
	}
	writeJSON(w, http.StatusOK, reports.BuildRecovery(d.TotalProfit, d.TotalInvested))
}

func (s *server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	investments, err := s.store.ListInvestments(r.Context())
	if err != nil {
		writeFailure(w, "investments", err)
		return
	}
	writeJSON(w, http.StatusOK, investments)
}

func (s *server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	var i store.Investment
	if err := decodeJSON(w, r, &i); err != nil {
		writeFailure(w, "investment", err)
		return
	}
	i.Name = strings.TrimSpace(i.Name)
	if err := i.Validate(); err != nil {
		writeFailure(w, "investment", err)
		return
	}
	created, err := s.store.CreateInvestment(r.Context(), i)
	if err != nil {
		writeFailure(w, "investment", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	var i store.Investment
	if err := decodeJSON(w, r, &i); err != nil {
		writeFailure(w, "investment", err)
		return
	}
	i.ID = chi.URLParam(r, "id")
	i.Name = strings.TrimSpace(i.Name)
	if err := i.Validate(); err != nil {
		writeFailure(w, "investment", err)
		return
	}
	if err := s.store.UpdateInvestment(r.Context(), i); err != nil {
		writeFailure(w, "investment", err)
		return
	}
	writeJSON(w, http.StatusOK, i)
}

func (s *server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteInvestment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, "investment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := s.store.ListPurchases(r.Context())
	if err != nil {
		writeFailure(w, "purchases", err)
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

func (s *server) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPurchase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "purchase", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var p store.FuturePurchase
	if err := decodeJSON(w, r, &p); err != nil {
		writeFailure(w, "purchase", err)
		return
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		writeFailure(w, "purchase", err)
		return
	}
	created, err := s.store.CreatePurchase(r.Context(), p)
	if err != nil {
		writeFailure(w, "purchase", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	var p store.FuturePurchase
	if err := decodeJSON(w, r, &p); err != nil {
		writeFailure(w, "purchase", err)
		return
	}
	p.ID = chi.URLParam(r, "id")
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		writeFailure(w, "purchase", err)
		return
	}
	if err := s.store.UpdatePurchase(r.Context(), p); err != nil {
		writeFailure(w, "purchase", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePurchase(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, "purchase", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleConvertPurchase(w http.ResponseWriter, r *http.Request) {
	inv, err := s.store.ConvertPurchase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "purchase", err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.store.ListLinks(r.Context())
	if err != nil {
		writeFailure(w, "links", err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (s *server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	var l store.Link
	if err := decodeJSON(w, r, &l); err != nil {
		writeFailure(w, "link", err)
		return
	}
	l.Name = strings.TrimSpace(l.Name)
	if err := l.Validate(); err != nil {
		writeFailure(w, "link", err)
		return
	}
	created, err := s.store.CreateLink(r.Context(), l)
	if err != nil {
		writeFailure(w, "link", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleUpdateLink(w http.ResponseWriter, r *http.Request) {
	var l store.Link
	if err := decodeJSON(w, r, &l); err != nil {
		writeFailure(w, "link", err)
		return
	}
	l.ID = chi.URLParam(r, "id")
	l.Name = strings.TrimSpace(l.Name)
	if err := l.Validate(); err != nil {
		writeFailure(w, "link", err)
		return
	}
	if err := s.store.UpdateLink(r.Context(), l); err != nil {
		writeFailure(w, "link", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteLink(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, "link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rateResponse struct {
	Base     string  `json:"base"`
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
}

// handleExchangeRate reports the USD rate of ?currency=, defaulting to the
// configured local currency.
func (s *server) handleExchangeRate(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))
	if code == "" {
		settings, err := s.store.Settings(r.Context())
		if err != nil {
			writeFailure(w, "settings", err)
			return
		}
		code = settings.LocalCurrency
	}

	rate, err := s.localRate(r.Context(), code)
	if err != nil {
		writeFailure(w, "exchange rate", err)
		return
	}
	writeJSON(w, http.StatusOK, rateResponse{Base: currency.Base, Currency: code, Rate: rate})
}

func (s *server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currency.Currencies())
}
