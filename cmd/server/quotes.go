package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/cotiza3d/internal/currency"
	"github.com/Simplici0/cotiza3d/internal/export"
	"github.com/Simplici0/cotiza3d/internal/pricing"
	"github.com/Simplici0/cotiza3d/internal/store"
)

// quoteDetail is a stored quote with its live price. Breakdown is null while
// the quote's machine is missing.
type quoteDetail struct {
	store.Quote
	Breakdown *pricing.Breakdown `json:"breakdown"`
	Reason    string             `json:"reason,omitempty"`
	TotalUSD  float64            `json:"totalUSD"`
	Local     *localFigures      `json:"local,omitempty"`
}

func (s *server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	filter := store.QuoteFilter{
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		ClientID: r.URL.Query().Get("clientId"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := store.ParseQuoteStatus(raw)
		if err != nil {
			writeFailure(w, "status", err)
			return
		}
		filter.Status = status
	}

	quotes, err := s.store.ListQuotes(r.Context(), filter)
	if err != nil {
		writeFailure(w, "quotes", err)
		return
	}
	catalog, err := s.store.Catalog(r.Context())
	if err != nil {
		writeFailure(w, "catalog", err)
		return
	}

	items := make([]quoteDetail, 0, len(quotes))
	for _, q := range quotes {
		d, err := detailOf(q, catalog)
		if err != nil {
			writeFailure(w, "quotes", err)
			return
		}
		items = append(items, d)
	}
	writeJSON(w, http.StatusOK, items)
}

func detailOf(q store.Quote, catalog store.Catalog) (quoteDetail, error) {
	d := quoteDetail{Quote: q}
	b, err := catalog.Calculate(q.Job)
	if errors.Is(err, pricing.ErrMachineRequired) {
		d.Reason = err.Error()
		return d, nil
	}
	if err != nil {
		return quoteDetail{}, err
	}
	d.Breakdown = &b
	d.TotalUSD = b.Total * q.Units()
	return d, nil
}

func (s *server) getQuoteDetail(ctx context.Context, id string) (quoteDetail, error) {
	q, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return quoteDetail{}, err
	}
	catalog, err := s.store.Catalog(ctx)
	if err != nil {
		return quoteDetail{}, err
	}
	d, err := detailOf(q, catalog)
	if err != nil {
		return quoteDetail{}, err
	}
	if d.Breakdown != nil {
		d.Local = s.localFigures(ctx, catalog.Settings, d.TotalUSD)
	}
	return d, nil
}

func (s *server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	d, err := s.getQuoteDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "quote", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// prepareQuote applies defaults, validates the quote and converts a manual
// price typed in the local currency into the base currency.
func (s *server) prepareQuote(ctx context.Context, q *store.Quote) error {
	q.Name = strings.TrimSpace(q.Name)
	if q.Status == "" {
		q.Status = store.StatusDraft
	}
	if q.Quantity < 1 {
		q.Quantity = 1
	}
	if err := normalizeJob(&q.Job); err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}

	if q.ClientID != "" {
		if _, err := s.store.GetClient(ctx, q.ClientID); errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: unknown client %s", errBadRequest, q.ClientID)
		} else if err != nil {
			return err
		}
	}
	if q.DesignID != "" {
		if _, err := s.store.GetDesign(ctx, q.DesignID); errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: unknown design %s", errBadRequest, q.DesignID)
		} else if err != nil {
			return err
		}
	}

	if q.FinalPriceOverrideLocal == nil {
		return nil
	}
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return err
	}
	rate, err := s.localRate(ctx, settings.LocalCurrency)
	if err != nil {
		return err
	}
	usd, err := currency.ToBase(*q.FinalPriceOverrideLocal, rate)
	if err != nil {
		return fmt.Errorf("%w: %v", errRateUnavailable, err)
	}
	q.Job.FinalPriceOverride = &usd
	return nil
}

func (s *server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var q store.Quote
	if err := decodeJSON(w, r, &q); err != nil {
		writeFailure(w, "quote", err)
		return
	}
	if err := s.prepareQuote(r.Context(), &q); err != nil {
		writeFailure(w, "quote", err)
		return
	}
	created, err := s.store.CreateQuote(r.Context(), q)
	if err != nil {
		writeFailure(w, "quote", err)
		return
	}
	d, err := s.getQuoteDetail(r.Context(), created.ID)
	if err != nil {
		writeFailure(w, "quote", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *server) handleUpdateQuote(w http.ResponseWriter, r *http.Request) {
	var q store.Quote
	if err := decodeJSON(w, r, &q); err != nil {
		writeFailure(w, "quote", err)
		return
	}
	q.ID = chi.URLParam(r, "id")
	if err := s.prepareQuote(r.Context(), &q); err != nil {
		writeFailure(w, "quote", err)
		return
	}
	if err := s.store.UpdateQuote(r.Context(), q); err != nil {
		writeFailure(w, "quote", err)
		return
	}
	d, err := s.getQuoteDetail(r.Context(), q.ID)
	if err != nil {
		writeFailure(w, "quote", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *server) handleDeleteQuote(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteQuote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, "quote", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *server) handleQuoteStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, "status", err)
		return
	}
	status, err := store.ParseQuoteStatus(req.Status)
	if err != nil {
		writeFailure(w, "status", err)
		return
	}
	if err := s.store.UpdateQuoteStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		writeFailure(w, "quote", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// quoteDocument collects everything an export of the quote shows.
func (s *server) quoteDocument(ctx context.Context, id string) (export.Document, error) {
	q, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return export.Document{}, err
	}
	catalog, err := s.store.Catalog(ctx)
	if err != nil {
		return export.Document{}, err
	}
	d, err := detailOf(q, catalog)
	if err != nil {
		return export.Document{}, err
	}

	doc := s.document(ctx, q.Name, q.Job, d.Breakdown, catalog)
	doc.Quantity = q.Quantity
	doc.Date = q.CreatedAt
	doc.Notes = q.Notes
	doc.Width, doc.Height, doc.Depth = q.Width, q.Height, q.Depth

	if q.ClientID != "" {
		client, err := s.store.GetClient(ctx, q.ClientID)
		switch {
		case err == nil:
			doc.ClientName = client.Name
		case !errors.Is(err, store.ErrNotFound):
			return export.Document{}, err
		}
	}
	return doc, nil
}

func (s *server) document(ctx context.Context, title string, job pricing.JobSpec, b *pricing.Breakdown, catalog store.Catalog) export.Document {
	settings := catalog.Settings
	doc := export.NewDocument(title, job, b, catalog.Materials, catalog.Machines)
	doc.CompanyName = settings.CompanyName
	doc.CompanyContact = settings.CompanyContact
	doc.CompanyInstagram = settings.CompanyInstagram
	doc.Places = settings.CurrencyDecimalPlaces

	if rate, err := s.localRate(ctx, settings.LocalCurrency); err == nil {
		doc.Local = &export.Local{Code: strings.ToUpper(settings.LocalCurrency), Rate: rate}
	}
	return doc
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	doc, err := s.quoteDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "quote", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(export.QuoteText(doc)))
}

func (s *server) handleQuotePDF(w http.ResponseWriter, r *http.Request) {
	doc, err := s.quoteDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "quote", err)
		return
	}
	body, err := export.QuotePDF(doc)
	if err != nil {
		writeFailure(w, "quote pdf", err)
		return
	}
	writeAttachment(w, "application/pdf", fileName(doc.Title, "pdf"), body)
}

func (s *server) handleQuoteXLSX(w http.ResponseWriter, r *http.Request) {
	doc, err := s.quoteDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "quote", err)
		return
	}
	body, err := export.QuoteXLSX(doc)
	if err != nil {
		writeFailure(w, "quote xlsx", err)
		return
	}
	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fileName(doc.Title, "xlsx"), body)
}

func writeAttachment(w http.ResponseWriter, contentType, name string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(body)
}

// fileName turns a title into an ASCII file name.
func fileName(title, ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "cotizacion-" + time.Now().Format("20060102")
	}
	return name + "." + ext
}

func (s *server) handleListDesigns(w http.ResponseWriter, r *http.Request) {
	designs, err := s.store.ListDesigns(r.Context())
	if err != nil {
		writeFailure(w, "designs", err)
		return
	}
	writeJSON(w, http.StatusOK, designs)
}

func (s *server) handleGetDesign(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetDesign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "design", err)
		return
	}
	catalog, err := s.store.Catalog(r.Context())
	if err != nil {
		writeFailure(w, "catalog", err)
		return
	}
	resp, err := s.price(r.Context(), d.Job, catalog, 1)
	if err != nil {
		writeFailure(w, "design", err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		store.Design
		calcResponse
	}{d, resp})
}

func (s *server) handleCreateDesign(w http.ResponseWriter, r *http.Request) {
	var d store.Design
	if err := decodeJSON(w, r, &d); err != nil {
		writeFailure(w, "design", err)
		return
	}
	d.Name = strings.TrimSpace(d.Name)
	if err := normalizeJob(&d.Job); err != nil {
		writeFailure(w, "design", err)
		return
	}
	if err := d.Validate(); err != nil {
		writeFailure(w, "design", err)
		return
	}
	created, err := s.store.CreateDesign(r.Context(), d)
	if err != nil {
		writeFailure(w, "design", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleUpdateDesign(w http.ResponseWriter, r *http.Request) {
	var d store.Design
	if err := decodeJSON(w, r, &d); err != nil {
		writeFailure(w, "design", err)
		return
	}
	d.ID = chi.URLParam(r, "id")
	d.Name = strings.TrimSpace(d.Name)
	if err := normalizeJob(&d.Job); err != nil {
		writeFailure(w, "design", err)
		return
	}
	if err := d.Validate(); err != nil {
		writeFailure(w, "design", err)
		return
	}
	if err := s.store.UpdateDesign(r.Context(), d); err != nil {
		writeFailure(w, "design", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *server) handleDeleteDesign(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDesign(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, "design", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleDesignPDF(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetDesign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "design", err)
		return
	}
	catalog, err := s.store.Catalog(r.Context())
	if err != nil {
		writeFailure(w, "catalog", err)
		return
	}

	var breakdown *pricing.Breakdown
	b, err := catalog.Calculate(d.Job)
	switch {
	case err == nil:
		breakdown = &b
	case !errors.Is(err, pricing.ErrMachineRequired):
		writeFailure(w, "design", err)
		return
	}

	doc := s.document(r.Context(), d.Name, d.Job, breakdown, catalog)
	doc.Date = d.CreatedAt
	doc.Notes = d.Notes
	doc.Width, doc.Height, doc.Depth = d.Width, d.Height, d.Depth

	body, err := export.QuotePDF(doc)
	if err != nil {
		writeFailure(w, "design pdf", err)
		return
	}
	writeAttachment(w, "application/pdf", fileName(doc.Title, "pdf"), body)
}
