package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Simplici0/cotiza3d/internal/currency"
	"github.com/Simplici0/cotiza3d/internal/pricing"
	"github.com/Simplici0/cotiza3d/internal/store"
)

// calcRequest is a job as the quoting form sends it: print time split into
// hours, minutes and seconds and labor into hours and minutes.
type calcRequest struct {
	pricing.JobSpec
	PrintMinutes float64 `json:"printMinutes"`
	PrintSeconds float64 `json:"printSeconds"`
	LaborMinutes float64 `json:"laborMinutes"`
}

// localFigures is a base amount shown in the configured local currency.
type localFigures struct {
	Currency  string  `json:"currency"`
	Rate      float64 `json:"rate"`
	Total     float64 `json:"total"`
	Formatted string  `json:"formatted"`
}

type calcResponse struct {
	Breakdown *pricing.Breakdown `json:"breakdown"`
	Reason    string             `json:"reason,omitempty"`
	Local     *localFigures      `json:"local,omitempty"`
}

// Validate checks the time fields that are folded into the job's hours.
func (c calcRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PrintMinutes, validation.Min(0.0)),
		validation.Field(&c.PrintSeconds, validation.Min(0.0)),
		validation.Field(&c.LaborMinutes, validation.Min(0.0)),
	)
}

func (c calcRequest) job() (pricing.JobSpec, error) {
	if err := c.Validate(); err != nil {
		return pricing.JobSpec{}, err
	}
	job := c.JobSpec
	job.PrintHours = pricing.Hours(job.PrintHours, c.PrintMinutes, c.PrintSeconds)
	job.LaborHours = pricing.Hours(job.LaborHours, c.LaborMinutes, 0)
	if err := normalizeJob(&job); err != nil {
		return pricing.JobSpec{}, err
	}
	return job, nil
}

// normalizeJob fills the default tariff and validates the job.
func normalizeJob(job *pricing.JobSpec) error {
	tariff, err := pricing.ParseTariff(strings.TrimSpace(string(job.Tariff)))
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	job.Tariff = tariff
	return job.Validate()
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calcRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, "job", err)
		return
	}
	job, err := req.job()
	if err != nil {
		writeFailure(w, "job", err)
		return
	}

	catalog, err := s.store.Catalog(r.Context())
	if err != nil {
		writeFailure(w, "catalog", err)
		return
	}

	resp, err := s.price(r.Context(), job, catalog, 1)
	if err != nil {
		writeFailure(w, "job", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// price runs the calculator and attaches local-currency figures for units
// copies when a rate is available. An unpriceable job yields a nil breakdown.
func (s *server) price(ctx context.Context, job pricing.JobSpec, catalog store.Catalog, units float64) (calcResponse, error) {
	b, err := catalog.Calculate(job)
	if errors.Is(err, pricing.ErrMachineRequired) {
		return calcResponse{Reason: err.Error()}, nil
	}
	if err != nil {
		return calcResponse{}, err
	}

	resp := calcResponse{Breakdown: &b}
	resp.Local = s.localFigures(ctx, catalog.Settings, b.Total*units)
	return resp, nil
}

func (s *server) localFigures(ctx context.Context, settings store.Settings, amountUSD float64) *localFigures {
	code := settings.LocalCurrency
	rate, err := s.localRate(ctx, code)
	if err != nil {
		return nil
	}
	local, err := currency.Convert(amountUSD, rate)
	if err != nil {
		return nil
	}
	return &localFigures{
		Currency:  code,
		Rate:      rate,
		Total:     local,
		Formatted: currency.Format(local, code, settings.CurrencyDecimalPlaces, currency.DisplaySymbol),
	}
}

// localRate returns the USD rate for code; USD and an unset currency are 1.
func (s *server) localRate(ctx context.Context, code string) (float64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || code == currency.Base {
		return 1, nil
	}
	if s.rates == nil {
		return 0, errRateUnavailable
	}
	rate, err := s.rates.Rate(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errRateUnavailable, err)
	}
	return rate, nil
}
