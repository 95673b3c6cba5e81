package store

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/Simplici0/cotiza3d/internal/pricing"
)

// QuoteStatus tracks a quote from draft to delivery.
type QuoteStatus string

const (
	StatusDraft          QuoteStatus = "draft"
	StatusAccepted       QuoteStatus = "accepted"
	StatusInPreparation  QuoteStatus = "in_preparation"
	StatusReadyToDeliver QuoteStatus = "ready_to_deliver"
	StatusDelivered      QuoteStatus = "delivered"
	StatusCanceled       QuoteStatus = "canceled"
)

var quoteStatuses = []interface{}{
	StatusDraft, StatusAccepted, StatusInPreparation, StatusReadyToDeliver, StatusDelivered, StatusCanceled,
}

// Confirmed reports whether the client agreed to the quote.
func (s QuoteStatus) Confirmed() bool {
	switch s {
	case StatusAccepted, StatusInPreparation, StatusReadyToDeliver, StatusDelivered:
		return true
	}
	return false
}

// Active reports whether the quote is confirmed but not yet delivered.
func (s QuoteStatus) Active() bool {
	return s.Confirmed() && s != StatusDelivered
}

// ParseQuoteStatus validates a wire value.
func ParseQuoteStatus(s string) (QuoteStatus, error) {
	st := QuoteStatus(s)
	if err := validation.Validate(st, validation.Required, validation.In(quoteStatuses...)); err != nil {
		return "", err
	}
	return st, nil
}

// Settings is the stored settings singleton. Only the rates feed the
// calculator; the rest is company and display information.
type Settings struct {
	pricing.Settings

	CompanyName           string `json:"companyName"`
	CompanyContact        string `json:"companyContact"`
	CompanyInstagram      string `json:"companyInstagram,omitempty"`
	CurrencyDecimalPlaces int    `json:"currencyDecimalPlaces"`
	LocalCurrency         string `json:"localCurrency"`
	TariffSource          string `json:"tariffSource"`
	TariffLastUpdated     string `json:"tariffLastUpdated"`
	PeakTariffStartTime   string `json:"peakTariffStartTime"`
	PeakTariffEndTime     string `json:"peakTariffEndTime"`
}

// DefaultSettings mirrors a fresh installation.
func DefaultSettings() Settings {
	return Settings{
		CurrencyDecimalPlaces: 2,
		LocalCurrency:         "UYU",
		PeakTariffStartTime:   "17:00",
		PeakTariffEndTime:     "23:00",
	}
}

// Pricing returns the immutable snapshot handed to the calculator.
func (s Settings) Pricing() pricing.Settings {
	return s.Settings
}

func (s Settings) Validate() error {
	if err := s.Settings.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&s,
		validation.Field(&s.CurrencyDecimalPlaces, validation.Min(0), validation.Max(6)),
		validation.Field(&s.LocalCurrency, validation.Required, validation.Length(3, 3), is.UpperCase),
		validation.Field(&s.PeakTariffStartTime, validation.Date("15:04")),
		validation.Field(&s.PeakTariffEndTime, validation.Date("15:04")),
	)
}

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Instagram string    `json:"instagram,omitempty"`
	Facebook  string    `json:"facebook,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c Client) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(2, 120)),
	)
}

// Dimensions are the printed object's bounding box in millimetres.
type Dimensions struct {
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Depth  float64 `json:"depth,omitempty"`
}

// Quote is a priced job for a client.
type Quote struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	ClientID string          `json:"clientId,omitempty"`
	DesignID string          `json:"designId,omitempty"`
	Status   QuoteStatus     `json:"status"`
	Quantity int             `json:"quantity"`
	Job      pricing.JobSpec `json:"job"`
	Dimensions
	Notes        string `json:"notes,omitempty"`
	DeliveryDate string `json:"deliveryDate,omitempty"`
	// FinalPriceOverrideLocal is the manual price as typed in the local
	// currency; Job.FinalPriceOverride holds its USD value.
	FinalPriceOverrideLocal *float64  `json:"finalPriceOverrideLocal,omitempty"`
	CreatedAt               time.Time `json:"createdAt"`
}

// Units is the quantity used for totals; anything below one counts as one.
func (q Quote) Units() float64 {
	if q.Quantity < 1 {
		return 1
	}
	return float64(q.Quantity)
}

func (q Quote) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&q.Status, validation.Required, validation.In(quoteStatuses...)),
		validation.Field(&q.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&q.Job),
		validation.Field(&q.DeliveryDate, validation.Date("2006-01-02")),
		validation.Field(&q.FinalPriceOverrideLocal, validation.Min(0.0)),
	)
}

// Design is a reusable priced model, usually listed for sale.
type Design struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Job  pricing.JobSpec `json:"job"`
	Dimensions
	Notes            string    `json:"notes,omitempty"`
	MercadoLibreLink string    `json:"mercadoLibreLink,omitempty"`
	InstagramLink    string    `json:"instagramLink,omitempty"`
	Link             string    `json:"link,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (d Design) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&d.Job),
		validation.Field(&d.MercadoLibreLink, is.URL),
		validation.Field(&d.InstagramLink, is.URL),
		validation.Field(&d.Link, is.URL),
	)
}

type Investment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

func (i Investment) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.Required),
		validation.Field(&i.Amount, validation.Min(0.0)),
	)
}

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchasePurchased PurchaseStatus = "purchased"
)

// FuturePurchase is a wishlist item priced in USD.
type FuturePurchase struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Link        string         `json:"link,omitempty"`
	PriceUSD    float64        `json:"priceUSD"`
	Status      PurchaseStatus `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (p FuturePurchase) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Link, is.URL),
		validation.Field(&p.PriceUSD, validation.Min(0.0)),
		validation.Field(&p.Status, validation.In(PurchasePending, PurchasePurchased)),
	)
}

type Link struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"link"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (l Link) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Name, validation.Required),
		validation.Field(&l.URL, validation.Required, is.URL),
	)
}

// Catalog is the read-only snapshot a calculation runs against.
type Catalog struct {
	Materials []pricing.Material `json:"materials"`
	Machines  []pricing.Machine  `json:"machines"`
	Settings  Settings           `json:"settings"`
}

// Calculate prices a job against the catalog.
func (c Catalog) Calculate(job pricing.JobSpec) (pricing.Breakdown, error) {
	return pricing.Calculate(job, c.Materials, c.Machines, c.Settings.Pricing())
}
