package pricing

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var tariffs = []interface{}{TariffPeak, TariffOffPeak, TariffMixed}

// ParseTariff maps a wire value onto a TariffType. An empty value means off-peak.
func ParseTariff(s string) (TariffType, error) {
	switch t := TariffType(s); t {
	case "":
		return TariffOffPeak, nil
	case TariffPeak, TariffOffPeak, TariffMixed:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tariff type %q", s)
	}
}

// Validate checks a job before it reaches Calculate. Unlike Calculate, it
// rejects tariff values outside the three known schedules.
func (j JobSpec) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.Parts),
		validation.Field(&j.PrintHours, validation.Min(0.0)),
		validation.Field(&j.LaborHours, validation.Min(0.0)),
		validation.Field(&j.Tariff, validation.In(tariffs...).Error("must be peak, off-peak or mixed")),
		validation.Field(&j.PeakHours, validation.Min(0.0)),
		validation.Field(&j.DesignCost, validation.Min(0.0)),
		validation.Field(&j.ExtraCosts),
		validation.Field(&j.FinalPriceOverride, validation.Min(0.0)),
	)
}

func (p Part) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.MaterialID, validation.Required),
		validation.Field(&p.MassGrams, validation.Min(0.0)),
	)
}

func (c ExtraCost) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Description, validation.Required),
		validation.Field(&c.Amount, validation.Min(0.0)),
	)
}

func (m Material) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&m.CostPerKg, validation.Min(0.0)),
	)
}

func (m Machine) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&m.DepreciationCostPerHour, validation.Min(0.0)),
		validation.Field(&m.PowerConsumptionWatts, validation.Min(0.0)),
	)
}

func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.LaborCostPerHour, validation.Min(0.0)),
		validation.Field(&s.ProfitMarginPercent, validation.Min(0.0)),
		validation.Field(&s.PeakEnergyCostPerKwh, validation.Min(0.0)),
		validation.Field(&s.OffPeakEnergyCostPerKwh, validation.Min(0.0)),
	)
}
