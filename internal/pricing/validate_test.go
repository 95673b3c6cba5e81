package pricing

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestParseTariff(t *testing.T) {
	for in, want := range map[string]TariffType{
		"":         TariffOffPeak,
		"peak":     TariffPeak,
		"off-peak": TariffOffPeak,
		"mixed":    TariffMixed,
	} {
		got, err := ParseTariff(in)
		if err != nil {
			t.Fatalf("ParseTariff(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseTariff(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseTariff("weekend"); err == nil {
		t.Fatalf("expected error for unknown tariff")
	}
}

func TestJobSpecValidate_Valid(t *testing.T) {
	job := JobSpec{
		MachineID:          "mk4",
		Parts:              []Part{{MaterialID: "pla", MassGrams: 12}},
		PrintHours:         1,
		Tariff:             TariffMixed,
		PeakHours:          ptr(0.5),
		DesignCost:         ptr(0),
		ExtraCosts:         []ExtraCost{{Description: "glue", Amount: 0.4}},
		FinalPriceOverride: ptr(0),
	}
	if err := job.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestJobSpecValidate_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		job   JobSpec
		field string
	}{
		{"negative print hours", JobSpec{PrintHours: -1}, "printHours"},
		{"negative labor hours", JobSpec{LaborHours: -0.5}, "laborHours"},
		{"unknown tariff", JobSpec{Tariff: "night"}, "tariffType"},
		{"negative peak hours", JobSpec{Tariff: TariffMixed, PeakHours: ptr(-1)}, "peakHours"},
		{"negative design cost", JobSpec{DesignCost: ptr(-3)}, "designCost"},
		{"negative override", JobSpec{FinalPriceOverride: ptr(-0.01)}, "finalPriceOverride"},
		{"part without material", JobSpec{Parts: []Part{{MassGrams: 10}}}, "parts"},
		{"negative mass", JobSpec{Parts: []Part{{MaterialID: "pla", MassGrams: -10}}}, "parts"},
		{"extra cost without description", JobSpec{ExtraCosts: []ExtraCost{{Amount: 2}}}, "extraCosts"},
		{"negative extra cost", JobSpec{ExtraCosts: []ExtraCost{{Description: "x", Amount: -2}}}, "extraCosts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var errs validation.Errors
			if !errors.As(err, &errs) {
				t.Fatalf("expected validation.Errors, got %T", err)
			}
			if _, ok := errs[tt.field]; !ok {
				t.Fatalf("expected error on %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestCatalogValidate(t *testing.T) {
	if err := (Material{Name: "PLA", CostPerKg: 18}).Validate(); err != nil {
		t.Fatalf("material: %v", err)
	}
	if err := (Material{CostPerKg: 18}).Validate(); err == nil {
		t.Fatalf("expected error for material without name")
	}
	if err := (Machine{Name: "MK4", PowerConsumptionWatts: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative power")
	}
	if err := (Settings{ProfitMarginPercent: -5}).Validate(); err == nil {
		t.Fatalf("expected error for negative margin")
	}
}
