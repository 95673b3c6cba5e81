package pricing

import (
	"errors"
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func ptr(v float64) *float64 { return &v }

var (
	testMaterials = []Material{
		{ID: "pla", Name: "PLA", CostPerKg: 20},
		{ID: "petg", Name: "PETG", CostPerKg: 25},
	}
	testMachines = []Machine{
		{ID: "mk4", Name: "MK4", DepreciationCostPerHour: 0.5, PowerConsumptionWatts: 120},
	}
)

func TestCalculate_OffPeakScenario(t *testing.T) {
	job := JobSpec{
		MachineID:  "mk4",
		Parts:      []Part{{MaterialID: "pla", MassGrams: 200}},
		PrintHours: 2,
		LaborHours: 0.5,
		Tariff:     TariffOffPeak,
	}
	settings := Settings{LaborCostPerHour: 5, ProfitMarginPercent: 30, OffPeakEnergyCostPerKwh: 0.139}

	b, err := Calculate(job, testMaterials, testMachines, settings)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	nearlyEqual(t, "materialCost", b.MaterialCost, 4)
	nearlyEqual(t, "machineDepreciationCost", b.MachineDepreciationCost, 1)
	nearlyEqual(t, "energyCost", b.EnergyCost, 0.03336)
	nearlyEqual(t, "laborCost", b.LaborCost, 2.5)
	nearlyEqual(t, "subtotal", b.Subtotal, 7.53336)
	nearlyEqual(t, "costSubtotal", b.CostSubtotal, 7.53336)
	nearlyEqual(t, "profitAmount", b.ProfitAmount, 2.260008)
	nearlyEqual(t, "total", b.Total, 9.793368)
	if b.IsManualPrice {
		t.Fatalf("expected automatic price")
	}
}

func TestCalculate_NoPartsMeansNoMaterialCost(t *testing.T) {
	b, err := Calculate(JobSpec{MachineID: "mk4"}, testMaterials, testMachines, Settings{})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if b.MaterialCost != 0 {
		t.Fatalf("materialCost = %v, want 0", b.MaterialCost)
	}
}

func TestCalculate_MaterialCostIsLinearInMass(t *testing.T) {
	parts := []Part{
		{MaterialID: "pla", MassGrams: 137.5},
		{MaterialID: "petg", MassGrams: 42},
		{MaterialID: "pla", MassGrams: 10},
	}
	doubled := make([]Part, len(parts))
	for i, p := range parts {
		p.MassGrams *= 2
		doubled[i] = p
	}

	single, _ := Calculate(JobSpec{MachineID: "mk4", Parts: parts}, testMaterials, testMachines, Settings{})
	double, _ := Calculate(JobSpec{MachineID: "mk4", Parts: doubled}, testMaterials, testMachines, Settings{})

	if double.MaterialCost != 2*single.MaterialCost {
		t.Fatalf("doubled materialCost = %v, want %v", double.MaterialCost, 2*single.MaterialCost)
	}
}

func TestCalculate_SkipsUnknownMaterialsAndEmptyParts(t *testing.T) {
	job := JobSpec{
		MachineID: "mk4",
		Parts: []Part{
			{MaterialID: "pla", MassGrams: 500},
			{MaterialID: "deleted", MassGrams: 500},
			{MaterialID: "petg", MassGrams: 0},
		},
	}

	b, err := Calculate(job, testMaterials, testMachines, Settings{})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	nearlyEqual(t, "materialCost", b.MaterialCost, 10)
}

func TestEnergySplit(t *testing.T) {
	tests := []struct {
		name     string
		job      JobSpec
		wantPeak float64
		wantOff  float64
	}{
		{"peak", JobSpec{PrintHours: 3, Tariff: TariffPeak}, 3, 0},
		{"off-peak", JobSpec{PrintHours: 3, Tariff: TariffOffPeak}, 0, 3},
		{"mixed within range", JobSpec{PrintHours: 3, Tariff: TariffMixed, PeakHours: ptr(1.25)}, 1.25, 1.75},
		{"mixed clamped to print time", JobSpec{PrintHours: 3, Tariff: TariffMixed, PeakHours: ptr(7)}, 3, 0},
		{"mixed without peak hours", JobSpec{PrintHours: 3, Tariff: TariffMixed}, 0, 3},
		{"mixed negative peak hours", JobSpec{PrintHours: 3, Tariff: TariffMixed, PeakHours: ptr(-2)}, 0, 3},
		{"unknown tariff is off-peak", JobSpec{PrintHours: 3, Tariff: "night"}, 0, 3},
		{"empty tariff is off-peak", JobSpec{PrintHours: 3}, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peak, off := EnergySplit(tt.job)
			nearlyEqual(t, "peakHours", peak, tt.wantPeak)
			nearlyEqual(t, "offPeakHours", off, tt.wantOff)
			if peak+off != tt.job.PrintHours {
				t.Fatalf("peak+offPeak = %v, want %v", peak+off, tt.job.PrintHours)
			}
		})
	}
}

func TestCalculate_MixedTariffEnergyCost(t *testing.T) {
	job := JobSpec{MachineID: "mk4", PrintHours: 4, Tariff: TariffMixed, PeakHours: ptr(1)}
	settings := Settings{PeakEnergyCostPerKwh: 0.3, OffPeakEnergyCostPerKwh: 0.1}

	b, err := Calculate(job, testMaterials, testMachines, settings)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	// 0.12 kW x (1h x 0.3 + 3h x 0.1)
	nearlyEqual(t, "energyCost", b.EnergyCost, 0.072)
}

func TestCalculate_ManualPriceLeavesResidualProfit(t *testing.T) {
	job := JobSpec{
		MachineID:  "mk4",
		Parts:      []Part{{MaterialID: "pla", MassGrams: 1000}},
		PrintHours: 2,
		DesignCost: ptr(5),
		ExtraCosts: []ExtraCost{{Description: "sanding", Amount: 3}},
	}
	settings := Settings{ProfitMarginPercent: 50}

	for _, override := range []float64{50, 10, 0} {
		job.FinalPriceOverride = ptr(override)
		b, err := Calculate(job, testMaterials, testMachines, settings)
		if err != nil {
			t.Fatalf("Calculate(override=%v): %v", override, err)
		}
		if !b.IsManualPrice {
			t.Fatalf("override=%v: expected manual price", override)
		}
		nearlyEqual(t, "costSubtotal", b.CostSubtotal, 29)
		nearlyEqual(t, "total", b.Total, override)
		if b.ProfitAmount != override-b.CostSubtotal {
			t.Fatalf("profitAmount = %v, want %v", b.ProfitAmount, override-b.CostSubtotal)
		}
	}
}

func TestCalculate_NegativeOverrideIsIgnored(t *testing.T) {
	job := JobSpec{MachineID: "mk4", Parts: []Part{{MaterialID: "pla", MassGrams: 1000}}, FinalPriceOverride: ptr(-1)}

	b, err := Calculate(job, testMaterials, testMachines, Settings{ProfitMarginPercent: 10})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if b.IsManualPrice {
		t.Fatalf("negative override must not be treated as a manual price")
	}
	nearlyEqual(t, "total", b.Total, 22)
}

func TestCalculate_AutomaticPriceAppliesMargin(t *testing.T) {
	job := JobSpec{
		MachineID:  "mk4",
		Parts:      []Part{{MaterialID: "petg", MassGrams: 320}},
		PrintHours: 5.5,
		LaborHours: 1.25,
		Tariff:     TariffPeak,
		DesignCost: ptr(12),
		ExtraCosts: []ExtraCost{{Description: "paint", Amount: 4.5}, {Description: "box", Amount: 1.2}},
	}
	settings := Settings{LaborCostPerHour: 8, ProfitMarginPercent: 35, PeakEnergyCostPerKwh: 0.25}

	b, err := Calculate(job, testMaterials, testMachines, settings)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	nearlyEqual(t, "totalExtraCosts", b.TotalExtraCosts, 5.7)
	nearlyEqual(t, "designCost", b.DesignCost, 12)
	nearlyEqual(t, "costSubtotal", b.CostSubtotal, b.Subtotal+12+5.7)
	nearlyEqual(t, "total", b.Total, b.CostSubtotal*1.35)
}

func TestCalculate_MissingMachineWithoutPrintTime(t *testing.T) {
	job := JobSpec{
		MachineID:  "gone",
		Parts:      []Part{{MaterialID: "pla", MassGrams: 250}},
		LaborHours: 3,
		DesignCost: ptr(10),
	}

	b, err := Calculate(job, testMaterials, testMachines, Settings{LaborCostPerHour: 10, ProfitMarginPercent: 40})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	want := Breakdown{MaterialCost: 5, Subtotal: 5, CostSubtotal: 5, Total: 5}
	if b != want {
		t.Fatalf("partial breakdown = %+v, want %+v", b, want)
	}
}

func TestCalculate_MissingMachineWithPrintTime(t *testing.T) {
	job := JobSpec{MachineID: "gone", Parts: []Part{{MaterialID: "pla", MassGrams: 250}}, PrintHours: 0.1}

	b, err := Calculate(job, testMaterials, testMachines, Settings{})
	if !errors.Is(err, ErrMachineRequired) {
		t.Fatalf("err = %v, want ErrMachineRequired", err)
	}
	if b != (Breakdown{}) {
		t.Fatalf("expected no breakdown, got %+v", b)
	}
}

func TestCalculate_IsIdempotent(t *testing.T) {
	job := JobSpec{
		MachineID:  "mk4",
		Parts:      []Part{{MaterialID: "pla", MassGrams: 33.3}, {MaterialID: "petg", MassGrams: 66.7}},
		PrintHours: 1.7,
		LaborHours: 0.3,
		Tariff:     TariffMixed,
		PeakHours:  ptr(0.9),
	}
	settings := Settings{LaborCostPerHour: 7, ProfitMarginPercent: 25, PeakEnergyCostPerKwh: 0.31, OffPeakEnergyCostPerKwh: 0.12}

	first, err1 := Calculate(job, testMaterials, testMachines, settings)
	second, err2 := Calculate(job, testMaterials, testMachines, settings)
	if err1 != nil || err2 != nil {
		t.Fatalf("Calculate errors: %v, %v", err1, err2)
	}
	if first != second {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestHours(t *testing.T) {
	nearlyEqual(t, "hours", Hours(1, 30, 36), 1.51)
	nearlyEqual(t, "minutes only", Hours(0, 45, 0), 0.75)
}
