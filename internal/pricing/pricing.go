package pricing

import "errors"

// ErrMachineRequired is returned when a job claims print time but its machine
// cannot be resolved, so machine and energy costs cannot be computed.
var ErrMachineRequired = errors.New("machine not found for a job with print time")

// TariffType selects the electricity pricing schedule applied during a print.
type TariffType string

const (
	TariffPeak    TariffType = "peak"
	TariffOffPeak TariffType = "off-peak"
	TariffMixed   TariffType = "mixed"
)

// Material is the price of one kind of filament per kilogram.
type Material struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	CostPerKg   float64 `json:"costPerKg"`
	Description string  `json:"description,omitempty"`
}

// Machine is a printer's amortized hourly cost and electrical draw.
type Machine struct {
	ID                      string  `json:"id"`
	Name                    string  `json:"name"`
	DepreciationCostPerHour float64 `json:"depreciationCostPerHour"`
	PowerConsumptionWatts   float64 `json:"powerConsumptionWatts"`
}

// Settings holds the process-wide rates applied to every calculation.
type Settings struct {
	LaborCostPerHour        float64 `json:"laborCostPerHour"`
	ProfitMarginPercent     float64 `json:"profitMarginPercent"`
	PeakEnergyCostPerKwh    float64 `json:"peakEnergyCostPerKwh"`
	OffPeakEnergyCostPerKwh float64 `json:"offPeakEnergyCostPerKwh"`
}

// Part is one material consumption line of a job.
type Part struct {
	ID         string  `json:"id,omitempty"`
	MaterialID string  `json:"materialId"`
	MassGrams  float64 `json:"massGrams"`
}

// ExtraCost is a flat additional charge such as post-processing.
type ExtraCost struct {
	ID          string  `json:"id,omitempty"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// JobSpec is the input of a calculation. Optional figures are pointers so an
// absent value can be told apart from an explicit zero.
type JobSpec struct {
	MachineID          string      `json:"machineId"`
	Parts              []Part      `json:"parts"`
	PrintHours         float64     `json:"printHours"`
	LaborHours         float64     `json:"laborHours"`
	Tariff             TariffType  `json:"tariffType"`
	PeakHours          *float64    `json:"peakHours,omitempty"`
	DesignCost         *float64    `json:"designCost,omitempty"`
	ExtraCosts         []ExtraCost `json:"extraCosts,omitempty"`
	FinalPriceOverride *float64    `json:"finalPriceOverride,omitempty"`
}

// Breakdown contains every intermediate and final figure of a calculation,
// in the base currency.
type Breakdown struct {
	MaterialCost            float64 `json:"materialCost"`
	MachineDepreciationCost float64 `json:"machineDepreciationCost"`
	EnergyCost              float64 `json:"energyCost"`
	LaborCost               float64 `json:"laborCost"`
	Subtotal                float64 `json:"subtotal"`
	DesignCost              float64 `json:"designCost"`
	TotalExtraCosts         float64 `json:"totalExtraCosts"`
	CostSubtotal            float64 `json:"costSubtotal"`
	ProfitAmount            float64 `json:"profitAmount"`
	Total                   float64 `json:"total"`
	IsManualPrice           bool    `json:"isManualPrice"`
}

// Calculate turns a job into a cost and price breakdown.
//
// Unknown material ids and non-positive masses contribute nothing. When the
// machine cannot be resolved the result holds the material cost only, unless
// the job has print time, in which case ErrMachineRequired is returned.
func Calculate(job JobSpec, materials []Material, machines []Machine, settings Settings) (Breakdown, error) {
	materialCost := MaterialCost(job.Parts, materials)

	machine, ok := findMachine(machines, job.MachineID)
	if !ok {
		if job.PrintHours > 0 {
			return Breakdown{}, ErrMachineRequired
		}
		return Breakdown{
			MaterialCost: materialCost,
			Subtotal:     materialCost,
			CostSubtotal: materialCost,
			Total:        materialCost,
		}, nil
	}

	machineCost := machine.DepreciationCostPerHour * job.PrintHours

	peakHours, offPeakHours := EnergySplit(job)
	energyCost := (machine.PowerConsumptionWatts / 1000.0) *
		(peakHours*settings.PeakEnergyCostPerKwh + offPeakHours*settings.OffPeakEnergyCostPerKwh)

	laborCost := settings.LaborCostPerHour * job.LaborHours

	subtotal := materialCost + machineCost + energyCost + laborCost

	var extras float64
	for _, c := range job.ExtraCosts {
		extras += c.Amount
	}

	designCost := 0.0
	if job.DesignCost != nil {
		designCost = *job.DesignCost
	}

	costSubtotal := subtotal + designCost + extras

	var profit, total float64
	manual := job.FinalPriceOverride != nil && *job.FinalPriceOverride >= 0
	if manual {
		total = *job.FinalPriceOverride
		profit = total - costSubtotal
	} else {
		profit = costSubtotal * (settings.ProfitMarginPercent / 100.0)
		total = costSubtotal + profit
	}

	return Breakdown{
		MaterialCost:            materialCost,
		MachineDepreciationCost: machineCost,
		EnergyCost:              energyCost,
		LaborCost:               laborCost,
		Subtotal:                subtotal,
		DesignCost:              designCost,
		TotalExtraCosts:         extras,
		CostSubtotal:            costSubtotal,
		ProfitAmount:            profit,
		Total:                   total,
		IsManualPrice:           manual,
	}, nil
}

// MaterialCost sums grams/1000 x cost per kg over parts whose material resolves.
func MaterialCost(parts []Part, materials []Material) float64 {
	var cost float64
	for _, p := range parts {
		if p.MassGrams <= 0 {
			continue
		}
		m, ok := findMaterial(materials, p.MaterialID)
		if !ok {
			continue
		}
		cost += (p.MassGrams / 1000.0) * m.CostPerKg
	}
	return cost
}

// EnergySplit partitions the job's print hours into peak and off-peak hours.
// Unrecognised tariffs are billed entirely off-peak.
func EnergySplit(job JobSpec) (peakHours, offPeakHours float64) {
	switch job.Tariff {
	case TariffPeak:
		peakHours = job.PrintHours
	case TariffMixed:
		if job.PeakHours != nil {
			peakHours = *job.PeakHours
		}
		peakHours = max(0, min(peakHours, job.PrintHours))
	}
	return peakHours, job.PrintHours - peakHours
}

// Hours folds an hours/minutes/seconds reading into decimal hours.
func Hours(h, m, s float64) float64 {
	return h + m/60.0 + s/3600.0
}

func findMaterial(materials []Material, id string) (Material, bool) {
	for _, m := range materials {
		if m.ID == id {
			return m, true
		}
	}
	return Material{}, false
}

func findMachine(machines []Machine, id string) (Machine, bool) {
	for _, m := range machines {
		if m.ID == id {
			return m, true
		}
	}
	return Machine{}, false
}
