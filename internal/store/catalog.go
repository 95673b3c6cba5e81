package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/cotiza3d/internal/pricing"
)

func (s *Store) ListMaterials(ctx context.Context) ([]pricing.Material, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, cost_per_kg, description
		FROM materials
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := make([]pricing.Material, 0)
	for rows.Next() {
		var m pricing.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.CostPerKg, &m.Description); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}

	return materials, nil
}

func (s *Store) GetMaterial(ctx context.Context, id string) (pricing.Material, error) {
	var m pricing.Material
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, cost_per_kg, description
		FROM materials
		WHERE id = ?
	`, id).Scan(&m.ID, &m.Name, &m.Type, &m.CostPerKg, &m.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.Material{}, fmt.Errorf("material %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return pricing.Material{}, fmt.Errorf("query material: %w", err)
	}
	return m, nil
}

func (s *Store) CreateMaterial(ctx context.Context, m pricing.Material) (pricing.Material, error) {
	m.ID = s.newID()
	now := s.timestamp()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO materials (id, name, type, cost_per_kg, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.Type, m.CostPerKg, m.Description, now, now)
	if err != nil {
		return pricing.Material{}, fmt.Errorf("insert material: %w", err)
	}
	return m, nil
}

func (s *Store) UpdateMaterial(ctx context.Context, m pricing.Material) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE materials
		SET
			name = ?,
			type = ?,
			cost_per_kg = ?,
			description = ?,
			updated_at = ?
		WHERE id = ?
	`, m.Name, m.Type, m.CostPerKg, m.Description, s.timestamp(), m.ID)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	return affected(result, "update material "+m.ID)
}

// DeleteMaterial removes a material. Quotes keep referencing the id; the
// calculator treats the stale reference as zero cost.
func (s *Store) DeleteMaterial(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM materials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	return affected(result, "delete material "+id)
}

func (s *Store) ListMachines(ctx context.Context) ([]pricing.Machine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, cost_per_hour, power_watts
		FROM machines
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query machines: %w", err)
	}
	defer rows.Close()

	machines := make([]pricing.Machine, 0)
	for rows.Next() {
		var m pricing.Machine
		if err := rows.Scan(&m.ID, &m.Name, &m.DepreciationCostPerHour, &m.PowerConsumptionWatts); err != nil {
			return nil, fmt.Errorf("scan machine: %w", err)
		}
		machines = append(machines, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate machines: %w", err)
	}

	return machines, nil
}

func (s *Store) GetMachine(ctx context.Context, id string) (pricing.Machine, error) {
	var m pricing.Machine
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, cost_per_hour, power_watts
		FROM machines
		WHERE id = ?
	`, id).Scan(&m.ID, &m.Name, &m.DepreciationCostPerHour, &m.PowerConsumptionWatts)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.Machine{}, fmt.Errorf("machine %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return pricing.Machine{}, fmt.Errorf("query machine: %w", err)
	}
	return m, nil
}

func (s *Store) CreateMachine(ctx context.Context, m pricing.Machine) (pricing.Machine, error) {
	m.ID = s.newID()
	now := s.timestamp()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO machines (id, name, cost_per_hour, power_watts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.DepreciationCostPerHour, m.PowerConsumptionWatts, now, now)
	if err != nil {
		return pricing.Machine{}, fmt.Errorf("insert machine: %w", err)
	}
	return m, nil
}

func (s *Store) UpdateMachine(ctx context.Context, m pricing.Machine) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE machines
		SET
			name = ?,
			cost_per_hour = ?,
			power_watts = ?,
			updated_at = ?
		WHERE id = ?
	`, m.Name, m.DepreciationCostPerHour, m.PowerConsumptionWatts, s.timestamp(), m.ID)
	if err != nil {
		return fmt.Errorf("update machine: %w", err)
	}
	return affected(result, "update machine "+m.ID)
}

func (s *Store) DeleteMachine(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM machines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete machine: %w", err)
	}
	return affected(result, "delete machine "+id)
}

// Settings returns the settings singleton, or the defaults when it was
// never saved.
func (s *Store) Settings(ctx context.Context) (Settings, error) {
	var st Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT
			labor_cost_per_hour,
			profit_margin_percent,
			peak_energy_cost_kwh,
			off_peak_energy_cost_kwh,
			company_name,
			company_contact,
			company_instagram,
			currency_decimal_places,
			local_currency,
			tariff_source,
			tariff_last_updated,
			peak_tariff_start,
			peak_tariff_end
		FROM settings
		WHERE id = 1
	`).Scan(
		&st.LaborCostPerHour,
		&st.ProfitMarginPercent,
		&st.PeakEnergyCostPerKwh,
		&st.OffPeakEnergyCostPerKwh,
		&st.CompanyName,
		&st.CompanyContact,
		&st.CompanyInstagram,
		&st.CurrencyDecimalPlaces,
		&st.LocalCurrency,
		&st.TariffSource,
		&st.TariffLastUpdated,
		&st.PeakTariffStartTime,
		&st.PeakTariffEndTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("query settings: %w", err)
	}
	return st, nil
}

func (s *Store) SaveSettings(ctx context.Context, st Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (
			id,
			labor_cost_per_hour,
			profit_margin_percent,
			peak_energy_cost_kwh,
			off_peak_energy_cost_kwh,
			company_name,
			company_contact,
			company_instagram,
			currency_decimal_places,
			local_currency,
			tariff_source,
			tariff_last_updated,
			peak_tariff_start,
			peak_tariff_end,
			updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			labor_cost_per_hour = excluded.labor_cost_per_hour,
			profit_margin_percent = excluded.profit_margin_percent,
			peak_energy_cost_kwh = excluded.peak_energy_cost_kwh,
			off_peak_energy_cost_kwh = excluded.off_peak_energy_cost_kwh,
			company_name = excluded.company_name,
			company_contact = excluded.company_contact,
			company_instagram = excluded.company_instagram,
			currency_decimal_places = excluded.currency_decimal_places,
			local_currency = excluded.local_currency,
			tariff_source = excluded.tariff_source,
			tariff_last_updated = excluded.tariff_last_updated,
			peak_tariff_start = excluded.peak_tariff_start,
			peak_tariff_end = excluded.peak_tariff_end,
			updated_at = excluded.updated_at
	`,
		st.LaborCostPerHour,
		st.ProfitMarginPercent,
		st.PeakEnergyCostPerKwh,
		st.OffPeakEnergyCostPerKwh,
		st.CompanyName,
		st.CompanyContact,
		st.CompanyInstagram,
		st.CurrencyDecimalPlaces,
		st.LocalCurrency,
		st.TariffSource,
		st.TariffLastUpdated,
		st.PeakTariffStartTime,
		st.PeakTariffEndTime,
		s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
