package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/areaforecast/areaforecast/internal/forecast"
)

// Schema creates the archive table.
const Schema = `
CREATE TABLE IF NOT EXISTS historical_days (
	location_key     TEXT        NOT NULL,
	date             DATE        NOT NULL,
	location         TEXT        NOT NULL,
	country          TEXT        NOT NULL DEFAULT '',
	max_temp         DOUBLE PRECISION NOT NULL,
	min_temp         DOUBLE PRECISION NOT NULL,
	avg_temp         DOUBLE PRECISION NOT NULL,
	total_precip_mm  DOUBLE PRECISION NOT NULL,
	avg_humidity     DOUBLE PRECISION NOT NULL,
	max_wind_kph     DOUBLE PRECISION NOT NULL,
	condition        TEXT        NOT NULL,
	condition_icon   TEXT        NOT NULL DEFAULT '',
	hours            JSONB       NOT NULL DEFAULT '[]',
	archived_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (location_key, date)
)`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL archive repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the archive table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating historical_days: %w", err)
	}
	return nil
}

// GetRange retrieves archived days.
func (r *PostgresRepository) GetRange(ctx context.Context, location string, start, end time.Time) (*forecast.HistoricalRange, error) {
	query := `
		SELECT
			date, location, country,
			max_temp, min_temp, avg_temp,
			total_precip_mm, avg_humidity, max_wind_kph,
			condition, condition_icon, hours
		FROM historical_days
		WHERE location_key = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := r.pool.Query(ctx, query, LocationKey(location), start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &forecast.HistoricalRange{Location: location, Days: []forecast.HistoricalDay{}}
	for rows.Next() {
		var (
			d     forecast.HistoricalDay
			hours []byte
		)
		err := rows.Scan(
			&d.Date,
			&result.Location,
			&result.Country,
			&d.MaxTemp,
			&d.MinTemp,
			&d.AvgTemp,
			&d.TotalPrecipitationMm,
			&d.AvgHumidity,
			&d.MaxWindKph,
			&d.Condition,
			&d.ConditionIcon,
			&hours,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(hours, &d.Hours); err != nil {
			return nil, fmt.Errorf("decoding hours for %s: %w", d.Date.Format(time.DateOnly), err)
		}
		result.Days = append(result.Days, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Save upserts days in a single batch.
func (r *PostgresRepository) Save(ctx context.Context, location string, hr *forecast.HistoricalRange) error {
	query := `
		INSERT INTO historical_days (
			location_key, date, location, country,
			max_temp, min_temp, avg_temp,
			total_precip_mm, avg_humidity, max_wind_kph,
			condition, condition_icon, hours, archived_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		ON CONFLICT (location_key, date) DO UPDATE SET
			location = EXCLUDED.location,
			country = EXCLUDED.country,
			max_temp = EXCLUDED.max_temp,
			min_temp = EXCLUDED.min_temp,
			avg_temp = EXCLUDED.avg_temp,
			total_precip_mm = EXCLUDED.total_precip_mm,
			avg_humidity = EXCLUDED.avg_humidity,
			max_wind_kph = EXCLUDED.max_wind_kph,
			condition = EXCLUDED.condition,
			condition_icon = EXCLUDED.condition_icon,
			hours = EXCLUDED.hours,
			archived_at = now()
	`

	batch := &pgx.Batch{}
	key := LocationKey(location)

	for _, d := range hr.Days {
		hours, err := json.Marshal(d.Hours)
		if err != nil {
			return fmt.Errorf("encoding hours: %w", err)
		}
		batch.Queue(query,
			key, d.Date, hr.Location, hr.Country,
			d.MaxTemp, d.MinTemp, d.AvgTemp,
			d.TotalPrecipitationMm, d.AvgHumidity, d.MaxWindKph,
			d.Condition, d.ConditionIcon, hours,
		)
	}

	return r.pool.SendBatch(ctx, batch).Close()
}
