package storage

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pricescout/internal/domain"
)

// ErrNotFound is returned when a requested alert does not exist.
var ErrNotFound = errors.New("alert not found")

// AlertStore persists price alerts in PostgreSQL.
type AlertStore struct {
	db *pgxpool.Pool
}

func NewAlertStore(connStr string) (*AlertStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &AlertStore{db: db}, nil
}

func (s *AlertStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *AlertStore) Close() {
	s.db.Close()
}

// Init creates the alerts table when it does not exist yet. current_price is
// NULL until the first recheck produces a price.
func (s *AlertStore) Init(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS price_alerts (
			id            BIGSERIAL PRIMARY KEY,
			user_email    TEXT NOT NULL,
			product_url   TEXT NOT NULL,
			product_title TEXT NOT NULL,
			target_price  DOUBLE PRECISION NOT NULL,
			current_price DOUBLE PRECISION,
			is_active     BOOLEAN NOT NULL DEFAULT TRUE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_checked  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_notified TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_price_alerts_email ON price_alerts (user_email);
	`)
	return err
}

// Create inserts the alert and fills in its assigned id.
func (s *AlertStore) Create(ctx context.Context, alert *domain.PriceAlert) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO price_alerts (user_email, product_url, product_title, target_price, current_price, is_active, created_at, last_checked)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		alert.UserEmail, alert.ProductURL, alert.ProductTitle, alert.TargetPrice,
		priceColumn(alert.CurrentPrice), alert.IsActive, alert.CreatedAt, alert.LastChecked,
	).Scan(&alert.ID)
}

// Load retrieves one alert by id, or ErrNotFound.
func (s *AlertStore) Load(ctx context.Context, id int64) (*domain.PriceAlert, error) {
	row := s.db.QueryRow(ctx, selectAlert+` WHERE id = $1`, id)
	alert, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return alert, err
}

// Save persists the recheck-mutable fields.
func (s *AlertStore) Save(ctx context.Context, alert *domain.PriceAlert) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE price_alerts
		 SET current_price = $2, last_checked = $3, last_notified = $4, is_active = $5
		 WHERE id = $1`,
		alert.ID, priceColumn(alert.CurrentPrice), alert.LastChecked, alert.LastNotified, alert.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the alert record, or ErrNotFound.
func (s *AlertStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM price_alerts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByEmail returns all alerts registered by one user.
func (s *AlertStore) ListByEmail(ctx context.Context, email string) ([]domain.PriceAlert, error) {
	rows, err := s.db.Query(ctx, selectAlert+` WHERE user_email = $1 ORDER BY id`, email)
	if err != nil {
		return nil, err
	}
	return collectAlerts(rows)
}

// ListActive returns every active alert; used to reschedule jobs at startup.
func (s *AlertStore) ListActive(ctx context.Context) ([]domain.PriceAlert, error) {
	rows, err := s.db.Query(ctx, selectAlert+` WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectAlerts(rows)
}

const selectAlert = `SELECT id, user_email, product_url, product_title, target_price, current_price, is_active, created_at, last_checked, last_notified FROM price_alerts`

func scanAlert(row pgx.Row) (*domain.PriceAlert, error) {
	var a domain.PriceAlert
	var current *float64
	err := row.Scan(&a.ID, &a.UserEmail, &a.ProductURL, &a.ProductTitle, &a.TargetPrice,
		&current, &a.IsActive, &a.CreatedAt, &a.LastChecked, &a.LastNotified)
	if err != nil {
		return nil, err
	}
	if current != nil {
		a.CurrentPrice = *current
	} else {
		a.CurrentPrice = math.Inf(1)
	}
	return &a, nil
}

func collectAlerts(rows pgx.Rows) ([]domain.PriceAlert, error) {
	defer rows.Close()
	var alerts []domain.PriceAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

// priceColumn maps the in-memory unknown-price sentinel to NULL.
func priceColumn(price float64) *float64 {
	if math.IsInf(price, 1) {
		return nil
	}
	return &price
}
