package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/model"
	"github.com/google/uuid"
)

// StoredReport is a persisted validation report.
type StoredReport struct {
	CreatedAt  time.Time              `json:"created_at"`
	ID         string                 `json:"id"`
	ShipmentID string                 `json:"shipment_id"`
	Report     model.ValidationReport `json:"report"`
}

// SaveReport stores a validation report for a shipment and returns its id.
func (s *SQLiteStorage) SaveReport(ctx context.Context, shipmentID string, report model.ValidationReport) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateString(shipmentID, "shipmentID"); err != nil {
		return "", err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	var reason, by sql.NullString
	if report.Override != nil {
		reason = sql.NullString{String: report.Override.Reason, Valid: true}
		by = sql.NullString{String: report.Override.By, Valid: true}
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO validation_reports (
			id, shipment_id, is_valid, failed, warnings,
			override_reason, override_by, report, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, shipmentID, report.IsValid, report.Failed, report.Warnings,
		reason, by, string(data), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert report: %w", err)
	}

	s.logger.Debug("saved validation report",
		"shipment", shipmentID,
		"id", id,
		"valid", report.IsValid)
	return id, nil
}

// LatestReport returns the most recently saved report for a shipment, or an error
// wrapping common.ErrNotFound.
func (s *SQLiteStorage) LatestReport(ctx context.Context, shipmentID string) (*StoredReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(shipmentID, "shipmentID"); err != nil {
		return nil, err
	}

	var (
		stored StoredReport
		data   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, shipment_id, report, created_at
		FROM validation_reports
		WHERE shipment_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, shipmentID).Scan(&stored.ID, &stored.ShipmentID, &data, &stored.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no report for shipment %s", common.ErrNotFound, shipmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &stored.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", stored.ID, err)
	}
	return &stored, nil
}
