package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/model"
	"github.com/google/uuid"
)

// StoredSegment is a persisted segment with its storage identity.
type StoredSegment struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	model.DocumentSegment
	Position int `json:"position"`
}

// SaveSegments stores the segments of one source PDF in order and returns their
// new ids. Earlier segments saved for the same source are replaced.
func (s *SQLiteStorage) SaveSegments(ctx context.Context, source string, segments []model.DocumentSegment) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(source, "source"); err != nil {
		return nil, err
	}
	if err := validateSegments(segments); err != nil {
		return nil, err
	}

	ids := make([]string, len(segments))
	now := time.Now().UTC()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE source = ?`, source); err != nil {
			return fmt.Errorf("failed to clear segments for %s: %w", source, err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO segments (
				id, source, position, page_start, page_end, document_type,
				reference_number, confidence, detection_method, text_preview,
				detected_fields, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare segment insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, seg := range segments {
			fields, err := marshalFields(seg.DetectedFields)
			if err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}

			var docType sql.NullString
			if seg.DocumentType != nil {
				docType = sql.NullString{String: string(*seg.DocumentType), Valid: true}
			}
			var ref sql.NullString
			if seg.ReferenceNumber != nil {
				ref = sql.NullString{String: *seg.ReferenceNumber, Valid: true}
			}

			ids[i] = uuid.NewString()
			if _, err := stmt.ExecContext(ctx,
				ids[i], source, i, seg.PageStart, seg.PageEnd, docType,
				ref, seg.Confidence, string(seg.DetectionMethod), seg.TextPreview,
				fields, now,
			); err != nil {
				return fmt.Errorf("failed to insert segment %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("saved segments", "source", source, "count", len(segments))
	return ids, nil
}

// ListSegments returns the segments saved for source in page order.
func (s *SQLiteStorage) ListSegments(ctx context.Context, source string) ([]StoredSegment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(source, "source"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, position, page_start, page_end, document_type,
			reference_number, confidence, detection_method, text_preview,
			detected_fields, created_at
		FROM segments
		WHERE source = ?
		ORDER BY position
	`, source)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []StoredSegment{}
	for rows.Next() {
		var (
			seg     StoredSegment
			docType sql.NullString
			ref     sql.NullString
			method  string
			fields  sql.NullString
		)
		if err := rows.Scan(
			&seg.ID, &seg.Source, &seg.Position, &seg.PageStart, &seg.PageEnd, &docType,
			&ref, &seg.Confidence, &method, &seg.TextPreview,
			&fields, &seg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}

		if docType.Valid {
			seg.DocumentType = model.DocumentTypePtr(model.DocumentType(docType.String))
		}
		if ref.Valid {
			seg.ReferenceNumber = model.StringPtr(ref.String)
		}
		seg.DetectionMethod = model.DetectionMethod(method)
		if seg.DetectedFields, err = unmarshalFields(fields); err != nil {
			return nil, fmt.Errorf("segment %s: %w", seg.ID, err)
		}
		out = append(out, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate segments: %w", err)
	}
	return out, nil
}

// UpdateSegment overwrites the classification of a stored segment in place,
// keeping its source, position and page range.
func (s *SQLiteStorage) UpdateSegment(ctx context.Context, id string, seg model.DocumentSegment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "segment id"); err != nil {
		return err
	}
	if seg.Confidence < 0 || seg.Confidence > 1 {
		return fmt.Errorf("%w: segment %s has confidence %v", ErrInvalidSegment, id, seg.Confidence)
	}
	if seg.DocumentType != nil && !seg.DocumentType.Valid() {
		return fmt.Errorf("%w: segment %s has unknown type %q", ErrInvalidSegment, id, *seg.DocumentType)
	}

	fields, err := marshalFields(seg.DetectedFields)
	if err != nil {
		return err
	}
	var docType sql.NullString
	if seg.DocumentType != nil {
		docType = sql.NullString{String: string(*seg.DocumentType), Valid: true}
	}
	var ref sql.NullString
	if seg.ReferenceNumber != nil {
		ref = sql.NullString{String: *seg.ReferenceNumber, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE segments
		SET document_type = ?, reference_number = ?, confidence = ?,
			detection_method = ?, detected_fields = ?
		WHERE id = ?
	`, docType, ref, seg.Confidence, string(seg.DetectionMethod), fields, id)
	if err != nil {
		return fmt.Errorf("failed to update segment %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update segment %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: segment %s", common.ErrNotFound, id)
	}

	s.logger.Debug("updated segment", "id", id, "method", seg.DetectionMethod)
	return nil
}

// ListSources returns every source with saved segments, most recent first.
func (s *SQLiteStorage) ListSources(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source FROM segments
		GROUP BY source
		ORDER BY MAX(created_at) DESC, source
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func marshalFields(fields map[string]any) (sql.NullString, error) {
	if len(fields) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal detected fields: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalFields(raw sql.NullString) (map[string]any, error) {
	fields := map[string]any{}
	if !raw.Valid || raw.String == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(raw.String), &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal detected fields: %w", err)
	}
	return fields, nil
}
