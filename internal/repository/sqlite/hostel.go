package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sadman/hostelreview/internal/apperror"
	"github.com/sadman/hostelreview/internal/model"
	"github.com/sadman/hostelreview/internal/repository"
)

var _ repository.HostelRepository = (*hostelRepo)(nil)

type hostelRepo struct {
	conn *sql.DB
}

func (r *hostelRepo) Append(ctx context.Context, hostel *model.Hostel) (string, error) {
	if hostel.ID == "" {
		hostel.ID = xid.New().String()
	}
	if hostel.CreatedAt.IsZero() {
		hostel.CreatedAt = time.Now()
	}

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO hostels (id, name, location, description, image, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		hostel.ID, hostel.Name, hostel.Location, hostel.Description, hostel.Image, hostel.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: inserting hostel: %w", err)
	}

	return hostel.ID, nil
}

func (r *hostelRepo) ListAll(ctx context.Context) ([]model.Hostel, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, name, location, description, image, created_at
		 FROM hostels ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing hostels: %w", err)
	}
	defer rows.Close()

	hostels := make([]model.Hostel, 0)
	for rows.Next() {
		var h model.Hostel
		if err := rows.Scan(&h.ID, &h.Name, &h.Location, &h.Description, &h.Image, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning hostel row: %w", err)
		}
		hostels = append(hostels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating hostels: %w", err)
	}

	return hostels, nil
}

func (r *hostelRepo) FindByID(ctx context.Context, id string) (*model.Hostel, error) {
	var h model.Hostel
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, name, location, description, image, created_at
		 FROM hostels WHERE id = ?`,
		id,
	).Scan(&h.ID, &h.Name, &h.Location, &h.Description, &h.Image, &h.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("hostel", id)
		}
		return nil, fmt.Errorf("sqlite: getting hostel %s: %w", id, err)
	}
	return &h, nil
}
