package workbook

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sadman/hostelreview/internal/apperror"
	"github.com/sadman/hostelreview/internal/model"
	"github.com/sadman/hostelreview/internal/repository"
)

var _ repository.HostelRepository = (*hostelSheetRepo)(nil)

type hostelSheetRepo struct {
	store *Store
}

func (r *hostelSheetRepo) Append(ctx context.Context, hostel *model.Hostel) (string, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return "", err
	}
	defer f.Close()

	if hostel.ID == "" {
		hostel.ID = newID()
	}
	if hostel.CreatedAt.IsZero() {
		hostel.CreatedAt = time.Now()
	}

	values := []any{hostel.ID, hostel.Name, hostel.Location, hostel.Description, hostel.Image}
	if err := appendRow(f, hostelSheet, values); err != nil {
		return "", err
	}
	if err := f.Save(); err != nil {
		return "", fmt.Errorf("workbook: saving after hostel append: %w", err)
	}

	return hostel.ID, nil
}

func (r *hostelSheetRepo) ListAll(ctx context.Context) ([]model.Hostel, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readHostels(f)
}

func (r *hostelSheetRepo) FindByID(ctx context.Context, id string) (*model.Hostel, error) {
	hostels, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range hostels {
		if h.ID == id {
			return &h, nil
		}
	}
	return nil, apperror.NotFound("hostel", id)
}

func readHostels(f *excelize.File) ([]model.Hostel, error) {
	rows, err := f.GetRows(hostelSheet)
	if err != nil {
		return nil, fmt.Errorf("workbook: reading %s: %w", hostelSheet, err)
	}

	hostels := make([]model.Hostel, 0)
	for i, row := range rows {
		if i == 0 || cell(row, 0) == "" {
			continue
		}
		hostels = append(hostels, model.Hostel{
			ID:          cell(row, 0),
			Name:        cell(row, 1),
			Location:    cell(row, 2),
			Description: cell(row, 3),
			Image:       cell(row, 4),
		})
	}
	return hostels, nil
}
