package office

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
)

type OfficeServiceImpl struct {
	officeRepo office.OfficeRepository
}

func NewOfficeService(officeRepo office.OfficeRepository) *OfficeServiceImpl {
	return &OfficeServiceImpl{officeRepo: officeRepo}
}

// SyncOffice implements office.OfficeService.
func (s *OfficeServiceImpl) SyncOffice(ctx context.Context, req office.SyncOfficeRequest) (office.Office, error) {
	if err := req.Validate(); err != nil {
		return office.Office{}, err
	}

	o := req.ToOffice()
	if err := s.officeRepo.Upsert(ctx, o); err != nil {
		return office.Office{}, fmt.Errorf("failed to sync office: %w", err)
	}

	slog.Info("Office synced",
		"office_id", o.ID,
		"employees", len(o.Employees),
		"branches", len(o.Branches),
	)
	return s.GetOffice(ctx, o.ID)
}

// GetOffice implements office.OfficeService.
func (s *OfficeServiceImpl) GetOffice(ctx context.Context, officeID string) (office.Office, error) {
	if officeID == "" {
		return office.Office{}, office.ErrMissingOfficeID
	}
	o, err := s.officeRepo.FindOne(ctx, officeID)
	if err != nil {
		return office.Office{}, fmt.Errorf("failed to get office: %w", err)
	}
	if o == nil {
		return office.Office{}, office.ErrOfficeNotFound
	}
	return *o, nil
}

var _ office.OfficeService = (*OfficeServiceImpl)(nil)
