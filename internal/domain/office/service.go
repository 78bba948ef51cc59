package office

import "context"

// OfficeService keeps the office configuration read by the pipelines in sync
// with the office document.
type OfficeService interface {
	SyncOffice(ctx context.Context, req SyncOfficeRequest) (Office, error)
	GetOffice(ctx context.Context, officeID string) (Office, error)
}
