package office

import "context"

// OfficeRepository reads and syncs office configuration.
type OfficeRepository interface {
	// FindOne returns nil when the office does not exist.
	FindOne(ctx context.Context, officeID string) (*Office, error)

	// List returns every office, ordered by id.
	List(ctx context.Context) ([]Office, error)

	// Upsert replaces the stored configuration of an office.
	Upsert(ctx context.Context, o Office) error
}
