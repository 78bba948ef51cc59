package report

import "errors"

var (
	ErrNoRecipients   = errors.New("report has no recipients")
	ErrRenderFailed   = errors.New("failed to render report workbook")
	ErrDeliveryFailed = errors.New("failed to deliver report")
)
