package voucher

import "errors"

var (
	ErrVoucherNotFound       = errors.New("voucher not found")
	ErrVoucherAlreadyBatched = errors.New("voucher is already part of a payment batch")
	ErrOpenVoucherExists     = errors.New("an open voucher already exists for this cycle")
)
