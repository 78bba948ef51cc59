package payroll

import "errors"

var (
	ErrInvalidPeriod      = errors.New("invalid payroll period")
	ErrNoEmployees        = errors.New("office has no employees configured")
	ErrClaimOutsideOffice = errors.New("claim belongs to an unknown employee")
)
