package office

import "errors"

var (
	ErrOfficeNotFound   = errors.New("office not found")
	ErrEmployeeNotFound = errors.New("employee not found in office")
	ErrMissingOfficeID  = errors.New("office id is missing")
)
