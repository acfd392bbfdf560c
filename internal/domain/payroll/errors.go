package payroll

import "errors"

var (
	ErrPeriodNotFound = errors.New("payroll period not found")
	ErrPeriodClosed   = errors.New("cannot calculate payroll for closed period")
	ErrItemNotFound   = errors.New("payroll item not found")
)
