package core

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrDepartmentNotFound  = errors.New("department not found")
	ErrSalaryGradeNotFound = errors.New("salary grade not found")
	ErrBenefitTypeNotFound = errors.New("benefit type not found")
	ErrBenefitNotFound     = errors.New("benefit assignment not found")
)
