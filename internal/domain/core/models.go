package core

import "time"

const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

type Employee struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId,omitempty"`
	EmployeeNumber string     `json:"employeeNumber"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Address        string     `json:"address,omitempty"`
	HireDate       *time.Time `json:"hireDate,omitempty"`
	DepartmentID   string     `json:"departmentId,omitempty"`
	SalaryType     string     `json:"salaryType"`
	SalaryGradeID  string     `json:"salaryGradeId,omitempty"`
	ScheduleID     string     `json:"scheduleId,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type SalaryGrade struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SalaryRate float64   `json:"salaryRate"`
	CreatedAt  time.Time `json:"createdAt"`
}

type BenefitType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type EmployeeBenefit struct {
	ID                   string     `json:"id"`
	EmployeeID           string     `json:"employeeId"`
	BenefitTypeID        string     `json:"benefitTypeId"`
	BenefitName          string     `json:"benefitName"`
	EmployeeContribution float64    `json:"employeeContribution"`
	AssignedAt           time.Time  `json:"assignedAt"`
	EndsAt               *time.Time `json:"endsAt,omitempty"`
	IsActive             bool       `json:"isActive"`
}

type CashAdvance struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Amount     float64    `json:"amount"`
	Reason     string     `json:"reason,omitempty"`
	IssuedAt   time.Time  `json:"issuedAt"`
	IsPaid     bool       `json:"isPaid"`
	PaidAt     *time.Time `json:"paidAt,omitempty"`
}
