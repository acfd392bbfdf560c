package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
    id,
    COALESCE(user_id::text, ''),
    COALESCE(employee_number, ''),
    first_name, last_name, email,
    COALESCE(phone, ''),
    COALESCE(address, ''),
    hire_date,
    COALESCE(department_id::text, ''),
    salary_type,
    COALESCE(salary_grade_id::text, ''),
    COALESCE(schedule_id::text, ''),
    status, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName, &emp.Email,
		&emp.Phone, &emp.Address, &emp.HireDate, &emp.DepartmentID,
		&emp.SalaryType, &emp.SalaryGradeID, &emp.ScheduleID,
		&emp.Status, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE id = $1
  `, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, userID string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE user_id = $1
  `, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    ORDER BY last_name, first_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

func (s *Store) CreateEmployee(ctx context.Context, emp Employee) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees
      (employee_number, first_name, last_name, email, phone, address, hire_date,
       department_id, salary_type, salary_grade_id, schedule_id, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7, NULLIF($8,'')::uuid, $9, NULLIF($10,'')::uuid, NULLIF($11,'')::uuid, $12)
    RETURNING id
  `, emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.Address, emp.HireDate,
		emp.DepartmentID, emp.SalaryType, emp.SalaryGradeID, emp.ScheduleID, emp.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, employeeID string, emp Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $2, last_name = $3, email = $4, phone = $5, address = $6,
        hire_date = $7,
        department_id = NULLIF($8,'')::uuid,
        salary_type = $9,
        salary_grade_id = NULLIF($10,'')::uuid,
        schedule_id = NULLIF($11,'')::uuid,
        status = $12,
        updated_at = now()
    WHERE id = $1
  `, employeeID, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.Address,
		emp.HireDate, emp.DepartmentID, emp.SalaryType, emp.SalaryGradeID, emp.ScheduleID, emp.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) SetEmployeeStatus(ctx context.Context, employeeID, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET status = $2, updated_at = now() WHERE id = $1
  `, employeeID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) LinkUser(ctx context.Context, employeeID, userID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET user_id = $2, updated_at = now() WHERE id = $1
  `, employeeID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, created_at FROM departments ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var dep Department
		if err := rows.Scan(&dep.ID, &dep.Name, &dep.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, dep)
	}
	return departments, nil
}

func (s *Store) CreateDepartment(ctx context.Context, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name) VALUES ($1) RETURNING id
  `, name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListSalaryGrades(ctx context.Context) ([]SalaryGrade, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, salary_rate, created_at FROM salary_grades ORDER BY salary_rate
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grades []SalaryGrade
	for rows.Next() {
		var grade SalaryGrade
		if err := rows.Scan(&grade.ID, &grade.Name, &grade.SalaryRate, &grade.CreatedAt); err != nil {
			return nil, err
		}
		grades = append(grades, grade)
	}
	return grades, nil
}

func (s *Store) CreateSalaryGrade(ctx context.Context, name string, rate float64) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO salary_grades (name, salary_rate) VALUES ($1,$2) RETURNING id
  `, name, rate).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListBenefitTypes(ctx context.Context) ([]BenefitType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, created_at FROM benefit_types ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []BenefitType
	for rows.Next() {
		var bt BenefitType
		if err := rows.Scan(&bt.ID, &bt.Name, &bt.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, bt)
	}
	return types, nil
}

func (s *Store) CreateBenefitType(ctx context.Context, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO benefit_types (name)
    VALUES ($1)
    ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `, name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListEmployeeBenefits(ctx context.Context, employeeID string) ([]EmployeeBenefit, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT eb.id, eb.employee_id, eb.benefit_type_id, bt.name,
           eb.employee_contribution, eb.assigned_at, eb.ends_at, eb.is_active
    FROM employee_benefits eb
    JOIN benefit_types bt ON eb.benefit_type_id = bt.id
    WHERE eb.employee_id = $1
    ORDER BY eb.assigned_at, bt.name
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var benefits []EmployeeBenefit
	for rows.Next() {
		var benefit EmployeeBenefit
		if err := rows.Scan(&benefit.ID, &benefit.EmployeeID, &benefit.BenefitTypeID, &benefit.BenefitName,
			&benefit.EmployeeContribution, &benefit.AssignedAt, &benefit.EndsAt, &benefit.IsActive); err != nil {
			return nil, err
		}
		benefits = append(benefits, benefit)
	}
	return benefits, nil
}

func (s *Store) AssignBenefit(ctx context.Context, employeeID, benefitTypeID string, contribution float64) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employee_benefits (employee_id, benefit_type_id, employee_contribution)
    VALUES ($1,$2,$3)
    RETURNING id
  `, employeeID, benefitTypeID, contribution).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// EndBenefit stops future deductions without touching history; closed
// periods already carry the lines they deducted.
func (s *Store) EndBenefit(ctx context.Context, benefitID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employee_benefits SET is_active = false, ends_at = now() WHERE id = $1
  `, benefitID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBenefitNotFound
	}
	return nil
}

func (s *Store) IssueCashAdvance(ctx context.Context, employeeID string, amount float64, reason string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO cash_advances (employee_id, amount, reason)
    VALUES ($1,$2,$3)
    RETURNING id
  `, employeeID, amount, reason).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListCashAdvances(ctx context.Context, employeeID string) ([]CashAdvance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, amount, COALESCE(reason, ''), issued_at, is_paid, paid_at
    FROM cash_advances
    WHERE employee_id = $1
    ORDER BY issued_at DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var advances []CashAdvance
	for rows.Next() {
		var advance CashAdvance
		if err := rows.Scan(&advance.ID, &advance.EmployeeID, &advance.Amount, &advance.Reason,
			&advance.IssuedAt, &advance.IsPaid, &advance.PaidAt); err != nil {
			return nil, err
		}
		advances = append(advances, advance)
	}
	return advances, nil
}
