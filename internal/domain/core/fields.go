package core

import "hrpay/internal/auth"

// FilterEmployeeFields blanks the fields the viewer is not entitled to
// see. HR sees everything; an employee sees their own full record and
// only the directory fields of anyone else.
func FilterEmployeeFields(emp *Employee, user auth.UserContext) {
	if user.Role == auth.RoleHR || user.EmployeeID == emp.ID {
		return
	}
	emp.UserID = ""
	emp.Phone = ""
	emp.Address = ""
	emp.HireDate = nil
	emp.SalaryType = ""
	emp.SalaryGradeID = ""
	emp.ScheduleID = ""
}
