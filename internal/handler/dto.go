package handler

import (
	_ "embed"

	"github.com/locvowork/employee_records/internal/domain"
)

//go:embed templates/employee_report.yaml
var employeeReportTemplate []byte

// exportSection is the template section employee rows are bound to.
const exportSection = "employees"

// EmployeeExportRow is one flattened spreadsheet row.
type EmployeeExportRow struct {
	EmployeeID  string
	Name        string
	DateOfBirth string
	Age         int
	Department  string
	Salary      *float64
}

func toExportRows(employees []domain.Employee) []EmployeeExportRow {
	rows := make([]EmployeeExportRow, len(employees))
	for i, e := range employees {
		rows[i] = EmployeeExportRow{
			EmployeeID:  e.EmployeeID,
			Name:        e.Name,
			DateOfBirth: e.DateOfBirth.String(),
			Age:         e.Age,
			Department:  e.DepartmentName(),
			Salary:      e.Salary,
		}
	}
	return rows
}
