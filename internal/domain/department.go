package domain

import "fmt"

// Department is the closed set of firm departments a conversation can be
// routed to. The values are the literal identifiers shared by storage, the
// model prompt and the notification channel; they must not drift.
type Department string

const (
	DepartmentAccounting Department = "Contábil"
	DepartmentTax        Department = "Fiscal"
	DepartmentPayroll    Department = "DP"
	DepartmentFinance    Department = "Financeiro"
	DepartmentCorporate  Department = "Societário"
)

// Departments returns every department in stable order.
func Departments() []Department {
	return []Department{
		DepartmentAccounting,
		DepartmentTax,
		DepartmentPayroll,
		DepartmentFinance,
		DepartmentCorporate,
	}
}

// Valid reports whether d is one of the five known departments.
func (d Department) Valid() bool {
	switch d {
	case DepartmentAccounting, DepartmentTax, DepartmentPayroll, DepartmentFinance, DepartmentCorporate:
		return true
	}
	return false
}

// ParseDepartment validates a raw department identifier.
func ParseDepartment(raw string) (Department, error) {
	d := Department(raw)
	if !d.Valid() {
		return "", fmt.Errorf("unknown department %q", raw)
	}
	return d, nil
}
