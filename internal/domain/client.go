package domain

// AssignmentStatus tracks the acceptance lifecycle of an assignment.
type AssignmentStatus string

const (
	AssignmentPending  AssignmentStatus = "Pendente"
	AssignmentAccepted AssignmentStatus = "Aceito"
)

// Assignment links a specialist to a client within one department. The
// specialist's own department must equal the department the assignment is
// keyed under. Pending transitions to Accepted only through the named
// specialist's explicit accept action and never reverts.
type Assignment struct {
	SpecialistID string           `json:"specialistId"`
	Status       AssignmentStatus `json:"status"`
}

// ClientInfo is the directory record for a firm client. Password is nil
// until the client completes the first-login set-password flow. At most one
// assignment exists per department.
type ClientInfo struct {
	ID          string                    `json:"id"`
	CompanyName string                    `json:"companyName"`
	ContactName string                    `json:"contactName"`
	Email       string                    `json:"email"`
	CNPJ        string                    `json:"cnpj"`
	Password    *string                   `json:"password"`
	Assignments map[Department]Assignment `json:"assignments,omitempty"`
}
