package dto

import "github.com/spec-kit/support-portal/internal/domain"

// ClientCreateRequest payload for registering a client.
type ClientCreateRequest struct {
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	CNPJ        string `json:"cnpj"`
}

// SpecialistCreateRequest payload for registering a specialist.
type SpecialistCreateRequest struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// AssignRequest payload for creating a pending assignment.
type AssignRequest struct {
	ClientID     string `json:"client_id"`
	SpecialistID string `json:"specialist_id"`
	Department   string `json:"department"`
}

// AcceptAssignmentRequest payload for a specialist accepting an assignment.
type AcceptAssignmentRequest struct {
	ClientID string `json:"client_id"`
}

// AssignmentView is the outward assignment shape.
type AssignmentView struct {
	SpecialistID string `json:"specialist_id"`
	Status       string `json:"status"`
}

// ClientView is the outward client shape; credentials never leave the
// service, only whether one is set.
type ClientView struct {
	ID          string                    `json:"id"`
	CompanyName string                    `json:"company_name"`
	ContactName string                    `json:"contact_name"`
	Email       string                    `json:"email"`
	CNPJ        string                    `json:"cnpj"`
	PasswordSet bool                      `json:"password_set"`
	Assignments map[string]AssignmentView `json:"assignments,omitempty"`
}

// SpecialistView is the outward specialist shape.
type SpecialistView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	PasswordSet bool   `json:"password_set"`
}

// NewClientView maps a domain client.
func NewClientView(client domain.ClientInfo) ClientView {
	view := ClientView{
		ID:          client.ID,
		CompanyName: client.CompanyName,
		ContactName: client.ContactName,
		Email:       client.Email,
		CNPJ:        client.CNPJ,
		PasswordSet: client.Password != nil,
	}
	if len(client.Assignments) > 0 {
		view.Assignments = make(map[string]AssignmentView, len(client.Assignments))
		for department, assignment := range client.Assignments {
			view.Assignments[string(department)] = AssignmentView{
				SpecialistID: assignment.SpecialistID,
				Status:       string(assignment.Status),
			}
		}
	}
	return view
}

// NewClientViews maps a slice of domain clients.
func NewClientViews(clients []domain.ClientInfo) []ClientView {
	views := make([]ClientView, 0, len(clients))
	for _, client := range clients {
		views = append(views, NewClientView(client))
	}
	return views
}

// NewSpecialistView maps a domain specialist.
func NewSpecialistView(specialist domain.Specialist) SpecialistView {
	return SpecialistView{
		ID:          specialist.ID,
		Username:    specialist.Username,
		Name:        specialist.Name,
		Department:  string(specialist.Department),
		PasswordSet: specialist.Password != nil,
	}
}

// NewSpecialistViews maps a slice of domain specialists.
func NewSpecialistViews(specialists []domain.Specialist) []SpecialistView {
	views := make([]SpecialistView, 0, len(specialists))
	for _, specialist := range specialists {
		views = append(views, NewSpecialistView(specialist))
	}
	return views
}
