package domain

// Specialist models a human department specialist. Username is the login
// identifier and is unique across all specialists.
type Specialist struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Name       string     `json:"name"`
	Department Department `json:"department"`
	Password   *string    `json:"password"`
}
