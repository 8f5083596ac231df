package domain

// SubjectType differentiates the principal kinds that can authenticate.
type SubjectType string

const (
	SubjectTypeClient     SubjectType = "CLIENT"
	SubjectTypeSpecialist SubjectType = "SPECIALIST"
	SubjectTypeAdmin      SubjectType = "ADMIN"
	SubjectTypeDeveloper  SubjectType = "DEVELOPER"
	SubjectTypeOwner      SubjectType = "OWNER"
)
