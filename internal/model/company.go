package model

// swagger:model Company
type Company struct {
	UUIDBase
	Name      string     `gorm:"size:191;uniqueIndex;not null" json:"name"`
	Slug      string     `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	Questions []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Company) TableName() string {
	return "companies"
}

// CompanySummary is one row of the company list.
type CompanySummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	QuestionCount int64  `json:"questionCount"`
	SolvedCount   int64  `json:"solvedCount"`
}

// CompanyDetail is a company with its questions and the caller's status on each.
type CompanyDetail struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Slug      string               `json:"slug"`
	Questions []QuestionWithStatus `json:"questions"`
}
