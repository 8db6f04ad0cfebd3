package model

// swagger:model Question
type Question struct {
	UUIDBase
	CompanyID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_question_company_title" json:"companyId"`
	Title       string `gorm:"size:191;not null;uniqueIndex:idx_question_company_title" json:"title"`
	Frequency   string `gorm:"size:32" json:"frequency"`
	LeetcodeURL string `gorm:"size:512" json:"leetcodeUrl"`
	Topic       string `gorm:"size:512" json:"topic"`
}

func (Question) TableName() string {
	return "questions"
}

const UncategorizedTopic = "Uncategorized"

// QuestionWithStatus is a question as seen by one user.
type QuestionWithStatus struct {
	Question
	Status ProgressStatus `json:"status"`
}
