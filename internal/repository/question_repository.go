package repository

import (
	"context"
	"solveit_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) WithTx(tx *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: tx}
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) ListByCompany(ctx context.Context, companyID string) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("title ASC").
		Find(&questions).Error
	return questions, err
}

// UpsertBatch inserts questions keyed by (company_id, title) and refreshes the
// catalog columns of rows that already exist.
func (r *QuestionRepository) UpsertBatch(ctx context.Context, questions []model.Question) (int64, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	result := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "title"}},
			DoUpdates: clause.AssignmentColumns([]string{"frequency", "topic", "leetcode_url", "updated_at"}),
		}).
		CreateInBatches(questions, 200)
	if result.Error != nil {
		return 0, result.Error
	}
	return int64(len(questions)), nil
}
