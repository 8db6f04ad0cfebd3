package repository

import (
	"context"
	"solveit_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

// LockOrCreate returns the (user, question) record, creating a PENDING one first if
// needed, and locks it for the rest of the transaction. Creating with DO NOTHING
// keeps two concurrent first writes from failing on the unique key.
func (r *ProgressRepository) LockOrCreate(ctx context.Context, userID, questionID string) (*model.Progress, error) {
	seed := &model.Progress{UserID: userID, QuestionID: questionID, Status: model.StatusPending}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(seed).Error
	if err != nil {
		return nil, err
	}

	var progress model.Progress
	err = r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) Save(ctx context.Context, progress *model.Progress) error {
	return r.DB.WithContext(ctx).Save(progress).Error
}

func (r *ProgressRepository) FindByUserAndQuestion(ctx context.Context, userID, questionID string) (*model.Progress, error) {
	var progress model.Progress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// ListByStatus returns the user's records in the given statuses with their
// questions, oldest completion first so topic grouping is deterministic.
func (r *ProgressRepository) ListByStatus(ctx context.Context, userID string, statuses ...model.ProgressStatus) ([]model.Progress, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	var records []model.Progress
	err := r.DB.WithContext(ctx).
		Preload("Question").
		Where("user_id = ? AND status IN ?", userID, values).
		Order("completed_at ASC").
		Order("id ASC").
		Find(&records).Error
	return records, err
}

// StatusesForCompany maps question id to the user's status for one company.
func (r *ProgressRepository) StatusesForCompany(ctx context.Context, userID, companyID string) (map[string]model.ProgressStatus, error) {
	var records []model.Progress
	err := r.DB.WithContext(ctx).
		Select("progress.*").
		Joins("JOIN questions ON questions.id = progress.question_id AND questions.deleted_at IS NULL").
		Where("progress.user_id = ? AND questions.company_id = ?", userID, companyID).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]model.ProgressStatus, len(records))
	for _, p := range records {
		statuses[p.QuestionID] = p.Status
	}
	return statuses, nil
}
