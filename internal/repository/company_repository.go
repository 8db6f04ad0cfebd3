package repository

import (
	"context"
	"solveit_backend/internal/model"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompanyFilter narrows the company list. Field is one of company, topic, question.
type CompanyFilter struct {
	Field string
	Query string
}

type CompanyRepository struct {
	DB *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

// Upsert creates the company by name or returns the existing row.
func (r *CompanyRepository) Upsert(ctx context.Context, name, slug string) (*model.Company, error) {
	company := &model.Company{Name: name, Slug: slug}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(company).Error
	if err != nil {
		return nil, err
	}

	var stored model.Company
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// List returns companies ordered by name. Matching is a case-insensitive substring
// test on the company name, or on any of its question topics or titles.
func (r *CompanyRepository) List(ctx context.Context, filter CompanyFilter) ([]model.Company, error) {
	var companies []model.Company
	query := r.DB.WithContext(ctx).Model(&model.Company{})

	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		switch filter.Field {
		case "topic":
			query = query.Where("EXISTS (SELECT 1 FROM questions q WHERE q.company_id = companies.id AND q.deleted_at IS NULL AND LOWER(q.topic) LIKE ?)", pattern)
		case "question":
			query = query.Where("EXISTS (SELECT 1 FROM questions q WHERE q.company_id = companies.id AND q.deleted_at IS NULL AND LOWER(q.title) LIKE ?)", pattern)
		default:
			query = query.Where("LOWER(companies.name) LIKE ?", pattern)
		}
	}

	err := query.Order("companies.name ASC").Find(&companies).Error
	return companies, err
}

// FindByIDOrSlug accepts either identifier, as the web client links by slug.
func (r *CompanyRepository) FindByIDOrSlug(ctx context.Context, key string) (*model.Company, error) {
	var company model.Company
	err := r.DB.WithContext(ctx).Where("id = ? OR slug = ?", key, key).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

type companyCount struct {
	CompanyID string
	Count     int64
}

// QuestionCounts maps company id to its number of questions.
func (r *CompanyRepository) QuestionCounts(ctx context.Context) (map[string]int64, error) {
	var rows []companyCount
	err := r.DB.WithContext(ctx).
		Model(&model.Question{}).
		Select("company_id, COUNT(*) AS count").
		Group("company_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}

// SolvedCounts maps company id to the number of questions userID marked done.
func (r *CompanyRepository) SolvedCounts(ctx context.Context, userID string) (map[string]int64, error) {
	var rows []companyCount
	err := r.DB.WithContext(ctx).
		Table("progress").
		Select("questions.company_id AS company_id, COUNT(*) AS count").
		Joins("JOIN questions ON questions.id = progress.question_id AND questions.deleted_at IS NULL").
		Where("progress.user_id = ? AND progress.status = ?", userID, model.StatusDone).
		Group("questions.company_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}

func toCountMap(rows []companyCount) map[string]int64 {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CompanyID] = row.Count
	}
	return counts
}
