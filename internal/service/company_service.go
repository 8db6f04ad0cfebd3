package service

import (
	"context"
	"errors"
	"solveit_backend/internal/model"
	"solveit_backend/internal/repository"
	"solveit_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

type CompanyService struct {
	CompanyRepo  *repository.CompanyRepository
	QuestionRepo *repository.QuestionRepository
	ProgressRepo *repository.ProgressRepository
}

func NewCompanyService(companyRepo *repository.CompanyRepository, questionRepo *repository.QuestionRepository, progressRepo *repository.ProgressRepository) *CompanyService {
	return &CompanyService{
		CompanyRepo:  companyRepo,
		QuestionRepo: questionRepo,
		ProgressRepo: progressRepo,
	}
}

// ListCompanies returns the filtered company list. userID may be empty, in which
// case every solved count is 0.
func (s *CompanyService) ListCompanies(ctx context.Context, filterType, query, userID string) ([]model.CompanySummary, error) {
	filter := repository.CompanyFilter{
		Field: normalizeFilterType(filterType),
		Query: strings.TrimSpace(query),
	}

	companies, err := s.CompanyRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	questionCounts, err := s.CompanyRepo.QuestionCounts(ctx)
	if err != nil {
		return nil, err
	}

	solvedCounts := map[string]int64{}
	if userID != "" {
		solvedCounts, err = s.CompanyRepo.SolvedCounts(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	summaries := make([]model.CompanySummary, 0, len(companies))
	for _, c := range companies {
		summaries = append(summaries, model.CompanySummary{
			ID:            c.ID,
			Name:          c.Name,
			Slug:          c.Slug,
			QuestionCount: questionCounts[c.ID],
			SolvedCount:   solvedCounts[c.ID],
		})
	}
	return summaries, nil
}

// GetCompany looks a company up by id or slug and attaches the caller's status to
// each question. Questions without a record read as PENDING.
func (s *CompanyService) GetCompany(ctx context.Context, key, userID string) (*model.CompanyDetail, error) {
	company, err := s.CompanyRepo.FindByIDOrSlug(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCompanyNotFound
		}
		return nil, err
	}

	questions, err := s.QuestionRepo.ListByCompany(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	statuses := map[string]model.ProgressStatus{}
	if userID != "" {
		statuses, err = s.ProgressRepo.StatusesForCompany(ctx, userID, company.ID)
		if err != nil {
			return nil, err
		}
	}

	detail := &model.CompanyDetail{
		ID:        company.ID,
		Name:      company.Name,
		Slug:      company.Slug,
		Questions: make([]model.QuestionWithStatus, 0, len(questions)),
	}
	for _, q := range questions {
		status, ok := statuses[q.ID]
		if !ok {
			status = model.StatusPending
		}
		detail.Questions = append(detail.Questions, model.QuestionWithStatus{Question: q, Status: status})
	}
	return detail, nil
}

func normalizeFilterType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "topic":
		return "topic"
	case "question":
		return "question"
	default:
		return "company"
	}
}
