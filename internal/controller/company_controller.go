package controller

import (
	"errors"
	"solveit_backend/internal/service"
	"solveit_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CompanyController struct {
	CompanyService *service.CompanyService
}

func NewCompanyController(companyService *service.CompanyService) *CompanyController {
	return &CompanyController{CompanyService: companyService}
}

// ListCompanies godoc
// @Summary List companies
// @Description Filters by company name, question topic or question title (case-insensitive substring)
// @Tags companies
// @Produce  json
// @Param   type  query string false "company | topic | question" default(company)
// @Param   query query string false "Search text"
// @Success 200 {object} util.Response{data=[]model.CompanySummary} "Success"
// @Router /api/companies [get]
func (c *CompanyController) ListCompanies(ctx *gin.Context) {
	companies, err := c.CompanyService.ListCompanies(
		ctx.Request.Context(),
		ctx.DefaultQuery("type", "company"),
		ctx.Query("query"),
		currentUserID(ctx),
	)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, companies)
}

// GetCompany godoc
// @Summary Company detail
// @Description Accepts the company id or its slug
// @Tags companies
// @Produce  json
// @Param   id path string true "Company id or slug"
// @Success 200 {object} util.Response{data=model.CompanyDetail} "Success"
// @Failure 404 {object} util.Response "Company not found"
// @Router /api/companies/{id} [get]
func (c *CompanyController) GetCompany(ctx *gin.Context) {
	detail, err := c.CompanyService.GetCompany(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx))
	if err != nil {
		if errors.Is(err, util.ErrCompanyNotFound) {
			util.NotFound(ctx, "Company not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, detail)
}

// currentUserID is empty for anonymous callers.
func currentUserID(ctx *gin.Context) string {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserID
}
