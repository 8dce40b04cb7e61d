// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read access to companies and their
// call links. Both tables are joined in memory by the rollup core, so the
// repository only offers unfiltered list reads.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

// ListCompanies returns all companies.
func ListCompanies(ctx context.Context, db *gorm.DB) ([]domain.Company, error) {
	var out []domain.Company
	err := db.WithContext(ctx).Find(&out).Error
	return out, err
}

// ListCompanyCalls returns all call-to-company links.
func ListCompanyCalls(ctx context.Context, db *gorm.DB) ([]domain.CompanyCall, error) {
	var out []domain.CompanyCall
	err := db.WithContext(ctx).Find(&out).Error
	return out, err
}
