package handlers

import "github.com/Migueljuen/ItineraBack/internal/models"

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

// buildPaginationMeta derives the page counts echoed on list responses.
func buildPaginationMeta(page, limit, total int) models.PaginationMeta {
	meta := models.PaginationMeta{Page: page, Limit: limit, Total: total}
	if total > 0 && limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	return meta
}
