package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Migueljuen/ItineraBack/internal/models"
)

type CreateExperienceInput struct {
	PartnerID   int64
	Title       string
	Description *string
	Location    string
	Price       float64
	ImageURL    *string
}

type ExperienceListFilter struct {
	Location string
	MaxPrice *float64
}

type ExperienceRepository struct {
	db DBTX
}

func NewExperienceRepository(db DBTX) *ExperienceRepository {
	return &ExperienceRepository{db: db}
}

const experienceColumns = `id, partner_id, title, description, location, price, image_url, created_at`

func (r *ExperienceRepository) Create(ctx context.Context, input CreateExperienceInput) (*models.Experience, error) {
	query := `
		INSERT INTO experiences (partner_id, title, description, location, price, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + experienceColumns

	var experience models.Experience
	err := r.db.QueryRow(ctx, query,
		input.PartnerID,
		input.Title,
		input.Description,
		input.Location,
		input.Price,
		input.ImageURL,
	).Scan(
		&experience.ID,
		&experience.PartnerID,
		&experience.Title,
		&experience.Description,
		&experience.Location,
		&experience.Price,
		&experience.ImageURL,
		&experience.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &experience, nil
}

func (r *ExperienceRepository) GetByID(ctx context.Context, experienceID int64) (*models.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE id = $1`

	var experience models.Experience
	err := r.db.QueryRow(ctx, query, experienceID).Scan(
		&experience.ID,
		&experience.PartnerID,
		&experience.Title,
		&experience.Description,
		&experience.Location,
		&experience.Price,
		&experience.ImageURL,
		&experience.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &experience, nil
}

func (r *ExperienceRepository) List(ctx context.Context, filter ExperienceListFilter) ([]models.Experience, error) {
	conditions := []string{"TRUE"}
	args := []any{}

	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		conditions = append(conditions, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}

	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	experiences := make([]models.Experience, 0)
	for rows.Next() {
		var experience models.Experience
		if err := rows.Scan(
			&experience.ID,
			&experience.PartnerID,
			&experience.Title,
			&experience.Description,
			&experience.Location,
			&experience.Price,
			&experience.ImageURL,
			&experience.CreatedAt,
		); err != nil {
			return nil, err
		}
		experiences = append(experiences, experience)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return experiences, nil
}

func (r *ExperienceRepository) ListByPartner(ctx context.Context, partnerID int64) ([]models.Experience, error) {
	return r.listWhere(ctx, `partner_id = $1`, partnerID)
}

func (r *ExperienceRepository) listWhere(ctx context.Context, condition string, args ...any) ([]models.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE ` + condition +
		` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	experiences := make([]models.Experience, 0)
	for rows.Next() {
		var experience models.Experience
		if err := rows.Scan(
			&experience.ID,
			&experience.PartnerID,
			&experience.Title,
			&experience.Description,
			&experience.Location,
			&experience.Price,
			&experience.ImageURL,
			&experience.CreatedAt,
		); err != nil {
			return nil, err
		}
		experiences = append(experiences, experience)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return experiences, nil
}
