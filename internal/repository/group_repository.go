package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sis-mentoria-api/internal/models"
)

// GroupRepository reads grupo_usuario.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new instance of GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// List returns every group ordered by id.
func (r *GroupRepository) List(ctx context.Context) ([]models.Group, error) {
	const query = `SELECT idgrupo, nome, descricao FROM grupo_usuario ORDER BY idgrupo`
	var groups []models.Group
	if err := conn(ctx, r.db).SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}
