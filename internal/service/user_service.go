package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sis-mentoria-api/internal/auth"
	"github.com/noah-isme/sis-mentoria-api/internal/dto"
	"github.com/noah-isme/sis-mentoria-api/internal/models"
	"github.com/noah-isme/sis-mentoria-api/internal/repository"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
	"github.com/noah-isme/sis-mentoria-api/pkg/export"
	"github.com/noah-isme/sis-mentoria-api/pkg/sanitize"
)

type userRepository interface {
	FindByID(ctx context.Context, id int64) (*models.UserWithGroup, error)
	ListAlunos(ctx context.Context, filter models.UserFilter) ([]models.AlunoListItem, int, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type alunoInfoReader interface {
	FindByUserID(ctx context.Context, userID int64) (*models.AlunoInfo, error)
}

var rosterColumns = []export.Column{
	{Key: "id", Label: "ID"},
	{Key: "nome", Label: "Nome"},
	{Key: "login", Label: "Login"},
	{Key: "cpf", Label: "CPF"},
	{Key: "telefone", Label: "Telefone"},
	{Key: "situacao", Label: "Situação"},
	{Key: "status_cadastro", Label: "Cadastro"},
	{Key: "status_pagamento", Label: "Pagamento"},
	{Key: "ultimo_acesso", Label: "Último acesso"},
}

// UserService handles administrative user workflows.
type UserService struct {
	repo      userRepository
	infos     alunoInfoReader
	roles     *auth.RoleRegistry
	sanitizer *sanitize.TextSanitizer
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, infos alunoInfoReader, roles *auth.RoleRegistry, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if roles == nil {
		roles = auth.NewRoleRegistry(nil)
	}
	return &UserService{repo: repo, infos: infos, roles: roles, sanitizer: sanitize.NewTextSanitizer(), logger: logger}
}

// ListAlunos returns one page of the student roster.
func (s *UserService) ListAlunos(ctx context.Context, query dto.ListAlunosQuery) ([]models.AlunoListItem, models.Pagination, error) {
	filter, err := s.alunoFilter(query)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	items, total, err := s.repo.ListAlunos(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Internal(err, "list alunos")
	}
	if items == nil {
		items = []models.AlunoListItem{}
	}

	page, size := repository.NormalisePage(filter.Page, filter.PageSize)
	return items, models.NewPagination(page, size, total), nil
}

// ExportAlunos renders the filtered roster, capped at repository.MaxExportRows lines.
func (s *UserService) ExportAlunos(ctx context.Context, format string, query dto.ListAlunosQuery) (*export.Document, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Formato de exportação inválido. Use csv ou pdf.")
	}

	filter, err := s.alunoFilter(query)
	if err != nil {
		return nil, err
	}
	filter.Page, filter.PageSize = 1, -1

	items, _, err := s.repo.ListAlunos(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "list alunos for export")
	}

	data := export.Dataset{Title: "Alunos", Columns: rosterColumns, Rows: make([]map[string]string, 0, len(items))}
	for _, item := range items {
		data.Rows = append(data.Rows, rosterRow(item))
	}

	doc, err := export.Build(f, "alunos", data)
	if err != nil {
		return nil, appErrors.Internal(err, "render roster")
	}
	s.logger.Info("roster exported", zap.String("format", string(f)), zap.Int("rows", len(items)))
	return doc, nil
}

// DeactivateAluno clears situacao of an aluno. Other groups are reported as not found.
func (s *UserService) DeactivateAluno(ctx context.Context, id int64) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Aluno não encontrado")
		}
		return appErrors.Internal(err, "load aluno")
	}
	if user.GroupName != models.RoleAluno {
		return appErrors.Clone(appErrors.ErrNotFound, "Aluno não encontrado")
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Aluno não encontrado")
		}
		return appErrors.Internal(err, "deactivate aluno")
	}
	s.logger.Info("aluno deactivated", zap.Int64("user_id", id))
	return nil
}

// GetSummary returns a user with its aluno_info when it has one.
func (s *UserService) GetSummary(ctx context.Context, id int64) (*dto.UserSummary, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgUserNotFound)
		}
		return nil, appErrors.Internal(err, "load user")
	}

	summary := &dto.UserSummary{User: dto.NewUserView(user)}
	if user.GroupName == models.RoleAluno && s.infos != nil {
		info, err := s.infos.FindByUserID(ctx, id)
		switch {
		case err == nil:
			summary.Info = info
		case !errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Internal(err, "load aluno info")
		}
	}
	return summary, nil
}

// SetActive toggles situacao. Callers cannot change their own account.
func (s *UserService) SetActive(ctx context.Context, actor *models.Identity, id int64, active bool) error {
	if actor != nil && actor.UserID == id {
		return appErrors.Clone(appErrors.ErrForbidden, "Não é possível alterar a própria situação")
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, msgUserNotFound)
		}
		return appErrors.Internal(err, "set situacao")
	}
	s.logger.Info("user situacao changed", zap.Int64("user_id", id), zap.Bool("situacao", active))
	return nil
}

func (s *UserService) alunoFilter(query dto.ListAlunosQuery) (models.UserFilter, error) {
	filter := models.UserFilter{
		Search:   s.sanitizer.Clean(query.Busca),
		Page:     query.Pagina,
		PageSize: query.Limite,
	}
	group, ok := s.roles.GroupByName(models.RoleAluno)
	if !ok {
		return filter, appErrors.Internal(errors.New("grupo aluno ausente"), "resolve aluno group")
	}
	filter.GroupID = &group.ID
	if raw := strings.TrimSpace(query.Situacao); raw != "" {
		active, err := parseSituacao(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "Dados inválidos: Situação deve ser ativo ou inativo")
		}
		filter.Active = &active
	}
	return filter, nil
}

func parseSituacao(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "ativo":
		return true, nil
	case "inativo":
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func rosterRow(item models.AlunoListItem) map[string]string {
	row := map[string]string{
		"id":       strconv.FormatInt(item.UserID, 10),
		"nome":     item.Nome,
		"login":    item.Login,
		"cpf":      deref(item.CPF),
		"telefone": deref(item.Phone),
		"situacao": "Inativo",
	}
	if item.Active {
		row["situacao"] = "Ativo"
	}
	if item.RegistrationState != nil {
		row["status_cadastro"] = string(*item.RegistrationState)
	}
	if item.PaymentState != nil {
		row["status_pagamento"] = string(*item.PaymentState)
	}
	if item.LastAccess != nil {
		row["ultimo_acesso"] = item.LastAccess.In(time.UTC).Format("02/01/2006 15:04")
	}
	return row
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
