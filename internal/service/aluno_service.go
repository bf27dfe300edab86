package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sis-mentoria-api/internal/auth"
	"github.com/noah-isme/sis-mentoria-api/internal/dto"
	"github.com/noah-isme/sis-mentoria-api/internal/models"
	"github.com/noah-isme/sis-mentoria-api/internal/repository"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
	"github.com/noah-isme/sis-mentoria-api/pkg/sanitize"
)

type alunoUserRepository interface {
	ExistsByLogin(ctx context.Context, login string) (bool, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

type alunoInfoRepository interface {
	Create(ctx context.Context, info *models.AlunoInfo) error
}

// AlunoService registers students.
type AlunoService struct {
	users     alunoUserRepository
	infos     alunoInfoRepository
	tx        transactor
	roles     *auth.RoleRegistry
	hasher    auth.Hasher
	metrics   *MetricsService
	sanitizer *sanitize.TextSanitizer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAlunoService constructs an AlunoService.
func NewAlunoService(users alunoUserRepository, infos alunoInfoRepository, tx transactor, roles *auth.RoleRegistry, hasher auth.Hasher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AlunoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	prepareValidator(validate)
	if roles == nil {
		roles = auth.NewRoleRegistry(nil)
	}
	return &AlunoService{
		users:     users,
		infos:     infos,
		tx:        tx,
		roles:     roles,
		hasher:    hasher,
		metrics:   metrics,
		sanitizer: sanitize.NewTextSanitizer(),
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create registers an aluno whose login is its email. The CPF is stored as digits only.
// The user row and its aluno_info row are written in one transaction.
func (s *AlunoService) Create(ctx context.Context, req dto.CreateAlunoRequest) (*dto.AlunoCreated, error) {
	req.Nome = s.sanitizer.Clean(req.Nome)
	req.Email = normalizeLogin(req.Email)
	req.CPF = strings.TrimSpace(req.CPF)
	req.Telefone = strings.TrimSpace(req.Telefone)
	req.CEP = strings.TrimSpace(req.CEP)
	if req.Nome == "" || req.Email == "" || req.CPF == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Preencha nome, email e CPF.")
	}
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	cpf := cpfDigits(req.CPF)

	group, ok := s.roles.GroupByName(models.RoleAluno)
	if !ok {
		return nil, appErrors.Internal(errors.New("grupo aluno ausente"), "resolve aluno group")
	}

	var digest *string
	if req.Senha != "" {
		hashed, err := s.hasher.Hash(req.Senha)
		if err != nil {
			return nil, appErrors.Internal(err, "hash password")
		}
		digest = &hashed
	}

	var created dto.AlunoCreated
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		taken, err := s.users.ExistsByLogin(ctx, req.Email)
		if err != nil {
			return appErrors.Internal(err, "check email")
		}
		if taken {
			return appErrors.Clone(appErrors.ErrConflict, "Já existe um usuário com este email.")
		}
		taken, err = s.users.ExistsByCPF(ctx, cpf)
		if err != nil {
			return appErrors.Internal(err, "check cpf")
		}
		if taken {
			return appErrors.Clone(appErrors.ErrConflict, "Já existe um usuário com este CPF.")
		}

		user := &models.User{
			Nome:         req.Nome,
			CPF:          &cpf,
			Login:        req.Email,
			PasswordHash: digest,
			GroupID:      group.ID,
			Active:       true,
		}
		if digest != nil {
			changedAt := s.now().UTC()
			user.PasswordChangedAt = &changedAt
		}
		if err := s.users.Create(ctx, user); err != nil {
			return duplicateAluno(err, "create user")
		}

		reference := uuid.NewString()
		info := &models.AlunoInfo{
			UserID:            user.ID,
			Email:             req.Email,
			CPF:               &cpf,
			Phone:             optional(req.Telefone),
			CEP:               optional(req.CEP),
			RegistrationState: models.RegistrationPre,
			PaymentState:      models.PaymentPending,
			ExternalReference: &reference,
		}
		if err := s.infos.Create(ctx, info); err != nil {
			return duplicateAluno(err, "create aluno info")
		}

		created = dto.AlunoCreated{
			User: dto.NewUserView(&models.UserWithGroup{User: *user, GroupName: group.Name, GroupDescription: group.Description}),
			Info: info,
		}
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	s.metrics.RecordRegistration("aluno")
	s.logger.Info("aluno registered", zap.Int64("user_id", created.User.ID))
	return &created, nil
}

func duplicateAluno(err error, op string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "Já existe um aluno cadastrado com este email ou CPF.")
	}
	return appErrors.Internal(err, op)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
