package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sis-mentoria-api/internal/auth"
	"github.com/noah-isme/sis-mentoria-api/internal/dto"
	"github.com/noah-isme/sis-mentoria-api/internal/models"
	"github.com/noah-isme/sis-mentoria-api/internal/repository"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
	"github.com/noah-isme/sis-mentoria-api/pkg/sanitize"
)

type authUserRepository interface {
	FindActiveByLogin(ctx context.Context, login string) (*models.UserWithGroup, error)
	FindActiveByID(ctx context.Context, id int64) (*models.UserWithGroup, error)
	ExistsByLogin(ctx context.Context, login string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastAccess(ctx context.Context, id int64, ts time.Time) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string, changedAt time.Time) error
}

type transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	msgRegisterMissingFields = "Preencha todos os campos obrigatórios."
	msgLoginTaken            = "Login já está em uso."
	msgUserNotFound          = "Usuário não encontrado"
)

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authUserRepository
	tx        transactor
	roles     *auth.RoleRegistry
	hasher    auth.Hasher
	codec     auth.Codec
	metrics   *MetricsService
	sanitizer *sanitize.TextSanitizer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, tx transactor, roles *auth.RoleRegistry, hasher auth.Hasher, codec auth.Codec, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AuthService {
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
	return &AuthService{
		repo:      repo,
		tx:        tx,
		roles:     roles,
		hasher:    hasher,
		codec:     codec,
		metrics:   metrics,
		sanitizer: sanitize.NewTextSanitizer(),
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Login authenticates a user and issues a session token. Lookup, last access stamp and
// issuance share one transaction.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResult, error) {
	req.Login = normalizeLogin(req.Login)
	req.Grupo = strings.TrimSpace(req.Grupo)
	if err := validateStruct(s.validator, req); err != nil {
		s.metrics.RecordLogin(LoginOutcomeValidationError)
		return nil, err
	}

	var result *dto.LoginResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.repo.FindActiveByLogin(ctx, req.Login)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.ErrInvalidCredentials
			}
			return appErrors.Internal(err, "load user")
		}
		if !user.HasPassword() {
			return appErrors.ErrPasswordNotSet
		}
		if !s.hasher.Compare(req.Senha, *user.PasswordHash) {
			return appErrors.ErrInvalidCredentials
		}
		if req.Grupo != "" && user.GroupName != req.Grupo {
			return appErrors.ErrWrongUserType
		}

		now := s.now().UTC()
		if err := s.repo.UpdateLastAccess(ctx, user.ID, now); err != nil {
			return appErrors.Internal(err, "update last access")
		}
		user.LastAccess = &now

		token, err := s.codec.Encode(models.ClaimSet{
			UserID:   user.ID,
			Login:    user.Login,
			GroupID:  user.GroupID,
			Role:     user.GroupName,
			IssuedAt: now,
		})
		if err != nil {
			return appErrors.Internal(err, "issue token")
		}

		result = &dto.LoginResult{Token: token, User: dto.NewUserView(user)}
		return nil
	})
	if err != nil {
		outcome := loginOutcome(err)
		s.metrics.RecordLogin(outcome)
		if outcome == LoginOutcomeError {
			s.logger.Error("login failed", zap.String("login", req.Login), zap.Error(err))
		} else {
			s.logger.Info("login rejected", zap.String("login", req.Login), zap.String("outcome", outcome))
		}
		return nil, appErrors.FromError(err)
	}

	s.metrics.RecordLogin(LoginOutcomeSuccess)
	s.logger.Info("login succeeded", zap.Int64("user_id", result.User.ID), zap.String("grupo", result.User.Group.Name))
	return result, nil
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, appErrors.ErrInvalidCredentials):
		return LoginOutcomeInvalid
	case errors.Is(err, appErrors.ErrPasswordNotSet):
		return LoginOutcomeNoPassword
	case errors.Is(err, appErrors.ErrWrongUserType):
		return LoginOutcomeWrongGroup
	default:
		return LoginOutcomeError
	}
}

// VerifyToken decodes a token without touching the database.
func (s *AuthService) VerifyToken(token string) (*models.ClaimSet, error) {
	return s.codec.Decode(token)
}

// FetchLoggedInUser re-reads the caller's record.
func (s *AuthService) FetchLoggedInUser(ctx context.Context, identity *models.Identity) (*dto.UserView, error) {
	if identity == nil {
		return nil, appErrors.ErrUnauthorized
	}
	user, err := s.repo.FindActiveByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgUserNotFound)
		}
		return nil, appErrors.Internal(err, "load current user")
	}
	view := dto.NewUserView(user)
	return &view, nil
}

// EnsureActive fails when the user was deactivated or removed after the token was issued.
func (s *AuthService) EnsureActive(ctx context.Context, userID int64) error {
	if _, err := s.repo.FindActiveByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "Usuário inativo ou inexistente")
		}
		return appErrors.Internal(err, "check active user")
	}
	return nil
}

// Register creates a user in the named group.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserView, error) {
	req.Nome = s.sanitizer.Clean(req.Nome)
	req.Login = normalizeLogin(req.Login)
	req.Grupo = strings.TrimSpace(req.Grupo)
	if req.Nome == "" || req.Login == "" || req.Senha == "" || req.Grupo == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, msgRegisterMissingFields)
	}
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}

	var (
		view  dto.UserView
		group models.Group
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		taken, err := s.repo.ExistsByLogin(ctx, req.Login)
		if err != nil {
			return appErrors.Internal(err, "check login")
		}
		if taken {
			return appErrors.Clone(appErrors.ErrConflict, msgLoginTaken)
		}

		var ok bool
		if group, ok = s.roles.GroupByName(req.Grupo); !ok {
			return appErrors.ErrGroupNotFound
		}

		digest, err := s.hasher.Hash(req.Senha)
		if err != nil {
			return appErrors.Internal(err, "hash password")
		}

		changedAt := s.now().UTC()
		user := &models.User{
			Nome:              req.Nome,
			Login:             req.Login,
			PasswordHash:      &digest,
			GroupID:           group.ID,
			Active:            true,
			PasswordChangedAt: &changedAt,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msgLoginTaken)
			}
			return appErrors.Internal(err, "create user")
		}

		view = dto.NewUserView(&models.UserWithGroup{User: *user, GroupName: group.Name, GroupDescription: group.Description})
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	s.metrics.RecordRegistration("usuario")
	s.logger.Info("user registered", zap.Int64("user_id", view.ID), zap.String("grupo", group.Name))
	return &view, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, identity *models.Identity, req dto.ChangePasswordRequest) error {
	if identity == nil {
		return appErrors.ErrUnauthorized
	}
	if err := validateStruct(s.validator, req); err != nil {
		return err
	}

	user, err := s.repo.FindActiveByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, msgUserNotFound)
		}
		return appErrors.Internal(err, "load user")
	}
	if user.HasPassword() && !s.hasher.Compare(req.SenhaAtual, *user.PasswordHash) {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "Senha atual incorreta")
	}

	digest, err := s.hasher.Hash(req.NovaSenha)
	if err != nil {
		return appErrors.Internal(err, "hash password")
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, digest, s.now().UTC()); err != nil {
		return appErrors.Internal(err, "update password")
	}

	s.logger.Info("password changed", zap.Int64("user_id", user.ID))
	return nil
}

// Impersonate lets an administrator act as an active aluno. The issued token remembers
// the administrator so the session can be handed back.
func (s *AuthService) Impersonate(ctx context.Context, identity *models.Identity, targetID int64) (*dto.LoginResult, error) {
	if identity == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if identity.Impersonating {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Encerre a personificação atual antes de iniciar outra")
	}
	if identity.EffectiveRole != models.RoleAdministrador {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Acesso permitido apenas para administradores")
	}

	target, err := s.repo.FindActiveByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Aluno não encontrado")
		}
		return nil, appErrors.Internal(err, "load impersonation target")
	}
	if target.GroupName != models.RoleAluno {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Apenas alunos podem ser personificados")
	}

	token, err := s.codec.Encode(models.ClaimSet{
		UserID:   target.ID,
		Login:    target.Login,
		GroupID:  target.GroupID,
		Role:     target.GroupName,
		IssuedAt: s.now().UTC(),
		Impersonation: &models.Impersonation{
			OriginalUserID: identity.UserID,
			OriginalRole:   identity.Role,
		},
	})
	if err != nil {
		return nil, appErrors.Internal(err, "issue token")
	}

	s.logger.Info("impersonation started", zap.Int64("admin_id", identity.UserID), zap.Int64("target_id", target.ID))
	return &dto.LoginResult{Token: token, User: dto.NewUserView(target)}, nil
}

// StopImpersonation issues a fresh token for the identity behind an impersonated session.
func (s *AuthService) StopImpersonation(ctx context.Context, identity *models.Identity) (*dto.LoginResult, error) {
	if identity == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !identity.Impersonating {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Nenhuma personificação ativa")
	}

	original, err := s.repo.FindActiveByID(ctx, identity.OriginalUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Usuário original inativo ou inexistente")
		}
		return nil, appErrors.Internal(err, "load original user")
	}

	token, err := s.codec.Encode(models.ClaimSet{
		UserID:   original.ID,
		Login:    original.Login,
		GroupID:  original.GroupID,
		Role:     original.GroupName,
		IssuedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, appErrors.Internal(err, "issue token")
	}

	s.logger.Info("impersonation ended", zap.Int64("admin_id", original.ID), zap.Int64("target_id", identity.UserID))
	return &dto.LoginResult{Token: token, User: dto.NewUserView(original)}, nil
}
