package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/entitlement"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/jwt"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// RegistrationTxRunner crea usuario y membresía en una sola transacción.
type RegistrationTxRunner interface {
	RunRegistration(ctx context.Context, fn func(
		userRepo repository.UserRepository,
		membershipRepo repository.MembershipRepository,
	) error) error
}

// ActiveModuleResolver lo implementa entitlement.Resolver.
type ActiveModuleResolver interface {
	ResolveActiveModules(ctx context.Context, userID, companyID string) ([]*entity.Module, error)
}

// Deps dependencias de AuthUseCase. Migrations y Resolver son opcionales.
type Deps struct {
	UserRepo    repository.UserRepository
	CompanyRepo repository.CompanyRepository
	TxRunner    RegistrationTxRunner
	Resolver    ActiveModuleResolver
	Migrations  ports.MigrationTrigger
	Clock       ports.Clock
	Logger      *logger.Logger
	JWT         JWTConfig
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	txRunner    RegistrationTxRunner
	resolver    ActiveModuleResolver
	migrations  ports.MigrationTrigger
	clock       ports.Clock
	log         *logger.Logger
	jwtCfg      JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(d Deps) *AuthUseCase {
	if d.Clock == nil {
		d.Clock = ports.SystemClock
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	return &AuthUseCase{
		userRepo:    d.UserRepo,
		companyRepo: d.CompanyRepo,
		txRunner:    d.TxRunner,
		resolver:    d.Resolver,
		migrations:  d.Migrations,
		clock:       d.Clock,
		log:         d.Logger.Component("auth"),
		jwtCfg:      d.JWT,
	}
}

// RegisterUser crea un usuario y su membresía en la empresa: hashea password con bcrypt y persiste
// ambos en una transacción. Devuelve ErrEmailAlreadyExists si el email ya existe en esa company.
// Tras el commit notifica al servicio de migración con los tiers activos de la empresa.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if in.Email == "" || in.Password == "" || in.CompanyID == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.GetByEmailAndCompany(ctx, in.Email, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	company, err := uc.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound // empresa no existe
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	name := in.Name
	if name == "" {
		name = in.Email
	}
	role := in.Role
	if role == "" {
		role = entity.RoleMiembro
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    in.CompanyID,
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	membership := &entity.Membership{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CompanyID: in.CompanyID,
		RoleID:    role,
		CreatedAt: now,
	}
	err = uc.txRunner.RunRegistration(ctx, func(userRepo repository.UserRepository, membershipRepo repository.MembershipRepository) error {
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
		return membershipRepo.Create(ctx, membership)
	})
	if err != nil {
		// Conflictos de unicidad (alta concurrente con el mismo email) se devuelven tal cual.
		if errors.Is(err, domain.ErrEmailAlreadyExists) || errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	uc.notifyMigrations(ctx, user.ID, in.CompanyID)
	return toUserResponse(user), nil
}

func (uc *AuthUseCase) notifyMigrations(ctx context.Context, userID, companyID string) {
	if uc.migrations == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	types := []entity.ModuleType{}
	if uc.resolver != nil {
		modules, err := uc.resolver.ResolveActiveModules(ctx, userID, companyID)
		if err != nil {
			uc.log.Warn().Err(err).Str("company_id", companyID).Msg("no se pudieron resolver los módulos activos")
			return
		}
		types = entitlement.ModuleTypes(modules)
	}
	if err := uc.migrations.Trigger(ctx, companyID, types); err != nil {
		uc.log.Warn().Err(err).Str("company_id", companyID).Msg("no se pudo notificar al servicio de migración")
	}
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.CompanyID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
