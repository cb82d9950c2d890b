package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-clinic-scheduling/internal/converter"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/internal/service"
	"go-clinic-scheduling/pkg/jwt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrActorMissing       = errors.New("user not found in context")
)

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error)
	RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, accessTokenID, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context) (*dto.UserResponse, error)
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	patientRepo  repository.PatientRepository
	doctorRepo   repository.DoctorRepository
	auditService service.AuditService
	jwtService   *jwt.JWTService
	redisClient  *redis.Client
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		patientRepo:  patientRepo,
		doctorRepo:   doctorRepo,
		auditService: auditService,
		jwtService:   jwtService,
		redisClient:  redisClient,
	}
}

// RegisterPatient creates a patient account. The email must be unused by
// both patients and doctors; no email is ever shared across the two
// identity tables.
func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	taken, err := u.emailTaken(tx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	patient := &entity.Patient{
		FullName: req.FullName,
		Email:    req.Email,
		Password: string(hashedPassword),
		Age:      req.Age,
	}

	if err := u.patientRepo.Create(tx, patient); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, err
	}

	if err := u.auditService.Log(tx, &patient.ID, entity.UserTypePatient, entity.AuditActionPatientRegister, entity.JSON{
		"email": patient.Email,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.PatientToUserResponse(patient), nil
}

// RegisterDoctor creates a doctor account under the same cross-table email
// uniqueness rule as RegisterPatient.
func (u *authUsecase) RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.UserResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	taken, err := u.emailTaken(tx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	doctor := &entity.Doctor{
		FullName:       req.FullName,
		Email:          req.Email,
		Password:       string(hashedPassword),
		Specialization: req.Specialization,
	}

	if err := u.doctorRepo.Create(tx, doctor); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	if err := u.auditService.Log(tx, &doctor.ID, entity.UserTypeDoctor, entity.AuditActionDoctorRegister, entity.JSON{
		"email": doctor.Email,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorToUserResponse(doctor), nil
}

// Login authenticates against the patient table first, then the doctor
// table. Unknown email and wrong password fail identically so callers
// cannot enumerate accounts.
func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	db := u.db.WithContext(ctx)

	var (
		userID   int64
		userType string
		hash     string
	)

	patient, err := u.patientRepo.FindByEmail(db, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find patient by email: %+v", err)
		return nil, err
	}
	if patient != nil {
		userID, userType, hash = patient.ID, entity.UserTypePatient, patient.Password
	} else {
		doctor, err := u.doctorRepo.FindByEmail(db, req.Email)
		if err != nil {
			u.log.Warnf("Failed to find doctor by email: %+v", err)
			return nil, err
		}
		if doctor == nil {
			return nil, ErrInvalidCredentials
		}
		userID, userType, hash = doctor.ID, entity.UserTypeDoctor, doctor.Password
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := u.issueTokens(ctx, userID, userType, req.Email)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.Log(db, &userID, userType, entity.AuditActionUserLogin, entity.JSON{
		"email": req.Email,
	}); err != nil {
		u.log.Warnf("Failed to audit login (non-fatal): %+v", err)
	}

	return tokens, nil
}

func (u *authUsecase) Logout(ctx context.Context, accessTokenID, refreshTokenID string) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return ErrActorMissing
	}
	userType, ok := middleware.GetUserTypeFromContext(ctx)
	if !ok {
		return ErrActorMissing
	}

	keys := []string{accessTokenKey(userType, userID, accessTokenID)}
	if refreshTokenID != "" {
		keys = append(keys, refreshTokenKey(userType, userID, refreshTokenID))
	}

	if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
		u.log.Warnf("Failed to delete session tokens: %+v", err)
		return err
	}

	if err := u.auditService.Log(u.db.WithContext(ctx), &userID, userType, entity.AuditActionUserLogout, nil); err != nil {
		u.log.Warnf("Failed to audit logout (non-fatal): %+v", err)
	}

	return nil
}

// RefreshToken rotates a refresh token: the old token is revoked and a new
// access/refresh pair is issued.
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	refreshKey := refreshTokenKey(claims.UserType, claims.UserID, claims.TokenID)
	exists, err := u.redisClient.Exists(ctx, refreshKey).Result()
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if exists == 0 {
		return nil, ErrTokenRevoked
	}

	if err := u.redisClient.Del(ctx, refreshKey).Err(); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(ctx, claims.UserID, claims.UserType, claims.Email)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context) (*dto.UserResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrActorMissing
	}
	userType, ok := middleware.GetUserTypeFromContext(ctx)
	if !ok {
		return nil, ErrActorMissing
	}

	db := u.db.WithContext(ctx)

	switch userType {
	case entity.UserTypePatient:
		patient, err := u.patientRepo.FindByID(db, userID)
		if err != nil {
			u.log.Warnf("Failed to find patient by ID: %+v", err)
			return nil, err
		}
		if patient == nil {
			return nil, ErrUserNotFound
		}
		return converter.PatientToUserResponse(patient), nil
	case entity.UserTypeDoctor:
		doctor, err := u.doctorRepo.FindByID(db, userID)
		if err != nil {
			u.log.Warnf("Failed to find doctor by ID: %+v", err)
			return nil, err
		}
		if doctor == nil {
			return nil, ErrUserNotFound
		}
		return converter.DoctorToUserResponse(doctor), nil
	default:
		return nil, ErrUserNotFound
	}
}

// issueTokens generates an access/refresh pair and records both in Redis so
// they can be revoked before expiry.
func (u *authUsecase) issueTokens(ctx context.Context, userID int64, userType, email string) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, userType, email)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, userType, email)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	accessKey := accessTokenKey(userType, userID, accessTokenID)
	refreshKey := refreshTokenKey(userType, userID, refreshTokenID)

	if err := u.redisClient.Set(ctx, accessKey, "valid", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, refreshKey, "valid", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

// emailTaken reports whether the email exists in either identity table.
func (u *authUsecase) emailTaken(db *gorm.DB, email string) (bool, error) {
	patient, err := u.patientRepo.FindByEmail(db, email)
	if err != nil {
		u.log.Warnf("Failed to check patient email: %+v", err)
		return false, err
	}
	if patient != nil {
		return true, nil
	}

	doctor, err := u.doctorRepo.FindByEmail(db, email)
	if err != nil {
		u.log.Warnf("Failed to check doctor email: %+v", err)
		return false, err
	}
	return doctor != nil, nil
}

func accessTokenKey(userType string, userID int64, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%d:%s", userType, userID, tokenID)
}

func refreshTokenKey(userType string, userID int64, tokenID string) string {
	return fmt.Sprintf("refresh_token:%s:%d:%s", userType, userID, tokenID)
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint
// violation containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
