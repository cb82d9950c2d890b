package usecase

import (
	"context"
	"testing"

	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/repository"
	"go-clinic-scheduling/pkg/jwt"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthTestUsecase(t *testing.T) (AuthUsecase, *gorm.DB, *redis.Client, *jwt.JWTService) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger()
	redisClient := newTestRedis(t)
	jwtService := newTestJWTService()
	uc := NewAuthUsecase(
		db,
		log,
		repository.NewPatientRepository(),
		repository.NewDoctorRepository(),
		newTestAuditService(log),
		jwtService,
		redisClient,
	)
	return uc, db, redisClient, jwtService
}

func registerTestAccounts(t *testing.T, uc AuthUsecase) (*dto.UserResponse, *dto.UserResponse) {
	t.Helper()
	patient, err := uc.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{
		FullName: "Budi Santoso",
		Email:    "budi@mail.test",
		Password: "secret123",
		Age:      34,
	})
	require.NoError(t, err)
	doctor, err := uc.RegisterDoctor(context.Background(), &dto.RegisterDoctorRequest{
		FullName:       "Dr. Siti Rahma",
		Email:          "siti@clinic.test",
		Password:       "secret123",
		Specialization: "Cardiology",
	})
	require.NoError(t, err)
	return patient, doctor
}

func TestRegisterPatient(t *testing.T) {
	uc, db, _, _ := newAuthTestUsecase(t)

	resp, err := uc.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{
		FullName: "Budi Santoso",
		Email:    "budi@mail.test",
		Password: "secret123",
		Age:      34,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.UserTypePatient, resp.UserType)
	assert.Equal(t, 34, resp.Age)

	// Passwords are never stored in the clear.
	var stored entity.Patient
	require.NoError(t, db.First(&stored, resp.ID).Error)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.NotEmpty(t, stored.Password)
}

func TestRegisterEmailUniqueAcrossTables(t *testing.T) {
	uc, _, _, _ := newAuthTestUsecase(t)
	registerTestAccounts(t, uc)

	// Same table.
	_, err := uc.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{
		FullName: "Other Budi", Email: "budi@mail.test", Password: "secret123", Age: 40,
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	// A doctor cannot claim a patient's email, and vice versa.
	_, err = uc.RegisterDoctor(context.Background(), &dto.RegisterDoctorRequest{
		FullName: "Dr. Budi", Email: "budi@mail.test", Password: "secret123", Specialization: "Neurology",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = uc.RegisterPatient(context.Background(), &dto.RegisterPatientRequest{
		FullName: "Fake Siti", Email: "siti@clinic.test", Password: "secret123", Age: 50,
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	uc, _, redisClient, jwtService := newAuthTestUsecase(t)
	patient, doctor := registerTestAccounts(t, uc)

	tokens, err := uc.Login(context.Background(), &dto.LoginRequest{
		Email: "budi@mail.test", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, int64(900), tokens.ExpiresIn)

	claims, err := jwtService.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, claims.UserID)
	assert.Equal(t, entity.UserTypePatient, claims.UserType)
	assert.Equal(t, jwt.AccessToken, claims.TokenType)

	// Both tokens are tracked server side for revocation.
	exists, err := redisClient.Exists(context.Background(),
		accessTokenKey(claims.UserType, claims.UserID, claims.TokenID)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	// The same endpoint serves doctors.
	tokens, err = uc.Login(context.Background(), &dto.LoginRequest{
		Email: "siti@clinic.test", Password: "secret123",
	})
	require.NoError(t, err)
	claims, err = jwtService.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, doctor.ID, claims.UserID)
	assert.Equal(t, entity.UserTypeDoctor, claims.UserType)
}

func TestLoginInvalidCredentials(t *testing.T) {
	uc, _, _, _ := newAuthTestUsecase(t)
	registerTestAccounts(t, uc)

	// Wrong password and unknown email fail the same way.
	_, err := uc.Login(context.Background(), &dto.LoginRequest{
		Email: "budi@mail.test", Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = uc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@mail.test", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokenRotates(t *testing.T) {
	uc, _, _, jwtService := newAuthTestUsecase(t)
	registerTestAccounts(t, uc)

	tokens, err := uc.Login(context.Background(), &dto.LoginRequest{
		Email: "budi@mail.test", Password: "secret123",
	})
	require.NoError(t, err)

	rotated, err := uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: tokens.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	claims, err := jwtService.ValidateToken(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, entity.UserTypePatient, claims.UserType)

	// The old refresh token was revoked by the rotation.
	_, err = uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: tokens.RefreshToken,
	})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	uc, _, _, _ := newAuthTestUsecase(t)
	registerTestAccounts(t, uc)

	tokens, err := uc.Login(context.Background(), &dto.LoginRequest{
		Email: "budi@mail.test", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: tokens.AccessToken,
	})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: "not-a-jwt",
	})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesTokens(t *testing.T) {
	uc, _, redisClient, jwtService := newAuthTestUsecase(t)
	registerTestAccounts(t, uc)

	tokens, err := uc.Login(context.Background(), &dto.LoginRequest{
		Email: "budi@mail.test", Password: "secret123",
	})
	require.NoError(t, err)

	accessClaims, err := jwtService.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	refreshClaims, err := jwtService.ValidateToken(tokens.RefreshToken)
	require.NoError(t, err)

	ctx := actorCtx(accessClaims.UserID, accessClaims.UserType)
	require.NoError(t, uc.Logout(ctx, accessClaims.TokenID, refreshClaims.TokenID))

	exists, err := redisClient.Exists(context.Background(),
		accessTokenKey(accessClaims.UserType, accessClaims.UserID, accessClaims.TokenID),
		refreshTokenKey(refreshClaims.UserType, refreshClaims.UserID, refreshClaims.TokenID),
	).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	// The revoked refresh token can no longer be rotated.
	_, err = uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: tokens.RefreshToken,
	})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestGetCurrentUser(t *testing.T) {
	uc, _, _, _ := newAuthTestUsecase(t)
	patient, doctor := registerTestAccounts(t, uc)

	me, err := uc.GetCurrentUser(actorCtx(patient.ID, entity.UserTypePatient))
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", me.FullName)
	assert.Equal(t, entity.UserTypePatient, me.UserType)

	me, err = uc.GetCurrentUser(actorCtx(doctor.ID, entity.UserTypeDoctor))
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", me.Specialization)

	_, err = uc.GetCurrentUser(actorCtx(999, entity.UserTypePatient))
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = uc.GetCurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrActorMissing)
}
