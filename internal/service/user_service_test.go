package service

import (
	"context"
	"testing"

	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserValidation(t *testing.T) {
	db := newTestDB(t)
	tenantID := seedTenant(t, db)
	svc := NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, tenantID, CreateUserRequest{
		Username: "asmith",
		Email:    "asmith@example.com",
		Password: "s3cret!",
		Role:     "technician",
	})
	require.NoError(t, err)
	assert.Equal(t, tenantID, created.TenantID)
	assert.Equal(t, "technician", created.Role)

	_, err = svc.CreateUser(ctx, tenantID, CreateUserRequest{
		Username: "bjones",
		Email:    "bjones@example.com",
		Password: "s3cret!",
		Role:     "superuser",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")

	_, err = svc.CreateUser(ctx, tenantID, CreateUserRequest{
		Username: "asmith",
		Email:    "other@example.com",
		Password: "s3cret!",
		Role:     "manager",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username already exists")

	_, err = svc.CreateUser(ctx, tenantID, CreateUserRequest{
		Username: "cdoe",
		Email:    "asmith@example.com",
		Password: "s3cret!",
		Role:     "manager",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email already exists")
}

func TestLoginAndRefreshRotation(t *testing.T) {
	db := newTestDB(t)
	tenantID := seedTenant(t, db)
	svc := NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, tenantID, CreateUserRequest{
		Username: "asmith",
		Email:    "asmith@example.com",
		Password: "s3cret!",
		Role:     "manager",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginUserRequest{Email: "asmith@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")

	tokens, err := svc.Login(ctx, LoginUserRequest{Email: "asmith@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Token)
	assert.NotEmpty(t, tokens.RefreshToken)

	rotated, err := svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.RefreshToken)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// Rotation consumes the old token
	_, err = svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid refresh token")
}

func TestUpdateAndDeleteUser(t *testing.T) {
	db := newTestDB(t)
	tenantID := seedTenant(t, db)
	svc := NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, tenantID, CreateUserRequest{
		Username: "asmith",
		Email:    "asmith@example.com",
		Password: "s3cret!",
		Role:     "technician",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, created.ID.String(), UpdateUserRequest{Role: "manager", Phone: "0601020304"})
	require.NoError(t, err)
	assert.Equal(t, "manager", updated.Role)
	assert.Equal(t, "0601020304", updated.Phone)

	_, err = svc.UpdateUser(ctx, created.ID.String(), UpdateUserRequest{Role: "root"})
	require.Error(t, err)

	require.NoError(t, svc.DeleteUser(ctx, created.ID.String()))
	_, err = svc.GetUserByID(ctx, created.ID.String())
	require.Error(t, err)
}
