package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storeops/config"
	"storeops/internal/auth"
	"storeops/internal/dto"
	"storeops/internal/model"
	"storeops/internal/repository"
	"storeops/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *mockWorkerRepo, *mockBlacklist, *jwt.Manager) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL: 15 * time.Minute,
		},
	}

	workerRepo := newMockWorkerRepo()
	repo := &repository.Repository{Worker: workerRepo}
	blacklist := &mockBlacklist{tokens: make(map[string]time.Duration)}
	jwtMgr := jwt.NewManager(&cfg.Auth)

	svc := NewAuthService(cfg, repo, jwtMgr, blacklist, zap.NewNop())
	return svc, workerRepo, blacklist, jwtMgr
}

func createTestWorker(repo *mockWorkerRepo, email, password string, role auth.Role) *model.Worker {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	w := &model.Worker{
		WorkerID:     "worker-" + email,
		SiteID:       siteID,
		Name:         "测试员工",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	_ = repo.Create(context.Background(), w)
	return w
}

// ── 登录测试 ──

func TestLogin_Success(t *testing.T) {
	svc, workers, _, jwtMgr := setupTestAuthService()
	w := createTestWorker(workers, "alice@store.test", "password123", auth.RoleEmployee)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "Alice@Store.test ",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("AccessToken 不应为空")
	}
	if result.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际=%d", result.ExpiresIn)
	}
	if result.Worker.ID != w.WorkerID || result.Worker.SiteID != siteID || result.Worker.Role != "employee" {
		t.Errorf("员工信息不正确: %+v", result.Worker)
	}

	claims, err := jwtMgr.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("Token 应可解析: %v", err)
	}
	if claims.UserID != w.WorkerID || claims.SiteID != siteID || claims.Role != "employee" {
		t.Errorf("Token 声明不正确: %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, workers, _, _ := setupTestAuthService()
	createTestWorker(workers, "alice@store.test", "password123", auth.RoleEmployee)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@store.test", Password: "wrong_password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_WorkerNotFound(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "ghost@store.test", Password: "password123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_Disabled(t *testing.T) {
	svc, workers, _, _ := setupTestAuthService()
	w := createTestWorker(workers, "alice@store.test", "password123", auth.RoleEmployee)
	workers.workers[w.WorkerID].IsActive = false

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@store.test", Password: "password123"})
	if !errors.Is(err, ErrWorkerDisabled) {
		t.Errorf("期望 ErrWorkerDisabled，实际: %v", err)
	}
}

// ── 注销测试 ──

func TestLogout_BlacklistsUntilExpiry(t *testing.T) {
	svc, _, blacklist, _ := setupTestAuthService()

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Logout 失败: %v", err)
	}
	ttl, ok := blacklist.tokens["jti-1"]
	if !ok {
		t.Fatal("Token 应加入黑名单")
	}
	if ttl <= 9*time.Minute || ttl > 10*time.Minute {
		t.Errorf("黑名单 TTL 应为剩余有效期，实际=%v", ttl)
	}

	if err := svc.Logout(context.Background(), "jti-2", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("已过期 Token 注销应直接成功: %v", err)
	}
	if _, ok := blacklist.tokens["jti-2"]; ok {
		t.Error("已过期 Token 无需加入黑名单")
	}
}
