package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"plus_admin_v1/internal/controller"
	"plus_admin_v1/internal/middleware"
	"plus_admin_v1/internal/model"
	"plus_admin_v1/internal/repository"
	"plus_admin_v1/internal/service"
	"plus_admin_v1/internal/store"
)

// ==================== 测试辅助 ====================

type testApp struct {
	db     *gorm.DB
	engine *gin.Engine
}

func setupTestApp(t *testing.T) *testApp {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, model.Migrate(db))
	require.NoError(t, middleware.RegisterAuditCallbacks(db))

	users := repository.NewUserRepository(db)
	jwtScheme := middleware.NewJWTScheme(nil, users)
	sign := middleware.NewSignatureScheme(nil, users, store.NewMemoryStore())
	userSvc := service.NewUserService(db, jwtScheme, middleware.NewLoginLimiter(5, time.Minute, time.Minute))

	ctls := &Controllers{
		User:     controller.NewUserController(db, nil, userSvc),
		Customer: controller.NewCustomerController(db, nil),
		Grant:    controller.NewGrantController(db, nil),
	}
	engine := SetupRouter(ctls, Options{
		DB:            db,
		Authenticator: middleware.NewAuthenticator(nil, jwtScheme, sign),
	})
	return &testApp{db: db, engine: engine}
}

func (a *testApp) seedUser(t *testing.T, username, password string, role int) *model.SysUser {
	u := &model.SysUser{Username: username, Role: role, IsActive: true}
	require.NoError(t, u.SetPassword(password))
	require.NoError(t, a.db.Create(u).Error)
	return u
}

type envelope struct {
	Code  string          `json:"code"`
	Msg   string          `json:"msg"`
	Desc  string          `json:"desc"`
	Data  json.RawMessage `json:"data"`
	Total *int64          `json:"total"`
}

func (a *testApp) do(t *testing.T, method, path, authorization string, body any) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func (a *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/user/login", "", map[string]any{"username": username, "password": password})
	require.Equal(t, "0", resp.Code, resp.Desc)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return "jwt " + data.Token
}

// ==================== 测试用例 ====================

func TestRouter_Health(t *testing.T) {
	app := setupTestApp(t)
	resp := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, "0", resp.Code)
}

func TestRouter_NoRoute(t *testing.T) {
	app := setupTestApp(t)
	resp := app.do(t, http.MethodGet, "/user/unknown", "", nil)
	assert.Equal(t, "4501", resp.Code)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	app := setupTestApp(t)
	resp := app.do(t, http.MethodGet, "/user/login", "", nil)
	assert.Equal(t, "4503", resp.Code)
}

func TestRouter_AuthFailures(t *testing.T) {
	app := setupTestApp(t)

	resp := app.do(t, http.MethodGet, "/user/sys_user/info", "", nil)
	assert.Equal(t, "4301", resp.Code)

	resp = app.do(t, http.MethodGet, "/user/sys_user/info", "jwt", nil)
	assert.Equal(t, "4207", resp.Code)

	resp = app.do(t, http.MethodGet, "/user/sys_user/info", "jwt not-a-token", nil)
	assert.Equal(t, "4207", resp.Code)

	resp = app.do(t, http.MethodGet, "/user/sys_user/info", "jwt a.b.c", nil)
	assert.Equal(t, "4204", resp.Code)

	// 未知方案视为匿名
	resp = app.do(t, http.MethodGet, "/user/sys_user/info", "Bearer xyz", nil)
	assert.Equal(t, "4301", resp.Code)
}

func TestRouter_AdminCreatesUser(t *testing.T) {
	app := setupTestApp(t)
	app.seedUser(t, "admin", "admin123", model.RoleAdmin)
	token := app.login(t, "admin", "admin123")

	resp := app.do(t, http.MethodPost, "/user/sys_user/create", token, map[string]any{"username": "alice", "password": "alice123"})
	require.Equal(t, "0", resp.Code, resp.Desc)
	var data map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "alice", data["username"])
	assert.NotContains(t, data, "password")

	aliceToken := app.login(t, "alice", "alice123")
	resp = app.do(t, http.MethodGet, "/user/sys_user/info", aliceToken, nil)
	require.Equal(t, "0", resp.Code)

	// 普通用户不能创建
	resp = app.do(t, http.MethodPost, "/user/sys_user/create", aliceToken, map[string]any{"username": "bob", "password": "bob123"})
	assert.Equal(t, "4302", resp.Code)
}

func TestRouter_UserUpdateGuard(t *testing.T) {
	app := setupTestApp(t)
	admin := app.seedUser(t, "admin", "admin123", model.RoleAdmin)
	bob := app.seedUser(t, "bob", "bob123", model.RoleNormal)
	bobToken := app.login(t, "bob", "bob123")

	reload := func(id int64) *model.SysUser {
		var u model.SysUser
		require.NoError(t, app.db.First(&u, id).Error)
		return &u
	}

	// 普通用户不能提升自己的角色
	resp := app.do(t, http.MethodPut, "/user/sys_user/update", bobToken, map[string]any{"id": bob.ID, "role": model.RoleAdmin})
	assert.Equal(t, "4302", resp.Code)
	assert.Equal(t, model.RoleNormal, reload(bob.ID).Role)

	resp = app.do(t, http.MethodPut, "/user/sys_user/update", bobToken, map[string]any{"id": bob.ID, "is_active": false})
	assert.Equal(t, "4302", resp.Code)
	assert.True(t, reload(bob.ID).IsActive)

	// 不能修改他人
	resp = app.do(t, http.MethodPut, "/user/sys_user/update", bobToken, map[string]any{"id": admin.ID, "password": "hacked1"})
	assert.Equal(t, "4302", resp.Code)
	assert.True(t, reload(admin.ID).CheckPassword("admin123"))

	// 本人的普通字段可以修改
	resp = app.do(t, http.MethodPut, "/user/sys_user/update", bobToken, map[string]any{"id": bob.ID, "nickname": "Bobby"})
	require.Equal(t, "0", resp.Code, resp.Desc)
	assert.Equal(t, "Bobby", reload(bob.ID).Nickname)

	// 管理员可以修改角色
	adminToken := app.login(t, "admin", "admin123")
	resp = app.do(t, http.MethodPut, "/user/sys_user/update", adminToken, map[string]any{"id": bob.ID, "role": model.RoleAdmin})
	require.Equal(t, "0", resp.Code, resp.Desc)
	assert.Equal(t, model.RoleAdmin, reload(bob.ID).Role)
}

func TestRouter_DeleteFlow(t *testing.T) {
	app := setupTestApp(t)
	app.seedUser(t, "admin", "admin123", model.RoleAdmin)
	bob := app.seedUser(t, "bob", "bob123", model.RoleNormal)
	token := app.login(t, "admin", "admin123")

	resp := app.do(t, http.MethodDelete, "/user/sys_user/delete", token, map[string]any{"id": bob.ID})
	require.Equal(t, "0", resp.Code, resp.Desc)

	// 软删除后无法登录
	resp = app.do(t, http.MethodPost, "/user/login", "", map[string]any{"username": "bob", "password": "bob123"})
	assert.Equal(t, "4201", resp.Code)

	resp = app.do(t, http.MethodDelete, "/user/sys_user/abs_delete", token, map[string]any{"id": bob.ID})
	require.Equal(t, "0", resp.Code)
	assert.JSONEq(t, "1", string(resp.Data))
}

func TestRouter_DataAPIGrant(t *testing.T) {
	app := setupTestApp(t)
	app.seedUser(t, "admin", "admin123", model.RoleAdmin)
	app.seedUser(t, "svc", "svc123", model.RoleNormal)
	target := &model.SysCustomer{Name: "ACME", SN: "C001", Typ: model.CustomerInternal}
	require.NoError(t, app.db.Create(target).Error)

	sign := func() string {
		s, err := middleware.EncodeSignature("svc", "svc123", time.Now())
		require.NoError(t, err)
		return "api " + s
	}

	resp := app.do(t, http.MethodDelete, "/user/sys_customer/abs_delete", sign(), map[string]any{"id": target.ID})
	assert.Equal(t, "4302", resp.Code)

	adminToken := app.login(t, "admin", "admin123")
	resp = app.do(t, http.MethodPost, "/user/sys_grant/create", adminToken, map[string]any{
		"username": "svc", "method": "DELETE", "uri": "/user/sys_customer/abs_delete",
	})
	require.Equal(t, "0", resp.Code, resp.Desc)

	resp = app.do(t, http.MethodDelete, "/user/sys_customer/abs_delete", sign(), map[string]any{"id": target.ID})
	require.Equal(t, "0", resp.Code, resp.Desc)
	assert.JSONEq(t, "1", string(resp.Data))
}

func TestRouter_SignatureReplay(t *testing.T) {
	app := setupTestApp(t)
	app.seedUser(t, "svc", "svc123", model.RoleNormal)

	s, err := middleware.EncodeSignature("svc", "svc123", time.Now())
	require.NoError(t, err)

	resp := app.do(t, http.MethodGet, "/user/sys_user/info", "api "+s, nil)
	require.Equal(t, "0", resp.Code, resp.Desc)

	resp = app.do(t, http.MethodGet, "/user/sys_user/info", "api "+s, nil)
	assert.Equal(t, "4200", resp.Code)
}
