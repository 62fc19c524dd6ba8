package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"plus_admin_v1/internal/controller"
	"plus_admin_v1/internal/middleware"
	"plus_admin_v1/internal/model"
	"plus_admin_v1/internal/repository"
	"plus_admin_v1/internal/router"
	"plus_admin_v1/internal/service"
	"plus_admin_v1/internal/store"
	"plus_admin_v1/internal/task"
	"plus_admin_v1/pkg/config"
	"plus_admin_v1/pkg/database"
	"plus_admin_v1/pkg/logger"
)

// @title Plus Admin API
// @version 1.0
// @description 用户、客户与接口授权管理服务
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zl, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Service)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// 3. 初始化数据库
	db, err := initDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("初始化数据库失败", zap.Error(err))
	}

	// 4. 初始化依赖
	deps, err := initDependencies(cfg, db, zl)
	if err != nil {
		zl.Fatal("初始化依赖失败", zap.Error(err))
	}
	defer deps.Close()

	// 5. 启动定时任务
	if err := deps.Tasks.StartAll(); err != nil {
		zl.Fatal("启动定时任务失败", zap.Error(err))
	}
	defer deps.Tasks.StopAll()

	// 6. 初始化路由
	gin.SetMode(cfg.Server.Mode)
	r := router.SetupRouter(deps.Controllers, router.Options{
		DB:            db,
		Logger:        zl,
		Authenticator: deps.Authenticator,
		Swagger:       cfg.Server.Swagger,
	})

	// 7. 启动服务
	startServer(cfg.Server, r, zl)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB            *gorm.DB
	Redis         *redis.Client
	Nonces        store.NonceStore
	Authenticator *middleware.Authenticator
	Services      *Services
	Controllers   *router.Controllers
	Tasks         *task.TaskManager
}

// Services 服务集合
type Services struct {
	User *service.UserService
}

// Close 释放外部连接
func (d *Dependencies) Close() {
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// ==================== 初始化函数 ====================

// initDatabase 连接数据库、建表并注册审计回调
func initDatabase(cfg *config.Config, zl *zap.Logger) (*gorm.DB, error) {
	db, err := database.InitDB(cfg.Database, zl)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := model.Migrate(db); err != nil {
			return nil, err
		}
	}
	if err := middleware.RegisterAuditCallbacks(db); err != nil {
		return nil, err
	}
	return db, nil
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, zl *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{DB: db}

	// -------- nonce 存储 --------
	var sweep *task.NonceSweepTask
	if cfg.Redis.Enabled() {
		client, err := database.InitRedis(context.Background(), cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		deps.Redis = client
		deps.Nonces = store.NewRedisStore(client, cfg.Redis.Prefix)
	} else {
		mem := store.NewMemoryStore()
		deps.Nonces = mem
		sweep = task.NewNonceSweepTask(mem, cfg.Task.NonceSweepSpec, zl)
		zl.Warn("未配置 Redis，使用内存 nonce 存储")
	}

	// -------- 认证 --------
	secret := cfg.JWT.SecretKey
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		zl.Warn("未配置 jwt.secret_key，使用随机密钥，重启后 Token 失效")
	}
	users := repository.NewUserRepository(db)
	jwtScheme := middleware.NewJWTScheme(&middleware.JWTConfig{
		Realm:     cfg.JWT.Realm,
		SecretKey: secret,
		TTL:       cfg.JWT.TTL,
		Leeway:    cfg.JWT.Leeway,
		Issuer:    cfg.JWT.Issuer,
	}, users)
	signScheme := middleware.NewSignatureScheme(&middleware.SignatureConfig{
		Realm:         cfg.API.Realm,
		RequestExpire: cfg.API.RequestExpire,
		NonceExpire:   cfg.API.NonceExpire,
		NoncePrefix:   cfg.API.NoncePrefix,
	}, users, deps.Nonces)
	deps.Authenticator = middleware.NewAuthenticator(zl, jwtScheme, signScheme)

	// -------- 业务服务 --------
	limiter := middleware.NewLoginLimiter(cfg.Server.LoginMaxFailures, cfg.Server.LoginWindow, cfg.Server.LoginCooldown)
	deps.Services = &Services{
		User: service.NewUserService(db, jwtScheme, limiter),
	}

	// -------- Controller 层 --------
	deps.Controllers = &router.Controllers{
		User:     controller.NewUserController(db, zl, deps.Services.User),
		Customer: controller.NewCustomerController(db, zl),
		Grant:    controller.NewGrantController(db, zl),
	}

	// -------- 定时任务 --------
	var tasks []task.Task
	if sweep != nil {
		tasks = append(tasks, sweep)
	}
	deps.Tasks = task.NewTaskManager(zl, tasks...)

	return deps, nil
}

// ==================== 服务启动 ====================

// startServer 启动服务并等待退出信号
func startServer(cfg config.ServerConfig, r *gin.Engine, zl *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		zl.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("服务强制关闭", zap.Error(err))
		return
	}
	zl.Info("服务已退出")
}
