package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"plus_admin_v1/internal/api/dto"
	"plus_admin_v1/internal/errcode"
	"plus_admin_v1/internal/middleware"
	"plus_admin_v1/internal/model"
	"plus_admin_v1/internal/repository"
)

// ==================== UserService 用户服务 ====================

// TokenIssuer 签发登录 Token
type TokenIssuer interface {
	IssueFor(user *model.SysUser) (string, time.Time, error)
}

// UserService 用户服务
type UserService struct {
	userRepo     repository.UserRepository
	customerRepo repository.CustomerRepository
	tokens       TokenIssuer
	limiter      *middleware.LoginLimiter
	now          func() time.Time
}

// NewUserService 创建用户服务
func NewUserService(db *gorm.DB, tokens TokenIssuer, limiter *middleware.LoginLimiter) *UserService {
	return &UserService{
		userRepo:     repository.NewUserRepository(db),
		customerRepo: repository.NewCustomerRepository(db),
		tokens:       tokens,
		limiter:      limiter,
		now:          time.Now,
	}
}

// WithTx 绑定事务
func (s *UserService) WithTx(tx *gorm.DB) *UserService {
	cp := *s
	cp.userRepo = repository.NewUserRepository(tx)
	cp.customerRepo = repository.NewCustomerRepository(tx)
	return &cp
}

// ==================== 登录 ====================

// LoginResult 登录结果
type LoginResult struct {
	User      *model.SysUser
	Token     string
	ExpiresAt time.Time
}

// Login 用户登录
// 同一用户名+IP 连续失败后进入冷却，冷却期内返回 4501
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest, clientIP string) (*LoginResult, error) {
	key := middleware.LoginKey(req.Username, clientIP)
	if res := s.limiter.Check(key); !res.Allowed {
		return nil, errcode.New(errcode.ReqErr, "登录失败次数过多，请 %d 秒后重试", int(res.RetryAfter.Seconds())+1)
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.limiter.Fail(key)
		return nil, errcode.New(errcode.UserNotExist, "")
	}
	if !user.CheckPassword(req.Password) {
		s.limiter.Fail(key)
		return nil, errcode.New(errcode.PwdErr, "")
	}
	if !user.IsActive {
		return nil, errcode.New(errcode.NotActive, "")
	}
	s.limiter.Reset(key)

	// 登录时间由本人更新
	current := middleware.UserFromContext(ctx)
	requestFrom := middleware.RequestFromWeb
	if current != nil {
		requestFrom = current.RequestFrom
	}
	ctx = middleware.WithCurrentUser(ctx, middleware.NewCurrentUser(user, requestFrom))

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	token, expiresAt, err := s.tokens.IssueFor(user)
	if err != nil {
		return nil, errcode.Wrap(errcode.SysErr, err, "token 签发失败")
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ==================== 用户信息 ====================

// GetProfile 获取有效用户
func (s *UserService) GetProfile(ctx context.Context, id int64) (*model.SysUser, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errcode.New(errcode.NoData, "用户不存在: %d", id)
	}
	return user, nil
}

// Certify 绑定客户，不存在相同名称、编号、类型的有效客户时新建
func (s *UserService) Certify(ctx context.Context, req *dto.CertificationRequest) (*model.SysUser, error) {
	user, err := s.GetProfile(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.FindLive(ctx, req.Name, req.SN, req.Typ)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		typ := req.Typ
		if typ == 0 {
			typ = model.CustomerInternal
		}
		if _, ok := model.CustomerTypChoices[int64(typ)]; !ok {
			return nil, errcode.New(errcode.EnumErr, "参数 typ 取值错误: %d", typ)
		}
		customer = &model.SysCustomer{Name: req.Name, SN: req.SN, Typ: typ}
		if err := s.customerRepo.Create(ctx, customer); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.SetCustomer(ctx, user.ID, customer.ID); err != nil {
		return nil, err
	}
	user.CustomerID = &customer.ID
	return user, nil
}

// CustomersOf 批量获取用户所属客户
func (s *UserService) CustomersOf(ctx context.Context, users []model.SysUser) (map[int64]*model.SysCustomer, error) {
	ids := make([]int64, 0, len(users))
	seen := make(map[int64]struct{}, len(users))
	for _, u := range users {
		if u.CustomerID == nil {
			continue
		}
		if _, ok := seen[*u.CustomerID]; ok {
			continue
		}
		seen[*u.CustomerID] = struct{}{}
		ids = append(ids, *u.CustomerID)
	}
	return s.customerRepo.GetByIDs(ctx, ids)
}
