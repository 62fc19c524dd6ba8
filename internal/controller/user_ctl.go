package controller

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"plus_admin_v1/internal/api/dto"
	"plus_admin_v1/internal/errcode"
	"plus_admin_v1/internal/middleware"
	"plus_admin_v1/internal/model"
	"plus_admin_v1/internal/service"
	"plus_admin_v1/internal/viewset"
)

// ==================== UserController 用户控制器 ====================

// UserSchema 用户字段表
func UserSchema() *viewset.Schema {
	return viewset.NewSchema(
		viewset.Field{Name: "id", Type: viewset.TypeInt, Query: true},
		viewset.Field{Name: "username", Type: viewset.TypeString, Like: true, CreateRequired: true},
		viewset.Field{Name: "nickname", Type: viewset.TypeString, Like: true, Create: true, Update: true},
		viewset.Field{Name: "password", Type: viewset.TypeString, CreateRequired: true, Update: true},
		viewset.Field{Name: "mobile", Type: viewset.TypeString, Create: true, Update: true},
		viewset.Field{Name: "role", Type: viewset.TypeInt, Create: true, Update: true, Choices: model.UserRoleChoices},
		viewset.Field{Name: "is_active", Type: viewset.TypeBool, Update: true},
		viewset.Field{Name: "remark", Type: viewset.TypeString, Query: true, Create: true, Update: true},
	)
}

// UserController 用户控制器
type UserController struct {
	LoginView *viewset.View
	View      *viewset.View
	Set       *viewset.ModelViewSet[model.SysUser]
	svc       *service.UserService
}

// NewUserController 创建用户控制器
func NewUserController(db *gorm.DB, log *zap.Logger, svc *service.UserService) *UserController {
	ctl := &UserController{
		LoginView: viewset.NewView(db, log, "login"),
		View:      viewset.NewView(db, log, "sys_user", viewset.IsLogin),
		svc:       svc,
	}
	ctl.Set = viewset.NewModelViewSet[model.SysUser](ctl.View, UserSchema())
	ctl.Set.NewRepo = userRepo
	ctl.Set.Serialize = ctl.serialize
	ctl.Set.BeforeSave = userBeforeSave
	return ctl
}

// ==================== 认证接口 ====================

// Login 用户登录
// @Summary 用户登录
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.Response{data=dto.LoginResponse}
// @Router /user/login [post]
func (ctl *UserController) Login(c *viewset.Context) (*dto.Response, error) {
	params := c.Data()
	if err := viewset.RequireFields(params, "username", "password"); err != nil {
		return nil, err
	}

	req := &dto.LoginRequest{Username: params.String("username"), Password: params.String("password")}
	res, err := ctl.svc.WithTx(c.DB()).Login(c.Ctx(), req, c.ClientIP())
	if err != nil {
		return nil, err
	}

	user, err := ctl.Set.Represent(c, res.User)
	if err != nil {
		return nil, err
	}
	return dto.OK("登录成功", &dto.LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      user,
	}), nil
}

// Info 当前用户信息
// @Summary 当前用户信息
// @Tags User
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.Response
// @Router /user/sys_user/info [get]
func (ctl *UserController) Info(c *viewset.Context) (*dto.Response, error) {
	user, err := ctl.svc.WithTx(c.DB()).GetProfile(c.Ctx(), c.CurrentUser().UserID())
	if err != nil {
		return nil, err
	}
	data, err := ctl.Set.Represent(c, user)
	if err != nil {
		return nil, err
	}
	return dto.OK("", data), nil
}

// Certification 用户绑定客户
// @Summary 用户绑定客户
// @Tags User
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.CertificationRequest true "客户信息"
// @Success 200 {object} dto.Response
// @Router /user/sys_user/certification [post]
func (ctl *UserController) Certification(c *viewset.Context) (*dto.Response, error) {
	params := c.Data()
	if err := viewset.RequireFields(params, "id", "name", "sn"); err != nil {
		return nil, err
	}
	id, ok := params.Int64("id")
	if !ok {
		return nil, errcode.New(errcode.ValidErr, "参数 id 格式错误")
	}
	typ := 0
	if params.Supplied("typ") {
		if typ, ok = params.Int("typ"); !ok {
			return nil, errcode.New(errcode.ValidErr, "参数 typ 格式错误")
		}
	}

	req := &dto.CertificationRequest{ID: id, Name: params.String("name"), SN: params.String("sn"), Typ: typ}
	user, err := ctl.svc.WithTx(c.DB()).Certify(c.Ctx(), req)
	if err != nil {
		return nil, err
	}
	data, err := ctl.Set.Represent(c, user)
	if err != nil {
		return nil, err
	}
	return dto.OK("", data), nil
}

// ==================== 增删改查 ====================

// Query 用户列表
// @Summary 用户列表
// @Description 支持 id、username、nickname、remark 过滤，username 与 nickname 模糊匹配；offset 从 1 开始
// @Tags User
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.QueryRequest false "查询条件"
// @Success 200 {object} dto.Response
// @Router /user/sys_user/query [post]
func (ctl *UserController) Query(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.PostQuery(c)
}

// Create 创建用户（管理员）
// @Summary 创建用户
// @Tags User
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.Response
// @Router /user/sys_user/create [post]
func (ctl *UserController) Create(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.Create(c)
}

// Update 更新用户
// @Summary 更新用户
// @Tags User
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.Response
// @Router /user/sys_user/update [put]
func (ctl *UserController) Update(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.Update(c)
}

// Delete 软删除用户（管理员，仅 web）
// @Summary 删除用户
// @Tags User
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.DeleteRequest true "删除参数"
// @Success 200 {object} dto.Response
// @Router /user/sys_user/delete [delete]
func (ctl *UserController) Delete(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.Delete(c)
}

// AbsDelete 物理删除用户
// @Summary 物理删除用户
// @Tags User
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.AbsDeleteRequest true "删除参数"
// @Success 200 {object} dto.Response
// @Router /user/sys_user/abs_delete [delete]
func (ctl *UserController) AbsDelete(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.AbsDelete(c)
}

// ==================== 辅助函数 ====================

// serialize 追加 customer_id_info
func (ctl *UserController) serialize(c *viewset.Context, list []model.SysUser) ([]map[string]any, error) {
	out, err := viewset.ToMaps(ctl.Set.Schema, list)
	if err != nil {
		return nil, err
	}
	customers, err := ctl.svc.WithTx(c.DB()).CustomersOf(c.Ctx(), list)
	if err != nil {
		return nil, err
	}

	schema := CustomerSchema()
	for i, u := range list {
		out[i]["customer_id_info"] = nil
		if u.CustomerID == nil {
			continue
		}
		customer, ok := customers[*u.CustomerID]
		if !ok {
			continue
		}
		info, err := viewset.ToMaps(schema, []model.SysCustomer{*customer})
		if err != nil {
			return nil, err
		}
		out[i]["customer_id_info"] = info[0]
	}
	return out, nil
}

// adminOnlyFields 非管理员不可修改的字段
var adminOnlyFields = []string{"role", "is_active"}

// userBeforeSave 非管理员只能修改本人的非权限字段，并写入密码哈希
func userBeforeSave(c *viewset.Context, user *model.SysUser, values map[string]any, creating bool) error {
	if !creating {
		if err := checkSelfUpdate(c.CurrentUser(), user, values); err != nil {
			return err
		}
	}

	raw, ok := values["password"].(string)
	if !ok || raw == "" {
		return nil
	}
	if err := user.SetPassword(raw); err != nil {
		return errcode.Wrap(errcode.SysErr, err, "密码加密失败")
	}
	return nil
}

func checkSelfUpdate(current *middleware.CurrentUser, user *model.SysUser, values map[string]any) error {
	if current.IsAdmin() {
		return nil
	}
	if user.ID != current.UserID() {
		return errcode.New(errcode.NoPerm, "只能修改本人信息")
	}
	for _, name := range adminOnlyFields {
		if _, ok := values[name]; ok {
			return errcode.New(errcode.NoPerm, "需要管理员权限修改: %s", name)
		}
	}
	return nil
}
