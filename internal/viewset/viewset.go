package viewset

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"plus_admin_v1/internal/api/dto"
	"plus_admin_v1/internal/errcode"
	"plus_admin_v1/internal/middleware"
)

// ==================== 动作 ====================

// HandlerFunc 资源动作
type HandlerFunc func(c *Context) (*dto.Response, error)

// Action 动作及其额外权限
type Action struct {
	Handler     HandlerFunc
	Permissions []Permission
}

// Do 声明动作
func Do(h HandlerFunc, perms ...Permission) Action {
	return Action{Handler: h, Permissions: perms}
}

// Actions 请求方法 -> 动作
type Actions map[string]Action

var allowedMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
}

// ==================== View 资源视图 ====================

// View 资源视图，持有资源名和默认权限链
type View struct {
	Resource    string
	Permissions []Permission
	db          *gorm.DB
	log         *zap.Logger
}

// NewView 创建资源视图
func NewView(db *gorm.DB, log *zap.Logger, resource string, perms ...Permission) *View {
	if log == nil {
		log = zap.NewNop()
	}
	return &View{
		Resource:    resource,
		Permissions: perms,
		db:          db,
		log:         log.With(zap.String("resource", resource)),
	}
}

// AsView 绑定请求方法与动作，返回 gin 处理函数
// 未声明 HEAD 时复用 GET，未绑定的方法返回 4503
func (v *View) AsView(actions Actions) gin.HandlerFunc {
	if len(actions) == 0 {
		panic(fmt.Sprintf("viewset %s: empty actions", v.Resource))
	}

	table := make(map[string]Action, len(actions)+1)
	for method, action := range actions {
		m := strings.ToUpper(method)
		if _, ok := allowedMethods[m]; !ok {
			panic(fmt.Sprintf("viewset %s: invalid method %q", v.Resource, method))
		}
		if action.Handler == nil {
			panic(fmt.Sprintf("viewset %s: nil handler for %s", v.Resource, m))
		}
		table[m] = action
	}
	if _, ok := table[http.MethodHead]; !ok {
		if get, ok := table[http.MethodGet]; ok {
			table[http.MethodHead] = get
		}
	}

	return func(gc *gin.Context) {
		user := middleware.GetCurrentUser(gc)
		if user == nil {
			user = middleware.Anonymous(gc)
		}
		gc.Request = gc.Request.WithContext(middleware.WithCurrentUser(gc.Request.Context(), user))

		c := &Context{Context: gc, view: v, user: user}
		action, ok := table[gc.Request.Method]

		resp, err := v.dispatch(c, action, ok)
		if err != nil {
			resp = v.handleError(c, err)
		}
		gc.JSON(http.StatusOK, resp)
	}
}

// dispatch 权限检查后在事务中执行动作，动作返回错误或 panic 时回滚
func (v *View) dispatch(c *Context, action Action, ok bool) (resp *dto.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()

	if !ok {
		return nil, errcode.New(errcode.MethodErr, "不支持的请求方法: %s", c.Request.Method)
	}

	for _, p := range v.Permissions {
		if err := p.Check(c); err != nil {
			return nil, err
		}
	}
	for _, p := range action.Permissions {
		if err := p.Check(c); err != nil {
			return nil, err
		}
	}

	err = v.db.WithContext(c.Ctx()).Transaction(func(tx *gorm.DB) error {
		c.tx = tx
		defer func() { c.tx = nil }()

		var herr error
		resp, herr = action.Handler(c)
		return herr
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = dto.OK("", nil)
	}
	return resp, nil
}

// handleError 统一转换错误并记录日志
func (v *View) handleError(c *Context, err error) *dto.Response {
	e := ToError(err)

	who := zap.String("username", c.user.Username)
	if !c.user.IsAuthenticated() {
		who = zap.String("request_from", c.user.RequestFrom)
	}
	fields := []zap.Field{
		who,
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("code", string(e.Code)),
		zap.Any("args", c.Args().Redacted()),
		zap.Error(err),
	}
	// 请求体只在处理中已解析时记录
	if c.data != nil {
		fields = append(fields, zap.Any("data", c.data.Redacted()))
	}

	var pe *panicError
	if asPanic(err, &pe) {
		v.log.Error("handler panic", append(fields, zap.ByteString("stack", pe.stack))...)
	} else if e.Code == errcode.SysErr || e.Code == errcode.DBErr {
		v.log.Error("request failed", fields...)
	} else {
		v.log.Warn("request rejected", fields...)
	}
	return dto.FromError(e)
}
