package controller

import (
	"net/http"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"plus_admin_v1/internal/api/dto"
	"plus_admin_v1/internal/errcode"
	"plus_admin_v1/internal/model"
	"plus_admin_v1/internal/viewset"
)

// ==================== GrantController 接口授权控制器 ====================

var grantMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// GrantSchema 授权字段表
func GrantSchema() *viewset.Schema {
	return viewset.NewSchema(
		viewset.Field{Name: "id", Type: viewset.TypeInt, Query: true},
		viewset.Field{Name: "username", Type: viewset.TypeString, Query: true, CreateRequired: true, Update: true},
		viewset.Field{Name: "method", Type: viewset.TypeString, Query: true, CreateRequired: true, Update: true, Upper: true},
		viewset.Field{Name: "uri", Type: viewset.TypeString, Query: true, CreateRequired: true, Update: true},
		viewset.Field{Name: "remark", Type: viewset.TypeString, Create: true, Update: true},
	)
}

// GrantController 接口授权，仅管理员可维护
type GrantController struct {
	View *viewset.View
	Set  *viewset.ModelViewSet[model.UriGrant]
}

// NewGrantController 创建授权控制器
func NewGrantController(db *gorm.DB, log *zap.Logger) *GrantController {
	view := viewset.NewView(db, log, "sys_grant", viewset.IsLogin, viewset.IsAdmin)
	set := viewset.NewModelViewSet[model.UriGrant](view, GrantSchema())
	set.NewRepo = grantRepo
	set.BeforeSave = checkGrantMethod
	return &GrantController{View: view, Set: set}
}

// Query 授权列表
// @Summary 授权列表
// @Tags Grant
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.QueryRequest false "查询条件"
// @Success 200 {object} dto.Response
// @Router /user/sys_grant/query [post]
func (ctl *GrantController) Query(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.PostQuery(c)
}

// Create 新增授权
// @Summary 新增授权
// @Tags Grant
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.Response
// @Router /user/sys_grant/create [post]
func (ctl *GrantController) Create(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.Create(c)
}

// Update 更新授权
// @Summary 更新授权
// @Tags Grant
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.Response
// @Router /user/sys_grant/update [put]
func (ctl *GrantController) Update(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.Update(c)
}

// Delete 软删除授权
// @Summary 删除授权
// @Tags Grant
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.DeleteRequest true "删除参数"
// @Success 200 {object} dto.Response
// @Router /user/sys_grant/delete [delete]
func (ctl *GrantController) Delete(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.Delete(c)
}

// AbsDelete 物理删除授权
// @Summary 物理删除授权
// @Tags Grant
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.AbsDeleteRequest true "删除参数"
// @Success 200 {object} dto.Response
// @Router /user/sys_grant/abs_delete [delete]
func (ctl *GrantController) AbsDelete(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.AbsDelete(c)
}

func checkGrantMethod(_ *viewset.Context, grant *model.UriGrant, _ map[string]any, _ bool) error {
	if !lo.Contains(grantMethods, grant.Method) {
		return errcode.New(errcode.EnumErr, "请求方法不支持: %s", grant.Method)
	}
	return nil
}
