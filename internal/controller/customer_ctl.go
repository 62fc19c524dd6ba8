package controller

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"plus_admin_v1/internal/api/dto"
	"plus_admin_v1/internal/model"
	"plus_admin_v1/internal/viewset"
)

// ==================== CustomerController 客户控制器 ====================

// CustomerSchema 客户字段表
func CustomerSchema() *viewset.Schema {
	return viewset.NewSchema(
		viewset.Field{Name: "id", Type: viewset.TypeInt, Query: true},
		viewset.Field{Name: "name", Type: viewset.TypeString, Like: true, Update: true},
		viewset.Field{Name: "sn", Type: viewset.TypeString, Query: true, Update: true},
		viewset.Field{Name: "typ", Type: viewset.TypeInt, Query: true, Update: true, Choices: model.CustomerTypChoices},
		viewset.Field{Name: "remark", Type: viewset.TypeString, Update: true},
	)
}

// CustomerController 客户控制器，客户由认证接口创建
type CustomerController struct {
	View *viewset.View
	Set  *viewset.ModelViewSet[model.SysCustomer]
}

// NewCustomerController 创建客户控制器
func NewCustomerController(db *gorm.DB, log *zap.Logger) *CustomerController {
	view := viewset.NewView(db, log, "sys_customer", viewset.IsLogin)
	set := viewset.NewModelViewSet[model.SysCustomer](view, CustomerSchema())
	set.NewRepo = customerRepo
	return &CustomerController{View: view, Set: set}
}

// Query 客户列表
// @Summary 客户列表
// @Description 支持 id、name、sn、typ 过滤，name 模糊匹配
// @Tags Customer
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.QueryRequest false "查询条件"
// @Success 200 {object} dto.Response
// @Router /user/sys_customer/query [post]
func (ctl *CustomerController) Query(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.PostQuery(c)
}

// Update 更新客户
// @Summary 更新客户
// @Tags Customer
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.Response
// @Router /user/sys_customer/update [put]
func (ctl *CustomerController) Update(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.Update(c)
}

// Delete 软删除客户
// @Summary 删除客户
// @Tags Customer
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.DeleteRequest true "删除参数"
// @Success 200 {object} dto.Response
// @Router /user/sys_customer/delete [delete]
func (ctl *CustomerController) Delete(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.Delete(c)
}

// AbsDelete 物理删除客户
// @Summary 物理删除客户
// @Tags Customer
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.AbsDeleteRequest true "删除参数"
// @Success 200 {object} dto.Response
// @Router /user/sys_customer/abs_delete [delete]
func (ctl *CustomerController) AbsDelete(c *viewset.Context) (*dto.Response, error) {
	return ctl.Set.AbsDelete(c)
}
