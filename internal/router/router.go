package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"plus_admin_v1/internal/api/dto"
	"plus_admin_v1/internal/controller"
	"plus_admin_v1/internal/errcode"
	"plus_admin_v1/internal/middleware"
	"plus_admin_v1/internal/repository"
	"plus_admin_v1/internal/viewset"

	_ "plus_admin_v1/docs"
)

// Controllers 控制器集合
type Controllers struct {
	User     *controller.UserController
	Customer *controller.CustomerController
	Grant    *controller.GrantController
}

// Options 路由依赖
type Options struct {
	DB            *gorm.DB
	Logger        *zap.Logger
	Authenticator *middleware.Authenticator
	Swagger       bool
}

// SetupRouter 创建引擎并注册所有路由
func SetupRouter(ctls *Controllers, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middleware.RequestFrom(),
		middleware.Recovery(log),
		middleware.RequestLogger(log),
	)
	if opts.Authenticator != nil {
		r.Use(opts.Authenticator.Middleware())
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.Fail(errcode.ReqErr, "接口不存在: "+c.Request.URL.Path))
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.Fail(errcode.ReqErr, "请求方法不支持: "+c.Request.Method))
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.OK("ok", nil))
	})
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	InitRoutes(r, ctls, viewset.DataAPI(repository.NewUriGrantRepository(opts.DB)))
	return r
}

// InitRoutes 注册业务路由
func InitRoutes(r *gin.Engine, ctls *Controllers, dataAPI viewset.Permission) {
	user := r.Group("/user")
	{
		// POST /user/login
		user.Any("/login", ctls.User.LoginView.AsView(viewset.Actions{
			http.MethodPost: viewset.Do(ctls.User.Login),
		}))

		// sys_user 用户管理
		u := ctls.User
		sysUser := user.Group("/sys_user")
		{
			sysUser.Any("/info", u.View.AsView(viewset.Actions{
				http.MethodGet: viewset.Do(u.Info),
			}))
			sysUser.Any("/query", u.View.AsView(viewset.Actions{
				http.MethodGet:  viewset.Do(u.Set.GetQuery),
				http.MethodPost: viewset.Do(u.Query),
			}))
			sysUser.Any("/create", u.View.AsView(viewset.Actions{
				http.MethodPost: viewset.Do(u.Create, viewset.IsAdmin),
			}))
			sysUser.Any("/update", u.View.AsView(viewset.Actions{
				http.MethodPut: viewset.Do(u.Update),
			}))
			sysUser.Any("/delete", u.View.AsView(viewset.Actions{
				http.MethodDelete: viewset.Do(u.Delete, viewset.IsAdmin, viewset.RequestFrom(middleware.RequestFromWeb)),
			}))
			sysUser.Any("/abs_delete", u.View.AsView(viewset.Actions{
				http.MethodDelete: viewset.Do(u.AbsDelete, dataAPI),
			}))
			sysUser.Any("/certification", u.View.AsView(viewset.Actions{
				http.MethodPost: viewset.Do(u.Certification),
			}))
		}

		// sys_customer 客户管理
		cu := ctls.Customer
		customer := user.Group("/sys_customer")
		{
			customer.Any("/query", cu.View.AsView(viewset.Actions{
				http.MethodGet:  viewset.Do(cu.Set.GetQuery),
				http.MethodPost: viewset.Do(cu.Query),
			}))
			customer.Any("/update", cu.View.AsView(viewset.Actions{
				http.MethodPut: viewset.Do(cu.Update),
			}))
			customer.Any("/delete", cu.View.AsView(viewset.Actions{
				http.MethodDelete: viewset.Do(cu.Delete, viewset.IsAdmin, viewset.RequestFrom(middleware.RequestFromWeb)),
			}))
			customer.Any("/abs_delete", cu.View.AsView(viewset.Actions{
				http.MethodDelete: viewset.Do(cu.AbsDelete, dataAPI),
			}))
		}

		// sys_grant 接口授权
		g := ctls.Grant
		grant := user.Group("/sys_grant")
		{
			grant.Any("/query", g.View.AsView(viewset.Actions{
				http.MethodGet:  viewset.Do(g.Set.GetQuery),
				http.MethodPost: viewset.Do(g.Query),
			}))
			grant.Any("/create", g.View.AsView(viewset.Actions{
				http.MethodPost: viewset.Do(g.Create),
			}))
			grant.Any("/update", g.View.AsView(viewset.Actions{
				http.MethodPut: viewset.Do(g.Update),
			}))
			grant.Any("/delete", g.View.AsView(viewset.Actions{
				http.MethodDelete: viewset.Do(g.Delete),
			}))
			grant.Any("/abs_delete", g.View.AsView(viewset.Actions{
				http.MethodDelete: viewset.Do(g.AbsDelete),
			}))
		}
	}
}
