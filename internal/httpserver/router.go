package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/webservicios/backoffice/internal/middleware/auth"
)

type Deps struct {
	AuthHandler       *AuthHTTP
	UserHandler       *UserHTTP
	RoleHandler       *RoleHTTP
	PermissionHandler *PermissionHTTP
	AssetHandler      *AssetHTTP
	ServiceHandler    *ServiceHTTP
	SearchHandler     *SearchHTTP
	AuthMW            *authmw.Middleware
}

// Register wires the route table. Pattern follows the original back office:
// auth surface is open, user/role/permission administration is super_admin
// only, catalog reads are public and catalog writes are gated per
// collection role set.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/check", d.AuthHandler.Check)

	superAdmin := []string{"super_admin"}

	users := api.Group("/users", d.AuthMW.Authenticate, d.AuthMW.RequireRoles(superAdmin...))
	users.GET("", d.UserHandler.ListUsers)
	users.POST("", d.UserHandler.CreateUser)
	users.GET("/:id", d.UserHandler.GetUser)
	users.PUT("/:id", d.UserHandler.UpdateUser)
	users.DELETE("/:id", d.UserHandler.DeleteUser)

	roles := api.Group("/roles", d.AuthMW.Authenticate, d.AuthMW.RequireRoles(superAdmin...))
	roles.GET("", d.RoleHandler.ListRoles)
	roles.POST("", d.RoleHandler.CreateRole)
	roles.GET("/:id", d.RoleHandler.GetRole)
	roles.PUT("/:id", d.RoleHandler.UpdateRole)
	roles.DELETE("/:id", d.RoleHandler.DeleteRole)

	perms := api.Group("/permissions", d.AuthMW.Authenticate, d.AuthMW.RequireRoles(superAdmin...))
	perms.GET("", d.PermissionHandler.ListPermissions)
	perms.POST("", d.PermissionHandler.CreatePermission)
	perms.GET("/:id", d.PermissionHandler.GetPermission)
	perms.PUT("/:id", d.PermissionHandler.UpdatePermission)
	perms.DELETE("/:id", d.PermissionHandler.DeletePermission)

	assets := api.Group("/assets")
	assets.GET("", d.AssetHandler.ListAssets)
	assets.GET("/years", d.AssetHandler.GetAssetYears)
	assets.GET("/years/:year", d.AssetHandler.GetAssetsByYear)
	assets.GET("/publisher/:publisher",
		d.AssetHandler.GetAssetsByPublisher,
		d.AuthMW.Authenticate, d.AuthMW.RequireRoles("super_admin", "asset_admin", "asset_publisher"))
	assets.POST("",
		d.AssetHandler.CreateAsset,
		d.AuthMW.Authenticate, d.AuthMW.RequireRoles("super_admin", "asset_admin", "asset_publisher"))
	assets.GET("/:id",
		d.AssetHandler.GetAsset,
		d.AuthMW.Authenticate, d.AuthMW.RequireRoles("super_admin", "asset_admin"))
	assets.PUT("/:id",
		d.AssetHandler.UpdateAsset,
		d.AuthMW.Authenticate, d.AuthMW.RequireRoles("super_admin", "asset_admin"))
	assets.DELETE("/:id",
		d.AssetHandler.DeleteAsset,
		d.AuthMW.Authenticate, d.AuthMW.RequireRoles("super_admin", "asset_admin"))

	services := api.Group("/services")
	services.GET("", d.ServiceHandler.ListServices)
	services.GET("/years", d.ServiceHandler.GetServiceYears)
	services.GET("/years/:year", d.ServiceHandler.GetServicesByYear)
	services.GET("/publisher/:publisher",
		d.ServiceHandler.GetServicesByPublisher,
		d.AuthMW.Authenticate, d.AuthMW.RequireRoles("super_admin", "service_admin", "service_publisher"))
	services.POST("",
		d.ServiceHandler.CreateService,
		d.AuthMW.Authenticate, d.AuthMW.RequireRoles("super_admin", "service_admin", "service_publisher"))
	services.GET("/:id",
		d.ServiceHandler.GetService,
		d.AuthMW.Authenticate, d.AuthMW.RequireRoles("super_admin", "service_admin"))
	services.PUT("/:id",
		d.ServiceHandler.UpdateService,
		d.AuthMW.Authenticate, d.AuthMW.RequireRoles("super_admin", "service_admin"))
	services.DELETE("/:id",
		d.ServiceHandler.DeleteService,
		d.AuthMW.Authenticate, d.AuthMW.RequireRoles("super_admin", "service_admin"))

	if d.SearchHandler != nil && d.SearchHandler.ES != nil {
		api.GET("/search", d.SearchHandler.Search)
	}
}
