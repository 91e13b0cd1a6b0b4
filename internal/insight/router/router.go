// Package router wires the insight HTTP routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/insight/internal/insight/biz"
	"github.com/kart-io/insight/internal/insight/handler"
	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/pkg/auth"
	"github.com/kart-io/insight/pkg/datasource"
	"github.com/kart-io/insight/pkg/middleware"
	"github.com/kart-io/insight/pkg/querygen"
)

// Register builds the services and registers every route on the engine.
func Register(engine *gin.Engine, ds store.Factory, authn auth.Authenticator, prober datasource.Prober, gen querygen.Client) {
	logger.Info("Registering insight routes...")

	authz := biz.NewAuthzService(ds)
	users := biz.NewUserService(ds, authn)
	projects := biz.NewProjectService(ds)
	roles := biz.NewRoleService(ds)
	memberships := biz.NewMembershipService(ds)
	dashboards := biz.NewDashboardService(ds)
	charts := biz.NewChartService(ds)
	shares := biz.NewShareService(ds)
	connections := biz.NewConnectionService(ds, prober)
	queries := biz.NewQueryService(ds, gen, connections)

	authHandler := handler.NewAuthHandler(users)
	userHandler := handler.NewUserHandler(users, authz)
	projectHandler := handler.NewProjectHandler(projects, memberships, authz)
	roleHandler := handler.NewRoleHandler(roles)
	dashboardHandler := handler.NewDashboardHandler(dashboards, shares, authz)
	chartHandler := handler.NewChartHandler(charts, shares, authz)
	connectionHandler := handler.NewConnectionHandler(connections, authz)
	queryHandler := handler.NewQueryHandler(queries)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/v1")

	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("")
	authed.Use(middleware.Auth(authn))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.PUT("/auth/password", authHandler.ChangePassword)
		authed.GET("/auth/profile", authHandler.Profile)

		usersGroup := authed.Group("/users")
		{
			usersGroup.POST("", userHandler.Create)
			usersGroup.GET("", userHandler.List)
			usersGroup.GET("/:id", userHandler.Get)
			usersGroup.PUT("/:id", userHandler.Update)
			usersGroup.DELETE("/:id", userHandler.Delete)
		}

		projectsGroup := authed.Group("/projects")
		{
			projectsGroup.POST("", projectHandler.Create)
			projectsGroup.GET("", projectHandler.List)
			projectsGroup.GET("/:id", projectHandler.Get)
			projectsGroup.PUT("/:id", middleware.RequirePermission(authz, perm.EditProject, "id"), projectHandler.Update)
			projectsGroup.DELETE("/:id", projectHandler.Delete)

			projectsGroup.GET("/:id/members", projectHandler.ListMembers)
			projectsGroup.GET("/:id/owners", projectHandler.ListOwners)
			projectsGroup.POST("/:id/members", middleware.RequirePermission(authz, perm.EditProject, "id"), projectHandler.AddMember)
			projectsGroup.PUT("/:id/members/:user", middleware.RequirePermission(authz, perm.EditProject, "id"), projectHandler.SetMemberRole)
			projectsGroup.DELETE("/:id/members/:user", middleware.RequirePermission(authz, perm.EditProject, "id"), projectHandler.RemoveMember)

			projectsGroup.GET("/:id/roles", roleHandler.List)
			projectsGroup.POST("/:id/roles", middleware.RequirePermission(authz, perm.CreateRole, "id"), roleHandler.Create)
			projectsGroup.GET("/:id/roles/:role", roleHandler.Get)
			projectsGroup.PUT("/:id/roles/:role", middleware.RequirePermission(authz, perm.EditRole, "id"), roleHandler.Update)
			projectsGroup.DELETE("/:id/roles/:role", middleware.RequirePermission(authz, perm.DeleteRole, "id"), roleHandler.Delete)

			projectsGroup.POST("/:id/apikey", userHandler.IssueAPIKey)
			projectsGroup.GET("/:id/apikey", userHandler.GetAPIKey)
		}

		authed.GET("/permissions", roleHandler.Catalog)

		dashboardsGroup := authed.Group("/dashboards")
		{
			dashboardsGroup.POST("", dashboardHandler.Create)
			dashboardsGroup.GET("", dashboardHandler.List)
			dashboardsGroup.GET("/:id", dashboardHandler.Get)
			dashboardsGroup.PUT("/:id", dashboardHandler.Update)
			dashboardsGroup.DELETE("/:id", dashboardHandler.Delete)

			dashboardsGroup.GET("/:id/charts", dashboardHandler.ListCharts)
			dashboardsGroup.POST("/:id/charts", dashboardHandler.AttachChart)
			dashboardsGroup.DELETE("/:id/charts/:chart", dashboardHandler.DetachChart)

			dashboardsGroup.GET("/:id/share", dashboardHandler.ListGrants)
			dashboardsGroup.POST("/:id/share", dashboardHandler.Share)
			dashboardsGroup.DELETE("/:id/share/:user", dashboardHandler.Revoke)

			dashboardsGroup.PUT("/:id/favorite", dashboardHandler.SetFavorite)
		}
		authed.GET("/favorites", dashboardHandler.ListFavorites)

		chartsGroup := authed.Group("/charts")
		{
			chartsGroup.POST("", chartHandler.Create)
			chartsGroup.GET("", chartHandler.List)
			chartsGroup.GET("/:id", chartHandler.Get)
			chartsGroup.PUT("/:id", chartHandler.Update)
			chartsGroup.DELETE("/:id", chartHandler.Delete)

			chartsGroup.GET("/:id/share", chartHandler.ListGrants)
			chartsGroup.POST("/:id/share", chartHandler.Share)
			chartsGroup.DELETE("/:id/share/:user", chartHandler.Revoke)

			chartsGroup.PUT("/:id/favorite", chartHandler.SetFavorite)
		}

		connectionsGroup := authed.Group("/connections")
		{
			connectionsGroup.POST("", connectionHandler.Create)
			connectionsGroup.GET("", connectionHandler.List)
			connectionsGroup.GET("/:id", connectionHandler.Get)
			connectionsGroup.PUT("/:id", connectionHandler.Update)
			connectionsGroup.DELETE("/:id", connectionHandler.Delete)

			connectionsGroup.GET("/:id/tables", connectionHandler.Tables)
			connectionsGroup.POST("/:id/refresh", connectionHandler.Refresh)
			connectionsGroup.PUT("/:id/bans", connectionHandler.SetTableBans)
			connectionsGroup.POST("/:id/related", connectionHandler.Relate)
			connectionsGroup.GET("/:id/related", connectionHandler.ListRelated)
		}

		authed.POST("/query/generate", queryHandler.Generate)
	}
}
