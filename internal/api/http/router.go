package http

import (
	"github.com/EternisAI/lockfleet/internal/api/http/handler"
	"github.com/EternisAI/lockfleet/internal/api/http/middleware"
	"github.com/EternisAI/lockfleet/internal/auth"
	"github.com/EternisAI/lockfleet/internal/credentials"
	"github.com/EternisAI/lockfleet/internal/devices"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Auth        *auth.Service
	Credentials *credentials.Service
	Devices     *devices.Synchronizer
	// Audit is nil when no database is configured.
	Audit   handler.AuditLister
	Sandbox bool
}

func SetupRoute(engine *gin.Engine, srvs *Services) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler(srvs.Sandbox)
	engine.GET("/health", healthHandler.Check)

	authHandler := handler.NewAuthHandler(srvs.Auth)
	engine.POST("/auth/login", authHandler.Login)

	devicesHandler := handler.NewDevicesHandler(srvs.Devices, srvs.Audit)
	credentialsHandler := handler.NewCredentialsHandler(srvs.Credentials)

	api := engine.Group("/api/v1", middleware.Authenticate(srvs.Auth))
	{
		api.GET("/devices", devicesHandler.ListDevices)
		api.GET("/devices/:device_id", devicesHandler.GetDevice)
		api.GET("/devices/:device_id/users", devicesHandler.ListUsers)
		api.GET("/devices/:device_id/users/:user_id/keys", devicesHandler.ListUserKeys)
		api.GET("/devices/:device_id/unassigned-keys", devicesHandler.ListUnassignedKeys)
		api.GET("/devices/:device_id/temp-passwords", devicesHandler.ListTempPasswords)
		api.GET("/devices/:device_id/temp-passwords/:password_id", devicesHandler.GetTempPassword)
		api.GET("/devices/:device_id/alarm-logs", devicesHandler.ListAlarmLogs)
		api.GET("/devices/:device_id/unlock-logs", devicesHandler.ListUnlockLogs)
		api.GET("/devices/:device_id/audit", devicesHandler.ListAudit)

		write := api.Group("", middleware.RequireRole(auth.RoleAdmin, middleware.RoleService))
		write.POST("/devices/:device_id/temp-passwords", credentialsHandler.CreateTempPassword)
		write.PUT("/devices/:device_id/temp-passwords/:password_id", credentialsHandler.ModifyTempPassword)
		write.DELETE("/devices/:device_id/temp-passwords/:password_id", credentialsHandler.DeleteTempPassword)
		write.PUT("/devices/:device_id/temp-passwords/:password_id/freeze", credentialsHandler.FreezeTempPassword)
		write.PUT("/devices/:device_id/temp-passwords/:password_id/unfreeze", credentialsHandler.UnfreezeTempPassword)
		write.POST("/devices/:device_id/temp-passwords/reset", credentialsHandler.ClearTempPasswords)
		write.POST("/devices/:device_id/users/:user_id/keys", credentialsHandler.AssignCredential)
		write.POST("/devices/:device_id/users/:user_id/keys/unbind", credentialsHandler.UnbindCredentials)
		write.POST("/devices/:device_id/unlock", credentialsHandler.Unlock)
	}
}
