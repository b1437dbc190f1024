package echo

import (
	e "github.com/labstack/echo/v4"

	"github.com/mohammadpnp/customer-import/internal/infrastructure/auth"
)

type Routes struct {
	Auth      *AuthHandler
	Import    *ImportHandler
	Tasks     *TaskHandler
	Customers *CustomerHandler
	Remarks   *CustomerRemarkHandler
	Logs      *OperationLogHandler

	// Authenticate guards every route except login. Nil leaves the API open.
	Authenticate e.MiddlewareFunc
}

func RegisterRoutes(server *e.Echo, r Routes) {
	api := server.Group("/api/v1")
	if r.Auth != nil {
		api.POST("/auth/login", r.Auth.Login)
	}

	var guarded []e.MiddlewareFunc
	if r.Authenticate != nil {
		guarded = append(guarded, r.Authenticate)
	}
	secured := api.Group("", guarded...)
	admin := RequireRole(auth.RoleAdmin)

	if r.Import != nil {
		secured.GET("/customers/import/template", r.Import.Template)
		secured.POST("/customers/import", r.Import.Import, admin)
		secured.POST("/customers/import/chunk", r.Import.UploadChunk, admin)
		secured.POST("/customers/import/merge", r.Import.MergeChunks, admin)
		secured.POST("/customers/import/chunk/cleanup", r.Import.CleanupUpload, admin)
	}

	if r.Tasks != nil {
		secured.GET("/tasks", r.Tasks.List)
		secured.GET("/tasks/latest-processing", r.Tasks.LatestProcessing)
		secured.GET("/tasks/:id", r.Tasks.Get)
		secured.DELETE("/tasks/:id", r.Tasks.Delete, admin)
		secured.POST("/tasks/batch-delete", r.Tasks.BatchDelete, admin)
		secured.PUT("/tasks/:id/remark", r.Tasks.UpdateRemark, admin)
	}

	if r.Customers != nil {
		secured.GET("/customers", r.Customers.Search)
		secured.GET("/customers/count", r.Customers.Count)
		secured.GET("/customers/count/today", r.Customers.CountToday)
		secured.GET("/customers/:id", r.Customers.Get)
		secured.POST("/customers", r.Customers.Create, admin)
		secured.PUT("/customers/:id", r.Customers.Update, admin)
		secured.DELETE("/customers/:id", r.Customers.Delete, admin)
		secured.POST("/customers/batch-delete", r.Customers.BatchDelete, admin)
		if r.Customers.batchQuery != nil {
			secured.POST("/customers/batch-query", r.Customers.BatchQuery)
		}
	}

	if r.Remarks != nil {
		secured.GET("/customers/:id/remark", r.Remarks.Get)
		secured.PUT("/customers/:id/remark", r.Remarks.Save, admin)
		secured.DELETE("/customers/:id/remark", r.Remarks.Delete, admin)
	}

	if r.Logs != nil {
		secured.GET("/operation-logs", r.Logs.List, admin)
		secured.GET("/operation-logs/search", r.Logs.Search, admin)
	}
}
