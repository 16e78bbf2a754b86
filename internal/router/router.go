package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/hossamdev/portfolio-api/docs"
	"github.com/hossamdev/portfolio-api/internal/config"
	"github.com/hossamdev/portfolio-api/internal/infra/identity"
	"github.com/hossamdev/portfolio-api/internal/middleware"
	"github.com/hossamdev/portfolio-api/internal/modules/handler"
	"github.com/hossamdev/portfolio-api/internal/modules/serializer"
	"github.com/hossamdev/portfolio-api/internal/telemetry"
)

type RouterDeps struct {
	Config          *config.Config
	Log             *zap.Logger
	Identity        identity.Provider
	AuthHandler     *handler.AuthHandler
	ProjectHandler  *handler.ProjectHandler
	MediaHandler    *handler.MediaHandler
	MetadataHandler *handler.MetadataHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// public read surface
		v1.GET("/projects", d.ProjectHandler.ListProjects)
		v1.GET("/projects/tags", d.ProjectHandler.ListTags)
		v1.GET("/projects/:id", d.ProjectHandler.GetProject)
		v1.GET("/metadata", d.MetadataHandler.GetMetadata)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", d.AuthHandler.Login)
			auth.POST("/logout", d.AuthHandler.Logout)
		}

		admin := v1.Group("/admin")
		{
			admin.Use(middleware.AdminAuth(d.Identity))

			admin.GET("/session", d.AuthHandler.Session)

			admin.POST("/projects", d.ProjectHandler.CreateProject)
			admin.PUT("/projects/:id", d.ProjectHandler.UpdateProject)
			admin.DELETE("/projects/:id", d.ProjectHandler.DeleteProject)
			admin.PATCH("/projects/:id/featured", d.ProjectHandler.SetFeatured)

			admin.PUT("/metadata", d.MetadataHandler.SaveMetadata)

			media := admin.Group("/media")
			{
				media.POST("/upload-image", d.MediaHandler.UploadImage)
				media.POST("/upload-pdf", d.MediaHandler.UploadPDF)
				media.DELETE("/delete-image/:public_id", d.MediaHandler.DeleteImage)
			}
		}
	}
	return r
}
