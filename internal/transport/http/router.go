package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/openshelf/catalog/internal/handlers"
	authmw "github.com/openshelf/catalog/internal/middleware/auth"
)

type Deps struct {
	Gate           *authmw.Gate
	TokenHandler   *handlers.TokenHandler
	UserHandler    *handlers.UserHandler
	LibraryHandler *handlers.LibraryHandler
	AuthorHandler  *handlers.AuthorHandler
	SeriesHandler  *handlers.SeriesHandler
	StoryHandler   *handlers.StoryHandler
	VolumeHandler  *handlers.VolumeHandler
	SearchHandler  *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/token", d.TokenHandler.Issue)
	v1.DELETE("/token", d.TokenHandler.Revoke)

	v1.POST("/users", d.UserHandler.CreateUser, d.Gate.RequireSuperuser)

	v1.GET("/search", d.SearchHandler.Search, d.Gate.RequireRegular)

	libraries := v1.Group("/libraries")

	libraries.GET("", d.LibraryHandler.GetLibraries, d.Gate.RequireRegular)
	libraries.GET("/:libraryId", d.LibraryHandler.GetLibrary, d.Gate.RequireRegular)
	libraries.POST("", d.LibraryHandler.CreateLibrary, d.Gate.RequireSuperuser)
	libraries.PATCH("/:libraryId", d.LibraryHandler.PatchLibrary, d.Gate.RequireSuperuser)
	libraries.DELETE("/:libraryId", d.LibraryHandler.DeleteLibrary, d.Gate.RequireSuperuser)

	authors := v1.Group("/libraries/:libraryId/authors")

	authors.GET("", d.AuthorHandler.GetAuthors, d.Gate.RequireRegular)
	authors.GET("/:id", d.AuthorHandler.GetAuthor, d.Gate.RequireRegular)
	authors.POST("", d.AuthorHandler.CreateAuthor, d.Gate.RequireAdmin)
	authors.PATCH("/:id", d.AuthorHandler.PatchAuthor, d.Gate.RequireAdmin)
	authors.DELETE("/:id", d.AuthorHandler.DeleteAuthor, d.Gate.RequireAdmin)

	series := v1.Group("/libraries/:libraryId/series")

	series.GET("", d.SeriesHandler.GetAllSeries, d.Gate.RequireRegular)
	series.GET("/:id", d.SeriesHandler.GetSeries, d.Gate.RequireRegular)
	series.POST("", d.SeriesHandler.CreateSeries, d.Gate.RequireAdmin)
	series.PATCH("/:id", d.SeriesHandler.PatchSeries, d.Gate.RequireAdmin)
	series.DELETE("/:id", d.SeriesHandler.DeleteSeries, d.Gate.RequireAdmin)

	stories := v1.Group("/libraries/:libraryId/stories")

	stories.GET("", d.StoryHandler.GetStories, d.Gate.RequireRegular)
	stories.GET("/:id", d.StoryHandler.GetStory, d.Gate.RequireRegular)
	stories.POST("", d.StoryHandler.CreateStory, d.Gate.RequireAdmin)
	stories.PATCH("/:id", d.StoryHandler.PatchStory, d.Gate.RequireAdmin)
	stories.DELETE("/:id", d.StoryHandler.DeleteStory, d.Gate.RequireAdmin)

	volumes := v1.Group("/libraries/:libraryId/volumes")

	volumes.GET("", d.VolumeHandler.GetVolumes, d.Gate.RequireRegular)
	volumes.GET("/:id", d.VolumeHandler.GetVolume, d.Gate.RequireRegular)
	volumes.POST("", d.VolumeHandler.CreateVolume, d.Gate.RequireAdmin)
	volumes.PATCH("/:id", d.VolumeHandler.PatchVolume, d.Gate.RequireAdmin)
	volumes.DELETE("/:id", d.VolumeHandler.DeleteVolume, d.Gate.RequireAdmin)
}
