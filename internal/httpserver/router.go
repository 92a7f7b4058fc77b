package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/shoplite/shoplite/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/me", d.AuthHandler.Me)

	products := e.Group("/products")
	products.GET("", d.CatalogHandler.List)
	products.GET("/search", d.CatalogHandler.Search)
	products.GET("/categories", d.CatalogHandler.Categories)
	products.GET("/:id", d.CatalogHandler.Get)

	mw := authmw.New(d.JWTSecret)
	protected := products.Group("", mw.RequireAuth)
	protected.POST("", d.CatalogHandler.Create)
	protected.PUT("/:id", d.CatalogHandler.Update)
	protected.DELETE("/:id", d.CatalogHandler.Delete)
}
