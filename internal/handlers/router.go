package handlers

import (
	"net/http"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"blogz/web"
)

// Router builds the gin engine. ssl enables the HTTPS-only headers and
// redirect for deployments that terminate TLS in this process.
func (h *Handler) Router(ssl bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), h.WithRecover())

	secureConfig := secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
	}
	if ssl {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}
	r.Use(secure.New(secureConfig))
	r.Use(h.metrics.Middleware())
	r.Use(h.SessionGate())

	r.StaticFS("/static", http.FS(web.Static()))
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	r.GET("/healthz", h.Health)

	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.Register)
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)

	r.GET("/", h.Blogs)
	r.GET("/blog", h.Blogs)
	r.GET("/myblog", h.MyBlogs)
	r.GET("/userblog", h.UserBlogs)
	r.GET("/users", h.Users)
	r.GET("/post", h.Post)
	r.GET("/newblog", h.NewBlogForm)
	r.POST("/newblog", h.NewBlog)

	r.NoRoute(h.NotFound)
	return r
}
