package rest

import (
	"net/http"

	"github.com/dmitrijs2005/devconnector/internal/logging"
	"github.com/dmitrijs2005/devconnector/internal/server/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	// LoginRateLimit is the number of login/register attempts allowed per
	// minute per client IP; zero disables the limiter.
	LoginRateLimit int
}

type Handler struct {
	users    UserService
	profiles ProfileService
	posts    PostService
	guard    Authenticator
	logger   logging.Logger
	metrics  *metrics.Metrics
}

func NewHandler(us UserService, ps ProfileService, pos PostService, g Authenticator, m *metrics.Metrics, l logging.Logger) *Handler {
	return &Handler{
		users:    us,
		profiles: ps,
		posts:    pos,
		guard:    g,
		metrics:  m,
		logger:   l.With("module", "rest"),
	}
}

// NewRouter builds the gin engine with middleware and all API routes.
func NewRouter(h *Handler, opts Options) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLog(), h.instrument())

	corsCfg := cors.DefaultConfig()
	if len(opts.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = opts.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	limiter := newIPLimiter(opts.LoginRateLimit)
	authed := h.requireAuth()

	usersGroup := r.Group("/api/users")
	{
		usersGroup.POST("/register", h.rateLimit(limiter), h.register)
		usersGroup.POST("/login", h.rateLimit(limiter), h.login)
		usersGroup.GET("/current", authed, h.current)
	}

	profile := r.Group("/api/profile")
	{
		profile.GET("", authed, h.getProfile)
		profile.POST("", authed, h.submitProfile)
		profile.DELETE("", authed, h.deleteAccount)
		profile.GET("/handle/:handle", h.getProfileByHandle)
		profile.GET("/user/:user_id", h.getProfileByUser)
		profile.POST("/experience", authed, h.addExperience)
		profile.POST("/education", authed, h.addEducation)
		profile.DELETE("/experience/:exp_id", authed, h.removeExperience)
		profile.DELETE("/education/:edu_id", authed, h.removeEducation)
	}

	posts := r.Group("/api/posts")
	{
		posts.POST("", authed, h.createPost)
		posts.GET("/:id", h.getPost)
		posts.DELETE("/:id", authed, h.deletePost)
		posts.POST("/like/:id", authed, h.toggleLike)
		posts.POST("/comment/:id", authed, h.addComment)
		posts.DELETE("/:id/comment/:comment_id", authed, h.deleteComment)
	}

	return r
}
