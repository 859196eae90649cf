package routes

import (
	"time"

	"inkbytr/api/handler"
	"inkbytr/api/middleware"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Posts          *handler.PostHandler
	AuthMiddleware middleware.AuthMiddleware
	APIRate        *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
}

func NewRouter(e *echo.Echo, authHandler *handler.AuthHandler, postHandler *handler.PostHandler, authMiddleware middleware.AuthMiddleware) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		Posts:          postHandler,
		AuthMiddleware: authMiddleware,
		// 20 requests per minute per client.
		APIRate: middleware.NewRateLimiter(rate.Limit(20.0/60.0), 20, 10*time.Minute),
		// 10 failed attempts per 15 minutes per IP+email; successful
		// logins are not counted.
		LoginRate: middleware.NewRateLimiter(rate.Every(90*time.Second), 10, 30*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	apiRate := r.APIRate.Middleware(middleware.IPKey)
	requireAuth := r.AuthMiddleware.RequireAuth

	e.POST("/auth/register", r.Auth.Register, apiRate)
	e.POST("/auth/login", r.Auth.Login, r.LoginRate.FailureCounting(middleware.IPEmailKey))
	e.GET("/auth/verify-email/:token", r.Auth.VerifyEmail, apiRate)
	e.POST("/auth/forgot-password", r.Auth.ForgotPassword, apiRate)
	e.POST("/auth/reset-password/:token", r.Auth.ResetPassword, apiRate)

	// "/myposts" must register before "/:id" or it would be captured as
	// a post id.
	e.GET("/posts", r.Posts.List, apiRate)
	e.GET("/posts/myposts", r.Posts.MyPosts, apiRate, requireAuth)
	e.GET("/posts/:id", r.Posts.GetByID, apiRate)
	e.POST("/posts", r.Posts.Create, apiRate, requireAuth)
	e.PUT("/posts/:id", r.Posts.Update, apiRate, requireAuth)
	e.DELETE("/posts/:id", r.Posts.Delete, apiRate, requireAuth)
	e.POST("/posts/:id/like", r.Posts.Like, apiRate, requireAuth)
	e.POST("/posts/:id/unlike", r.Posts.Unlike, apiRate, requireAuth)
	e.POST("/posts/:id/comments", r.Posts.AddComment, apiRate, requireAuth)
	e.DELETE("/posts/:id/comments/:commentId", r.Posts.DeleteComment, apiRate, requireAuth)
}
