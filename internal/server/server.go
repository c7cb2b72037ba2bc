package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"anoa.com/yamdb/internal/config"
	"anoa.com/yamdb/internal/middleware"
	"anoa.com/yamdb/pkg/mailer"
	"anoa.com/yamdb/pkg/token"
	"anoa.com/yamdb/pkg/validator"

	categoryHttp "anoa.com/yamdb/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/yamdb/internal/modules/category/repository"
	categoryService "anoa.com/yamdb/internal/modules/category/service"

	commentHttp "anoa.com/yamdb/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/yamdb/internal/modules/comment/repository"
	commentService "anoa.com/yamdb/internal/modules/comment/service"

	genreHttp "anoa.com/yamdb/internal/modules/genre/delivery/http"
	genreRepo "anoa.com/yamdb/internal/modules/genre/repository"
	genreService "anoa.com/yamdb/internal/modules/genre/service"

	reviewHttp "anoa.com/yamdb/internal/modules/review/delivery/http"
	reviewRepo "anoa.com/yamdb/internal/modules/review/repository"
	reviewService "anoa.com/yamdb/internal/modules/review/service"

	titleHttp "anoa.com/yamdb/internal/modules/title/delivery/http"
	titleRepo "anoa.com/yamdb/internal/modules/title/repository"
	titleService "anoa.com/yamdb/internal/modules/title/service"

	userHttp "anoa.com/yamdb/internal/modules/user/delivery/http"
	userRepo "anoa.com/yamdb/internal/modules/user/repository"
	userService "anoa.com/yamdb/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	engine *gin.Engine
	addr   string
}

func NewServer(cfg *config.Config, db *gorm.DB, mail mailer.Sender) *Server {
	validator.RegisterCustomValidations()

	limit, maxLimit := cfg.PageDefaultLimit, cfg.PageMaxLimit
	tokens := token.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepo, mail, tokens, userService.AuthOptions{
		CodeTTL:    cfg.ConfirmationCodeTTL,
		BcryptCost: cfg.BcryptCost,
	})
	authHandler := userHttp.NewAuthHandler(authSvc)
	userSvc := userService.NewUserService(userRepo, limit, maxLimit)
	userHandler := userHttp.NewUserHandler(userSvc)

	categoryRepo := categoryRepo.NewCategoryRepository(db)
	categorySvc := categoryService.NewCategoryService(categoryRepo, limit, maxLimit)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	genreRepo := genreRepo.NewGenreRepository(db)
	genreSvc := genreService.NewGenreService(genreRepo, limit, maxLimit)
	genreHandler := genreHttp.NewGenreHandler(genreSvc)

	titleRepo := titleRepo.NewTitleRepository(db)
	titleSvc := titleService.NewTitleService(titleRepo, categoryRepo, genreRepo, limit, maxLimit)
	titleHandler := titleHttp.NewTitleHandler(titleSvc)

	reviewRepo := reviewRepo.NewReviewRepository(db)
	reviewSvc := reviewService.NewReviewService(reviewRepo, limit, maxLimit)
	reviewHandler := reviewHttp.NewReviewHandler(reviewSvc)

	commentRepo := commentRepo.NewCommentRepository(db)
	commentSvc := commentService.NewCommentService(commentRepo, reviewRepo, limit, maxLimit)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	router := gin.New()

	setupCORS(router, cfg.Origins())

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz"},
	}))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	router.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepo, tokens)

	api := router.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/token", authHandler.Token)
	}

	// Every user route needs a signed-in caller; admin rights are checked per action.
	users := api.Group("/users")
	users.Use(authMiddleware.RequireAuth())
	{
		users.GET("/me", userHandler.GetMe)
		users.PATCH("/me", userHandler.UpdateMe)
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:username", userHandler.GetUser)
		users.PATCH("/:username", userHandler.UpdateUser)
		users.DELETE("/:username", userHandler.DeleteUser)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", categoryHandler.GetAllCategories)
		categories.POST("", categoryHandler.CreateCategory)
		categories.GET("/:slug", categoryHandler.GetCategory)
		categories.PATCH("/:slug", categoryHandler.UpdateCategory)
		categories.DELETE("/:slug", categoryHandler.DeleteCategory)
	}

	genres := api.Group("/genres")
	{
		genres.GET("", genreHandler.GetAllGenres)
		genres.POST("", genreHandler.CreateGenre)
		genres.GET("/:slug", genreHandler.GetGenre)
		genres.PATCH("/:slug", genreHandler.UpdateGenre)
		genres.DELETE("/:slug", genreHandler.DeleteGenre)
	}

	titles := api.Group("/titles")
	{
		titles.GET("", titleHandler.GetAllTitles)
		titles.POST("", titleHandler.CreateTitle)
		titles.GET("/:title_id", titleHandler.GetTitle)
		titles.PATCH("/:title_id", titleHandler.UpdateTitle)
		titles.DELETE("/:title_id", titleHandler.DeleteTitle)

		reviews := titles.Group("/:title_id/reviews")
		reviews.GET("", reviewHandler.GetAllReviews)
		reviews.POST("", reviewHandler.CreateReview)
		reviews.GET("/:review_id", reviewHandler.GetReview)
		reviews.PATCH("/:review_id", reviewHandler.UpdateReview)
		reviews.DELETE("/:review_id", reviewHandler.DeleteReview)

		comments := reviews.Group("/:review_id/comments")
		comments.GET("", commentHandler.GetAllComments)
		comments.POST("", commentHandler.CreateComment)
		comments.GET("/:comment_id", commentHandler.GetComment)
		comments.PATCH("/:comment_id", commentHandler.UpdateComment)
		comments.DELETE("/:comment_id", commentHandler.DeleteComment)
	}

	return &Server{
		engine: router,
		addr:   ":" + cfg.Port,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down http server")
	return httpServer.Shutdown(shutdownCtx)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
