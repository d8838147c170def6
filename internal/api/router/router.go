// Package router sets up the API routes of the bridge server.
// The IDE side talks to these routes; the CLI does not need them.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/verustcode/giteebridge/consts"
	"github.com/verustcode/giteebridge/internal/api/handler"
	"github.com/verustcode/giteebridge/internal/api/middleware"
	"github.com/verustcode/giteebridge/internal/config"
	"github.com/verustcode/giteebridge/internal/git/provider"
)

// Dependencies are the services the routes act through
type Dependencies struct {
	Provider provider.Provider
	Clients  handler.ClientResolver
}

// Setup configures all API routes
func Setup(r *gin.Engine, cfg *config.Config, deps Dependencies) {
	// Apply global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Logging.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	// Internal errors are only detailed in debug mode
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))

	// Apply OpenTelemetry tracing middleware
	r.Use(otelgin.Middleware(consts.ServiceName))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": consts.Version})
	})

	v1 := r.Group("/api/v1")
	// A caller may act with its own token instead of the configured one
	v1.Use(middleware.UpstreamToken())

	providerHandler := handler.NewProviderHandler(deps.Provider)
	v1.GET("/provider", providerHandler.GetStatus)
	v1.POST("/provider/enable", providerHandler.Enable)

	remoteHandler := handler.NewRemoteHandler(deps.Provider.Server())
	v1.POST("/remote/parse", remoteHandler.ParseRemote)

	repoHandler := handler.NewRepositoryHandler(deps.Clients)
	issueHandler := handler.NewIssueHandler(deps.Clients)
	pullHandler := handler.NewPullRequestHandler(deps.Clients)
	gistHandler := handler.NewGistHandler(deps.Clients)

	v1.GET("/repositories", repoHandler.ListRepositories)

	repos := v1.Group("/repos/:owner/:repo")
	{
		repos.GET("", repoHandler.GetRepository)
		repos.GET("/branches", repoHandler.ListBranches)
		repos.GET("/forks", repoHandler.ListForks)
		repos.POST("/forks", repoHandler.CreateFork)

		repos.GET("/issues", issueHandler.ListIssues)
		repos.POST("/issues", issueHandler.CreateIssue)
		repos.GET("/issues/:number", issueHandler.GetIssue)
		repos.PATCH("/issues/:number", issueHandler.UpdateIssueState)
		repos.GET("/issues/:number/comments", issueHandler.ListComments)
		repos.POST("/issues/:number/comments", issueHandler.CreateComment)

		repos.GET("/pulls", pullHandler.ListPullRequests)
		repos.POST("/pulls", pullHandler.CreatePullRequest)
		repos.GET("/pulls/:number", pullHandler.GetPullRequest)
		repos.PUT("/pulls/:number/merge", pullHandler.MergePullRequest)
		repos.GET("/pulls/:number/commits", pullHandler.ListCommits)
	}

	gists := v1.Group("/gists")
	{
		gists.GET("", gistHandler.ListGists)
		gists.POST("", gistHandler.CreateGist)
	}
}
