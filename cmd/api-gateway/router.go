package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peer-review-api/internal/handler"
	internalmiddleware "github.com/noah-isme/peer-review-api/internal/middleware"
)

// routeHandlers is the endpoint set mounted by mountRoutes.
type routeHandlers struct {
	Health  gin.HandlerFunc
	Ready   gin.HandlerFunc
	Metrics gin.HandlerFunc

	ListPeriods     gin.HandlerFunc
	GetActivePeriod gin.HandlerFunc
	GetPeriod       gin.HandlerFunc

	StudentLogin  gin.HandlerFunc
	SubmitReviews gin.HandlerFunc

	ListGroups     gin.HandlerFunc
	GroupMembers   gin.HandlerFunc
	SearchStudents gin.HandlerFunc
	GetStudent     gin.HandlerFunc
	ListQuestions  gin.HandlerFunc

	AdminLogin        gin.HandlerFunc
	CreatePeriod      gin.HandlerFunc
	ActivatePeriod    gin.HandlerFunc
	DeactivatePeriods gin.HandlerFunc

	GroupResults  gin.HandlerFunc
	ExportResults gin.HandlerFunc
}

func newRouteHandlers(
	periods *handler.PeriodHandler,
	admission *handler.AdmissionHandler,
	results *handler.ResultHandler,
	directory *handler.DirectoryHandler,
	auth *handler.AuthHandler,
	ops *handler.MetricsHandler,
) routeHandlers {
	return routeHandlers{
		Health:            ops.Health,
		Ready:             ops.Ready,
		Metrics:           ops.Prometheus,
		ListPeriods:       periods.List,
		GetActivePeriod:   periods.GetActive,
		GetPeriod:         periods.Get,
		StudentLogin:      admission.Login,
		SubmitReviews:     admission.Submit,
		ListGroups:        directory.Groups,
		GroupMembers:      directory.Members,
		SearchStudents:    directory.Search,
		GetStudent:        directory.Student,
		ListQuestions:     directory.Questions,
		AdminLogin:        auth.Login,
		CreatePeriod:      periods.Create,
		ActivatePeriod:    periods.Activate,
		DeactivatePeriods: periods.DeactivateAll,
		GroupResults:      results.GroupResults,
		ExportResults:     results.Export,
	}
}

// mountRoutes registers the probe endpoints at the root and the API under
// prefix. adminGuard runs in front of period administration and results; it
// is empty when admin auth is off.
func mountRoutes(r *gin.Engine, prefix string, h routeHandlers, adminGuard []gin.HandlerFunc) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Metrics)

	api := r.Group(prefix)
	api.Use(internalmiddleware.WithResponseMeta())

	api.GET("/periods", h.ListPeriods)
	api.GET("/periods/active", h.GetActivePeriod)
	api.GET("/periods/:id", h.GetPeriod)

	api.POST("/auth/login", h.StudentLogin)
	api.POST("/reviews/submit", h.SubmitReviews)

	api.GET("/groups", h.ListGroups)
	api.GET("/groups/:id/members", h.GroupMembers)
	api.GET("/students/search", h.SearchStudents)
	api.GET("/students/:id", h.GetStudent)
	api.GET("/questions", h.ListQuestions)

	api.POST("/admin/login", h.AdminLogin)

	admin := api.Group("/admin", adminGuard...)
	admin.POST("/periods", h.CreatePeriod)
	admin.POST("/periods/activate", h.ActivatePeriod)
	admin.POST("/periods/deactivate-all", h.DeactivatePeriods)

	results := api.Group("/results", adminGuard...)
	results.GET("", h.GroupResults)
	results.GET("/export", h.ExportResults)
}
