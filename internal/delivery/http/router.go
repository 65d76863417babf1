package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Services groups the collaborators the handlers call.
type Services struct {
	Attempts   AttemptService
	Quizzes    QuizService
	Cascade    CascadeDeleter
	Users      UserService
	Topics     TopicService
	Statistics StatisticsService
	Generation GenerationService
	Health     HealthChecker
}

// RouterConfig holds transport settings.
type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type Handler struct {
	attempts   AttemptService
	quizzes    QuizService
	cascade    CascadeDeleter
	users      UserService
	topics     TopicService
	statistics StatisticsService
	generation GenerationService
	health     HealthChecker
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewHandler(svc Services, logger *zap.Logger) *Handler {
	return &Handler{
		attempts:   svc.Attempts,
		quizzes:    svc.Quizzes,
		cascade:    svc.Cascade,
		users:      svc.Users,
		topics:     svc.Topics,
		statistics: svc.Statistics,
		generation: svc.Generation,
		health:     svc.Health,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
	}
}

// NewRouter mounts every API route on a chi router.
func NewRouter(svc Services, cfg RouterConfig, logger *zap.Logger) http.Handler {
	h := NewHandler(svc, logger)

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(logger), middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/quiz-attempts", func(r chi.Router) {
			r.Post("/start", h.startAttempt)
			r.Get("/user/{user}", h.listUserAttempts)
			r.Get("/user/{user}/recent", h.listRecentUserAttempts)
			r.Get("/user/{user}/quiz/{quizId}", h.listUserQuizAttempts)
			r.Get("/quiz/{quizId}", h.listQuizAttempts)

			r.Route("/{attemptId}", func(r chi.Router) {
				r.Get("/", h.getAttempt)
				r.Delete("/", h.deleteAttempt)
				r.Post("/submit", h.submitAttempt)
				r.Post("/expire", h.expireAttempt)
				r.Get("/time-exceeded", h.timeExceeded)
				r.Get("/responses", h.listResponses)
				r.Get("/questions/{questionId}/response", h.getResponseForQuestion)
			})
		})

		r.Route("/quizzes", func(r chi.Router) {
			r.Get("/", h.listQuizzes)
			r.Post("/generate-with-ai", h.generateQuiz)
			r.Get("/{quizId}", h.getQuiz)
			r.Delete("/{quizId}", h.deleteQuiz)
		})

		// Question writes live under /professeur so they always pass the ownership check.
		r.Route("/questions", func(r chi.Router) {
			r.Get("/", h.listQuestions)
			r.Get("/quiz/{quizId}", h.listQuizQuestions)
			r.Get("/{questionId}", h.getQuestion)
		})

		r.Route("/professeur/{clerkId}", func(r chi.Router) {
			r.Get("/quizzes", h.listProfessorQuizzes)
			r.Post("/quizzes", h.createQuiz)
			r.Get("/quizzes/{quizId}", h.getProfessorQuiz)
			r.Put("/quizzes/{quizId}", h.updateQuiz)
			r.Delete("/quizzes/{quizId}", h.deleteProfessorQuiz)
			r.Post("/quizzes/{quizId}/questions", h.addQuestion)
			r.Put("/questions/{questionId}", h.updateQuestion)
			r.Delete("/questions/{questionId}", h.deleteQuestion)
		})

		r.Route("/clerk", func(r chi.Router) {
			r.Post("/user-created", h.userCreated)
			r.Post("/user-deleted", h.userDeleted)
		})

		r.Route("/user", func(r chi.Router) {
			r.Put("/update-role", h.updateRole)
			r.Get("/check-role", h.checkRole)
			r.Get("/by-clerk-id/{clerkId}", h.getUserByClerkID)
			r.Get("/{userId}", h.getUser)
		})

		r.Route("/topics", func(r chi.Router) {
			r.Get("/", h.listTopics)
			r.Post("/", h.createTopic)
			r.Get("/search", h.searchTopics)
			r.Get("/{topicId}", h.getTopic)
			r.Put("/{topicId}", h.updateTopic)
			r.Delete("/{topicId}", h.deleteTopic)
		})

		r.Route("/statistics", func(r chi.Router) {
			r.Get("/quiz/{quizId}", h.quizStatistics)
			r.Get("/question/{questionId}", h.questionStatistics)
			r.Get("/system", h.systemStatistics)
		})
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.health(ctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
