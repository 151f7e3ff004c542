package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"domus-server/src/config"
	"domus-server/src/events"
	"domus-server/src/finance"
	"domus-server/src/handlers"
	"domus-server/src/middleware"
	"domus-server/src/storage"
)

// Deps are the long lived clients the handlers need. Avatars may be nil when
// no bucket is configured.
type Deps struct {
	Pool    *pgxpool.Pool
	Engine  *finance.Engine
	Events  events.Publisher
	Avatars storage.AvatarStore
}

func NewRouter(cfg config.Config, d Deps) *chi.Mux {
	pool, pub := d.Pool, d.Events

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(pool, cfg.JWTSecret))
		r.Post("/register", handlers.Register(pool, cfg.JWTSecret))

		// Protected routes
		r.With(
			middleware.JWTAuthMiddleware(cfg.JWTSecret),
			middleware.HouseholdMiddleware(pool),
			middleware.DemoModeMiddleware(cfg.DemoMode),
		).Group(func(r chi.Router) {
			// User
			r.Get("/user", handlers.GetUser(pool))
			r.Put("/user", handlers.UpdateUser(pool))
			r.Put("/user/email", handlers.UpdateEmail(pool))
			r.Post("/user/change-password", handlers.ChangePassword(pool))
			r.Post("/user/avatar", handlers.UploadAvatar(pool, d.Avatars))
			r.Delete("/user", handlers.DeleteUser(pool))

			// Categories
			r.Get("/categories", handlers.GetCategories(pool))
			r.Post("/categories", handlers.CreateCategory(pool, pub))
			r.Put("/categories/{category_id}", handlers.UpdateCategory(pool, pub))
			r.Delete("/categories/{category_id}", handlers.DeleteCategory(pool, pub))

			// Transactions
			r.Get("/transactions", handlers.GetTransactions(pool))
			r.Get("/transactions/month", handlers.GetMonthTransactions(pool, d.Engine))
			r.Get("/transactions/duplicates", handlers.GetDuplicateTransactions(pool))
			r.Get("/transactions/{transaction_id}", handlers.GetTransaction(pool))
			r.Post("/transactions", handlers.CreateTransaction(pool, pub))
			r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(pool, pub))
			r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(pool, pub))

			// Recurring
			r.Get("/recurring", handlers.GetRecurringTransactions(pool))
			r.Post("/recurring", handlers.CreateRecurringTransaction(pool, pub))
			r.Put("/recurring/{recurring_id}", handlers.UpdateRecurringTransaction(pool, pub))
			r.Delete("/recurring/{recurring_id}", handlers.DeleteRecurringTransaction(pool, pub))

			// Views
			r.Get("/dashboard", handlers.GetDashboard(pool, d.Engine))
			r.Get("/analysis", handlers.GetAnalysis(pool, d.Engine))

			// Household
			r.Get("/household", handlers.GetHousehold(pool))
			r.Get("/household/members", handlers.GetMembers(pool))
			r.With(middleware.OwnerMiddleware).Group(func(r chi.Router) {
				r.Put("/household", handlers.RenameHousehold(pool))
				r.Post("/household/invitations", handlers.InviteMember(pool, pub))
				r.Delete("/household/invitations/{invitation_id}", handlers.CancelInvitation(pool))
			})

			// Invitations addressed to the caller
			r.Get("/invitations", handlers.GetMyInvitations(pool))
			r.Post("/invitations/{invitation_id}/accept", handlers.AcceptInvitation(pool, pub))
			r.Post("/invitations/{invitation_id}/decline", handlers.DeclineInvitation(pool))

			// Tasks
			r.Get("/tasks", handlers.GetTasks(pool))
			r.Post("/tasks", handlers.CreateTask(pool, pub))
			r.Put("/tasks/{task_id}", handlers.UpdateTask(pool, pub))
			r.Patch("/tasks/{task_id}/status", handlers.UpdateTaskStatus(pool, pub))
			r.Delete("/tasks/{task_id}", handlers.DeleteTask(pool, pub))

			r.Get("/task-categories", handlers.GetTaskCategories(pool))
			r.Post("/task-categories", handlers.CreateTaskCategory(pool))
			r.Put("/task-categories/{category_id}", handlers.UpdateTaskCategory(pool))
			r.Delete("/task-categories/{category_id}", handlers.DeleteTaskCategory(pool))
		})

		// Super Admin Routes
		r.With(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.SuperAdminMiddleware).Group(func(r chi.Router) {
			r.Get("/admin/users", handlers.GetAllUsers(pool))
			r.Post("/admin/user/lock/{user_id}", handlers.LockUser(pool))
			r.Post("/admin/user/unlock/{user_id}", handlers.UnlockUser(pool))

			r.Post("/admin/cache/clear/{cache_name}", handlers.ClearCache())
		})
	})

	return r
}
