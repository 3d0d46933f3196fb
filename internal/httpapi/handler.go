package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/walletquest/gamification-service/internal/gamification"
	"github.com/walletquest/gamification-service/internal/ledger"
	"github.com/walletquest/gamification-service/internal/platform/apierr"
	"github.com/walletquest/gamification-service/internal/platform/auth"
	"github.com/walletquest/gamification-service/internal/platform/logging"
)

const (
	serviceTimeout   = 8 * time.Second
	maxBodyBytes     = 64 * 1024
	defaultCurveSize = 10
	maxCurveSize     = 100
)

// RegisterRoutes registers all gamification routes
func RegisterRoutes(r chi.Router, service ledger.Service, logger *slog.Logger) {
	r.Route("/v1/gamification", func(r chi.Router) {
		r.Get("/me", getStats(service, logger))
	})

	r.Route("/v1/achievements", func(r chi.Router) {
		r.Get("/", listAchievements())
		r.Get("/me", getAchievementsMe(service, logger))
	})

	r.Get("/v1/levels", getLevels())

	r.Route("/v1/transactions", func(r chi.Router) {
		r.Get("/", listTransactions(service, logger))
		r.Post("/", recordTransaction(service, logger))
	})

	r.Route("/v1/profile", func(r chi.Router) {
		r.Get("/", getProfile(service, logger))
		r.Put("/balance", updateBalance(service, logger))
	})
}

func getStats(service ledger.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var loc *time.Location
		if tz := strings.TrimSpace(r.URL.Query().Get("tz")); tz != "" {
			l, err := time.LoadLocation(tz)
			if err != nil {
				writeError(w, r, apierr.CodeBadRequest, "invalid tz")
				return
			}
			loc = l
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		stats, err := service.GetStats(ctx, userID, loc)
		if err != nil {
			writeServiceError(w, r, logger, "failed to load gamification stats", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func listAchievements() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"achievements": gamification.Catalog()})
	}
}

func getAchievementsMe(service ledger.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		filter := gamification.AchievementFilter(strings.ToLower(r.URL.Query().Get("status")))

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		achievements, err := service.GetAchievements(ctx, userID, filter)
		if err != nil {
			writeServiceError(w, r, logger, "failed to load achievements", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"achievements": achievements})
	}
}

type levelResponse struct {
	gamification.Level
	LevelProgress float64 `json:"level_progress"`
}

func getLevels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		upto := defaultCurveSize
		if raw := query.Get("upto"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxCurveSize {
				writeError(w, r, apierr.CodeBadRequest, "upto must be between 1 and "+strconv.Itoa(maxCurveSize))
				return
			}
			upto = n
		}

		resp := map[string]any{"curve": gamification.Curve(upto)}

		if raw := query.Get("points"); raw != "" {
			points, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, r, apierr.CodeBadRequest, "points must be an integer")
				return
			}
			level := gamification.ComputeLevel(points)
			resp["current"] = levelResponse{Level: level, LevelProgress: level.Progress()}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func listTransactions(service ledger.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		txs, err := service.ListTransactions(ctx, userID)
		if err != nil {
			writeServiceError(w, r, logger, "failed to list transactions", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
	}
}

type recordRequest struct {
	ID           string           `json:"id"`
	Type         string           `json:"type"`
	Amount       decimal.Decimal  `json:"amount"`
	Currency     string           `json:"currency"`
	Counterparty string           `json:"counterparty"`
	Description  string           `json:"description"`
	CreatedAt    *time.Time       `json:"created_at"`
	BalanceAfter *decimal.Decimal `json:"balance_after"`
}

func recordTransaction(service ledger.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var body recordRequest
		if !decodeBody(w, r, &body) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		tx, err := service.RecordTransaction(ctx, ledger.RecordInput{
			ID:           body.ID,
			UserID:       userID,
			Type:         gamification.TransactionType(strings.ToLower(strings.TrimSpace(body.Type))),
			Amount:       body.Amount,
			Currency:     strings.TrimSpace(body.Currency),
			Counterparty: body.Counterparty,
			Description:  body.Description,
			CreatedAt:    body.CreatedAt,
			BalanceAfter: body.BalanceAfter,
		})
		if err != nil {
			writeServiceError(w, r, logger, "failed to record transaction", err, userID)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func getProfile(service ledger.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		profile, err := service.GetProfile(ctx, userID)
		if err != nil {
			writeServiceError(w, r, logger, "failed to load profile", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func updateBalance(service ledger.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var body struct {
			Balance *decimal.Decimal `json:"balance"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Balance == nil {
			writeError(w, r, apierr.CodeBadRequest, "balance is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		profile, err := service.UpdateBalance(ctx, userID, *body.Balance)
		if err != nil {
			writeServiceError(w, r, logger, "failed to update balance", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user.UserID == "" {
		writeError(w, r, apierr.CodeUnauthorized, "missing user ID")
		return "", false
	}
	return user.UserID, true
}

// decodeBody reads a single JSON object, rejecting unknown fields and trailing data.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil && decoder.Decode(&struct{}{}) != io.EOF {
		err = errors.New("trailing data")
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apierr.ErrorResponse{
				Code:      apierr.CodeBadRequest,
				Message:   "payload too large",
				RequestID: middleware.GetReqID(r.Context()),
			})
			return false
		}
		writeError(w, r, apierr.CodeBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeServiceError maps ledger errors onto the error envelope. Only unexpected failures are logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, message string, err error, userID string) {
	switch {
	case errors.Is(err, ledger.ErrMissingUserID):
		writeError(w, r, apierr.CodeUnauthorized, "missing user ID")
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, ledger.ErrInvalidFilter):
		writeError(w, r, apierr.CodeBadRequest, err.Error())
	case errors.Is(err, ledger.ErrConflict):
		writeError(w, r, apierr.CodeConflict, "transaction already recorded")
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, r, apierr.CodeNotFound, "not found")
	default:
		logRequestError(r.Context(), logger, message, err, userID)
		writeError(w, r, apierr.CodeInternal, message)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, code, message string) {
	writeJSON(w, apierr.ToStatusCode(code), apierr.ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func logRequestError(ctx context.Context, logger *slog.Logger, message string, err error, userID string) {
	if logger == nil || err == nil {
		return
	}
	logging.WithRequestID(ctx, logger, middleware.GetReqID(ctx)).Error(message,
		slog.String("userId", userID),
		slog.Any("error", err),
	)
}
