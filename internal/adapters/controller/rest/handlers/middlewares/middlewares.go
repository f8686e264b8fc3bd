package middlewares

import (
	"context"
	"errors"
	mathrand "math/rand"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/response"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/metrics"
	"github.com/vstrecha/vstrecha/backend/internal/domain/common/errorz"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
	"github.com/vstrecha/vstrecha/backend/pkg/initdata"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-Id"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userKey
	profileKey
)

type profileService interface {
	GetByExternalID(ctx context.Context, externalID int64) (*entity.Profile, error)
}

type Options struct {
	BotToken   string
	AuthMaxAge time.Duration
}

type Handler struct {
	profiles profileService
	logger   *types.Logger
	token    string
	maxAge   time.Duration
	now      func() time.Time

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

func New(profiles profileService, opts Options, logger *types.Logger) *Handler {
	return &Handler{
		profiles: profiles,
		logger:   logger,
		token:    opts.BotToken,
		maxAge:   opts.AuthMaxAge,
		now:      time.Now,
		entropy:  ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Public registers a route that needs no credentials.
func (h *Handler) Public(mux *http.ServeMux, pattern string, next http.HandlerFunc) {
	mux.Handle(pattern, metrics.Instrument(pattern, next))
}

// Authenticated registers a route that needs verified init data but no profile yet.
func (h *Handler) Authenticated(mux *http.ServeMux, pattern string, next http.HandlerFunc) {
	mux.Handle(pattern, metrics.Instrument(pattern, h.authenticate(next)))
}

// Registered registers a route that acts on behalf of an existing profile.
func (h *Handler) Registered(mux *http.ServeMux, pattern string, next http.HandlerFunc) {
	mux.Handle(pattern, metrics.Instrument(pattern, h.authenticate(h.requireProfile(next))))
}

// User returns the verified init data user of the request.
func User(ctx context.Context) *initdata.User {
	user, _ := ctx.Value(userKey).(*initdata.User)
	return user
}

// Profile returns the profile acting in the request.
func Profile(ctx context.Context) *entity.Profile {
	profile, _ := ctx.Value(profileKey).(*entity.Profile)
	return profile
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WithUser(ctx context.Context, user *initdata.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func WithProfile(ctx context.Context, profile *entity.Profile) context.Context {
	return context.WithValue(ctx, profileKey, profile)
}

func (h *Handler) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := initdata.FromHeader(r.Header.Get("Authorization"))
		if err != nil {
			response.Error(w, r, h.logger, errorz.New(errorz.Unauthorized, err.Error()))
			return
		}
		user, err := initdata.Verify(raw, h.token, h.maxAge, h.now())
		if err != nil {
			h.logger.Debugw("init data rejected", "request_id", RequestID(r.Context()), "error", err)
			response.Error(w, r, h.logger, errorz.New(errorz.Unauthorized, "Invalid authorization data"))
			return
		}
		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

func (h *Handler) requireProfile(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := h.profiles.GetByExternalID(r.Context(), User(r.Context()).ID)
		if err != nil {
			response.Error(w, r, h.logger, err)
			return
		}
		next(w, r.WithContext(WithProfile(r.Context(), profile)))
	}
}

// RequestIDs keeps a sane incoming X-Request-Id or assigns a new ULID.
func (h *Handler) RequestIDs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = h.newRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (h *Handler) newRequestID() string {
	h.entropyMu.Lock()
	defer h.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), h.entropy).String()
}

// Logging writes one access log line per request.
func (h *Handler) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		fields := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.code,
			"duration", time.Since(start),
			"request_id", RequestID(r.Context()),
			"ip", clientIP(r),
		}
		if sw.code >= http.StatusInternalServerError {
			h.logger.Errorw("request", fields...)
			return
		}
		h.logger.Infow("request", fields...)
	})
}

// MaxBodyBytes caps the request body. Decoding a larger body fails with 413.
func MaxBodyBytes(next http.Handler, maxBytes int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if maxBytes > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next.ServeHTTP(w, r)
	})
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies a token bucket per client IP. Idle buckets are dropped
// once a minute until ctx is done.
func RateLimit(ctx context.Context, next http.Handler, burst int, perSecond float64) http.Handler {
	if burst <= 0 || perSecond <= 0 {
		return next
	}

	var mu sync.Mutex
	visitors := make(map[string]*visitor)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				mu.Lock()
				for ip, v := range visitors {
					if now.Sub(v.lastSeen) > 3*time.Minute {
						delete(visitors, ip)
					}
				}
				mu.Unlock()
			}
		}
	}()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		mu.Lock()
		v, ok := visitors[ip]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
			visitors[ip] = v
		}
		v.lastSeen = time.Now()
		allowed := v.limiter.Allow()
		mu.Unlock()

		if !allowed {
			response.Detail(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Recover turns a panicking handler into a 500.
func (h *Handler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				h.logger.Errorw("handler panic", "request_id", RequestID(r.Context()), "panic", rec)
				response.Detail(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
