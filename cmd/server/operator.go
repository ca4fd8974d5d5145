package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/flavourheaven/costonomy/internal/costonomy"
	applog "github.com/flavourheaven/costonomy/internal/log"
)

const (
	outletHeader = "X-Outlet-Id"
	userHeader   = "X-User-Id"
)

// operatorMiddleware scopes remote calls to the outlet and user named in the
// request headers. Missing headers fall back to the configured defaults.
func operatorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op, err := operatorFromHeaders(r.Header)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(costonomy.WithOperator(r.Context(), op)))
	})
}

func operatorFromHeaders(h http.Header) (costonomy.Operator, error) {
	var (
		op  costonomy.Operator
		err error
	)
	if op.OutletID, err = headerID(h, outletHeader); err != nil {
		return costonomy.Operator{}, err
	}
	if op.UserID, err = headerID(h, userHeader); err != nil {
		return costonomy.Operator{}, err
	}
	return op, nil
}

func headerID(h http.Header, name string) (int64, error) {
	raw := strings.TrimSpace(h.Get(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return id, nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		defer func() {
			applog.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(started),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
