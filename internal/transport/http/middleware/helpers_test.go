package middleware

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type writeErrRecorder struct {
	called bool
	err    error
}

func (w *writeErrRecorder) fn(rw http.ResponseWriter, r *http.Request, err error) {
	w.called = true
	w.err = err
	status := http.StatusInternalServerError
	if de, ok := domain.As(err); ok {
		switch de.Kind {
		case domain.KindAuth:
			status = http.StatusUnauthorized
		case domain.KindForbidden:
			status = http.StatusForbidden
		case domain.KindRateLimited:
			status = http.StatusTooManyRequests
		}
	}
	rw.WriteHeader(status)
}

type nextRecorder struct {
	called bool
	req    *http.Request
}

func (n *nextRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.called = true
		n.req = r
		w.WriteHeader(http.StatusOK)
	})
}
