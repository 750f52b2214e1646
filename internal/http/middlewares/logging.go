package middlewares

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// =================================================================================
// STATUS RECORDER
// =================================================================================

// statusRecorder captura el status code y bytes escritos de la respuesta.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.status = http.StatusOK
		s.wroteHeader = true
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// =================================================================================
// LOGGING MIDDLEWARE
// =================================================================================

// WithLogging inyecta un logger con request_id, method y path en el contexto y
// registra el resultado del request. El nivel depende del status (5xx error, 4xx warn).
//
//	{"level":"info","msg":"request completed","request_id":"…","method":"POST","path":"/login","status":200,"bytes":256,"duration_ms":45}
func WithLogging() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := w.Header().Get(headerRequestID)
			if requestID == "" {
				requestID = GetRequestID(r.Context())
			}

			reqLog := logger.L().With(
				logger.RequestID(requestID),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.ClientIP(clientIP(r)),
			)
			info := &requestInfo{}
			ctx := logger.ToContext(withRequestInfo(r.Context(), info), reqLog)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			fields := []zap.Field{
				logger.Status(rec.status),
				logger.Bytes(rec.bytes),
				logger.DurationMs(time.Since(start).Milliseconds()),
			}
			if info.userID != "" {
				fields = append(fields, logger.UserID(info.userID))
			}

			switch {
			case rec.status >= 500:
				reqLog.Error("request failed", fields...)
			case rec.status >= 400:
				reqLog.Warn("request completed with client error", fields...)
			default:
				reqLog.Info("request completed", fields...)
			}
		})
	}
}
