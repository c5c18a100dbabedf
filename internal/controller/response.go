package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/logging"
	"github.com/grand-thief-cash/mlbeval/internal/dao"
	"github.com/grand-thief-cash/mlbeval/internal/service"
)

const (
	maxBodyBytes  = 1 << 20
	maxBatchBytes = 32 << 20
)

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// responder 写成功响应: writeData 带 data 信封, writeJSON 直接输出
type responder func(w http.ResponseWriter, code int, v any)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, v any) {
	writeJSON(w, code, map[string]any{"data": v})
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeError 统一的错误到状态码映射, 5xx 不向外暴露内部错误
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		logging.Error(r.Context(), "request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeErr(w, code, "internal error")
		return
	}
	writeErr(w, code, err.Error())
}

func statusOf(err error) int {
	var nf *service.PlayerNotFoundError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.As(err, &nf):
		return http.StatusNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, dao.ErrIDPreset),
		errors.Is(err, dao.ErrUnknownColumn),
		errors.Is(err, dao.ErrInvalidFilter),
		errors.Is(err, service.ErrEmptyTrade):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeStrict 拒绝未知字段和尾随数据
func decodeStrict(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid json body: %v", err)
	}
	if dec.More() {
		return badRequest("invalid json body: trailing data")
	}
	return nil
}
