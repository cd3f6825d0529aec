package httpjson

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20 // 1MB

type requestIDKey struct{}

// WithRequestID 把请求关联 ID 放入 ctx。
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom 取出请求关联 ID；middleware 没跑到时现生成一个，
// 保证错误响应里永远带可检索的 requestId。
func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
		return v
	}
	return uuid.NewString()
}

// ErrorBody 系统级失败的统一响应体
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
}

// WriteJSON 写 JSON 响应。
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError 写系统级错误响应（带 requestId，供支持排障）。
// 工作流内的预期分支不走这里，它们是带 status 的正常 200 响应。
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, status, ErrorBody{
		Error:     msg,
		RequestID: RequestIDFrom(r.Context()),
	})
}

// Decode 解析 JSON 请求体（限制体积，拒绝未知字段）。
func Decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}
