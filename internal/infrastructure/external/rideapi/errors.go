package rideapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrTransport 沒有收到回應（連線失敗、逾時）。
	ErrTransport = errors.New("transport failure")
	// ErrAuthExpired 收到 401，可透過換發 token 恢復。
	ErrAuthExpired = errors.New("access token expired")
	// ErrAuthRejected 換發失敗或換發後仍 401；session 已被清除，呼叫端需導回登入。
	ErrAuthRejected = errors.New("session rejected")
	// ErrValidation 4xx 且帶有欄位錯誤。
	ErrValidation = errors.New("validation failed")
)

// APIError 後端回傳的非 2xx 回應。
type APIError struct {
	Op       string
	Status   int
	Detail   string
	Fields   map[string][]string
	Fallback string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message())
}

// Message 可顯示給使用者的訊息：detail 優先，其次欄位錯誤，最後為預設文字。
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
		}
		return strings.Join(parts, "; ")
	}
	if e.Fallback != "" {
		return e.Fallback
	}
	return http.StatusText(e.Status)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthExpired:
		return e.Status == http.StatusUnauthorized
	case ErrValidation:
		return e.Status >= 400 && e.Status < 500 && len(e.Fields) > 0
	}
	return false
}

// TransportError 包裝底層連線錯誤。
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Message 將任意錯誤轉為可顯示訊息。
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if errors.Is(err, ErrTransport) {
		return "Nu s-a putut contacta serverul."
	}
	return err.Error()
}

// parseError 解析錯誤 body：{"detail": ...}、{"error": ...} 或欄位對應的錯誤清單。
func parseError(op string, status int, body []byte, fallback string) *APIError {
	apiErr := &APIError{Op: op, Status: status, Fallback: fallback}
	if len(strings.TrimSpace(string(body))) == 0 {
		return apiErr
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return apiErr
	}
	for _, key := range []string{"detail", "error"} {
		if v, ok := raw[key]; ok {
			var s string
			if json.Unmarshal(v, &s) == nil {
				apiErr.Detail = s
			}
			delete(raw, key)
		}
	}
	delete(raw, "code")
	for field, v := range raw {
		var list []string
		if json.Unmarshal(v, &list) == nil {
			addField(apiErr, field, list...)
			continue
		}
		var s string
		if json.Unmarshal(v, &s) == nil {
			addField(apiErr, field, s)
		}
	}
	return apiErr
}

func addField(e *APIError, field string, msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msgs...)
}
