package provider

import (
	"errors"
	"fmt"
)

// HTTPStatusError 表示签名库返回了无法当作"未收录"处理的 HTTP 状态码。
// Lookup 返回它即视为传输层失败，整个解析批次随之失败。
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d（%s）", e.StatusCode, e.URL)
}

func IsHTTPStatus(err error) bool {
	var e *HTTPStatusError
	return errors.As(err, &e)
}
