package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupClient_SetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c, err := NewLookupClient("")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("请求失败：%v", err)
	}
	resp.Body.Close()

	if gotUA == "" || gotUA == "Go-http-client/1.1" {
		t.Fatalf("期望来自 UA 池的 User-Agent，实际 %q", gotUA)
	}
}

func TestNewClient_InvalidProxy(t *testing.T) {
	if _, err := NewLookupClient("://bad"); err == nil {
		t.Fatalf("期望非法 proxy URL 报错")
	}
	if _, err := NewNodeClient("://bad"); err == nil {
		t.Fatalf("期望非法 proxy URL 报错")
	}
}

func TestNewNodeClient_HasTimeout(t *testing.T) {
	c, err := NewNodeClient("")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if c.Timeout <= 0 {
		t.Fatalf("期望设置总超时，实际 %v", c.Timeout)
	}
}

func TestUAPool_Random(t *testing.T) {
	for i := 0; i < 10; i++ {
		if globalUA.random() == "" {
			t.Fatalf("UA 池不应返回空串")
		}
	}
}
