package etherface

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookup_ParsesItemsInOrder(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"hash":"a9059cbb2ab09eb219583f4a59a5d0623ade346d962bcd4e46b11da047c9049b","text":"transfer(address,uint256)"},
			{"hash":"a9059cbb00000000000000000000000000000000000000000000000000000000","text":"transfer_alt(address,uint256)"}
		]}`))
	}))
	defer srv.Close()

	p := Provider{BaseURL: srv.URL}
	items, err := p.Lookup(context.Background(), "a9059cbb", srv.Client())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if gotPath != "/v1/signatures/hash/all/a9059cbb/1" {
		t.Fatalf("请求路径不符合预期：%q", gotPath)
	}
	if len(items) != 2 {
		t.Fatalf("期望 2 条候选，实际 %d", len(items))
	}
	// 顺序就是热度排名，必须保持。
	if items[0].Text != "transfer(address,uint256)" {
		t.Fatalf("排名第一的候选不符合预期：%q", items[0].Text)
	}
}

func TestLookup_UnparsableBodyMeansNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<html>not found</html>"))
	}))
	defer srv.Close()

	p := Provider{BaseURL: srv.URL}
	items, err := p.Lookup(context.Background(), "deadbeef", srv.Client())
	if err != nil {
		t.Fatalf("解不开的响应体应视为未收录，而不是失败：%v", err)
	}
	if items != nil {
		t.Fatalf("期望 nil items，实际 %v", items)
	}
}

func TestLookup_EmptyItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	p := Provider{BaseURL: srv.URL}
	items, err := p.Lookup(context.Background(), "deadbeef", srv.Client())
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(items) != 0 {
		t.Fatalf("期望空结果，实际 %v", items)
	}
}

func TestLookup_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	c := srv.Client()
	srv.Close()

	p := Provider{BaseURL: srv.URL}
	if _, err := p.Lookup(context.Background(), "deadbeef", c); err == nil {
		t.Fatalf("期望传输层失败")
	}
}

func TestLookup_RequiresClientAndSelector(t *testing.T) {
	p := Provider{}
	if _, err := p.Lookup(context.Background(), "deadbeef", nil); err == nil {
		t.Fatalf("期望 nil client 报错")
	}
	if _, err := p.Lookup(context.Background(), "", http.DefaultClient); err == nil {
		t.Fatalf("期望空 selector 报错")
	}
}
