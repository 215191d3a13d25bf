package provider

import (
	"context"
	"net/http"
	"testing"
)

type named string

func (n named) Name() string { return string(n) }

func (named) Lookup(context.Context, string, *http.Client) ([]Item, error) {
	return nil, nil
}

func TestNewRegistry_GetCaseInsensitive(t *testing.T) {
	reg, err := NewRegistry(named("etherface"), named("fourbyte"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	p, ok := reg.Get("  EtherFace ")
	if !ok || p.Name() != "etherface" {
		t.Fatalf("期望按小写 name 命中，实际 ok=%v", ok)
	}
	if _, ok := reg.Get("unknown"); ok {
		t.Fatalf("未注册的 name 不应命中")
	}
}

func TestNewRegistry_RejectsDuplicate(t *testing.T) {
	if _, err := NewRegistry(named("a"), named("A")); err == nil {
		t.Fatalf("期望重复 name 报错")
	}
}

func TestNewRegistry_RejectsNilAndEmptyName(t *testing.T) {
	if _, err := NewRegistry(nil); err == nil {
		t.Fatalf("期望 nil provider 报错")
	}
	if _, err := NewRegistry(named("  ")); err == nil {
		t.Fatalf("期望空 name 报错")
	}
}

func TestRegistry_ZeroValueSafe(t *testing.T) {
	var reg Registry
	if _, ok := reg.Get("etherface"); ok {
		t.Fatalf("零值 Registry 不应命中任何 provider")
	}
}
