package run

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/John-Robertt/sigscan/internal/config"
	"github.com/John-Robertt/sigscan/internal/domain"
	providerx "github.com/John-Robertt/sigscan/internal/provider"
)

type stubProvider struct {
	items map[string][]providerx.Item
	errs  map[string]error
}

func (stubProvider) Name() string { return "stub" }

func (p stubProvider) Lookup(_ context.Context, selector string, _ *http.Client) ([]providerx.Item, error) {
	if err, ok := p.errs[selector]; ok {
		return nil, err
	}
	return p.items[selector], nil
}

func writeCode(t *testing.T, hexCode string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "code.hex")
	if err := os.WriteFile(path, []byte(hexCode), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
	return path
}

func registryWith(t *testing.T, p providerx.Provider) providerx.Registry {
	t.Helper()
	reg, err := providerx.NewRegistry(p)
	if err != nil {
		t.Fatalf("构造 registry 失败：%v", err)
	}
	return reg
}

func TestExecute_SelectorsOnly(t *testing.T) {
	eff := config.EffectiveConfig{
		File: writeCode(t, "0x578063aabbccdd00578063deadbeef00"),
	}

	report, err := Execute(context.Background(), eff, providerx.Registry{}, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"aabbccdd", "deadbeef"}
	if !reflect.DeepEqual(report.Selectors, want) {
		t.Fatalf("期望 %v，实际 %v", want, report.Selectors)
	}
	// 不解析签名时 signatures 也必须是 []（而不是 nil）。
	if report.Signatures == nil || len(report.Signatures) != 0 {
		t.Fatalf("期望空 signatures 切片，实际 %v", report.Signatures)
	}
}

func TestExecute_WithSignatures(t *testing.T) {
	p := stubProvider{items: map[string][]providerx.Item{
		"aabbccdd": {{Hash: "aabbccdd11", Text: "a()"}},
		"deadbeef": {{Hash: "deadbeef22", Text: "d()"}},
	}}
	eff := config.EffectiveConfig{
		File:       writeCode(t, "0x578063aabbccdd00578063deadbeef00"),
		Signatures: true,
		Provider:   "stub",
		Policy:     "first",
	}

	report, err := Execute(context.Background(), eff, registryWith(t, p), nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(report.Signatures) != 2 {
		t.Fatalf("期望 2 条签名，实际 %d", len(report.Signatures))
	}
	// 签名顺序跟随 selector 的字典序扇出。
	if report.Signatures[0].Text != "a()" || report.Signatures[1].Text != "d()" {
		t.Fatalf("签名顺序不符合预期：%v", report.Signatures)
	}
	if report.Signatures[0].Selector != "aabbccdd" {
		t.Fatalf("selector 应由 hash 派生：%q", report.Signatures[0].Selector)
	}
}

func TestExecute_NoSelectorsSkipsLookup(t *testing.T) {
	// 扫不出 selector 时不应触碰 provider（registry 留空也不报错）。
	eff := config.EffectiveConfig{
		File:       writeCode(t, "0x1234567812345678"),
		Signatures: true,
		Provider:   "stub",
	}

	report, err := Execute(context.Background(), eff, providerx.Registry{}, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(report.Selectors) != 0 || len(report.Signatures) != 0 {
		t.Fatalf("期望空报告，实际 %+v", report)
	}
}

func TestExecute_InvalidAddress(t *testing.T) {
	eff := config.EffectiveConfig{Address: "0x1234"}

	_, err := Execute(context.Background(), eff, providerx.Registry{}, nil)
	if Code(err) != domain.ErrCodeAddressInvalid {
		t.Fatalf("期望 code=%q，实际 %v", domain.ErrCodeAddressInvalid, err)
	}
}

func TestExecute_FileMissing(t *testing.T) {
	eff := config.EffectiveConfig{File: filepath.Join(t.TempDir(), "nope.hex")}

	_, err := Execute(context.Background(), eff, providerx.Registry{}, nil)
	if Code(err) != domain.ErrCodeIOFailed {
		t.Fatalf("期望 code=%q，实际 %v", domain.ErrCodeIOFailed, err)
	}
}

func TestExecute_FileInvalidHex(t *testing.T) {
	eff := config.EffectiveConfig{File: writeCode(t, "0xzz")}

	_, err := Execute(context.Background(), eff, providerx.Registry{}, nil)
	if Code(err) != domain.ErrCodeBytecodeInvalid {
		t.Fatalf("期望 code=%q，实际 %v", domain.ErrCodeBytecodeInvalid, err)
	}
}

func TestExecute_LookupFailureAbortsRun(t *testing.T) {
	p := stubProvider{
		items: map[string][]providerx.Item{
			"aabbccdd": {{Hash: "aabbccdd11", Text: "a()"}},
		},
		errs: map[string]error{"deadbeef": errors.New("connection refused")},
	}
	eff := config.EffectiveConfig{
		File:       writeCode(t, "0x578063aabbccdd00578063deadbeef00"),
		Signatures: true,
		Provider:   "stub",
	}

	report, err := Execute(context.Background(), eff, registryWith(t, p), nil)
	if Code(err) != domain.ErrCodeLookupFailed {
		t.Fatalf("期望 code=%q，实际 %v", domain.ErrCodeLookupFailed, err)
	}
	if len(report.Selectors) != 0 || len(report.Signatures) != 0 {
		t.Fatalf("批次失败不允许产出部分结果：%+v", report)
	}
}

func TestExecute_UnknownProvider(t *testing.T) {
	eff := config.EffectiveConfig{
		File:       writeCode(t, "0x578063aabbccdd00"),
		Signatures: true,
		Provider:   "nope",
	}

	_, err := Execute(context.Background(), eff, providerx.Registry{}, nil)
	if Code(err) != domain.ErrCodeLookupFailed {
		t.Fatalf("期望 code=%q，实际 %v", domain.ErrCodeLookupFailed, err)
	}
}
