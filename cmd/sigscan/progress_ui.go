package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/sigscan/internal/app/run"
	"github.com/John-Robertt/sigscan/internal/config"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端的进度输出。
//
// 设计目标：
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
type progressUI struct {
	w io.Writer

	mu        sync.Mutex
	startedAt time.Time
	lookups   int
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	fmt.Fprintf(p.w, "[%s] sigscan run\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	if eff.File != "" {
		fmt.Fprintf(p.w, "  file: %s\n", eff.File)
	} else {
		fmt.Fprintf(p.w, "  address: %s\n", eff.Address)
		fmt.Fprintf(p.w, "  rpc_url: %s\n", truncate(eff.RPCURL, 120))
	}
	fmt.Fprintf(p.w, "  deep: %s\n", onOff(eff.Deep))
	if eff.Signatures {
		fmt.Fprintf(p.w, "  provider: %s\n", eff.Provider)
		fmt.Fprintf(p.w, "  policy: %s\n", eff.Policy)
	} else {
		fmt.Fprintf(p.w, "  signatures: off\n")
	}
	fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(eff.ProxyURL))
	if eff.Output != "" {
		fmt.Fprintf(p.w, "  output: %s\n", eff.Output)
	}
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnPhaseDone(phase string, n int, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch phase {
	case run.PhaseFetch:
		fmt.Fprintf(p.w, "取码: bytes=%d (%s)\n", n, formatShortDuration(dur))
	case run.PhaseScan:
		fmt.Fprintf(p.w, "扫描: selectors=%d (%s)\n", n, formatShortDuration(dur))
	case run.PhaseResolve:
		fmt.Fprintf(p.w, "解析: signatures=%d lookups=%d (%s)\n", n, p.lookups, formatShortDuration(dur))
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s: n=%d (%s)\n", phase, n, formatShortDuration(dur))
	}
}

func (p *progressUI) OnLookupDone(selector string, found int, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lookups++
	note := ""
	if found == 0 {
		note = " (未收录)"
	}
	fmt.Fprintf(p.w, "  %s found=%d%s (%s)\n", selector, found, note, formatShortDuration(dur))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
