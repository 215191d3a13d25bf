package run

import (
	"time"

	"github.com/John-Robertt/sigscan/internal/config"
)

// Observer 把进度展示从执行流程中解耦出来：Execute 只负责在关键节点
// 发出事件，CLI 决定画进度条、打日志还是保持安静。
//
// OnLookupDone 可能被多个 goroutine 并发调用，实现必须并发安全。
type Observer interface {
	OnStart(eff config.EffectiveConfig)
	OnPhaseDone(phase string, n int, dur time.Duration)
	OnLookupDone(selector string, found int, dur time.Duration)
}

// 各阶段名称（Observer.OnPhaseDone 的 phase 参数）。
const (
	PhaseFetch   = "fetch"
	PhaseScan    = "scan"
	PhaseResolve = "resolve"
)

// NopObserver 什么也不做（非交互模式 / 测试用）。
type NopObserver struct{}

func (NopObserver) OnStart(config.EffectiveConfig) {}

func (NopObserver) OnPhaseDone(string, int, time.Duration) {}

func (NopObserver) OnLookupDone(string, int, time.Duration) {}
