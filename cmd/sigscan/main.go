package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/sigscan/internal/app/run"
	"github.com/John-Robertt/sigscan/internal/config"
	"github.com/John-Robertt/sigscan/internal/domain"
	"github.com/John-Robertt/sigscan/internal/infra/fsx"
	"github.com/John-Robertt/sigscan/internal/provider"
	"github.com/John-Robertt/sigscan/internal/provider/etherface"
	"github.com/John-Robertt/sigscan/internal/provider/fourbyte"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "run":
		if code := runCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage()
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs(ra))
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置错误：%v\n", err)
		if config.Code(err) == config.ErrCodeMissingInput || config.Code(err) == config.ErrCodeAmbiguousInput {
			fmt.Fprintln(os.Stderr)
			printRunUsage()
		}
		return 2
	}

	reg, e := provider.NewRegistry(
		etherface.Provider{BaseURL: eff.EtherfaceBaseURL},
		fourbyte.Provider{BaseURL: eff.FourbyteBaseURL},
	)
	if e != nil {
		fmt.Fprintf(os.Stderr, "初始化 provider registry 失败：%v\n", e)
		return 1
	}

	progressW, interactive := pickProgressWriter()
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	report, err := run.Execute(context.Background(), eff, reg, obs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "失败：%v\n", err)
		return 1
	}

	if eff.Output != "" {
		if err := writeReportFile(eff.Output, report); err != nil {
			fmt.Fprintf(os.Stderr, "写入 %s 失败：%v\n", eff.Output, err)
			return 1
		}
		if interactive {
			fmt.Fprintf(progressW, "out: %s\n", eff.Output)
		}
	}

	emitReport(report, eff.Signatures)
	return 0
}

type runArgs struct {
	Address string
	File    string

	Signatures    bool
	SignaturesSet bool

	Deep    bool
	DeepSet bool

	Policy    string
	PolicySet bool

	Provider    string
	ProviderSet bool

	RPCURL    string
	RPCURLSet bool

	Output    string
	OutputSet bool
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--address":
			v, n, err := takeValue(args, i, "--address")
			if err != nil {
				return runArgs{}, err
			}
			i = n
			ra.Address = v
		case strings.HasPrefix(a, "--address="):
			ra.Address = strings.TrimPrefix(a, "--address=")
		case a == "--file":
			v, n, err := takeValue(args, i, "--file")
			if err != nil {
				return runArgs{}, err
			}
			i = n
			ra.File = v
		case strings.HasPrefix(a, "--file="):
			ra.File = strings.TrimPrefix(a, "--file=")
		case a == "--signatures":
			ra.Signatures = true
			ra.SignaturesSet = true
		case strings.HasPrefix(a, "--signatures="):
			v, err := parseBool("--signatures", strings.TrimPrefix(a, "--signatures="))
			if err != nil {
				return runArgs{}, err
			}
			ra.Signatures = v
			ra.SignaturesSet = true
		case a == "--deep":
			ra.Deep = true
			ra.DeepSet = true
		case strings.HasPrefix(a, "--deep="):
			v, err := parseBool("--deep", strings.TrimPrefix(a, "--deep="))
			if err != nil {
				return runArgs{}, err
			}
			ra.Deep = v
			ra.DeepSet = true
		case a == "--policy":
			v, n, err := takeValue(args, i, "--policy")
			if err != nil {
				return runArgs{}, err
			}
			i = n
			ra.Policy = v
			ra.PolicySet = true
		case strings.HasPrefix(a, "--policy="):
			ra.Policy = strings.TrimPrefix(a, "--policy=")
			ra.PolicySet = true
		case a == "--provider":
			v, n, err := takeValue(args, i, "--provider")
			if err != nil {
				return runArgs{}, err
			}
			i = n
			ra.Provider = v
			ra.ProviderSet = true
		case strings.HasPrefix(a, "--provider="):
			ra.Provider = strings.TrimPrefix(a, "--provider=")
			ra.ProviderSet = true
		case a == "--rpc-url":
			v, n, err := takeValue(args, i, "--rpc-url")
			if err != nil {
				return runArgs{}, err
			}
			i = n
			ra.RPCURL = v
			ra.RPCURLSet = true
		case strings.HasPrefix(a, "--rpc-url="):
			ra.RPCURL = strings.TrimPrefix(a, "--rpc-url=")
			ra.RPCURLSet = true
		case a == "--output":
			v, n, err := takeValue(args, i, "--output")
			if err != nil {
				return runArgs{}, err
			}
			i = n
			ra.Output = v
			ra.OutputSet = true
		case strings.HasPrefix(a, "--output="):
			ra.Output = strings.TrimPrefix(a, "--output=")
			ra.OutputSet = true
		default:
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		}
	}

	if ra.ProviderSet {
		switch ra.Provider {
		case "etherface", "fourbyte":
			// ok
		case "":
			return runArgs{}, fmt.Errorf("--provider 不能为空")
		default:
			return runArgs{}, fmt.Errorf("--provider 只能是 etherface 或 fourbyte，实际是 %q", ra.Provider)
		}
	}
	if ra.PolicySet {
		switch ra.Policy {
		case "first", "all":
			// ok
		case "":
			return runArgs{}, fmt.Errorf("--policy 不能为空")
		default:
			return runArgs{}, fmt.Errorf("--policy 只能是 first 或 all，实际是 %q", ra.Policy)
		}
	}

	return ra, nil
}

func takeValue(args []string, i int, flag string) (string, int, error) {
	if i+1 >= len(args) {
		return "", i, fmt.Errorf("%s 需要一个值", flag)
	}
	return args[i+1], i + 1, nil
}

func parseBool(flag, v string) (bool, error) {
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%s 只能是 true 或 false，实际是 %q", flag, v)
	}
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  sigscan run (--address 0x…|--file path) [--signatures] [--deep]
              [--policy first|all] [--provider etherface|fourbyte]
              [--rpc-url url] [--output path]

命令：
  run    提取函数选择器（可选：解析为函数签名）

使用 "sigscan run --help" 查看详细说明。
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  sigscan run (--address 0x…|--file path) [选项]

输入（二选一，必填）:
  --address    合约地址（0x + 40 位十六进制），通过 eth_getCode 拉取字节码
  --file       本地字节码文件（十六进制文本，0x 前缀可选）

选项：
  --signatures 把选择器解析为函数签名（默认只提取选择器）
  --deep       额外扫描所有 PUSH4 立即数（结果是默认模式的超集）
  --policy     签名聚合策略：first|all（默认 first：每个选择器取热度最高的一条）
  --provider   签名库：etherface|fourbyte（默认 etherface）
  --rpc-url    EVM 节点的 JSON-RPC 端点（默认公共节点）
  --output     把报告 JSON 原子写入该路径
  -h, --help   显示帮助

未指定的选项依次回退到当前目录的 sigscan.json、再到内置默认值。
`)
}

// emitReport 输出最终结果。
//
// stdout 契约：非 TTY 时 stdout 必须且仅输出一个 Report JSON（进度与日志
// 全部走 stderr）；TTY 时输出人类可读的清单。
func emitReport(r domain.Report, withSignatures bool) {
	if !isTTY(os.Stdout) {
		enc := json.NewEncoder(os.Stdout)
		_ = enc.Encode(r)
		return
	}

	fmt.Fprintf(os.Stdout, "selectors (%d):\n", len(r.Selectors))
	for _, sel := range r.Selectors {
		fmt.Fprintf(os.Stdout, "  %s\n", sel)
	}
	if !withSignatures {
		return
	}
	fmt.Fprintf(os.Stdout, "signatures (%d):\n", len(r.Signatures))
	for _, sig := range r.Signatures {
		fmt.Fprintf(os.Stdout, "  %s[%s]%s: %s%s%s\n",
			colorBlue, sig.Selector, colorReset,
			colorGray, sig.Text, colorReset,
		)
	}
}

const (
	colorBlue  = "\x1b[38;5;39m"
	colorGray  = "\x1b[38;5;248m"
	colorReset = "\x1b[0m"
)

func writeReportFile(path string, r domain.Report) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	dir := filepath.Dir(path)
	return fsx.WriteFileAtomicReplace(dir, filepath.Base(path), b)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
