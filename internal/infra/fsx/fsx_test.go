package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomicReplace_CreatesAndOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	if err := WriteFileAtomicReplace(dir, "report.json", []byte("v1")); err != nil {
		t.Fatalf("首次写入失败：%v", err)
	}
	if err := WriteFileAtomicReplace(dir, "report.json", []byte("v2")); err != nil {
		t.Fatalf("覆盖写入失败：%v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("读取失败：%v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("期望 v2，实际 %q", got)
	}
}

func TestWriteFileAtomicReplace_NoTempLeftover(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFileAtomicReplace(dir, "report.json", []byte("x")); err != nil {
		t.Fatalf("写入失败：%v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读目录失败：%v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("不应残留临时文件：%q", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Fatalf("期望目录里只有目标文件，实际 %d 项", len(entries))
	}
}

func TestWriteFileAtomicReplace_DirConflict(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "report.json"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	err := WriteFileAtomicReplace(dir, "report.json", []byte("x"))
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 *PathTypeConflictError，实际 %v", err)
	}
}
