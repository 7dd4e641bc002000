package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// openInput 打开输入文件，"-" 表示标准输入
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开输入文件失败: %w", err)
	}
	return f, nil
}

// readJSON 读取 JSON 输入
func readJSON(path string, v interface{}) error {
	in, err := openInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := json.NewDecoder(in).Decode(v); err != nil {
		return fmt.Errorf("解析输入失败: %w", err)
	}
	return nil
}

// writeJSON 输出格式化 JSON，path 为空时写到标准输出
func writeJSON(path string, v interface{}) error {
	var out io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("创建输出文件失败: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
