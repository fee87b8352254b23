package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type healthReport struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func main() {
	url := flag.String("url", envOr("BLOOM_HEALTH_URL", "http://127.0.0.1:8080/health"), "健康检查地址")
	timeout := flag.Duration("timeout", 5*time.Second, "请求超时")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	report, err := checkHealth(ctx, http.DefaultClient, *url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "healthcheck failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(formatReport(report))
	if report.Status == "down" {
		os.Exit(1)
	}
}

// checkHealth 请求 /health，503 仍解析响应体以展示各组件状态
func checkHealth(ctx context.Context, client *http.Client, url string) (*healthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, err
	}
	var report healthReport
	if err := json.Unmarshal(body, &report); err != nil || report.Status == "" {
		return nil, fmt.Errorf("unexpected response (http %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if resp.StatusCode >= 500 && report.Status != "down" {
		return nil, errors.New("server error with non-down status: " + report.Status)
	}
	return &report, nil
}

func formatReport(r *healthReport) string {
	return fmt.Sprintf("status:   %s\ndatabase: %s\nredis:    %s\n", r.Status, r.Database, r.Redis)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
