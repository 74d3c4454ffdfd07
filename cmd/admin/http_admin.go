package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// The server only answers these on loopback with PC_ENABLE_ADMIN_HTTP set.

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)
	os.Exit(adminRequest(http.MethodGet, *baseURL, "/admin/v1/state", 5*time.Second))
}

// snapshotCmd asks a running server to write a snapshot now.
func snapshotCmd(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)
	os.Exit(adminRequest(http.MethodPost, *baseURL, "/admin/v1/snapshot", 10*time.Second))
}

// pauseCmd pauses or resumes construction on a running server.
func pauseCmd(args []string, paused bool) {
	fs := flag.NewFlagSet("pause", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)
	os.Exit(adminRequest(http.MethodPost, *baseURL, fmt.Sprintf("/admin/v1/pause?paused=%t", paused), 5*time.Second))
}

func adminRequest(method, baseURL, path string, timeout time.Duration) int {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/") + path
	req, err := http.NewRequest(method, u, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		return 2
	}
	resp, err := (&http.Client{Timeout: timeout}).Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		return 1
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(strings.TrimSpace(string(b)))
	if resp.StatusCode/100 != 2 {
		return 1
	}
	return 0
}
