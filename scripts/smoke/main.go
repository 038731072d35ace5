// Command smoke probes a running installation after deployment: health,
// readiness, public config, catalogue listings and due polling. Critical
// probe failures exit non-zero so the deploy script can roll back.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type probe struct {
	Name     string
	Path     string
	Critical bool
}

type result struct {
	Probe    probe
	Status   int
	Duration time.Duration
	Err      error
}

var probes = []probe{
	{Name: "health", Path: "/health", Critical: true},
	{Name: "readiness", Path: "/ready", Critical: false},
	{Name: "client config", Path: "/api/config", Critical: true},
	{Name: "announcements", Path: "/api/announcements", Critical: true},
	{Name: "announcement schedules", Path: "/api/announcement-schedules", Critical: true},
	{Name: "recitation schedules", Path: "/api/recitation-schedules", Critical: true},
	{Name: "due poll", Path: "/api/schedules/check", Critical: true},
}

func main() {
	var (
		base    string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8000", "API base URL")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	failed := 0
	for _, p := range probes {
		res := run(client, base, p)
		printResult(res)
		if res.Err != nil || res.Status != http.StatusOK {
			if p.Critical {
				failed++
			}
		}
	}

	if failed > 0 {
		fmt.Printf("%d critical probe(s) failed\n", failed)
		os.Exit(1)
	}
	fmt.Println("all critical probes passed")
}

func run(client *http.Client, base string, p probe) result {
	res := result{Probe: p}
	started := time.Now()
	resp, err := client.Get(base + p.Path)
	res.Duration = time.Since(started)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close() //nolint:errcheck
	res.Status = resp.StatusCode

	// Listing endpoints must return a well-formed envelope, not just a 200.
	if resp.StatusCode == http.StatusOK && p.Path != "/health" && p.Path != "/ready" {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			res.Err = fmt.Errorf("read body: %w", err)
			return res
		}
		var envelope struct {
			Data  json.RawMessage `json:"data"`
			Error json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			res.Err = fmt.Errorf("malformed envelope: %w", err)
		}
	}
	return res
}

func printResult(res result) {
	status := "ok"
	switch {
	case res.Err != nil:
		status = "error: " + res.Err.Error()
	case res.Status != http.StatusOK:
		status = fmt.Sprintf("status %d", res.Status)
	}
	fmt.Printf("%-24s %-28s %8s  %s\n", res.Probe.Name, res.Probe.Path, res.Duration.Round(time.Millisecond), status)
}
