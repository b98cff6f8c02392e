// Command workflow_smoke drives a syllabus through the full approval
// pipeline against a running instance and reports each step. Intended as a
// post-deploy check; it needs one account per role listed in the flags.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type step struct {
	Name     string
	Method   string
	Path     string
	Duration time.Duration
	Status   int
	Err      error
}

type client struct {
	base    string
	http    *http.Client
	tokens  map[string]string
	results []step
}

func main() {
	var (
		base     string
		timeout  time.Duration
		password string
	)
	accounts := map[string]*string{}
	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.StringVar(&password, "password", "password123", "shared password for the smoke accounts")
	for _, role := range []string{"lecturer", "hod", "academic-affairs", "principal"} {
		accounts[role] = flag.String(role, role+"@example.edu", "email of the "+role+" smoke account")
	}
	flag.Parse()

	c := &client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: map[string]string{},
	}

	for role, email := range accounts {
		c.login(role, *email, password)
	}

	syllabusID := c.createSyllabus("lecturer")
	if syllabusID != "" {
		c.act("submit", "lecturer", syllabusID, nil)
		c.act("approve", "hod", syllabusID, strPtr("forwarded by smoke check"))
		c.act("approve", "academic-affairs", syllabusID, nil)
		c.act("publish", "principal", syllabusID, nil)
		c.history(syllabusID)
	}

	failed := c.report()
	if failed > 0 {
		os.Exit(1)
	}
}

func strPtr(s string) *string { return &s }

func (c *client) login(role, email, password string) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	var result struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	status, err := c.call("login "+role, http.MethodPost, "/api/v1/auth/login", "", body, &result)
	if err == nil && status == http.StatusOK {
		c.tokens[role] = result.Data.AccessToken
	}
}

func (c *client) createSyllabus(role string) string {
	payload := map[string]interface{}{
		"course_code":   fmt.Sprintf("SMK%d", time.Now().Unix()%100000),
		"course_name":   "Smoke Check Course",
		"department":    "Computer Science",
		"credits":       3,
		"semester":      "Fall",
		"academic_year": "2026/2027",
		"description":   "Created by the workflow smoke check.",
	}
	body, _ := json.Marshal(payload)
	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	status, err := c.call("create syllabus", http.MethodPost, "/api/v1/syllabi", c.tokens[role], body, &result)
	if err != nil || status != http.StatusCreated {
		return ""
	}
	return result.Data.ID
}

func (c *client) act(action, role, syllabusID string, comment *string) {
	var body []byte
	if comment != nil {
		body, _ = json.Marshal(map[string]string{"comment": *comment})
	}
	path := fmt.Sprintf("/api/v1/syllabi/%s/%s", syllabusID, action)
	c.call(action+" as "+role, http.MethodPost, path, c.tokens[role], body, nil)
}

func (c *client) history(syllabusID string) {
	path := fmt.Sprintf("/api/v1/syllabi/%s/history", syllabusID)
	c.call("fetch history", http.MethodGet, path, c.tokens["lecturer"], nil, nil)
}

func (c *client) call(name, method, path, token string, body []byte, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.results = append(c.results, step{Name: name, Method: method, Path: path, Err: err})
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.results = append(c.results, step{Name: name, Method: method, Path: path, Duration: elapsed, Err: err})
		return 0, err
	}
	defer resp.Body.Close()

	result := step{Name: name, Method: method, Path: path, Duration: elapsed, Status: resp.StatusCode}
	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(resp.Body)
		result.Err = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	} else if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			result.Err = fmt.Errorf("decode response: %w", err)
		}
	}
	c.results = append(c.results, result)
	return resp.StatusCode, result.Err
}

func (c *client) report() int {
	fmt.Println("Workflow Smoke Report")
	fmt.Println("=====================")
	failed := 0
	for _, res := range c.results {
		status := "OK"
		if res.Err != nil {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %-28s %s %s (%d, %s)\n", status, res.Name, res.Method, res.Path, res.Status, res.Duration)
		if res.Err != nil {
			fmt.Printf("  %v\n", res.Err)
		}
	}
	fmt.Printf("Steps: %d, Failed: %d\n", len(c.results), failed)
	return failed
}
