package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// End-to-end smoke run against a live API: login as the bootstrap admin,
// walk one article through the full lifecycle, and verify refresh rotation
// rejects a replayed token.
func main() {
	base := os.Getenv("MAPLE_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	email := os.Getenv("MAPLE_ADMIN_EMAIL")
	password := os.Getenv("MAPLE_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("MAPLE_ADMIN_EMAIL and MAPLE_ADMIN_PASSWORD must be set")
	}

	c := &client{base: base, http: &http.Client{Timeout: 10 * time.Second}}

	var login struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.post("/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	}, http.StatusOK, &login); err != nil {
		log.Fatalf("login: %v", err)
	}
	access := login.AccessToken

	var article struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Version int64  `json:"version"`
	}
	title := fmt.Sprintf("Smoke run %d", time.Now().UnixNano())
	if err := c.post("/v1/articles", access, map[string]string{"title": title}, http.StatusCreated, &article); err != nil {
		log.Fatalf("create article: %v", err)
	}

	for _, target := range []string{"in_review", "approved", "published", "archived", "restore"} {
		want := target
		if target == "restore" {
			want = "draft"
		}
		if err := c.post("/v1/articles/"+article.ID+"/status", access, map[string]any{
			"status":           want,
			"expected_version": article.Version,
		}, http.StatusOK, &article); err != nil {
			log.Fatalf("transition to %s: %v", want, err)
		}
		if article.Status != want {
			log.Fatalf("transition to %s landed on %s", want, article.Status)
		}
	}

	// First rotation succeeds, replaying the consumed token must not.
	var rotated struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.post("/v1/auth/refresh", "", map[string]string{
		"refresh_token": login.RefreshToken,
	}, http.StatusOK, &rotated); err != nil {
		log.Fatalf("refresh: %v", err)
	}
	err := c.post("/v1/auth/refresh", "", map[string]string{
		"refresh_token": login.RefreshToken,
	}, http.StatusUnauthorized, nil)
	if err != nil {
		log.Fatalf("replayed refresh not rejected: %v", err)
	}

	fmt.Printf("✅ api smoke test passed: article=%s final_version=%d\n", article.ID, article.Version)
}

type client struct {
	base string
	http *http.Client
}

func (c *client) post(path, token string, body any, wantStatus int, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s: status %d (want %d): %s", path, resp.StatusCode, wantStatus, raw)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
