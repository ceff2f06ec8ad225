// smoke-auth exercises the full session lifecycle against a running API:
// register, login, me, refresh, logout, and the post-logout refresh denial.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

func main() {
	base := os.Getenv("HR_API_ADDR")
	if base == "" {
		base = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 5 * time.Second}

	email := fmt.Sprintf("smoke-%d@employehr.local", rand.New(rand.NewSource(time.Now().UnixNano())).Int())
	password := "Sm0ke-test-pass!"

	status, _, err := call(client, base, "POST", "/v1/auth/register", "", map[string]any{
		"email": email, "password": password,
	})
	if err != nil || status != http.StatusCreated {
		log.Fatalf("register: status=%d err=%v", status, err)
	}

	var login struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		User         struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	status, body, err := call(client, base, "POST", "/v1/auth/login", "", map[string]any{
		"email": email, "password": password,
	})
	if err != nil || status != http.StatusOK {
		log.Fatalf("login: status=%d err=%v", status, err)
	}
	if err := json.Unmarshal(body, &login); err != nil {
		log.Fatalf("login decode: %v", err)
	}
	if login.AccessToken == "" || login.RefreshToken == "" {
		log.Fatal("login returned empty tokens")
	}

	status, body, err = call(client, base, "GET", "/v1/auth/me", login.AccessToken, nil)
	if err != nil || status != http.StatusOK {
		log.Fatalf("me: status=%d err=%v", status, err)
	}
	var me struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &me); err != nil || me.User.Email != email {
		log.Fatalf("me mismatch: got %q want %q (err=%v)", me.User.Email, email, err)
	}

	status, _, err = call(client, base, "POST", "/v1/auth/refresh", "", map[string]any{
		"refresh_token": login.RefreshToken,
	})
	if err != nil || status != http.StatusOK {
		log.Fatalf("refresh: status=%d err=%v", status, err)
	}

	status, _, err = call(client, base, "POST", "/v1/auth/logout", login.AccessToken, nil)
	if err != nil || status != http.StatusOK {
		log.Fatalf("logout: status=%d err=%v", status, err)
	}

	// The refresh token must be dead after logout.
	status, _, err = call(client, base, "POST", "/v1/auth/refresh", "", map[string]any{
		"refresh_token": login.RefreshToken,
	})
	if err != nil || status != http.StatusUnauthorized {
		log.Fatalf("refresh after logout: status=%d want 401 err=%v", status, err)
	}

	fmt.Printf("✅ auth smoke test passed: account=%s\n", login.User.ID)
}

func call(client *http.Client, base, method, path, bearer string, payload any) (int, []byte, error) {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, base+path, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp.StatusCode, buf.Bytes(), nil
}
