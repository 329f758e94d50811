// Seeds a local server with demo users and notices through the public API.
// Run the server first, then: go run scripts/seed-demo-data.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const apiBase = "http://localhost:8080/api/v1"

type User struct {
	Email    string
	Password string
	Token    string
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func signUp(email, password string) error {
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	resp, err := http.Post(apiBase+"/auth/sign-up", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sign-up failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

func signIn(email, password string) (*User, error) {
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	resp, err := http.Post(apiBase+"/auth/sign-in", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sign-in failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	return &User{Email: email, Password: password, Token: result.AccessToken}, nil
}

func listCategories() ([]Category, error) {
	resp, err := http.Get(apiBase + "/categories")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var categories []Category
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return categories, nil
}

func createNotice(token string, categoryID, title, text string, price int64) error {
	body, _ := json.Marshal(map[string]interface{}{
		"title":      title,
		"text":       text,
		"categoryId": categoryID,
		"type":       "Offer",
		"status":     "Published",
		"price":      price,
	})

	req, _ := http.NewRequest("POST", apiBase+"/notices", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("create notice failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

func pad(s string, min int) string {
	if len(s) >= min {
		return s
	}
	return s + " " + strings.Repeat(".", min-len(s)-1)
}

func main() {
	users := []struct{ email, password string }{
		{"alice@example.com", "demo-pass-1!"},
		{"bob@example.com", "demo-pass-2!"},
	}

	for _, u := range users {
		if err := signUp(u.email, u.password); err != nil {
			fmt.Fprintf(os.Stderr, "sign-up %s: %v\n", u.email, err)
			os.Exit(1)
		}
	}

	categories, err := listCategories()
	if err != nil || len(categories) == 0 {
		fmt.Fprintf(os.Stderr, "list categories: %v\n", err)
		os.Exit(1)
	}

	titles := []string{
		"Selling a barely used city bicycle with front and rear lights",
		"Looking for somebody to help move a piano next weekend",
		"Vintage record player in working order, needs a new needle",
	}

	for i, u := range users {
		user, err := signIn(u.email, u.password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sign-in %s: %v\n", u.email, err)
			os.Exit(1)
		}

		title := titles[i%len(titles)]
		text := pad("Demo listing seeded through the API, contact the seller for details", 50)
		category := categories[i%len(categories)]

		if err := createNotice(user.Token, category.ID, pad(title, 50), text, int64(50*(i+1))); err != nil {
			fmt.Fprintf(os.Stderr, "create notice for %s: %v\n", u.email, err)
			os.Exit(1)
		}
		fmt.Printf("seeded notice for %s in %s\n", u.email, category.Name)
	}
}
