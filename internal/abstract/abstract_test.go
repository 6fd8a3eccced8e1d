package abstract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zkjiang/autoabstract/internal/schema"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// completionReply wraps content the way the chat API does.
func completionReply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":    "gen-1",
		"model": DefaultModel,
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*OpenRouterClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewOpenRouterClient(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Logger:  quietLogger(),
	})
	return client, srv
}

func TestExtract_DefaultSchema(t *testing.T) {
	var gotBody map[string]any
	var gotAuth, gotReferer, gotTitle string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		io.WriteString(w, completionReply(`{"visitDate":"2024-01-01","diagnoses":["Concussion"],"missingInformation":["intent"]}`))
	})

	rec, err := client.Extract(context.Background(), "patient fell off bicycle", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReferer != DefaultReferer {
		t.Errorf("HTTP-Referer = %q", gotReferer)
	}
	if gotTitle != DefaultAppTitle {
		t.Errorf("X-Title = %q", gotTitle)
	}

	if gotBody["model"] != DefaultModel {
		t.Errorf("model = %v", gotBody["model"])
	}
	if temp, ok := gotBody["temperature"].(float64); !ok || temp != 0.0 {
		t.Errorf("temperature = %v (must be serialized as 0)", gotBody["temperature"])
	}
	if seed, ok := gotBody["seed"].(float64); !ok || seed != 42 {
		t.Errorf("seed = %v, want 42", gotBody["seed"])
	}

	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("messages = %v, want exactly one", msgs)
	}
	msg := msgs[0].(map[string]any)
	if msg["role"] != "user" {
		t.Errorf("role = %v", msg["role"])
	}
	prompt, _ := msg["content"].(string)
	for _, want := range []string{
		"NO HALLUCINATIONS",
		"CLINICAL NOTE:",
		"patient fell off bicycle",
		"Extract standard injury surveillance data.",
		`"visitDate"`,
		`"missingInformation"`,
		"ONLY valid JSON",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if got := rec.String("visitDate"); got != "2024-01-01" {
		t.Errorf("visitDate = %q", got)
	}
	if !rec.Missing("intent") {
		t.Error("intent should be flagged missing")
	}
}

func TestExtract_CustomSchemaSelection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		json.Unmarshal(body, &req)
		prompt := req["messages"].([]any)[0].(map[string]any)["content"].(string)

		if !strings.Contains(prompt, `"allergies"`) {
			t.Error("custom schema not embedded in prompt")
		}
		if strings.Contains(prompt, `"injuryMechanism"`) {
			t.Error("default schema leaked into custom prompt")
		}
		if !strings.Contains(prompt, "Extract the specific fields defined in the schema.") {
			t.Error("custom addendum missing")
		}
		io.WriteString(w, completionReply(`{"allergies":["Penicillin","Latex"],"missingInformation":[]}`))
	})

	fields := []schema.Field{{Key: "allergies", Description: "List of patient allergies", Type: schema.TypeArray}}
	rec, err := client.Extract(context.Background(), "allergic to penicillin and latex", fields)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	got := rec.Strings("allergies")
	if len(got) != 2 || got[0] != "Penicillin" || got[1] != "Latex" {
		t.Fatalf("allergies = %v", got)
	}
}

func TestExtract_FencedReply(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, completionReply("```json\n{\"visitDate\":\"2024-01-01\",\"missingInformation\":[]}\n```"))
	})

	rec, err := client.Extract(context.Background(), "note", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := rec.String("visitDate"); got != "2024-01-01" {
		t.Errorf("visitDate = %q", got)
	}
}

func TestExtract_UpstreamStatusError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	_, err := client.Extract(context.Background(), "note", nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusInternalServerError {
		t.Errorf("code = %d", statusErr.Code)
	}
	if !strings.Contains(statusErr.Body, "upstream exploded") {
		t.Errorf("body = %q", statusErr.Body)
	}
}

func TestExtract_EmptyResponse(t *testing.T) {
	for _, body := range []string{
		`{"choices":[]}`,
		`{"choices":[{"message":{"role":"assistant","content":""}}]}`,
		`{"choices":[{"message":{"role":"assistant"}}]}`,
	} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		})
		_, err := client.Extract(context.Background(), "note", nil)
		if !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("body %q: expected ErrEmptyResponse, got %v", body, err)
		}
	}
}

func TestExtract_MalformedJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, completionReply("the patient has a concussion"))
	})

	_, err := client.Extract(context.Background(), "note", nil)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestExtract_DriftIsTolerated(t *testing.T) {
	// Reply omits every required key and adds an extra one: hard drift,
	// but the record must still come back.
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, completionReply(`{"surprise":"value"}`))
	})

	rec, err := client.Extract(context.Background(), "note", nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := rec.String("surprise"); got != "value" {
		t.Errorf("surprise = %q", got)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
		{"```json\n{\"a\":1}", `{"a":1}`}, // unclosed fence
	}
	for _, tc := range cases {
		if got := StripCodeFence(tc.in); got != tc.want {
			t.Errorf("StripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCheckDrift(t *testing.T) {
	target := schema.Generate([]schema.Field{
		{Key: "allergies", Description: "d", Type: schema.TypeArray},
	})

	if err := checkDrift(target, `{"allergies":["Penicillin"],"missingInformation":[]}`); err != nil {
		t.Fatalf("conforming output flagged as drift: %v", err)
	}
	if err := checkDrift(target, `{"allergies":"not a list","missingInformation":[]}`); err == nil {
		t.Fatal("wrong element type should register as drift")
	}
	if err := checkDrift(target, `{"extra":"key","allergies":[],"missingInformation":[]}`); err == nil {
		t.Fatal("extra key should register as drift")
	}
}
