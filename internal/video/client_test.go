package video

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rahulxcodes/Demo-Webinars-sub000/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(config.VideoConfig{
		BaseURL:        srv.URL,
		APIKey:         "key-123",
		APISecret:      "secret",
		TokenTTLSec:    60,
		RequestTimeout: 5,
	})
	return client, srv
}

func TestCreateCall(t *testing.T) {
	var gotPath, gotAuth string
	var gotParams CreateCallParams

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotParams); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(CallInfo{CallID: gotParams.CallID, CreatedAt: time.Now()})
	})

	info, err := client.CreateCall(context.Background(), CreateCallParams{
		CallID:          "call-1",
		CreatedBy:       "host-1",
		Title:           "Launch",
		MaxParticipants: 500,
	})
	if err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	if info.CallID != "call-1" {
		t.Fatalf("call id = %q", info.CallID)
	}
	if gotPath != "/calls" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotParams.MaxParticipants != 500 {
		t.Fatalf("max_participants = %d", gotParams.MaxParticipants)
	}

	// Requests carry a signed server token.
	if !strings.HasPrefix(gotAuth, "Bearer ") {
		t.Fatalf("authorization = %q", gotAuth)
	}
	claims, err := ParseUserToken("secret", strings.TrimPrefix(gotAuth, "Bearer "))
	if err != nil {
		t.Fatalf("server token: %v", err)
	}
	if claims.Subject != "server" || claims.Issuer != "key-123" {
		t.Fatalf("server token claims: %+v", claims)
	}
}

func TestStartAndEndCall(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.StartCall(context.Background(), "call-9"); err != nil {
		t.Fatalf("StartCall: %v", err)
	}
	if err := client.EndCall(context.Background(), "call-9"); err != nil {
		t.Fatalf("EndCall: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/calls/call-9/go_live" || paths[1] != "/calls/call-9/end" {
		t.Fatalf("paths = %v", paths)
	}
}

func TestProviderErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "call not found", http.StatusNotFound)
	})

	err := client.StartCall(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("error should carry the provider status: %v", err)
	}
}

func TestIssueUserToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	token, err := client.IssueUserToken("reg-7")
	if err != nil {
		t.Fatalf("IssueUserToken: %v", err)
	}
	claims, err := ParseUserToken("secret", token)
	if err != nil {
		t.Fatalf("ParseUserToken: %v", err)
	}
	if claims.Subject != "reg-7" {
		t.Fatalf("subject = %q", claims.Subject)
	}
}
