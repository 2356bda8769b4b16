package psnet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPostJSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"echo":true}`))
	}))
	defer srv.Close()

	var out struct {
		Echo bool `json:"echo"`
	}
	if err := PostJSON(context.Background(), srv.URL, map[string]int{"x": 1}, &out); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if !out.Echo {
		t.Fatal("PostJSON did not decode the response body")
	}
}

func TestPostJSONErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := PostJSON(context.Background(), srv.URL, nil, nil); err == nil {
		t.Fatal("PostJSON did not report a 500 response as an error")
	}
}

func TestGetJSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	if err := GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if !out.OK {
		t.Fatal("GetJSON did not decode the response body")
	}
}
