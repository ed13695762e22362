package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/instiwise/client-go/internal/types"
)

func TestListNews_Success(t *testing.T) {
	t.Parallel()
	resp := types.ListEnvelope[types.NewsItem]{Data: []types.NewsItem{
		{ID: "n1", Title: "Results out", Likes: []string{"u2"}, Dislikes: []string{}, Views: []string{"u2"}},
	}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()
	got, err := ListNews(context.Background(), srv.Client(), srv.URL)
	if err != nil || len(got) != 1 || got[0].ID != "n1" {
		t.Fatalf("ListNews unexpected: got=%+v err=%v", got, err)
	}
}

func TestNewsInteractions_Paths(t *testing.T) {
	t.Parallel()
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		paths = append(paths, r.URL.Path)
	}))
	defer srv.Close()

	ctx := context.Background()
	if err := LikeNews(ctx, srv.Client(), srv.URL, "n1"); err != nil {
		t.Fatalf("LikeNews: %v", err)
	}
	if err := DislikeNews(ctx, srv.Client(), srv.URL, "n1"); err != nil {
		t.Fatalf("DislikeNews: %v", err)
	}
	if err := ViewNews(ctx, srv.Client(), srv.URL, "n1"); err != nil {
		t.Fatalf("ViewNews: %v", err)
	}

	want := []string{"/news/n1/like", "/news/n1/dislike", "/news/n1/view"}
	for i, p := range want {
		if paths[i] != p {
			t.Fatalf("path[%d] = %s, want %s", i, paths[i], p)
		}
	}
}

func TestNewsInteraction_EmptyID(t *testing.T) {
	t.Parallel()
	if err := LikeNews(context.Background(), http.DefaultClient, "http://unused", ""); err == nil {
		t.Fatal("expected validation error")
	}
}
