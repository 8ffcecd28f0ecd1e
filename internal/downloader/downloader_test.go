package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadBasic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := Download(context.Background(), srv.URL+"/app_x64.exe", Options{CacheDir: dir})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello world" {
		t.Errorf("content = %q", data)
	}
	if filepath.Base(path) != "app_x64.exe" {
		t.Errorf("filename = %q, want app_x64.exe", filepath.Base(path))
	}
}

func TestDownloadRejectsNonHTTPS(t *testing.T) {
	_, err := Download(context.Background(), "http://example.com/app.exe", Options{CacheDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected UnsupportedScheme error")
	}
	if _, ok := err.(*UnsupportedScheme); !ok {
		t.Errorf("wrong error type: %T", err)
	}
}

func TestDownloadAllowUnsecure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.URL+"/a.exe", Options{CacheDir: t.TempDir(), AllowUnsecure: true})
	if err != nil {
		t.Fatalf("Download with AllowUnsecure: %v", err)
	}
}

func TestDownloadNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := Download(context.Background(), srv.URL+"/a.exe", Options{CacheDir: dir, AllowUnsecure: true})
	if err == nil {
		t.Fatal("expected NetworkError")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no files left in cache dir, found %d", len(entries))
	}
}

func TestDownloadTooManyRedirects(t *testing.T) {
	var mux *http.ServeMux
	mux = http.NewServeMux()
	mux.HandleFunc("/0", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/1", http.StatusFound) })
	mux.HandleFunc("/1", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/2", http.StatusFound) })
	mux.HandleFunc("/2", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/3", http.StatusFound) })
	mux.HandleFunc("/3", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("unreachable")) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	_, err := Download(context.Background(), srv.URL+"/0", Options{CacheDir: dir, AllowUnsecure: true})
	if err == nil {
		t.Fatal("expected NetworkError after exceeding redirect cap")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no files written, found %d", len(entries))
	}
}

func TestDownloadExactlyTwoHopsSucceeds(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/0", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/1", http.StatusFound) })
	mux.HandleFunc("/1", func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/final.exe", http.StatusFound) })
	mux.HandleFunc("/final.exe", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("payload")) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	path, err := Download(context.Background(), srv.URL+"/0", Options{CacheDir: dir, AllowUnsecure: true})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filepath.Base(path) != "0" {
		// Original URL path tail ("0") wins over the final redirected URL's tail.
		t.Errorf("filename = %q, want 0 (priority 2 beats priority 3)", filepath.Base(path))
	}
}

func TestDownloadTooLargeByContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000000")
		w.Write(make([]byte, 100))
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.URL+"/a.exe", Options{CacheDir: t.TempDir(), AllowUnsecure: true, MaxSize: 10})
	if err == nil {
		t.Fatal("expected DownloadTooLarge error")
	}
	if _, ok := err.(*DownloadTooLarge); !ok {
		t.Errorf("wrong error type: %T", err)
	}
}

func TestDownloadDedupesByFilenameNotHash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("v1"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	p1, err := Download(context.Background(), srv.URL+"/app.exe", Options{CacheDir: dir, AllowUnsecure: true})
	if err != nil {
		t.Fatal(err)
	}
	p2, err := Download(context.Background(), srv.URL+"/app.exe", Options{CacheDir: dir, AllowUnsecure: true})
	if err != nil {
		t.Fatal(err)
	}
	if p1 == p2 {
		t.Fatalf("expected distinct paths, both were %q", p1)
	}
	if filepath.Base(p2) != "app (1).exe" {
		t.Errorf("second download name = %q, want %q", filepath.Base(p2), "app (1).exe")
	}
}

func TestContentDispositionFilename(t *testing.T) {
	got := contentDispositionFilename(`attachment; filename="My App.exe"`)
	if got != "My App.exe" {
		t.Errorf("got %q", got)
	}
}
