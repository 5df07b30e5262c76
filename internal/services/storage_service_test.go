package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func newMemFile(content []byte) memFile {
	return memFile{Reader: bytes.NewReader(content)}
}

func TestSaveProofUploadsUnderProofFolder(t *testing.T) {
	var gotPath, gotAuth, gotAPIKey, gotUpsert string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		gotUpsert = r.Header.Get("x-upsert")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	storage := NewSupabaseStorage(server.URL, "proofs", "service-key")
	proofURL, err := storage.SaveProof(context.Background(), newMemFile([]byte("png bytes")), "abc.png")
	if err != nil {
		t.Fatalf("SaveProof: %v", err)
	}

	wantPath := "/storage/v1/object/proofs/payment-proofs/abc.png"
	if gotPath != wantPath {
		t.Fatalf("expected upload to %s, got %s", wantPath, gotPath)
	}
	if gotAuth != "Bearer service-key" || gotAPIKey != "service-key" {
		t.Fatalf("expected service key auth headers, got %q / %q", gotAuth, gotAPIKey)
	}
	if gotUpsert != "true" {
		t.Fatalf("expected x-upsert true, got %q", gotUpsert)
	}
	if proofURL != server.URL+wantPath {
		t.Fatalf("expected stored object url %s, got %s", server.URL+wantPath, proofURL)
	}
}

func TestProofViewURLSignsStoredObject(t *testing.T) {
	var gotPath string
	var gotExpiry int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		var payload struct {
			ExpiresIn int `json:"expiresIn"`
		}
		_ = json.Unmarshal(raw, &payload)
		gotExpiry = payload.ExpiresIn
		_, _ = w.Write([]byte(`{"signedURL":"/object/sign/proofs/payment-proofs/abc.png?token=t0k"}`))
	}))
	defer server.Close()

	storage := NewSupabaseStorage(server.URL, "proofs", "service-key")
	viewURL, err := storage.ProofViewURL(context.Background(), server.URL+"/storage/v1/object/proofs/payment-proofs/abc.png")
	if err != nil {
		t.Fatalf("ProofViewURL: %v", err)
	}

	if gotPath != "/storage/v1/object/sign/proofs/payment-proofs/abc.png" {
		t.Fatalf("unexpected sign path %s", gotPath)
	}
	if gotExpiry != int(proofLinkExpiry.Seconds()) {
		t.Fatalf("expected expiry %d, got %d", int(proofLinkExpiry.Seconds()), gotExpiry)
	}
	want := server.URL + "/storage/v1/object/sign/proofs/payment-proofs/abc.png?token=t0k"
	if viewURL != want {
		t.Fatalf("expected %s, got %s", want, viewURL)
	}
}

func TestProofViewURLRejectsForeignBucket(t *testing.T) {
	storage := NewSupabaseStorage("https://example.supabase.co", "proofs", "service-key")
	_, err := storage.ProofViewURL(context.Background(), "https://example.supabase.co/storage/v1/object/other-bucket/payment-proofs/abc.png")
	if err == nil {
		t.Fatal("expected an error for an object outside the configured bucket")
	}
}

func TestRemoveProofTreatsMissingObjectAsRemoved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	storage := NewSupabaseStorage(server.URL, "proofs", "service-key")
	err := storage.RemoveProof(context.Background(), server.URL+"/storage/v1/object/proofs/payment-proofs/abc.png")
	if err != nil {
		t.Fatalf("RemoveProof: %v", err)
	}
}
