package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ProofStorage holds GCash payment proof screenshots. The bucket stays
// private: uploads go through the service key, and reads come back as
// short-lived signed links for the reviewing partner.
type ProofStorage interface {
	SaveProof(ctx context.Context, file multipart.File, objectName string) (string, error)
	RemoveProof(ctx context.Context, proofURL string) error
	ProofViewURL(ctx context.Context, proofURL string) (string, error)
}

const (
	proofFolder     = "payment-proofs"
	proofLinkExpiry = 15 * time.Minute

	storageErrorBodyLimit = 2048
)

// SupabaseStorage implements ProofStorage against the Supabase storage
// REST API.
type SupabaseStorage struct {
	endpoint   string
	bucket     string
	serviceKey string
	httpClient *http.Client
}

func NewSupabaseStorage(endpoint, bucket, serviceKey string) *SupabaseStorage {
	return &SupabaseStorage{
		endpoint:   strings.TrimRight(endpoint, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SaveProof uploads the screenshot under the proof folder and returns the
// object URL that gets persisted on the payment row.
func (s *SupabaseStorage) SaveProof(ctx context.Context, file multipart.File, objectName string) (string, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read proof: %w", err)
	}

	target := fmt.Sprintf("%s/storage/v1/object/%s/%s/%s", s.endpoint, s.bucket, proofFolder, objectName)
	req, err := s.newRequest(ctx, http.MethodPost, target, bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", http.DetectContentType(content))
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("save proof: %w", err)
	}
	defer resp.Body.Close()

	if err := storageStatusError(resp); err != nil {
		return "", fmt.Errorf("save proof: %w", err)
	}
	return target, nil
}

// RemoveProof deletes the object behind a proof URL. A missing object is
// treated as already removed.
func (s *SupabaseStorage) RemoveProof(ctx context.Context, proofURL string) error {
	objectPath, err := s.objectPath(proofURL)
	if err != nil {
		return err
	}

	target := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.endpoint, s.bucket, objectPath)
	req, err := s.newRequest(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remove proof: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if err := storageStatusError(resp); err != nil {
		return fmt.Errorf("remove proof: %w", err)
	}
	return nil
}

// ProofViewURL exchanges a stored proof URL for a signed link valid for
// proofLinkExpiry.
func (s *SupabaseStorage) ProofViewURL(ctx context.Context, proofURL string) (string, error) {
	objectPath, err := s.objectPath(proofURL)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]int{"expiresIn": int(proofLinkExpiry.Seconds())})
	if err != nil {
		return "", fmt.Errorf("sign proof: %w", err)
	}

	target := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.endpoint, s.bucket, objectPath)
	req, err := s.newRequest(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign proof: %w", err)
	}
	defer resp.Body.Close()

	if err := storageStatusError(resp); err != nil {
		return "", fmt.Errorf("sign proof: %w", err)
	}

	var signed struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return "", fmt.Errorf("sign proof: decode response: %w", err)
	}
	if signed.SignedURL == "" {
		return "", fmt.Errorf("sign proof: empty signed url in response")
	}

	return s.endpoint + "/storage/v1" + signed.SignedURL, nil
}

func (s *SupabaseStorage) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build storage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	return req, nil
}

// objectPath extracts "<folder>/<name>" from a stored object URL and checks
// it belongs to the configured bucket.
func (s *SupabaseStorage) objectPath(proofURL string) (string, error) {
	parsed, err := url.Parse(proofURL)
	if err != nil {
		return "", fmt.Errorf("parse proof url: %w", err)
	}

	rest, found := strings.CutPrefix(parsed.Path, "/storage/v1/object/")
	if !found {
		return "", fmt.Errorf("proof url is not a storage object url")
	}
	rest = strings.TrimPrefix(rest, "public/")

	objectPath, found := strings.CutPrefix(rest, s.bucket+"/")
	if !found || objectPath == "" {
		return "", fmt.Errorf("proof url does not belong to bucket %s", s.bucket)
	}
	return objectPath, nil
}

func storageStatusError(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, storageErrorBodyLimit))
	return fmt.Errorf("storage returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
}
