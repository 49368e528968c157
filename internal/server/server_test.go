package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/imaging"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/match"
	"github.com/Tokyo44/multidatabse-connection-with-vision-main/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubClassifier struct {
	result match.Result
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, imageBytes []byte) (match.Result, error) {
	return s.result, s.err
}

type stubFinder struct {
	byLicense []store.Driver
	byName    []store.Driver
}

func (s *stubFinder) FindByLicense(ctx context.Context, num string) ([]store.Driver, error) {
	return s.byLicense, nil
}

func (s *stubFinder) FindByName(ctx context.Context, first, last string) ([]store.Driver, error) {
	return s.byName, nil
}

func uploadRequest(t *testing.T, target string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "card.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("fake image bytes")); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestClassifyEndpoint(t *testing.T) {
	classifier := &stubClassifier{result: match.Result{
		Label:         match.VoterID,
		Confidence:    83.3,
		KeywordsFound: []string{"voter", "ballot"},
	}}
	s := New(classifier, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "/api/v1/classify"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body)
	}
	var got match.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if got.Label != match.VoterID || got.Confidence != 83.3 {
		t.Errorf("got %q at %v, want Voter ID at 83.3", got.Label, got.Confidence)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}

func TestClassifyEndpointMissingUpload(t *testing.T) {
	s := New(&stubClassifier{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", nil)
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestClassifyEndpointDecodeError(t *testing.T) {
	classifier := &stubClassifier{err: fmt.Errorf("classifying image: %w", imaging.ErrImageDecode)}
	s := New(classifier, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "/api/v1/classify"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLoginAuthorizedWithDriverLookup(t *testing.T) {
	classifier := &stubClassifier{result: match.Result{
		Label:         match.DriversLicence,
		Confidence:    100,
		LicenseNumber: "A1234567",
		FirstName:     "John",
		LastName:      "Smith",
	}}
	finder := &stubFinder{byLicense: []store.Driver{{
		LicenseNumber: "A1234567",
		FirstName:     "John",
		LastName:      "Smith",
		MatchScore:    100,
	}}}
	s := New(classifier, finder)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "/api/v1/login"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body)
	}
	var got LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if !got.Authorized {
		t.Errorf("Authorized = false, want true (reason: %s)", got.Reason)
	}
	if len(got.Drivers) != 1 || got.Drivers[0].LicenseNumber != "A1234567" {
		t.Errorf("Drivers = %v, want the looked-up record", got.Drivers)
	}
}

func TestLoginRejectsLowConfidence(t *testing.T) {
	classifier := &stubClassifier{result: match.Result{
		Label:      match.DriversLicence,
		Confidence: 39.9,
	}}
	s := New(classifier, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "/api/v1/login"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	var got LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if got.Authorized {
		t.Error("Authorized = true for a sub-threshold match")
	}
	if got.Reason == "" {
		t.Error("rejection carries no reason")
	}
}

func TestLoginRejectsUnknown(t *testing.T) {
	classifier := &stubClassifier{result: match.Result{
		Label:      match.Unknown,
		Confidence: 0,
	}}
	s := New(classifier, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "/api/v1/login"))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestLoginNonLicenceSkipsLookup(t *testing.T) {
	classifier := &stubClassifier{result: match.Result{
		Label:      match.GhanaCard,
		Confidence: 100,
	}}
	s := New(classifier, &stubFinder{byLicense: []store.Driver{{LicenseNumber: "X"}}})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, uploadRequest(t, "/api/v1/login"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if !got.Authorized {
		t.Error("Authorized = false, want true")
	}
	if len(got.Drivers) != 0 {
		t.Errorf("Drivers = %v, want none for a non-licence card", got.Drivers)
	}
}

func TestHealthz(t *testing.T) {
	s := New(&stubClassifier{}, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
