package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/models"
	"github.com/atinyakov/schemeseva/internal/service"
)

type fakeVideoService struct {
	match *service.VideoMatch
	err   error
	gotQ  string
}

func (f *fakeVideoService) Search(_ context.Context, text string) (*service.VideoMatch, error) {
	f.gotQ = text
	return f.match, f.err
}

func TestVideoHandler_Search(t *testing.T) {
	match := &service.VideoMatch{
		Code:     "FIS",
		Scheme:   models.Scheme{ID: "9", Title: "Flow Irrigation Scheme"},
		VideoURL: "https://videos.s3.ap-south-1.amazonaws.com/fis.mp4",
	}
	tests := []struct {
		name         string
		url          string
		service      *fakeVideoService
		expectedCode int
	}{
		{"missing query", "/api/videos/search?q=++", &fakeVideoService{}, http.StatusBadRequest},
		{"no keyword", "/api/videos/search?q=hello", &fakeVideoService{err: service.ErrNoVideoMatch}, http.StatusNotFound},
		{"scheme missing", "/api/videos/search?q=aif", &fakeVideoService{err: service.ErrSchemeNotFound}, http.StatusNotFound},
		{"failure", "/api/videos/search?q=aif", &fakeVideoService{err: errors.New("db")}, http.StatusInternalServerError},
		{"found", "/api/videos/search?q=borewell", &fakeVideoService{match: match}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h := &VideoHandler{VideoService: tt.service, Log: zap.NewNop()}
			h.Search(rec, httptest.NewRequest("GET", tt.url, nil))

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if rec.Code != http.StatusOK {
				return
			}
			var got service.VideoMatch
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode JSON: %v", err)
			}
			if got.Code != "FIS" || got.VideoURL != match.VideoURL || tt.service.gotQ != "borewell" {
				t.Errorf("unexpected match %+v", got)
			}
		})
	}
}
