package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/atinyakov/schemeseva/internal/models"
	"github.com/atinyakov/schemeseva/internal/repository"
)

// ErrNoVideoMatch is returned when a query names no known scheme.
var ErrNoVideoMatch = errors.New("no scheme matches the query")

// VideoRepository is the lookup the VideoService needs.
type VideoRepository interface {
	GetByTitle(ctx context.Context, title string) (*models.Scheme, error)
}

// videoScheme ties a short scheme code to its title and search keywords.
type videoScheme struct {
	Code     string
	Title    string
	Keywords []string
}

// videoSchemes is checked in order; the first keyword hit wins.
var videoSchemes = []videoScheme{
	{"AIF", "Agricultural Infrastructure Fund",
		[]string{"aif", "agricultural infrastructure", "post-harvest", "loan", "machine", "modernize", "50 lakh", "2 crore"}},
	{"PKKKY", "Prakritik Kheti Khushhal Kisan Yojana",
		[]string{"prakritik", "natural", "zero-budget", "organic", "cow dung", "cow urine", "non-chemical", "environment"}},
	{"FIS", "Flow Irrigation Scheme",
		[]string{"flow", "irrigation", "borewell", "sloped", "dry", "remote", "water", "subsidy", "terrain"}},
	{"RKPY", "Rajya Krishi Yantrikaran Programme",
		[]string{"yantrikaran", "mechanization", "machine", "tiller", "modern equipment", "custom hiring", "subsidy", "tools"}},
	{"JSKKBY", "Jal Se Krishi Ko Bal Yojana",
		[]string{"jal", "bal", "rainwater", "harvesting", "solar pump", "lift", "irrigation", "tribal", "stored water"}},
	{"HIMUY", "Himachal Unnati Yojana",
		[]string{"unnati", "micro-enterprise", "skill", "tailoring", "carpentry", "sc", "bpl", "training", "income", "livelihood"}},
}

var stopwords = map[string]bool{
	"and": true, "the": true, "for": true, "in": true, "of": true, "a": true, "to": true,
	"or": true, "on": true, "at": true, "with": true, "by": true, "from": true,
}

var wordRe = regexp.MustCompile(`\w+`)

// VideoMatch is the result of a video search.
type VideoMatch struct {
	Code     string        `json:"code"`
	Scheme   models.Scheme `json:"scheme"`
	VideoURL string        `json:"video_url"`
}

// VideoService finds the explainer video for a free-text question.
type VideoService struct {
	repo   VideoRepository
	region string
}

// NewVideoService constructs a VideoService; region is used to resolve s3:// references.
func NewVideoService(repo VideoRepository, region string) *VideoService {
	return &VideoService{repo: repo, region: region}
}

// Search identifies the scheme named by text and returns it with its playable video URL.
func (s *VideoService) Search(ctx context.Context, text string) (*VideoMatch, error) {
	code, title, ok := IdentifyScheme(text)
	if !ok {
		return nil, ErrNoVideoMatch
	}
	sc, err := s.repo.GetByTitle(ctx, title)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSchemeNotFound
	}
	if err != nil {
		return nil, err
	}
	link, err := ResolveVideoURL(sc.VideoURL, s.region)
	if err != nil {
		return nil, err
	}
	return &VideoMatch{Code: code, Scheme: *sc, VideoURL: link}, nil
}

// IdentifyScheme returns the code and title of the first scheme with a keyword
// whose words all appear in text.
func IdentifyScheme(text string) (code, title string, ok bool) {
	present := make(map[string]bool)
	for _, w := range tokens(text) {
		if !stopwords[w] {
			present[w] = true
		}
	}
	for _, vs := range videoSchemes {
		for _, kw := range vs.Keywords {
			if containsAll(present, tokens(kw)) {
				return vs.Code, vs.Title, true
			}
		}
	}
	return "", "", false
}

// ResolveVideoURL turns an object-storage reference into a playable HTTPS URL.
// s3://bucket/key becomes the bucket's virtual-hosted URL in region;
// http(s) URLs and the empty string are returned unchanged.
func ResolveVideoURL(ref, region string) (string, error) {
	if ref == "" || !strings.HasPrefix(ref, "s3://") {
		return ref, nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse video reference: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", fmt.Errorf("video reference %q needs a bucket and a key", ref)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Host, region, key), nil
}

func tokens(s string) []string {
	return wordRe.FindAllString(strings.ToLower(s), -1)
}

func containsAll(set map[string]bool, words []string) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !set[w] {
			return false
		}
	}
	return true
}
