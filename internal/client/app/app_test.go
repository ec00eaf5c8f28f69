package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/schemeseva/internal/client/api"
	"github.com/atinyakov/schemeseva/internal/client/render"
	"github.com/atinyakov/schemeseva/internal/models"
)

type fakeAPI struct {
	tiles      []models.CategoryTile
	schemes    []models.Scheme
	schemesErr error
	schemeErr  error
	loginErr   error
	verifyErr  error
	chatReply  string
	chatErr    error
	video      *api.Video
	videoErr   error

	loginCalls  int
	otpCalls    int
	passwordSet string
	logoutCalls int
	gotCategory string
	gotQuery    string
}

func (f *fakeAPI) Schemes(_ context.Context, category, query string) ([]models.Scheme, error) {
	f.gotCategory, f.gotQuery = category, query
	return f.schemes, f.schemesErr
}

func (f *fakeAPI) Scheme(_ context.Context, id string) (*models.Scheme, error) {
	if f.schemeErr != nil {
		return nil, f.schemeErr
	}
	for _, sc := range f.schemes {
		if sc.ID == id {
			return &sc, nil
		}
	}
	return nil, api.ErrNotFound
}

func (f *fakeAPI) Categories(_ context.Context) ([]models.CategoryTile, error) {
	return f.tiles, nil
}

func (f *fakeAPI) SendOTP(_ context.Context, _ string) error {
	f.otpCalls++
	return nil
}

func (f *fakeAPI) VerifyOTP(_ context.Context, phone, _ string) (*api.Token, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &api.Token{Token: "otp-token", Phone: "+91" + phone}, nil
}

func (f *fakeAPI) Login(_ context.Context, phone, _ string) (*api.Token, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &api.Token{Token: "login-token", Phone: "+91" + phone}, nil
}

func (f *fakeAPI) SetPassword(_ context.Context, password, _ string) error {
	f.passwordSet = password
	return nil
}

func (f *fakeAPI) Logout(_ context.Context) error {
	f.logoutCalls++
	return nil
}

func (f *fakeAPI) Chat(_ context.Context, _ string) (string, error) {
	return f.chatReply, f.chatErr
}

func (f *fakeAPI) FindVideo(_ context.Context, _ string) (*api.Video, error) {
	return f.video, f.videoErr
}

type memSession struct {
	token, phone string
}

func (m *memSession) LoggedIn() bool { return m.token != "" }
func (m *memSession) Phone() string  { return m.phone }
func (m *memSession) SignIn(token, phone string) error {
	m.token, m.phone = token, phone
	return nil
}
func (m *memSession) SignOut() error {
	m.token, m.phone = "", ""
	return nil
}

func run(t *testing.T, f *fakeAPI, sess *memSession, input string) string {
	t.Helper()
	r, err := render.New(80, "notty")
	require.NoError(t, err)
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	var out bytes.Buffer
	a := New(Options{
		API:     f,
		Session: sess,
		In:      strings.NewReader(input),
		Out:     &out,
		Render:  r,
		Clock:   func() time.Time { return now },
	})
	require.NoError(t, a.Run(context.Background()))
	return out.String()
}

func TestRun_QuitFromWelcome(t *testing.T) {
	out := run(t, &fakeAPI{}, &memSession{}, "3\n")
	assert.Contains(t, out, "Welcome!")
	assert.Contains(t, out, "Bye")
}

func TestLogin_ValidatesBeforeNetwork(t *testing.T) {
	f := &fakeAPI{}
	out := run(t, f, &memSession{}, "1\n12345\nsecret1\n1\n9876543210\nabc\n3\n")
	assert.Contains(t, out, "Please enter a valid 10-digit phone number")
	assert.Contains(t, out, "Password must be at least 6 characters long")
	assert.Zero(t, f.loginCalls)
}

func TestLogin_GuardBlocksAfterThreeFailures(t *testing.T) {
	f := &fakeAPI{loginErr: &api.Error{Status: 401, Message: "invalid phone number or password"}}
	attempt := "1\n9876543210\nwrongpw\n"
	out := run(t, f, &memSession{}, strings.Repeat(attempt, 3)+"1\n3\n")

	assert.Equal(t, 3, f.loginCalls)
	assert.Equal(t, 3, strings.Count(out, msgLoginFailed))
	assert.Contains(t, out, "Too many failed attempts. Please try again in 30 seconds.")
}

func TestLogin_ServerRateLimit(t *testing.T) {
	f := &fakeAPI{loginErr: &api.Error{Status: 429, RetryAfter: 12 * time.Second}}
	out := run(t, f, &memSession{}, "1\n9876543210\nwrongpw\n3\n")
	assert.Contains(t, out, "try again in 12 seconds")
}

func TestLogin_SuccessShowsDashboard(t *testing.T) {
	f := &fakeAPI{tiles: []models.CategoryTile{{Key: "Health", Label: models.Health.Label(), Count: 2}}}
	sess := &memSession{}
	out := run(t, f, sess, "1\n9876543210\nsecret1\nq\n")

	assert.Equal(t, "login-token", sess.token)
	assert.Contains(t, out, "Signed in as +919876543210.")
	assert.Contains(t, out, "2 schemes")
}

func TestSignup_PhoneOTPPassword(t *testing.T) {
	f := &fakeAPI{}
	sess := &memSession{}
	input := "2\n9876543210\nr\n12\n123456\nsecret1\nsecret2\nsecret1\nsecret1\nq\n"
	out := run(t, f, sess, input)

	assert.Equal(t, 1, f.otpCalls, "resend is disabled during the cooldown")
	assert.Contains(t, out, "OTP sent to 9876543210.")
	assert.NotContains(t, out, "OTP sent to +91")
	assert.Contains(t, out, "You can resend the OTP in 60 seconds.")
	assert.Contains(t, out, "Please enter the 6-digit OTP")
	assert.Contains(t, out, "Passwords do not match")
	assert.Equal(t, "secret1", f.passwordSet)
	assert.Equal(t, "otp-token", sess.token)
	assert.Contains(t, out, "Account created.")
}

func TestSignup_WrongOTP(t *testing.T) {
	f := &fakeAPI{verifyErr: &api.Error{Status: 401, Message: "invalid or expired OTP"}}
	sess := &memSession{}
	out := run(t, f, sess, "2\n9876543210\n654321\n\n3\n")

	assert.Contains(t, out, "Invalid or expired OTP")
	assert.False(t, sess.LoggedIn())
}

func TestBrowse_CategoryFilterAndMissingDetail(t *testing.T) {
	f := &fakeAPI{
		tiles: []models.CategoryTile{{Key: "Agriculture", Label: models.Agriculture.Label()}},
		schemes: []models.Scheme{
			{ID: "1", Title: "Soil Health Card", Description: "Soil testing"},
			{ID: "2", Title: "Kisan Credit Card", Description: "Credit"},
		},
		schemeErr: api.ErrNotFound,
	}
	sess := &memSession{token: "t", phone: "+919876543210"}
	out := run(t, f, sess, "1\n/credit\n1\n\nb\nq\n")

	assert.Equal(t, "Agriculture", f.gotCategory)
	assert.Contains(t, out, "Kisan Credit Card")
	assert.Contains(t, out, "Scheme not found")
}

func TestBrowse_LoadFailureOffersRetry(t *testing.T) {
	f := &fakeAPI{schemesErr: errors.New("connection refused")}
	sess := &memSession{token: "t", phone: "+919876543210"}
	out := run(t, f, sess, "a\nb\nq\n")

	assert.Contains(t, out, msgLoadFailed)
}

func TestSearch(t *testing.T) {
	f := &fakeAPI{schemes: []models.Scheme{{ID: "1", Title: "Stand-Up India"}}}
	sess := &memSession{token: "t", phone: "+919876543210"}
	out := run(t, f, sess, "s stand up\nb\nq\n")

	assert.Equal(t, "stand up", f.gotQuery)
	assert.Contains(t, out, "Stand-Up India")
}

func TestChat(t *testing.T) {
	sess := &memSession{token: "t", phone: "+919876543210"}

	out := run(t, &fakeAPI{chatErr: errors.New("500")}, sess, "c\nhello\n\nq\n")
	assert.Contains(t, out, "Sorry, I couldn't fetch the information.")

	out = run(t, &fakeAPI{chatReply: "PM-KISAN pays 6000 a year."}, sess, "c\nhello\n\nq\n")
	assert.Contains(t, out, "6000")
}

func TestVideo(t *testing.T) {
	sess := &memSession{token: "t", phone: "+919876543210"}
	f := &fakeAPI{video: &api.Video{Code: "FIS", Scheme: models.Scheme{Title: "Flow Irrigation Scheme"}, VideoURL: "https://x/fis.mp4"}}
	out := run(t, f, sess, "v\nborewell\nq\n")
	assert.Contains(t, out, "https://x/fis.mp4")

	out = run(t, &fakeAPI{videoErr: api.ErrNotFound}, sess, "v\nhello\nq\n")
	assert.Contains(t, out, "No video found")
}

func TestSignOut(t *testing.T) {
	f := &fakeAPI{}
	sess := &memSession{token: "t", phone: "+919876543210"}
	out := run(t, f, sess, "o\n3\n")

	assert.False(t, sess.LoggedIn())
	assert.Equal(t, 1, f.logoutCalls)
	assert.Contains(t, out, "Signed out.")
	assert.Contains(t, out, "Welcome!")
}
