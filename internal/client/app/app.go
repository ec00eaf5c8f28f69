// Package app runs the terminal client's screens: welcome, login, signup,
// dashboard, category list, scheme detail, chat and video lookup.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/client/api"
	"github.com/atinyakov/schemeseva/internal/client/prompt"
	"github.com/atinyakov/schemeseva/internal/client/render"
	"github.com/atinyakov/schemeseva/internal/guard"
	"github.com/atinyakov/schemeseva/internal/models"
)

const (
	msgChatFailed  = "Sorry, I couldn't fetch the information."
	msgLoginFailed = "Invalid phone number or password."
	msgLoadFailed  = "Could not load data. Type r to retry or b to go back."
)

// errQuit ends Run without an error.
var errQuit = errors.New("quit")

// API is the server surface the screens use.
type API interface {
	Schemes(ctx context.Context, category, query string) ([]models.Scheme, error)
	Scheme(ctx context.Context, id string) (*models.Scheme, error)
	Categories(ctx context.Context) ([]models.CategoryTile, error)
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (*api.Token, error)
	Login(ctx context.Context, phone, password string) (*api.Token, error)
	SetPassword(ctx context.Context, password, confirm string) error
	Logout(ctx context.Context) error
	Chat(ctx context.Context, text string) (string, error)
	FindVideo(ctx context.Context, query string) (*api.Video, error)
}

// Session is the app-wide sign-in state.
type Session interface {
	LoggedIn() bool
	Phone() string
	SignIn(token, phone string) error
	SignOut() error
}

// App wires the screens to the API and the session.
type App struct {
	api     API
	session Session
	prompt  *prompt.Prompter
	out     io.Writer
	render  *render.Renderer
	log     *zap.Logger

	loginGuard *guard.Guard
	resend     *guard.Cooldown
}

// Options configures an App.
type Options struct {
	API     API
	Session Session
	In      io.Reader
	Out     io.Writer
	Render  *render.Renderer
	Log     *zap.Logger
	// Clock drives the login guard and the resend cooldown. Nil means time.Now.
	Clock guard.Clock
}

// New returns an App.
func New(o Options) *App {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return &App{
		api:        o.API,
		session:    o.Session,
		prompt:     prompt.New(o.In, o.Out),
		out:        o.Out,
		render:     o.Render,
		log:        o.Log,
		loginGuard: guard.NewLoginGuard(o.Clock),
		resend:     guard.NewCooldown(guard.ResendDelay, o.Clock),
	}
}

// Run shows the welcome menu while signed out and the dashboard while signed
// in, until the user quits or the input ends.
func (a *App) Run(ctx context.Context) error {
	for {
		var err error
		if a.session.LoggedIn() {
			err = a.dashboard(ctx)
		} else {
			err = a.welcome(ctx)
		}
		switch {
		case errors.Is(err, errQuit), errors.Is(err, prompt.ErrClosed):
			a.println("Bye")
			return nil
		case err != nil:
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (a *App) welcome(ctx context.Context) error {
	a.println(a.render.Title("SchemeSeva"))
	choice, err := a.prompt.Choose("Welcome! Find the government schemes you are eligible for.",
		[]string{"Login", "Sign up", "Quit"})
	if err != nil {
		return err
	}
	switch choice {
	case 0:
		return a.login(ctx)
	case 1:
		return a.signup(ctx)
	default:
		return errQuit
	}
}

func (a *App) println(v ...any) {
	fmt.Fprintln(a.out, v...)
}

func (a *App) errorf(format string, v ...any) {
	a.println(a.render.Error(fmt.Sprintf(format, v...)))
}

// retryAfter returns the server's Retry-After for a 429 answer.
func retryAfter(err error) (int, bool) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return guard.Seconds(apiErr.RetryAfter), true
	}
	return 0, false
}

// message extracts a user-facing text from an API error.
func message(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status < 500 && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func parseIndex(s string, n int) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}
