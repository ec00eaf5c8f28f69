package app

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/guard"
	"github.com/atinyakov/schemeseva/internal/validate"
)

const loginKey = "login"

// login asks for phone and password. Validation runs before any request and
// three failures within 30 seconds block further attempts for a while.
func (a *App) login(ctx context.Context) error {
	if ok, wait := a.loginGuard.Allow(loginKey); !ok {
		a.errorf("Too many failed attempts. Please try again in %d seconds.", guard.Seconds(wait))
		return nil
	}

	phone, err := a.prompt.Ask("Phone number (10 digits): ")
	if err != nil {
		return err
	}
	password, err := a.prompt.Ask("Password: ")
	if err != nil {
		return err
	}
	if err := validate.Credentials(phone, password); err != nil {
		a.errorf("%s", capitalize(err.Error()))
		return nil
	}

	tok, err := a.api.Login(ctx, phone, password)
	if err != nil {
		if secs, ok := retryAfter(err); ok {
			a.errorf("Too many failed attempts. Please try again in %d seconds.", secs)
			return nil
		}
		a.loginGuard.Fail(loginKey)
		a.log.Info("login failed", zap.Error(err))
		a.errorf("%s", msgLoginFailed)
		return nil
	}
	a.loginGuard.Reset(loginKey)
	return a.signedIn(tok.Token, tok.Phone)
}

// signup walks phone, OTP and password. The resend action stays disabled
// for 60 seconds after each code is sent.
func (a *App) signup(ctx context.Context) error {
	phone, err := a.prompt.Ask("Phone number (10 digits): ")
	if err != nil {
		return err
	}
	if err := validate.Phone(phone); err != nil {
		a.errorf("%s", capitalize(err.Error()))
		return nil
	}
	if err := a.sendOTP(ctx, phone); err != nil {
		return nil
	}

	for {
		code, err := a.prompt.Ask("Enter the 6-digit OTP (r to resend, blank to cancel): ")
		if err != nil {
			return err
		}
		switch {
		case code == "":
			return nil
		case strings.EqualFold(code, "r"):
			if !a.resend.Ready() {
				a.errorf("You can resend the OTP in %d seconds.", guard.Seconds(a.resend.Remaining()))
				continue
			}
			_ = a.sendOTP(ctx, phone)
			continue
		}
		if err := validate.OTP(code); err != nil {
			a.errorf("%s", capitalize(err.Error()))
			continue
		}
		tok, err := a.api.VerifyOTP(ctx, phone, code)
		if err != nil {
			if secs, ok := retryAfter(err); ok {
				a.errorf("Too many failed attempts. Please try again in %d seconds.", secs)
				continue
			}
			a.log.Info("otp verification failed", zap.Error(err))
			a.errorf("%s", capitalize(message(err, "Could not verify the OTP.")))
			continue
		}
		if err := a.signedIn(tok.Token, tok.Phone); err != nil {
			return err
		}
		break
	}
	return a.choosePassword(ctx)
}

func (a *App) sendOTP(ctx context.Context, phone string) error {
	if err := a.api.SendOTP(ctx, phone); err != nil {
		a.log.Info("send otp failed", zap.Error(err))
		a.errorf("%s", capitalize(message(err, "Could not send the OTP. Please try again.")))
		return err
	}
	a.resend.Start()
	a.println("OTP sent to " + phone + ".")
	return nil
}

func (a *App) choosePassword(ctx context.Context) error {
	for {
		password, err := a.prompt.Ask("Create a password (min 6 characters): ")
		if err != nil {
			return err
		}
		confirm, err := a.prompt.Ask("Confirm password: ")
		if err != nil {
			return err
		}
		if err := validate.NewPassword(password, confirm); err != nil {
			a.errorf("%s", capitalize(err.Error()))
			continue
		}
		if err := a.api.SetPassword(ctx, password, confirm); err != nil {
			a.log.Info("set password failed", zap.Error(err))
			a.errorf("%s", capitalize(message(err, "Could not save the password. Please try again.")))
			continue
		}
		a.println("Account created.")
		return nil
	}
}

func (a *App) signedIn(token, phone string) error {
	if err := a.session.SignIn(token, phone); err != nil {
		return err
	}
	a.println("Signed in as " + phone + ".")
	return nil
}

func (a *App) signOut(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Info("logout failed", zap.Error(err))
	}
	if err := a.session.SignOut(); err != nil {
		return err
	}
	a.println("Signed out.")
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
