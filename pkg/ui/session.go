package ui

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"

	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

const (
	errorAlert  = "#error-alert"
	noticeAlert = "#notice-alert"
	accountMenu = "#account-menu"

	// formDone matches what a page shows once a form submission was handled.
	formDone = noticeAlert + ", " + errorAlert
)

// Session is a logged-in browser with its page objects.
type Session struct {
	*Browser

	Organizations *OrganizationsPage
	JobTemplates  *JobTemplatesPage
	Jobs          *JobsPage
}

func NewSession(b *Browser) *Session {
	return &Session{
		Browser:       b,
		Organizations: &OrganizationsPage{b: b},
		JobTemplates:  &JobTemplatesPage{b: b},
		Jobs:          &JobsPage{b: b},
	}
}

// Login submits the login form. Rejected credentials return an UnauthorizedError.
func (s *Session) Login(ctx context.Context, login, password string) error {
	if err := s.Open(ctx, "/users/login"); err != nil {
		return err
	}
	err := s.Run(ctx,
		chromedp.WaitVisible("#login-form", chromedp.ByQuery),
		chromedp.SendKeys("#login_login", login, chromedp.ByQuery),
		chromedp.SendKeys("#login_password", password, chromedp.ByQuery),
		chromedp.Click("#login-submit", chromedp.ByQuery),
		chromedp.WaitVisible(accountMenu+", "+errorAlert, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("submitting login form: %w", err)
	}

	if msg, err := ErrorMessage(ctx, s.Browser); err != nil {
		return err
	} else if msg != "" {
		return srvErrors.NewUnauthorizedError(msg)
	}
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	if err := s.Open(ctx, "/users/logout"); err != nil {
		return err
	}
	return s.Run(ctx, chromedp.WaitVisible("#login-form", chromedp.ByQuery))
}

// User is the login shown in the account menu, empty when logged out.
func (s *Session) User(ctx context.Context) (string, error) {
	ok, err := s.Exists(ctx, accountMenu)
	if err != nil || !ok {
		return "", err
	}
	var user string
	if err := s.Run(ctx, chromedp.Text(accountMenu, &user, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return user, nil
}

// ErrorMessage returns the text of the error alert of the current page, or "".
func ErrorMessage(ctx context.Context, b *Browser) (string, error) {
	return alertText(ctx, b, errorAlert)
}

// NoticeMessage returns the text of the success alert of the current page, or "".
func NoticeMessage(ctx context.Context, b *Browser) (string, error) {
	return alertText(ctx, b, noticeAlert)
}

func alertText(ctx context.Context, b *Browser, selector string) (string, error) {
	texts, err := b.Texts(ctx, selector)
	if err != nil || len(texts) == 0 {
		return "", err
	}
	return texts[0], nil
}

// formError turns the error alert left by a form submission into a ValidationError.
func formError(ctx context.Context, b *Browser) error {
	msg, err := ErrorMessage(ctx, b)
	if err != nil {
		return err
	}
	if msg != "" {
		return srvErrors.NewValidationError(msg)
	}
	return nil
}
