// internal/auth/login.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/campaigner/internal/browser"
	"github.com/law-makers/campaigner/internal/campaign"
)

// DefaultLoginURL is the campaign index, which redirects to the login form
const DefaultLoginURL = "https://www.rakuten-card.co.jp/e-navi/members/campaign/index.xhtml?l-id=enavi_all_glonavi_campaign"

// LoginForm locates the login form fields
type LoginForm struct {
	URL      string         `yaml:"url"`
	Username browser.Lookup `yaml:"username"`
	Password browser.Lookup `yaml:"password"`
	// Submit is the element whose form gets submitted
	Submit browser.Lookup `yaml:"submit"`
}

// DefaultLoginForm returns the card member login form
func DefaultLoginForm() LoginForm {
	return LoginForm{
		URL:      DefaultLoginURL,
		Username: browser.ID("u"),
		Password: browser.ID("p"),
		Submit:   browser.ID("p"),
	}
}

// FormLogin fills and submits the login form with a stored credential
type FormLogin struct {
	Credential Credential
	Form       LoginForm
	Delay      *campaign.Delay
	// PagePace is waited after opening the login page
	PagePace campaign.Pace
}

// Authenticate implements campaign.Authenticator
func (l *FormLogin) Authenticate(ctx context.Context, page browser.Page) error {
	if err := l.Credential.Validate(); err != nil {
		return fmt.Errorf("%w: %w", campaign.ErrAuthentication, err)
	}

	log.Info().Str("url", l.Form.URL).Msg("Logging in")

	if err := page.Navigate(ctx, l.Form.URL); err != nil {
		return fmt.Errorf("%w: failed to open login page: %w", campaign.ErrAuthentication, err)
	}
	if err := l.Delay.Wait(ctx, l.PagePace); err != nil {
		return err
	}

	fields := []struct {
		lookup browser.Lookup
		value  string
	}{
		{l.Form.Username, l.Credential.Username},
		{l.Form.Password, l.Credential.Password},
	}
	for _, f := range fields {
		if err := page.SendKeys(ctx, f.lookup, f.value); err != nil {
			return loginError(f.lookup, err)
		}
	}

	if err := page.Submit(ctx, l.Form.Submit); err != nil {
		return loginError(l.Form.Submit, err)
	}

	log.Info().Msg("Login form submitted")
	return nil
}

func loginError(l browser.Lookup, err error) error {
	if errors.Is(err, browser.ErrNoSuchElement) {
		return fmt.Errorf("%w: %w: %s", campaign.ErrAuthentication, campaign.ErrLoginFormNotFound, l)
	}
	return fmt.Errorf("%w: %s: %w", campaign.ErrAuthentication, l, err)
}
