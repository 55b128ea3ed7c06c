package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/campaigner/internal/browser"
	"github.com/law-makers/campaigner/internal/campaign"
)

const loginURL = "https://login.example/"

func newLogin() *FormLogin {
	form := DefaultLoginForm()
	form.URL = loginURL
	return &FormLogin{
		Credential: Credential{Username: "member", Password: "secret"},
		Form:       form,
		Delay:      campaign.NewDelay(campaign.NewRand(1)),
	}
}

func TestFormLogin_FillsAndSubmits(t *testing.T) {
	page := browser.NewSnapshot()
	page.AddPage(loginURL, `<html><body><form><input id="u"><input id="p" type="password"></form></body></html>`)

	require.NoError(t, newLogin().Authenticate(context.Background(), page))

	assert.Equal(t, "member", page.Typed(browser.ID("u")))
	assert.Equal(t, "secret", page.Typed(browser.ID("p")))
	assert.Equal(t, []string{"id=p"}, page.Submitted())
}

func TestFormLogin_MissingForm(t *testing.T) {
	page := browser.NewSnapshot()
	page.AddPage(loginURL, `<html><body><p>maintenance</p></body></html>`)

	err := newLogin().Authenticate(context.Background(), page)
	assert.ErrorIs(t, err, campaign.ErrAuthentication)
	assert.ErrorIs(t, err, campaign.ErrLoginFormNotFound)
	assert.Empty(t, page.Submitted())
}

func TestFormLogin_EmptyCredential(t *testing.T) {
	l := newLogin()
	l.Credential = Credential{}

	err := l.Authenticate(context.Background(), browser.NewSnapshot())
	assert.ErrorIs(t, err, campaign.ErrAuthentication)
}
