package campaign

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/law-makers/campaigner/internal/browser"
)

func wrapHTML(body string) string {
	return "<!DOCTYPE html><html><head><title>t</title></head><body>" + body + "</body></html>"
}

// loadPage returns a snapshot already showing body at url
func loadPage(t *testing.T, url, body string) *browser.Snapshot {
	t.Helper()
	page := browser.NewSnapshot()
	page.AddPage(url, wrapHTML(body))
	require.NoError(t, page.Navigate(context.Background(), url))
	return page
}

// newExecutor builds an executor that never sleeps
func newExecutor(page browser.Page) *Executor {
	return &Executor{
		Page:       page,
		Classifier: NewClassifier(),
		Delay:      NewDelay(NewRand(1)),
	}
}

type authFunc func(ctx context.Context, page browser.Page) error

func (f authFunc) Authenticate(ctx context.Context, page browser.Page) error { return f(ctx, page) }

var noAuth = authFunc(func(ctx context.Context, page browser.Page) error { return nil })

func nonEmptyLines(buf *bytes.Buffer) []string {
	var lines []string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
