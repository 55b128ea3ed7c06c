package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<!DOCTYPE html>
<html>
<body>
	<form id="entryForm">
		<button id="entryForm:entry">エントリー</button>
	</form>
	<ul class="list">
		<li data-id="1"><span>one</span></li>
		<li data-id="2"><span>two</span></li>
	</ul>
	<a id="popup" href="/bonus" target="_blank">bonus</a>
</body>
</html>`

func newTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	s := NewSnapshot()
	s.AddPage("https://example.com/", testPage)
	require.NoError(t, s.Navigate(context.Background(), "https://example.com/"))
	return s
}

func TestLookup_Query(t *testing.T) {
	assert.Equal(t, `[id="entryForm:entry"]`, ID("entryForm:entry").Query())
	assert.Equal(t, "div.box a", CSS("div.box a").Query())
	assert.Equal(t, "id=main", ID("main").String())
}

func TestSnapshot_FindByIDWithColon(t *testing.T) {
	s := newTestSnapshot(t)

	el, err := s.Find(context.Background(), ID("entryForm:entry"))
	require.NoError(t, err)

	text, err := el.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "エントリー", text)
}

func TestSnapshot_FindMissing(t *testing.T) {
	s := newTestSnapshot(t)

	_, err := s.Find(context.Background(), CSS(".nope"))
	assert.True(t, errors.Is(err, ErrNoSuchElement))

	all, err := s.FindAll(context.Background(), CSS(".nope"))
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSnapshot_ScopedFindAndAttributes(t *testing.T) {
	s := newTestSnapshot(t)
	ctx := context.Background()

	items, err := s.FindAll(ctx, CSS("ul.list li"))
	require.NoError(t, err)
	require.Len(t, items, 2)

	id, ok, err := items[1].Attribute(ctx, "data-id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", id)

	_, ok, _ = items[1].Attribute(ctx, "data-missing")
	assert.False(t, ok)

	span, err := items[0].Find(ctx, CSS("span"))
	require.NoError(t, err)
	text, _ := span.Text(ctx)
	assert.Equal(t, "one", text)
}

func TestSnapshot_ClickRecordsAndOpensPopup(t *testing.T) {
	s := newTestSnapshot(t)
	ctx := context.Background()

	el, err := s.Find(ctx, ID("popup"))
	require.NoError(t, err)
	require.NoError(t, el.Click(ctx))

	clicks := s.Clicks()
	require.Len(t, clicks, 1)
	assert.Equal(t, "popup", clicks[0].ID)

	windows, _ := s.Windows(ctx)
	require.Len(t, windows, 2)

	require.NoError(t, s.SwitchWindow(ctx, windows[1]))
	require.NoError(t, s.CloseWindow(ctx, windows[1]))

	current, _ := s.CurrentWindow(ctx)
	assert.Equal(t, windows[0], current)
	assert.Error(t, s.CloseWindow(ctx, windows[0]))
}

func TestSnapshot_OnClickError(t *testing.T) {
	s := newTestSnapshot(t)
	s.OnClick = func(el *SnapshotElement) error { return errors.New("element not interactable") }

	el, err := s.Find(context.Background(), ID("entryForm:entry"))
	require.NoError(t, err)

	assert.EqualError(t, el.Click(context.Background()), "element not interactable")
	assert.Empty(t, s.Clicks())
}

func TestSnapshot_NavigateUnknown(t *testing.T) {
	s := NewSnapshot()
	assert.Error(t, s.Navigate(context.Background(), "https://example.com/missing"))

	_, err := s.Find(context.Background(), CSS("body"))
	assert.True(t, errors.Is(err, ErrNoSuchElement))
}
