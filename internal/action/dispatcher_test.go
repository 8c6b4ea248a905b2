package action

import (
	"context"
	"testing"

	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/dom"
)

// fakeDriver is a minimal capability.BrowserDriver for dispatcher tests:
// every method is a no-op success except the ones a test overrides.
type fakeDriver struct {
	snapshots    []*dom.Snapshot
	snapCalls    int
	navigateErr  error
	navigatedURL string
	clickErr     error
}

func (f *fakeDriver) nextSnapshot() *dom.Snapshot {
	if f.snapCalls >= len(f.snapshots) {
		return f.snapshots[len(f.snapshots)-1]
	}
	s := f.snapshots[f.snapCalls]
	f.snapCalls++
	return s
}

func (f *fakeDriver) Navigate(ctx context.Context, url string, newTab bool) error {
	f.navigatedURL = url
	return f.navigateErr
}
func (f *fakeDriver) Snapshot(ctx context.Context) (*dom.Snapshot, error) { return f.nextSnapshot(), nil }
func (f *fakeDriver) Click(ctx context.Context, index *int, x, y *float64, button string) error {
	return f.clickErr
}
func (f *fakeDriver) RightClick(ctx context.Context, index *int, x, y *float64) error  { return nil }
func (f *fakeDriver) DoubleClick(ctx context.Context, index *int, x, y *float64) error { return nil }
func (f *fakeDriver) Hover(ctx context.Context, index *int, x, y *float64) error       { return nil }
func (f *fakeDriver) Type(ctx context.Context, index *int, text string, clearFirst bool) error {
	return nil
}
func (f *fakeDriver) TypeSlowly(ctx context.Context, index *int, text string, delayMs int) error {
	return nil
}
func (f *fakeDriver) Clear(ctx context.Context, index *int) error     { return nil }
func (f *fakeDriver) SelectAll(ctx context.Context, index *int) error { return nil }
func (f *fakeDriver) Copy(ctx context.Context, index *int) error      { return nil }
func (f *fakeDriver) Paste(ctx context.Context, index *int) error     { return nil }
func (f *fakeDriver) Cut(ctx context.Context, index *int) error       { return nil }
func (f *fakeDriver) Scroll(ctx context.Context, direction string, amount int) error { return nil }
func (f *fakeDriver) AnimateScroll(ctx context.Context, direction string, amount int, durationMs int) error {
	return nil
}
func (f *fakeDriver) SendKeys(ctx context.Context, index *int, keys []string) error { return nil }
func (f *fakeDriver) Wait(ctx context.Context, seconds float64) error               { return nil }
func (f *fakeDriver) GoBack(ctx context.Context) error                              { return nil }
func (f *fakeDriver) GoForward(ctx context.Context) error                           { return nil }
func (f *fakeDriver) Refresh(ctx context.Context) error                             { return nil }
func (f *fakeDriver) DragDrop(ctx context.Context, startIndex *int, startX, startY *float64, endIndex *int, endX, endY *float64) error {
	return nil
}
func (f *fakeDriver) UploadFile(ctx context.Context, index *int, filePath string) error { return nil }
func (f *fakeDriver) SelectDropdown(ctx context.Context, index int, value, text *string, optionIndex *int) error {
	return nil
}
func (f *fakeDriver) FillForm(ctx context.Context, fields []dom.FormFieldValue) ([]dom.FormFieldResult, error) {
	results := make([]dom.FormFieldResult, len(fields))
	for i, fld := range fields {
		results[i] = dom.FormFieldResult{Index: fld.Index, Success: true}
	}
	return results, nil
}
func (f *fakeDriver) SelectMultiple(ctx context.Context, index int, values []string) error { return nil }
func (f *fakeDriver) SubmitForm(ctx context.Context, index *int) error                     { return nil }
func (f *fakeDriver) ResetForm(ctx context.Context, index *int) error                      { return nil }
func (f *fakeDriver) PlayVideo(ctx context.Context, index *int) error                      { return nil }
func (f *fakeDriver) PauseVideo(ctx context.Context, index *int) error                     { return nil }
func (f *fakeDriver) SeekVideo(ctx context.Context, index *int, timeSeconds float64) error { return nil }
func (f *fakeDriver) AdjustVolume(ctx context.Context, index *int, volume float64) error   { return nil }
func (f *fakeDriver) ToggleFullscreen(ctx context.Context, index *int) error               { return nil }
func (f *fakeDriver) ToggleMute(ctx context.Context, index *int) error                     { return nil }
func (f *fakeDriver) TakeScreenshot(ctx context.Context) (string, error)                   { return "ref", nil }
func (f *fakeDriver) HighlightElement(ctx context.Context, index *int) error               { return nil }
func (f *fakeDriver) HighlightRegion(ctx context.Context, x, y, w, h float64) error         { return nil }
func (f *fakeDriver) DrawOnPage(ctx context.Context, points []dom.Point) error              { return nil }
func (f *fakeDriver) Zoom(ctx context.Context, direction string) error                      { return nil }
func (f *fakeDriver) DownloadFile(ctx context.Context, url *string, index *int) (string, error) {
	return "ref", nil
}
func (f *fakeDriver) PresentationMode(ctx context.Context, enabled bool) error { return nil }
func (f *fakeDriver) ShowPointer(ctx context.Context, x, y float64) error     { return nil }
func (f *fakeDriver) FocusElement(ctx context.Context, index int) error      { return nil }
func (f *fakeDriver) Close(ctx context.Context) error                        { return nil }

var _ capability.BrowserDriver = (*fakeDriver)(nil)

func TestDispatch_ClickSuccess(t *testing.T) {
	t.Parallel()
	pre := dom.NewSnapshot("https://example.com", "Home", "complete", 0, 0, 0, 0, dom.Viewport{}, []dom.Element{
		{Index: 0, Tag: "button", Visible: true, Enabled: true, Attributes: map[string]string{"id": "go"}},
	}, nil)
	post := dom.NewSnapshot("https://example.com/next", "Next", "complete", 0, 0, 0, 0, dom.Viewport{}, []dom.Element{
		{Index: 0, Tag: "button", Visible: true, Enabled: true, Attributes: map[string]string{"id": "go"}},
	}, nil)

	drv := &fakeDriver{snapshots: []*dom.Snapshot{pre, post}}
	handle := NewHandle("room-1", drv, true)
	d := NewDispatcher(nil)

	idx := 0
	result := d.Dispatch(context.Background(), handle, Envelope{
		CommandID: "c1", RoomName: "room-1", ActionType: Click,
		Params: Params{Index: &idx}, TimeoutMs: 5000,
	})

	if !result.Success {
		t.Fatalf("expected success, got error %+v", result.Error)
	}
	if result.StateDiff == nil || !result.StateDiff.NavigationChanges.URLChanged {
		t.Fatalf("expected navigation change in diff, got %+v", result.StateDiff)
	}
}

func TestDispatch_StaleIndexFailsWhenUnresolvable(t *testing.T) {
	t.Parallel()
	pre := dom.NewSnapshot("https://example.com", "Home", "complete", 0, 0, 0, 0, dom.Viewport{}, []dom.Element{
		{Index: 0, Tag: "button", Visible: true, Enabled: true, Attributes: map[string]string{"id": "go"}},
	}, nil)

	drv := &fakeDriver{snapshots: []*dom.Snapshot{pre}}
	handle := NewHandle("room-1", drv, false)
	handle.SetLastSnapshot(pre)
	d := NewDispatcher(nil)

	idx := 9
	result := d.Dispatch(context.Background(), handle, Envelope{
		CommandID: "c1", RoomName: "room-1", ActionType: Click,
		Params: Params{Index: &idx}, TimeoutMs: 5000,
	})

	if result.Success {
		t.Fatal("expected failure for unresolvable index")
	}
	if result.Error == nil || result.Error.Code != braerr.ElementIndexStale {
		t.Fatalf("expected ElementIndexStale, got %+v", result.Error)
	}
}

func TestDispatch_SelectDropdownRequiresExactlyOneSelector(t *testing.T) {
	t.Parallel()
	pre := dom.NewSnapshot("https://example.com", "Home", "complete", 0, 0, 0, 0, dom.Viewport{}, []dom.Element{
		{Index: 0, Tag: "select", Visible: true, Enabled: true},
	}, nil)
	drv := &fakeDriver{snapshots: []*dom.Snapshot{pre, pre}}
	handle := NewHandle("room-1", drv, false)
	handle.SetLastSnapshot(pre)
	d := NewDispatcher(nil)

	idx := 0
	value := "opt1"
	text := "Option 1"
	result := d.Dispatch(context.Background(), handle, Envelope{
		CommandID: "c1", RoomName: "room-1", ActionType: SelectDropdown,
		Params: Params{Index: &idx, Value: &value, Text: &text}, TimeoutMs: 5000,
	})

	if result.Success {
		t.Fatal("expected failure when both value and text are set")
	}
	if result.Error == nil || result.Error.Code != braerr.InvalidParams {
		t.Fatalf("expected InvalidParams, got %+v", result.Error)
	}
}
