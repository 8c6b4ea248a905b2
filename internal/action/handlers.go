package action

import (
	"context"
	"strconv"

	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/dom"
	"github.com/10xr-agents/browse-automation-service/internal/upload"
)

// invoke maps one action-vocabulary tag onto its BrowserDriver call (§4.3).
// Driver errors are passed through as-is; capability implementations are
// expected to return *braerr.Error values already classified per §7.
// sec, when non-nil, is checked against upload_file's file_path before the
// driver call so a path outside the configured upload directory or denylist
// never reaches the browser extension.
func invoke(ctx context.Context, drv capability.BrowserDriver, tag Tag, p Params, sec *upload.Security) error {
	switch tag {
	case Navigate:
		if p.URL == nil {
			return braerr.New(braerr.InvalidParams, "navigate requires url")
		}
		return drv.Navigate(ctx, *p.URL, p.NewTab)
	case Click:
		return drv.Click(ctx, p.Index, p.X, p.Y, p.Button)
	case RightClick:
		return drv.RightClick(ctx, p.Index, p.X, p.Y)
	case DoubleClick:
		return drv.DoubleClick(ctx, p.Index, p.X, p.Y)
	case Hover:
		return drv.Hover(ctx, p.Index, p.X, p.Y)
	case Type:
		if p.Text == nil {
			return braerr.New(braerr.InvalidParams, "type requires text")
		}
		return drv.Type(ctx, p.Index, *p.Text, p.ClearFirst)
	case TypeSlowly:
		if p.Text == nil {
			return braerr.New(braerr.InvalidParams, "type_slowly requires text")
		}
		return drv.TypeSlowly(ctx, p.Index, *p.Text, p.DelayMs)
	case Clear:
		return drv.Clear(ctx, p.Index)
	case SelectAll:
		return drv.SelectAll(ctx, p.Index)
	case Copy:
		return drv.Copy(ctx, p.Index)
	case Paste:
		return drv.Paste(ctx, p.Index)
	case Cut:
		return drv.Cut(ctx, p.Index)
	case Scroll:
		return drv.Scroll(ctx, p.Direction, p.Amount)
	case AnimateScroll:
		return drv.AnimateScroll(ctx, p.Direction, p.Amount, p.DurationMs)
	case SendKeys, KeyboardShortcut:
		return drv.SendKeys(ctx, p.Index, p.Keys)
	case Wait:
		return drv.Wait(ctx, p.Seconds)
	case GoBack:
		return drv.GoBack(ctx)
	case GoForward:
		return drv.GoForward(ctx)
	case Refresh:
		return drv.Refresh(ctx)
	case DragDrop:
		return drv.DragDrop(ctx, p.StartIndex, p.StartX, p.StartY, p.EndIndex, p.EndX, p.EndY)
	case UploadFile:
		if p.FilePath == nil {
			return braerr.New(braerr.InvalidParams, "upload_file requires file_path")
		}
		if sec != nil {
			if _, err := sec.ValidateFilePath(*p.FilePath, false); err != nil {
				return braerr.Wrap(braerr.FileUploadFailed, err)
			}
		}
		err := drv.UploadFile(ctx, p.Index, *p.FilePath)
		if be, ok := err.(*braerr.Error); ok && be.Code == braerr.FileUploadFailed && sec != nil {
			// Driver couldn't set the file input programmatically (sandboxed
			// form, no DOM access) — fall back to OS-level dialog injection.
			return uploadOSAutomationFallback(*p.FilePath, p.BrowserPID, sec)
		}
		return err
	case SelectDropdown:
		if p.Index == nil {
			return braerr.New(braerr.InvalidParams, "select_dropdown requires index")
		}
		return drv.SelectDropdown(ctx, *p.Index, p.Value, p.Text, p.OptionIndex)
	case FillForm:
		fields := make([]dom.FormFieldValue, 0, len(p.Fields))
		for _, f := range p.Fields {
			fields = append(fields, dom.FormFieldValue{Index: f.Index, Value: f.Value})
		}
		results, err := drv.FillForm(ctx, fields)
		if err != nil {
			return err
		}
		for _, r := range results {
			if !r.Success {
				return braerr.New(braerr.SubmissionRejected, "one or more fields failed: "+r.Error)
			}
		}
		return nil
	case SelectMultiple, MultiSelect:
		if p.Index == nil {
			return braerr.New(braerr.InvalidParams, "select_multiple requires index")
		}
		values := p.Values
		if tag == MultiSelect && len(values) == 0 {
			values = intsToStrings(p.Indices)
		}
		return drv.SelectMultiple(ctx, *p.Index, values)
	case SubmitForm:
		return drv.SubmitForm(ctx, p.Index)
	case ResetForm:
		return drv.ResetForm(ctx, p.Index)
	case PlayVideo:
		return drv.PlayVideo(ctx, p.Index)
	case PauseVideo:
		return drv.PauseVideo(ctx, p.Index)
	case SeekVideo:
		if p.Time == nil {
			return braerr.New(braerr.InvalidParams, "seek_video requires time")
		}
		return drv.SeekVideo(ctx, p.Index, *p.Time)
	case AdjustVolume:
		if p.Volume == nil {
			return braerr.New(braerr.InvalidParams, "adjust_volume requires volume")
		}
		return drv.AdjustVolume(ctx, p.Index, *p.Volume)
	case ToggleFullscreen:
		return drv.ToggleFullscreen(ctx, p.Index)
	case ToggleMute:
		return drv.ToggleMute(ctx, p.Index)
	case TakeScreenshot:
		_, err := drv.TakeScreenshot(ctx)
		return err
	case HighlightElement:
		return drv.HighlightElement(ctx, p.Index)
	case HighlightRegion:
		if p.X == nil || p.Y == nil || p.Width == nil || p.Height == nil {
			return braerr.New(braerr.InvalidParams, "highlight_region requires x, y, width, height")
		}
		return drv.HighlightRegion(ctx, *p.X, *p.Y, *p.Width, *p.Height)
	case DrawOnPage:
		points := make([]dom.Point, 0, len(p.Points))
		for _, pt := range p.Points {
			points = append(points, dom.Point{X: pt.X, Y: pt.Y})
		}
		return drv.DrawOnPage(ctx, points)
	case ZoomIn:
		return drv.Zoom(ctx, "in")
	case ZoomOut:
		return drv.Zoom(ctx, "out")
	case ZoomReset:
		return drv.Zoom(ctx, "reset")
	case DownloadFile:
		_, err := drv.DownloadFile(ctx, p.URL, p.Index)
		return err
	case PresentationMode:
		return drv.PresentationMode(ctx, p.Enabled)
	case ShowPointer:
		if p.X == nil || p.Y == nil {
			return braerr.New(braerr.InvalidParams, "show_pointer requires x, y")
		}
		return drv.ShowPointer(ctx, *p.X, *p.Y)
	case FocusElement:
		if p.Index == nil {
			return braerr.New(braerr.InvalidParams, "focus_element requires index")
		}
		return drv.FocusElement(ctx, *p.Index)
	default:
		return braerr.New(braerr.UnknownActionType, "unknown action type: "+string(tag))
	}
}

func intsToStrings(ints []int) []string {
	out := make([]string, len(ints))
	for i, v := range ints {
		out[i] = strconv.Itoa(v)
	}
	return out
}

// uploadOSAutomationFallback drives the browser's native file-picker dialog
// at the OS level when drv.UploadFile can't set the file input directly.
func uploadOSAutomationFallback(filePath string, browserPID int, sec *upload.Security) error {
	resp := upload.HandleOSAutomation(upload.OSAutomationInjectRequest{
		FilePath:   filePath,
		BrowserPID: browserPID,
	}, sec)
	if !resp.Success {
		return braerr.New(braerr.FileUploadFailed, resp.Error)
	}
	return nil
}
