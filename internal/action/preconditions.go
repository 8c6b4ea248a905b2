package action

import (
	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/dom"
)

// validatePreconditions enforces the per-action-type contracts named
// explicitly in spec.md §4.2/§4.3. Tags with no named precondition pass
// through unchecked; the driver itself rejects anything it cannot perform.
func validatePreconditions(tag Tag, p Params, snap *dom.Snapshot) *braerr.Error {
	switch tag {
	case Click, RightClick, DoubleClick:
		if p.Index != nil && snap != nil {
			el, ok := snap.ElementAt(*p.Index)
			if !ok {
				return braerr.New(braerr.ElementNotFound, "element index not present in current snapshot")
			}
			if !el.Visible {
				return braerr.New(braerr.ElementNotFound, "element is not visible")
			}
			if !el.Enabled {
				return braerr.New(braerr.ElementNotFound, "element is not enabled")
			}
		}
	case Type, TypeSlowly:
		if p.Index != nil && snap != nil {
			el, ok := snap.ElementAt(*p.Index)
			if !ok {
				return braerr.New(braerr.ElementNotFound, "element index not present in current snapshot")
			}
			tag := el.Tag
			if tag != "input" && tag != "textarea" && el.Attr("contenteditable") == "" {
				return braerr.New(braerr.InvalidParams, "type target must be an input, textarea, or contenteditable element")
			}
			if el.Attr("readonly") != "" {
				return braerr.New(braerr.InvalidParams, "type target is readonly")
			}
		}
	case SelectDropdown:
		set := 0
		if p.Value != nil {
			set++
		}
		if p.Text != nil {
			set++
		}
		if p.OptionIndex != nil {
			set++
		}
		if set != 1 {
			return braerr.New(braerr.InvalidParams, "select_dropdown requires exactly one of {value, text, option_index}")
		}
	case DragDrop:
		startOK := p.StartIndex != nil || (p.StartX != nil && p.StartY != nil)
		endOK := p.EndIndex != nil || (p.EndX != nil && p.EndY != nil)
		if !startOK || !endOK {
			return braerr.New(braerr.InvalidParams, "drag_drop requires both start and end points resolvable")
		}
	case UploadFile:
		if p.FilePath == nil || *p.FilePath == "" {
			return braerr.New(braerr.InvalidParams, "upload_file requires file_path")
		}
		if p.Index != nil && snap != nil {
			el, ok := snap.ElementAt(*p.Index)
			if !ok {
				return braerr.New(braerr.ElementNotFound, "element index not present in current snapshot")
			}
			if el.Tag != "input" || el.Attr("type") != "file" {
				return braerr.New(braerr.InvalidParams, "upload_file target must be a file input element")
			}
		}
	case DownloadFile:
		set := 0
		if p.URL != nil {
			set++
		}
		if p.Index != nil {
			set++
		}
		if set != 1 {
			return braerr.New(braerr.InvalidParams, "download_file requires exactly one of {url, index}")
		}
	case AdjustVolume:
		if p.Volume != nil && (*p.Volume < 0 || *p.Volume > 1) {
			return braerr.New(braerr.InvalidParams, "volume must be within [0,1]")
		}
	}
	return nil
}
