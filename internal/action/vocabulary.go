// Package action implements the Action Dispatcher and the closed Action
// Vocabulary (spec.md §4.2, §4.3): translating an ActionEnvelope into one or
// more BrowserDriver calls, diffing DOM state around the call, and producing
// an ActionResult.
package action

// Tag is one member of the closed, exhaustive action vocabulary.
type Tag string

const (
	Navigate    Tag = "navigate"
	Click       Tag = "click"
	RightClick  Tag = "right_click"
	DoubleClick Tag = "double_click"
	Hover       Tag = "hover"

	Type        Tag = "type"
	TypeSlowly  Tag = "type_slowly"
	Clear       Tag = "clear"
	SelectAll   Tag = "select_all"
	Copy        Tag = "copy"
	Paste       Tag = "paste"
	Cut         Tag = "cut"

	Scroll        Tag = "scroll"
	AnimateScroll Tag = "animate_scroll"

	SendKeys         Tag = "send_keys"
	KeyboardShortcut Tag = "keyboard_shortcut"

	Wait Tag = "wait"

	GoBack    Tag = "go_back"
	GoForward Tag = "go_forward"
	Refresh   Tag = "refresh"

	DragDrop   Tag = "drag_drop"
	UploadFile Tag = "upload_file"

	SelectDropdown Tag = "select_dropdown"
	FillForm       Tag = "fill_form"
	SelectMultiple Tag = "select_multiple"
	MultiSelect    Tag = "multi_select"
	SubmitForm     Tag = "submit_form"
	ResetForm      Tag = "reset_form"

	PlayVideo        Tag = "play_video"
	PauseVideo       Tag = "pause_video"
	SeekVideo        Tag = "seek_video"
	AdjustVolume     Tag = "adjust_volume"
	ToggleFullscreen Tag = "toggle_fullscreen"
	ToggleMute       Tag = "toggle_mute"

	TakeScreenshot Tag = "take_screenshot"

	HighlightElement Tag = "highlight_element"
	HighlightRegion  Tag = "highlight_region"
	DrawOnPage       Tag = "draw_on_page"

	ZoomIn    Tag = "zoom_in"
	ZoomOut   Tag = "zoom_out"
	ZoomReset Tag = "zoom_reset"

	DownloadFile Tag = "download_file"

	PresentationMode Tag = "presentation_mode"
	ShowPointer      Tag = "show_pointer"
	FocusElement     Tag = "focus_element"
)

// nonIdempotent lists the tags marked (✗) in spec.md §4.3: handlers whose
// re-invocation is not safe to retry blindly (at-most-once observable
// mutation), as opposed to the rest of the vocabulary which is idempotent.
var nonIdempotent = map[Tag]bool{
	Click:          true,
	Type:           true,
	TypeSlowly:     true,
	DragDrop:       true,
	UploadFile:     true,
	SelectDropdown: true,
	FillForm:       true,
	SelectMultiple: true,
	SubmitForm:     true,
	ResetForm:      true,
	DownloadFile:   true,
}

// IsIdempotent reports whether tag is safe to retry without side effects
// beyond the first successful application.
func IsIdempotent(tag Tag) bool {
	return !nonIdempotent[tag]
}

// IndexBearing lists tags whose params reference a DOM element by index and
// therefore participate in the Dispatcher's stale-index remap step (§4.2
// step 3).
var indexBearing = map[Tag]bool{
	Click: true, RightClick: true, DoubleClick: true, Hover: true,
	Type: true, TypeSlowly: true, Clear: true, SelectAll: true,
	Copy: true, Paste: true, Cut: true, SendKeys: true,
	DragDrop: true, UploadFile: true, SelectDropdown: true,
	SelectMultiple: true, SubmitForm: true, ResetForm: true,
	PlayVideo: true, PauseVideo: true, SeekVideo: true, AdjustVolume: true,
	ToggleFullscreen: true, ToggleMute: true,
	HighlightElement: true, FocusElement: true,
}

// UsesIndex reports whether tag's params may carry an element index.
func UsesIndex(tag Tag) bool {
	return indexBearing[tag]
}

// Params is the typed-per-tag parameter record (§3.1 ActionEnvelope.params).
// Only the fields relevant to the envelope's tag are populated; all are
// optional so a single struct can decode any tag's JSON params object.
type Params struct {
	URL    *string `json:"url,omitempty"`
	NewTab bool    `json:"new_tab,omitempty"`

	Index *int     `json:"index,omitempty"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Button string  `json:"button,omitempty"`

	Text       *string `json:"text,omitempty"`
	ClearFirst bool    `json:"clear,omitempty"`
	DelayMs    int     `json:"delay,omitempty"`

	Direction string `json:"direction,omitempty"`
	Amount    int    `json:"amount,omitempty"`
	DurationMs int   `json:"duration,omitempty"`

	Keys []string `json:"keys,omitempty"`

	Seconds float64 `json:"seconds,omitempty"`

	StartIndex *int     `json:"start_index,omitempty"`
	StartX     *float64 `json:"start_x,omitempty"`
	StartY     *float64 `json:"start_y,omitempty"`
	EndIndex   *int     `json:"end_index,omitempty"`
	EndX       *float64 `json:"end_x,omitempty"`
	EndY       *float64 `json:"end_y,omitempty"`

	FilePath   *string `json:"file_path,omitempty"`
	BrowserPID int     `json:"browser_pid,omitempty"`

	Value       *string `json:"value,omitempty"`
	OptionIndex *int    `json:"option_index,omitempty"`
	Values      []string `json:"values,omitempty"`
	Indices     []int    `json:"indices,omitempty"`

	Fields []FieldValue `json:"fields,omitempty"`

	Time   *float64 `json:"time,omitempty"`
	Volume *float64 `json:"volume,omitempty"`

	Width, Height *float64 `json:"width,omitempty"`

	Points []PointParam `json:"points,omitempty"`

	Enabled bool `json:"enabled,omitempty"`
}

// FieldValue is one {index, value} pair for fill_form.
type FieldValue struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// PointParam is one {x, y} sample for draw_on_page.
type PointParam struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
