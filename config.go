package headlessterm

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Configuration enumerates the options spec §6 names, loaded from a TOML
// file (BurntSushi/toml, matching the config-loading pattern elsewhere in
// the pack) by the CLI host and applied to a Terminal/Keyboard pair at
// startup. Not every field maps onto this headless core — several belong
// to the window/font/GUI layer the core treats as an external collaborator
// (spec §1) — those are retained on the struct anyway so `cmd/term` has one
// place to parse the whole surface, and ignored by the core itself.
type Configuration struct {
	Rows            int    `toml:"rows"`
	Cols            int    `toml:"cols"`
	ScrollbackLines int    `toml:"scrollback_lines"`
	Term            string `toml:"term"`
	Answerback      string `toml:"answerback"`

	Font struct {
		Name   string `toml:"name"`
		Size   int    `toml:"size"`
		Weight int    `toml:"weight"`
		Bold   bool   `toml:"isbold"`
	} `toml:"font"`
	BoldAsColour  bool   `toml:"bold_as_colour"`
	BoldAsFont    bool   `toml:"bold_as_font"`
	FontSmoothing string `toml:"font_smoothing"`

	CharWidth string `toml:"charwidth"` // "numeric" or "wc" width policy
	Locale    string `toml:"locale"`
	Charset   string `toml:"charset"`

	WordChars    string `toml:"word_chars"`
	WordCharsExcl string `toml:"word_chars_excl"`

	ClickTargetMod   string `toml:"click_target_mod"`
	OpeningMod       string `toml:"opening_mod"`
	OpeningClicks    int    `toml:"opening_clicks"`
	MiddleClickAction string `toml:"middle_click_action"`
	RightClickAction string `toml:"right_click_action"`
	CopyOnSelect     bool   `toml:"copy_on_select"`
	ElasticMouse     bool   `toml:"elastic_mouse"`
	ClicksTargetApp  bool   `toml:"clicks_target_app"`
	ClicksPlaceCursor bool  `toml:"clicks_place_cursor"`

	ZoomShortcuts      bool `toml:"zoom_shortcuts"`
	ZoomFontWithWindow bool `toml:"zoom_font_with_window"`
	WindowShortcuts    bool `toml:"window_shortcuts"`
	SwitchShortcuts    bool `toml:"switch_shortcuts"`
	ClipShortcuts      bool `toml:"clip_shortcuts"`
	CtrlShiftShortcuts bool `toml:"ctrl_shift_shortcuts"`
	AltFnShortcuts     bool `toml:"alt_fn_shortcuts"`
	CtrlExchangeShift  bool `toml:"ctrl_exchange_shift"`
	EnableRemapCtrls   bool `toml:"enable_remap_ctrls"`

	FormatOtherKeys  int  `toml:"format_other_keys"`
	BackspaceSendsBS bool `toml:"backspace_sends_bs"`
	DeleteSendsDel   bool `toml:"delete_sends_del"`
	EscapeSendsFS    bool `toml:"escape_sends_fs"`
	AppEscapeKey     bool `toml:"app_escape_key"`

	SuppressSGR   []int `toml:"suppress_sgr"`
	SuppressDEC   []int `toml:"suppress_dec"`
	SuppressOSC   []int `toml:"suppress_osc"`
	SuppressWin   []int `toml:"suppress_win"`
	SuppressWheel bool  `toml:"suppress_wheel"`

	LigaturesSupport bool `toml:"ligatures_support"`
	Bidi             int  `toml:"bidi"` // 0/1/2

	Transparency       int  `toml:"transparency"`
	OpaqueWhenFocused  bool `toml:"opaque_when_focused"`
	Scrollbar          int  `toml:"scrollbar"` // -1/0/1

	BellType        string `toml:"bell_type"`
	BellFreq        int    `toml:"bell_freq"`
	BellLen         int    `toml:"bell_len"`
	BellInterval    int    `toml:"bell_interval"`
	BellFile        []string `toml:"bell_file"`
	BellFlashStyle  string `toml:"bell_flash_style"`

	Baud             int  `toml:"baud"`
	DisplaySpeedup   bool `toml:"display_speedup"`
	TekGlow          bool `toml:"tek_glow"`
	TekStrap         bool `toml:"tek_strap"`
	ProgressBar      bool `toml:"progress_bar"`
	HandleDPIChanged bool `toml:"handle_dpichanged"`
	ConptySupport    bool `toml:"conpty_support"`

	UserCommands string `toml:"user_commands"`
	KeyCommands  string `toml:"key_commands"`

	AllowSetSelection bool `toml:"allow_set_selection"`
	OldWrapModes       bool `toml:"old_wrapmodes"`
	OldModifyKeys       bool `toml:"old_modify_keys"`
	OldKeyfuncsKeypad   bool `toml:"old_keyfuncs_keypad"`
	OldXButtons         bool `toml:"old_xbuttons"`
	OldAltGrDetection   bool `toml:"old_altgr_detection"`
	OldLocale           bool `toml:"old_locale"`
}

// DefaultConfiguration returns the baseline configuration a freshly
// started terminal uses before any config file is loaded.
func DefaultConfiguration() *Configuration {
	cfg := &Configuration{
		Rows:             DEFAULT_ROWS,
		Cols:             DEFAULT_COLS,
		ScrollbackLines:  10000,
		Term:             "xterm-256color",
		DeleteSendsDel:   true,
		CopyOnSelect:     true,
		ClicksPlaceCursor: true,
		Baud:             0,
	}
	return cfg
}

// LoadConfiguration reads a TOML configuration file, overlaying it onto
// DefaultConfiguration.
func LoadConfiguration(path string) (*Configuration, error) {
	cfg := DefaultConfiguration()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load configuration %s: %w", path, err)
	}
	return cfg, nil
}

// SetOption applies a single "-o KEY=VALUE" CLI override (spec §6) to
// already-loaded configuration. Only a documented subset of scalar string/
// bool/int fields is addressable this way, matching the CLI's stated scope.
func (c *Configuration) SetOption(key, value string) error {
	switch key {
	case "term":
		c.Term = value
	case "rows":
		_, err := fmt.Sscanf(value, "%d", &c.Rows)
		return err
	case "cols":
		_, err := fmt.Sscanf(value, "%d", &c.Cols)
		return err
	case "scrollback_lines":
		_, err := fmt.Sscanf(value, "%d", &c.ScrollbackLines)
		return err
	case "bidi":
		_, err := fmt.Sscanf(value, "%d", &c.Bidi)
		return err
	default:
		return fmt.Errorf("unknown option %q", key)
	}
	return nil
}

// Options returns the Terminal options for the subset of Configuration this
// core acts on directly (size, and scrollback when ScrollbackLines > 0); the
// rest (font, window shortcuts, bell sound files, ...) belong to the GUI host.
func (c *Configuration) Options() []Option {
	opts := []Option{WithSize(c.Rows, c.Cols)}
	if c.ScrollbackLines > 0 {
		opts = append(opts, WithScrollback(NewMemoryScrollback(c.ScrollbackLines)))
	}
	return opts
}
