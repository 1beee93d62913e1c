package model

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PresetStatus is the status override passed on the command line
type PresetStatus string

const (
	PresetAuto    PresetStatus = "auto"
	PresetRunning PresetStatus = "running"
	PresetAborted PresetStatus = "aborted"
	PresetFailed  PresetStatus = "failed"
)

// BuildStatusSuccess is the build-status code reported for a passing build
const BuildStatusSuccess = "0"

const (
	ColorRunning = "683D87"
	ColorAborted = "FCC500"
	ColorFailed  = "F82159"
	ColorSuccess = "33C389"

	EmojiRunning = "🛠"
	EmojiAborted = "✋"
	EmojiFailed  = "💥"
	EmojiSuccess = "🎉"
)

// Status describes how a build state is presented in a notification
type Status struct {
	Label string
	Color string // 6 hex digits, no leading '#'
	Emoji string
}

// DeriveStatus maps a preset status and the build-status code to a Status.
// Presets outside the named set, including auto, fall back to the
// build-status code.
func DeriveStatus(preset PresetStatus, buildStatus string) Status {
	passed := buildStatus == BuildStatusSuccess

	var status Status
	switch preset {
	case PresetRunning:
		status = Status{Color: ColorRunning, Emoji: EmojiRunning}
	case PresetAborted:
		status = Status{Color: ColorAborted, Emoji: EmojiAborted}
	case PresetFailed:
		status = Status{Color: ColorFailed, Emoji: EmojiFailed}
	default:
		if passed {
			status = Status{Color: ColorSuccess, Emoji: EmojiSuccess}
		} else {
			status = Status{Color: ColorFailed, Emoji: EmojiFailed}
		}
	}

	switch {
	case preset != PresetAuto:
		status.Label = Capitalize(string(preset))
	case passed:
		status.Label = "Success"
	default:
		status.Label = "Failed"
	}

	return status
}

// Succeeded reports whether the status is presented as a success
func (s Status) Succeeded() bool {
	return s.Color == ColorSuccess
}

// Capitalize lower-cases the text and upper-cases the first letter of every
// space separated word. Punctuation inside a word is not a word boundary.
func Capitalize(text string) string {
	words := strings.Split(cases.Lower(language.Und).String(text), " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
