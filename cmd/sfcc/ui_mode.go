package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of build --ui. It implements pflag.Value so a bad
// value is rejected while flags are parsed.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func (m *uiMode) String() string { return string(*m) }

func (m *uiMode) Type() string { return "auto|on|off" }

func (m *uiMode) Set(value string) error {
	switch v := uiMode(strings.ToLower(strings.TrimSpace(value))); v {
	case "":
		*m = uiModeAuto
	case uiModeAuto, uiModeOn, uiModeOff:
		*m = v
	default:
		return fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return nil
}

// progressStyle is how build reports per-file progress.
type progressStyle int

const (
	progressNone progressStyle = iota
	progressPlain
	progressTUI
)

// pickProgress resolves the mode against the terminal. Quiet wins over
// everything; auto picks the TUI only on a real, capable terminal.
func pickProgress(mode uiMode, quiet bool) progressStyle {
	switch {
	case quiet:
		return progressNone
	case mode == uiModeOff:
		return progressPlain
	case mode == uiModeOn:
		return progressTUI
	case isTerminal(os.Stdout) && os.Getenv("TERM") != "dumb":
		return progressTUI
	default:
		return progressPlain
	}
}
