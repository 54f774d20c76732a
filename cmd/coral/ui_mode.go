package main

import (
	"fmt"
	"os"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func parseUIMode(value string) (uiMode, error) {
	switch uiMode(value) {
	case uiModeAuto, uiModeOn, uiModeOff:
		return uiMode(value), nil
	default:
		return uiModeAuto, fmt.Errorf("unknown ui mode %q (want auto|on|off)", value)
	}
}

// useProgressUI decides whether the interactive progress view runs: only
// on a terminal, and only when there is more than one input to watch.
func useProgressUI(mode uiMode, inputs int) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return inputs > 1 && isTerminal(os.Stdout)
	}
}

// useColor decides colorized output from the --color flag and the tty.
func useColor(value string) bool {
	switch value {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}
