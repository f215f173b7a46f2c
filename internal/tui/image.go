package tui

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// ImageProtocol is the inline graphics protocol a terminal speaks.
type ImageProtocol int

const (
	ProtocolNone ImageProtocol = iota
	ProtocolKitty
	ProtocolITerm2
)

// DetectImageProtocol inspects TERM and TERM_PROGRAM.
func DetectImageProtocol() ImageProtocol {
	return detectImageProtocol(os.Getenv("TERM"), os.Getenv("TERM_PROGRAM"))
}

func detectImageProtocol(term, termProgram string) ImageProtocol {
	switch {
	case strings.Contains(term, "kitty"), termProgram == "ghostty":
		return ProtocolKitty
	case termProgram == "iTerm.app", termProgram == "WezTerm":
		return ProtocolITerm2
	}
	return ProtocolNone
}

// RenderPreview returns the escape sequence that draws the PNG at path in
// a box of cols x rows terminal cells, or "" if it cannot be shown.
func RenderPreview(path string, cols, rows int, protocol ImageProtocol) string {
	if protocol == ProtocolNone {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return encodeImage(data, cols, rows, protocol)
}

func encodeImage(data []byte, cols, rows int, protocol ImageProtocol) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	switch protocol {
	case ProtocolKitty:
		// a=T transmit and display, f=100 PNG, c/r cell box.
		return fmt.Sprintf("\x1b_Ga=T,f=100,c=%d,r=%d;%s\x1b\\", cols, rows, encoded)
	case ProtocolITerm2:
		return fmt.Sprintf("\x1b]1337;File=inline=1;width=%d;height=%d;preserveAspectRatio=1:%s\x07", cols, rows, encoded)
	}
	return ""
}
