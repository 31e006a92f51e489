package main

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/openaero/quadx/pkg/link"
)

// maxConsoleLines caps the transcript kept on screen.
const maxConsoleLines = 500

// createConsole creates the scrolling console transcript.
func createConsole(state *appState) fyne.CanvasObject {
	consoleLog := widget.NewLabel("")
	consoleLog.TextStyle = fyne.TextStyle{Monospace: true}
	state.consoleLog = consoleLog

	scroll := container.NewVScroll(consoleLog)
	state.consoleScroll = scroll
	return scroll
}

// appendConsole appends one line to the transcript and keeps the view
// pinned to the newest output. Must run on the main Fyne thread.
func appendConsole(state *appState, line string) {
	state.lines = append(state.lines, line)
	if len(state.lines) > maxConsoleLines {
		state.lines = state.lines[len(state.lines)-maxConsoleLines:]
	}
	state.consoleLog.SetText(strings.Join(state.lines, "\n"))
	state.consoleScroll.ScrollToBottom()
}

// consumeLines feeds controller console lines into the transcript.
// Ends when Close shuts the lines channel.
func consumeLines(state *appState, client *link.Client) {
	for line := range client.Lines() {
		text := line
		// Update the transcript on the main thread
		fyne.Do(func() {
			appendConsole(state, text)
		})
	}
}

// consumeTrims keeps the per-rotor trim labels in sync with the echo
// lines the controller sends after every trim command.
func consumeTrims(state *appState, client *link.Client) {
	for trims := range client.Trims() {
		t := trims
		fyne.Do(func() {
			for i, label := range state.trimLabels {
				label.SetText(strconv.Itoa(int(t[i])))
			}
		})
	}
}
