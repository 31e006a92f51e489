package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/openaero/quadx/pkg/link"
)

// createTrimPanel creates one column per rotor with the current trim
// value and an up/down button pair. Buttons stay disabled until a
// controller is connected.
func createTrimPanel(state *appState) fyne.CanvasObject {
	columns := make([]fyne.CanvasObject, 4)
	for rotor := range columns {
		columns[rotor] = createRotorColumn(state, rotor)
	}
	return container.NewGridWithColumns(4, columns...)
}

// createRotorColumn creates the trim controls for one rotor.
func createRotorColumn(state *appState, rotor int) fyne.CanvasObject {
	title := widget.NewLabel(fmt.Sprintf("Rotor %d", rotor+1))
	title.Alignment = fyne.TextAlignCenter

	value := widget.NewLabel("0")
	value.Alignment = fyne.TextAlignCenter
	value.TextStyle = fyne.TextStyle{Bold: true}
	state.trimLabels[rotor] = value

	upBtn := widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() {
		handleTrim(state, rotor, true)
	})
	upBtn.Disable()

	downBtn := widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() {
		handleTrim(state, rotor, false)
	})
	downBtn.Disable()

	state.trimBtns = append(state.trimBtns, upBtn, downBtn)

	return container.NewVBox(
		title,
		value,
		container.NewCenter(container.NewHBox(downBtn, upBtn)),
	)
}

// handleTrim sends the single-byte trim command for one rotor. The new
// value shows up when the controller echoes the trim table back.
func handleTrim(state *appState, rotor int, up bool) {
	if state.client == nil || !state.client.IsConnected() {
		return
	}

	cmd := link.TrimDown[rotor]
	if up {
		cmd = link.TrimUp[rotor]
	}

	if err := state.client.Send(cmd); err != nil {
		dialog.ShowError(fmt.Errorf("failed to send trim command: %w", err), state.window)
	}
}
