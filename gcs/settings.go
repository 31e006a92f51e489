package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/openaero/quadx/pkg/link"
)

// showSettingsDialog displays a settings dialog with tabs for the
// configuration sections the controller is flashed with.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createPowerTab(state),
		createCalibrationTab(state),
		createSelfTestTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(500, 400))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(500, 400))
	d.Show()
}

// saveConfig writes the configuration back to the file it came from.
func saveConfig(state *appState) {
	if err := state.cfg.Save(state.cfgPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	portOptions := []string{}
	if ports, err := link.Ports(); err == nil {
		portOptions = append(portOptions, ports...)
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	found := false
	for _, p := range portOptions {
		if p == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, func(string) {})
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				state.cfg.Serial.Port = portSelect.Selected
				state.portEntry.SetText(portSelect.Selected)
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Serial", form)
}

// createPowerTab creates the battery and temperature conversion tab.
func createPowerTab(state *appState) *container.TabItem {
	vrefEntry := widget.NewEntry()
	vrefEntry.SetText(strconv.FormatUint(uint64(state.cfg.Power.VRefCentivolts), 10))

	topEntry := widget.NewEntry()
	topEntry.SetText(strconv.FormatUint(uint64(state.cfg.Power.DividerTop), 10))

	bottomEntry := widget.NewEntry()
	bottomEntry.SetText(strconv.FormatUint(uint64(state.cfg.Power.DividerBottom), 10))

	tempOffsetEntry := widget.NewEntry()
	tempOffsetEntry.SetText(strconv.FormatUint(uint64(state.cfg.Power.TempOffset), 10))

	tempScaleEntry := widget.NewEntry()
	tempScaleEntry.SetText(strconv.FormatUint(uint64(state.cfg.Power.TempScale), 10))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "VRef (centivolts)", Widget: vrefEntry},
			{Text: "Divider Top", Widget: topEntry},
			{Text: "Divider Bottom", Widget: bottomEntry},
			{Text: "Temp Offset (counts)", Widget: tempOffsetEntry},
			{Text: "Temp Scale", Widget: tempScaleEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseUint(vrefEntry.Text, 10, 32); err == nil {
				state.cfg.Power.VRefCentivolts = uint32(v)
			}
			if v, err := strconv.ParseUint(topEntry.Text, 10, 32); err == nil {
				state.cfg.Power.DividerTop = uint32(v)
			}
			if v, err := strconv.ParseUint(bottomEntry.Text, 10, 32); err == nil && v > 0 {
				state.cfg.Power.DividerBottom = uint32(v)
			}
			if v, err := strconv.ParseUint(tempOffsetEntry.Text, 10, 16); err == nil {
				state.cfg.Power.TempOffset = uint16(v)
			}
			if v, err := strconv.ParseUint(tempScaleEntry.Text, 10, 32); err == nil {
				state.cfg.Power.TempScale = uint32(v)
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Power", form)
}

// createCalibrationTab creates the self-test band tab. Hex entries
// accept either base thanks to ParseUint's base 0.
func createCalibrationTab(state *appState) *container.TabItem {
	revisionEntry := widget.NewEntry()
	revisionEntry.SetText(fmt.Sprintf("%#04x", state.cfg.Calibration.CompassRevision))

	gyroMinEntry := widget.NewEntry()
	gyroMinEntry.SetText(fmt.Sprintf("%#x", state.cfg.Calibration.GyroMin))

	gyroMaxEntry := widget.NewEntry()
	gyroMaxEntry.SetText(fmt.Sprintf("%#x", state.cfg.Calibration.GyroMax))

	magMinEntry := widget.NewEntry()
	magMinEntry.SetText(strconv.FormatUint(uint64(state.cfg.Calibration.MagMin), 10))

	magMaxEntry := widget.NewEntry()
	magMaxEntry.SetText(strconv.FormatUint(uint64(state.cfg.Calibration.MagMax), 10))

	accelMinEntry := widget.NewEntry()
	accelMinEntry.SetText(fmt.Sprintf("%#x", state.cfg.Calibration.AccelMin))

	accelMaxEntry := widget.NewEntry()
	accelMaxEntry.SetText(fmt.Sprintf("%#x", state.cfg.Calibration.AccelMax))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Compass Revision", Widget: revisionEntry},
			{Text: "Gyro Min", Widget: gyroMinEntry},
			{Text: "Gyro Max", Widget: gyroMaxEntry},
			{Text: "Mag Min", Widget: magMinEntry},
			{Text: "Mag Max", Widget: magMaxEntry},
			{Text: "Accel Min", Widget: accelMinEntry},
			{Text: "Accel Max", Widget: accelMaxEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseUint(revisionEntry.Text, 0, 8); err == nil {
				state.cfg.Calibration.CompassRevision = uint8(v)
			}
			if v, err := strconv.ParseUint(gyroMinEntry.Text, 0, 16); err == nil {
				state.cfg.Calibration.GyroMin = uint16(v)
			}
			if v, err := strconv.ParseUint(gyroMaxEntry.Text, 0, 16); err == nil {
				state.cfg.Calibration.GyroMax = uint16(v)
			}
			if v, err := strconv.ParseUint(magMinEntry.Text, 0, 32); err == nil {
				state.cfg.Calibration.MagMin = uint32(v)
			}
			if v, err := strconv.ParseUint(magMaxEntry.Text, 0, 32); err == nil {
				state.cfg.Calibration.MagMax = uint32(v)
			}
			if v, err := strconv.ParseUint(accelMinEntry.Text, 0, 32); err == nil {
				state.cfg.Calibration.AccelMin = uint32(v)
			}
			if v, err := strconv.ParseUint(accelMaxEntry.Text, 0, 32); err == nil {
				state.cfg.Calibration.AccelMax = uint32(v)
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Calibration", form)
}

// createSelfTestTab creates the boot sequencing tab.
func createSelfTestTab(state *appState) *container.TabItem {
	bootDelayEntry := widget.NewEntry()
	bootDelayEntry.SetText(state.cfg.SelfTest.BootDelay.String())

	settleEntry := widget.NewEntry()
	settleEntry.SetText(state.cfg.SelfTest.AccelSettle.String())

	throttleEntry := widget.NewEntry()
	throttleEntry.SetText(strconv.FormatUint(uint64(state.cfg.SelfTest.ThrottleIdleMax), 10))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Boot Delay", Widget: bootDelayEntry},
			{Text: "Accel Settle", Widget: settleEntry},
			{Text: "Throttle Idle Max", Widget: throttleEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(bootDelayEntry.Text); err == nil && d >= 0 {
				state.cfg.SelfTest.BootDelay = d
			}
			if d, err := time.ParseDuration(settleEntry.Text); err == nil && d >= 0 {
				state.cfg.SelfTest.AccelSettle = d
			}
			if v, err := strconv.ParseUint(throttleEntry.Text, 10, 8); err == nil {
				state.cfg.SelfTest.ThrottleIdleMax = uint8(v)
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Self Test", form)
}
