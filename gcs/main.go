package main

import (
	"flag"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/openaero/quadx/pkg/config"
	"github.com/openaero/quadx/pkg/link"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.openaero.quadx")

	// Create main window
	window := application.NewWindow("QuadX Bench")
	window.Resize(fyne.NewSize(700, 500))
	window.CenterOnScreen()

	// Create application state
	state := &appState{
		cfg:     cfg,
		cfgPath: *configFlag,
		client:  nil,
		window:  window,
	}

	// Create toolbar
	toolbar := createToolbar(state)

	// Create console transcript in the center, trim controls below
	console := createConsole(state)
	trimPanel := createTrimPanel(state)

	content := container.NewBorder(
		toolbar,
		trimPanel,
		nil,
		nil,
		console,
	)

	window.SetContent(content)
	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	cfgPath    string
	client     *link.Client
	window     fyne.Window
	portEntry  *widget.Entry
	connectBtn *widget.Button

	// Trim controls, one value label and an up/down pair per rotor
	trimLabels [4]*widget.Label
	trimBtns   []*widget.Button

	// Console transcript, appended to on the main Fyne thread only
	consoleLog    *widget.Label
	consoleScroll *container.Scroll
	lines         []string
}

// createToolbar creates the toolbar with the Connect and Settings
// buttons and the serial port entry.
func createToolbar(state *appState) fyne.CanvasObject {
	// Connect button with icon
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	// Settings button with icon
	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	// Port entry, pre-filled from configuration
	portEntry := widget.NewEntry()
	portEntry.SetText(state.cfg.Serial.Port)
	state.portEntry = portEntry

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn), // left
		nil,       // right
		portEntry, // center
	)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.client != nil && state.client.IsConnected() {
		// Disconnect - the closed link channels end the consumer
		// goroutines
		state.client.Close()
		state.client = nil
		for _, btn := range state.trimBtns {
			btn.Disable()
		}
		fmt.Println("Disconnected from serial port")
		return
	}

	port := state.portEntry.Text
	if port == "" {
		port = state.cfg.Serial.Port
	}

	client := link.New(port, state.cfg.Serial.BaudRate, link.DefaultBufferSize)
	if err := client.Connect(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", port, err), state.window)
		return
	}
	state.client = client
	fmt.Printf("Connected to serial port: %s\n", port)

	// Enable trim buttons
	for _, btn := range state.trimBtns {
		btn.Enable()
	}

	// Consume the link channels until Close shuts them
	go consumeLines(state, client)
	go consumeTrims(state, client)
}
