// Package ui is the desktop preview of the scene.
package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// RunApp shows preview in a window and blocks until the window closes.
// It must be called from the main goroutine.
func RunApp(title, status string, preview *Preview, ctl Controls) {
	myApp := app.New()
	myWindow := myApp.NewWindow(title)
	myWindow.Resize(fyne.NewSize(1024, 768))

	toolbar := NewToolbar(preview, myWindow, ctl)
	statusBar := widget.NewLabel(status)

	content := container.NewBorder(toolbar, statusBar, nil, nil, preview)
	myWindow.SetContent(content)
	myWindow.ShowAndRun()
}
