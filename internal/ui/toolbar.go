package ui

import (
	"image/color"
	"io"
	"log"

	"VRBoard/internal/command"
	"VRBoard/internal/export"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Controls are the callbacks the toolbar drives. Nil callbacks hide their control.
type Controls struct {
	OnTipColor func(color.NRGBA)
	OnWorkflow func(command.Kind)
	OnExport   func(w io.Writer, view export.View) error
}

// Palette is the tip color choice offered by the toolbar.
var Palette = []color.NRGBA{
	{A: 255},
	{R: 220, G: 40, B: 40, A: 255},
	{R: 40, G: 160, B: 60, A: 255},
	{R: 30, G: 90, B: 220, A: 255},
	{R: 240, G: 180, B: 0, A: 255},
}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.NRGBA
	OnTapped func(color.NRGBA)
}

func newColorSwatch(c color.NRGBA, tapped func(color.NRGBA)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// NewToolbar builds the preview's control strip.
func NewToolbar(preview *Preview, win fyne.Window, ctl Controls) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ViewRestoreIcon(), preview.ResetView),
		widget.NewToolbarAction(theme.GridIcon(), preview.ToggleGrid),
	)
	if ctl.OnExport != nil {
		tb.Append(widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			exportDialog(preview, win, ctl.OnExport)
		}))
	}

	views := widget.NewSelect([]string{"front", "top", "side"}, func(name string) {
		if v, ok := export.ParseView(name); ok {
			preview.SetView(v)
		}
	})
	views.SetSelected(preview.view.String())

	items := []fyne.CanvasObject{tb, widget.NewSeparator(), widget.NewLabel("View:"), views}

	if ctl.OnWorkflow != nil {
		workflows := widget.NewRadioGroup([]string{command.KindRayMenu.String(), command.KindGazeVoice.String()}, func(name string) {
			if k, ok := command.ParseKind(name); ok {
				ctl.OnWorkflow(k)
			}
		})
		workflows.Horizontal = true
		items = append(items, widget.NewSeparator(), widget.NewLabel("Workflow:"), workflows)
	}

	if ctl.OnTipColor != nil {
		swatches := container.NewHBox()
		for _, c := range Palette {
			swatches.Add(newColorSwatch(c, ctl.OnTipColor))
		}
		items = append(items, widget.NewSeparator(), widget.NewLabel("Tip:"), swatches)
	}

	items = append(items, layout.NewSpacer())
	return container.NewHBox(items...)
}

func exportDialog(preview *Preview, win fyne.Window, write func(io.Writer, export.View) error) {
	dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if w == nil {
			return
		}
		defer func() {
			if err := w.Close(); err != nil {
				log.Printf("[UI] Closing %s: %v", w.URI(), err)
			}
		}()
		if err := write(w, preview.view); err != nil {
			log.Printf("[UI] Export failed: %v", err)
			dialog.ShowError(err, win)
			return
		}
		log.Printf("[UI] Exported %s", w.URI())
	}, win)
}
