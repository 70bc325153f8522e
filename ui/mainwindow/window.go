// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"cardforge/internal/app"
	"cardforge/internal/card"
	"cardforge/internal/eyedropper"
	"cardforge/internal/project"
	"cardforge/internal/version"
	"cardforge/ui/canvas"
	"cardforge/ui/panels"
	"cardforge/ui/prefs"
)

const (
	appTitle       = "Card Forge"
	prefKeyLastDir = "lastDirectory"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	preview   *canvas.CardPreview
	overlay   *canvas.EyedropperOverlay
	panel     *panels.Panel
	statusBar *widget.Label

	watcher *app.FileWatcher

	mu           sync.Mutex
	watchedImage string
}

// New creates a new main window. Card fields are restored from p and
// written back to it as they change.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	watcher, err := app.NewFileWatcher(app.DefaultDebounce)
	if err != nil {
		log.Printf("Window: image watching disabled: %v", err)
	} else {
		mw.watcher = watcher
	}

	mw.restoreFields()
	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()
	mw.watchImage(state.Card().Image)
	// Fitting the restored image is not an edit
	state.SetModified(false)

	win.SetCloseIntercept(func() {
		mw.SavePreferences()
		mw.Close()
	})
	win.Resize(fyne.NewSize(1100, 760))
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	cfg := mw.state.Config

	mw.preview = canvas.NewCardPreview(mw.state)
	mw.preview.OnRequestImage(mw.onImportImage)
	mw.overlay = canvas.NewEyedropperOverlay(mw.preview, cfg.Loupe(), cfg.Eyedropper.Capture, cfg.Export.PixelRatio)
	if cfg.Eyedropper.Native {
		if sp := eyedropper.NewSystemPicker(); sp != nil {
			mw.overlay.Picker().SetNative(sp)
			log.Printf("Window: picking colours with %s", sp.Command)
		}
	}

	mw.panel = panels.NewPanel(mw.state, mw.preview, mw.overlay)
	mw.panel.SetWindow(mw.Window)
	mw.panel.OnImportImage(mw.onImportImage)
	mw.panel.OnExport(mw.onExport)

	mw.statusBar = widget.NewLabel("Ready")

	previewArea := container.NewScroll(container.NewStack(mw.preview, mw.overlay))

	split := container.NewHSplit(mw.panel.Container(), previewArea)
	split.SetOffset(0.36)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)
	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Card", mw.onNewProject),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Image...", mw.onImportImage),
		fyne.NewMenuItem("Reload Image", mw.onReloadImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PNG", mw.onExport),
	)

	var pickItems []*fyne.MenuItem
	for _, f := range card.ColorFields {
		f := f
		pickItems = append(pickItems, fyne.NewMenuItem(f.String(), func() { mw.onPickColor(f) }))
	}
	pick := fyne.NewMenuItem("Pick Colour", nil)
	pick.ChildMenu = fyne.NewMenu("", pickItems...)

	editMenu := fyne.NewMenu("Edit",
		pick,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Edit Image Position", mw.onToggleEditing),
		fyne.NewMenuItem("Reset Image Position", mw.preview.ResetImage),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, helpMenu))
}

func (mw *MainWindow) setupShortcuts() {
	add := func(key fyne.KeyName, fn func()) {
		mw.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault},
			func(fyne.Shortcut) { fn() })
	}
	add(fyne.KeyS, mw.onSaveProject)
	add(fyne.KeyO, mw.onOpenProject)
	add(fyne.KeyE, mw.onExport)
	add(fyne.KeyI, mw.onImportImage)
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventProjectLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.updateStatus("Project loaded: " + path)
		}
	})

	mw.state.On(app.EventProjectSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.updateStatus("Project saved: " + path)
		}
	})

	mw.state.On(app.EventCardChanged, func(data interface{}) {
		if c, ok := data.(*card.Card); ok {
			mw.storeFields(c)
			mw.watchImage(c.Image)
		}
	})

	mw.state.On(app.EventTransformChanged, func(interface{}) {
		mw.storeFields(mw.state.Card())
	})

	mw.state.On(app.EventImageLoaded, func(interface{}) {
		mw.updateStatus("Image loaded: " + mw.state.Card().Image)
	})

	mw.state.On(app.EventEditingChanged, func(data interface{}) {
		if editing, ok := data.(bool); ok && editing {
			mw.updateStatus("Editing image: drag to move, scroll to zoom, double-click to finish")
		} else {
			mw.updateStatus("Ready")
		}
	})

	mw.state.On(app.EventColorPicked, func(data interface{}) {
		if pick, ok := data.(app.ColorPick); ok {
			mw.updateStatus(fmt.Sprintf("%s set to %s", pick.Field, strings.ToUpper(string(pick.Color))))
		}
	})

	mw.state.On(app.EventExported, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Exported " + path)
		}
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		modified, _ := data.(bool)
		title := strings.TrimSuffix(mw.Title(), " *")
		if modified {
			title += " *"
		}
		mw.SetTitle(title)
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// Status returns the status bar text.
func (mw *MainWindow) Status() string {
	return mw.statusBar.Text
}

// restoreFields loads the card saved by the last session, if any.
func (mw *MainWindow) restoreFields() {
	if mw.prefs == nil || !mw.prefs.Has(card.KeyName) {
		return
	}
	mw.state.SetCard(card.LoadFields(mw.prefs))
	mw.state.SetModified(false)
}

func (mw *MainWindow) storeFields(c *card.Card) {
	if mw.prefs != nil {
		card.SaveFields(mw.prefs, c)
	}
}

// SavePreferences writes the current card fields to disk.
func (mw *MainWindow) SavePreferences() {
	if mw.prefs == nil {
		return
	}
	mw.storeFields(mw.state.Card())
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Window: failed to save preferences: %v", err)
	}
}

// watchImage follows the character image on disk so edits made in another
// program show up in the preview.
func (mw *MainWindow) watchImage(path string) {
	if mw.watcher == nil {
		return
	}
	resolved := ""
	if path != "" {
		resolved = mw.state.Library.Resolve(path)
	}

	mw.mu.Lock()
	old := mw.watchedImage
	mw.watchedImage = resolved
	mw.mu.Unlock()
	if old == resolved {
		return
	}

	if old != "" {
		mw.watcher.Unwatch(old)
	}
	if resolved == "" {
		return
	}
	if err := mw.watcher.Watch(resolved, mw.onReloadImage); err != nil {
		log.Printf("Window: cannot watch %s: %v", resolved, err)
	}
}

// Close ends any eyedropper session, cancels a pending image click, stops the
// file watcher and closes the window.
func (mw *MainWindow) Close() {
	if mw.overlay != nil {
		mw.overlay.Picker().Close()
	}
	if mw.preview != nil {
		mw.preview.Dispose()
	}
	if mw.watcher != nil {
		mw.watcher.Close()
	}
	mw.Window.Close()
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	dir := filepath.Dir(filePath)
	mw.app.Preferences().SetString(prefKeyLastDir, dir)
}

// Menu action handlers

func (mw *MainWindow) onNewProject() {
	mw.state.NewProject()
	mw.SetTitle(appTitle + " - New Card")
	mw.updateStatus("New card")
}

func (mw *MainWindow) onOpenProject() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.LoadProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{project.Extension}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onImportImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if _, err := mw.state.SetImage(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onReloadImage() {
	if err := mw.state.ReloadImage(); err != nil {
		log.Printf("Window: reload failed: %v", err)
		mw.updateStatus("Image reload failed")
	}
}

func (mw *MainWindow) onSaveProject() {
	if mw.state.ProjectPath == "" {
		mw.onSaveProjectAs()
		return
	}
	if err := mw.state.SaveProject(mw.state.ProjectPath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != project.Extension {
			path += project.Extension
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName(strings.TrimSuffix(card.FileName(mw.state.Card().Name), ".png") + project.Extension)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// ExportPNG renders the card into the configured export directory and
// returns the written file.
func (mw *MainWindow) ExportPNG() (string, error) {
	root := mw.preview.CardRoot()
	if root == nil {
		return "", fmt.Errorf("failed to export: card not built")
	}
	cfg := mw.state.Config.Export
	path, err := card.Export(context.Background(), mw.preview.Snapshotter(), root,
		mw.state.Card().Name, cfg.Directory, cfg.PixelRatio)
	if err != nil {
		return "", err
	}
	log.Printf("Window: exported %s", path)
	mw.state.Emit(app.EventExported, path)
	return path, nil
}

func (mw *MainWindow) onExport() {
	if _, err := mw.ExportPNG(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onPickColor(field card.ColorField) {
	err := mw.overlay.Begin(func(res eyedropper.Result) {
		if res.OK {
			mw.state.PickColor(field, res.Color)
		} else {
			mw.updateStatus("Colour pick cancelled")
		}
	})
	if err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onToggleEditing() {
	mw.preview.Viewport().ToggleEditing()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\n\nDesign character cards and export them as PNG.",
			appTitle, version.String()),
		mw.Window)
}
