// Package main provides the entry point for the Card Forge editor.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"cardforge/internal/app"
	"cardforge/internal/version"
	"cardforge/ui/mainwindow"
	"cardforge/ui/prefs"
)

const appID = "io.cardforge.editor"

func main() {
	configFlag := flag.String("config", "", "path to config.toml")
	versionFlag := flag.Bool("version", false, "print the version and exit")
	hotReload := flag.Bool("hot-reload", false, "offer a restart when the binary is rebuilt")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: cardforge [flags] [project.cardproj]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *versionFlag {
		fmt.Println("cardforge", version.String())
		return
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Card Forge v%s", version.Version)

	cfgPath := app.ConfigPath(*configFlag)
	cfg, err := app.LoadConfig(cfgPath)
	if err != nil {
		log.Printf("Config: %v (using defaults)", err)
	} else {
		log.Printf("Config: %s", cfgPath)
	}

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.CardForgeTheme{Accent: cfg.Accent})

	appState := app.NewState(cfg)
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs)

	// Handle command line arguments
	if flag.NArg() > 0 {
		projectPath := flag.Arg(0)
		if err := appState.LoadProject(projectPath); err != nil {
			log.Printf("Failed to load project %s: %v", projectPath, err)
			dialog.ShowError(err, win.Window)
		}
	}

	if *hotReload {
		setupHotReload(win)
	}

	win.ShowAndRun()
	win.SavePreferences()
}

// setupHotReload configures automatic restart detection when the binary is recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader, err := app.NewHotReloader()
	if err != nil {
		log.Printf("Hot reload: %v", err)
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.ExecPath(), reloader.StartupTime().Format("15:04:05"))

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					return
				}
				log.Println("Hot reload: saving preferences before restart...")
				win.SavePreferences()
				log.Println("Hot reload: restarting...")
				if err := reloader.Restart(); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			}, win.Window)
	})

	if err := reloader.Start(); err != nil {
		log.Printf("Hot reload: %v", err)
	}
}
