package gui

import (
	"time"

	"threshold-studio/internal/config"
	"threshold-studio/internal/logger"
	"threshold-studio/internal/models"
	"threshold-studio/internal/services"
	"threshold-studio/internal/shutdown"
	"threshold-studio/internal/timing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/storage"
)

const (
	AppName      = "Threshold Studio"
	AppID        = "io.threshold-studio"
	WindowWidth  = 1100
	WindowHeight = 860
)

type Application struct {
	fyneApp    fyne.App
	window     fyne.Window
	view       *View
	controller *Controller
	processing *services.ProcessingService
	shutdown   *shutdown.Manager
	logger     logger.Logger
}

// NewApplication wires the services into a fyne window. decoder may be nil
// to use the default imaging decoder.
func NewApplication(cfg config.Config, decoder services.Decoder, log logger.Logger) *Application {
	fyneApp := app.NewWithID(AppID)
	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	timings := timing.NewTracker(log, 0)
	imageService := services.NewImageService(log, decoder, cfg.MaxUploadBytes, cfg.ExportQuality)
	processing := services.NewProcessingService(models.NewSession(), log, timings, cfg.Workers)

	view := NewView(window)
	controller := NewController(view, imageService, processing, log)
	controller.SetExportFormat(cfg.ExportFormat)
	view.SetController(controller)

	manager := shutdown.NewManager(log, 0)
	manager.Register("processing", processing)
	manager.Register("controller", controller)

	a := &Application{
		fyneApp:    fyneApp,
		window:     window,
		view:       view,
		controller: controller,
		processing: processing,
		shutdown:   manager,
		logger:     log,
	}
	a.setupMenus()

	log.Info("Application", "initialization complete", map[string]interface{}{
		"workers":  cfg.Workers,
		"decoder":  cfg.Decoder,
		"max_size": cfg.MaxUploadBytes,
	})
	return a
}

func (a *Application) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", a.controller.LoadImage),
		fyne.NewMenuItem("Export...", a.controller.ExportImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Upload Again", a.controller.UploadAgain),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Processing Stats", a.controller.ShowStats),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu))
}

// Run shows the window and blocks until it closes. A non-empty path is
// loaded on start.
func (a *Application) Run(path string) error {
	stop := a.shutdown.Listen()
	defer stop()

	go func() {
		<-a.shutdown.Done()
		fyne.Do(a.fyneApp.Quit)
	}()

	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "shutdown requested", nil)
		a.shutdown.Shutdown()
		a.window.Close()
	})

	go timing.Monitor(a.shutdown.Context(), a.logger, 30*time.Second, func() map[string]interface{} {
		stats := a.processing.GetProcessingStats()
		return map[string]interface{}{
			"histograms":       stats.Analyses.Count,
			"thresholds":       stats.Thresholds.Count,
			"avg_threshold_ms": stats.Thresholds.Average.Milliseconds(),
			"workers":          stats.Workers,
		}
	})

	a.view.Show()

	if path != "" {
		a.controller.LoadURI(storage.NewFileURI(path))
	}

	a.logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	a.shutdown.Shutdown()
	return nil
}
