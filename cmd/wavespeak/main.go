package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/wavespeak/go-wavespeak/internal/config"
	"github.com/wavespeak/go-wavespeak/internal/log"
	"github.com/wavespeak/go-wavespeak/pkg/actions"
	"github.com/wavespeak/go-wavespeak/pkg/dispatch"
	"github.com/wavespeak/go-wavespeak/pkg/display"
	"github.com/wavespeak/go-wavespeak/pkg/gesture"
	"github.com/wavespeak/go-wavespeak/pkg/pipeline"
	"github.com/wavespeak/go-wavespeak/pkg/pose"
	"github.com/wavespeak/go-wavespeak/pkg/speech"
	"github.com/wavespeak/go-wavespeak/pkg/stream"
	"github.com/wavespeak/go-wavespeak/pkg/translate"
	"github.com/wavespeak/go-wavespeak/pkg/web"
)

func main() {
	dataDir := flag.String("data", defaultDataDir(), "Directory for settings and gesture mappings")
	webPort := flag.String("port", config.WebPort(), "Control surface port")
	detectorURL := flag.String("detector", os.Getenv("POSE_DETECTOR_URL"), "Hand pose detector endpoint")
	recognizerURL := flag.String("recognizer", os.Getenv("SPEECH_GATEWAY_URL"), "Speech gateway listen endpoint")
	googleKey := flag.String("google-key", os.Getenv("GOOGLE_API_KEY"), "Google Cloud Translation API key")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	autostart := flag.Bool("autostart", false, "Start the pipeline immediately")
	flag.Parse()

	log.Init(*logLevel)
	logger := log.Component("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settingsPath := filepath.Join(*dataDir, "settings.json")
	settings, err := config.Load(settingsPath)
	if err != nil {
		logger.Warn("failed to load settings, using defaults", "error", err)
	}

	// Gesture mappings persist next to the settings.
	store, err := actions.NewJSONStore(filepath.Join(*dataDir, "gestures.json"))
	if err != nil {
		logger.Error("failed to open gesture store", "error", err)
		os.Exit(1)
	}
	registry := actions.NewRegistry(store)

	langs := translate.NewLanguagePair(settings.SourceLang, settings.TargetLang)

	transport, err := display.ParseTransport(settings.DisplayMethod)
	if err != nil {
		logger.Warn("unknown display method, falling back to websocket", "method", settings.DisplayMethod)
		transport = display.TransportWebSocket
	}
	disp := display.NewChannel(transport, displayAddress(settings, transport))

	translator := buildTranslator(ctx, *googleKey, logger)
	defer translator.Close()

	var recognizer speech.Recognizer
	if *recognizerURL != "" {
		recognizer, err = speech.NewRemote(*recognizerURL)
		if err != nil {
			logger.Error("failed to create speech recognizer", "error", err)
			os.Exit(1)
		}
		defer recognizer.Close()
	} else {
		logger.Warn("no speech gateway configured, translate gesture will report no input")
	}

	synth := speech.NewGoogleTTS()
	defer synth.Close()

	runner := actions.NewRunner(actions.Deps{
		Display:    disp,
		Translator: translator,
		Languages:  langs,
		Recognizer: recognizer,
		Synth:      synth,
		Player:     speech.NewNullPlayer(),
	})

	dispatcher := dispatch.New(registry, runner,
		dispatch.WithCooldown(settings.Cooldown()),
		dispatch.WithSingleFlight(),
	)

	source := stream.NewClient(settings.StreamURL())

	var detector pose.Detector
	if *detectorURL != "" {
		detector, err = pose.NewRemote(*detectorURL)
		if err != nil {
			logger.Error("failed to create pose detector", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("no pose detector configured, gestures will not be recognized")
		detector = &pose.Mock{}
	}
	defer detector.Close()

	classifier := gesture.NewRuleClassifier(gesture.DefaultConfig())

	server := web.NewServer(*webPort, web.Deps{
		Dispatcher: dispatcher,
		Registry:   registry,
		Runner:     runner,
		Display:    disp,
		Languages:  langs,
		ApplySettings: func(s config.Settings) {
			source.SetURL(s.StreamURL())
			dispatcher.SetCooldown(s.Cooldown())
			if t, err := display.ParseTransport(s.DisplayMethod); err == nil {
				disp.Configure(t, displayAddress(s, t))
			}
			if s.SourceLang != "" {
				langs.SetSource(s.SourceLang)
			}
			if s.TargetLang != "" {
				langs.SetTarget(s.TargetLang)
			}
		},
	}, settings, settingsPath)

	ctrl := pipeline.NewController(source, detector, classifier, dispatcher,
		pipeline.WithPreprocessor(pose.NewResizer(0, 0)),
		pipeline.WithPublisher(server.CameraHub()),
	)
	server.SetPipeline(ctrl)

	if *autostart {
		if err := ctrl.Start(ctx); err != nil {
			logger.Warn("autostart failed, pipeline left stopped", "error", err)
		}
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down")
		cancel()

		if err := ctrl.Stop(); err == nil {
			dispatcher.Wait()
		}
		if err := registry.Save(); err != nil {
			logger.Warn("failed to save gesture mappings", "error", err)
		}
		if err := server.Shutdown(); err != nil {
			logger.Warn("server shutdown failed", "error", err)
		}
	}()

	logger.Info("wavespeak starting",
		"port", *webPort,
		"camera", settings.StreamURL(),
		"display", settings.DisplayMethod,
	)
	if err := server.Start(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// buildTranslator assembles the provider chain: Google Cloud when a key
// is present, an echo mock otherwise so the app stays usable offline.
func buildTranslator(ctx context.Context, apiKey string, logger *slog.Logger) translate.Provider {
	if apiKey == "" {
		logger.Warn("no translation API key, using echo translator")
		return &translate.Mock{}
	}
	google, err := translate.NewGoogleCloud(ctx, apiKey)
	if err != nil {
		logger.Warn("failed to create google translator, using echo translator", "error", err)
		return &translate.Mock{}
	}
	return translate.NewChain(google)
}

func displayAddress(s config.Settings, t display.Transport) string {
	if t == display.TransportHTTP {
		return s.DisplayHTTPURL()
	}
	return s.DisplayWSURL()
}

func defaultDataDir() string {
	if dir := os.Getenv("WAVESPEAK_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".wavespeak")
}
