package config

const (
	defaultBackendBaseURL        = "http://127.0.0.1:8000"
	defaultBackendRequestTimeout = 30
	defaultStateDir              = "~/.local/share/dfstudio/state"
	defaultLogDir                = "~/.local/share/dfstudio/logs"
	defaultPreviewDir            = "~/.local/share/dfstudio/previews"
	defaultStatusPollInterval    = 1
	defaultBannerSeconds         = 3
	defaultNotifyRequestTimeout  = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultPreviewWidth          = 500
	defaultResolutionKey         = "default"
)

// Default returns a Config populated with repository defaults.
//
// The resolution table ships with the two deployments currently in use:
// standard landscape projects at 832x480 and the portrait "Video2" project at
// 480x832. Projects with other native dimensions need an explicit entry.
func Default() Config {
	return Config{
		Backend: Backend{
			BaseURL:        defaultBackendBaseURL,
			RequestTimeout: defaultBackendRequestTimeout,
		},
		Paths: Paths{
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
			PreviewDir: defaultPreviewDir,
		},
		Workflow: Workflow{
			StatusPollInterval: defaultStatusPollInterval,
			BannerSeconds:      defaultBannerSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Queue:          true,
			Completion:     true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Editor: Editor{
			PreviewWidth: defaultPreviewWidth,
		},
		Resolutions: map[string]Resolution{
			defaultResolutionKey: {Width: 832, Height: 480},
			"Video2":             {Width: 480, Height: 832},
		},
	}
}
