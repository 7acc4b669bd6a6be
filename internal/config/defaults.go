package config

const (
	defaultConfigPath          = "~/.config/whisperwiz/config.toml"
	projectConfigName          = "whisperwiz.toml"
	defaultOutputDir           = "~/Documents/Transcripts"
	defaultModelDir            = "~/.local/share/whisperwiz/models"
	defaultLogDir              = "~/.local/share/whisperwiz/logs"
	defaultHistoryFile         = "history.db"
	defaultBackend             = BackendWhisper
	defaultLanguage            = "auto"
	defaultDevice              = "cpu"
	defaultOutputMode          = OutputModeText
	defaultFFmpegBinary        = "ffmpeg"
	defaultFailurePolicy       = FailurePolicyAbort
	defaultHeartbeatIntervalMS = 200
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Recognized enum values.
const (
	BackendWhisper  = "whisper"
	BackendWhisperX = "whisperx"

	OutputModeText = "text"
	OutputModeCSV  = "csv"

	FailurePolicyAbort    = "abort"
	FailurePolicyContinue = "continue"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ModelDir: defaultModelDir,
			LogDir:   defaultLogDir,
		},
		Transcription: Transcription{
			Backend:    defaultBackend,
			Language:   defaultLanguage,
			Device:     defaultDevice,
			OutputMode: defaultOutputMode,
		},
		FFmpeg: FFmpeg{
			Binary:     defaultFFmpegBinary,
			HideWindow: true,
		},
		Pipeline: Pipeline{
			FailurePolicy:       defaultFailurePolicy,
			HeartbeatIntervalMS: defaultHeartbeatIntervalMS,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
