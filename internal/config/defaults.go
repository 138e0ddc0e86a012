package config

const (
	defaultStateDir           = "~/.local/share/lecturebot"
	defaultLogDir             = "~/.local/share/lecturebot/logs"
	defaultPollTimeout        = 60
	defaultNextcloudTimeout   = 60
	defaultRootFolder         = "Лекции"
	defaultArchiveFolder      = "Конспекты"
	defaultLLMBaseURL         = "https://api.vsegpt.ru/v1"
	defaultChatModel          = "openai/gpt-5-chat"
	defaultSTTModel           = "stt-openai/gpt-4o-transcribe"
	defaultLLMTitle           = "MIREA Bot EOSO-01-25"
	defaultLLMLanguage        = "ru"
	defaultLLMTimeout         = 300
	defaultLLMMinInterval     = 2.0
	defaultLLMRetryAttempts   = 3
	defaultLLMMaxTokens       = 4000
	defaultLLMTemperature     = 0.3
	defaultTempDir            = "/tmp/lecturebot"
	defaultMaxAudioBytes      = 100 * 1024 * 1024
	defaultMaxDocBytes        = 50 * 1024 * 1024
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultAudioBitrate       = "192k"
	defaultFontPath           = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
	defaultFontBoldPath       = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
	defaultFontMonoPath       = "/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf"
	defaultLibraryTitle       = "БИБЛИОТЕКА ЛЕКЦИЙ ЭОСО-01-25"
	defaultTimezone           = "Europe/Moscow"
	defaultSessionIdleMinutes = 180
	defaultLogFormat          = "auto"
	defaultLogLevel           = "info"
	defaultLogMaxSizeMB       = 10
	defaultLogMaxBackups      = 5
	defaultLogMaxAgeDays      = 30
)

var defaultAudioExt = []string{"mp3", "m4a", "wav", "ogg"}

var defaultDisciplines = []string{
	"Введение в профессиональную деятельность",
	"Иностранный язык",
	"Информатика",
	"История России",
	"Линейная алгебра и аналитическая геометрия",
	"Математический анализ",
	"Начертательная геометрия, инженерная и компьютерная графика",
	"Основы российской государственности",
	"Русский язык и культура речи",
	"Современные оптические и оптико-электронные приборы и лазерные технологии",
	"Физика",
	"Физическая культура и спорт",
	"Химия",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Telegram: Telegram{
			PollTimeoutSeconds: defaultPollTimeout,
		},
		Nextcloud: Nextcloud{
			RootFolder:     defaultRootFolder,
			ArchiveFolder:  defaultArchiveFolder,
			TimeoutSeconds: defaultNextcloudTimeout,
		},
		LLM: LLM{
			BaseURL:            defaultLLMBaseURL,
			ChatModel:          defaultChatModel,
			STTModel:           defaultSTTModel,
			Title:              defaultLLMTitle,
			Language:           defaultLLMLanguage,
			TimeoutSeconds:     defaultLLMTimeout,
			MinIntervalSeconds: defaultLLMMinInterval,
			RetryAttempts:      defaultLLMRetryAttempts,
			MaxTokens:          defaultLLMMaxTokens,
			Temperature:        defaultLLMTemperature,
		},
		Intake: Intake{
			TempDir:         defaultTempDir,
			AllowedAudioExt: append([]string(nil), defaultAudioExt...),
			MaxAudioBytes:   defaultMaxAudioBytes,
			MaxDocBytes:     defaultMaxDocBytes,
			FFmpegBinary:    defaultFFmpegBinary,
			FFprobeBinary:   defaultFFprobeBinary,
			AudioBitrate:    defaultAudioBitrate,
		},
		Render: Render{
			FontPath:     defaultFontPath,
			FontBoldPath: defaultFontBoldPath,
			FontMonoPath: defaultFontMonoPath,
		},
		Library: Library{
			Title:       defaultLibraryTitle,
			Disciplines: append([]string(nil), defaultDisciplines...),
			Timezone:    defaultTimezone,
		},
		Session: Session{
			IdleTimeoutMinutes: defaultSessionIdleMinutes,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Publications:   true,
			Errors:         true,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
