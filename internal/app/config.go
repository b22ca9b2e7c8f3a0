package app

import "time"

// Remote backends selectable with -backend.
const (
	BackendHuggingFace = "huggingface"
	BackendChat        = "chat"
)

// Defaults used by DefaultConfig and by the flag definitions.
const (
	DefaultSentences      = 5
	DefaultMinLocalChars  = 120
	DefaultMinRemoteChars = 100
	DefaultCacheDir       = ".shortly-cache"
	DefaultUserAgent      = "shortly/1.0 (+https://github.com/hyperifyio/shortly)"
	DefaultFetchTimeout   = 15 * time.Second
	DefaultRemoteTimeout  = 60 * time.Second
)

// Config holds runtime configuration for the application.
type Config struct {
	// Target is a URL, a file path or "-" for stdin. Empty with Interactive
	// starts the command loop.
	Target      string
	Interactive bool
	Sentences   int

	// Text must reach these lengths before local or remote summarization.
	MinLocalChars  int
	MinRemoteChars int

	// Remote
	UseRemote     bool
	Backend       string
	HFToken       string
	HFEndpoint    string
	LLMBaseURL    string
	LLMModel      string
	LLMAPIKey     string
	RemoteTimeout time.Duration

	// Fetch
	UserAgent    string
	FetchTimeout time.Duration
	Render       bool
	ChromePath   string
	IgnoreRobots bool
	// SkipTLSVerify accepts self-signed certificates on every connection.
	SkipTLSVerify bool

	// Output
	Copy       bool
	ExportPath string
	PDFPath    string

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	NoCache          bool

	Verbose bool
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() Config {
	return Config{
		Sentences:      DefaultSentences,
		MinLocalChars:  DefaultMinLocalChars,
		MinRemoteChars: DefaultMinRemoteChars,
		Backend:        BackendHuggingFace,
		RemoteTimeout:  DefaultRemoteTimeout,
		UserAgent:      DefaultUserAgent,
		FetchTimeout:   DefaultFetchTimeout,
		CacheDir:       DefaultCacheDir,
	}
}
