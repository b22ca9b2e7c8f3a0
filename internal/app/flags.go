package app

import "flag"

// BindFlags registers every command-line flag on fs with the current cfg
// values as defaults, so flags that are not given leave cfg untouched.
func BindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Sentences, "n", cfg.Sentences, "Number of summary sentences (non-positive means 5)")
	fs.BoolVar(&cfg.Interactive, "i", cfg.Interactive, "Start the interactive command loop")
	fs.IntVar(&cfg.MinLocalChars, "min.localChars", cfg.MinLocalChars, "Minimum extracted characters for local summarization")
	fs.IntVar(&cfg.MinRemoteChars, "min.remoteChars", cfg.MinRemoteChars, "Minimum extracted characters for remote summarization")

	fs.BoolVar(&cfg.UseRemote, "remote", cfg.UseRemote, "Summarize with the remote backend instead of locally")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "Remote backend: huggingface or chat")
	fs.StringVar(&cfg.HFToken, "hf.token", cfg.HFToken, "Hugging Face API token")
	fs.StringVar(&cfg.HFEndpoint, "hf.endpoint", cfg.HFEndpoint, "Hugging Face inference endpoint")
	fs.StringVar(&cfg.LLMBaseURL, "llm.base", cfg.LLMBaseURL, "OpenAI-compatible base URL")
	fs.StringVar(&cfg.LLMModel, "llm.model", cfg.LLMModel, "Model name for the chat backend")
	fs.StringVar(&cfg.LLMAPIKey, "llm.key", cfg.LLMAPIKey, "API key for the chat backend")
	fs.DurationVar(&cfg.RemoteTimeout, "remote.timeout", cfg.RemoteTimeout, "Timeout for one remote summarization call")

	fs.StringVar(&cfg.UserAgent, "ua", cfg.UserAgent, "User-Agent for page and robots.txt requests")
	fs.DurationVar(&cfg.FetchTimeout, "fetch.timeout", cfg.FetchTimeout, "Per-request page fetch timeout")
	fs.BoolVar(&cfg.Render, "render", cfg.Render, "Render pages in headless Chrome before extraction")
	fs.StringVar(&cfg.ChromePath, "chrome.path", cfg.ChromePath, "Chrome or Chromium binary for -render")
	fs.BoolVar(&cfg.SkipTLSVerify, "ssl.skipVerify", cfg.SkipTLSVerify, "Accept self-signed TLS certificates")
	fs.BoolVar(&cfg.IgnoreRobots, "robots.ignore", cfg.IgnoreRobots, "Do not consult robots.txt")

	fs.BoolVar(&cfg.Copy, "copy", cfg.Copy, "Print the copy block after the summary")
	fs.StringVar(&cfg.ExportPath, "export", cfg.ExportPath, "Write the summary as text to this path (directory means shortly-summary.txt)")
	fs.StringVar(&cfg.PDFPath, "pdf", cfg.PDFPath, "Write the summary as PDF to this path")

	fs.StringVar(&cfg.CacheDir, "cache.dir", cfg.CacheDir, "Cache directory path")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", cfg.CacheMaxAge, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", cfg.CacheClear, "Clear cache directory before run")
	fs.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", cfg.CacheStrictPerms, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&cfg.NoCache, "cache.disable", cfg.NoCache, "Do not read or write the on-disk cache")

	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
}
