package service

// State is a step of a setup run.
type State int

// Runs move Start -> ResolvingVersion -> CheckingCache, then either
// CacheHit -> Publishing or CacheMiss -> Downloading -> Extracting ->
// Installing -> Publishing. Any step may end in Failed.
const (
	StateStart State = iota
	StateResolvingVersion
	StateCheckingCache
	StateCacheHit
	StateCacheMiss
	StateDownloading
	StateExtracting
	StateInstalling
	StatePublishing
	StateFailed
)

var stateNames = map[State]string{
	StateStart:            "start",
	StateResolvingVersion: "resolving-version",
	StateCheckingCache:    "checking-cache",
	StateCacheHit:         "cache-hit",
	StateCacheMiss:        "cache-miss",
	StateDownloading:      "downloading",
	StateExtracting:       "extracting",
	StateInstalling:       "installing",
	StatePublishing:       "publishing",
	StateFailed:           "failed",
}

// String returns the string representation of the state
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
