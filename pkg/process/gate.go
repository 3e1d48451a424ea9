package process

import "os"

// Decision is a CacheGate verdict for one target path.
type Decision int

const (
	// DecisionSkip trusts the existing file as up to date. Only bytes
	// movement is skipped; the path must still be marked as seen.
	DecisionSkip Decision = iota
	// DecisionWrite means the file is absent or a refresh was forced.
	DecisionWrite
)

// CacheGate decides, per target path, whether an existing file may be
// trusted as current. It is applied independently to the primary asset and
// to each localized variant.
type CacheGate struct {
	ForceRefresh bool
}

// Decide returns DecisionSkip when the file exists and no refresh is
// forced, DecisionWrite otherwise. A stat error other than "not exist" is
// treated as absence: writing over an unreadable path is the safer failure
// mode than silently keeping it.
func (g CacheGate) Decide(path string) Decision {
	if g.ForceRefresh {
		return DecisionWrite
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return DecisionWrite
	}
	return DecisionSkip
}
