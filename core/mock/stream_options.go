package mock

import "time"

type streamConfig struct {
	nextSleep  time.Duration
	replayable bool
	errAt      map[int]error
}

type StreamOption func(*streamConfig)

// StreamWithNextSleep makes every Next call sleep for the given duration.
func StreamWithNextSleep(d time.Duration) StreamOption {
	return func(c *streamConfig) {
		c.nextSleep = d
	}
}

// StreamWithReplay makes the stream implement chunk replay, like the
// paging source does.
func StreamWithReplay() StreamOption {
	return func(c *streamConfig) {
		c.replayable = true
	}
}

// StreamWithErrAt injects an error returned instead of the row at the given
// position. The error fires only once - a replay of the same position
// succeeds.
func StreamWithErrAt(index int, err error) StreamOption {
	return func(c *streamConfig) {
		c.errAt[index] = err
	}
}
