package mock

type sourceConfig struct {
	failOpens     int
	streamOptions []StreamOption
}

type SourceOption func(*sourceConfig)

// SourceWithFailedOpens makes the first n calls to Open fail with a
// transient error.
func SourceWithFailedOpens(n int) SourceOption {
	return func(c *sourceConfig) {
		c.failOpens = n
	}
}

// SourceWithStreamOpts passes options to the streams the source opens.
func SourceWithStreamOpts(opts ...StreamOption) SourceOption {
	return func(c *sourceConfig) {
		c.streamOptions = append(c.streamOptions, opts...)
	}
}
