package sink

import "filippo.io/age"

type Option func(*Sink)

// WithHeaderLine sets a fixed header line instead of the field-name
// default.
func WithHeaderLine(line string) Option {
	return func(s *Sink) {
		s.headerLine = line
	}
}

// WithFooterLabel sets the literal label written before the footer count.
func WithFooterLabel(label string) Option {
	return func(s *Sink) {
		s.footerLabel = label
	}
}

// WithFields sets the field order of the data lines. Without it, each
// record is written in its own header order.
func WithFields(fields []string) Option {
	return func(s *Sink) {
		s.fields = fields
	}
}

// WithDelimiter sets the field delimiter of the data lines.
func WithDelimiter(delimiter rune) Option {
	return func(s *Sink) {
		if delimiter != 0 {
			s.delimiter = delimiter
		}
	}
}

// WithCompression layers gzip between the framing and the encryption.
func WithCompression() Option {
	return func(s *Sink) {
		s.compress = true
	}
}

// WithEncryption layers age public-key encryption around the whole output.
func WithEncryption(recipient age.Recipient) Option {
	return func(s *Sink) {
		s.recipient = recipient
	}
}
