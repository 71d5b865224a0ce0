package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"filippo.io/age"
	"github.com/klauspost/compress/gzip"
)

// decimal count with no leading zeros
var countPattern = regexp.MustCompile(`^(0|[1-9][0-9]*)$`)

// VerifyResult is the outcome of reading an artifact back.
type VerifyResult struct {
	Header      string
	DataLines   int64
	FooterCount int64
}

type verifyConfig struct {
	identity    age.Identity
	compressed  bool
	footerLabel string
}

type VerifyOption func(*verifyConfig)

// VerifyWithIdentity decrypts the artifact with the given identity before
// checking the frame.
func VerifyWithIdentity(identity age.Identity) VerifyOption {
	return func(c *verifyConfig) {
		c.identity = identity
	}
}

// VerifyWithCompression expects a gzip layer inside the encryption layer.
func VerifyWithCompression() VerifyOption {
	return func(c *verifyConfig) {
		c.compressed = true
	}
}

// VerifyWithFooterLabel overrides the expected footer label.
func VerifyWithFooterLabel(label string) VerifyOption {
	return func(c *verifyConfig) {
		c.footerLabel = label
	}
}

// Verify reads an artifact back through the matching layer stack and
// checks the frame: exactly one header line first, a footer line last, and
// a footer count equal to the number of data lines between them.
func Verify(path string, opts ...VerifyOption) (*VerifyResult, error) {
	config := &verifyConfig{
		footerLabel: DefaultFooterLabel,
	}
	for _, opt := range opts {
		opt(config)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer file.Close()

	var r io.Reader = file

	if config.identity != nil {
		r, err = age.Decrypt(r, config.identity)
		if err != nil {
			return nil, fmt.Errorf("age.Decrypt: %w", err)
		}
	}

	if config.compressed {
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip.NewReader: %w", err)
		}
		defer gzr.Close()
		r = gzr
	}

	return verifyFrame(r, config.footerLabel)
}

func verifyFrame(r io.Reader, footerLabel string) (*VerifyResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, fmt.Errorf("artifact is empty")
	}
	header := scanner.Text()

	// the last line is the footer; everything between it and the header is
	// data - keep a one line lookbehind so the artifact never has to fit
	// in memory
	var dataLines int64
	var last string
	haveLast := false

	for scanner.Scan() {
		if haveLast {
			dataLines++
		}
		last = scanner.Text()
		haveLast = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	if !haveLast {
		return nil, fmt.Errorf("artifact has no footer line")
	}
	if !strings.HasPrefix(last, footerLabel) {
		return nil, fmt.Errorf("artifact footer does not carry label %q", footerLabel)
	}

	countField := strings.TrimPrefix(last, footerLabel)
	if !countPattern.MatchString(countField) {
		return nil, fmt.Errorf("malformed footer count %q", countField)
	}
	count, err := strconv.ParseInt(countField, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("strconv.ParseInt: %w", err)
	}

	if count != dataLines {
		return nil, fmt.Errorf("footer count %d does not match %d data lines", count, dataLines)
	}

	return &VerifyResult{
		Header:      header,
		DataLines:   dataLines,
		FooterCount: count,
	}, nil
}
