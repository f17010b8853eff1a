// Package config holds driver configuration: the flag values
// cmd/livyc parses plus whatever an optional `.livyc` project file in
// the working directory seeds as their defaults (SPEC_FULL.md §B), and
// the source-transcoding helper backing the `-e/--encoding` flag
// (spec.md §6.2).
//
// The project file is intentionally a tiny hand-rolled KEY=VALUE
// format rather than YAML or JSON: the teacher's go.mod carries
// go-yaml/gjson/sjson only transitively (pulled in by go-snaps), never
// imports them directly for its own configuration, so a from-scratch
// config format is the teacher's own idiom here, not a gap. See
// DESIGN.md.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	xtextencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/cwbudde/livyc/internal/encoding"
)

// Config is the set of project-file-overridable compiler options
// (SPEC_FULL.md §B); cmd/livyc starts from these values and then
// applies only the flags set explicitly on the command line, so an
// explicit flag always wins over the project file.
type Config struct {
	Encoding       string
	ExpansionLevel int
	SortDefs       bool
	Compress       bool
	LibMode        bool
}

// Default returns the configuration the driver assumes when no
// `.livyc` project file is present.
func Default() Config {
	return Config{Encoding: "UTF8"}
}

// Load parses a `.livyc` project file: one `key = value` pair per
// line, `#`-prefixed comments and blank lines ignored. Recognized keys
// are encoding, expansion_level, sort_defs, compress, and lib_mode;
// an unrecognized key is an error, since a silently-ignored typo in a
// project file is worse than a load failure the driver can report.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return cfg, fmt.Errorf("config: %s:%d: expected key = value, got %q", path, lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "encoding":
			cfg.Encoding = value
		case "expansion_level":
			n, err := strconv.Atoi(value)
			if err != nil {
				return cfg, fmt.Errorf("config: %s:%d: expansion_level: %w", path, lineNo, err)
			}
			cfg.ExpansionLevel = n
		case "sort_defs":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return cfg, fmt.Errorf("config: %s:%d: sort_defs: %w", path, lineNo, err)
			}
			cfg.SortDefs = b
		case "compress":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return cfg, fmt.Errorf("config: %s:%d: compress: %w", path, lineNo, err)
			}
			cfg.Compress = b
		case "lib_mode":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return cfg, fmt.Errorf("config: %s:%d: lib_mode: %w", path, lineNo, err)
			}
			cfg.LibMode = b
		default:
			return cfg, fmt.Errorf("config: %s:%d: unrecognized key %q", path, lineNo, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// sourceEncodings maps the same canonical names
// encoding.NormalizeEncodingName produces to the golang.org/x/text
// decoder that reads source bytes in that encoding, so an encoding
// name the bytecode header can represent is always one DecodeSource
// can transcode (spec.md §6.2, §4.9).
var sourceEncodings = map[string]xtextencoding.Encoding{
	"utf-8":     unicode.UTF8,
	"iso8859-1": charmap.ISO8859_1,
}

// DecodeSource transcodes raw source bytes in the named encoding to a
// UTF-8 string, ready for the (external) lexer. Newline normalization
// to `\n` (spec.md §6.2) is the lexer's own responsibility, not this
// package's.
func DecodeSource(data []byte, encodingName string) (string, error) {
	normalized := encoding.NormalizeEncodingName(encodingName)
	enc, ok := sourceEncodings[normalized]
	if !ok {
		return "", fmt.Errorf("config: unsupported source encoding %q", encodingName)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("config: decoding source as %q: %w", normalized, err)
	}
	return string(out), nil
}
