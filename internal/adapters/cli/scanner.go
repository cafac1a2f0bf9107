// Package cli implements the interactive and batch scanning modes of the
// command-line tool.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mikey/phish-detector/internal/adapters/mailfile"
	"github.com/mikey/phish-detector/internal/core"
	"go.uber.org/zap"
)

// Detector classifies email text
type Detector interface {
	Analyze(ctx context.Context, text string) (*core.Analysis, error)
}

// Summary counts the outcomes of a batch scan
type Summary struct {
	Total      int `json:"total"`
	Phishing   int `json:"phishing"`
	Legitimate int `json:"legitimate"`
	Failed     int `json:"failed"`
}

// Scanner prints detection results for text, files and directories
type Scanner struct {
	detector Detector
	out      io.Writer
	logger   *zap.Logger
	verbose  bool
	jsonOut  bool
}

// NewScanner creates a new scanner writing to out
func NewScanner(detector Detector, out io.Writer, logger *zap.Logger, verbose, jsonOut bool) *Scanner {
	return &Scanner{
		detector: detector,
		out:      out,
		logger:   logger,
		verbose:  verbose,
		jsonOut:  jsonOut,
	}
}

// ScanText analyzes text and prints the result
func (s *Scanner) ScanText(ctx context.Context, text string) (*core.PredictionResult, error) {
	return s.scan(ctx, "", "", text)
}

// ScanFile analyzes a .txt or .eml file and prints the result
func (s *Scanner) ScanFile(ctx context.Context, path string) (*core.PredictionResult, error) {
	msg, err := mailfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.scan(ctx, path, msg.From, msg.Text())
}

// ScanDir analyzes every .txt and .eml file in dir, printing one line per
// file followed by a summary. Per-file failures are reported and counted
// but do not stop the scan.
func (s *Scanner) ScanDir(ctx context.Context, dir string) (Summary, error) {
	var summary Summary
	paths, err := mailfile.ListDir(dir)
	if err != nil {
		return summary, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return summary, fmt.Errorf("no .txt or .eml files found in %s", dir)
	}

	if !s.jsonOut {
		fmt.Fprintf(s.out, "Batch analysis: %d files found\n", len(paths))
		fmt.Fprintln(s.out, strings.Repeat("=", 50))
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Total++
		name := filepath.Base(path)

		result, err := s.analyzeFile(ctx, path)
		if err != nil {
			summary.Failed++
			s.logger.Debug("Failed to analyze file", zap.String("file", path), zap.Error(err))
			if s.jsonOut {
				s.writeJSON(map[string]string{"file": name, "error": err.Error()})
			} else {
				fmt.Fprintf(s.out, "%-30s ERROR: %v\n", name, err)
			}
			continue
		}
		if result.IsPhishing {
			summary.Phishing++
		} else {
			summary.Legitimate++
		}

		if s.jsonOut {
			s.writeJSON(struct {
				File string `json:"file"`
				*core.PredictionResult
			}{name, result})
			continue
		}
		status := "LEGITIMATE"
		confidence := result.ConfidenceLegitimate
		if result.IsPhishing {
			status = "PHISHING"
			confidence = result.ConfidencePhishing
		}
		fmt.Fprintf(s.out, "%-30s %-12s (%.1f%%)\n", name, status, confidence*100)
	}

	if s.jsonOut {
		s.writeJSON(map[string]Summary{"summary": summary})
	} else {
		fmt.Fprintf(s.out, "\nSummary:\n")
		fmt.Fprintf(s.out, "Total files analyzed: %d\n", summary.Total-summary.Failed)
		fmt.Fprintf(s.out, "Phishing emails: %d\n", summary.Phishing)
		fmt.Fprintf(s.out, "Legitimate emails: %d\n", summary.Legitimate)
		if summary.Failed > 0 {
			fmt.Fprintf(s.out, "Failed: %d\n", summary.Failed)
		}
	}
	return summary, nil
}

// Interactive reads emails from in until EOF or a "quit" line. Emails are
// separated by a line containing only "." so several can be entered in one
// session.
func (s *Scanner) Interactive(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, "Interactive phishing email detector")
	fmt.Fprintln(s.out, `Enter email content, finish each email with a line containing only "." (or EOF).`)
	fmt.Fprintln(s.out, `Type "quit" to exit.`)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	var lines []string

	flush := func() {
		text := strings.Join(lines, "\n")
		lines = lines[:0]
		if strings.TrimSpace(text) == "" {
			fmt.Fprintln(s.out, "No content entered. Please try again.")
			return
		}
		if _, err := s.ScanText(ctx, text); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "quit":
			return nil
		case ".":
			flush()
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if len(lines) > 0 {
		flush()
	}
	return nil
}

func (s *Scanner) analyzeFile(ctx context.Context, path string) (*core.PredictionResult, error) {
	text, err := mailfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	analysis, err := s.detector.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	return analysis.Result, nil
}

func (s *Scanner) scan(ctx context.Context, source, from, text string) (*core.PredictionResult, error) {
	analysis, err := s.detector.Analyze(ctx, text)
	if err != nil {
		if !errors.Is(err, core.ErrInvalidInput) {
			s.logger.Error("Failed to analyze email", zap.Error(err))
		}
		return nil, err
	}
	result := analysis.Result

	if s.jsonOut {
		s.writeJSON(struct {
			*core.PredictionResult
			Source    string      `json:"source,omitempty"`
			From      string      `json:"from,omitempty"`
			Wordcloud interface{} `json:"wordcloud,omitempty"`
		}{result, source, from, analysis.Wordcloud})
		return result, nil
	}

	fmt.Fprintln(s.out)
	if source != "" {
		fmt.Fprintf(s.out, "=== Analysis Results for: %s ===\n", source)
	} else {
		fmt.Fprintln(s.out, "=== Analysis Results ===")
	}
	fmt.Fprintf(s.out, "Prediction: %s\n", result.Label)
	fmt.Fprintf(s.out, "Phishing Confidence: %.2f%%\n", result.ConfidencePhishing*100)
	fmt.Fprintf(s.out, "Legitimate Confidence: %.2f%%\n", result.ConfidenceLegitimate*100)
	if result.IsPhishing {
		fmt.Fprintln(s.out, "WARNING: This email appears to be PHISHING!")
	} else {
		fmt.Fprintln(s.out, "This email appears to be LEGITIMATE")
	}

	if s.verbose {
		if from != "" {
			fmt.Fprintf(s.out, "From: %s\n", from)
		}
		fmt.Fprintf(s.out, "Model version: %s\n", result.ModelVersion)
		fmt.Fprintf(s.out, "Processing ID: %s\n", result.ProcessingID)
		if len(analysis.Wordcloud) > 0 {
			words := make([]string, 0, len(analysis.Wordcloud))
			for i, t := range analysis.Wordcloud {
				if i == 10 {
					break
				}
				words = append(words, t.Word)
			}
			fmt.Fprintf(s.out, "Top terms: %s\n", strings.Join(words, ", "))
		}
	}
	return result, nil
}

func (s *Scanner) writeJSON(v interface{}) {
	enc := json.NewEncoder(s.out)
	if err := enc.Encode(v); err != nil {
		s.logger.Error("Failed to encode result", zap.Error(err))
	}
}
