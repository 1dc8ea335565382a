package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"brfiq/internal/config"
)

// Recognizer runs OCR over page images by shelling out to tesseract.
type Recognizer struct {
	binary   string
	language string
	psm      int
}

// NewRecognizer creates a tesseract-backed text recognizer.
func NewRecognizer(cfg *config.OCRConfig) *Recognizer {
	binary := cfg.Tesseract
	if binary == "" {
		binary = "tesseract"
	}
	language := cfg.Language
	if language == "" {
		language = "swe"
	}
	psm := cfg.PSM
	if psm == 0 {
		psm = 6
	}
	return &Recognizer{binary: binary, language: language, psm: psm}
}

// CheckAvailable reports whether the tesseract binary can be found and the
// configured language pack is installed.
func (r *Recognizer) CheckAvailable() error {
	if _, err := exec.LookPath(r.binary); err != nil {
		return fmt.Errorf("tesseract not found: %w", err)
	}
	out, err := exec.Command(r.binary, "--list-langs").CombinedOutput()
	if err != nil {
		return fmt.Errorf("tesseract --list-langs failed: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == r.language {
			return nil
		}
	}
	return fmt.Errorf("tesseract language pack %q not installed", r.language)
}

// Recognize extracts text from a PNG page image.
func (r *Recognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	tmp, err := os.CreateTemp("", "brfiq-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp image: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(image); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("writing temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp image: %w", err)
	}

	// "stdout" as the output base makes tesseract write text to stdout.
	cmd := exec.CommandContext(ctx, r.binary,
		tmp.Name(), "stdout",
		"-l", r.language,
		"--psm", strconv.Itoa(r.psm),
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}
