package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"homesurvey/internal/common/config"
	"homesurvey/internal/common/logger"
	"homesurvey/internal/envelope"
	"homesurvey/internal/imageref"
	"homesurvey/internal/storage"
)

// readInput reads the named file, or stdin when no name or "-" is given.
func readInput(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// dataURL encodes an image the way a browser FileReader would.
func dataURL(data []byte, contentType string) string {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// openStore connects the configured storage backend.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*envelope.Store, func() error, error) {
	backend, closeFn, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	store := envelope.NewStore(
		storage.NewScopedStore(backend, log),
		imageref.New(cfg.API.BaseURL),
		log,
	)
	return store, closeFn, nil
}
