package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/skip2/go-qrcode"

	"github.com/phildougherty/quick-assistant/internal/ai"
)

// RegisterClipboardTools adds clipboard get/set and QR generation
func RegisterClipboardTools(r *Registry) error {
	tools := []Tool{
		{
			Definition: ai.Function{
				Name:        "set_clipboard",
				Description: "Copies text to the system clipboard.",
				Parameters: objectSchema(map[string]interface{}{
					"text": map[string]interface{}{
						"type": "string",
					},
				}, "text"),
			},
			Handler: setClipboard,
		},
		{
			Definition: ai.Function{
				Name:        "get_clipboard",
				Description: "Reads the current text contents of the system clipboard.",
				Parameters:  objectSchema(map[string]interface{}{}),
			},
			Handler: getClipboard,
		},
		{
			Definition: ai.Function{
				Name:        "generate_qr_code",
				Description: "Generates a QR code image for the given text and copies the image path to the clipboard.",
				Parameters: objectSchema(map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "The text or URL to encode.",
					},
				}, "text"),
			},
			Handler: generateQRCode,
		},
	}

	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func setClipboard(ctx context.Context, args map[string]interface{}) (string, error) {
	text, err := stringArg(args, "text")
	if err != nil {
		return "", err
	}
	if err := clipboard.WriteAll(text); err != nil {
		return "", fmt.Errorf("failed to write clipboard: %w", err)
	}
	return "Copied to clipboard", nil
}

func getClipboard(ctx context.Context, args map[string]interface{}) (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	if text == "" {
		return "The clipboard is empty", nil
	}
	return text, nil
}

func generateQRCode(ctx context.Context, args map[string]interface{}) (string, error) {
	text, err := stringArg(args, "text")
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("nothing to encode")
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("qr_%d.png", time.Now().UnixNano()))
	if err := qrcode.WriteFile(text, qrcode.Medium, 512, path); err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	if err := clipboard.WriteAll(path); err != nil {
		return fmt.Sprintf("QR code saved to %s (clipboard unavailable)", path), nil
	}
	return fmt.Sprintf("QR code saved to %s and the path is on the clipboard", path), nil
}
