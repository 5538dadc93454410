package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/browser"

	"github.com/phildougherty/quick-assistant/internal/ai"
	"github.com/phildougherty/quick-assistant/internal/logging"
)

const openAIUsageURL = "https://platform.openai.com/usage"

// speedtestTimeout bounds the background run, not the tool call
// itself, which acknowledges immediately
const speedtestTimeout = 2 * time.Minute

// FollowUp delivers a message into the conversation after a tool call
// has already returned, for tools that finish in the background
type FollowUp func(text string)

// RegisterWebTools adds the billing page opener and the speed test
func RegisterWebTools(r *Registry, logger *logging.Logger, followUp FollowUp) error {
	tools := []Tool{
		{
			Definition: ai.Function{
				Name:        "open_openai_billing",
				Description: "Opens the OpenAI API usage and billing page in the default browser.",
				Parameters:  objectSchema(map[string]interface{}{}),
			},
			Handler: openBilling,
		},
		{
			Definition: ai.Function{
				Name:        "speedtest",
				Description: "Runs an internet speed test. Takes about a minute; results are reported when the test finishes.",
				Parameters:  objectSchema(map[string]interface{}{}),
			},
			Handler: speedtestHandler(logger, followUp),
		},
	}

	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func openBilling(ctx context.Context, args map[string]interface{}) (string, error) {
	if err := browser.OpenURL(openAIUsageURL); err != nil {
		return "", fmt.Errorf("failed to open browser: %w", err)
	}
	return "Opened the OpenAI usage page", nil
}

// speedtestHandler acknowledges immediately and runs the test in the
// background, feeding the result back into the conversation
func speedtestHandler(logger *logging.Logger, followUp FollowUp) Handler {
	return func(ctx context.Context, args map[string]interface{}) (string, error) {
		binary, err := speedtestBinary()
		if err != nil {
			return "", err
		}

		go func() {
			runCtx, cancel := context.WithTimeout(context.Background(), speedtestTimeout)
			defer cancel()

			output, err := exec.CommandContext(runCtx, binary, "--simple").CombinedOutput()
			if err != nil {
				logger.Warning("Speed test failed: %v", err)
				if followUp != nil {
					followUp(fmt.Sprintf("The speed test failed: %v", err))
				}
				return
			}
			result := strings.TrimSpace(string(output))
			logger.Info("Speed test finished: %s", result)
			if followUp != nil {
				followUp("Speed test results:\n" + result)
			}
		}()

		return "Speed test started, results will be announced when it finishes", nil
	}
}

func speedtestBinary() (string, error) {
	for _, name := range []string{"speedtest-cli", "speedtest"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no speedtest utility found (tried speedtest-cli, speedtest)")
}
