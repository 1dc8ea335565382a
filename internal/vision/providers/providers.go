package providers

import (
	"brfiq/internal/config"
	"brfiq/internal/port"
	"brfiq/internal/vision"
	"brfiq/internal/vision/mistral"
	"brfiq/internal/vision/qwen"
)

// RegisterAll registers the built-in vision providers with the factory.
// Called once from main before the first NewParser.
func RegisterAll() {
	vision.RegisterProvider("qwen", func(cfg *config.VisionConfig) (port.VisionParser, error) {
		return qwen.NewParser(cfg), nil
	})
	vision.RegisterProvider("mistral", func(cfg *config.VisionConfig) (port.VisionParser, error) {
		return mistral.NewParser(cfg), nil
	})
}
