package cli

import _ "embed"

//go:embed config.yaml
var embeddedConfigurationContent []byte

const embeddedConfigurationTypeConstant = "yaml"

// EmbeddedDefaultConfiguration returns the embedded default configuration
// content and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return embeddedConfigurationContent, embeddedConfigurationTypeConstant
}
