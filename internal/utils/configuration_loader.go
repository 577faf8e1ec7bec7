package utils

import (
	"bytes"
	"errors"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeyReplacerFromConstant = "."
	environmentKeyReplacerToConstant   = "_"
	environmentListSeparatorConstant   = ","
)

// LoadedConfiguration reports metadata about a completed configuration load.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader merges embedded defaults, configuration files, and
// environment variables into typed configuration structures.
type ConfigurationLoader struct {
	configurationName string
	configurationType string
	environmentPrefix string
	searchPaths       []string
	embeddedContent   []byte
	embeddedType      string
}

// NewConfigurationLoader constructs a loader for the provided configuration
// name, type, environment prefix, and search paths.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string{}, searchPaths...),
	}
}

// SetEmbeddedConfiguration registers embedded default configuration content.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(content []byte, configurationType string) {
	loader.embeddedContent = append([]byte{}, content...)
	loader.embeddedType = configurationType
}

// LoadConfiguration resolves configuration with precedence environment over
// file over defaults over embedded content, then decodes it into target.
func (loader *ConfigurationLoader) LoadConfiguration(explicitFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(loader.embeddedContent) > 0 {
		embeddedType := loader.embeddedType
		if len(strings.TrimSpace(embeddedType)) == 0 {
			embeddedType = loader.configurationType
		}
		embeddedViper := viper.New()
		embeddedViper.SetConfigType(embeddedType)
		if embeddedReadError := embeddedViper.ReadConfig(bytes.NewReader(loader.embeddedContent)); embeddedReadError != nil {
			return LoadedConfiguration{}, embeddedReadError
		}
		if mergeError := viperInstance.MergeConfigMap(embeddedViper.AllSettings()); mergeError != nil {
			return LoadedConfiguration{}, mergeError
		}
	}

	trimmedExplicitPath := strings.TrimSpace(explicitFilePath)
	if len(trimmedExplicitPath) > 0 {
		viperInstance.SetConfigFile(trimmedExplicitPath)
		if readError := viperInstance.MergeInConfig(); readError != nil {
			return LoadedConfiguration{}, readError
		}
	} else {
		for _, searchPath := range loader.searchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
		if readError := viperInstance.MergeInConfig(); readError != nil {
			var configFileNotFound viper.ConfigFileNotFoundError
			if !errors.As(readError, &configFileNotFound) {
				return LoadedConfiguration{}, readError
			}
		}
	}

	if len(strings.TrimSpace(loader.environmentPrefix)) > 0 {
		viperInstance.SetEnvPrefix(loader.environmentPrefix)
		viperInstance.SetEnvKeyReplacer(strings.NewReplacer(environmentKeyReplacerFromConstant, environmentKeyReplacerToConstant))
		viperInstance.AutomaticEnv()
	}

	if target != nil {
		decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(environmentListSeparatorConstant),
		))
		if decodeError := viperInstance.Unmarshal(target, decodeHook); decodeError != nil {
			return LoadedConfiguration{}, decodeError
		}
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}
