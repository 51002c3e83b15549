// Package config loads application configuration files and builds normalized engine options.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/osokin/treecat/internal/types"
)

const (
	// ConfigFileName is the per-project configuration file name.
	ConfigFileName = ".treecat.yaml"
	// GlobalConfigDirectoryName is the directory under the user configuration root holding the global file.
	GlobalConfigDirectoryName = "treecat"
	// globalConfigFileName is the global configuration file name.
	globalConfigFileName = "config.yaml"

	// DefaultMaxFileSizeBytes is the per-file ceiling for content inclusion.
	DefaultMaxFileSizeBytes int64 = 1 << 20
	// DefaultMaxOutputCharacters is the emitted-character budget for extracted text.
	DefaultMaxOutputCharacters = 1 << 20

	errorReadConfigurationFormat   = "read configuration from %s: %w"
	errorDecodeConfigurationFormat = "decode configuration from %s: %w"
	errorStatConfigurationFormat   = "stat configuration %s: %w"
	errorConfigurationIsDirectory  = "configuration path %s is a directory"
)

// defaultIncludeExtensions lists the built-in extension set used when the
// user supplies none. Entries are already normalized.
var defaultIncludeExtensions = []string{
	".txt", ".md", ".markdown", ".json", ".xml", ".yml", ".yaml", ".toml",
	".ini", ".cfg", ".conf", ".csv", ".log", ".html", ".htm", ".css", ".js",
	".ts", ".go", ".py", ".rb", ".java", ".c", ".h", ".cpp", ".hpp", ".cs",
	".rs", ".sh", ".bat", ".ps1", ".sql", ".php",
	".docx", ".xlsx", ".xlsm", ".pdf", ".doc", ".xls",
}

// defaultExcludeDirectoryNames lists directory base names excluded by default.
var defaultExcludeDirectoryNames = []string{
	"node_modules", ".git", ".svn", ".hg", ".idea", ".vs", ".vscode",
	"bin", "obj", "build", "dist", "target", "vendor", "__pycache__",
	"venv", ".venv",
}

// FileConfiguration holds values read from configuration files. Pointer
// fields distinguish "absent" from zero values during merging.
type FileConfiguration struct {
	IncludeExtensions   []string `mapstructure:"include_extensions"`
	ExcludeDirectories  []string `mapstructure:"exclude_directories"`
	MaxFileSizeBytes    *int64   `mapstructure:"max_file_size_bytes"`
	MaxOutputCharacters *int     `mapstructure:"max_output_characters"`
	TreeOnly            *bool    `mapstructure:"tree_only"`
	UseExternalTree     *bool    `mapstructure:"use_external_tree"`
	EncodingMode        string   `mapstructure:"encoding_mode"`
	OutputPath          string   `mapstructure:"output_path"`
	Clipboard           *bool    `mapstructure:"clipboard"`
	Tokens              *bool    `mapstructure:"tokens"`
	TokenizerModel      string   `mapstructure:"tokenizer_model"`
}

// LoadOptions controls how configuration files are discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// LoadFileConfiguration loads the global and local configuration files and
// merges them, local values overriding global ones. Missing files are not
// an error.
func LoadFileConfiguration(options LoadOptions) (FileConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return FileConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged FileConfiguration

	if userConfigDirectory, userConfigError := os.UserConfigDir(); userConfigError == nil && userConfigDirectory != "" {
		globalPath := filepath.Join(userConfigDirectory, GlobalConfigDirectoryName, globalConfigFileName)
		globalConfiguration, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return FileConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath := options.ExplicitFilePath
	if localPath == "" {
		localPath = filepath.Join(workingDirectory, ConfigFileName)
	} else if !filepath.IsAbs(localPath) {
		localPath = filepath.Join(workingDirectory, localPath)
	}
	localConfiguration, loadError := loadConfigurationFromPath(localPath)
	if loadError != nil {
		return FileConfiguration{}, loadError
	}
	merged = merged.Merge(localConfiguration)

	return merged, nil
}

// loadConfigurationFromPath reads one configuration file via viper. A
// missing file yields the zero configuration.
func loadConfigurationFromPath(path string) (FileConfiguration, error) {
	if path == "" {
		return FileConfiguration{}, nil
	}
	fileInformation, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return FileConfiguration{}, nil
		}
		return FileConfiguration{}, fmt.Errorf(errorStatConfigurationFormat, path, statError)
	}
	if fileInformation.IsDir() {
		return FileConfiguration{}, fmt.Errorf(errorConfigurationIsDirectory, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readError := reader.ReadInConfig(); readError != nil {
		return FileConfiguration{}, fmt.Errorf(errorReadConfigurationFormat, path, readError)
	}
	var configuration FileConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return FileConfiguration{}, fmt.Errorf(errorDecodeConfigurationFormat, path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration FileConfiguration) Merge(override FileConfiguration) FileConfiguration {
	result := configuration
	if len(override.IncludeExtensions) > 0 {
		result.IncludeExtensions = append([]string{}, override.IncludeExtensions...)
	}
	if len(override.ExcludeDirectories) > 0 {
		result.ExcludeDirectories = append([]string{}, override.ExcludeDirectories...)
	}
	if override.MaxFileSizeBytes != nil {
		result.MaxFileSizeBytes = cloneInt64(override.MaxFileSizeBytes)
	}
	if override.MaxOutputCharacters != nil {
		result.MaxOutputCharacters = cloneInt(override.MaxOutputCharacters)
	}
	if override.TreeOnly != nil {
		result.TreeOnly = cloneBool(override.TreeOnly)
	}
	if override.UseExternalTree != nil {
		result.UseExternalTree = cloneBool(override.UseExternalTree)
	}
	if override.EncodingMode != "" {
		result.EncodingMode = override.EncodingMode
	}
	if override.OutputPath != "" {
		result.OutputPath = override.OutputPath
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	if override.Tokens != nil {
		result.Tokens = cloneBool(override.Tokens)
	}
	if override.TokenizerModel != "" {
		result.TokenizerModel = override.TokenizerModel
	}
	return result
}

// NormalizeExtensions lower-cases, trims, and dot-prefixes the provided
// extensions, returning the built-in default set when none remain.
func NormalizeExtensions(extensions []string) map[string]struct{} {
	normalized := make(map[string]struct{})
	for _, extension := range extensions {
		trimmedExtension := strings.TrimSpace(extension)
		if trimmedExtension == "" {
			continue
		}
		if !strings.HasPrefix(trimmedExtension, ".") {
			trimmedExtension = "." + trimmedExtension
		}
		normalized[strings.ToLower(trimmedExtension)] = struct{}{}
	}
	if len(normalized) == 0 {
		return NormalizeExtensions(defaultIncludeExtensions)
	}
	return normalized
}

// NormalizeDirectoryNames lower-cases and trims the provided directory base
// names, returning the built-in default set when none remain.
func NormalizeDirectoryNames(directoryNames []string) map[string]struct{} {
	normalized := make(map[string]struct{})
	for _, directoryName := range directoryNames {
		trimmedName := strings.TrimSpace(directoryName)
		if trimmedName == "" {
			continue
		}
		normalized[strings.ToLower(trimmedName)] = struct{}{}
	}
	if len(normalized) == 0 {
		return NormalizeDirectoryNames(defaultExcludeDirectoryNames)
	}
	return normalized
}

// BuildEngineOptions assembles normalized engine options from raw values.
// Zero maxFileSizeBytes selects the default ceiling; maxOutputCharacters of
// zero disables output truncation as specified.
func BuildEngineOptions(rootPath string, includeExtensions []string, excludeDirectories []string, maxFileSizeBytes int64, maxOutputCharacters int, treeOnly bool, useExternalTree bool, encodingMode string) types.Options {
	if maxFileSizeBytes <= 0 {
		maxFileSizeBytes = DefaultMaxFileSizeBytes
	}
	if maxOutputCharacters < 0 {
		maxOutputCharacters = DefaultMaxOutputCharacters
	}
	if encodingMode != types.EncodingModeLegacy {
		encodingMode = types.EncodingModeAuto
	}
	return types.Options{
		RootPath:              rootPath,
		IncludeExtensions:     NormalizeExtensions(includeExtensions),
		ExcludeDirectoryNames: NormalizeDirectoryNames(excludeDirectories),
		MaxFileSizeBytes:      maxFileSizeBytes,
		MaxOutputCharacters:   maxOutputCharacters,
		TreeOnly:              treeOnly,
		UseExternalTree:       useExternalTree,
		NoBomEncodingMode:     encodingMode,
	}
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt64(value *int64) *int64 {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
