// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osokin/treecat/internal/config"
	"github.com/osokin/treecat/internal/report"
	"github.com/osokin/treecat/internal/services/clipboard"
	"github.com/osokin/treecat/internal/tokenizer"
	"github.com/osokin/treecat/internal/types"
	"github.com/osokin/treecat/internal/utils"
)

const (
	extensionsFlagName   = "ext"
	excludeFlagName      = "exclude"
	maxBytesFlagName     = "max-bytes"
	maxCharsFlagName     = "max-chars"
	treeOnlyFlagName     = "tree-only"
	externalTreeFlagName = "external-tree"
	encodingFlagName     = "encoding"
	outputFlagName       = "out"
	copyFlagName         = "copy"
	tokensFlagName       = "tokens"
	modelFlagName        = "model"
	configFlagName       = "config"
	versionFlagName      = "version"

	versionTemplate = "treecat version: %s\n"
	defaultPath     = "."
	rootUse         = "treecat [directory]"

	rootShortDescription = "flatten a directory tree into a single Markdown report"
	rootLongDescription  = `treecat renders a directory tree and the decoded content of every file
matching the inclusion policy into one self-contained Markdown report.
Office documents (.docx, .xlsx, .xlsm) and PDFs are extracted as text;
legacy binary formats (.doc, .xls) are reported as unsupported.`
	rootUsageExample = `  # Report the current directory to stdout
  treecat

  # Tree only, excluding the vendor directory
  treecat --tree-only --exclude vendor .

  # Persist the report with a UTF-8 BOM and copy it to the clipboard
  treecat --out report.md --copy ./project`

	extensionsFlagDescription   = "file extensions to include (empty: built-in defaults)"
	excludeFlagDescription      = "directory base names to exclude at any depth"
	maxBytesFlagDescription     = "per-file size ceiling in bytes for content inclusion"
	maxCharsFlagDescription     = "character budget for extracted text (0 disables truncation)"
	treeOnlyFlagDescription     = "emit only the tree section"
	externalTreeFlagDescription = "prefer the external tree utility over the internal renderer"
	encodingFlagDescription     = "decoding for files without BOM: auto or legacy"
	outputFlagDescription       = "write the report to this file (UTF-8 with BOM)"
	copyFlagDescription         = "copy the report to the system clipboard"
	tokensFlagDescription       = "log an estimated token count for the report"
	modelFlagDescription        = "tokenizer model used for token estimation"
	configFlagDescription       = "explicit configuration file path"
	versionFlagDescription      = "display application version"

	invalidEncodingModeFormat   = "invalid encoding mode '%s' (expected auto or legacy)"
	warningClipboardCopyFormat  = "failed to copy report to clipboard: %v"
	warningTokenCountFormat     = "failed to estimate tokens: %v"
	tokenEstimateMessageFormat  = "estimated tokens (%s): %d"
	reportWrittenMessageFormat  = "report written to %s"
	errorLoadConfigurationsText = "loading configuration"
)

// generateSettings collects flag values for the single generate command.
type generateSettings struct {
	includeExtensions   []string
	excludeDirectories  []string
	maxFileSizeBytes    int64
	maxOutputCharacters int
	treeOnly            bool
	useExternalTree     bool
	encodingMode        string
	outputPath          string
	copyToClipboard     bool
	countTokens         bool
	tokenizerModel      string
	configFilePath      string
}

// Execute runs the treecat application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(logger)
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(logger *zap.Logger) *cobra.Command {
	var showVersion bool
	var settings generateSettings

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) > 0 {
				rootPath = arguments[0]
			}
			return runGenerate(command, rootPath, settings, logger)
		},
	}

	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	commandFlags := rootCommand.Flags()
	commandFlags.StringSliceVar(&settings.includeExtensions, extensionsFlagName, nil, extensionsFlagDescription)
	commandFlags.StringSliceVar(&settings.excludeDirectories, excludeFlagName, nil, excludeFlagDescription)
	commandFlags.Int64Var(&settings.maxFileSizeBytes, maxBytesFlagName, config.DefaultMaxFileSizeBytes, maxBytesFlagDescription)
	commandFlags.IntVar(&settings.maxOutputCharacters, maxCharsFlagName, config.DefaultMaxOutputCharacters, maxCharsFlagDescription)
	commandFlags.BoolVar(&settings.treeOnly, treeOnlyFlagName, false, treeOnlyFlagDescription)
	commandFlags.BoolVar(&settings.useExternalTree, externalTreeFlagName, false, externalTreeFlagDescription)
	commandFlags.StringVar(&settings.encodingMode, encodingFlagName, types.EncodingModeAuto, encodingFlagDescription)
	commandFlags.StringVar(&settings.outputPath, outputFlagName, "", outputFlagDescription)
	commandFlags.BoolVar(&settings.copyToClipboard, copyFlagName, false, copyFlagDescription)
	commandFlags.BoolVar(&settings.countTokens, tokensFlagName, false, tokensFlagDescription)
	commandFlags.StringVar(&settings.tokenizerModel, modelFlagName, "", modelFlagDescription)
	commandFlags.StringVar(&settings.configFilePath, configFlagName, "", configFlagDescription)

	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// runGenerate merges configuration sources, builds the engine, and emits the
// report.
func runGenerate(command *cobra.Command, rootPath string, settings generateSettings, logger *zap.Logger) error {
	fileConfiguration, configurationError := config.LoadFileConfiguration(config.LoadOptions{ExplicitFilePath: settings.configFilePath})
	if configurationError != nil {
		return fmt.Errorf("%s: %w", errorLoadConfigurationsText, configurationError)
	}
	settings = applyFileConfiguration(command, settings, fileConfiguration)

	if settings.encodingMode != types.EncodingModeAuto && settings.encodingMode != types.EncodingModeLegacy {
		return fmt.Errorf(invalidEncodingModeFormat, settings.encodingMode)
	}

	engineOptions := config.BuildEngineOptions(
		rootPath,
		settings.includeExtensions,
		settings.excludeDirectories,
		settings.maxFileSizeBytes,
		settings.maxOutputCharacters,
		settings.treeOnly,
		settings.useExternalTree,
		settings.encodingMode,
	)

	assembler := report.NewAssembler(engineOptions, logger)
	reportText, generateError := assembler.Generate(command.Context())
	if generateError != nil {
		return generateError
	}

	if settings.outputPath != "" {
		if saveError := report.SaveToFile(settings.outputPath, reportText); saveError != nil {
			return saveError
		}
		logger.Info(fmt.Sprintf(reportWrittenMessageFormat, settings.outputPath))
	} else {
		fmt.Print(reportText)
	}

	if settings.copyToClipboard {
		if copyError := clipboard.NewService().Copy(reportText); copyError != nil {
			logger.Warn(fmt.Sprintf(warningClipboardCopyFormat, copyError))
		}
	}

	if settings.countTokens {
		logTokenEstimate(reportText, settings.tokenizerModel, logger)
	}
	return nil
}

// applyFileConfiguration overlays configuration file values beneath flags:
// a value from the file applies only when its flag was not set explicitly.
func applyFileConfiguration(command *cobra.Command, settings generateSettings, fileConfiguration config.FileConfiguration) generateSettings {
	commandFlags := command.Flags()

	if !commandFlags.Changed(extensionsFlagName) && len(fileConfiguration.IncludeExtensions) > 0 {
		settings.includeExtensions = fileConfiguration.IncludeExtensions
	}
	if !commandFlags.Changed(excludeFlagName) && len(fileConfiguration.ExcludeDirectories) > 0 {
		settings.excludeDirectories = fileConfiguration.ExcludeDirectories
	}
	if !commandFlags.Changed(maxBytesFlagName) && fileConfiguration.MaxFileSizeBytes != nil {
		settings.maxFileSizeBytes = *fileConfiguration.MaxFileSizeBytes
	}
	if !commandFlags.Changed(maxCharsFlagName) && fileConfiguration.MaxOutputCharacters != nil {
		settings.maxOutputCharacters = *fileConfiguration.MaxOutputCharacters
	}
	if !commandFlags.Changed(treeOnlyFlagName) && fileConfiguration.TreeOnly != nil {
		settings.treeOnly = *fileConfiguration.TreeOnly
	}
	if !commandFlags.Changed(externalTreeFlagName) && fileConfiguration.UseExternalTree != nil {
		settings.useExternalTree = *fileConfiguration.UseExternalTree
	}
	if !commandFlags.Changed(encodingFlagName) && fileConfiguration.EncodingMode != "" {
		settings.encodingMode = fileConfiguration.EncodingMode
	}
	if !commandFlags.Changed(outputFlagName) && fileConfiguration.OutputPath != "" {
		settings.outputPath = fileConfiguration.OutputPath
	}
	if !commandFlags.Changed(copyFlagName) && fileConfiguration.Clipboard != nil {
		settings.copyToClipboard = *fileConfiguration.Clipboard
	}
	if !commandFlags.Changed(tokensFlagName) && fileConfiguration.Tokens != nil {
		settings.countTokens = *fileConfiguration.Tokens
	}
	if !commandFlags.Changed(modelFlagName) && fileConfiguration.TokenizerModel != "" {
		settings.tokenizerModel = fileConfiguration.TokenizerModel
	}
	return settings
}

// logTokenEstimate counts report tokens, degrading to a warning on failure.
func logTokenEstimate(reportText string, model string, logger *zap.Logger) {
	counter, counterName, counterError := tokenizer.NewCounter(model)
	if counterError != nil {
		logger.Warn(fmt.Sprintf(warningTokenCountFormat, counterError))
		return
	}
	tokenCount, countError := counter.CountString(reportText)
	if countError != nil {
		logger.Warn(fmt.Sprintf(warningTokenCountFormat, countError))
		return
	}
	logger.Info(fmt.Sprintf(tokenEstimateMessageFormat, counterName, tokenCount))
}
