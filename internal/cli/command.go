package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/batchlingo/internal"
	"codeberg.org/snonux/batchlingo/internal/translate"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "batchlingo",
		Short: "Batch image text translation",
		Long: `batchlingo translates the text embedded in images (posters, banners,
packaging shots) into a target language by sending each image to a
generative image editing service. Batches are tracked as sessions with
per-file outcomes, so partially failed runs stay inspectable,
packageable and exportable.

Examples:
  batchlingo run poster1.png poster2.png -l Japanese
  batchlingo status 2f9c...                # progress of one session
  batchlingo sessions                      # list all sessions
  batchlingo package 2f9c...               # zip all translated images
  batchlingo export --csv report.csv       # CSV report over all sessions`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.batchlingo.yaml)")
	cmd.PersistentFlags().StringVar(&flags.DBPath, "db", flags.DBPath, "Session database path")
	cmd.PersistentFlags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory for translated images")

	// Bind flags to viper
	viper.BindPFlag("store.db_path", cmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("output.directory", cmd.PersistentFlags().Lookup("output"))
}

// SetupRunFlags attaches the run subcommand's flags
func SetupRunFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVarP(&flags.TargetLanguage, "language", "l", flags.TargetLanguage,
		fmt.Sprintf("Target language (%s)", strings.Join(translate.SupportedLanguages, ", ")))
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Translation provider: gemini or openai")
	cmd.Flags().StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini image editing model")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI image editing model")
	cmd.Flags().StringVar(&flags.OpenAISize, "openai-size", flags.OpenAISize, "OpenAI output image size")
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", flags.Concurrency, "Number of images translated in parallel")
	cmd.Flags().IntVar(&flags.MaxAttempts, "max-attempts", flags.MaxAttempts, "Maximum attempts per image including retries")
	cmd.Flags().DurationVar(&flags.CallTimeout, "timeout", flags.CallTimeout, "Timeout per translation call")

	viper.BindPFlag("translate.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translate.gemini_model", cmd.Flags().Lookup("gemini-model"))
	viper.BindPFlag("translate.openai_model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("translate.openai_size", cmd.Flags().Lookup("openai-size"))
	viper.BindPFlag("batch.concurrency", cmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("batch.max_attempts", cmd.Flags().Lookup("max-attempts"))
	viper.BindPFlag("batch.timeout", cmd.Flags().Lookup("timeout"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".batchlingo" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".batchlingo")
	}

	// Environment variables
	viper.SetEnvPrefix("BATCHLINGO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	// First check environment variable
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("translate.gemini_key")
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	return viper.GetString("translate.openai_key")
}
