package main

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/epublate/epublate"
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "epublate",
	Short: "Structure-preserving EPUB translator",
	Long: `epublate translates the readable text of an EPUB book with an AI model
while leaving markup, images, fonts, and styles untouched.

Supported backends: openai, ollama, gemini

Use "epublate translate --help" for translation options.`,
	Version: epublate.FullVersion(),
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./epublate.yaml)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig loads the optional config file and binds EPUBLATE_* environment
// variables, so every flag can also come from the environment.
func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("epublate")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("EPUBLATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("loaded config file")
	}

	if viper.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}
}
