package main

import (
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-engine/internal/config"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "minesweeper",
	Short: "Play Minesweeper in a terminal or serve it over HTTP",
	Long: `minesweeper runs the game engine behind two front ends.

Play a game in this terminal
	minesweeper play

Serve games over HTTP and websockets
	minesweeper serve -c config.json
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.ReadConfig(configPath)
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := setupLogging(log, cfg); err != nil {
			return err
		}
		log.WithFields(cfg.Fields()).Debug("config")
		return nil
	},
}

func init() {
	const usage = "config file path, defaults apply when empty"
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", usage)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(bestTimesCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func setupLogging(log *logrus.Logger, cfg *config.Config) error {
	log.SetLevel(cfg.LogLevel())
	if cfg.Development() {
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.Log.File == "" {
		return nil
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Level:      cfg.LogLevel(),
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return err
	}
	log.AddHook(hook)
	return nil
}
