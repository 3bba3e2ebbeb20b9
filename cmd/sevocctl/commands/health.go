package commands

import (
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is up and the model is available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		health, err := newClient().Health(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd, health)
		}
		printField(cmd, "status", health.Status)
		printField(cmd, "service", health.Service)
		printField(cmd, "model available", health.ModelAvailable)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the server configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newClient().Status(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd, status)
		}
		printField(cmd, "server", status.Server+" "+status.Version)
		printField(cmd, "model", status.ModelPath)
		printField(cmd, "model exists", status.ModelExists)
		printField(cmd, "upload folder", status.UploadFolder)
		printField(cmd, "max file size (MB)", status.MaxFileSizeMB)
		printField(cmd, "allowed extensions", status.AllowedExtensions)
		printField(cmd, "inference timeout (s)", status.InferenceTimeoutSeconds)
		printField(cmd, "max concurrent", status.MaxConcurrentInferences)
		printField(cmd, "uptime (s)", status.UptimeSeconds)
		return nil
	},
}
