package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kerhoff/wedding/internal/assets"
	"github.com/Kerhoff/wedding/pkg/logger"
)

func newAssetsCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Site photo operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAssetsUploadCommand(opts))
	return cmd
}

func newAssetsUploadCommand(opts *globalOptions) *cobra.Command {
	var (
		upload       assets.UploadOptions
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Compress photos and upload them to S3-compatible storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			uploader, err := assets.NewS3Uploader(ctx, assets.S3ConfigFromEnv())
			if err != nil {
				return err
			}

			manifest, err := assets.ReadManifest(manifestPath)
			if err != nil {
				return err
			}
			uploadErr := assets.UploadDir(ctx, uploader, upload, manifest, opts.logger)
			if err := manifest.Write(manifestPath); err != nil {
				return err
			}
			logger.WithFields(opts.logger, logrus.Fields{"manifest": manifestPath, "entries": len(manifest)}).Info("Manifest written")
			fmt.Fprintf(cmd.OutOrStdout(), "Manifest %s has %d entries\n", manifestPath, len(manifest))
			return uploadErr
		},
	}

	cmd.Flags().StringVar(&upload.Dir, "dir", "", "Directory of JPEG and PNG files")
	cmd.Flags().StringVar(&upload.Bucket, "bucket", "", "Destination bucket")
	cmd.Flags().StringVar(&upload.Prefix, "prefix", "", "Key prefix inside the bucket")
	cmd.Flags().IntVar(&upload.MaxWidth, "max-width", assets.DefaultMaxWidth, "Maximum width in pixels")
	cmd.Flags().IntVar(&upload.Quality, "quality", assets.DefaultQuality, "JPEG quality (1-100)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "assets_manifest.json", "Manifest file to update")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("bucket")
	return cmd
}
