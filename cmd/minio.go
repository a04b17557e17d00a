package cmd

import (
	"context"
	"log"

	"wavecrate/config"
	"wavecrate/storage"

	"github.com/spf13/cobra"
)

var (
	minioPrefix string
	minioDelete bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect or clean the backup bucket",
	Long:  `List objects and aggregate stats in the backup bucket, or delete everything under a prefix.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if cfg.MinioEndpoint == "" {
			log.Fatal("MINIO_ENDPOINT is not configured")
		}

		backup, err := storage.NewBackupStorage(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		ctx := context.Background()
		if minioDelete {
			if minioPrefix == "" {
				log.Fatal("Delete requires a --prefix")
			}
			n, err := backup.DeletePrefix(ctx, minioPrefix)
			if err != nil {
				log.Fatalf("Failed to delete prefix %q: %v", minioPrefix, err)
			}
			log.Printf("Deleted %d objects under %q", n, minioPrefix)
			return
		}

		if err := backup.PrintBucketStatus(ctx, minioPrefix); err != nil {
			log.Fatalf("Failed to report bucket status: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "only consider objects under this prefix")
	minioCmd.Flags().BoolVarP(&minioDelete, "delete", "d", false, "delete all objects under the prefix")

	minioCmd.Example = `  # Report the whole bucket
  wavecrate minio

  # Report only backed-up audio
  wavecrate minio -p "songs/audio/"

  # Delete every backup object for songs
  wavecrate minio -d -p "songs/"`
}
