package cmd

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

// rootCmd - 하위 명령 없이 실행하면 도움말 출력
var rootCmd = &cobra.Command{
	Use:          "autoops",
	Short:        "Alert ingestion, AI diagnosis and automated remediation",
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loadEnvFile(envFile)
		return nil
	},
}

// Execute - main에서 1회 호출
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("Command failed: %v", err)
		return err
	}
	return nil
}

// .env가 없으면 OS 환경변수만 사용
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("No %s file loaded, using process environment", path)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to dotenv file")
}
