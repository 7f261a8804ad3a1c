package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"toko-kelontong-pos/internal/config"
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/service"
	"toko-kelontong-pos/pkg/database"
	"toko-kelontong-pos/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	email    string
	password string
	tenantID string
	status   string

	rootCmd = &cobra.Command{
		Use:   "tokoctl",
		Short: "Operator tasks for the toko kelontong POS backend",
		Long: `tokoctl runs maintenance tasks against the POS database using the same
environment configuration as the API server.`,
		SilenceUsage: true,
	}

	resetPasswordCmd = &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for a user and end their sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := open()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := service.ResetPassword(ctx, repository.NewUserRepo(db), email, password); err != nil {
				return fmt.Errorf("reset password: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password for %s has been reset\n", email)
			return nil
		},
	}

	tenantStatusCmd = &cobra.Command{
		Use:   "tenant-status",
		Short: "Activate or deactivate a store",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(tenantID)
			if err != nil {
				return fmt.Errorf("invalid tenant id: %w", err)
			}
			db, log, err := open()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			tenants := service.NewTenantService(repository.NewTenantRepo(db), log)
			tenant, err := tenants.SetStatus(ctx, id, model.TenantStatus(status))
			if err != nil {
				return fmt.Errorf("set tenant status: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", tenant.Name, tenant.Status)
			return nil
		},
	}
)

func init() {
	resetPasswordCmd.Flags().StringVar(&email, "email", "", "account email")
	resetPasswordCmd.Flags().StringVar(&password, "password", "", "new password (min 6 characters)")
	_ = resetPasswordCmd.MarkFlagRequired("email")
	_ = resetPasswordCmd.MarkFlagRequired("password")

	tenantStatusCmd.Flags().StringVar(&tenantID, "id", "", "tenant id")
	tenantStatusCmd.Flags().StringVar(&status, "status", "", "active or inactive")
	_ = tenantStatusCmd.MarkFlagRequired("id")
	_ = tenantStatusCmd.MarkFlagRequired("status")

	rootCmd.AddCommand(resetPasswordCmd, tenantStatusCmd)
}

func open() (*gorm.DB, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.Connect(cfg.Database, false)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return db, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
