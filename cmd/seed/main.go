package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dentalce/internal/config"
	"dentalce/internal/db"
	"dentalce/internal/logger"
	"dentalce/internal/repository"
	"dentalce/internal/service"
)

const seedTimeout = time.Minute

type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func main() {
	a := &app{}
	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Seed reference data and accounts into the portal database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.AddCommand(newSpecialtiesCmd(a), newAdminCmd(a))
	return root
}

func newSpecialtiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "specialties [name...]",
		Short: "Insert dental specialties, skipping existing ones",
		Long:  "Inserts the given specialty names, or the default dental specialties when no names are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = service.DefaultSpecialties
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), seedTimeout)
			defer cancel()

			svc := service.NewSpecialtyService(repository.NewSpecialtyRepository(a.db), nil, 0)
			count, err := svc.SeedSpecialties(ctx, names)
			if err != nil {
				return fmt.Errorf("seed specialties: %w", err)
			}
			a.log.Info("specialties seeded", zap.Int("inserted", count), zap.Int("requested", len(names)))
			return nil
		},
	}
}

func newAdminCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create an admin account or promote an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), seedTimeout)
			defer cancel()

			svc := service.NewUserService(repository.NewUserRepository(a.db), nil, a.cfg.BcryptCost)
			user, created, err := svc.EnsureAdmin(ctx, name, email, password)
			if err != nil {
				return fmt.Errorf("ensure admin: %w", err)
			}
			a.log.Info("admin ready", zap.Uint("id", user.ID), zap.String("email", user.Email), zap.Bool("created", created))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) open() error {
	a.cfg = config.Load()

	zlog, err := logger.New(a.cfg.Env, a.cfg.LogLevel)
	if err != nil {
		log.Printf("logger init: %v", err)
		zlog = zap.NewNop()
	}
	a.log = zlog.With(zap.String("component", "seed"))

	gormDB, err := db.NewMySQL(a.cfg.MySQLDSN, db.PoolConfig{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: a.cfg.DBConnLifetime,
	})
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		_ = db.Close(gormDB)
		return err
	}
	a.db = gormDB
	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = db.Close(a.db)
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
