/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tjgf2022/logkeeper-roles-hub/config"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/db"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/services"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/store"
	"github.com/tjgf2022/logkeeper-roles-hub/types"
)

// seedCmd provisions the demo accounts and loads sample data for a
// fresh installation. Accounts that already exist are reported and
// skipped; re-running the command is safe.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Provision demo accounts and sample work logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		ctx := cmd.Context()

		dbConn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbConn.Close()
		}()

		userRepo := store.NewUserRepository(dbConn)
		logRepo := store.NewWorkLogRepository(dbConn)
		identity := services.NewIdentityService(userRepo, cfg.Auth.JWTSecret, 0)

		provisioner := services.NewProvisioner(identity)
		results := provisioner.ProvisionAll(ctx)
		for _, result := range results {
			if result.Success {
				fmt.Printf("provisioned %s (%s)\n", result.Account.Email, result.Account.Role)
			} else {
				fmt.Printf("skipped %s: %s\n", result.Account.Email, result.Error)
			}
		}
		succeeded, failed := services.Tally(results)
		fmt.Printf("demo accounts: %d provisioned, %d skipped\n", succeeded, failed)

		if err := seedProfiles(ctx, userRepo, identity); err != nil {
			return err
		}
		return seedWorkLogs(ctx, userRepo, logRepo)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// seedProfiles fills in the profile attributes the identity gateway
// does not cover: departments, the primordial flag, and the extra
// sample accounts.
func seedProfiles(ctx context.Context, userRepo *store.UserRepository, identity *services.IdentityService) error {
	super, err := userRepo.GetByEmail(ctx, "super@worklog.com")
	if err != nil {
		return fmt.Errorf("load super account: %w", err)
	}
	if !super.Protected {
		if err := userRepo.MarkProtected(ctx, super.ID); err != nil {
			return fmt.Errorf("protect super account: %w", err)
		}
	}

	departments := map[string]string{
		"admin@worklog.com": "产品部",
		"user@worklog.com":  "技术部",
	}
	for email, department := range departments {
		user, err := userRepo.GetByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("load %s: %w", email, err)
		}
		if user.Department == "" {
			user.Department = department
			if _, err := userRepo.Update(ctx, user); err != nil {
				return fmt.Errorf("update %s: %w", email, err)
			}
		}
	}

	extras := []struct {
		email      string
		username   string
		password   string
		department string
		inactive   bool
	}{
		{email: "user2@worklog.com", username: "赵开发", password: "201201", department: "技术部", inactive: true},
		{email: "user3@worklog.com", username: "钱设计", password: "201201", department: "设计部"},
	}
	for _, extra := range extras {
		_, err := identity.SignUp(ctx, extra.email, extra.password, services.SignUpMeta{
			Username:   extra.username,
			Role:       types.RoleUser,
			Department: extra.department,
		})
		if err != nil {
			if errors.Is(err, services.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("create %s: %w", extra.email, err)
		}
		if extra.inactive {
			user, err := userRepo.GetByEmail(ctx, extra.email)
			if err != nil {
				return fmt.Errorf("load %s: %w", extra.email, err)
			}
			user.Status = types.UserStatusInactive
			if _, err := userRepo.Update(ctx, user); err != nil {
				return fmt.Errorf("deactivate %s: %w", extra.email, err)
			}
		}
	}
	return nil
}

// seedWorkLogs inserts the sample entries once. An installation with
// existing entries is left alone.
func seedWorkLogs(ctx context.Context, userRepo *store.UserRepository, logRepo *store.WorkLogRepository) error {
	existing, err := logRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Printf("work logs already present, skipping sample data\n")
		return nil
	}

	admin, err := userRepo.GetByEmail(ctx, "admin@worklog.com")
	if err != nil {
		return fmt.Errorf("load admin account: %w", err)
	}
	regular, err := userRepo.GetByEmail(ctx, "user@worklog.com")
	if err != nil {
		return fmt.Errorf("load user account: %w", err)
	}

	samples := []types.WorkLog{
		{
			Title:      "完成项目需求分析报告",
			Content:    "整理并评审了本季度项目的整体需求,输出了需求分析报告初稿。",
			AuthorID:   admin.ID,
			AuthorName: admin.Name,
			AuthorRole: admin.Role,
			Status:     types.LogStatusCompleted,
			Priority:   types.LogPriorityHigh,
			Tags:       []string{"需求", "报告"},
		},
		{
			Title:      "客户沟通会议纪要",
			Content:    "与客户同步了交付节奏和验收标准,整理了会议纪要并同步给相关同事。",
			AuthorID:   regular.ID,
			AuthorName: regular.Name,
			AuthorRole: regular.Role,
			Status:     types.LogStatusInProgress,
			Priority:   types.LogPriorityMedium,
			Tags:       []string{"客户", "会议"},
		},
		{
			Title:      "代码审查和优化建议",
			Content:    "完成了核心模块的代码审查,整理了一批性能优化建议等待排期。",
			AuthorID:   admin.ID,
			AuthorName: admin.Name,
			AuthorRole: admin.Role,
			Status:     types.LogStatusPending,
			Priority:   types.LogPriorityLow,
			Tags:       []string{"代码审查"},
		},
	}
	for _, sample := range samples {
		if _, err := logRepo.Create(ctx, sample); err != nil {
			return fmt.Errorf("create sample log %q: %w", sample.Title, err)
		}
	}
	fmt.Printf("inserted %d sample work logs\n", len(samples))
	return nil
}
