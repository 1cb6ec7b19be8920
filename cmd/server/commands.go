package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newExecCmd() *cobra.Command {
	var (
		typ     string
		payload string
		userID  int64
	)
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run one task on an executor of the given type",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := executor.Payload{}
			if payload != "" {
				if err := json.Unmarshal([]byte(payload), &p); err != nil {
					return fmt.Errorf("invalid --payload: %w", err)
				}
			}
			if _, ok := p["user_id"]; !ok {
				p["user_id"] = userID
			}
			hub, _, _, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer hub.Close()
			return printJSON(cmd.OutOrStdout(), hub.Dispatcher.Execute(cmd.Context(), typ, p, userID))
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "Executor type, e.g. web-search")
	cmd.Flags().StringVar(&payload, "payload", "{}", "Task payload as a JSON object")
	cmd.Flags().Int64Var(&userID, "user", 0, "Requesting user id")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newPlanCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "plan <description>",
		Short: "Plan a request and run its steps",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hub, _, _, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer hub.Close()
			return printJSON(cmd.OutOrStdout(), hub.Planner.PlanAndExecute(cmd.Context(), strings.Join(args, " "), userID))
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "Requesting user id")
	return cmd
}

func newChatCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Route a free-text message like the chat endpoint",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hub, _, _, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer hub.Close()
			return printJSON(cmd.OutOrStdout(), hub.Chat.Handle(cmd.Context(), userID, strings.Join(args, " ")))
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "Requesting user id")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print executor counts and system health",
		RunE: func(cmd *cobra.Command, args []string) error {
			hub, _, _, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer hub.Close()
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"status":    hub.Registry.Status(),
				"executors": hub.Executors.List(),
			})
		},
	}
}

func newHashKeyCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-key <key>",
		Short: "Print the bcrypt hash to use as admin.api_key_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return errors.New("key must not be empty")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
