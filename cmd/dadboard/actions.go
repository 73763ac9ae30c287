package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kylerisse/dadboard/pkg/config"
	"github.com/kylerisse/dadboard/pkg/trigger"
	"github.com/kylerisse/dadboard/pkg/ui"
	"github.com/spf13/cobra"
)

func newLaunchCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "launch <appid|name>",
		Short: "Launch a game on every PC",
		Long:  "Runs the DadBoard_LaunchGame_<appid> scheduled task on every configured PC. The game is looked up in the game list by app id or name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			game, ok := config.FindGame(a.games, args[0])
			if !ok {
				return fmt.Errorf("unknown game %q", args[0])
			}
			report, err := a.dispatcher.LaunchOnAll(cmd.Context(), game.AppID)
			if err != nil {
				return errors.New(trigger.NoGameMessage)
			}
			return printReport(cmd, report)
		},
	}
}

func newInviteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "invite <pc>",
		Short: "Accept a pending invite on one PC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			if !slices.Contains(a.cfg.PCs, args[0]) {
				return fmt.Errorf("unknown PC %q", args[0])
			}
			return printReport(cmd, a.dispatcher.AcceptInvite(cmd.Context(), args[0]))
		},
	}
}

func newActionsCmd(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List recently triggered actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			if a.actions == nil {
				return fmt.Errorf("no action log configured")
			}
			actions, err := a.actions.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			rows := make([][]string, len(actions))
			for i, act := range actions {
				result := "OK"
				if !act.OK {
					result = "FAILED"
				}
				rows[i] = []string{act.At.Local().Format("2006-01-02 15:04:05"), act.Kind, act.Target, act.Task, result, act.Message}
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Table([]string{"When", "Kind", "PC", "Task", "Result", "Message"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of actions to show")
	return cmd
}

func printReport(cmd *cobra.Command, report trigger.Report) error {
	fmt.Fprintln(cmd.OutOrStdout(), ui.Report(report))
	if !report.OK {
		return errReported
	}
	return nil
}
