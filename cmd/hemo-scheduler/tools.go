package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

// withApp runs fn against a loaded schedule and flushes saves afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.start(ctx); err != nil {
		return err
	}
	runErr := fn(ctx, a)

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.stop(stopCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func parseGroupFlag(raw string, required bool) (models.DayGroup, error) {
	if raw == "" && !required {
		return "", nil
	}
	g, ok := models.ParseDayGroup(raw)
	if !ok {
		return "", fmt.Errorf("unknown day group %q (use SEG/QUA/SEX or TER/QUI/SÁB)", raw)
	}
	return g, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func importCmd() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a spreadsheet export into one rotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := parseGroupFlag(group, true)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return withApp(cmd, func(ctx context.Context, a *app) error {
				summary, err := a.imports.ImportCSV(ctx, g, f)
				if err != nil {
					return err
				}
				return printJSON(cmd, summary)
			})
		},
	}
	cmd.Flags().StringVarP(&group, "day-group", "g", "", "target rotation (SEG/QUA/SEX, TER/QUI/SÁB, A or B)")
	return cmd
}

func exportCmd() *cobra.Command {
	var format, group, out string
	cmd := &cobra.Command{
		Use:       "export <map|roster|records|template>",
		Short:     "Render a report to a file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"map", "roster", "records", "template"},
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := parseGroupFlag(group, false)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				file, err := a.exports.Generate(ctx, args[0], format, g)
				if err != nil {
					return err
				}
				target := out
				if target == "" {
					target = file.Filename
				}
				if err := os.WriteFile(target, file.Body, 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or pdf")
	cmd.Flags().StringVarP(&group, "day-group", "g", "", "rotation; required for map")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (defaults to the generated file name)")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print headline counters and the capacity report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				report, err := a.analytics.Report(ctx, dto.ReportQuery{})
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]interface{}{
					"stats":    a.analytics.Stats(ctx),
					"capacity": report.Capacity,
				})
			})
		},
	}
}

func tokenCmd() *cobra.Command {
	var req dto.TokenRequest
	var role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for a staff member",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			req.Role = models.Role(role)
			resp, err := a.auth.IssueToken(req)
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&req.UserID, "user", "", "user identifier")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(models.RoleStaff), "ADMIN or STAFF")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func wipeCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Erase the schedule and every stored copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				resp, err := a.data.Wipe(ctx, confirm)
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "required to actually wipe")
	return cmd
}
