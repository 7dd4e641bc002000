package main

import (
	"github.com/hussen-mac/employee-scheduling/internal/handler"
	"github.com/hussen-mac/employee-scheduling/pkg/swap"
	"github.com/spf13/cobra"
)

func recommendCmd() *cobra.Command {
	var (
		input, output, shiftID string
		opts                   = swap.DefaultOptions()
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "为班次推荐接替人选",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req handler.ScheduleRequest
			if err := readJSON(input, &req); err != nil {
				return err
			}

			recs, err := swap.NewRecommender(newEngine(req.Constraints).Manager()).Recommend(req.ToModel(), shiftID, opts)
			if err != nil {
				return err
			}
			return writeJSON(output, handler.RecommendResponse{ShiftID: shiftID, Recommendations: recs})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "排班 JSON 文件")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件")
	cmd.Flags().StringVar(&shiftID, "shift", "", "班次ID")
	cmd.Flags().IntVar(&opts.MaxRecommendations, "max", opts.MaxRecommendations, "最多推荐数，0 表示不限")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "排除的员工")
	cmd.Flags().BoolVar(&opts.AllowExchange, "exchange", opts.AllowExchange, "同时考虑互换")
	cmd.Flags().BoolVar(&opts.FeasibleOnly, "feasible-only", false, "只保留调班后无硬约束违反的方案")
	_ = cmd.MarkFlagRequired("shift")
	return cmd
}
