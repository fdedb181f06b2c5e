package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/eyescreen/eyescreen/db"
	"github.com/eyescreen/eyescreen/service"
	"github.com/spf13/cobra"
)

func newResolveCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print the mode and the backend base URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := f.settings()
			base := s.Endpoint.BaseURL()
			if base == "" {
				base = "(relative)"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mode:    %s\n", s.Mode)
			fmt.Fprintf(out, "baseURL: %s\n", base)
			return nil
		},
	}
}

func newDetectCmd(f *rootFlags) *cobra.Command {
	var left, right string
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Screen one left/right eye image pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.withApp(cmd.Context(), func(app *Application) error {
				run, err := app.Detector.DetectSingle(cmd.Context(), left, right)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(run.Result))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&left, "left", "", "Left eye image")
	cmd.Flags().StringVar(&right, "right", "", "Right eye image")
	_ = cmd.MarkFlagRequired("left")
	_ = cmd.MarkFlagRequired("right")
	return cmd
}

func newBatchCmd(f *rootFlags) *cobra.Command {
	var serverPath, uploadDir, localDir, csvOut string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Screen a folder of patients (one subfolder per patient)",
		Long: `Screen a folder with one subfolder per patient, each holding a left and a
right eye image (e.g. 001/001_left.jpg, 001/001_right.jpg).

  --path DIR    folder on the backend host; the backend writes the spreadsheet
  --upload DIR  local folder sent in one request; the backend writes the spreadsheet
  --local DIR   local folder screened pair by pair; --csv writes the results`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set := 0
			for _, v := range []string{serverPath, uploadDir, localDir} {
				if v != "" {
					set++
				}
			}
			if set != 1 {
				return errors.New("exactly one of --path, --upload or --local is required")
			}
			if csvOut != "" && localDir == "" {
				return errors.New("--csv only applies to --local")
			}

			return f.withApp(cmd.Context(), func(app *Application) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()
				var run db.Run
				var err error
				switch {
				case serverPath != "":
					run, err = app.Detector.DetectBatch(ctx, serverPath)
				case uploadDir != "":
					run, err = app.Detector.DetectUpload(ctx, uploadDir)
				default:
					run, err = app.Detector.DetectLocal(ctx, localDir)
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "processed %d folder(s)\n", run.Processed)
				if run.ExcelPath != "" {
					fmt.Fprintf(out, "results: %s (eyescreen download %s)\n", run.ExcelPath, run.ExcelPath)
				}
				if csvOut != "" {
					return writeCSVFile(csvOut, run.Items)
				}
				for _, it := range run.Items {
					fmt.Fprintf(out, "%s: %s\n", it.Folder, strings.Join(strings.Fields(it.Result), " "))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&serverPath, "path", "", "Folder on the backend host")
	cmd.Flags().StringVar(&uploadDir, "upload", "", "Local folder to upload")
	cmd.Flags().StringVar(&localDir, "local", "", "Local folder screened pair by pair")
	cmd.Flags().StringVar(&csvOut, "csv", "", "Write --local results to this CSV file")
	return cmd
}

func writeCSVFile(path string, items []db.RunItem) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := service.WriteCSV(fh, items); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return fh.Close()
}

func newChatCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat MESSAGE...",
		Short: "Ask the screening assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.withApp(cmd.Context(), func(app *Application) error {
				run, err := app.Detector.Ask(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), run.Result)
				return nil
			})
		},
	}
}

func newDownloadCmd(f *rootFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download FILE",
		Short: "Download a result file produced by a batch run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			if output == "" {
				output = baseName(file)
			}
			return f.withApp(cmd.Context(), func(app *Application) error {
				fh, err := os.Create(output)
				if err != nil {
					return err
				}
				n, err := app.Client.Download(cmd.Context(), file, fh)
				if cerr := fh.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					_ = os.Remove(output)
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", output, humanize.Bytes(uint64(n)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: the remote file name)")
	return cmd
}

// baseName handles both slash styles, result paths come from the backend host.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

func newHistoryCmd(f *rootFlags) *cobra.Command {
	var limit, prune int
	var show string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.withApp(cmd.Context(), func(app *Application) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()
				if prune >= 0 {
					n, err := app.Repo.PruneRuns(ctx, prune)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "pruned %d run(s)\n", n)
					return nil
				}
				if show != "" {
					run, err := app.Repo.GetRun(ctx, show)
					if errors.Is(err, db.ErrNoRows) {
						return fmt.Errorf("run %s not found", show)
					}
					if err != nil {
						return err
					}
					return printRun(out, run)
				}

				runs, err := app.Repo.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "no runs recorded")
					return nil
				}
				for _, r := range runs {
					fmt.Fprintf(out, "%s  %-6s  %-11s  %-14s  %s\n",
						shortID(r.ID), r.Kind, r.Mode, humanize.Time(r.CreatedAt), r.Subject)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	cmd.Flags().IntVar(&prune, "prune", -1, "Keep only the newest N runs")
	cmd.Flags().StringVar(&show, "show", "", "Show one run in full")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printRun(w io.Writer, r db.Run) error {
	fmt.Fprintf(w, "id:        %s\n", r.ID)
	fmt.Fprintf(w, "kind:      %s\n", r.Kind)
	fmt.Fprintf(w, "mode:      %s\n", r.Mode)
	fmt.Fprintf(w, "when:      %s (%s)\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(r.CreatedAt))
	fmt.Fprintf(w, "subject:   %s\n", r.Subject)
	fmt.Fprintf(w, "processed: %d\n", r.Processed)
	if r.ExcelPath != "" {
		fmt.Fprintf(w, "results:   %s\n", r.ExcelPath)
	}
	if res := strings.TrimSpace(r.Result); res != "" {
		fmt.Fprintf(w, "\n%s\n", res)
	}
	if len(r.Items) > 0 {
		fmt.Fprintln(w)
		return service.WriteCSV(w, r.Items)
	}
	return nil
}
