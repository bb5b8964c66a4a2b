package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resume-review/internal/analyses"
	"resume-review/internal/client"
	"resume-review/internal/present"
)

func (rt *runtime) uploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a resume PDF and print its analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			contentType := client.DetectContentType(path, readHead(path))
			if err := analyses.ValidateUpload(contentType, info.Size()); err != nil {
				rt.logger.Debug("upload rejected locally",
					zap.String("file", path),
					zap.String("content_type", contentType),
					zap.Int64("size", info.Size()),
				)
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.opts.Out, "Analyzing %s...\n", filepath.Base(path))
			rec, err := rt.client().Upload(cmd.Context(), filepath.Base(path), contentType, data)
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) && apiErr.Message != "" {
					return errors.New(apiErr.Message)
				}
				return err
			}
			fmt.Fprintln(rt.opts.Out, "Resume analyzed successfully!")
			return present.RenderRecord(rt.opts.Out, rec)
		},
	}
}

func (rt *runtime) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := rt.client().History(cmd.Context())
			if err != nil {
				if errors.Is(err, client.ErrHistoryUnavailable) {
					fmt.Fprintln(rt.opts.Out, present.HistoryUnavailable)
				}
				return err
			}

			interactive, _ := cmd.Flags().GetBool(flagInteractive)
			if !interactive || len(recs) == 0 {
				return present.RenderHistory(rt.opts.Out, recs)
			}

			labels := make([]string, 0, len(recs))
			for _, rec := range recs {
				labels = append(labels, present.HistoryLabel(rec))
			}
			idx, err := rt.opts.Select("Choose an analysis and press ENTER", labels)
			if err != nil {
				return err
			}
			if idx < 0 || idx >= len(recs) {
				return fmt.Errorf("selection %d out of range", idx)
			}
			return present.RenderRecord(rt.opts.Out, recs[idx])
		},
	}
	cmd.Flags().BoolP(flagInteractive, "i", false, "pick an analysis and show it in full")
	return cmd
}

func (rt *runtime) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one analysis in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := rt.client().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return present.RenderRecord(rt.opts.Out, rec)
		},
	}
}

// readHead returns the first bytes of path for content sniffing.
func readHead(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return buf[:n]
}
