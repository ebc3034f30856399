package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/fastprompt/providers/ai"
)

func newBatchCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Submit prompt batches and poll their results",
	}
	cmd.AddCommand(newBatchSubmitCmd(root), newBatchPollCmd(root))
	return cmd
}

func newBatchSubmitCmd(root *rootOptions) *cobra.Command {
	var file, handlePath string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a JSONL file of prompt requests as one vendor batch",
		Long: `Each line of the input file is a JSON object with "system_prompt",
"user_prompt" and an optional "image". The returned batch handle is written to
--handle (or stdout) and is needed to poll the batch later.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := readBatchFile(file)
			if err != nil {
				return err
			}

			c, err := root.newClient(cmd.ErrOrStderr(), "")
			if err != nil {
				return err
			}
			handle, err := c.SubmitBatch(cmd.Context(), requests)
			if err != nil {
				return err
			}

			if handlePath == "" {
				return writeJSON(cmd.OutOrStdout(), handle)
			}
			if err = writeJSONFile(handlePath, handle); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted batch %s with %d requests; handle saved to %s\n", handle.ID, len(handle.Keys), handlePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSONL file with one prompt request per line")
	cmd.Flags().StringVar(&handlePath, "handle", "", "where to write the batch handle")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newBatchPollCmd(root *rootOptions) *cobra.Command {
	var handlePath string

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll a submitted batch and print its status and results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var handle ai.BatchHandle
			if err := readJSONFile(handlePath, &handle); err != nil {
				return err
			}

			// The handle decides the provider so a batch is always polled where it was submitted.
			c, err := root.newClient(cmd.ErrOrStderr(), handle.Provider)
			if err != nil {
				return err
			}
			status, err := c.PollBatch(cmd.Context(), handle)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), status)
		},
	}

	cmd.Flags().StringVar(&handlePath, "handle", "", "batch handle written by batch submit")
	_ = cmd.MarkFlagRequired("handle")

	return cmd
}
