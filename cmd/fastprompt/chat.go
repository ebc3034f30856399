package main

import (
	"github.com/spf13/cobra"

	"github.com/leofalp/fastprompt/providers/ai"
)

func newChatCmd(root *rootOptions) *cobra.Command {
	var (
		system, user         string
		systemFile, userFile string
		image                string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send one prompt pair and print the normalized result",
		Example: `  fastprompt chat --system "Echo the input as JSON." --user hello
  fastprompt chat --provider gemini --system-file system.html --user "Read the text." --image scene.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			systemPrompt, err := loadPrompt("system", system, systemFile)
			if err != nil {
				return err
			}
			userPrompt, err := loadPrompt("user", user, userFile)
			if err != nil {
				return err
			}

			request := ai.PromptRequest{SystemPrompt: systemPrompt, UserPrompt: userPrompt}
			if image != "" {
				request.Image = ai.ParseImageRef(image)
			}

			c, err := root.newClient(cmd.ErrOrStderr(), "")
			if err != nil {
				return err
			}
			result, err := c.Request(cmd.Context(), request)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&system, "system", "", "system prompt")
	flags.StringVar(&user, "user", "", "user prompt")
	flags.StringVar(&systemFile, "system-file", "", "read the system prompt from a file (.html is converted to markdown)")
	flags.StringVar(&userFile, "user-file", "", "read the user prompt from a file (.html is converted to markdown)")
	flags.StringVar(&image, "image", "", "image path, http(s) URL or data URL")
	cmd.MarkFlagsMutuallyExclusive("system", "system-file")
	cmd.MarkFlagsMutuallyExclusive("user", "user-file")

	return cmd
}
