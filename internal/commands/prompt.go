package commands

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/streamsect/internal/prompt"
)

// PromptCommand returns the CLI command that prints the marker contract
func PromptCommand() *cli.Command {
	return &cli.Command{
		Name:      "prompt",
		Usage:     "Print the system prompt that asks a model for marker-structured replies",
		ArgsUsage: "[question]",
		Description: "Prints the marker contract as a system prompt, ready to paste into a " +
			"model configuration. With a question argument, prints a complete " +
			"system+user message list as JSON instead.",
		Action: func(c *cli.Context) error {
			if question := c.Args().First(); question != "" {
				messages, err := prompt.BuildMessageList(question)
				if err != nil {
					return fmt.Errorf("failed to build message list: %w", err)
				}

				data, err := json.MarshalIndent(messages, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode message list: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			instruction, err := prompt.BuildSystemInstruction()
			if err != nil {
				return fmt.Errorf("failed to build system prompt: %w", err)
			}

			fmt.Println(instruction)
			return nil
		},
	}
}
