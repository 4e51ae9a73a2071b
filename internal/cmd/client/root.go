package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the bridge client.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "client",
		Short: "Bridge client commands",
	}
	AddCommands(root, baseURL)
	return root
}

// AddCommands registers the client commands on parent.
func AddCommands(parent *cobra.Command, baseURL BaseURLFunc) {
	parent.AddCommand(
		newSendCommand(),
		newTailCommand(),
		newAckCommand(),
		newRegistryCommand(),
		newDecodeCommand(),
		newHealthCommand(),
		newStatusCommand(baseURL),
	)
}
