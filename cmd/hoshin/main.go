package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set by goreleaser at build time.
var version = "dev"

// cliFlags holds the persistent flags shared by every subcommand.
type cliFlags struct {
	ProjectDir string
	Verbose    bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	root := &cobra.Command{
		Use:   "hoshin",
		Short: "Build and rank five-statement Hoshin plans",
		Long: `hoshin keeps a set of five "I/We must ..." statements per plan, records
which statement drives which across the ten pairs, and ranks them by how
many others each one enables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.ProjectDir, "project-dir", ".", "directory holding hoshin.yml and the data store")
	root.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "log at debug level")

	root.AddCommand(
		newInitCmd(flags),
		newNewCmd(flags),
		newListCmd(flags),
		newShowCmd(flags),
		newStatusCmd(flags),
		newRankCmd(flags),
		newExportCmd(flags),
		newDiagramCmd(flags),
		newDeleteCmd(flags),
		newWizardCmd(flags),
		newShellCmd(flags),
		newServeMCPCmd(flags),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
